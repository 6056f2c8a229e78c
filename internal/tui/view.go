package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"taskapp/internal/models"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).MarginBottom(1)
	cardStyle      = lipgloss.NewStyle().PaddingLeft(2)
	selectedStyle  = lipgloss.NewStyle().PaddingLeft(1).Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("63"))
	titleStyle     = lipgloss.NewStyle().Bold(true)
	completedStyle = lipgloss.NewStyle().Strikethrough(true).Faint(true)
	metaStyle      = lipgloss.NewStyle().Faint(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
	formStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).MarginBottom(1)
	helpStyle      = lipgloss.NewStyle().Faint(true).MarginTop(1)
)

const timeLayout = "2006-01-02 15:04"

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Tasks"))
	b.WriteString("\n")

	if m.showForm {
		b.WriteString(m.formView())
		b.WriteString("\n")
	}

	switch {
	case !m.loaded:
		b.WriteString(m.spinner.View() + " Loading tasks...")
	case m.loadErr != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error loading tasks: %v", m.loadErr)))
	case len(m.tasks) == 0:
		b.WriteString(metaStyle.Render("No tasks yet. Create one!"))
	default:
		for i, t := range m.tasks {
			b.WriteString(m.cardView(t, i == m.cursor))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}

	if m.showForm {
		b.WriteString(helpStyle.Render("tab: switch field • enter: create • ctrl+s: create • esc: cancel"))
	} else {
		b.WriteString(helpStyle.Render("n: new task • space: toggle • d: delete • r: reload • q: quit"))
	}
	b.WriteString("\n")

	return b.String()
}

func (m *Model) formView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("New Task"))
	b.WriteString("\n")
	b.WriteString(m.title.View())
	b.WriteString("\n")
	b.WriteString(m.description.View())
	return formStyle.Render(b.String())
}

func (m *Model) cardView(t models.Task, selected bool) string {
	check := "[ ]"
	title := titleStyle.Render(t.Title)
	if t.IsCompleted() {
		check = "[x]"
		title = completedStyle.Render(t.Title)
	}

	lines := []string{fmt.Sprintf("%s %s", check, title)}
	if t.Description != "" {
		lines = append(lines, "    "+t.Description)
	}
	meta := "    created " + t.CreatedAt.Local().Format(timeLayout)
	if t.CompletedAt != nil {
		meta += " • completed " + t.CompletedAt.Local().Format(timeLayout)
	}
	lines = append(lines, metaStyle.Render(meta))

	card := strings.Join(lines, "\n")
	if selected {
		return selectedStyle.Render(card)
	}
	return cardStyle.Render(card)
}
