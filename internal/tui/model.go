package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskapp/internal/models"
)

// Client is the set of task operations the view dispatches.
type Client interface {
	ListActiveTasks(ctx context.Context) ([]models.Task, error)
	CreateTask(ctx context.Context, title, description string) (models.Task, error)
	SetCompletion(ctx context.Context, id int64, completed bool) (models.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

const (
	focusTitle = iota
	focusDescription
)

// Model is the task list screen. The list shown is always the result of the
// latest applied list request; mutations never edit it in place.
type Model struct {
	client  Client
	ctx     context.Context
	timeout time.Duration

	loaded     bool
	loadErr    error
	tasks      []models.Task
	fetchSeq   int
	appliedSeq int
	cursor     int

	showForm    bool
	focus       int
	title       textinput.Model
	description textarea.Model

	spinner spinner.Model
	status  string
}

// Option customizes a Model.
type Option func(*Model)

// WithContext sets the parent context for every request the view issues.
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

// WithTimeout bounds each request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(m *Model) { m.timeout = d }
}

// New builds the task list screen on top of client.
func New(client Client, opts ...Option) *Model {
	title := textinput.New()
	title.Placeholder = "Task title"
	title.CharLimit = 255

	description := textarea.New()
	description.Placeholder = "Task description"
	description.ShowLineNumbers = false
	description.SetHeight(3)

	m := &Model{
		client:      client,
		ctx:         context.Background(),
		timeout:     10 * time.Second,
		title:       title,
		description: description,
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init issues the single list request made on mount.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.refetch())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tasksLoadedMsg:
		m.applyList(msg)
		return m, nil

	case taskCreatedMsg:
		m.status = fmt.Sprintf("Created %q", msg.task.Title)
		return m, m.refetch()

	case completionSetMsg:
		if msg.task.IsCompleted() {
			m.status = fmt.Sprintf("Completed %q", msg.task.Title)
		} else {
			m.status = fmt.Sprintf("Reopened %q", msg.task.Title)
		}
		return m, m.refetch()

	case taskDeletedMsg:
		m.status = fmt.Sprintf("Deleted task %d", msg.id)
		return m, m.refetch()

	case mutationFailedMsg:
		m.status = fmt.Sprintf("Could not %s: %v", msg.op, msg.err)
		return m, nil

	case spinner.TickMsg:
		if m.loaded {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.showForm {
			return m, m.updateForm(msg)
		}
		return m, m.updateList(msg)
	}

	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
	case "n":
		m.showForm = true
		m.focus = focusTitle
		m.description.Blur()
		return m.title.Focus()
	case " ", "x":
		if t, ok := m.selected(); ok {
			return m.dispatchCompletion(t.ID, !t.IsCompleted())
		}
	case "d", "delete":
		if t, ok := m.selected(); ok {
			return m.dispatchDelete(t.ID)
		}
	case "r":
		return m.refetch()
	}
	return nil
}

func (m *Model) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	case "esc":
		m.showForm = false
		m.title.Blur()
		m.description.Blur()
		return nil
	case "tab", "shift+tab":
		if m.focus == focusTitle {
			m.focus = focusDescription
			m.title.Blur()
			return m.description.Focus()
		}
		m.focus = focusTitle
		m.description.Blur()
		return m.title.Focus()
	case "ctrl+s":
		return m.submit()
	case "enter":
		if m.focus == focusTitle {
			return m.submit()
		}
	}

	var cmd tea.Cmd
	if m.focus == focusTitle {
		m.title, cmd = m.title.Update(msg)
	} else {
		m.description, cmd = m.description.Update(msg)
	}
	return cmd
}

// submit dispatches the create request and resets the form right away,
// without waiting for the outcome.
func (m *Model) submit() tea.Cmd {
	title := m.title.Value()
	if title == "" {
		return nil
	}
	description := m.description.Value()

	m.title.Reset()
	m.description.Reset()
	m.title.Blur()
	m.description.Blur()
	m.showForm = false

	return m.dispatchCreate(title, description)
}

func (m *Model) selected() (models.Task, bool) {
	if m.loadErr != nil || m.cursor < 0 || m.cursor >= len(m.tasks) {
		return models.Task{}, false
	}
	return m.tasks[m.cursor], true
}

// applyList installs a list result unless a newer one was already applied.
// The cursor stays on the same task id when it survives the refresh.
func (m *Model) applyList(msg tasksLoadedMsg) {
	if msg.seq < m.appliedSeq {
		return
	}
	m.appliedSeq = msg.seq
	m.loaded = true
	m.loadErr = msg.err
	if msg.err != nil {
		return
	}

	var selectedID int64
	if t, ok := m.selected(); ok {
		selectedID = t.ID
	}
	m.tasks = msg.tasks

	m.cursor = min(m.cursor, len(m.tasks)-1)
	for i, t := range m.tasks {
		if t.ID == selectedID {
			m.cursor = i
			break
		}
	}
	m.cursor = max(m.cursor, 0)
}
