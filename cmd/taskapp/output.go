package main

import (
	"encoding/json"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"taskapp/internal/models"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"

	timeLayout = "2006-01-02 15:04"
)

func validFormat(format string) bool {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return true
	}
	return false
}

func statusOf(t models.Task) string {
	if t.IsCompleted() {
		return "done"
	}
	return "open"
}

func writeTasks(w io.Writer, format string, list []models.Task) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(list); err != nil {
			return err
		}
		return enc.Close()
	default:
		writeTable(w, list)
		return nil
	}
}

func writeTable(w io.Writer, list []models.Task) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"ID", "Title", "Description", "Status", "Created", "Completed"})
	for _, task := range list {
		status := text.FgHiYellow.Sprint(statusOf(task))
		completed := ""
		if task.CompletedAt != nil {
			status = text.FgHiGreen.Sprint(statusOf(task))
			completed = task.CompletedAt.Local().Format(timeLayout)
		}
		t.AppendRow(table.Row{
			task.ID,
			task.Title,
			task.Description,
			status,
			task.CreatedAt.Local().Format(timeLayout),
			completed,
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "Total", len(list)})
	t.Render()
}
