package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// requestContext derives the context for one request. It is called when a
// command runs, so commands that never execute hold no timer.
func requestContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}

// refetch issues a new list request tagged with the next sequence number.
func (m *Model) refetch() tea.Cmd {
	m.fetchSeq++
	seq := m.fetchSeq
	client, parent, timeout := m.client, m.ctx, m.timeout

	return func() tea.Msg {
		ctx, cancel := requestContext(parent, timeout)
		defer cancel()
		tasks, err := client.ListActiveTasks(ctx)
		return tasksLoadedMsg{seq: seq, tasks: tasks, err: err}
	}
}

func (m *Model) dispatchCreate(title, description string) tea.Cmd {
	client, parent, timeout := m.client, m.ctx, m.timeout

	return func() tea.Msg {
		ctx, cancel := requestContext(parent, timeout)
		defer cancel()
		task, err := client.CreateTask(ctx, title, description)
		if err != nil {
			return mutationFailedMsg{op: "create task", err: err}
		}
		return taskCreatedMsg{task: task}
	}
}

func (m *Model) dispatchCompletion(id int64, completed bool) tea.Cmd {
	client, parent, timeout := m.client, m.ctx, m.timeout

	return func() tea.Msg {
		ctx, cancel := requestContext(parent, timeout)
		defer cancel()
		task, err := client.SetCompletion(ctx, id, completed)
		if err != nil {
			return mutationFailedMsg{op: "update task", err: err}
		}
		return completionSetMsg{task: task}
	}
}

func (m *Model) dispatchDelete(id int64) tea.Cmd {
	client, parent, timeout := m.client, m.ctx, m.timeout

	return func() tea.Msg {
		ctx, cancel := requestContext(parent, timeout)
		defer cancel()
		if err := client.DeleteTask(ctx, id); err != nil {
			return mutationFailedMsg{op: "delete task", err: err}
		}
		return taskDeletedMsg{id: id}
	}
}

// Run starts the interactive task list and blocks until the user quits.
func Run(ctx context.Context, client Client, opts ...Option) error {
	opts = append([]Option{WithContext(ctx)}, opts...)
	p := tea.NewProgram(New(client, opts...), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
