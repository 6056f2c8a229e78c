package tui

import "taskapp/internal/models"

// tasksLoadedMsg carries the result of one list request. seq orders requests
// so a slow, older response cannot overwrite a newer one.
type tasksLoadedMsg struct {
	seq   int
	tasks []models.Task
	err   error
}

type taskCreatedMsg struct{ task models.Task }

type completionSetMsg struct{ task models.Task }

type taskDeletedMsg struct{ id int64 }

// mutationFailedMsg reports a mutation that did not succeed. It never
// triggers a refetch.
type mutationFailedMsg struct {
	op  string
	err error
}
