package models

import (
	"errors"
	"time"
)

// ErrNotFound is returned by every store when a task id does not exist.
var ErrNotFound = errors.New("task not found")

// Task is a single to-do item. Completion and deletion are recorded as
// timestamps: a nil CompletedAt means the task is still open, a nil DeletedAt
// means it has not been soft-deleted.
type Task struct {
	ID          int64      `json:"id" yaml:"id" db:"id"`
	Title       string     `json:"title" yaml:"title" db:"title"`
	Description string     `json:"description" yaml:"description" db:"description"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at" db:"created_at"`
	CompletedAt *time.Time `json:"completed_at" yaml:"completed_at,omitempty" db:"completed_at"`
	DeletedAt   *time.Time `json:"deleted_at" yaml:"deleted_at,omitempty" db:"deleted_at"`
}

// IsCompleted reports whether the task carries a completion timestamp.
func (t Task) IsCompleted() bool {
	return t.CompletedAt != nil
}

// IsDeleted reports whether the task has been soft-deleted.
func (t Task) IsDeleted() bool {
	return t.DeletedAt != nil
}

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	out := t
	if t.CompletedAt != nil {
		ts := *t.CompletedAt
		out.CompletedAt = &ts
	}
	if t.DeletedAt != nil {
		ts := *t.DeletedAt
		out.DeletedAt = &ts
	}
	return out
}
