package memory

import (
	"context"
	"sync"

	"taskapp/internal/models"
)

// Store keeps tasks in a slice guarded by a read/write lock. Ids are handed out
// from a counter under the write lock, so concurrent creates never collide.
type Store struct {
	mu     sync.RWMutex
	nextID int64
	tasks  []models.Task
	index  map[int64]int
}

// New returns an empty store whose first id is 1.
func New() *Store {
	return &Store{
		nextID: 1,
		index:  make(map[int64]int),
	}
}

// List returns a copy of every task in insertion order.
func (s *Store) List(_ context.Context) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.Clone())
	}
	return out, nil
}

// Create assigns the next id and appends the task.
func (s *Store) Create(_ context.Context, t models.Task) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t = t.Clone()
	t.ID = s.nextID
	s.nextID++

	s.index[t.ID] = len(s.tasks)
	s.tasks = append(s.tasks, t)
	return t.Clone(), nil
}

// Find returns the task with the given id.
func (s *Store) Find(_ context.Context, id int64) (models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return models.Task{}, models.ErrNotFound
	}
	return s.tasks[i].Clone(), nil
}

// Update persists the completion and deletion timestamps of an active task.
// Deleted tasks are reported as missing.
func (s *Store) Update(_ context.Context, t models.Task) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[t.ID]
	if !ok || s.tasks[i].IsDeleted() {
		return models.Task{}, models.ErrNotFound
	}

	cur := s.tasks[i]
	next := t.Clone()
	cur.CompletedAt = next.CompletedAt
	cur.DeletedAt = next.DeletedAt
	s.tasks[i] = cur
	return cur.Clone(), nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() error { return nil }
