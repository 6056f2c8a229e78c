package tasks

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"taskapp/internal/models"
)

// Service implements the four task operations on top of a Store.
type Service struct {
	store  Store
	now    func() time.Time
	logger *slog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces the time source used for lifecycle timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService wires a service to the given store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		now:    func() time.Time { return time.Now().UTC() },
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListActiveTasks returns every task that has not been soft-deleted, in
// insertion order. The result is never nil.
func (s *Service) ListActiveTasks(ctx context.Context) ([]models.Task, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, &StoreError{Op: "list tasks", Err: err}
	}

	active := make([]models.Task, 0, len(all))
	for _, t := range all {
		if t.IsDeleted() {
			continue
		}
		active = append(active, t)
	}
	return active, nil
}

// CreateTask validates the title and stores a fresh, incomplete task.
func (s *Service) CreateTask(ctx context.Context, title, description string) (models.Task, error) {
	if strings.TrimSpace(title) == "" {
		return models.Task{}, &ValidationError{Field: "title", Reason: "must not be empty"}
	}

	created, err := s.store.Create(ctx, models.Task{
		Title:       title,
		Description: description,
		CreatedAt:   s.now(),
	})
	if err != nil {
		return models.Task{}, &StoreError{Op: "create task", Err: err}
	}
	s.logger.Debug("task created", slog.Int64("id", created.ID))
	return created, nil
}

// GetTask looks a task up by id, soft-deleted tasks included.
func (s *Service) GetTask(ctx context.Context, id int64) (models.Task, error) {
	t, err := s.store.Find(ctx, id)
	if err != nil {
		return models.Task{}, s.lookupError("get task", id, err)
	}
	return t, nil
}

// SetCompletion stamps or clears CompletedAt. Deleted tasks cannot be toggled.
// Completing an already completed task refreshes the timestamp.
func (s *Service) SetCompletion(ctx context.Context, id int64, completed bool) (models.Task, error) {
	t, err := s.findActive(ctx, "set completion", id)
	if err != nil {
		return models.Task{}, err
	}

	if completed {
		now := s.now()
		t.CompletedAt = &now
	} else {
		t.CompletedAt = nil
	}

	updated, err := s.store.Update(ctx, t)
	if err != nil {
		return models.Task{}, s.lookupError("set completion", id, err)
	}
	s.logger.Debug("task completion set", slog.Int64("id", id), slog.Bool("completed", completed))
	return updated, nil
}

// DeleteTask soft-deletes an active task.
func (s *Service) DeleteTask(ctx context.Context, id int64) error {
	t, err := s.findActive(ctx, "delete task", id)
	if err != nil {
		return err
	}

	now := s.now()
	t.DeletedAt = &now
	if _, err := s.store.Update(ctx, t); err != nil {
		return s.lookupError("delete task", id, err)
	}
	s.logger.Debug("task deleted", slog.Int64("id", id))
	return nil
}

func (s *Service) findActive(ctx context.Context, op string, id int64) (models.Task, error) {
	t, err := s.store.Find(ctx, id)
	if err != nil {
		return models.Task{}, s.lookupError(op, id, err)
	}
	if t.IsDeleted() {
		return models.Task{}, &NotFoundError{ID: id}
	}
	return t, nil
}

func (s *Service) lookupError(op string, id int64, err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return &NotFoundError{ID: id}
	}
	return &StoreError{Op: op, Err: err}
}
