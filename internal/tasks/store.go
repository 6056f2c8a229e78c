package tasks

import (
	"context"

	"taskapp/internal/models"
)

// Store is the persistence contract the service relies on. List returns every
// task, soft-deleted ones included, in insertion order; filtering is the
// service's job. Update only applies to a task that is not soft-deleted; a
// deleted or missing task yields models.ErrNotFound, checked in the same write.
type Store interface {
	List(ctx context.Context) ([]models.Task, error)
	Create(ctx context.Context, t models.Task) (models.Task, error)
	Find(ctx context.Context, id int64) (models.Task, error)
	Update(ctx context.Context, t models.Task) (models.Task, error)
}
