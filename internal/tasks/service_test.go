package tasks_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"taskapp/internal/models"
	"taskapp/internal/storage/memory"
	"taskapp/internal/tasks"
)

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newService(t *testing.T) (*tasks.Service, *memory.Store, *fixedClock) {
	t.Helper()

	clock := &fixedClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	store := memory.New()
	return tasks.NewService(store, tasks.WithClock(clock.Now)), store, clock
}

func mustCreateTask(t *testing.T, svc *tasks.Service, title, description string) models.Task {
	t.Helper()

	task, err := svc.CreateTask(context.Background(), title, description)
	if err != nil {
		t.Fatalf("failed to prepare task: %v", err)
	}
	return task
}

func TestServiceCreateTask_Success(t *testing.T) {
	t.Parallel()

	svc, _, clock := newService(t)

	task := mustCreateTask(t, svc, "Buy milk", "2%")
	if task.ID == 0 {
		t.Fatalf("expected id to be assigned")
	}
	if task.Title != "Buy milk" || task.Description != "2%" {
		t.Fatalf("unexpected fields %+v", task)
	}
	if !task.CreatedAt.Equal(clock.now) {
		t.Fatalf("expected created_at %v, got %v", clock.now, task.CreatedAt)
	}
	if task.CompletedAt != nil || task.DeletedAt != nil {
		t.Fatalf("expected fresh task, got %+v", task)
	}
}

func TestServiceCreateTask_EmptyTitle(t *testing.T) {
	t.Parallel()

	for _, title := range []string{"", "   ", "\t\n"} {
		svc, _, _ := newService(t)

		_, err := svc.CreateTask(context.Background(), title, "description")
		if !errors.Is(err, tasks.ErrValidation) {
			t.Fatalf("title %q: expected ErrValidation, got %v", title, err)
		}
		var vErr *tasks.ValidationError
		if !errors.As(err, &vErr) || vErr.Field != "title" {
			t.Fatalf("title %q: expected *ValidationError on title, got %v", title, err)
		}

		list, err := svc.ListActiveTasks(context.Background())
		if err != nil {
			t.Fatalf("ListActiveTasks returned error: %v", err)
		}
		if len(list) != 0 {
			t.Fatalf("title %q: store was mutated, %d tasks listed", title, len(list))
		}
	}
}

func TestServiceCreateTask_DuplicatesGetDistinctIDs(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)

	first := mustCreateTask(t, svc, "Same", "same")
	second := mustCreateTask(t, svc, "Same", "same")
	if first.ID == second.ID {
		t.Fatalf("expected distinct ids, got %d twice", first.ID)
	}

	list, err := svc.ListActiveTasks(context.Background())
	if err != nil {
		t.Fatalf("ListActiveTasks returned error: %v", err)
	}
	if len(list) != 2 || list[0].ID != first.ID || list[1].ID != second.ID {
		t.Fatalf("expected both tasks in creation order, got %+v", list)
	}
}

func TestServiceListActiveTasks_EmptyIsNotNil(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)

	list, err := svc.ListActiveTasks(context.Background())
	if err != nil {
		t.Fatalf("ListActiveTasks returned error: %v", err)
	}
	if list == nil {
		t.Fatalf("expected empty non-nil slice")
	}
}

func TestServiceSetCompletion_RoundTripClears(t *testing.T) {
	t.Parallel()

	svc, _, clock := newService(t)
	task := mustCreateTask(t, svc, "task", "")

	clock.Advance(time.Minute)
	done, err := svc.SetCompletion(context.Background(), task.ID, true)
	if err != nil {
		t.Fatalf("SetCompletion(true) returned error: %v", err)
	}
	if done.CompletedAt == nil || !done.CompletedAt.Equal(clock.now) {
		t.Fatalf("expected completed_at %v, got %v", clock.now, done.CompletedAt)
	}

	undone, err := svc.SetCompletion(context.Background(), task.ID, false)
	if err != nil {
		t.Fatalf("SetCompletion(false) returned error: %v", err)
	}
	if undone.CompletedAt != nil {
		t.Fatalf("expected completed_at cleared, got %v", *undone.CompletedAt)
	}
}

func TestServiceSetCompletion_Idempotent(t *testing.T) {
	t.Parallel()

	svc, _, clock := newService(t)
	task := mustCreateTask(t, svc, "task", "")

	if _, err := svc.SetCompletion(context.Background(), task.ID, true); err != nil {
		t.Fatalf("SetCompletion returned error: %v", err)
	}
	clock.Advance(time.Hour)
	again, err := svc.SetCompletion(context.Background(), task.ID, true)
	if err != nil {
		t.Fatalf("second SetCompletion returned error: %v", err)
	}
	if again.CompletedAt == nil || !again.CompletedAt.Equal(clock.now) {
		t.Fatalf("expected refreshed completed_at %v, got %v", clock.now, again.CompletedAt)
	}

	open, err := svc.SetCompletion(context.Background(), task.ID, false)
	if err != nil {
		t.Fatalf("SetCompletion(false) returned error: %v", err)
	}
	open, err = svc.SetCompletion(context.Background(), open.ID, false)
	if err != nil {
		t.Fatalf("repeated SetCompletion(false) returned error: %v", err)
	}
	if open.CompletedAt != nil {
		t.Fatalf("expected task to stay open")
	}
}

func TestServiceSetCompletion_NotFound(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)

	_, err := svc.SetCompletion(context.Background(), 42, true)
	var nfErr *tasks.NotFoundError
	if !errors.As(err, &nfErr) || nfErr.ID != 42 {
		t.Fatalf("expected *NotFoundError for id 42, got %v", err)
	}
}

func TestServiceSetCompletion_DeletedTask(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)
	task := mustCreateTask(t, svc, "task", "")
	if err := svc.DeleteTask(context.Background(), task.ID); err != nil {
		t.Fatalf("DeleteTask returned error: %v", err)
	}

	_, err := svc.SetCompletion(context.Background(), task.ID, true)
	if !errors.Is(err, tasks.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestServiceDeleteTask_SoftDeletes(t *testing.T) {
	t.Parallel()

	svc, _, clock := newService(t)
	keep := mustCreateTask(t, svc, "keep", "")
	drop := mustCreateTask(t, svc, "drop", "")

	clock.Advance(time.Minute)
	if err := svc.DeleteTask(context.Background(), drop.ID); err != nil {
		t.Fatalf("DeleteTask returned error: %v", err)
	}

	list, err := svc.ListActiveTasks(context.Background())
	if err != nil {
		t.Fatalf("ListActiveTasks returned error: %v", err)
	}
	if len(list) != 1 || list[0].ID != keep.ID {
		t.Fatalf("expected only task %d listed, got %+v", keep.ID, list)
	}

	found, err := svc.GetTask(context.Background(), drop.ID)
	if err != nil {
		t.Fatalf("GetTask returned error: %v", err)
	}
	if found.DeletedAt == nil || !found.DeletedAt.Equal(clock.now) {
		t.Fatalf("expected deleted_at %v, got %v", clock.now, found.DeletedAt)
	}
}

func TestServiceDeleteTask_CompletedTask(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)
	task := mustCreateTask(t, svc, "task", "")
	if _, err := svc.SetCompletion(context.Background(), task.ID, true); err != nil {
		t.Fatalf("SetCompletion returned error: %v", err)
	}
	if err := svc.DeleteTask(context.Background(), task.ID); err != nil {
		t.Fatalf("DeleteTask returned error: %v", err)
	}

	found, err := svc.GetTask(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("GetTask returned error: %v", err)
	}
	if found.CompletedAt == nil || found.DeletedAt == nil {
		t.Fatalf("expected both timestamps to be kept, got %+v", found)
	}
}

func TestServiceDeleteTask_NotFound(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)
	task := mustCreateTask(t, svc, "task", "")

	if err := svc.DeleteTask(context.Background(), 999); !errors.Is(err, tasks.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}

	if err := svc.DeleteTask(context.Background(), task.ID); err != nil {
		t.Fatalf("DeleteTask returned error: %v", err)
	}
	if err := svc.DeleteTask(context.Background(), task.ID); !errors.Is(err, tasks.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for already-deleted id, got %v", err)
	}
}

func TestServiceGetTask_NotFound(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)

	if _, err := svc.GetTask(context.Background(), 7); !errors.Is(err, tasks.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestServiceScenario_BuyMilk(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)
	ctx := context.Background()

	created := mustCreateTask(t, svc, "Buy milk", "2%")

	list, err := svc.ListActiveTasks(ctx)
	if err != nil {
		t.Fatalf("ListActiveTasks returned error: %v", err)
	}
	if len(list) != 1 || list[0].Title != "Buy milk" {
		t.Fatalf("expected exactly one task titled Buy milk, got %+v", list)
	}

	done, err := svc.SetCompletion(ctx, created.ID, true)
	if err != nil {
		t.Fatalf("SetCompletion returned error: %v", err)
	}
	if done.CompletedAt == nil {
		t.Fatalf("expected completed_at to be present")
	}

	if err := svc.DeleteTask(ctx, created.ID); err != nil {
		t.Fatalf("DeleteTask returned error: %v", err)
	}
	list, err = svc.ListActiveTasks(ctx)
	if err != nil {
		t.Fatalf("ListActiveTasks returned error: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %+v", list)
	}
}

type failingStore struct{ err error }

func (f failingStore) List(context.Context) ([]models.Task, error) { return nil, f.err }

func (f failingStore) Create(context.Context, models.Task) (models.Task, error) {
	return models.Task{}, f.err
}

func (f failingStore) Find(context.Context, int64) (models.Task, error) {
	return models.Task{}, f.err
}

func (f failingStore) Update(context.Context, models.Task) (models.Task, error) {
	return models.Task{}, f.err
}

func TestServiceStoreFailuresAreWrapped(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	svc := tasks.NewService(failingStore{err: cause})
	ctx := context.Background()

	_, listErr := svc.ListActiveTasks(ctx)
	_, createErr := svc.CreateTask(ctx, "task", "")
	_, completeErr := svc.SetCompletion(ctx, 1, true)
	deleteErr := svc.DeleteTask(ctx, 1)

	for name, err := range map[string]error{
		"list":     listErr,
		"create":   createErr,
		"complete": completeErr,
		"delete":   deleteErr,
	} {
		var sErr *tasks.StoreError
		if !errors.As(err, &sErr) {
			t.Fatalf("%s: expected *StoreError, got %v", name, err)
		}
		if !errors.Is(err, cause) {
			t.Fatalf("%s: expected cause to be wrapped, got %v", name, err)
		}
		if !errors.Is(err, tasks.ErrStore) {
			t.Fatalf("%s: expected ErrStore match", name)
		}
	}
}

// barrierStore holds every Find until the expected number of callers has
// looked the task up, so their updates race against the same snapshot.
type barrierStore struct {
	tasks.Store
	arrived sync.WaitGroup
}

func newBarrierStore(inner tasks.Store, callers int) *barrierStore {
	b := &barrierStore{Store: inner}
	b.arrived.Add(callers)
	return b
}

func (b *barrierStore) Find(ctx context.Context, id int64) (models.Task, error) {
	t, err := b.Store.Find(ctx, id)
	b.arrived.Done()
	b.arrived.Wait()
	return t, err
}

func seedTask(t *testing.T, store tasks.Store) models.Task {
	t.Helper()

	task, err := store.Create(context.Background(), models.Task{Title: "Buy milk", CreatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("failed to seed task: %v", err)
	}
	return task
}

func TestServiceDeleteTask_ConcurrentDeletesOnlyOneWins(t *testing.T) {
	t.Parallel()

	inner := memory.New()
	task := seedTask(t, inner)
	svc := tasks.NewService(newBarrierStore(inner, 2))

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.DeleteTask(context.Background(), task.ID)
		}(i)
	}
	wg.Wait()

	var ok, notFound int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, tasks.ErrNotFound):
			notFound++
		default:
			t.Fatalf("unexpected error %v", err)
		}
	}
	if ok != 1 || notFound != 1 {
		t.Fatalf("expected one success and one not found, got errs=%v", errs)
	}
}

func TestServiceSetCompletion_RacingDeleteNeverReturnsDeletedTask(t *testing.T) {
	t.Parallel()

	inner := memory.New()
	task := seedTask(t, inner)
	svc := tasks.NewService(newBarrierStore(inner, 2))

	var (
		wg          sync.WaitGroup
		deleteErr   error
		completeErr error
		completed   models.Task
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		deleteErr = svc.DeleteTask(context.Background(), task.ID)
	}()
	go func() {
		defer wg.Done()
		completed, completeErr = svc.SetCompletion(context.Background(), task.ID, true)
	}()
	wg.Wait()

	if deleteErr != nil {
		t.Fatalf("delete should succeed, got %v", deleteErr)
	}
	switch {
	case completeErr == nil:
		if completed.IsDeleted() {
			t.Fatalf("completion reported success on a deleted task: %+v", completed)
		}
	case errors.Is(completeErr, tasks.ErrNotFound):
		var nf *tasks.NotFoundError
		if !errors.As(completeErr, &nf) || nf.ID != task.ID {
			t.Fatalf("expected NotFoundError for %d, got %v", task.ID, completeErr)
		}
	default:
		t.Fatalf("unexpected completion error %v", completeErr)
	}

	found, err := inner.Find(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("Find returned error: %v", err)
	}
	if !found.IsDeleted() {
		t.Fatalf("task should stay deleted: %+v", found)
	}
}
