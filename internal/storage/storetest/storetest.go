// Package storetest holds the conformance checks every task store must pass.
package storetest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"taskapp/internal/models"
	"taskapp/internal/tasks"
)

// Run exercises newStore against the tasks.Store contract. newStore must
// return an empty store for every call.
func Run(t *testing.T, newStore func(t *testing.T) tasks.Store) {
	t.Helper()

	t.Run("CreateAssignsDistinctIDs", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		a := mustCreate(t, s, "Buy milk", "2%")
		b := mustCreate(t, s, "Buy milk", "2%")
		if a.ID == b.ID {
			t.Fatalf("expected distinct ids, both are %d", a.ID)
		}

		list, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List returned error: %v", err)
		}
		if len(list) != 2 || list[0].ID != a.ID || list[1].ID != b.ID {
			t.Fatalf("expected [%d %d] in insertion order, got %+v", a.ID, b.ID, list)
		}
	})

	t.Run("CreateKeepsFields", func(t *testing.T) {
		s := newStore(t)

		created := mustCreate(t, s, "Write report", "")
		if created.Title != "Write report" {
			t.Fatalf("expected title %q, got %q", "Write report", created.Title)
		}
		if created.Description != "" {
			t.Fatalf("expected empty description, got %q", created.Description)
		}
		if created.CompletedAt != nil || created.DeletedAt != nil {
			t.Fatalf("expected no lifecycle timestamps, got %+v", created)
		}
	})

	t.Run("FindMissing", func(t *testing.T) {
		s := newStore(t)

		_, err := s.Find(context.Background(), 999)
		if !errors.Is(err, models.ErrNotFound) {
			t.Fatalf("expected models.ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		s := newStore(t)

		_, err := s.Update(context.Background(), models.Task{ID: 999})
		if !errors.Is(err, models.ErrNotFound) {
			t.Fatalf("expected models.ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateSetsAndClearsCompletion", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		created := mustCreate(t, s, "task", "")

		done := time.Now().UTC().Truncate(time.Millisecond)
		created.CompletedAt = &done
		updated, err := s.Update(ctx, created)
		if err != nil {
			t.Fatalf("Update returned error: %v", err)
		}
		if updated.CompletedAt == nil || !updated.CompletedAt.Equal(done) {
			t.Fatalf("expected completed_at %v, got %v", done, updated.CompletedAt)
		}

		updated.CompletedAt = nil
		cleared, err := s.Update(ctx, updated)
		if err != nil {
			t.Fatalf("Update returned error: %v", err)
		}
		if cleared.CompletedAt != nil {
			t.Fatalf("expected completed_at cleared, got %v", *cleared.CompletedAt)
		}
	})

	t.Run("LongTitle", func(t *testing.T) {
		s := newStore(t)
		title := strings.Repeat("milk ", 1000)

		created := mustCreate(t, s, title, "")
		found, err := s.Find(context.Background(), created.ID)
		if err != nil {
			t.Fatalf("Find returned error: %v", err)
		}
		if found.Title != title {
			t.Fatalf("expected %d-byte title to round trip, got %d bytes", len(title), len(found.Title))
		}
	})

	t.Run("UpdateDeletedIsNotFound", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		created := mustCreate(t, s, "task", "")

		gone := time.Now().UTC().Truncate(time.Millisecond)
		deleted := created
		deleted.DeletedAt = &gone
		if _, err := s.Update(ctx, deleted); err != nil {
			t.Fatalf("Update returned error: %v", err)
		}

		// A stale copy without deleted_at must not resurrect the task.
		if _, err := s.Update(ctx, created); !errors.Is(err, models.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for stale update, got %v", err)
		}

		// A second deletion of the same task is rejected as well.
		later := gone.Add(time.Second)
		deleted.DeletedAt = &later
		if _, err := s.Update(ctx, deleted); !errors.Is(err, models.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for repeated delete, got %v", err)
		}

		found, err := s.Find(ctx, created.ID)
		if err != nil {
			t.Fatalf("Find returned error: %v", err)
		}
		if found.DeletedAt == nil || !found.DeletedAt.Equal(gone) {
			t.Fatalf("expected deleted_at %v to stay, got %v", gone, found.DeletedAt)
		}

		list, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List returned error: %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("expected soft-deleted task to stay in List, got %d tasks", len(list))
		}
	})

	t.Run("ConcurrentCreates", func(t *testing.T) {
		s := newStore(t)
		const n = 20

		var wg sync.WaitGroup
		ids := make(chan int64, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				created, err := s.Create(context.Background(), models.Task{Title: "parallel", CreatedAt: time.Now().UTC()})
				if err != nil {
					t.Errorf("Create returned error: %v", err)
					return
				}
				ids <- created.ID
			}()
		}
		wg.Wait()
		close(ids)

		seen := make(map[int64]struct{}, n)
		for id := range ids {
			if _, dup := seen[id]; dup {
				t.Fatalf("id %d allocated twice", id)
			}
			seen[id] = struct{}{}
		}
		if len(seen) != n {
			t.Fatalf("expected %d tasks, got %d", n, len(seen))
		}
	})
}

func mustCreate(t *testing.T, s tasks.Store, title, description string) models.Task {
	t.Helper()

	created, err := s.Create(context.Background(), models.Task{
		Title:       title,
		Description: description,
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	})
	if err != nil {
		t.Fatalf("failed to prepare task: %v", err)
	}
	return created
}
