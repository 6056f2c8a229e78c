package postgres

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"taskapp/internal/storage/storetest"
	"taskapp/internal/tasks"
)

func TestStoreContract(t *testing.T) {
	dbURL := os.Getenv("TASKAPP_TEST_POSTGRES_URL")
	if dbURL == "" {
		t.Skip("TASKAPP_TEST_POSTGRES_URL not set (integration test)")
	}

	storetest.Run(t, func(t *testing.T) tasks.Store {
		ctx := context.Background()
		db, err := New(ctx, dbURL, slog.New(slog.NewTextHandler(io.Discard, nil)))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := db.conn.ExecContext(ctx, `TRUNCATE tasks RESTART IDENTITY`); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = db.Close() })
		return db
	})
}
