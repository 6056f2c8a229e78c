package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"taskapp/internal/models"
)

const schema = `
	CREATE TABLE IF NOT EXISTS tasks (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL CONSTRAINT tasks_title_not_blank CHECK (btrim(title) <> ''),
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		completed_at TIMESTAMPTZ,
		deleted_at TIMESTAMPTZ
	);
`

const taskColumns = `id, title, description, created_at, completed_at, deleted_at`

// DB is a PostgreSQL-backed task store.
type DB struct {
	log  *slog.Logger
	conn *sqlx.DB
}

// New connects to address and bootstraps the tasks table.
func New(ctx context.Context, address string, log *slog.Logger) (*DB, error) {
	conn, err := sqlx.ConnectContext(ctx, "pgx", address)
	if err != nil {
		log.Error("connection problem", "error", err)
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	db := &DB{log: log, conn: conn}
	if err := db.Migrate(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates the tasks table if it does not exist yet.
func (db *DB) Migrate(ctx context.Context) error {
	db.log.Debug("running postgres schema bootstrap")
	if _, err := db.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply tasks schema: %w", err)
	}
	return nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

func (db *DB) List(ctx context.Context) ([]models.Task, error) {
	const q = `SELECT ` + taskColumns + ` FROM tasks ORDER BY id ASC`

	out := []models.Task{}
	if err := db.conn.SelectContext(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return out, nil
}

func (db *DB) Create(ctx context.Context, t models.Task) (models.Task, error) {
	const q = `
		INSERT INTO tasks(title, description, created_at, completed_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + taskColumns

	var out models.Task
	if err := db.conn.GetContext(ctx, &out, q, t.Title, t.Description, t.CreatedAt, t.CompletedAt, t.DeletedAt); err != nil {
		if name, ok := checkViolation(err); ok {
			return models.Task{}, fmt.Errorf("insert task: constraint %s violated: %w", name, err)
		}
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return out, nil
}

func (db *DB) Find(ctx context.Context, id int64) (models.Task, error) {
	const q = `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	var out models.Task
	if err := db.conn.GetContext(ctx, &out, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Task{}, models.ErrNotFound
		}
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return out, nil
}

// Update writes the lifecycle timestamps of a task that is not deleted yet.
// The row lock taken by UPDATE serializes concurrent writers on the same id.
func (db *DB) Update(ctx context.Context, t models.Task) (models.Task, error) {
	const q = `
		UPDATE tasks
		SET completed_at = $2,
		    deleted_at = $3
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + taskColumns

	var out models.Task
	if err := db.conn.GetContext(ctx, &out, q, t.ID, t.CompletedAt, t.DeletedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Task{}, models.ErrNotFound
		}
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}
	return out, nil
}

// pg helpers

func checkViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23514" {
		return pgErr.ConstraintName, true
	}
	return "", false
}
