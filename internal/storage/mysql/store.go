package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	driver "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"taskapp/internal/models"
)

const createTasks = `CREATE TABLE IF NOT EXISTS tasks (
    id BIGINT PRIMARY KEY AUTO_INCREMENT,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    created_at DATETIME(6) NOT NULL,
    completed_at DATETIME(6) NULL,
    deleted_at DATETIME(6) NULL
)`

const taskColumns = `id, title, description, created_at, completed_at, deleted_at`

// Store is a MySQL-backed task store.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// New connects using a go-sql-driver DSN and bootstraps the schema. The DSN is
// normalized so DATETIME columns scan into time.Time and UPDATE reports
// matched rather than changed rows.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	cfg, err := driver.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	cfg.Loc = time.UTC

	db, err := sqlx.ConnectContext(ctx, "mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) migrate(ctx context.Context) error {
	s.logger.Debug("bootstrapping mysql schema")
	if _, err := s.db.ExecContext(ctx, createTasks); err != nil {
		return fmt.Errorf("create tasks table: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]models.Task, error) {
	out := []models.Task{}
	if err := s.db.SelectContext(ctx, &out, `SELECT `+taskColumns+` FROM tasks ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return out, nil
}

func (s *Store) Create(ctx context.Context, t models.Task) (models.Task, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO tasks(title, description, created_at, completed_at, deleted_at) VALUES(?,?,?,?,?)`,
		t.Title, t.Description, t.CreatedAt, t.CompletedAt, t.DeletedAt)
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Task{}, fmt.Errorf("task id: %w", err)
	}
	return s.Find(ctx, id)
}

func (s *Store) Find(ctx context.Context, id int64) (models.Task, error) {
	var out models.Task
	err := s.db.GetContext(ctx, &out, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, models.ErrNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, t models.Task) (models.Task, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET completed_at = ?, deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		t.CompletedAt, t.DeletedAt, t.ID)
	if err != nil {
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Task{}, err
	}
	if affected == 0 {
		return models.Task{}, models.ErrNotFound
	}
	return s.Find(ctx, t.ID)
}
