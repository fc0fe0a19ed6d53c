// Package history records completed runs in a local SQLite database so they
// can be listed from the TUI and the history command.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/marcus/modeldeck/internal/coordinator"
)

// Entry is one recorded run.
type Entry struct {
	ID        int64
	Adapter   string
	Mode      string
	Input     string
	Result    string
	Artifact  string
	Error     string
	ElapsedMS float64
	Output    string // full output as JSON
	CreatedAt time.Time
}

// OK reports whether the run succeeded.
func (e Entry) OK() bool { return e.Error == "" }

// FromResult converts a delivered coordinator result.
func FromResult(res coordinator.Result, at time.Time) Entry {
	e := Entry{
		Adapter:   res.Request.Adapter,
		Mode:      string(res.Request.Payload.Mode),
		Input:     res.Request.Payload.Value(),
		ElapsedMS: res.Elapsed,
		CreatedAt: at,
	}
	if res.Err != nil {
		e.Error = res.Err.Error()
		return e
	}
	e.Result = res.Output.Result()
	e.Artifact = res.Output.Artifact()
	if data, err := json.Marshal(res.Output); err == nil {
		e.Output = string(data)
	}
	return e
}

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store handles SQLite operations for run history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	db, err := sql.Open(driverName, dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) initSchema() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    adapter TEXT NOT NULL,
    mode TEXT NOT NULL,
    input TEXT NOT NULL,
    result TEXT NOT NULL DEFAULT '',
    artifact TEXT NOT NULL DEFAULT '',
    error TEXT NOT NULL DEFAULT '',
    elapsed_ms REAL NOT NULL DEFAULT 0,
    output TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_runs_adapter ON runs(adapter);
`
	_, err := s.db.Exec(schema)
	return err
}

// Record inserts e and returns its id.
func (s *Store) Record(ctx context.Context, e Entry) (int64, error) {
	if e.Adapter == "" {
		return 0, errors.New("entry has no adapter")
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx, `
INSERT INTO runs (adapter, mode, input, result, artifact, error, elapsed_ms, output, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Adapter, e.Mode, e.Input, e.Result, e.Artifact, e.Error, e.ElapsedMS, e.Output,
		e.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns up to limit entries, newest first. An empty adapter matches
// every adapter.
func (s *Store) Recent(ctx context.Context, adapter string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
SELECT id, adapter, mode, input, result, artifact, error, elapsed_ms, output, created_at
FROM runs`
	args := []any{}
	if adapter != "" {
		query += ` WHERE adapter = ?`
		args = append(args, adapter)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e  Entry
			at string
		)
		if err := rows.Scan(&e.ID, &e.Adapter, &e.Mode, &e.Input, &e.Result, &e.Artifact,
			&e.Error, &e.ElapsedMS, &e.Output, &at); err != nil {
			return nil, err
		}
		e.CreatedAt, _ = time.Parse(timeLayout, at)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Count returns the number of recorded runs.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&n)
	return n, err
}

// Prune deletes all but the newest keep entries.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
DELETE FROM runs WHERE id NOT IN (
    SELECT id FROM runs ORDER BY created_at DESC, id DESC LIMIT ?
)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}
