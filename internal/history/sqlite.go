package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteRecorder appends wake events to a single append-only table. No
// migrations: the schema is created once on open and never changes,
// grounded on marvin-bitterlich-orc/internal/db's sqlite-backed
// persistence (mattn/go-sqlite3), but scoped to this one table instead of
// that repo's full migration framework — there is nothing here to
// migrate.
type SQLiteRecorder struct {
	db *sql.DB
}

// NewSQLiteRecorder opens (creating if necessary) the database at path and
// ensures the wake_events table exists.
func NewSQLiteRecorder(path string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS wake_events (
		ts INTEGER NOT NULL,
		phase TEXT NOT NULL,
		early INTEGER NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}

	return &SQLiteRecorder{db: db}, nil
}

func (r *SQLiteRecorder) RecordWake(at time.Time, phase string, early bool) error {
	_, err := r.db.Exec(
		`INSERT INTO wake_events (ts, phase, early) VALUES (?, ?, ?)`,
		at.Unix(), phase, early,
	)
	if err != nil {
		return fmt.Errorf("history: record wake: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
