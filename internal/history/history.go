// Package history keeps an audit trail of task status transitions in a
// local SQLite database.
//
// History is an independent subsystem: if the database cannot be
// opened, the server logs a warning and runs without it. A nil *Log is
// valid everywhere — writes become no-ops and reads return nothing —
// so callers never need to branch on availability.
package history

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

const schema = `
CREATE TABLE IF NOT EXISTS transitions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	task_id     TEXT NOT NULL,
	from_status TEXT NOT NULL,
	to_status   TEXT NOT NULL,
	detail      TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transitions_task ON transitions(task_id, id);
`

// Transition is one recorded status change.
type Transition struct {
	ID        int64  `json:"id"`
	TaskID    string `json:"task_id"`
	From      string `json:"from_status"`
	To        string `json:"to_status"`
	Detail    string `json:"detail,omitempty"`
	CreatedAt string `json:"created_at"`
}

// Log is the transition audit log.
type Log struct {
	db     *sql.DB
	logger *slog.Logger
}

// New opens (creating if needed) the history database at path.
func New(path string, logger *slog.Logger) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	// modernc.org/sqlite is not safe for concurrent writers on one
	// connection pool entry; a single connection is plenty here.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	return &Log{db: db, logger: logger}, nil
}

// Record appends a transition. Best-effort: failures are logged, never
// returned — a broken audit log must not fail a dispatch.
func (l *Log) Record(taskID string, from, to, detail string) {
	if l == nil || l.db == nil {
		return
	}
	_, err := l.db.Exec(
		`INSERT INTO transitions (task_id, from_status, to_status, detail, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		taskID, from, to, detail, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		l.logger.Warn("history record failed", "task_id", taskID, "error", err)
	}
}

// Recent returns the latest transitions, newest first. When taskID is
// empty, transitions for all tasks are returned.
func (l *Log) Recent(taskID string, limit int) ([]Transition, error) {
	if l == nil || l.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	var rows *sql.Rows
	var err error
	if taskID != "" {
		rows, err = l.db.Query(
			`SELECT id, task_id, from_status, to_status, detail, created_at
			 FROM transitions WHERE task_id = ? ORDER BY id DESC LIMIT ?`,
			taskID, limit,
		)
	} else {
		rows, err = l.db.Query(
			`SELECT id, task_id, from_status, to_status, detail, created_at
			 FROM transitions ORDER BY id DESC LIMIT ?`,
			limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []Transition
	for rows.Next() {
		var t Transition
		if err := rows.Scan(&t.ID, &t.TaskID, &t.From, &t.To, &t.Detail, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Close releases the database handle. Safe on a nil receiver.
func (l *Log) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}
