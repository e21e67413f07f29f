// Package history persists a local log of orchestrated actions.
//
// Storage is a SQLite database at ~/.config/wslm/history.db (or the
// platform-equivalent path returned by os.UserConfigDir).
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"distrolabs/wslm/internal/domain"

	_ "modernc.org/sqlite"
)

const (
	appDir = "wslm"
	dbFile = "history.db"
)

// pathOverride, when non-empty, replaces the default database path.
// Intended for testing. Use SetPath / ResetPath to manage.
var pathOverride string

// SetPath overrides the database path. Intended for testing.
func SetPath(p string) { pathOverride = p }

// ResetPath clears the path override. Intended for testing.
func ResetPath() { pathOverride = "" }

// Store defines the persistence interface for action records.
type Store interface {
	// Save inserts or updates a record. On insert (ID == 0), an ID is
	// assigned to the record.
	Save(r *Record) error

	// ListRecent returns the most recent n records, newest first.
	ListRecent(n int) ([]Record, error)

	// ListInterrupted returns records still marked "running" — actions
	// cut short by a crash or Ctrl+C.
	ListInterrupted() ([]Record, error)

	// DeleteOlderThan removes finalized records older than d and
	// returns how many were removed.
	DeleteOlderThan(d time.Duration) (int64, error)

	// Close releases database resources.
	Close() error
}

// SQLiteStore implements Store backed by a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// DefaultPath returns the default database path.
func DefaultPath() (string, error) {
	if pathOverride != "" {
		return pathOverride, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("history: unable to determine config directory: %w", err)
	}
	return filepath.Join(base, appDir, dbFile), nil
}

// Open creates or opens the history store at the default path.
func Open() (*SQLiteStore, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return OpenAt(path)
}

// OpenAt creates or opens a SQLite database at the given path,
// creating the parent directory if needed.
func OpenAt(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("history: failed to create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)")
	if err != nil {
		return nil, fmt.Errorf("history: failed to open database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS actions (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			invocation_id TEXT    NOT NULL,
			distro        TEXT    NOT NULL,
			action        TEXT    NOT NULL,
			stopped       INTEGER NOT NULL DEFAULT 0,
			outcome       TEXT    NOT NULL DEFAULT 'running',
			error_message TEXT    NOT NULL DEFAULT '',
			duration_ms   INTEGER NOT NULL DEFAULT 0,
			created_at    TEXT    NOT NULL DEFAULT (datetime('now')),
			updated_at    TEXT    NOT NULL DEFAULT (datetime('now'))
		);
		CREATE INDEX IF NOT EXISTS idx_actions_outcome ON actions(outcome);
	`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("history: migration failed: %w", err)
	}
	return nil
}

// Save inserts a new record (ID == 0) or updates an existing one.
func (s *SQLiteStore) Save(r *Record) error {
	r.UpdatedAt = time.Now().UTC()

	if r.ID == 0 {
		if r.CreatedAt.IsZero() {
			r.CreatedAt = r.UpdatedAt
		}
		result, err := s.db.Exec(`
			INSERT INTO actions (invocation_id, distro, action, stopped, outcome, error_message, duration_ms, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.InvocationID, r.Distro, string(r.Action), boolToInt(r.Stopped),
			r.Outcome, r.ErrorMessage, r.DurationMs,
			r.CreatedAt.Format(time.RFC3339Nano), r.UpdatedAt.Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("history: insert failed: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("history: failed to get last insert ID: %w", err)
		}
		r.ID = id
		return nil
	}

	result, err := s.db.Exec(`
		UPDATE actions SET invocation_id=?, distro=?, action=?, stopped=?,
		       outcome=?, error_message=?, duration_ms=?, updated_at=?
		WHERE id=?`,
		r.InvocationID, r.Distro, string(r.Action), boolToInt(r.Stopped),
		r.Outcome, r.ErrorMessage, r.DurationMs,
		r.UpdatedAt.Format(time.RFC3339Nano), r.ID,
	)
	if err != nil {
		return fmt.Errorf("history: update failed: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("history: record %d not found", r.ID)
	}
	return nil
}

// ListRecent returns the most recent n records, newest first.
func (s *SQLiteStore) ListRecent(n int) ([]Record, error) {
	rows, err := s.db.Query(`
		SELECT id, invocation_id, distro, action, stopped, outcome, error_message, duration_ms, created_at, updated_at
		FROM actions ORDER BY created_at DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("history: query failed: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ListInterrupted returns records never finalized.
func (s *SQLiteStore) ListInterrupted() ([]Record, error) {
	rows, err := s.db.Query(`
		SELECT id, invocation_id, distro, action, stopped, outcome, error_message, duration_ms, created_at, updated_at
		FROM actions WHERE outcome = 'running' ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("history: query failed: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// DeleteOlderThan removes finalized records older than d.
func (s *SQLiteStore) DeleteOlderThan(d time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-d).Format(time.RFC3339Nano)
	result, err := s.db.Exec(`
		DELETE FROM actions WHERE outcome != 'running' AND updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("history: delete failed: %w", err)
	}
	return result.RowsAffected()
}

// Close releases database resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var (
			r                     Record
			action                string
			stopped               int
			createdStr, updatedStr string
		)
		err := rows.Scan(
			&r.ID, &r.InvocationID, &r.Distro, &action, &stopped,
			&r.Outcome, &r.ErrorMessage, &r.DurationMs,
			&createdStr, &updatedStr,
		)
		if err != nil {
			return nil, fmt.Errorf("history: scan failed: %w", err)
		}
		r.Action = domain.ActionID(action)
		r.Stopped = stopped != 0
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		r.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedStr)
		records = append(records, r)
	}
	return records, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
