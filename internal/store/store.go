// Package store owns the device-local durable state: the notes table
// (current note records) and the pending_ops table (mutations awaiting
// remote confirmation). Both live in one SQLite database under the
// base directory and are created on first use.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	dataDir = ".qn"
	dbFile  = "notes.db"
)

// Store wraps the local database connection.
type Store struct {
	conn    *sql.DB
	baseDir string
}

const schema = `
CREATE TABLE IF NOT EXISTS notes (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	content    TEXT NOT NULL DEFAULT '',
	color      TEXT NOT NULL DEFAULT 'yellow',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS pending_ops (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	kind        TEXT NOT NULL,
	note_id     TEXT NOT NULL,
	payload     TEXT,
	enqueued_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_info (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

INSERT OR IGNORE INTO schema_info (key, value) VALUES ('version', '1');
`

// Open opens the note database under baseDir, creating the directory
// and schema on first use.
func Open(baseDir string) (*Store, error) {
	dbPath := filepath.Join(baseDir, dataDir, dbFile)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL allows concurrent reads while writes are serialized
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Busy timeout as fallback protection (matches lock timeout)
	if _, err := conn.Exec("PRAGMA busy_timeout=500"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	// Slightly faster writes, still safe with WAL
	conn.Exec("PRAGMA synchronous=NORMAL")

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{conn: conn, baseDir: baseDir}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.conn.Close()
}

// BaseDir returns the base directory for the store.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// withWriteLock executes fn while holding an exclusive write lock.
// This prevents concurrent writes from multiple processes.
func (s *Store) withWriteLock(fn func() error) error {
	locker := newWriteLocker(s.baseDir)
	if err := locker.acquire(defaultTimeout); err != nil {
		return err
	}
	defer locker.release()
	return fn()
}
