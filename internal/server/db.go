package server

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/marcus/qn/internal/models"
	_ "modernc.org/sqlite"
)

// ErrNoSuchNote signals an update against an id the server does not
// hold. The handler maps it to 404.
var ErrNoSuchNote = errors.New("no such note")

// NotesDB is the server-side note storage.
type NotesDB struct {
	conn *sql.DB
}

const notesSchema = `
CREATE TABLE IF NOT EXISTS notes (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	content    TEXT NOT NULL DEFAULT '',
	color      TEXT NOT NULL DEFAULT 'yellow',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_info (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

INSERT OR IGNORE INTO schema_info (key, value) VALUES ('version', '1');
`

// OpenDB opens the server note database at path, creating the parent
// directory and schema on first use.
func OpenDB(path string) (*NotesDB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=500",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			conn.Close()
			return nil, fmt.Errorf("set pragma %q: %w", p, err)
		}
	}

	if _, err := conn.Exec(notesSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &NotesDB{conn: conn}, nil
}

// Close closes the database connection.
func (db *NotesDB) Close() error {
	return db.conn.Close()
}

// Ping verifies the database is reachable.
func (db *NotesDB) Ping() error {
	return db.conn.Ping()
}

// Upsert stores a record, replacing any existing row with the same id.
// Inserts are upserts so a client replaying a drained-and-crashed push
// converges instead of erroring.
func (db *NotesDB) Upsert(rec *models.NoteRecord) error {
	_, err := db.conn.Exec(`
		INSERT INTO notes (id, title, content, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			color = excluded.color,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		rec.ID, rec.Title, rec.Content, string(rec.Color), rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert note: %w", err)
	}
	return nil
}

// Replace updates an existing record. Returns ErrNoSuchNote when the
// id is not present.
func (db *NotesDB) Replace(rec *models.NoteRecord) error {
	res, err := db.conn.Exec(`
		UPDATE notes SET title = ?, content = ?, color = ?, created_at = ?, updated_at = ?
		WHERE id = ?`,
		rec.Title, rec.Content, string(rec.Color), rec.CreatedAt, rec.UpdatedAt, rec.ID)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNoSuchNote
	}
	return nil
}

// Remove deletes a record. Removing an absent id is not an error.
func (db *NotesDB) Remove(id string) error {
	if _, err := db.conn.Exec(`DELETE FROM notes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}

// All returns every record, most recently updated first.
func (db *NotesDB) All() ([]models.NoteRecord, error) {
	rows, err := db.conn.Query(`
		SELECT id, title, content, color, created_at, updated_at
		FROM notes
		ORDER BY updated_at DESC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	recs := []models.NoteRecord{}
	for rows.Next() {
		var (
			rec   models.NoteRecord
			color string
		)
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Content, &color, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		rec.Color = models.Color(color)
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return recs, nil
}
