package store

import (
	"database/sql"
	"fmt"

	"github.com/marcus/qn/internal/models"
)

// GetAllNotes returns every note ordered by creation time descending,
// ties broken by insertion order. No filtering happens here.
func (s *Store) GetAllNotes() ([]models.NoteRecord, error) {
	rows, err := s.conn.Query(`
		SELECT id, title, content, color, created_at, updated_at
		FROM notes
		ORDER BY created_at DESC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	var notes []models.NoteRecord
	for rows.Next() {
		var n models.NoteRecord
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.Color, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return notes, nil
}

// GetNote returns a single note by ID, or nil if it does not exist.
func (s *Store) GetNote(id string) (*models.NoteRecord, error) {
	var n models.NoteRecord
	err := s.conn.QueryRow(`
		SELECT id, title, content, color, created_at, updated_at
		FROM notes WHERE id = ?`, id).
		Scan(&n.ID, &n.Title, &n.Content, &n.Color, &n.CreatedAt, &n.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query note %s: %w", id, err)
	}
	return &n, nil
}

// PutNote upserts a note by ID, replacing the whole row. Idempotent.
// The write is durable before return. Field contents are not validated
// here; that belongs to the caller.
func (s *Store) PutNote(rec *models.NoteRecord) error {
	return s.withWriteLock(func() error {
		_, err := s.conn.Exec(`
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
			return fmt.Errorf("put note %s: %w", rec.ID, err)
		}
		return nil
	})
}

// RemoveNote deletes a note by ID. Removing an absent ID is not an error.
func (s *Store) RemoveNote(id string) error {
	return s.withWriteLock(func() error {
		if _, err := s.conn.Exec(`DELETE FROM notes WHERE id = ?`, id); err != nil {
			return fmt.Errorf("remove note %s: %w", id, err)
		}
		return nil
	})
}

// CountNotes returns the number of stored notes.
func (s *Store) CountNotes() (int64, error) {
	var count int64
	err := s.conn.QueryRow(`SELECT COUNT(*) FROM notes`).Scan(&count)
	return count, err
}
