package store

import (
	"encoding/json"
	"fmt"

	"github.com/marcus/qn/internal/models"
)

// EnqueueOp appends a pending operation to the log, assigning its
// sequence number. The entry is durable before return. The log is
// append-only: entries are never reordered or merged, so a create
// followed by a delete of the same note stays two entries.
func (s *Store) EnqueueOp(op *models.PendingOperation) error {
	var payload any
	if op.Note != nil {
		data, err := json.Marshal(op.Note)
		if err != nil {
			return fmt.Errorf("marshal op payload: %w", err)
		}
		payload = string(data)
	}

	return s.withWriteLock(func() error {
		res, err := s.conn.Exec(`
			INSERT INTO pending_ops (kind, note_id, payload, enqueued_at)
			VALUES (?, ?, ?, ?)`,
			string(op.Kind), op.NoteID, payload, op.EnqueuedAt)
		if err != nil {
			return fmt.Errorf("enqueue op: %w", err)
		}
		seq, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		op.Seq = seq
		return nil
	})
}

// PendingOps returns all queued operations oldest-first without
// removing them. Peek semantics: a partial failure while processing
// the result loses nothing, and a drain is safely re-runnable from the
// start after a crash.
func (s *Store) PendingOps() ([]models.PendingOperation, error) {
	rows, err := s.conn.Query(`
		SELECT seq, kind, note_id, payload, enqueued_at
		FROM pending_ops
		ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query pending ops: %w", err)
	}
	defer rows.Close()

	var ops []models.PendingOperation
	for rows.Next() {
		var (
			op      models.PendingOperation
			kind    string
			payload *string
		)
		if err := rows.Scan(&op.Seq, &kind, &op.NoteID, &payload, &op.EnqueuedAt); err != nil {
			return nil, fmt.Errorf("scan pending op: %w", err)
		}
		op.Kind = models.OpKind(kind)
		if payload != nil && *payload != "" {
			var note models.NoteRecord
			if err := json.Unmarshal([]byte(*payload), &note); err != nil {
				return nil, fmt.Errorf("unmarshal op payload seq=%d: %w", op.Seq, err)
			}
			op.Note = &note
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return ops, nil
}

// ClearOps removes all queued operations in one step. Called only
// after every entry has been confirmed applied remotely.
func (s *Store) ClearOps() error {
	return s.withWriteLock(func() error {
		if _, err := s.conn.Exec(`DELETE FROM pending_ops`); err != nil {
			return fmt.Errorf("clear pending ops: %w", err)
		}
		return nil
	})
}

// ClearOpsThrough removes all queued operations with sequence numbers
// up to and including maxSeq. Operations enqueued while a drain was in
// flight carry higher sequence numbers and survive for the next cycle.
func (s *Store) ClearOpsThrough(maxSeq int64) error {
	return s.withWriteLock(func() error {
		if _, err := s.conn.Exec(`DELETE FROM pending_ops WHERE seq <= ?`, maxSeq); err != nil {
			return fmt.Errorf("clear pending ops through %d: %w", maxSeq, err)
		}
		return nil
	})
}

// CountPendingOps returns the number of queued operations.
func (s *Store) CountPendingOps() (int64, error) {
	var count int64
	err := s.conn.QueryRow(`SELECT COUNT(*) FROM pending_ops`).Scan(&count)
	return count, err
}
