package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/marcus/qn/internal/models"
	"github.com/marcus/qn/internal/remote"
)

// CreateNote creates a note locally and attempts to confirm it
// remotely. The local write never blocks on the network: the returned
// record is already durable and visible to GetAllNotes regardless of
// reachability.
func (e *Engine) CreateNote(title, content string) (*models.NoteRecord, error) {
	var id string
	for attempt := 0; ; attempt++ {
		candidate, err := e.newID()
		if err != nil {
			return nil, fmt.Errorf("generate note id: %w", err)
		}
		existing, err := e.store.GetNote(candidate)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			id = candidate
			break
		}
		if attempt == 4 {
			return nil, fmt.Errorf("could not find a free note id")
		}
	}
	now := e.now()
	rec := &models.NoteRecord{
		ID:        id,
		Title:     title,
		Content:   content,
		Color:     models.DefaultColor,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := e.store.PutNote(rec); err != nil {
		return nil, err
	}
	e.notifyChanged()

	e.confirmOrQueue(&models.PendingOperation{
		Kind:       models.OpCreate,
		NoteID:     rec.ID,
		Note:       rec,
		EnqueuedAt: now,
	})
	return rec, nil
}

// UpdateNote replaces a note's title and content.
func (e *Engine) UpdateNote(id, title, content string) (*models.NoteRecord, error) {
	return e.mutateNote(id, func(rec *models.NoteRecord) {
		rec.Title = title
		rec.Content = content
	})
}

// UpdateColor recolors a note. The color must come from the palette.
func (e *Engine) UpdateColor(id string, color models.Color) (*models.NoteRecord, error) {
	if !models.IsValidColor(color) {
		return nil, fmt.Errorf("invalid color %q (palette: %v)", color, models.Palette())
	}
	return e.mutateNote(id, func(rec *models.NoteRecord) {
		rec.Color = color
	})
}

// mutateNote applies fn to an existing note, stamps UpdatedAt, writes
// locally, then confirms or queues the remote update.
func (e *Engine) mutateNote(id string, fn func(*models.NoteRecord)) (*models.NoteRecord, error) {
	rec, err := e.store.GetNote(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("note not found: %s", id)
	}

	fn(rec)
	now := e.now()
	// UpdatedAt never moves before CreatedAt even if the clock was
	// adjusted backwards between mutations.
	if now < rec.CreatedAt {
		now = rec.CreatedAt
	}
	rec.UpdatedAt = now

	if err := e.store.PutNote(rec); err != nil {
		return nil, err
	}
	e.notifyChanged()

	e.confirmOrQueue(&models.PendingOperation{
		Kind:       models.OpUpdate,
		NoteID:     rec.ID,
		Note:       rec,
		EnqueuedAt: now,
	})
	return rec, nil
}

// DeleteNote removes a note locally and attempts to confirm the delete
// remotely. Deleting an absent local id is not an error, and the
// delete is always queued if unconfirmed: a create still sitting in
// the log is never squashed against it.
func (e *Engine) DeleteNote(id string) error {
	if err := e.store.RemoveNote(id); err != nil {
		return err
	}
	e.notifyChanged()

	e.confirmOrQueue(&models.PendingOperation{
		Kind:       models.OpDelete,
		NoteID:     id,
		EnqueuedAt: e.now(),
	})
	return nil
}

// confirmOrQueue attempts the matching remote call for a just-applied
// local mutation. In pure local mode it does nothing. When the remote
// is unreachable (or the call fails transiently) the operation is
// queued for the next sync cycle. A remote NotFound on update is
// logged and dropped: retrying against a vanished record never
// succeeds.
func (e *Engine) confirmOrQueue(op *models.PendingOperation) {
	if e.adapter == nil {
		return
	}

	if e.monitor.Online() {
		err := e.applyRemote(context.Background(), op)
		if err == nil {
			return
		}
		if errors.Is(err, remote.ErrNotFound) {
			slog.Warn("remote record vanished, dropping operation", "kind", op.Kind, "id", op.NoteID)
			return
		}
		slog.Debug("remote confirm failed, queueing", "kind", op.Kind, "id", op.NoteID, "err", err)
	}

	if err := e.store.EnqueueOp(op); err != nil {
		// Local storage failure: surface it, never drop silently.
		e.notice("failed to queue %s for %s: %v", op.Kind, op.NoteID, err)
		slog.Error("enqueue pending op", "kind", op.Kind, "id", op.NoteID, "err", err)
	}
}

// applyRemote dispatches one operation to the matching adapter call.
func (e *Engine) applyRemote(ctx context.Context, op *models.PendingOperation) error {
	switch op.Kind {
	case models.OpCreate:
		return e.adapter.Insert(ctx, op.Note)
	case models.OpUpdate:
		return e.adapter.Update(ctx, op.Note)
	case models.OpDelete:
		return e.adapter.Delete(ctx, op.NoteID)
	}
	return fmt.Errorf("unknown op kind %q", op.Kind)
}
