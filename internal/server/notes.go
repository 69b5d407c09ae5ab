package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/marcus/qn/internal/models"
)

// decodeNote reads and validates a note record body.
func decodeNote(r *http.Request) (*models.NoteRecord, string) {
	var rec models.NoteRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		return nil, "invalid JSON body"
	}
	if rec.ID == "" {
		return nil, "missing id"
	}
	if rec.Color == "" {
		rec.Color = models.DefaultColor
	}
	if !models.IsValidColor(rec.Color) {
		return nil, "invalid color"
	}
	if rec.CreatedAt <= 0 {
		return nil, "missing created_at"
	}
	if rec.UpdatedAt < rec.CreatedAt {
		rec.UpdatedAt = rec.CreatedAt
	}
	return &rec, ""
}

// handleInsertNote stores a new record. Insert is an upsert by id:
// clients replay their operation log from the start after a crash, so
// the same create can arrive more than once.
func (s *Server) handleInsertNote(w http.ResponseWriter, r *http.Request) {
	rec, msg := decodeNote(r)
	if rec == nil {
		writeError(w, http.StatusBadRequest, errCodeBadRequest, msg)
		return
	}

	if err := s.db.Upsert(rec); err != nil {
		logFor(r.Context()).Error("insert note", "id", rec.ID, "err", err)
		writeError(w, http.StatusInternalServerError, errCodeInternal, "storage failure")
		return
	}
	s.hub.Broadcast()
	writeJSON(w, http.StatusCreated, rec)
}

// handleUpdateNote replaces an existing record; 404 when the id is
// unknown so the client can drop the operation instead of retrying.
func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec, msg := decodeNote(r)
	if rec == nil {
		writeError(w, http.StatusBadRequest, errCodeBadRequest, msg)
		return
	}
	if rec.ID != id {
		writeError(w, http.StatusBadRequest, errCodeBadRequest, "body id does not match path")
		return
	}

	err := s.db.Replace(rec)
	if errors.Is(err, ErrNoSuchNote) {
		writeError(w, http.StatusNotFound, errCodeNotFound, "no such note: "+id)
		return
	}
	if err != nil {
		logFor(r.Context()).Error("update note", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, errCodeInternal, "storage failure")
		return
	}
	s.hub.Broadcast()
	writeJSON(w, http.StatusOK, rec)
}

// handleDeleteNote removes a record. Always 204: deleting an id the
// server never saw (or already deleted) succeeds.
func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.db.Remove(id); err != nil {
		logFor(r.Context()).Error("delete note", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, errCodeInternal, "storage failure")
		return
	}
	s.hub.Broadcast()
	w.WriteHeader(http.StatusNoContent)
}

// handleListNotes returns the full record set.
func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	recs, err := s.db.All()
	if err != nil {
		logFor(r.Context()).Error("list notes", "err", err)
		writeError(w, http.StatusInternalServerError, errCodeInternal, "storage failure")
		return
	}
	writeJSON(w, http.StatusOK, recs)
}
