package web

// handlers_sessions.go maps user edit intent onto row edit sessions:
// start/cancel edit and add, field changes, saves and row selection.

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tastemap/console/internal/engine"
)

type fieldChange struct {
	Column string `json:"column"`
	Value  string `json:"value"`
}

func (s *Server) handleStartEdit(w http.ResponseWriter, r *http.Request) {
	t, err := s.table(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	if err := t.StartEdit(chi.URLParam(r, "rowID")); err != nil {
		s.respondError(w, r, err, statusForError(err))
		return
	}
	respondJSON(w, http.StatusOK, t.State())
}

func (s *Server) handleChangeField(w http.ResponseWriter, r *http.Request) {
	s.changeField(w, r, chi.URLParam(r, "rowID"))
}

func (s *Server) handleChangeNewField(w http.ResponseWriter, r *http.Request) {
	s.changeField(w, r, engine.NewRowID)
}

func (s *Server) changeField(w http.ResponseWriter, r *http.Request, rowID string) {
	t, err := s.table(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	var req fieldChange
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	if err := t.ChangeField(r.Context(), rowID, req.Column, req.Value); err != nil {
		s.respondError(w, r, err, statusForError(err))
		return
	}
	respondJSON(w, http.StatusOK, t.State())
}

func (s *Server) handleSaveEdit(w http.ResponseWriter, r *http.Request) {
	t, err := s.table(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	out := t.SaveEdit(auditCtx(r), chi.URLParam(r, "rowID"))
	respondJSON(w, statusForOutcome(out), out)
}

func (s *Server) handleCancelEdit(w http.ResponseWriter, r *http.Request) {
	t, err := s.table(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	t.CancelEdit(chi.URLParam(r, "rowID"))
	respondJSON(w, http.StatusOK, t.State())
}

func (s *Server) handleStartAdd(w http.ResponseWriter, r *http.Request) {
	t, err := s.table(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	if err := t.StartAdd(); err != nil {
		s.respondError(w, r, err, statusForError(err))
		return
	}
	respondJSON(w, http.StatusOK, t.State())
}

func (s *Server) handleSaveNewRow(w http.ResponseWriter, r *http.Request) {
	t, err := s.table(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	out := t.SaveNewRow(auditCtx(r))
	respondJSON(w, statusForOutcome(out), out)
}

func (s *Server) handleCancelAdd(w http.ResponseWriter, r *http.Request) {
	t, err := s.table(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	t.CancelAdd()
	respondJSON(w, http.StatusOK, t.State())
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	t, err := s.table(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	if err := t.Select(chi.URLParam(r, "rowID")); err != nil {
		s.respondError(w, r, err, statusForError(err))
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"selection": t.Selection()})
}

func (s *Server) handleDeselect(w http.ResponseWriter, r *http.Request) {
	t, err := s.table(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	t.Deselect(chi.URLParam(r, "rowID"))
	respondJSON(w, http.StatusOK, map[string]any{"selection": t.Selection()})
}
