package web

// handlers_mutations.go covers the destructive and review mutations:
// delete (behind an explicit confirmation header), submission approve and
// reject, and the bulk edit lifecycle.

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleDelete removes a row. The browser's confirmation dialog is the
// gating step; it asserts completion via the X-Confirm-Delete header.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	t, err := s.table(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	confirmed := r.Header.Get("X-Confirm-Delete") == "true" ||
		r.URL.Query().Get("confirm") == "true"

	out := t.Delete(auditCtx(r), chi.URLParam(r, "rowID"), confirmed)
	respondJSON(w, statusForOutcome(out), out)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	t, err := s.table(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	out := t.Approve(auditCtx(r), chi.URLParam(r, "rowID"))
	respondJSON(w, statusForOutcome(out), out)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	t, err := s.table(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	out := t.Reject(auditCtx(r), chi.URLParam(r, "rowID"))
	respondJSON(w, statusForOutcome(out), out)
}

func (s *Server) handleBulkStart(w http.ResponseWriter, r *http.Request) {
	t, err := s.table(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	if err := t.StartBulk(); err != nil {
		s.respondError(w, r, err, statusForError(err))
		return
	}
	respondJSON(w, http.StatusOK, t.State())
}

// handleBulkSave saves every bulk session independently and reports partial
// success; failed rows stay in edit mode for an explicit retry.
func (s *Server) handleBulkSave(w http.ResponseWriter, r *http.Request) {
	t, err := s.table(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	report := t.SaveAll(auditCtx(r))
	status := http.StatusOK
	if !report.AllSaved() {
		status = http.StatusMultiStatus
	}
	respondJSON(w, status, report)
}

func (s *Server) handleBulkCancel(w http.ResponseWriter, r *http.Request) {
	t, err := s.table(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	t.CancelBulk()
	respondJSON(w, http.StatusOK, t.State())
}
