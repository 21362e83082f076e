package web

// handlers_cleanup.go exposes the data-cleanup review workflow. Batches of
// proposed corrections arrive from an external analysis step via /load and
// are decided one by one or wholesale.

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tastemap/console/internal/engine"
)

func (s *Server) handleCleanupList(w http.ResponseWriter, r *http.Request) {
	q := s.engine.Cleanup()
	respondJSON(w, http.StatusOK, map[string]any{
		"changes":   q.Changes(),
		"remaining": q.Remaining(),
	})
}

func (s *Server) handleCleanupLoad(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Changes []engine.Change `json:"changes"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	s.engine.Cleanup().Load(req.Changes)
	respondJSON(w, http.StatusOK, map[string]any{"loaded": len(req.Changes)})
}

func (s *Server) handleCleanupApprove(w http.ResponseWriter, r *http.Request) {
	out := s.engine.Cleanup().Approve(auditCtx(r), chi.URLParam(r, "changeID"))
	respondJSON(w, statusForOutcome(out), out)
}

func (s *Server) handleCleanupReject(w http.ResponseWriter, r *http.Request) {
	out := s.engine.Cleanup().Reject(auditCtx(r), chi.URLParam(r, "changeID"))
	respondJSON(w, statusForOutcome(out), out)
}

func (s *Server) handleCleanupApproveAll(w http.ResponseWriter, r *http.Request) {
	report := s.engine.Cleanup().ApproveAll(auditCtx(r))
	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleCleanupRejectAll(w http.ResponseWriter, r *http.Request) {
	report := s.engine.Cleanup().RejectAll(auditCtx(r))
	respondJSON(w, http.StatusOK, report)
}
