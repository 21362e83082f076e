package web

// handlers_audit.go serves the audit trail for the console's history view.

import (
	"net/http"
	"strconv"
)

func (s *Server) handleAuditRecent(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		respondJSON(w, http.StatusOK, map[string]any{"entries": []any{}, "enabled": false})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := s.audit.Recent(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"entries": entries, "enabled": true})
}
