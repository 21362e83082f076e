package web

// handlers_common.go holds shared decode/encode helpers for the API handlers.

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tastemap/console/internal/audit"
	"github.com/tastemap/console/internal/engine"
)

// maxBodySize bounds JSON request bodies; edits are small by nature.
const maxBodySize = 1 << 20

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a small JSON body into v.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// table resolves the engine table for the {resourceType} URL param.
func (s *Server) table(r *http.Request) (*engine.Table, error) {
	return s.engine.Table(chi.URLParam(r, "resourceType"))
}

// auditCtx attaches client info to the request context so audit entries
// carry the originating IP and user agent.
func auditCtx(r *http.Request) context.Context {
	return audit.ContextWithRequestInfo(r.Context(), r.RemoteAddr, r.UserAgent())
}
