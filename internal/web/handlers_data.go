package web

// handlers_data.go serves resource metadata, row fetches and edit-state
// snapshots. Fetching proxies the upstream directory API and primes the
// table's working set so subsequent edits operate on fresh rows.

import (
	"net/http"

	"github.com/tastemap/console/internal/schema"
)

type resourceSummary struct {
	Type       string          `json:"type"`
	Label      string          `json:"label"`
	Columns    []columnSummary `json:"columns"`
	Reviewable bool            `json:"reviewable"`
}

type columnSummary struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Kind     string   `json:"kind"`
	Editable bool     `json:"editable"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
}

// handleListResources returns every registered resource definition, which
// the console uses to build its tabs and column layouts.
func (s *Server) handleListResources(w http.ResponseWriter, r *http.Request) {
	defs := schema.All()
	out := make([]resourceSummary, 0, len(defs))
	for _, def := range defs {
		rs := resourceSummary{
			Type:       def.Type,
			Label:      def.Label,
			Reviewable: def.Reviewable,
		}
		for _, col := range def.Columns {
			rs.Columns = append(rs.Columns, columnSummary{
				Key:      col.Key,
				Label:    col.Label,
				Kind:     col.Kind.String(),
				Editable: col.Editable,
				Required: col.Required,
				Options:  col.Options,
			})
		}
		out = append(out, rs)
	}
	respondJSON(w, http.StatusOK, out)
}

// handleFetch retrieves a page of rows from the backend, passing the query
// string through, and primes the working set.
func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	t, err := s.table(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	page, err := s.engine.Fetch(r.Context(), t.Definition().Type, r.URL.Query())
	if err != nil {
		s.respondError(w, r, err, http.StatusBadGateway)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// handleState returns the table's current edit-state snapshot.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	t, err := s.table(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, t.State())
}
