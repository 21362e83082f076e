// Package web exposes the edit engine as the JSON API the browser console
// drives. All state transitions flow through the engine; handlers only
// decode intent, invoke it and render outcomes.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/tastemap/console/internal/audit"
	"github.com/tastemap/console/internal/config"
	"github.com/tastemap/console/internal/engine"
	"github.com/tastemap/console/internal/web/middleware"
)

// Server is the HTTP server for the admin console API.
type Server struct {
	engine *engine.Engine
	audit  *audit.Service // nil when audit persistence is disabled
	cfg    *config.Config
	router *chi.Mux
	server *http.Server
}

// NewServer creates a console API server around the engine.
func NewServer(eng *engine.Engine, auditSvc *audit.Service, cfg *config.Config) *Server {
	s := &Server{
		engine: eng,
		audit:  auditSvc,
		cfg:    cfg,
		router: chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Server.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(middleware.APIKeyAuth(&s.cfg.Security))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/resources", s.handleListResources)

		// Cleanup review workflow
		r.Get("/cleanup", s.handleCleanupList)
		r.Post("/cleanup/load", s.handleCleanupLoad)
		r.Post("/cleanup/approve-all", s.handleCleanupApproveAll)
		r.Post("/cleanup/reject-all", s.handleCleanupRejectAll)
		r.Post("/cleanup/{changeID}/approve", s.handleCleanupApprove)
		r.Post("/cleanup/{changeID}/reject", s.handleCleanupReject)

		// Audit log
		r.Get("/audit", s.handleAuditRecent)

		// Per-resource table operations
		r.Route("/{resourceType}", func(r chi.Router) {
			r.Get("/", s.handleFetch)
			r.Get("/state", s.handleState)

			r.Post("/new", s.handleStartAdd)
			r.Post("/new/field", s.handleChangeNewField)
			r.Post("/new/save", s.handleSaveNewRow)
			r.Post("/new/cancel", s.handleCancelAdd)

			r.Post("/bulk/start", s.handleBulkStart)
			r.Post("/bulk/save", s.handleBulkSave)
			r.Post("/bulk/cancel", s.handleBulkCancel)

			r.Route("/{rowID}", func(r chi.Router) {
				r.Post("/edit", s.handleStartEdit)
				r.Post("/field", s.handleChangeField)
				r.Post("/save", s.handleSaveEdit)
				r.Post("/cancel", s.handleCancelEdit)
				r.Post("/select", s.handleSelect)
				r.Post("/deselect", s.handleDeselect)
				r.Post("/approve", s.handleApprove)
				r.Post("/reject", s.handleReject)
				r.Delete("/", s.handleDelete)
			})
		})
	})
}

// Start begins listening on the configured address.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the router, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"in_flight": s.engine.Coordinator().InFlight(),
		"time":      time.Now().UTC(),
	})
}
