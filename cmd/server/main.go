package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/tastemap/console/internal/audit"
	"github.com/tastemap/console/internal/config"
	"github.com/tastemap/console/internal/directory"
	"github.com/tastemap/console/internal/engine"
	"github.com/tastemap/console/internal/logging"
	"github.com/tastemap/console/internal/schema"
	_ "github.com/tastemap/console/internal/schema/resources" // Register all resources
	"github.com/tastemap/console/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"upstream", cfg.Upstream.BaseURL,
		"audit_enabled", cfg.Database.URL != "",
		"bulk_retry_failed", cfg.Bulk.RetryFailed,
	)

	ctx := context.Background()

	// Connect the audit database when configured; the console runs without
	// persistence otherwise.
	var auditor engine.Auditor = engine.NopAuditor{}
	var auditSvc *audit.Service
	if cfg.Database.URL != "" {
		poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
		if err != nil {
			slog.Error("failed to parse database URL", "error", err)
			os.Exit(1)
		}
		poolConfig.MaxConns = int32(cfg.Database.MaxConns)
		poolConfig.MinConns = int32(cfg.Database.MinConns)

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			slog.Error("failed to ping database", "error", err)
			os.Exit(1)
		}

		auditSvc = audit.NewService(pool)
		if err := auditSvc.EnsureSchema(ctx); err != nil {
			slog.Error("failed to ensure audit schema", "error", err)
			os.Exit(1)
		}
		auditor = auditSvc
		slog.Info("audit log connected")
	} else {
		slog.Info("audit persistence disabled (no database URL)")
	}

	// Upstream directory API and zipcode lookup clients. The lookup may run
	// against a separate service or fall back to the upstream API.
	upstream := directory.NewHTTPClient(cfg.Upstream.BaseURL, cfg.Upstream.Token, cfg.Upstream.Timeout)
	lookup := upstream
	if cfg.LookupBaseURL() != cfg.Upstream.BaseURL {
		lookup = directory.NewHTTPClient(cfg.LookupBaseURL(), cfg.Upstream.Token, cfg.Lookup.Timeout)
	}

	eng := engine.New(engine.Options{
		Client: upstream,
		Lookup: lookup,
		Audit:  auditor,
		Refresh: func(resourceType string) {
			slog.Debug("refresh requested", "resource", resourceType)
		},
		RetryFailedBulk: cfg.Bulk.RetryFailed,
	})

	slog.Info("resources registered", "count", schema.Count(), "types", schema.Types())

	// Create server with config
	server := web.NewServer(eng, auditSvc, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Report saves still in flight; the upstream timeout bounds them.
		if active := eng.Coordinator().InFlight(); active > 0 {
			slog.Info("mutations still in flight", "active", active)
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
