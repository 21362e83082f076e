// Package config provides centralized configuration for the admin console.
// Settings load from environment variables with defaults and are validated
// on startup so misconfiguration fails fast.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Upstream UpstreamConfig
	Lookup   LookupConfig
	Database DatabaseConfig
	Bulk     BulkConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// TrustedProxies lists CIDRs allowed to set X-Real-IP / X-Forwarded-For.
	TrustedProxies []string `env:"SERVER_TRUSTED_PROXIES"`
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// UpstreamConfig holds the directory API connection settings.
type UpstreamConfig struct {
	// BaseURL is the directory API root, e.g. https://api.example.com (required)
	BaseURL string `env:"UPSTREAM_BASE_URL" required:"true"`

	// Token is the bearer token sent with every upstream call.
	Token string `env:"UPSTREAM_TOKEN"`

	// Timeout bounds each upstream call (default: 30s).
	// The engine itself has no timeouts; this is the only bound on a hung call.
	Timeout time.Duration `env:"UPSTREAM_TIMEOUT" default:"30s"`
}

// LookupConfig holds the zipcode lookup service settings.
type LookupConfig struct {
	// BaseURL of the lookup service; empty means use the upstream API.
	BaseURL string `env:"LOOKUP_BASE_URL"`

	// Timeout bounds each lookup call (default: 10s)
	Timeout time.Duration `env:"LOOKUP_TIMEOUT" default:"10s"`
}

// DatabaseConfig holds the audit database settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string for the audit log.
	// Empty disables audit persistence.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum pool size (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of open connections (default: 2)
	MinConns int `env:"DB_MIN_CONNS" default:"2"`
}

// BulkConfig tunes the bulk edit reconciler.
type BulkConfig struct {
	// RetryFailed enables one automatic retry pass for rows that fail in a
	// bulk save (default: false; the user re-triggers explicitly).
	RetryFailed bool `env:"BULK_RETRY_FAILED" default:"false"`
}

// SecurityConfig holds authentication settings for the console API.
type SecurityConfig struct {
	// RequireAPIKey toggles X-API-Key validation (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys lists the accepted keys, comma-separated.
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Validate checks that the configuration is usable.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	if c.Upstream.BaseURL == "" {
		errs = append(errs, "UPSTREAM_BASE_URL is required")
	}
	if c.Upstream.Timeout <= 0 {
		errs = append(errs, "UPSTREAM_TIMEOUT must be positive")
	}
	if c.Lookup.Timeout <= 0 {
		errs = append(errs, "LOOKUP_TIMEOUT must be positive")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	if c.Database.URL != "" {
		if c.Database.MaxConns <= 0 {
			errs = append(errs, "DB_MAX_CONNS must be positive")
		}
		if c.Database.MinConns < 0 {
			errs = append(errs, "DB_MIN_CONNS must be non-negative")
		}
		if c.Database.MaxConns < c.Database.MinConns {
			errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
				c.Database.MaxConns, c.Database.MinConns))
		}
	}

	if c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0 {
		errs = append(errs, "API_KEYS must be set when REQUIRE_API_KEY is true")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// LookupBaseURL returns the lookup service root, falling back to the
// upstream API when no dedicated service is configured.
func (c *Config) LookupBaseURL() string {
	if c.Lookup.BaseURL != "" {
		return c.Lookup.BaseURL
	}
	return c.Upstream.BaseURL
}
