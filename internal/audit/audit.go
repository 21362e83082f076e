// Package audit persists every decided mutation to Postgres so operators
// can answer "who changed what, when" after the fact. Logging is best
// effort: an audit failure never fails the mutation that triggered it.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tastemap/console/internal/engine"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Entry is one persisted audit record.
type Entry struct {
	ID           uuid.UUID       `json:"id"`
	MutationID   string          `json:"mutation_id"`
	Action       string          `json:"action"`
	ResourceType string          `json:"resource_type"`
	RowID        string          `json:"row_id"`
	Changes      json.RawMessage `json:"changes,omitempty"`
	IPAddress    string          `json:"ip_address,omitempty"`
	UserAgent    string          `json:"user_agent,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Service writes and reads audit entries.
type Service struct {
	db DBTX
}

// NewService creates an audit service over the given pool or transaction.
func NewService(db DBTX) *Service {
	return &Service{db: db}
}

// EnsureSchema creates the audit table if it does not exist.
func (s *Service) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS audit_log (
			id            UUID PRIMARY KEY,
			mutation_id   TEXT NOT NULL DEFAULT '',
			action        TEXT NOT NULL,
			resource_type TEXT NOT NULL,
			row_id        TEXT NOT NULL,
			changes       JSONB,
			ip_address    TEXT NOT NULL DEFAULT '',
			user_agent    TEXT NOT NULL DEFAULT '',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	return err
}

// LogMutation records a decided mutation. Implements engine.Auditor.
func (s *Service) LogMutation(ctx context.Context, e engine.AuditEvent) {
	var changes []byte
	if len(e.Changes) > 0 {
		b, err := json.Marshal(e.Changes)
		if err != nil {
			slog.Warn("audit: marshal changes", "error", err)
		} else {
			changes = b
		}
	}

	if e.IPAddress == "" {
		e.IPAddress = IPAddressFromContext(ctx)
	}
	if e.UserAgent == "" {
		e.UserAgent = UserAgentFromContext(ctx)
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO audit_log (id, mutation_id, action, resource_type, row_id, changes, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.New(), e.MutationID, e.Action, e.ResourceType, e.RowID, changes, e.IPAddress, e.UserAgent,
	)
	if err != nil {
		slog.Warn("audit: insert failed",
			"action", e.Action,
			"resource", e.ResourceType,
			"row", e.RowID,
			"error", err,
		)
	}
}

// Recent returns the newest entries, most recent first.
func (s *Service) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, mutation_id, action, resource_type, row_id, changes, ip_address, user_agent, created_at
		FROM audit_log
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.MutationID, &e.Action, &e.ResourceType, &e.RowID,
			&e.Changes, &e.IPAddress, &e.UserAgent, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
