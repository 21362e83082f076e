// Package engine implements the editable-table state machine behind the
// directory admin console: per-row edit sessions, type-aware minimal diffs,
// single-flight mutation coordination, cascading location resolution, bulk
// edit reconciliation and the cleanup review workflow.
//
// The engine has no HTTP or rendering dependencies. The upstream directory
// API and the zipcode lookup are injected collaborators, as are the audit
// sink and the refresh signal; the external data source stays canonical
// after every successful mutation.
package engine

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/tastemap/console/internal/directory"
	"github.com/tastemap/console/internal/schema"
)

// AuditEvent describes one decided mutation for the audit log.
type AuditEvent struct {
	MutationID   string
	Action       string
	ResourceType string
	RowID        string
	Changes      map[string]any
	IPAddress    string
	UserAgent    string
}

// Auditor records decided mutations. Implementations must not fail the
// mutation path; audit errors are their own to log.
type Auditor interface {
	LogMutation(ctx context.Context, e AuditEvent)
}

// NopAuditor discards all events.
type NopAuditor struct{}

func (NopAuditor) LogMutation(context.Context, AuditEvent) {}

// Options wires the engine's collaborators.
type Options struct {
	Client  directory.Client
	Lookup  directory.LookupClient
	Audit   Auditor
	Refresh RefreshFunc

	// RetryFailedBulk enables one automatic retry pass for rows that fail
	// during a bulk save. Default off: the user re-triggers explicitly.
	RetryFailedBulk bool
}

// Engine owns one editable table per registered resource type plus the
// cleanup review queue. Tables are created lazily on first access.
type Engine struct {
	opts    Options
	coord   *Coordinator
	resolve *Resolver
	cleanup *ReviewQueue

	mu     sync.Mutex
	tables map[string]*Table
}

// New creates an engine over the given collaborators.
func New(opts Options) *Engine {
	if opts.Audit == nil {
		opts.Audit = NopAuditor{}
	}
	coord := NewCoordinator(opts.Client)
	return &Engine{
		opts:    opts,
		coord:   coord,
		resolve: NewResolver(opts.Lookup),
		cleanup: NewReviewQueue(coord, opts.Audit),
		tables:  make(map[string]*Table),
	}
}

// Table returns the editable table for a resource type.
func (e *Engine) Table(resourceType string) (*Table, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if t, ok := e.tables[resourceType]; ok {
		return t, nil
	}

	def, ok := schema.Get(resourceType)
	if !ok {
		return nil, fmt.Errorf("unknown resource type: %s", resourceType)
	}

	t := newTable(def, e.coord, e.resolve, e.opts.Audit, e.opts.Refresh, e.opts.RetryFailedBulk)
	e.tables[resourceType] = t
	return t, nil
}

// Cleanup returns the review queue for proposed data corrections.
func (e *Engine) Cleanup() *ReviewQueue {
	return e.cleanup
}

// Coordinator exposes in-flight state for monitoring.
func (e *Engine) Coordinator() *Coordinator {
	return e.coord
}

// Fetch retrieves a page of records from the backend and primes the table's
// working set with it. The returned page is what the host renders.
func (e *Engine) Fetch(ctx context.Context, resourceType string, query url.Values) (directory.Page, error) {
	t, err := e.Table(resourceType)
	if err != nil {
		return directory.Page{}, err
	}

	page, err := e.opts.Client.Fetch(ctx, resourceType, query)
	if err != nil {
		return directory.Page{}, err
	}
	if err := t.SetRecords(page.Data); err != nil {
		return directory.Page{}, err
	}
	return page, nil
}
