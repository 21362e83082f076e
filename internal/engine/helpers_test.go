package engine

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/tastemap/console/internal/directory"
	"github.com/tastemap/console/internal/schema"
)

// ----------------------------------------------------------------------------
// Shared test fixtures
// ----------------------------------------------------------------------------

func placeDef() schema.Definition {
	return schema.Definition{
		Type:  "places",
		Label: "Places",
		Columns: []schema.Column{
			{Key: "id", Label: "ID", Kind: schema.InputNumber},
			{Key: "name", Label: "Name", Kind: schema.InputText, Editable: true, Required: true},
			{Key: "address", Label: "Address", Kind: schema.InputAddress, Editable: true},
			{Key: "zipcode", Label: "Zipcode", Kind: schema.InputText, Editable: true},
			{Key: "city_id", Label: "City", Kind: schema.InputCityRef, Editable: true},
			{Key: "city_name", Label: "City Name", Kind: schema.InputText, Editable: true},
			{Key: "neighborhood_id", Label: "Neighborhood", Kind: schema.InputNeighborhoodRef, Editable: true},
			{Key: "neighborhood_name", Label: "Neighborhood Name", Kind: schema.InputText, Editable: true},
			{Key: "price_range", Label: "Price", Kind: schema.InputSelect, Editable: true, Options: []string{"$", "$$", "$$$"}},
			{Key: "tags", Label: "Tags", Kind: schema.InputTags, Editable: true},
			{Key: "rating", Label: "Rating", Kind: schema.InputNumber, Editable: true},
			{Key: "is_active", Label: "Active", Kind: schema.InputBool, Editable: true},
		},
		RequiredOnCreate: []string{"name"},
	}
}

func reviewDef() schema.Definition {
	return schema.Definition{
		Type:  "submissions",
		Label: "Submissions",
		Columns: []schema.Column{
			{Key: "id", Label: "ID", Kind: schema.InputNumber},
			{Key: "name", Label: "Name", Kind: schema.InputText, Editable: true},
			{Key: "status", Label: "Status", Kind: schema.InputSelect, Options: []string{"pending", "approved", "rejected"}},
		},
		Reviewable: true,
	}
}

// fakeClient is an in-memory directory.Client recording every call.
// Mutations for ids present in fail return the mapped error. When gate is
// non-nil, Update blocks until the channel is closed, which lets tests hold
// a save in flight.
type fakeClient struct {
	mu       sync.Mutex
	updates  []string
	creates  int
	deletes  []string
	approves []string
	rejects  []string

	fail      map[string]error
	deleteErr error
	gate      chan struct{}

	lastChanges map[string]any
	lastPayload map[string]any
}

func newFakeClient() *fakeClient {
	return &fakeClient{fail: make(map[string]error)}
}

func (c *fakeClient) Fetch(ctx context.Context, resourceType string, query url.Values) (directory.Page, error) {
	return directory.Page{}, nil
}

func (c *fakeClient) Create(ctx context.Context, resourceType string, payload map[string]any) (directory.Record, error) {
	c.mu.Lock()
	c.creates++
	c.lastPayload = payload
	err := c.fail[NewRowID]
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	rec := directory.Record{"id": "101"}
	for k, v := range payload {
		rec[k] = v
	}
	return rec, nil
}

func (c *fakeClient) Update(ctx context.Context, resourceType, id string, changed map[string]any) (directory.Record, error) {
	c.mu.Lock()
	c.updates = append(c.updates, id)
	c.lastChanges = changed
	err := c.fail[id]
	c.mu.Unlock()
	if c.gate != nil {
		<-c.gate
	}
	if err != nil {
		return nil, err
	}
	rec := directory.Record{"id": id}
	for k, v := range changed {
		rec[k] = v
	}
	return rec, nil
}

func (c *fakeClient) Delete(ctx context.Context, resourceType, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletes = append(c.deletes, id)
	return c.deleteErr
}

func (c *fakeClient) ApproveSubmission(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.approves = append(c.approves, id)
	return c.fail[id]
}

func (c *fakeClient) RejectSubmission(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rejects = append(c.rejects, id)
	return c.fail[id]
}

func (c *fakeClient) updateCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.updates)
}

// fakeLookup is a scripted directory.LookupClient recording every zipcode.
type fakeLookup struct {
	mu    sync.Mutex
	calls []string
	hit   *directory.Neighborhood
	err   error
}

func (l *fakeLookup) FindNeighborhoodByZipcode(ctx context.Context, zip string) (*directory.Neighborhood, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, zip)
	return l.hit, l.err
}

func (l *fakeLookup) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.calls)
}

// recordingAuditor captures audit events for assertions.
type recordingAuditor struct {
	mu     sync.Mutex
	events []AuditEvent
}

func (a *recordingAuditor) LogMutation(ctx context.Context, ev AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, ev)
}

func (a *recordingAuditor) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.events)
}

func testTable(def schema.Definition, client directory.Client, lookup directory.LookupClient) *Table {
	return newTable(def, NewCoordinator(client), NewResolver(lookup), NopAuditor{}, nil, false)
}

var errBackend = errors.New("backend rejected the change")
