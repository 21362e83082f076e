package engine

// session.go owns the per-row edit lifecycle for one resource table:
//
//	viewing -> editing -> (saving -> viewing | editing)
//	idle    -> adding  -> (saving -> idle    | adding)
//
// Outside bulk mode at most one row is in edit or add mode; starting an
// edit cancels any other in-progress edit, and edit and add are mutually
// exclusive. Cancel is always local and immediate, except that a cancel
// requested while a save is in flight is queued and applied once the
// in-flight intent resolves.

import (
	"context"
	"sort"
	"sync"

	"github.com/tastemap/console/internal/directory"
	"github.com/tastemap/console/internal/schema"
)

// NewRowID is the reserved identifier of the synthetic new-row session.
const NewRowID = "__NEW_ROW__"

// RefreshFunc is invoked after every successful mutation so the host can
// re-fetch the authoritative record set. The engine never maintains its own
// cache of truth.
type RefreshFunc func(resourceType string)

// session is the draft state of one row in edit or add mode.
type session struct {
	rowID        string
	draft        Draft
	record       directory.Record // nil for the new-row session
	bulk         bool
	saving       bool
	cancelQueued bool
	lookupFailed bool
	lastError    *UserMessage
}

// Table is the editable-table state for a single resource type. The host
// view supplies records via SetRecords; user intent flows through the
// Start/Change/Save/Cancel operations and is serialized per row by the
// coordinator.
type Table struct {
	def      schema.Definition
	coord    *Coordinator
	resolver *Resolver
	audit    Auditor
	refresh  RefreshFunc

	retryFailedBulk bool

	mu         sync.Mutex
	records    map[string]directory.Record
	sessions   map[string]*session
	selection  map[string]struct{}
	bulkActive bool
}

func newTable(def schema.Definition, coord *Coordinator, resolver *Resolver, audit Auditor, refresh RefreshFunc, retryFailedBulk bool) *Table {
	return &Table{
		def:             def,
		coord:           coord,
		resolver:        resolver,
		audit:           audit,
		refresh:         refresh,
		retryFailedBulk: retryFailedBulk,
		records:         make(map[string]directory.Record),
		sessions:        make(map[string]*session),
		selection:       make(map[string]struct{}),
	}
}

// Definition returns the resource definition this table edits.
func (t *Table) Definition() schema.Definition {
	return t.def
}

// SetRecords replaces the working set with a fresh authoritative snapshot.
// At most one record may exist per identifier; duplicates are rejected.
// The selection set is cleared on refresh; live drafts survive so an edit
// is not lost underneath the user.
func (t *Table) SetRecords(rows []directory.Record) error {
	next := make(map[string]directory.Record, len(rows))
	for _, rec := range rows {
		id := rec.ID()
		if id == "" {
			return ErrUnknownRow
		}
		if _, dup := next[id]; dup {
			return &FieldError{Field: "id", Message: "duplicate identifier " + id}
		}
		next[id] = rec
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = next
	t.selection = make(map[string]struct{})
	return nil
}

// Record returns the working-set record for an id.
func (t *Table) Record(id string) (directory.Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[id]
	return rec, ok
}

// StartEdit opens an edit session for the row, seeding the draft from the
// record. Disallowed while any mutation is in flight, while add mode is
// active, or during bulk edit. Any other in-progress single edit is
// cancelled first.
func (t *Table) StartEdit(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.anySavingLocked() {
		return ErrRowBusy
	}
	if t.bulkActive {
		return ErrEditInProgress
	}
	if _, adding := t.sessions[NewRowID]; adding {
		return ErrEditInProgress
	}

	rec, ok := t.records[id]
	if !ok {
		return ErrUnknownRow
	}

	// Starting an edit cancels any other in-progress edit.
	for sid, sess := range t.sessions {
		if !sess.bulk && sid != id {
			delete(t.sessions, sid)
		}
	}

	t.sessions[id] = &session{
		rowID:  id,
		draft:  SeedDraft(t.def, rec),
		record: rec,
	}
	return nil
}

// StartAdd opens the synthetic new-row session with per-column defaults.
// Mutually exclusive with single edit and bulk mode.
func (t *Table) StartAdd() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.anySavingLocked() {
		return ErrRowBusy
	}
	if t.bulkActive {
		return ErrEditInProgress
	}
	for _, sess := range t.sessions {
		if !sess.bulk {
			return ErrEditInProgress
		}
	}

	t.sessions[NewRowID] = &session{
		rowID: NewRowID,
		draft: DefaultDraft(t.def),
	}
	return nil
}

// ChangeField updates one draft value. Address and zipcode columns trigger
// the location resolver and merge its result; a manual city change clears
// any previously resolved neighborhood, keeping the reference consistent
// with its parent city.
func (t *Table) ChangeField(ctx context.Context, id, column, value string) error {
	t.mu.Lock()
	sess, ok := t.sessions[id]
	if !ok || sess.saving {
		t.mu.Unlock()
		if ok {
			return ErrRowBusy
		}
		return ErrNotEditing
	}

	col, known := t.def.Column(column)
	if !known || !col.Editable {
		t.mu.Unlock()
		return &FieldError{Field: column, Message: "unknown or read-only column"}
	}

	sess.draft[col.Key] = value
	sess.lastError = nil

	if col.Kind == schema.InputCityRef {
		// Neighborhood is scoped to city; a manual city change invalidates it.
		sess.draft["neighborhood_id"] = ""
		sess.draft["neighborhood_name"] = ""
		t.mu.Unlock()
		return nil
	}

	resolveAddress := col.Kind == schema.InputAddress
	resolveZip := col.Key == "zipcode"
	if !resolveAddress && !resolveZip {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	// The lookup is the only suspension point here; run it unlocked.
	var res Resolution
	if resolveAddress {
		res = t.resolver.FromAddress(ctx, value)
	} else {
		res = t.resolver.FromZipcode(ctx, value)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	sess, ok = t.sessions[id]
	if !ok {
		// Session was cancelled while the lookup was running; drop the result.
		return nil
	}
	res.Merge(sess.draft)
	sess.lookupFailed = res.LookupFailed
	return nil
}

// CancelEdit discards the row's draft. Always succeeds locally with no
// network call. If a save is in flight the cancel is queued and applied
// when the intent resolves.
func (t *Table) CancelEdit(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sess, ok := t.sessions[id]
	if !ok {
		return
	}
	if sess.saving {
		sess.cancelQueued = true
		return
	}
	delete(t.sessions, id)
}

// SaveEdit diffs the draft against the record and, when fields changed,
// hands a save intent to the coordinator. An empty change map behaves
// exactly like CancelEdit; a validation error keeps edit mode active with
// the error attached to the row.
func (t *Table) SaveEdit(ctx context.Context, id string) Outcome {
	t.mu.Lock()
	sess, ok := t.sessions[id]
	if !ok {
		t.mu.Unlock()
		return localOutcome(id, IntentSave, OutcomeInvalid, ErrNotEditing)
	}
	if sess.saving {
		t.mu.Unlock()
		return localOutcome(id, IntentSave, OutcomeBusy, ErrRowBusy)
	}

	changes, err := ComputeChanges(sess.record, sess.draft, t.def.EditableColumns())
	if err != nil {
		msg := MapError(err)
		sess.lastError = &msg
		t.mu.Unlock()
		return localOutcome(id, IntentSave, OutcomeInvalid, err)
	}
	if len(changes) == 0 {
		delete(t.sessions, id)
		t.mu.Unlock()
		return Outcome{RowID: id, Kind: IntentSave, Status: OutcomeNoChange}
	}

	sess.saving = true
	t.mu.Unlock()

	out := t.coord.Dispatch(ctx, Intent{
		Kind:         IntentSave,
		ResourceType: t.def.Type,
		RowID:        id,
		Changes:      changes,
	})

	t.settleSave(ctx, id, out, changes)
	return out
}

// SaveNewRow validates mandatory fields locally and creates the row.
// A missing mandatory field never reaches the network.
func (t *Table) SaveNewRow(ctx context.Context) Outcome {
	t.mu.Lock()
	sess, ok := t.sessions[NewRowID]
	if !ok {
		t.mu.Unlock()
		return localOutcome(NewRowID, IntentSave, OutcomeInvalid, ErrNotEditing)
	}
	if sess.saving {
		t.mu.Unlock()
		return localOutcome(NewRowID, IntentSave, OutcomeBusy, ErrRowBusy)
	}

	payload, err := BuildCreatePayload(t.def, sess.draft)
	if err != nil {
		msg := MapError(err)
		sess.lastError = &msg
		t.mu.Unlock()
		return localOutcome(NewRowID, IntentSave, OutcomeInvalid, err)
	}

	sess.saving = true
	t.mu.Unlock()

	out := t.coord.Dispatch(ctx, Intent{
		Kind:         IntentSave,
		ResourceType: t.def.Type,
		RowID:        NewRowID,
		Changes:      payload,
	})

	t.settleSave(ctx, NewRowID, out, payload)
	return out
}

// CancelAdd discards the new-row draft.
func (t *Table) CancelAdd() {
	t.CancelEdit(NewRowID)
}

// Delete removes a row. The confirmation gate is external; an unconfirmed
// request is rejected locally. A backend referential-integrity rejection
// surfaces as a distinguishable conflict outcome.
func (t *Table) Delete(ctx context.Context, id string, confirmed bool) Outcome {
	if !confirmed {
		return localOutcome(id, IntentDelete, OutcomeInvalid,
			&FieldError{Field: "id", Message: "delete requires confirmation"})
	}

	t.mu.Lock()
	if _, ok := t.records[id]; !ok {
		t.mu.Unlock()
		return localOutcome(id, IntentDelete, OutcomeInvalid, ErrUnknownRow)
	}
	t.mu.Unlock()

	out := t.coord.Dispatch(ctx, Intent{
		Kind:         IntentDelete,
		ResourceType: t.def.Type,
		RowID:        id,
	})
	if out.Status != OutcomeOK {
		return out
	}

	t.mu.Lock()
	delete(t.sessions, id)
	delete(t.selection, id)
	delete(t.records, id)
	t.mu.Unlock()

	t.audit.LogMutation(ctx, AuditEvent{
		MutationID:   out.MutationID.String(),
		Action:       string(IntentDelete),
		ResourceType: t.def.Type,
		RowID:        id,
	})
	t.signalRefresh()
	return out
}

// Approve accepts a pending submission. A second decision against an
// already-decided row is a no-op failure with no network call.
func (t *Table) Approve(ctx context.Context, id string) Outcome {
	return t.decide(ctx, id, IntentApprove)
}

// Reject declines a pending submission.
func (t *Table) Reject(ctx context.Context, id string) Outcome {
	return t.decide(ctx, id, IntentReject)
}

func (t *Table) decide(ctx context.Context, id string, kind IntentKind) Outcome {
	if !t.def.Reviewable {
		return localOutcome(id, kind, OutcomeInvalid,
			&FieldError{Field: "status", Message: t.def.Type + " does not support review decisions"})
	}

	t.mu.Lock()
	rec, ok := t.records[id]
	if !ok {
		t.mu.Unlock()
		return localOutcome(id, kind, OutcomeInvalid, ErrUnknownRow)
	}
	status := rec.Status()
	t.mu.Unlock()

	out := t.coord.Dispatch(ctx, Intent{
		Kind:          kind,
		ResourceType:  t.def.Type,
		RowID:         id,
		CurrentStatus: status,
	})
	if out.Status != OutcomeOK {
		return out
	}

	t.audit.LogMutation(ctx, AuditEvent{
		MutationID:   out.MutationID.String(),
		Action:       string(kind),
		ResourceType: t.def.Type,
		RowID:        id,
	})
	t.signalRefresh()
	return out
}

// settleSave applies post-dispatch bookkeeping for a save intent: success
// destroys the session and signals a refresh; failure keeps the row
// editable with the error attached; a queued cancel is applied either way.
func (t *Table) settleSave(ctx context.Context, id string, out Outcome, changes map[string]any) {
	t.mu.Lock()
	sess, ok := t.sessions[id]
	if !ok {
		t.mu.Unlock()
		return
	}
	sess.saving = false

	switch {
	case out.OK():
		delete(t.sessions, id)
		delete(t.selection, id)
	case sess.cancelQueued:
		delete(t.sessions, id)
	default:
		sess.cancelQueued = false
		sess.lastError = out.Message
	}
	t.mu.Unlock()

	if out.OK() {
		t.audit.LogMutation(ctx, AuditEvent{
			MutationID:   out.MutationID.String(),
			Action:       string(IntentSave),
			ResourceType: t.def.Type,
			RowID:        id,
			Changes:      changes,
		})
		t.signalRefresh()
	}
}

// signalRefresh notifies the host that the authoritative record set changed.
func (t *Table) signalRefresh() {
	if t.refresh != nil {
		t.refresh(t.def.Type)
	}
}

func (t *Table) anySavingLocked() bool {
	for _, sess := range t.sessions {
		if sess.saving {
			return true
		}
	}
	return false
}

func localOutcome(id string, kind IntentKind, status OutcomeStatus, err error) Outcome {
	msg := MapError(err)
	return Outcome{RowID: id, Kind: kind, Status: status, Message: &msg}
}

// ----------------------------------------------------------------------------
// Selection set
// ----------------------------------------------------------------------------

// Select marks a row for bulk operations.
func (t *Table) Select(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.records[id]; !ok {
		return ErrUnknownRow
	}
	t.selection[id] = struct{}{}
	return nil
}

// Deselect removes a row from the selection set.
func (t *Table) Deselect(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.selection, id)
}

// Selection returns the selected row ids, sorted for stable output.
func (t *Table) Selection() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := make([]string, 0, len(t.selection))
	for id := range t.selection {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ----------------------------------------------------------------------------
// State snapshot for the host view
// ----------------------------------------------------------------------------

// SessionState is a host-visible snapshot of one edit session.
type SessionState struct {
	RowID        string       `json:"row_id"`
	Draft        Draft        `json:"draft"`
	Bulk         bool         `json:"bulk"`
	Saving       bool         `json:"saving"`
	LookupFailed bool         `json:"lookup_failed"`
	Error        *UserMessage `json:"error,omitempty"`
}

// TableState is a host-visible snapshot of the whole table's edit state.
type TableState struct {
	ResourceType string         `json:"resource_type"`
	BulkActive   bool           `json:"bulk_active"`
	Adding       bool           `json:"adding"`
	Selection    []string       `json:"selection"`
	Sessions     []SessionState `json:"sessions"`
}

// State returns a snapshot of the table's edit state for rendering.
func (t *Table) State() TableState {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := TableState{
		ResourceType: t.def.Type,
		BulkActive:   t.bulkActive,
		Selection:    make([]string, 0, len(t.selection)),
	}
	for id := range t.selection {
		st.Selection = append(st.Selection, id)
	}
	sort.Strings(st.Selection)

	for _, sess := range t.sessions {
		if sess.rowID == NewRowID {
			st.Adding = true
		}
		st.Sessions = append(st.Sessions, SessionState{
			RowID:        sess.rowID,
			Draft:        sess.draft.Clone(),
			Bulk:         sess.bulk,
			Saving:       sess.saving,
			LookupFailed: sess.lookupFailed,
			Error:        sess.lastError,
		})
	}
	sort.Slice(st.Sessions, func(i, j int) bool {
		return st.Sessions[i].RowID < st.Sessions[j].RowID
	})
	return st
}

// Editing reports whether the row currently has a live session.
func (t *Table) Editing(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.sessions[id]
	return ok
}

// draftValue returns one draft field, for tests and host rendering.
func (t *Table) draftValue(id, column string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sess, ok := t.sessions[id]
	if !ok {
		return "", false
	}
	v, ok := sess.draft[column]
	return v, ok
}
