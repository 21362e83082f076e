package engine

// bulk.go extends the row edit session to the whole selection set.
// Each row's save is an independent intent: sibling failures neither block
// nor roll back each other, and completions are unordered. The result is a
// partial-success report; failed rows stay in edit mode for retry.

import (
	"context"
	"sort"
	"sync"
)

// BulkFailure names one row that failed to save and why.
type BulkFailure struct {
	RowID  string      `json:"row_id"`
	Reason UserMessage `json:"reason"`
}

// BulkReport is the partial-success result of a bulk save.
type BulkReport struct {
	Saved  []string      `json:"saved"`
	Failed []BulkFailure `json:"failed"`
}

// AllSaved reports whether every row in the bulk save succeeded.
func (r BulkReport) AllSaved() bool {
	return len(r.Failed) == 0
}

// StartBulk promotes every selected row into an edit session at once.
// Disallowed while a single-row edit or add is in progress.
func (t *Table) StartBulk() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.anySavingLocked() {
		return ErrRowBusy
	}
	for _, sess := range t.sessions {
		if !sess.bulk {
			return ErrEditInProgress
		}
	}
	if len(t.selection) == 0 {
		return ErrEmptySelection
	}

	for id := range t.selection {
		rec, ok := t.records[id]
		if !ok {
			continue
		}
		t.sessions[id] = &session{
			rowID:  id,
			draft:  SeedDraft(t.def, rec),
			record: rec,
			bulk:   true,
		}
	}
	t.bulkActive = true
	return nil
}

// SaveAll diffs every bulk session independently and dispatches each
// non-empty change set as its own save intent. Rows whose diff is empty
// count as saved without a network call. When configured, failed rows get
// one automatic retry pass before they are reported.
func (t *Table) SaveAll(ctx context.Context) BulkReport {
	report := t.saveAllOnce(ctx)

	if t.retryFailedBulk && len(report.Failed) > 0 {
		retry := t.saveAllOnce(ctx)
		report.Saved = append(report.Saved, retry.Saved...)
		report.Failed = retry.Failed
	}

	sort.Strings(report.Saved)
	sort.Slice(report.Failed, func(i, j int) bool {
		return report.Failed[i].RowID < report.Failed[j].RowID
	})

	t.mu.Lock()
	done := t.bulkActive && !t.anyBulkSessionLocked()
	if done {
		t.bulkActive = false
		t.selection = make(map[string]struct{})
	}
	t.mu.Unlock()

	if len(report.Saved) > 0 {
		t.signalRefresh()
	}
	return report
}

func (t *Table) saveAllOnce(ctx context.Context) BulkReport {
	type pending struct {
		rowID   string
		changes map[string]any
	}

	t.mu.Lock()
	var report BulkReport
	var work []pending
	for id, sess := range t.sessions {
		if !sess.bulk || sess.saving {
			continue
		}
		changes, err := ComputeChanges(sess.record, sess.draft, t.def.EditableColumns())
		if err != nil {
			msg := MapError(err)
			sess.lastError = &msg
			report.Failed = append(report.Failed, BulkFailure{RowID: id, Reason: msg})
			continue
		}
		if len(changes) == 0 {
			delete(t.sessions, id)
			report.Saved = append(report.Saved, id)
			continue
		}
		sess.saving = true
		work = append(work, pending{rowID: id, changes: changes})
	}
	t.mu.Unlock()

	var (
		wg       sync.WaitGroup
		outcomeM sync.Mutex
	)
	for _, p := range work {
		wg.Add(1)
		go func(p pending) {
			defer wg.Done()

			out := t.coord.Dispatch(ctx, Intent{
				Kind:         IntentSave,
				ResourceType: t.def.Type,
				RowID:        p.rowID,
				Changes:      p.changes,
			})
			t.settleSave(ctx, p.rowID, out, p.changes)

			outcomeM.Lock()
			defer outcomeM.Unlock()
			if out.OK() {
				report.Saved = append(report.Saved, p.rowID)
				return
			}
			reason := UserMessage{Code: "MUT001", Message: string(out.Status)}
			if out.Message != nil {
				reason = *out.Message
			}
			report.Failed = append(report.Failed, BulkFailure{RowID: p.rowID, Reason: reason})
		}(p)
	}
	wg.Wait()

	return report
}

// CancelBulk discards every bulk draft without network calls and clears the
// selection.
func (t *Table) CancelBulk() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, sess := range t.sessions {
		if sess.bulk {
			if sess.saving {
				sess.cancelQueued = true
				continue
			}
			delete(t.sessions, id)
		}
	}
	t.bulkActive = false
	t.selection = make(map[string]struct{})
}

func (t *Table) anyBulkSessionLocked() bool {
	for _, sess := range t.sessions {
		if sess.bulk {
			return true
		}
	}
	return false
}
