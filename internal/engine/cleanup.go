package engine

// cleanup.go models the data-cleanup review workflow: proposed field
// corrections produced by an external analysis step, each carrying the
// current and proposed value and awaiting an approve/reject decision.
// Approval dispatches the proposed value as a single-field save against the
// target entity; rejection records the decision with no network effect.

import (
	"context"
	"sync"
)

// Decision is the review state of one cleanup change.
type Decision string

const (
	DecisionPending  Decision = "pending"
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

// Change is one proposed field correction awaiting review.
type Change struct {
	ID            string   `json:"id"`
	EntityType    string   `json:"entity_type"`
	EntityID      string   `json:"entity_id"`
	Field         string   `json:"field"`
	CurrentValue  any      `json:"current_value"`
	ProposedValue any      `json:"proposed_value"`
	Decision      Decision `json:"decision"`
}

// BatchReport summarizes a batch approve/reject pass.
type BatchReport struct {
	Decided int           `json:"decided"`
	Skipped int           `json:"skipped"` // already decided, not re-processed
	Failed  []BulkFailure `json:"failed,omitempty"`
}

// ReviewQueue holds the current cleanup batch and transitions its changes.
// The batch is destroyed once every change in it is decided.
type ReviewQueue struct {
	coord *Coordinator
	audit Auditor

	mu      sync.Mutex
	changes []*Change
}

// NewReviewQueue creates an empty review queue dispatching through coord.
func NewReviewQueue(coord *Coordinator, audit Auditor) *ReviewQueue {
	if audit == nil {
		audit = NopAuditor{}
	}
	return &ReviewQueue{coord: coord, audit: audit}
}

// Load replaces the current batch. Changes without a decision start pending.
func (q *ReviewQueue) Load(changes []Change) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.changes = make([]*Change, 0, len(changes))
	for _, c := range changes {
		c := c
		if c.Decision == "" {
			c.Decision = DecisionPending
		}
		q.changes = append(q.changes, &c)
	}
}

// Changes returns a snapshot of the current batch.
func (q *ReviewQueue) Changes() []Change {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Change, 0, len(q.changes))
	for _, c := range q.changes {
		out = append(out, *c)
	}
	return out
}

// Approve applies the proposed value to the target entity and marks the
// change approved. Approving an already-decided change is a no-op failure
// with no network call. A failed mutation leaves the change pending so it
// can be retried.
func (q *ReviewQueue) Approve(ctx context.Context, changeID string) Outcome {
	q.mu.Lock()
	c := q.findLocked(changeID)
	if c == nil {
		q.mu.Unlock()
		return localOutcome(changeID, IntentApprove, OutcomeInvalid, ErrUnknownRow)
	}
	if c.Decision != DecisionPending {
		q.mu.Unlock()
		return localOutcome(changeID, IntentApprove, OutcomeAlreadyDecided, ErrAlreadyDecided)
	}
	target := *c
	q.mu.Unlock()

	out := q.coord.Dispatch(ctx, Intent{
		Kind:         IntentSave,
		ResourceType: target.EntityType,
		RowID:        target.EntityID,
		Changes:      map[string]any{target.Field: target.ProposedValue},
	})
	if out.Status != OutcomeOK {
		return out
	}

	q.mu.Lock()
	if c := q.findLocked(changeID); c != nil {
		c.Decision = DecisionApproved
	}
	q.drainIfDoneLocked()
	q.mu.Unlock()

	q.audit.LogMutation(ctx, AuditEvent{
		MutationID:   out.MutationID.String(),
		Action:       "cleanup_approve",
		ResourceType: target.EntityType,
		RowID:        target.EntityID,
		Changes:      map[string]any{target.Field: target.ProposedValue},
	})
	return out
}

// Reject records the decision with no network effect.
func (q *ReviewQueue) Reject(ctx context.Context, changeID string) Outcome {
	q.mu.Lock()
	c := q.findLocked(changeID)
	if c == nil {
		q.mu.Unlock()
		return localOutcome(changeID, IntentReject, OutcomeInvalid, ErrUnknownRow)
	}
	if c.Decision != DecisionPending {
		q.mu.Unlock()
		return localOutcome(changeID, IntentReject, OutcomeAlreadyDecided, ErrAlreadyDecided)
	}
	c.Decision = DecisionRejected
	target := *c
	q.drainIfDoneLocked()
	q.mu.Unlock()

	q.audit.LogMutation(ctx, AuditEvent{
		Action:       "cleanup_reject",
		ResourceType: target.EntityType,
		RowID:        target.EntityID,
	})
	return Outcome{RowID: changeID, Kind: IntentReject, Status: OutcomeOK}
}

// ApproveAll approves every pending change in the batch.
// Already-decided items are skipped, not re-processed.
func (q *ReviewQueue) ApproveAll(ctx context.Context) BatchReport {
	return q.decideAll(ctx, true)
}

// RejectAll rejects every pending change in the batch.
func (q *ReviewQueue) RejectAll(ctx context.Context) BatchReport {
	return q.decideAll(ctx, false)
}

func (q *ReviewQueue) decideAll(ctx context.Context, approve bool) BatchReport {
	q.mu.Lock()
	var pending []string
	var skipped int
	for _, c := range q.changes {
		if c.Decision == DecisionPending {
			pending = append(pending, c.ID)
		} else {
			skipped++
		}
	}
	q.mu.Unlock()

	report := BatchReport{Skipped: skipped}
	for _, id := range pending {
		var out Outcome
		if approve {
			out = q.Approve(ctx, id)
		} else {
			out = q.Reject(ctx, id)
		}
		if out.Status == OutcomeOK {
			report.Decided++
			continue
		}
		reason := UserMessage{Code: "MUT001", Message: string(out.Status)}
		if out.Message != nil {
			reason = *out.Message
		}
		report.Failed = append(report.Failed, BulkFailure{RowID: id, Reason: reason})
	}
	return report
}

// Remaining returns the number of still-pending changes.
func (q *ReviewQueue) Remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	var n int
	for _, c := range q.changes {
		if c.Decision == DecisionPending {
			n++
		}
	}
	return n
}

func (q *ReviewQueue) findLocked(id string) *Change {
	for _, c := range q.changes {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// drainIfDoneLocked destroys the batch once every change is decided.
func (q *ReviewQueue) drainIfDoneLocked() {
	for _, c := range q.changes {
		if c.Decision == DecisionPending {
			return
		}
	}
	q.changes = nil
}
