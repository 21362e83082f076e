package engine

import (
	"context"
	"testing"
)

func testQueue(client *fakeClient) *ReviewQueue {
	return NewReviewQueue(NewCoordinator(client), NopAuditor{})
}

func testBatch() []Change {
	return []Change{
		{ID: "c1", EntityType: "restaurants", EntityID: "1", Field: "name", CurrentValue: "joes diner", ProposedValue: "Joe's Diner"},
		{ID: "c2", EntityType: "restaurants", EntityID: "2", Field: "city_id", CurrentValue: nil, ProposedValue: float64(3)},
		{ID: "c3", EntityType: "dishes", EntityID: "9", Field: "price", CurrentValue: float64(0), ProposedValue: float64(12)},
	}
}

func TestLoadDefaultsToPending(t *testing.T) {
	q := testQueue(newFakeClient())
	q.Load(testBatch())

	if got := q.Remaining(); got != 3 {
		t.Errorf("Remaining = %d, want 3", got)
	}
	for _, c := range q.Changes() {
		if c.Decision != DecisionPending {
			t.Errorf("change %s decision = %q, want pending", c.ID, c.Decision)
		}
	}
}

func TestApproveDispatchesSingleFieldSave(t *testing.T) {
	client := newFakeClient()
	q := testQueue(client)
	q.Load(testBatch())

	out := q.Approve(context.Background(), "c1")
	if out.Status != OutcomeOK {
		t.Fatalf("status = %q, want ok (%+v)", out.Status, out.Message)
	}
	if len(client.updates) != 1 || client.updates[0] != "1" {
		t.Errorf("updates = %v, want [1]", client.updates)
	}
	want := map[string]any{"name": "Joe's Diner"}
	if len(client.lastChanges) != 1 || client.lastChanges["name"] != want["name"] {
		t.Errorf("dispatched changes = %v, want %v", client.lastChanges, want)
	}

	for _, c := range q.Changes() {
		if c.ID == "c1" && c.Decision != DecisionApproved {
			t.Errorf("c1 decision = %q, want approved", c.Decision)
		}
	}
}

func TestRejectIsLocal(t *testing.T) {
	client := newFakeClient()
	q := testQueue(client)
	q.Load(testBatch())

	out := q.Reject(context.Background(), "c1")
	if out.Status != OutcomeOK {
		t.Fatalf("status = %q, want ok", out.Status)
	}
	if client.updateCount() != 0 {
		t.Errorf("reject must not touch the network")
	}
	if got := q.Remaining(); got != 2 {
		t.Errorf("Remaining = %d, want 2", got)
	}
}

func TestSecondDecisionIsNoOp(t *testing.T) {
	client := newFakeClient()
	q := testQueue(client)
	q.Load(testBatch())

	if out := q.Approve(context.Background(), "c1"); out.Status != OutcomeOK {
		t.Fatalf("first approve = %q", out.Status)
	}
	calls := client.updateCount()

	if out := q.Approve(context.Background(), "c1"); out.Status != OutcomeAlreadyDecided {
		t.Errorf("second approve = %q, want already_decided", out.Status)
	}
	if out := q.Reject(context.Background(), "c1"); out.Status != OutcomeAlreadyDecided {
		t.Errorf("reject after approve = %q, want already_decided", out.Status)
	}
	if client.updateCount() != calls {
		t.Errorf("repeat decision reached the network")
	}
}

func TestFailedApproveStaysPending(t *testing.T) {
	client := newFakeClient()
	client.fail["1"] = errBackend
	q := testQueue(client)
	q.Load(testBatch())

	out := q.Approve(context.Background(), "c1")
	if out.Status != OutcomeFailed {
		t.Fatalf("status = %q, want failed", out.Status)
	}
	if got := q.Remaining(); got != 3 {
		t.Errorf("Remaining = %d, want 3 (failed approve stays retryable)", got)
	}

	// Backend recovers; the same change can be approved again.
	client.mu.Lock()
	delete(client.fail, "1")
	client.mu.Unlock()
	if out := q.Approve(context.Background(), "c1"); out.Status != OutcomeOK {
		t.Errorf("retry approve = %q, want ok", out.Status)
	}
}

func TestApproveAllSkipsDecided(t *testing.T) {
	client := newFakeClient()
	q := testQueue(client)
	q.Load(testBatch())

	if out := q.Reject(context.Background(), "c2"); out.Status != OutcomeOK {
		t.Fatalf("reject c2 = %q", out.Status)
	}

	report := q.ApproveAll(context.Background())
	if report.Decided != 2 {
		t.Errorf("Decided = %d, want 2", report.Decided)
	}
	if report.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", report.Skipped)
	}
	if len(report.Failed) != 0 {
		t.Errorf("Failed = %+v, want none", report.Failed)
	}
	if client.updateCount() != 2 {
		t.Errorf("updates = %d, want 2", client.updateCount())
	}
}

func TestRejectAllIsEntirelyLocal(t *testing.T) {
	client := newFakeClient()
	q := testQueue(client)
	q.Load(testBatch())

	report := q.RejectAll(context.Background())
	if report.Decided != 3 || report.Skipped != 0 {
		t.Errorf("report = %+v, want 3 decided", report)
	}
	if client.updateCount() != 0 {
		t.Errorf("reject-all must not touch the network")
	}
}

func TestBatchDrainsWhenAllDecided(t *testing.T) {
	client := newFakeClient()
	q := testQueue(client)
	q.Load(testBatch())

	q.Approve(context.Background(), "c1")
	q.Reject(context.Background(), "c2")
	if len(q.Changes()) != 3 {
		t.Fatalf("batch drained before every change was decided")
	}

	q.Approve(context.Background(), "c3")
	if got := len(q.Changes()); got != 0 {
		t.Errorf("batch size after final decision = %d, want 0", got)
	}
	if got := q.Remaining(); got != 0 {
		t.Errorf("Remaining = %d, want 0", got)
	}
}

func TestDecisionOnUnknownChange(t *testing.T) {
	q := testQueue(newFakeClient())
	q.Load(testBatch())

	out := q.Approve(context.Background(), "nope")
	if out.Status != OutcomeInvalid {
		t.Errorf("status = %q, want invalid", out.Status)
	}
}
