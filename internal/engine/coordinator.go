package engine

// coordinator.go serializes mutations per row. At most one intent may be in
// flight for a given row id; a second dispatch for the same id is rejected
// synchronously with a busy outcome and never queued. Intents for different
// rows run independently and may complete out of order.

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tastemap/console/internal/directory"
)

// IntentKind identifies the mutation a dispatch performs.
type IntentKind string

const (
	IntentSave    IntentKind = "save"
	IntentDelete  IntentKind = "delete"
	IntentApprove IntentKind = "approve"
	IntentReject  IntentKind = "reject"
)

// Intent is one requested mutation, tagged with its row.
type Intent struct {
	Kind          IntentKind
	ResourceType  string
	RowID         string
	Changes       map[string]any // save only
	CurrentStatus string         // approve/reject guard; must be "pending"
}

// OutcomeStatus classifies how a dispatch resolved.
type OutcomeStatus string

const (
	OutcomeOK             OutcomeStatus = "ok"
	OutcomeNoChange       OutcomeStatus = "no_change"
	OutcomeInvalid        OutcomeStatus = "invalid"
	OutcomeBusy           OutcomeStatus = "busy"
	OutcomeFailed         OutcomeStatus = "failed"
	OutcomeConflict       OutcomeStatus = "conflict"
	OutcomeAlreadyDecided OutcomeStatus = "already_decided"
)

// Outcome is the result of a dispatch, always attached to its originating
// row. Expected failures are reported here, never raised as errors past the
// coordinator boundary.
type Outcome struct {
	MutationID uuid.UUID        `json:"mutation_id"`
	RowID      string           `json:"row_id"`
	Kind       IntentKind       `json:"kind"`
	Status     OutcomeStatus    `json:"status"`
	Record     directory.Record `json:"record,omitempty"` // saved/created row on success
	Message    *UserMessage     `json:"message,omitempty"`
}

// OK reports whether the dispatch succeeded (including the no-op case).
func (o Outcome) OK() bool {
	return o.Status == OutcomeOK || o.Status == OutcomeNoChange
}

// Coordinator enforces single-flight-per-row mutation dispatch.
type Coordinator struct {
	client directory.Client
	flight *flightTable
}

// NewCoordinator creates a coordinator issuing mutations through the client.
func NewCoordinator(client directory.Client) *Coordinator {
	return &Coordinator{client: client, flight: newFlightTable()}
}

// Busy reports whether a mutation for the row is currently in flight.
func (c *Coordinator) Busy(resourceType, rowID string) bool {
	return c.flight.busy(flightKey(resourceType, rowID))
}

// InFlight returns the number of mutations currently in flight.
func (c *Coordinator) InFlight() int {
	return c.flight.count()
}

// Dispatch performs the intent's mutation and reports the outcome.
// The busy rejection is synchronous: no network call is made for a row that
// already has an intent in flight.
func (c *Coordinator) Dispatch(ctx context.Context, intent Intent) Outcome {
	out := Outcome{
		MutationID: uuid.New(),
		RowID:      intent.RowID,
		Kind:       intent.Kind,
	}

	key := flightKey(intent.ResourceType, intent.RowID)
	if !c.flight.tryAcquire(key) {
		out.Status = OutcomeBusy
		msg := MapError(ErrRowBusy)
		out.Message = &msg
		return out
	}
	defer c.flight.release(key)

	if intent.Kind == IntentApprove || intent.Kind == IntentReject {
		if intent.CurrentStatus != "pending" {
			out.Status = OutcomeAlreadyDecided
			msg := MapError(ErrAlreadyDecided)
			out.Message = &msg
			return out
		}
	}

	var err error
	switch intent.Kind {
	case IntentSave:
		if intent.RowID == NewRowID {
			out.Record, err = c.client.Create(ctx, intent.ResourceType, intent.Changes)
		} else {
			out.Record, err = c.client.Update(ctx, intent.ResourceType, intent.RowID, intent.Changes)
		}
	case IntentDelete:
		err = c.client.Delete(ctx, intent.ResourceType, intent.RowID)
	case IntentApprove:
		err = c.client.ApproveSubmission(ctx, intent.RowID)
	case IntentReject:
		err = c.client.RejectSubmission(ctx, intent.RowID)
	}

	if err != nil {
		msg := MapError(err)
		out.Message = &msg
		out.Status = OutcomeFailed
		if msg.Code == "MUT002" {
			out.Status = OutcomeConflict
		}
		slog.Warn("mutation failed",
			"mutation_id", out.MutationID,
			"kind", intent.Kind,
			"resource", intent.ResourceType,
			"row", intent.RowID,
			"error", err,
		)
		return out
	}

	out.Status = OutcomeOK
	slog.Info("mutation applied",
		"mutation_id", out.MutationID,
		"kind", intent.Kind,
		"resource", intent.ResourceType,
		"row", intent.RowID,
	)
	return out
}

func flightKey(resourceType, rowID string) string {
	return resourceType + "/" + rowID
}
