package engine

// messages.go maps engine errors to user-friendly messages with codes for
// support reference. Codes are grouped by category:
//
//	VAL001 - Invalid number for a numeric or reference column
//	VAL002 - Required field is empty
//	VAL003 - Unknown or read-only column
//	VAL004 - Confirmation required before delete
//	LOC001 - Zipcode lookup failed, manual entry unlocked
//	MUT001 - Backend rejected the mutation
//	MUT002 - Record is referenced by other items, cannot delete
//	MUT003 - Item was already decided
//	BUSY01 - A mutation for this row is still in flight
//	SES001 - No edit in progress for this row
//	SES002 - Another edit or add is already in progress

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tastemap/console/internal/directory"
)

// UserMessage is a user-facing rendering of an engine error.
type UserMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
}

// Sentinel errors for session and coordinator state violations.
var (
	ErrRowBusy        = errors.New("row busy: mutation already in flight")
	ErrNotEditing     = errors.New("no edit in progress for this row")
	ErrEditInProgress = errors.New("another edit or add is already in progress")
	ErrUnknownRow     = errors.New("row not found in working set")
	ErrAlreadyDecided = errors.New("item was already decided")
	ErrEmptySelection = errors.New("no rows selected")
)

// FieldError is a local validation failure attached to a single column.
// It never reaches the network.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// MapError converts an engine or backend error into a UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var fieldErr *FieldError
	if errors.As(err, &fieldErr) {
		code := "VAL001"
		action := "Correct the value and save again"
		if strings.Contains(fieldErr.Message, "required") {
			code = "VAL002"
			action = "Fill in the field before saving"
		}
		return UserMessage{Code: code, Message: fieldErr.Error(), Action: action}
	}

	var conflictErr *directory.ConflictError
	if errors.As(err, &conflictErr) {
		return UserMessage{
			Code:    "MUT002",
			Message: conflictErr.Error(),
			Action:  "Remove or reassign the referencing items first",
		}
	}

	switch {
	case errors.Is(err, ErrRowBusy):
		return UserMessage{Code: "BUSY01", Message: "A change for this row is still being saved"}
	case errors.Is(err, ErrNotEditing):
		return UserMessage{Code: "SES001", Message: "No edit in progress for this row"}
	case errors.Is(err, ErrEditInProgress):
		return UserMessage{
			Code:    "SES002",
			Message: "Another edit is already in progress",
			Action:  "Save or cancel the other edit first",
		}
	case errors.Is(err, ErrUnknownRow):
		return UserMessage{
			Code:    "SES001",
			Message: "Row not found",
			Action:  "Refresh the table and try again",
		}
	case errors.Is(err, ErrAlreadyDecided):
		return UserMessage{Code: "MUT003", Message: "This item was already decided"}
	case errors.Is(err, ErrEmptySelection):
		return UserMessage{
			Code:    "SES001",
			Message: "No rows are selected",
			Action:  "Select at least one row before bulk editing",
		}
	}

	return UserMessage{
		Code:    "MUT001",
		Message: err.Error(),
		Action:  "Retry the change or cancel the edit",
	}
}
