package engine

import (
	"errors"
	"testing"

	"github.com/tastemap/console/internal/directory"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantAction bool
	}{
		{
			name:       "invalid number",
			err:        &FieldError{Field: "rating", Message: "invalid number"},
			wantCode:   "VAL001",
			wantAction: true,
		},
		{
			name:       "required field",
			err:        &FieldError{Field: "name", Message: "required field is empty"},
			wantCode:   "VAL002",
			wantAction: true,
		},
		{
			name:       "delete conflict",
			err:        &directory.ConflictError{ResourceType: "restaurants", ID: "1"},
			wantCode:   "MUT002",
			wantAction: true,
		},
		{
			name:     "row busy",
			err:      ErrRowBusy,
			wantCode: "BUSY01",
		},
		{
			name:     "not editing",
			err:      ErrNotEditing,
			wantCode: "SES001",
		},
		{
			name:       "edit in progress",
			err:        ErrEditInProgress,
			wantCode:   "SES002",
			wantAction: true,
		},
		{
			name:     "already decided",
			err:      ErrAlreadyDecided,
			wantCode: "MUT003",
		},
		{
			name:       "unknown backend error",
			err:        errors.New("500 internal server error"),
			wantCode:   "MUT001",
			wantAction: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := MapError(tt.err)
			if msg.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", msg.Code, tt.wantCode)
			}
			if msg.Message == "" {
				t.Errorf("message is empty")
			}
			if tt.wantAction && msg.Action == "" {
				t.Errorf("expected a suggested action")
			}
		})
	}
}

func TestMapErrorNil(t *testing.T) {
	if msg := MapError(nil); msg.Code != "" {
		t.Errorf("MapError(nil) = %+v, want zero value", msg)
	}
}
