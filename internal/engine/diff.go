package engine

import (
	"strconv"
	"strings"

	"github.com/tastemap/console/internal/directory"
	"github.com/tastemap/console/internal/schema"
)

// Draft holds the pending string values of a row in edit or add mode,
// keyed by column key. A draft exists only while its row is being edited.
type Draft map[string]string

// Clone returns an independent copy of the draft.
func (d Draft) Clone() Draft {
	out := make(Draft, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// SeedDraft builds the initial draft for editing an existing record.
// Tag lists are joined to a comma-delimited string and booleans are
// stringified, mirroring what the editor widgets expect.
func SeedDraft(def schema.Definition, rec directory.Record) Draft {
	draft := make(Draft, len(def.Columns))
	for _, col := range def.EditableColumns() {
		draft[col.Key] = asString(rec[col.Key])
	}
	return draft
}

// DefaultDraft builds the draft for the synthetic new-row session.
// Booleans default to "false"; everything else starts empty.
func DefaultDraft(def schema.Definition) Draft {
	draft := make(Draft, len(def.Columns))
	for _, col := range def.EditableColumns() {
		if col.Kind == schema.InputBool {
			draft[col.Key] = "false"
			continue
		}
		draft[col.Key] = ""
	}
	return draft
}

// ComputeChanges produces the minimal changed-field map between a record and
// its draft. Only editable columns are considered; a column appears in the
// result iff its normalized values differ. Any normalization failure or
// required-but-empty column aborts the whole computation: no partial change
// map is ever returned.
//
// An empty result means "no-op save": the caller treats it as a
// cancel-equivalent and issues no network call.
//
// Tag columns emit the full normalized list, not a delta, since the backend
// expects the complete replacement value.
func ComputeChanges(original directory.Record, draft Draft, cols []schema.Column) (map[string]any, error) {
	changes := make(map[string]any)

	for _, col := range cols {
		rawDraft, ok := draft[col.Key]
		if !ok {
			continue
		}

		normOrig, err := Normalize(col, original[col.Key])
		if err != nil {
			return nil, err
		}
		normDraft, err := Normalize(col, rawDraft)
		if err != nil {
			return nil, err
		}

		if col.Required && isEmptyValue(col, normDraft) {
			return nil, &FieldError{Field: col.Key, Message: "required field is empty"}
		}

		if !Equal(col, normOrig, normDraft) {
			changes[col.Key] = normDraft
		}
	}

	return changes, nil
}

// BuildCreatePayload validates and assembles the payload for a new row.
// Mandatory columns must be present and foreign keys must be positive
// integers before anything is sent to the backend.
func BuildCreatePayload(def schema.Definition, draft Draft) (map[string]any, error) {
	for _, key := range def.RequiredOnCreate {
		if strings.TrimSpace(draft[key]) == "" {
			return nil, &FieldError{Field: key, Message: "required field is empty"}
		}
	}
	for _, key := range def.PositiveRefOnCreate {
		n, err := strconv.ParseInt(strings.TrimSpace(draft[key]), 10, 64)
		if err != nil {
			return nil, &FieldError{Field: key, Message: "invalid number"}
		}
		if n <= 0 {
			return nil, &FieldError{Field: key, Message: "must reference an existing item"}
		}
	}

	payload := make(map[string]any)
	for _, col := range def.EditableColumns() {
		raw, ok := draft[col.Key]
		if !ok {
			continue
		}
		norm, err := Normalize(col, raw)
		if err != nil {
			return nil, err
		}
		if col.Required && isEmptyValue(col, norm) {
			return nil, &FieldError{Field: col.Key, Message: "required field is empty"}
		}
		if norm == nil {
			continue
		}
		if tags, ok := norm.([]string); ok && len(tags) == 0 {
			continue
		}
		payload[col.Key] = norm
	}

	return payload, nil
}

// isEmptyValue reports whether a normalized value counts as empty for
// required-field checks.
func isEmptyValue(col schema.Column, v any) bool {
	if v == nil {
		return true
	}
	if col.Kind == schema.InputTags {
		tags, _ := v.([]string)
		return len(tags) == 0
	}
	return false
}
