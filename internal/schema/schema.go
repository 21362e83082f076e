// Package schema describes the resource types the admin console manages.
// Column descriptors are static metadata supplied to the edit engine; the
// engine never mutates them.
package schema

import "strings"

// InputKind identifies the editor widget and value semantics of a column.
type InputKind int

const (
	InputText InputKind = iota
	InputTextarea
	InputNumber
	InputBool
	InputSelect
	InputTags
	InputCityRef
	InputNeighborhoodRef
	InputAddress
)

// String returns a human-readable name for the input kind.
func (k InputKind) String() string {
	switch k {
	case InputText:
		return "text"
	case InputTextarea:
		return "textarea"
	case InputNumber:
		return "number"
	case InputBool:
		return "boolean"
	case InputSelect:
		return "select"
	case InputTags:
		return "tags"
	case InputCityRef:
		return "city-ref"
	case InputNeighborhoodRef:
		return "neighborhood-ref"
	case InputAddress:
		return "address"
	default:
		return "value"
	}
}

// Numeric reports whether values of this kind are compared as integers.
// Foreign-key reference columns carry numeric ids.
func (k InputKind) Numeric() bool {
	return k == InputNumber || k == InputCityRef || k == InputNeighborhoodRef
}

// Column defines one editable (or display-only) field of a resource.
type Column struct {
	Key      string    // Record field name: "name", "city_id"
	Label    string    // Display name: "Name", "City"
	Kind     InputKind // Editor widget / comparison semantics
	Editable bool      // False for id, computed and read-only columns
	Required bool      // Must be non-empty when saving
	Options  []string  // Valid values for InputSelect
}

// Definition contains everything the engine needs to edit one resource type.
type Definition struct {
	Type    string // Unique identifier: "restaurants"
	Label   string // Display name: "Restaurants"
	Columns []Column

	// RequiredOnCreate lists column keys that must be present before a new
	// row may be sent to the backend. Missing values are a local validation
	// failure, never a network call.
	RequiredOnCreate []string

	// PositiveRefOnCreate lists foreign-key columns that must parse to a
	// positive integer on create (dish -> restaurant, neighborhood -> city).
	PositiveRefOnCreate []string

	// Reviewable marks types whose rows carry a pending/approved/rejected
	// status and accept approve/reject intents.
	Reviewable bool
}

// Column returns the descriptor for the given key.
func (d Definition) Column(key string) (Column, bool) {
	for _, col := range d.Columns {
		if strings.EqualFold(col.Key, key) {
			return col, true
		}
	}
	return Column{}, false
}

// EditableColumns returns the columns the diff engine iterates.
// The id column and read-only columns are excluded.
func (d Definition) EditableColumns() []Column {
	out := make([]Column, 0, len(d.Columns))
	for _, col := range d.Columns {
		if col.Editable && col.Key != "id" {
			out = append(out, col)
		}
	}
	return out
}

// HasColumn reports whether the definition declares the given key.
func (d Definition) HasColumn(key string) bool {
	_, ok := d.Column(key)
	return ok
}
