package engine

import (
	"errors"
	"reflect"
	"testing"

	"github.com/tastemap/console/internal/directory"
)

func TestComputeChangesSeededDraftIsEmpty(t *testing.T) {
	def := placeDef()
	rec := directory.Record{
		"id":        "1",
		"name":      "Joe's Diner",
		"tags":      []any{"pizza", "italian"},
		"rating":    float64(4),
		"is_active": true,
	}

	changes, err := ComputeChanges(rec, SeedDraft(def, rec), def.EditableColumns())
	if err != nil {
		t.Fatalf("ComputeChanges error: %v", err)
	}
	if len(changes) != 0 {
		t.Errorf("seeded draft produced changes: %v", changes)
	}
}

func TestComputeChangesMinimal(t *testing.T) {
	def := placeDef()
	rec := directory.Record{
		"id":          "1",
		"name":        "Joe's Diner",
		"price_range": "$$",
		"is_active":   true,
	}

	draft := SeedDraft(def, rec)
	draft["name"] = "Joe's Pizzeria"
	draft["is_active"] = "false"

	changes, err := ComputeChanges(rec, draft, def.EditableColumns())
	if err != nil {
		t.Fatalf("ComputeChanges error: %v", err)
	}

	want := map[string]any{"name": "Joe's Pizzeria", "is_active": false}
	if !reflect.DeepEqual(changes, want) {
		t.Errorf("ComputeChanges = %v, want %v", changes, want)
	}
}

func TestComputeChangesEquivalences(t *testing.T) {
	def := placeDef()

	tests := []struct {
		name  string
		rec   directory.Record
		edit  map[string]string
		want  int // expected number of changed fields
	}{
		{
			name: "tag reorder is a no-op",
			rec:  directory.Record{"id": "1", "name": "A", "tags": []any{"pizza", "italian"}},
			edit: map[string]string{"tags": "italian, pizza"},
			want: 0,
		},
		{
			name: "whitespace around text is a no-op",
			rec:  directory.Record{"id": "1", "name": "A"},
			edit: map[string]string{"name": "  A  "},
			want: 0,
		},
		{
			name: "empty draft equals nil field",
			rec:  directory.Record{"id": "1", "name": "A", "city_name": nil},
			edit: map[string]string{"city_name": ""},
			want: 0,
		},
		{
			name: "clearing a set field is a change",
			rec:  directory.Record{"id": "1", "name": "A", "city_name": "Austin"},
			edit: map[string]string{"city_name": ""},
			want: 1,
		},
		{
			name: "same number in different rendering is a no-op",
			rec:  directory.Record{"id": "1", "name": "A", "rating": float64(4)},
			edit: map[string]string{"rating": "4"},
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := SeedDraft(def, tt.rec)
			for k, v := range tt.edit {
				draft[k] = v
			}
			changes, err := ComputeChanges(tt.rec, draft, def.EditableColumns())
			if err != nil {
				t.Fatalf("ComputeChanges error: %v", err)
			}
			if len(changes) != tt.want {
				t.Errorf("ComputeChanges = %v, want %d changed fields", changes, tt.want)
			}
		})
	}
}

func TestComputeChangesAbortsOnInvalidNumber(t *testing.T) {
	def := placeDef()
	rec := directory.Record{"id": "1", "name": "Old Name"}

	draft := SeedDraft(def, rec)
	draft["name"] = "New Name" // valid change that must not survive the abort
	draft["rating"] = "not-a-number"

	changes, err := ComputeChanges(rec, draft, def.EditableColumns())
	if err == nil {
		t.Fatalf("expected error, got changes %v", changes)
	}
	if changes != nil {
		t.Errorf("partial change map returned alongside error: %v", changes)
	}

	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("error = %T, want *FieldError", err)
	}
	if fieldErr.Field != "rating" {
		t.Errorf("FieldError.Field = %q, want %q", fieldErr.Field, "rating")
	}
}

func TestComputeChangesAbortsOnRequiredEmpty(t *testing.T) {
	def := placeDef()
	rec := directory.Record{"id": "1", "name": "Joe's"}

	draft := SeedDraft(def, rec)
	draft["name"] = "   "

	_, err := ComputeChanges(rec, draft, def.EditableColumns())
	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("error = %T, want *FieldError", err)
	}
	if fieldErr.Field != "name" {
		t.Errorf("FieldError.Field = %q, want %q", fieldErr.Field, "name")
	}
}

func TestComputeChangesSkipsColumnsAbsentFromDraft(t *testing.T) {
	def := placeDef()
	rec := directory.Record{"id": "1", "name": "Joe's", "rating": float64(4)}

	// A draft carrying only one column must not touch the others.
	draft := Draft{"name": "Renamed"}
	changes, err := ComputeChanges(rec, draft, def.EditableColumns())
	if err != nil {
		t.Fatalf("ComputeChanges error: %v", err)
	}
	want := map[string]any{"name": "Renamed"}
	if !reflect.DeepEqual(changes, want) {
		t.Errorf("ComputeChanges = %v, want %v", changes, want)
	}
}

func TestBuildCreatePayload(t *testing.T) {
	def := placeDef()

	t.Run("missing mandatory field", func(t *testing.T) {
		draft := DefaultDraft(def)
		_, err := BuildCreatePayload(def, draft)
		var fieldErr *FieldError
		if !errors.As(err, &fieldErr) {
			t.Fatalf("error = %T, want *FieldError", err)
		}
		if fieldErr.Field != "name" {
			t.Errorf("FieldError.Field = %q, want %q", fieldErr.Field, "name")
		}
	})

	t.Run("empty fields omitted from payload", func(t *testing.T) {
		draft := DefaultDraft(def)
		draft["name"] = "New Place"
		payload, err := BuildCreatePayload(def, draft)
		if err != nil {
			t.Fatalf("BuildCreatePayload error: %v", err)
		}
		want := map[string]any{"name": "New Place", "is_active": false}
		if !reflect.DeepEqual(payload, want) {
			t.Errorf("payload = %v, want %v", payload, want)
		}
	})

	t.Run("positive ref enforced", func(t *testing.T) {
		def := reviewDef()
		def.RequiredOnCreate = []string{"name"}
		def.PositiveRefOnCreate = []string{"city_id"}
		def.Columns = append(def.Columns, placeDef().Columns[4]) // city_id

		draft := Draft{"name": "X", "city_id": "0"}
		_, err := BuildCreatePayload(def, draft)
		var fieldErr *FieldError
		if !errors.As(err, &fieldErr) {
			t.Fatalf("error = %T, want *FieldError", err)
		}
		if fieldErr.Field != "city_id" {
			t.Errorf("FieldError.Field = %q, want %q", fieldErr.Field, "city_id")
		}

		draft["city_id"] = "7"
		if _, err := BuildCreatePayload(def, draft); err != nil {
			t.Errorf("positive ref rejected: %v", err)
		}
	})
}

func TestDefaultDraftBooleansStartFalse(t *testing.T) {
	draft := DefaultDraft(placeDef())
	if draft["is_active"] != "false" {
		t.Errorf(`is_active default = %q, want "false"`, draft["is_active"])
	}
	if draft["name"] != "" {
		t.Errorf("name default = %q, want empty", draft["name"])
	}
	if _, ok := draft["id"]; ok {
		t.Errorf("id must not appear in a new-row draft")
	}
}
