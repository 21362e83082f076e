package resources

import (
	"testing"

	"github.com/tastemap/console/internal/schema"
)

func TestAllResourceTypesRegistered(t *testing.T) {
	want := []string{"dishes", "hashtags", "lists", "neighborhoods", "restaurants", "submissions", "users"}
	got := schema.Types()

	if len(got) != len(want) {
		t.Fatalf("Types() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Types() = %v, want %v", got, want)
		}
	}
}

func TestCreateGuards(t *testing.T) {
	tests := []struct {
		resourceType string
		required     []string
		positiveRefs []string
	}{
		{resourceType: "restaurants", required: []string{"name"}},
		{resourceType: "dishes", required: []string{"name", "restaurant_id"}, positiveRefs: []string{"restaurant_id"}},
		{resourceType: "neighborhoods", required: []string{"name", "city_id"}, positiveRefs: []string{"city_id"}},
		{resourceType: "users", required: []string{"username", "email", "password"}},
	}
	for _, tt := range tests {
		t.Run(tt.resourceType, func(t *testing.T) {
			def, ok := schema.Get(tt.resourceType)
			if !ok {
				t.Fatalf("%s not registered", tt.resourceType)
			}
			if len(def.RequiredOnCreate) != len(tt.required) {
				t.Errorf("RequiredOnCreate = %v, want %v", def.RequiredOnCreate, tt.required)
			}
			for i, key := range tt.required {
				if i < len(def.RequiredOnCreate) && def.RequiredOnCreate[i] != key {
					t.Errorf("RequiredOnCreate = %v, want %v", def.RequiredOnCreate, tt.required)
				}
				if !def.HasColumn(key) {
					t.Errorf("required key %q is not a declared column", key)
				}
			}
			for _, key := range tt.positiveRefs {
				found := false
				for _, ref := range def.PositiveRefOnCreate {
					if ref == key {
						found = true
					}
				}
				if !found {
					t.Errorf("PositiveRefOnCreate missing %q: %v", key, def.PositiveRefOnCreate)
				}
			}
		})
	}
}

func TestOnlySubmissionsAreReviewable(t *testing.T) {
	for _, def := range schema.All() {
		want := def.Type == "submissions"
		if def.Reviewable != want {
			t.Errorf("%s Reviewable = %v, want %v", def.Type, def.Reviewable, want)
		}
	}
}

func TestIDColumnsAreNeverEditable(t *testing.T) {
	for _, def := range schema.All() {
		col, ok := def.Column("id")
		if !ok {
			t.Errorf("%s has no id column", def.Type)
			continue
		}
		if col.Editable {
			t.Errorf("%s id column is editable", def.Type)
		}
		for _, ec := range def.EditableColumns() {
			if ec.Key == "id" {
				t.Errorf("%s EditableColumns includes id", def.Type)
			}
		}
	}
}

func TestLocationColumnsOnRestaurants(t *testing.T) {
	def, ok := schema.Get("restaurants")
	if !ok {
		t.Fatalf("restaurants not registered")
	}
	for _, key := range []string{"address", "zipcode", "city_id", "city_name", "neighborhood_id", "neighborhood_name"} {
		col, ok := def.Column(key)
		if !ok {
			t.Errorf("restaurants missing column %q", key)
			continue
		}
		if !col.Editable {
			t.Errorf("restaurants column %q not editable", key)
		}
	}

	if col, _ := def.Column("address"); col.Kind != schema.InputAddress {
		t.Errorf("address kind = %v, want InputAddress", col.Kind)
	}
	if col, _ := def.Column("city_id"); col.Kind != schema.InputCityRef {
		t.Errorf("city_id kind = %v, want InputCityRef", col.Kind)
	}
}
