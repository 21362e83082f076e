package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/tastemap/console/internal/directory"
)

func TestFromAddressExtractsZipcode(t *testing.T) {
	lookup := &fakeLookup{hit: &directory.Neighborhood{
		ID: 7, Name: "Downtown", CityID: 3, CityName: "Austin",
	}}
	r := NewResolver(lookup)

	res := r.FromAddress(context.Background(), "123 Main St, Austin TX 78701")
	if res.LookupFailed {
		t.Fatalf("resolution failed: %+v", res)
	}
	if res.NeighborhoodID != 7 || res.CityID != 3 {
		t.Errorf("resolution = %+v, want neighborhood 7 city 3", res)
	}
	if res.CityName != "Austin" || res.NeighborhoodName != "Downtown" {
		t.Errorf("resolution names = %q/%q", res.CityName, res.NeighborhoodName)
	}
	if got := lookup.callCount(); got != 1 {
		t.Errorf("lookup calls = %d, want 1", got)
	}
	if lookup.calls[0] != "78701" {
		t.Errorf("lookup zipcode = %q, want 78701", lookup.calls[0])
	}
}

func TestFromAddressWithoutZipcodeSkipsLookup(t *testing.T) {
	lookup := &fakeLookup{}
	r := NewResolver(lookup)

	res := r.FromAddress(context.Background(), "123 Main St")
	if !res.LookupFailed {
		t.Errorf("address without zipcode should fail resolution")
	}
	if got := lookup.callCount(); got != 0 {
		t.Errorf("lookup calls = %d, want 0", got)
	}
}

func TestFromZipcode(t *testing.T) {
	tests := []struct {
		name      string
		zip       string
		hit       *directory.Neighborhood
		err       error
		wantFail  bool
		wantCalls int
	}{
		{
			name:      "found",
			zip:       "78701",
			hit:       &directory.Neighborhood{ID: 7, Name: "Downtown", CityID: 3, CityName: "Austin"},
			wantCalls: 1,
		},
		{
			name:      "miss reads as failure",
			zip:       "99999",
			wantFail:  true,
			wantCalls: 1,
		},
		{
			name:      "lookup error reads as failure",
			zip:       "78701",
			err:       errors.New("connection refused"),
			wantFail:  true,
			wantCalls: 1,
		},
		{
			name:      "malformed zipcode never calls out",
			zip:       "787",
			wantFail:  true,
			wantCalls: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := &fakeLookup{hit: tt.hit, err: tt.err}
			res := NewResolver(lookup).FromZipcode(context.Background(), tt.zip)

			if res.LookupFailed != tt.wantFail {
				t.Errorf("LookupFailed = %v, want %v", res.LookupFailed, tt.wantFail)
			}
			if got := lookup.callCount(); got != tt.wantCalls {
				t.Errorf("lookup calls = %d, want %d", got, tt.wantCalls)
			}
			if tt.wantFail && (res.CityID != 0 || res.NeighborhoodID != 0) {
				t.Errorf("failed resolution carries ids: %+v", res)
			}
		})
	}
}

func TestResolutionMerge(t *testing.T) {
	t.Run("success overwrites location fields", func(t *testing.T) {
		draft := Draft{"city_id": "", "city_name": "", "neighborhood_id": "", "neighborhood_name": ""}
		res := Resolution{NeighborhoodID: 7, NeighborhoodName: "Downtown", CityID: 3, CityName: "Austin"}
		res.Merge(draft)

		if draft["city_id"] != "3" || draft["city_name"] != "Austin" {
			t.Errorf("city fields = %q/%q", draft["city_id"], draft["city_name"])
		}
		if draft["neighborhood_id"] != "7" || draft["neighborhood_name"] != "Downtown" {
			t.Errorf("neighborhood fields = %q/%q", draft["neighborhood_id"], draft["neighborhood_name"])
		}
	})

	t.Run("failure clears location fields", func(t *testing.T) {
		draft := Draft{"city_id": "3", "city_name": "Austin", "neighborhood_id": "7", "neighborhood_name": "Downtown"}
		Resolution{LookupFailed: true}.Merge(draft)

		for _, key := range []string{"city_id", "city_name", "neighborhood_id", "neighborhood_name"} {
			if draft[key] != "" {
				t.Errorf("%s = %q, want cleared", key, draft[key])
			}
		}
	})
}
