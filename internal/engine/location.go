package engine

// location.go resolves the cascading address -> zipcode -> neighborhood ->
// city chain. Resolution degrades gracefully: any miss or lookup error
// collapses to LookupFailed, which the UI uses to unlock manual
// city/neighborhood selection. A miss and a failed call are deliberately
// not distinguished to the caller.

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/tastemap/console/internal/directory"
)

var zipcodePattern = regexp.MustCompile(`\b(\d{5})\b`)

// Resolution is the transient result of a location lookup. It is merged
// into the draft of the row that triggered it and never persisted on its own.
type Resolution struct {
	NeighborhoodID   int64  `json:"neighborhood_id"`
	NeighborhoodName string `json:"neighborhood_name"`
	CityID           int64  `json:"city_id"`
	CityName         string `json:"city_name"`
	LookupFailed     bool   `json:"lookup_failed"`
}

// Resolver derives neighborhood and city from addresses and zipcodes.
type Resolver struct {
	lookup directory.LookupClient
}

// NewResolver creates a resolver backed by the given lookup service.
func NewResolver(lookup directory.LookupClient) *Resolver {
	return &Resolver{lookup: lookup}
}

// FromAddress extracts a 5-digit zipcode token from a free-text address and
// resolves it. If no token is found the resolution fails immediately without
// calling the lookup service.
func (r *Resolver) FromAddress(ctx context.Context, address string) Resolution {
	m := zipcodePattern.FindStringSubmatch(address)
	if m == nil {
		return Resolution{LookupFailed: true}
	}
	return r.FromZipcode(ctx, m[1])
}

// FromZipcode resolves a zipcode via the external lookup, called exactly
// once per resolution. A found neighborhood populates all four fields; a
// miss or an error both yield LookupFailed with the fields cleared.
func (r *Resolver) FromZipcode(ctx context.Context, zip string) Resolution {
	if !zipcodePattern.MatchString(zip) {
		return Resolution{LookupFailed: true}
	}

	n, err := r.lookup.FindNeighborhoodByZipcode(ctx, zip)
	if err != nil {
		slog.Debug("zipcode lookup failed", "zipcode", zip, "error", err)
		return Resolution{LookupFailed: true}
	}
	if n == nil {
		return Resolution{LookupFailed: true}
	}

	return Resolution{
		NeighborhoodID:   n.ID,
		NeighborhoodName: n.Name,
		CityID:           n.CityID,
		CityName:         n.CityName,
	}
}

// Merge applies the resolution to a draft. Success overwrites the four
// location fields; failure clears them so manual entry starts blank.
func (res Resolution) Merge(draft Draft) {
	if res.LookupFailed {
		draft["city_id"] = ""
		draft["city_name"] = ""
		draft["neighborhood_id"] = ""
		draft["neighborhood_name"] = ""
		return
	}
	draft["city_id"] = strconv.FormatInt(res.CityID, 10)
	draft["city_name"] = res.CityName
	draft["neighborhood_id"] = strconv.FormatInt(res.NeighborhoodID, 10)
	draft["neighborhood_name"] = res.NeighborhoodName
}
