// Package directory defines the contracts for the upstream directory API:
// CRUD by resource type and id, submission review, and the
// neighborhood-by-zipcode lookup. The edit engine treats this backend as the
// canonical record store and never caches truth of its own.
package directory

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Record is one row of a resource as returned by the backend. Fields the
// console does not know about pass through untouched so an update never
// drops them.
type Record map[string]any

// ID returns the record identifier as a string.
// Backend ids arrive as JSON numbers or strings; both are accepted.
func (r Record) ID() string {
	switch v := r["id"].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

// Status returns the review status field, empty if absent.
func (r Record) Status() string {
	s, _ := r["status"].(string)
	return s
}

// Page is one page of fetched records plus pagination echo from the backend.
type Page struct {
	Data    []Record `json:"data"`
	Total   int      `json:"total"`
	Page    int      `json:"page"`
	PerPage int      `json:"per_page"`
}

// Neighborhood is the result of a zipcode lookup.
type Neighborhood struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	CityID   int64  `json:"city_id"`
	CityName string `json:"city_name"`
}

// Client is the upstream CRUD API the engine mutates through.
// Implementations report expected backend failures as errors; a
// referential-integrity rejection on delete is a *ConflictError.
type Client interface {
	Fetch(ctx context.Context, resourceType string, query url.Values) (Page, error)
	Create(ctx context.Context, resourceType string, payload map[string]any) (Record, error)
	Update(ctx context.Context, resourceType, id string, changed map[string]any) (Record, error)
	Delete(ctx context.Context, resourceType, id string) error
	ApproveSubmission(ctx context.Context, id string) error
	RejectSubmission(ctx context.Context, id string) error
}

// LookupClient finds a neighborhood by 5-digit zipcode.
// A miss returns (nil, nil); the caller does not distinguish a miss from a
// transport error.
type LookupClient interface {
	FindNeighborhoodByZipcode(ctx context.Context, zip string) (*Neighborhood, error)
}

// ConflictError reports that a delete was rejected because other records
// still reference the target.
type ConflictError struct {
	ResourceType string
	ID           string
	Detail       string
}

func (e *ConflictError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s is referenced by other items: %s", e.ResourceType, e.ID, e.Detail)
	}
	return fmt.Sprintf("%s %s is referenced by other items, cannot delete", e.ResourceType, e.ID)
}
