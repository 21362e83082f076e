package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// envelope is the uniform response shape of the directory API.
// success=false is treated identically to a transport error.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// HTTPClient talks to the directory API over REST.
// It implements both Client and LookupClient.
type HTTPClient struct {
	rc *resty.Client
}

// NewHTTPClient creates a client for the given base URL.
// The token, when set, is sent as a bearer Authorization header.
func NewHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if token != "" {
		rc.SetAuthToken(token)
	}
	return &HTTPClient{rc: rc}
}

// Fetch retrieves a page of records for the resource type.
func (c *HTTPClient) Fetch(ctx context.Context, resourceType string, query url.Values) (Page, error) {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetQueryParamsFromValues(query).
		Get("/api/" + resourceType)
	if err != nil {
		return Page{}, fmt.Errorf("fetch %s: %w", resourceType, err)
	}

	var page Page
	if err := c.decode(resp, resourceType, &page); err != nil {
		return Page{}, err
	}
	return page, nil
}

// Create inserts a new record and returns the persisted row.
func (c *HTTPClient) Create(ctx context.Context, resourceType string, payload map[string]any) (Record, error) {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post("/api/" + resourceType)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", resourceType, err)
	}

	var rec Record
	if err := c.decode(resp, resourceType, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Update applies the changed fields to an existing record.
// Only the fields present in changed are sent; the backend merges.
func (c *HTTPClient) Update(ctx context.Context, resourceType, id string, changed map[string]any) (Record, error) {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(changed).
		Patch("/api/" + resourceType + "/" + url.PathEscape(id))
	if err != nil {
		return nil, fmt.Errorf("update %s/%s: %w", resourceType, id, err)
	}

	var rec Record
	if err := c.decode(resp, resourceType, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes a record. A backend referential-integrity rejection is
// returned as *ConflictError so callers can surface it distinctly.
func (c *HTTPClient) Delete(ctx context.Context, resourceType, id string) error {
	resp, err := c.rc.R().
		SetContext(ctx).
		Delete("/api/" + resourceType + "/" + url.PathEscape(id))
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", resourceType, id, err)
	}

	env, err := parseEnvelope(resp)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", resourceType, id, err)
	}
	if !env.Success {
		if resp.StatusCode() == http.StatusConflict || isReferenceError(env.Error) {
			return &ConflictError{ResourceType: resourceType, ID: id, Detail: env.Error}
		}
		return fmt.Errorf("delete %s/%s: %s", resourceType, id, env.Error)
	}
	return nil
}

// ApproveSubmission marks a pending submission approved.
func (c *HTTPClient) ApproveSubmission(ctx context.Context, id string) error {
	return c.decide(ctx, id, "approve")
}

// RejectSubmission marks a pending submission rejected.
func (c *HTTPClient) RejectSubmission(ctx context.Context, id string) error {
	return c.decide(ctx, id, "reject")
}

func (c *HTTPClient) decide(ctx context.Context, id, action string) error {
	resp, err := c.rc.R().
		SetContext(ctx).
		Post("/api/submissions/" + url.PathEscape(id) + "/" + action)
	if err != nil {
		return fmt.Errorf("%s submission %s: %w", action, id, err)
	}

	env, err := parseEnvelope(resp)
	if err != nil {
		return fmt.Errorf("%s submission %s: %w", action, id, err)
	}
	if !env.Success {
		return fmt.Errorf("%s submission %s: %s", action, id, env.Error)
	}
	return nil
}

// FindNeighborhoodByZipcode looks up the neighborhood covering a zipcode.
// Returns (nil, nil) when the backend has no neighborhood on file.
func (c *HTTPClient) FindNeighborhoodByZipcode(ctx context.Context, zip string) (*Neighborhood, error) {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetQueryParam("zipcode", zip).
		Get("/api/neighborhoods/lookup")
	if err != nil {
		return nil, fmt.Errorf("zipcode lookup %s: %w", zip, err)
	}

	env, err := parseEnvelope(resp)
	if err != nil {
		return nil, fmt.Errorf("zipcode lookup %s: %w", zip, err)
	}
	if !env.Success {
		return nil, fmt.Errorf("zipcode lookup %s: %s", zip, env.Error)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, nil
	}

	var n Neighborhood
	if err := json.Unmarshal(env.Data, &n); err != nil {
		return nil, fmt.Errorf("zipcode lookup %s: decode: %w", zip, err)
	}
	return &n, nil
}

// decode unwraps the envelope and unmarshals data into out.
func (c *HTTPClient) decode(resp *resty.Response, resourceType string, out any) error {
	env, err := parseEnvelope(resp)
	if err != nil {
		return fmt.Errorf("%s: %w", resourceType, err)
	}
	if !env.Success {
		return fmt.Errorf("%s: backend error: %s", resourceType, env.Error)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", resourceType, err)
	}
	return nil
}

func parseEnvelope(resp *resty.Response) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return env, fmt.Errorf("status %d: invalid response body", resp.StatusCode())
	}
	if !env.Success && env.Error == "" {
		env.Error = fmt.Sprintf("status %d", resp.StatusCode())
	}
	return env, nil
}

// isReferenceError matches backend error text describing a foreign-key
// rejection when the status code alone does not say so.
func isReferenceError(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "referenced") || strings.Contains(m, "foreign key")
}
