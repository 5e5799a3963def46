// Package workspace is the consumer client for the remote workspace
// database that holds automation requests. It speaks the versioned
// JSON REST API (query-with-filter, page update, opaque-cursor
// pagination) and converts wire pages into typed requests at the
// boundary, so malformed external data is rejected here rather than
// propagating defaults downstream.
package workspace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"eco/pkg/request"
)

const (
	defaultBaseURL = "https://api.notion.com/v1"
	apiVersion     = "2022-06-28"

	// ResultTextLimit is the store's rich-text ceiling. Result and
	// error strings are truncated to this many runes before write-back.
	ResultTextLimit = 2000
)

// APIError is a non-2xx response from the workspace API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("workspace API error %d: %s", e.StatusCode, e.Message)
}

// Client talks to one workspace database.
type Client struct {
	baseURL    string
	token      string
	databaseID string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint (tests point this at an
// httptest server).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient creates a workspace client for the given database.
func NewClient(token, databaseID string, opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		token:      token,
		databaseID: databaseID,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DatabaseID returns the configured requests database ID.
func (c *Client) DatabaseID() string { return c.databaseID }

// --- Wire types ---

type richText struct {
	Type string   `json:"type,omitempty"`
	Text textBody `json:"text"`
}

type textBody struct {
	Content string `json:"content"`
}

type selectValue struct {
	Name string `json:"name"`
}

type dateValue struct {
	Start string `json:"start"`
}

// property is the union of property shapes this client reads or
// writes. Only one member is set per property.
type property struct {
	Title       []richText   `json:"title,omitempty"`
	RichText    []richText   `json:"rich_text,omitempty"`
	Select      *selectValue `json:"select,omitempty"`
	Date        *dateValue   `json:"date,omitempty"`
	Number      *float64     `json:"number,omitempty"`
	CreatedTime string       `json:"created_time,omitempty"`
}

// Page is one database row as returned by the API.
type Page struct {
	ID         string              `json:"id"`
	URL        string              `json:"url,omitempty"`
	Properties map[string]property `json:"properties"`
}

type queryRequest struct {
	Filter      any    `json:"filter,omitempty"`
	Sorts       []Sort `json:"sorts,omitempty"`
	StartCursor string `json:"start_cursor,omitempty"`
}

// Sort orders database query results by one property.
type Sort struct {
	Property  string `json:"property"`
	Direction string `json:"direction"`
}

type queryResponse struct {
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// --- Operations ---

// PendingRequests returns all queued requests, oldest first, following
// pagination cursors until the store reports no more pages. Pages that
// fail to parse are skipped; the request list is best-effort, the call
// only fails on transport or API errors.
func (c *Client) PendingRequests(ctx context.Context) ([]request.Request, error) {
	filter := map[string]any{
		"property": "Status",
		"select":   map[string]string{"equals": string(request.StatusQueued)},
	}
	sorts := []Sort{{Property: "Created", Direction: "ascending"}}

	pages, err := c.QueryDatabase(ctx, c.databaseID, filter, sorts)
	if err != nil {
		return nil, err
	}

	out := make([]request.Request, 0, len(pages))
	for _, page := range pages {
		req, err := ParseRequestPage(page)
		if err != nil {
			continue
		}
		out = append(out, req)
	}
	return out, nil
}

// QueryDatabase runs a filtered query against any database, following
// the opaque pagination cursor to exhaustion.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, filter any, sorts []Sort) ([]Page, error) {
	var (
		all    []Page
		cursor string
	)
	for {
		body := queryRequest{Filter: filter, Sorts: sorts, StartCursor: cursor}

		var resp queryResponse
		if err := c.do(ctx, http.MethodPost, "/databases/"+databaseID+"/query", body, &resp); err != nil {
			return nil, fmt.Errorf("query database %s: %w", databaseID, err)
		}
		all = append(all, resp.Results...)

		if !resp.HasMore || resp.NextCursor == "" {
			return all, nil
		}
		cursor = resp.NextCursor
	}
}

// UpdateStatus writes a request's status, and on terminal statuses the
// processed date, back to the store. Result text (if any) is truncated
// to ResultTextLimit runes.
func (c *Client) UpdateStatus(ctx context.Context, id string, status request.Status, result string) error {
	props := map[string]property{
		"Status": {Select: &selectValue{Name: string(status)}},
	}
	if status.Terminal() {
		props["Processed"] = property{Date: &dateValue{Start: time.Now().Format(time.RFC3339)}}
	}
	if result != "" {
		props["Result"] = property{RichText: []richText{{Text: textBody{Content: TruncateText(result, ResultTextLimit)}}}}
	}

	body := map[string]any{"properties": props}
	if err := c.do(ctx, http.MethodPatch, "/pages/"+id, body, nil); err != nil {
		return fmt.Errorf("update request %s: %w", id, err)
	}
	return nil
}

// CreatePage inserts a row into a database. Used by transaction sync
// and briefing publishing.
func (c *Client) CreatePage(ctx context.Context, databaseID string, props map[string]property) error {
	body := map[string]any{
		"parent":     map[string]string{"database_id": databaseID},
		"properties": props,
	}
	if err := c.do(ctx, http.MethodPost, "/pages", body, nil); err != nil {
		return fmt.Errorf("create page in %s: %w", databaseID, err)
	}
	return nil
}

// CreateRequestsDatabase creates the Automation Requests database under
// a parent page and returns its ID. The schema is the canonical
// Command/Arguments one.
func (c *Client) CreateRequestsDatabase(ctx context.Context, parentPageID string) (string, error) {
	body := map[string]any{
		"parent": map[string]string{"type": "page_id", "page_id": parentPageID},
		"title": []richText{
			{Type: "text", Text: textBody{Content: "Automation Requests"}},
		},
		"properties": map[string]any{
			"Name":      map[string]any{"title": struct{}{}},
			"Command":   map[string]any{"rich_text": struct{}{}},
			"Arguments": map[string]any{"rich_text": struct{}{}},
			"Status": map[string]any{
				"select": map[string]any{
					"options": []map[string]string{
						{"name": string(request.StatusQueued), "color": "yellow"},
						{"name": string(request.StatusRunning), "color": "blue"},
						{"name": string(request.StatusDone), "color": "green"},
						{"name": string(request.StatusFailed), "color": "red"},
					},
				},
			},
			"Processed": map[string]any{"date": struct{}{}},
			"Result":    map[string]any{"rich_text": struct{}{}},
		},
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/databases", body, &resp); err != nil {
		return "", fmt.Errorf("create requests database: %w", err)
	}
	return resp.ID, nil
}

// PublishBriefing creates a page under parentPageID carrying a rendered
// briefing: the title plus one paragraph block per line of body.
func (c *Client) PublishBriefing(ctx context.Context, parentPageID, title, body string) error {
	children := make([]map[string]any, 0)
	for _, line := range splitLines(body) {
		children = append(children, map[string]any{
			"object": "block",
			"type":   "paragraph",
			"paragraph": map[string]any{
				"rich_text": []richText{{Type: "text", Text: textBody{Content: TruncateText(line, ResultTextLimit)}}},
			},
		})
	}

	payload := map[string]any{
		"parent": map[string]string{"type": "page_id", "page_id": parentPageID},
		"properties": map[string]property{
			"title": {Title: []richText{{Type: "text", Text: textBody{Content: title}}}},
		},
		"children": children,
	}
	if err := c.do(ctx, http.MethodPost, "/pages", payload, nil); err != nil {
		return fmt.Errorf("publish briefing: %w", err)
	}
	return nil
}

// do executes one API call and decodes the response into out (which
// may be nil when the caller only cares about success).
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// readErrorMessage extracts the API's message field, falling back to
// the raw body.
func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return "(no body)"
	}
	var e struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &e) == nil && e.Message != "" {
		return e.Message
	}
	return string(data)
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
