package workspace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eco/pkg/request"
)

func testPage(id, name, command, args, status, created string) map[string]any {
	return map[string]any{
		"id":  id,
		"url": "https://workspace.example/" + id,
		"properties": map[string]any{
			"Name": map[string]any{
				"title": []map[string]any{{"text": map[string]any{"content": name}}},
			},
			"Command": map[string]any{
				"rich_text": []map[string]any{{"text": map[string]any{"content": command}}},
			},
			"Arguments": map[string]any{
				"rich_text": []map[string]any{{"text": map[string]any{"content": args}}},
			},
			"Status": map[string]any{
				"select": map[string]any{"name": status},
			},
			"Created": map[string]any{
				"created_time": created,
			},
		},
	}
}

func TestPendingRequestsFollowsPagination(t *testing.T) {
	t.Parallel()

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/databases/db-1/query" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}

		var body struct {
			Filter      map[string]any `json:"filter"`
			StartCursor string         `json:"start_cursor"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Filter["property"] != "Status" {
			t.Errorf("filter property = %v", body.Filter["property"])
		}

		w.Header().Set("Content-Type", "application/json")
		if body.StartCursor == "" {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"results":     []any{testPage("p1", "first", "organize", "tax", "queued", "2026-03-01T08:00:00Z")},
				"has_more":    true,
				"next_cursor": "cur-2",
			})
			return
		}
		if body.StartCursor != "cur-2" {
			t.Errorf("start_cursor = %q", body.StartCursor)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results":  []any{testPage("p2", "second", "SYNC ", "", "queued", "2026-03-01T09:00:00Z")},
			"has_more": false,
		})
	}))
	defer srv.Close()

	client := NewClient("tok", "db-1", WithBaseURL(srv.URL))
	got, err := client.PendingRequests(context.Background())
	if err != nil {
		t.Fatalf("PendingRequests: %v", err)
	}
	if calls != 2 {
		t.Errorf("made %d API calls, want 2", calls)
	}
	if len(got) != 2 {
		t.Fatalf("got %d requests, want 2", len(got))
	}
	if got[0].ID != "p1" || got[0].Command != request.CmdOrganize || got[0].Arguments != "tax" {
		t.Errorf("first request = %+v", got[0])
	}
	if got[1].Command != request.CmdSync {
		t.Errorf("command should be normalized, got %q", got[1].Command)
	}
}

func TestPendingRequestsSkipsUnparseablePages(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []any{
				testPage("good", "ok", "extract", "", "queued", "2026-03-01T08:00:00Z"),
				testPage("bad", "broken", "extract", "", "mystery", "2026-03-01T08:00:00Z"),
			},
			"has_more": false,
		})
	}))
	defer srv.Close()

	client := NewClient("tok", "db-1", WithBaseURL(srv.URL))
	got, err := client.PendingRequests(context.Background())
	if err != nil {
		t.Fatalf("PendingRequests: %v", err)
	}
	if len(got) != 1 || got[0].ID != "good" {
		t.Fatalf("got %+v, want only the parseable page", got)
	}
}

func TestUpdateStatusTerminalWritesProcessedAndTruncates(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/pages/p1" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var body struct {
			Properties map[string]any `json:"properties"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		captured = body.Properties
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{}"))
	}))
	defer srv.Close()

	long := strings.Repeat("é", 2500)
	client := NewClient("tok", "db-1", WithBaseURL(srv.URL))
	if err := client.UpdateStatus(context.Background(), "p1", request.StatusDone, long); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	if _, ok := captured["Processed"]; !ok {
		t.Error("terminal status should set Processed date")
	}
	sel := captured["Status"].(map[string]any)["select"].(map[string]any)
	if sel["name"] != "done" {
		t.Errorf("status select = %v", sel["name"])
	}
	result := captured["Result"].(map[string]any)["rich_text"].([]any)[0].(map[string]any)
	content := result["text"].(map[string]any)["content"].(string)
	if n := len([]rune(content)); n != ResultTextLimit {
		t.Errorf("result content is %d runes, want %d", n, ResultTextLimit)
	}
	if !strings.HasPrefix(long, content) {
		t.Error("truncated content is not a prefix of the original")
	}
}

func TestUpdateStatusRunningOmitsProcessed(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Properties map[string]any `json:"properties"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		captured = body.Properties
		_, _ = w.Write([]byte("{}"))
	}))
	defer srv.Close()

	client := NewClient("tok", "db-1", WithBaseURL(srv.URL))
	if err := client.UpdateStatus(context.Background(), "p1", request.StatusRunning, ""); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if _, ok := captured["Processed"]; ok {
		t.Error("running status must not set Processed")
	}
	if _, ok := captured["Result"]; ok {
		t.Error("empty result must not write a Result property")
	}
}

func TestAPIErrorSurfacesStatusAndMessage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"API token is invalid."}`))
	}))
	defer srv.Close()

	client := NewClient("bad", "db-1", WithBaseURL(srv.URL))
	_, err := client.PendingRequests(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "401") || !strings.Contains(err.Error(), "API token is invalid.") {
		t.Errorf("error = %v", err)
	}
}

func TestCreateRequestsDatabase(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/databases" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		props := body["properties"].(map[string]any)
		for _, name := range []string{"Name", "Command", "Arguments", "Status", "Processed", "Result"} {
			if _, ok := props[name]; !ok {
				t.Errorf("schema missing property %s", name)
			}
		}
		_, _ = w.Write([]byte(`{"id":"new-db"}`))
	}))
	defer srv.Close()

	client := NewClient("tok", "", WithBaseURL(srv.URL))
	id, err := client.CreateRequestsDatabase(context.Background(), "parent-page")
	if err != nil {
		t.Fatalf("CreateRequestsDatabase: %v", err)
	}
	if id != "new-db" {
		t.Errorf("id = %q", id)
	}
}
