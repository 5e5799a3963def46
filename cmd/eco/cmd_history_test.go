package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"eco/pkg/oplog"
)

func seedOplog(t *testing.T, records ...oplog.Record) {
	t.Helper()

	home := t.TempDir()
	t.Setenv("ECO_HOME", home)
	t.Setenv("ECO_DB_PATH", filepath.Join(home, "history.db"))

	ops, err := oplog.Open(filepath.Join(home, "history.db"))
	if err != nil {
		t.Fatalf("open oplog: %v", err)
	}
	defer ops.Close()

	for _, rec := range records {
		if err := ops.Append(context.Background(), rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
}

func TestHistoryCmd_Empty(t *testing.T) {
	seedOplog(t)

	out, _, err := executeCommand("history")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !contains(out, "no operations recorded") {
		t.Errorf("expected empty marker, got: %q", out)
	}
}

func TestHistoryCmd_ShowsRecords(t *testing.T) {
	seedOplog(t,
		oplog.Record{
			Timestamp:  time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
			Tool:       "organize_downloads",
			Result:     "Organized files. Remaining: 0 PDFs, 0 media",
			Success:    true,
			DurationMS: 1200,
		},
		oplog.Record{
			Timestamp:  time.Date(2026, 3, 2, 9, 5, 0, 0, time.UTC),
			Tool:       "sync_context",
			Result:     "sync.py exited 1",
			Success:    false,
			DurationMS: 300,
		},
	)

	out, _, err := executeCommand("history")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !containsAll(out, "organize_downloads", "Organized files", "ok") {
		t.Errorf("expected successful row, got:\n%s", out)
	}
	if !containsAll(out, "sync_context", "FAIL") {
		t.Errorf("expected failed row, got:\n%s", out)
	}
}

func TestHistoryCmd_ToolFilter(t *testing.T) {
	seedOplog(t,
		oplog.Record{Timestamp: time.Now().UTC(), Tool: "organize_downloads", Result: "r1", Success: true},
		oplog.Record{Timestamp: time.Now().UTC(), Tool: "sync_context", Result: "r2", Success: true},
	)

	out, _, err := executeCommand("history", "--tool", "sync_context")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !contains(out, "sync_context") {
		t.Errorf("expected filtered tool in output, got:\n%s", out)
	}
	if contains(out, "organize_downloads") {
		t.Errorf("filter leaked other tools:\n%s", out)
	}
}

func TestHistoryCmd_JSON(t *testing.T) {
	seedOplog(t,
		oplog.Record{Timestamp: time.Now().UTC(), Tool: "run_reconciliation", Result: "All systems healthy. No issues found.", Success: true},
	)

	out, _, err := executeCommand("history", "--json")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !containsAll(out, `"operations"`, `"count": 1`, "run_reconciliation") {
		t.Errorf("expected JSON payload, got:\n%s", out)
	}
}
