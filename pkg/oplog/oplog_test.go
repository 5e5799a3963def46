package oplog

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAppendAndRecent(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)
	ctx := context.Background()

	recs := []Record{
		{Tool: "organize", Parameters: `{"file_type":"pdf"}`, Result: "3 pdfs moved", Success: true, DurationMS: 1200},
		{Tool: "extract", Result: "ocr failed", Success: false, DurationMS: 40},
	}
	for _, rec := range recs {
		if err := store.Append(ctx, rec); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := store.Recent(ctx, QueryOpts{Limit: 10})
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	for _, rec := range got {
		if rec.ID == "" {
			t.Error("record ID should be generated")
		}
		if rec.Timestamp.IsZero() {
			t.Error("record timestamp should be set")
		}
	}
}

func TestRowCountIncreasesByOnePerAppend(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		success := i%2 == 0
		if err := store.Append(ctx, Record{Tool: "sync", Success: success}); err != nil {
			t.Fatalf("Append: %v", err)
		}
		n, err := store.Count(ctx)
		if err != nil {
			t.Fatalf("Count: %v", err)
		}
		if n != i {
			t.Fatalf("after %d appends Count = %d", i, n)
		}
	}
}

func TestRecentFiltersByTool(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)
	ctx := context.Background()

	for _, tool := range []string{"organize", "sync", "organize"} {
		if err := store.Append(ctx, Record{Tool: tool, Success: true}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.Recent(ctx, QueryOpts{Tool: "organize"})
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d organize records, want 2", len(got))
	}
	for _, rec := range got {
		if rec.Tool != "organize" {
			t.Errorf("unexpected tool %q", rec.Tool)
		}
	}
}

func TestRecentOrdersNewestFirstAndLimits(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		rec := Record{Tool: "reconcile", Timestamp: base.Add(time.Duration(i) * time.Minute), Success: true}
		if err := store.Append(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.Recent(ctx, QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if !got[0].Timestamp.After(got[1].Timestamp) {
		t.Errorf("records not newest-first: %v then %v", got[0].Timestamp, got[1].Timestamp)
	}
}

func TestAppendTruncatesLongResults(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)
	ctx := context.Background()

	long := strings.Repeat("المستند", 400) // 2800 runes, multi-byte
	if err := store.Append(ctx, Record{Tool: "extract", Result: long, Success: true}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := store.Recent(ctx, QueryOpts{Limit: 1})
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	runes := []rune(got[0].Result)
	if len(runes) != resultLimit {
		t.Errorf("stored result has %d runes, want %d", len(runes), resultLimit)
	}
	if !strings.HasPrefix(long, got[0].Result) {
		t.Error("truncated result is not a prefix of the original")
	}
}
