package main

import (
	"bytes"
	"testing"

	"eco/pkg/probe"
)

func TestRenderStatus(t *testing.T) {
	checks := []probe.Check{
		{Name: "Downloads Organizer", Icon: "📥", Status: "watching"},
		{
			Name:    "Context Sync",
			Icon:    "🔄",
			Status:    "stale",
			Details:   []string{"Last sync: 2 days ago"},
			Attention: []string{"Last sync: 2 days ago"},
		},
	}
	summary := probe.Summarize(checks)

	var buf bytes.Buffer
	renderStatus(&buf, checks, summary)
	out := buf.String()

	if !containsAll(out, "Downloads Organizer: watching", "Context Sync: stale") {
		t.Errorf("expected one line per system, got:\n%s", out)
	}
	if !contains(out, "Last sync: 2 days ago") {
		t.Errorf("expected details indented under the check, got:\n%s", out)
	}
	if !contains(out, "1/2 healthy, 1 need attention, 0 not running") {
		t.Errorf("expected summary line, got:\n%s", out)
	}
	if !contains(out, "! 🔄 Context Sync: Last sync: 2 days ago") {
		t.Errorf("expected attention item, got:\n%s", out)
	}
}

func TestRenderStatus_AllHealthy(t *testing.T) {
	checks := []probe.Check{
		{Name: "Downloads Organizer", Icon: "📥", Status: "watching"},
		{Name: "Finance Sync", Icon: "💰", Status: "connected"},
	}
	summary := probe.Summarize(checks)

	var buf bytes.Buffer
	renderStatus(&buf, checks, summary)
	out := buf.String()

	if !contains(out, "2/2 healthy, 0 need attention, 0 not running") {
		t.Errorf("expected all-healthy summary, got:\n%s", out)
	}
	if contains(out, "!") {
		t.Errorf("unexpected attention items:\n%s", out)
	}
}
