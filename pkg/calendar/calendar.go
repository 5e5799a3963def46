// Package calendar shells out to a local calendar CLI (icalBuddy) for
// the daily briefing. The tool being absent, the query timing out, and
// a day with no events are three distinct, non-fatal outcomes.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

const (
	queryTimeout = 10 * time.Second

	maxEvents = 10
)

// installHint is shown when the calendar tool is not installed.
const installHint = "Install icalBuddy for calendar integration: brew install ical-buddy"

// Event is one calendar entry.
type Event struct {
	Title string `json:"title"`
	Time  string `json:"time,omitempty"`
}

// Events is a day's worth of calendar data.
type Events struct {
	Available bool    `json:"available"`
	Count     int     `json:"event_count"`
	Events    []Event `json:"events"`
	Hint      string  `json:"hint,omitempty"`
}

// Provider fetches upcoming events.
type Provider interface {
	Today(ctx context.Context) (Events, error)
}

// CLIProvider runs the configured calendar binary.
type CLIProvider struct {
	tool   string
	look   func(string) (string, error)
	run    func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Option configures a CLIProvider.
type Option func(*CLIProvider)

// WithLookPath replaces binary resolution, for tests.
func WithLookPath(f func(string) (string, error)) Option {
	return func(p *CLIProvider) { p.look = f }
}

// WithRun replaces subprocess execution, for tests.
func WithRun(f func(ctx context.Context, name string, args ...string) ([]byte, error)) Option {
	return func(p *CLIProvider) { p.run = f }
}

// NewCLIProvider creates a provider around the named tool (usually
// icalBuddy).
func NewCLIProvider(tool string, opts ...Option) *CLIProvider {
	p := &CLIProvider{
		tool: tool,
		look: exec.LookPath,
		run:  runCommand,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output() //nolint:gosec // tool name comes from config
}

// Today returns today's unfinished events. Tool absence is reported
// through Available=false plus a hint; only timeouts and unexpected
// failures are errors.
func (p *CLIProvider) Today(ctx context.Context) (Events, error) {
	if _, err := p.look(p.tool); err != nil {
		return Events{Available: false, Hint: installHint}, nil
	}

	runCtx, cancelRun := context.WithTimeout(ctx, queryTimeout)
	defer cancelRun()

	out, err := p.run(runCtx, p.tool, "-nc", "-nrd", "-n", "eventsToday+0")
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return Events{}, fmt.Errorf("calendar query timed out after %s", queryTimeout)
	}
	if ctx.Err() != nil {
		// Parent cancellation is not an empty calendar.
		return Events{}, fmt.Errorf("calendar query: %w", ctx.Err())
	}
	if err != nil {
		// The tool exits non-zero on empty calendars.
		return Events{Available: true, Count: 0, Events: []Event{}}, nil
	}

	events := parseOutput(string(out))
	if len(events) > maxEvents {
		events = events[:maxEvents]
	}
	return Events{Available: true, Count: len(events), Events: events}, nil
}
