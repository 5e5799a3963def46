// Package briefing assembles the daily briefing from subsystem
// probes, the request queue, the financial API, and the calendar CLI.
// Every section degrades independently: a failing source puts an
// error into its own section and the rest of the briefing still
// renders.
package briefing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eco/pkg/calendar"
	"eco/pkg/monarch"
	"eco/pkg/probe"
	"eco/pkg/request"
)

const (
	maxQueuedShown = 5
)

// Statuses the briefing counts as healthy. Unlike the status view,
// idle counts: an OCR pipeline with nothing to do is fine.
var briefingHealthy = map[string]bool{
	"watching":  true,
	"connected": true,
	"synced":    true,
	"installed": true,
	"idle":      true,
}

// Ecosystem summarizes the subsystem probes.
type Ecosystem struct {
	Healthy         int      `json:"healthy"`
	AttentionNeeded int      `json:"attention_needed"`
	AttentionItems  []string `json:"attention_items"`
	Error           string   `json:"error,omitempty"`
}

// Documents counts files waiting for organization or review.
type Documents struct {
	PendingPDFs  int    `json:"pending_pdfs"`
	PendingMedia int    `json:"pending_media"`
	NeedsReview  int    `json:"needs_review"`
	TotalPending int    `json:"total_pending"`
	Error        string `json:"error,omitempty"`
}

// QueuedRequest is one pending automation request, trimmed for the
// briefing.
type QueuedRequest struct {
	Name      string `json:"name"`
	Command   string `json:"command"`
	Arguments string `json:"arguments"`
	Created   string `json:"created"`
}

// Automation summarizes the request queue.
type Automation struct {
	PendingCount int             `json:"pending_count"`
	Requests     []QueuedRequest `json:"requests"`
	Error        string          `json:"error,omitempty"`
}

// Financial wraps the aggregator snapshot.
type Financial struct {
	monarch.Snapshot
	Error string `json:"error,omitempty"`
	Hint  string `json:"hint,omitempty"`
}

// Calendar wraps the day's events.
type Calendar struct {
	calendar.Events
	Error string `json:"error,omitempty"`
}

// Briefing is the assembled daily briefing.
type Briefing struct {
	GeneratedAt time.Time  `json:"generated_at"`
	Greeting    string     `json:"greeting"`
	Date        string     `json:"date"`
	Ecosystem   Ecosystem  `json:"ecosystem"`
	Documents   Documents  `json:"documents"`
	Automation  Automation `json:"automation"`
	Financial   *Financial `json:"financial,omitempty"`
	Calendar    *Calendar  `json:"calendar,omitempty"`
	Summary     string     `json:"summary"`
}

// Probes is the slice of pkg/probe the generator needs.
type Probes interface {
	All(ctx context.Context) []probe.Check
}

// RequestLister fetches queued automation requests.
type RequestLister interface {
	PendingRequests(ctx context.Context) ([]request.Request, error)
}

// FinancialProvider produces the financial snapshot.
type FinancialProvider interface {
	Snapshot(ctx context.Context) (monarch.Snapshot, error)
}

// Options select optional briefing sections.
type Options struct {
	IncludeFinancial bool
	IncludeCalendar  bool
}

// Generator assembles briefings from injected sources.
type Generator struct {
	probes    Probes
	lister    RequestLister
	financial FinancialProvider
	calendar  calendar.Provider
	now       func() time.Time
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithClock replaces the wall clock, for deterministic output.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) { g.now = now }
}

// NewGenerator creates a Generator. financial and cal may be nil when
// those sections are never requested.
func NewGenerator(probes Probes, lister RequestLister, financial FinancialProvider, cal calendar.Provider, opts ...GeneratorOption) *Generator {
	g := &Generator{
		probes:    probes,
		lister:    lister,
		financial: financial,
		calendar:  cal,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate assembles a briefing. It never returns an error; failed
// sections carry their error inline.
func (g *Generator) Generate(ctx context.Context, opts Options) Briefing {
	now := g.now()
	b := Briefing{
		GeneratedAt: now,
		Greeting:    greeting(now),
		Date:        now.Format("Monday, January 02, 2006"),
	}

	checks := g.probes.All(ctx)
	b.Ecosystem = ecosystemSection(checks)
	b.Documents = documentsSection(checks)
	b.Automation = g.automationSection(ctx)

	if opts.IncludeFinancial {
		b.Financial = g.financialSection(ctx)
	}
	if opts.IncludeCalendar {
		b.Calendar = g.calendarSection(ctx)
	}

	b.Summary = summarize(b)
	return b
}

func ecosystemSection(checks []probe.Check) Ecosystem {
	eco := Ecosystem{AttentionItems: []string{}}
	for _, check := range checks {
		if briefingHealthy[check.Status] {
			eco.Healthy++
		} else {
			eco.AttentionNeeded++
		}
		for _, item := range check.Attention {
			eco.AttentionItems = append(eco.AttentionItems, check.Icon+" "+check.Name+": "+item)
		}
	}
	return eco
}

func documentsSection(checks []probe.Check) Documents {
	var docs Documents
	for _, check := range checks {
		docs.PendingPDFs += check.PendingPDFs
		docs.PendingMedia += check.PendingMedia
		docs.NeedsReview += check.NeedsReview
	}
	docs.TotalPending = docs.PendingPDFs + docs.PendingMedia + docs.NeedsReview
	return docs
}

func (g *Generator) automationSection(ctx context.Context) Automation {
	auto := Automation{Requests: []QueuedRequest{}}
	if g.lister == nil {
		auto.Error = "request store not configured"
		return auto
	}

	reqs, err := g.lister.PendingRequests(ctx)
	if err != nil {
		auto.Error = err.Error()
		return auto
	}

	auto.PendingCount = len(reqs)
	for _, r := range reqs {
		if len(auto.Requests) == maxQueuedShown {
			break
		}
		created := ""
		if !r.Created.IsZero() {
			created = r.Created.Format(time.RFC3339)
		}
		auto.Requests = append(auto.Requests, QueuedRequest{
			Name:      r.Name,
			Command:   string(r.Command),
			Arguments: r.Arguments,
			Created:   created,
		})
	}
	return auto
}

func (g *Generator) financialSection(ctx context.Context) *Financial {
	if g.financial == nil {
		return &Financial{Error: "financial provider not configured"}
	}
	snap, err := g.financial.Snapshot(ctx)
	if err != nil {
		fin := &Financial{Error: err.Error()}
		if strings.Contains(err.Error(), "not authenticated") {
			fin.Hint = "Set monarch.token in config.toml"
		}
		return fin
	}
	return &Financial{Snapshot: snap}
}

func (g *Generator) calendarSection(ctx context.Context) *Calendar {
	if g.calendar == nil {
		return &Calendar{Error: "calendar provider not configured"}
	}
	events, err := g.calendar.Today(ctx)
	if err != nil {
		return &Calendar{Error: err.Error()}
	}
	return &Calendar{Events: events}
}

// summarize builds the one-line summary. Clause rules are exact: the
// ecosystem clause is skipped when that section errored, counts of
// zero suppress their clauses, and a briefing with no clauses at all
// is "All clear!".
func summarize(b Briefing) string {
	var parts []string

	if b.Ecosystem.Error == "" {
		if b.Ecosystem.AttentionNeeded > 0 {
			parts = append(parts, fmt.Sprintf("%d system(s) need attention", b.Ecosystem.AttentionNeeded))
		} else {
			parts = append(parts, fmt.Sprintf("All %d systems healthy", b.Ecosystem.Healthy))
		}
	}
	if b.Documents.Error == "" && b.Documents.TotalPending > 0 {
		parts = append(parts, fmt.Sprintf("%d document(s) pending", b.Documents.TotalPending))
	}
	if b.Automation.Error == "" && b.Automation.PendingCount > 0 {
		parts = append(parts, fmt.Sprintf("%d automation request(s) queued", b.Automation.PendingCount))
	}
	if b.Calendar != nil && b.Calendar.Error == "" && b.Calendar.Available && b.Calendar.Count > 0 {
		parts = append(parts, fmt.Sprintf("%d event(s) today", b.Calendar.Count))
	}

	if len(parts) == 0 {
		return "All clear!"
	}
	return strings.Join(parts, ". ") + "."
}

func greeting(now time.Time) string {
	switch hour := now.Hour(); {
	case hour < 12:
		return "Good morning"
	case hour < 17:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}
