// Package probe performs local health checks over the automation
// subsystems. Every probe is a pure local observation (file mtimes,
// directory listings, launchd state, cached JSON) and degrades to an
// unknown status on its own failures; a broken probe never takes its
// siblings down with it.
package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"eco/pkg/config"
)

// Staleness thresholds. An age exactly at the threshold is not yet
// stale.
const (
	financeSessionMaxAge = 7 * 24 * time.Hour
	contextSyncMaxAge    = 36 * time.Hour

	launchctlTimeout = 5 * time.Second
)

// launchd labels of the legacy tax organizer agents.
const (
	taxWatcherLabel  = "com.taxorganizer.watcher"
	taxScheduleLabel = "com.taxorganizer.schedule"
)

var mediaExtensions = []string{"jpg", "jpeg", "png", "heic", "mov", "mp4", "mp3", "m4a"}

// Check is the result of probing one subsystem. Status values are
// per-subsystem vocabularies, not a shared enum.
type Check struct {
	Name         string   `json:"name"`
	Icon         string   `json:"icon"`
	Status       string   `json:"status"`
	Details      []string `json:"details"`
	Attention    []string `json:"attention"`
	LastActivity string   `json:"last_activity,omitempty"`
	PendingPDFs  int      `json:"pending_pdfs,omitempty"`
	PendingMedia int      `json:"pending_media,omitempty"`
	NeedsReview  int      `json:"needs_review,omitempty"`
}

// Prober runs the subsystem checks.
type Prober struct {
	cfg       config.Config
	now       func() time.Time
	launchctl func(ctx context.Context) (string, error)
}

// Option configures a Prober.
type Option func(*Prober)

// WithClock replaces the wall clock, for staleness tests.
func WithClock(now func() time.Time) Option {
	return func(p *Prober) { p.now = now }
}

// WithLaunchctl replaces the launchctl invocation.
func WithLaunchctl(f func(ctx context.Context) (string, error)) Option {
	return func(p *Prober) { p.launchctl = f }
}

// New creates a Prober over the configured paths.
func New(cfg config.Config, opts ...Option) *Prober {
	p := &Prober{
		cfg:       cfg,
		now:       time.Now,
		launchctl: runLaunchctlList,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func runLaunchctlList(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, launchctlTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, "launchctl", "list").Output()
	if err != nil {
		return "", fmt.Errorf("launchctl list: %w", err)
	}
	return string(out), nil
}

// All runs every probe. A probe failure degrades that one check, never
// the slice.
func (p *Prober) All(ctx context.Context) []Check {
	return []Check{
		p.DownloadsOrganizer(ctx),
		p.LegacyTaxWatcher(ctx),
		p.FinanceSession(ctx),
		p.ContextSync(ctx),
		p.TaxOCR(ctx),
	}
}

// DownloadsOrganizer checks the organizer repo and counts files still
// waiting in the downloads directory.
func (p *Prober) DownloadsOrganizer(_ context.Context) Check {
	check := Check{Name: "Downloads Organizer", Icon: "📥", Status: "unknown"}

	repo := p.cfg.Repos.DownloadsOrganizer
	if _, err := os.Stat(repo); err != nil {
		check.Status = "not_installed"
		check.Details = append(check.Details, "Repository not found")
		return check
	}

	check.Status = "installed"
	check.Details = append(check.Details, "Location: "+repo)

	check.PendingPDFs = countFilesByExt(p.cfg.DownloadsDir, []string{"pdf"})
	check.PendingMedia = countFilesByExt(p.cfg.DownloadsDir, mediaExtensions)
	if check.PendingPDFs > 0 {
		check.Attention = append(check.Attention, fmt.Sprintf("%d PDFs pending", check.PendingPDFs))
	}
	if check.PendingMedia > 0 {
		check.Attention = append(check.Attention, fmt.Sprintf("%d media files pending", check.PendingMedia))
	}
	return check
}

// LegacyTaxWatcher checks the launchd agents of the old tax organizer.
func (p *Prober) LegacyTaxWatcher(ctx context.Context) Check {
	check := Check{Name: "Tax PDF Organizer (Legacy)", Icon: "📁", Status: "unknown"}

	out, err := p.launchctl(ctx)
	if err != nil {
		check.Details = append(check.Details, "launchctl unavailable: "+err.Error())
		return check
	}

	watcherLoaded, watcherPID := launchAgentState(out, taxWatcherLabel)
	scheduleLoaded, _ := launchAgentState(out, taxScheduleLabel)

	switch {
	case watcherLoaded && watcherPID > 0:
		check.Status = "watching"
		check.Details = append(check.Details, fmt.Sprintf("Watcher running (PID %d)", watcherPID))
	case watcherLoaded:
		check.Status = "loaded"
		check.Details = append(check.Details, "Watcher loaded but not running")
	default:
		check.Status = "not_running"
		check.Details = append(check.Details, "Watcher not loaded")
	}
	if scheduleLoaded {
		check.Details = append(check.Details, "Scheduler loaded")
	}
	return check
}

// FinanceSession checks the financial aggregator session file. A
// session older than seven days needs a refresh.
func (p *Prober) FinanceSession(_ context.Context) Check {
	check := Check{Name: "Monarch Money", Icon: "💰", Status: "unknown"}

	info, err := os.Stat(p.cfg.Monarch.SessionPath)
	if err != nil {
		check.Status = "not_authenticated"
		check.Attention = append(check.Attention, "Run eco config to authenticate")
		return check
	}

	mtime := info.ModTime()
	age := p.now().Sub(mtime)
	check.LastActivity = mtime.Format(time.RFC3339)
	check.Details = append(check.Details, "Session: "+formatTimeAgo(age))

	if age > financeSessionMaxAge {
		check.Status = "stale"
		check.Attention = append(check.Attention, "Session may need refresh (>7 days old)")
	} else {
		check.Status = "connected"
	}
	return check
}

// ContextSync checks the context-sync changelog mtime.
func (p *Prober) ContextSync(_ context.Context) Check {
	check := Check{Name: "Context Sync", Icon: "🔄", Status: "unknown"}

	repo := p.cfg.Repos.ContextSync
	if _, err := os.Stat(repo); err != nil {
		check.Status = "not_installed"
		check.Details = append(check.Details, "Repository not found")
		return check
	}

	changelog := filepath.Join(repo, "docs", "context", "CHANGELOG.md")
	info, err := os.Stat(changelog)
	if err != nil {
		check.Status = "not_configured"
		check.Details = append(check.Details, "CHANGELOG.md not found")
		return check
	}

	mtime := info.ModTime()
	age := p.now().Sub(mtime)
	check.LastActivity = mtime.Format(time.RFC3339)
	check.Details = append(check.Details, "Last sync: "+formatTimeAgo(age))

	if age > contextSyncMaxAge {
		check.Status = "stale"
		check.Attention = append(check.Attention, "Sync may be stale (>36 hours)")
	} else {
		check.Status = "synced"
	}
	return check
}

// checkpointFile is the OCR pipeline's processing checkpoint.
type checkpointFile struct {
	Results []struct {
		NeedsReview bool `json:"needs_review"`
	} `json:"results"`
}

// TaxOCR checks the OCR pipeline checkpoint for documents flagged for
// review. An unreadable checkpoint is ignored, not an error.
func (p *Prober) TaxOCR(_ context.Context) Check {
	check := Check{Name: "Tax Rules (OCR)", Icon: "📄", Status: "idle"}

	repo := p.cfg.Repos.TaxRules
	if _, err := os.Stat(repo); err != nil {
		check.Status = "not_installed"
		check.Details = append(check.Details, "Repository not found")
		return check
	}

	checkpoint := filepath.Join(repo, "tax-years", "data", "processing_checkpoint.json")
	info, err := os.Stat(checkpoint)
	if err != nil {
		return check
	}
	check.LastActivity = info.ModTime().Format(time.RFC3339)
	check.Details = append(check.Details, "Last run: "+formatTimeAgo(p.now().Sub(info.ModTime())))

	data, err := os.ReadFile(checkpoint) //nolint:gosec // path built from configured repo root
	if err != nil {
		return check
	}
	var cp checkpointFile
	if err := json.Unmarshal(data, &cp); err != nil {
		return check
	}

	needsReview := 0
	for _, r := range cp.Results {
		if r.NeedsReview {
			needsReview++
		}
	}
	check.NeedsReview = needsReview
	if needsReview > 0 {
		check.Attention = append(check.Attention, fmt.Sprintf("%d documents need review", needsReview))
	}
	return check
}

// launchAgentState scans launchctl list output for a label and returns
// whether it is loaded and its PID (0 when loaded without a process).
func launchAgentState(out, label string) (loaded bool, pid int) {
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, label) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if n, err := strconv.Atoi(fields[0]); err == nil {
			return true, n
		}
		return true, 0
	}
	return false, 0
}

// countFilesByExt counts regular files in dir whose extension matches
// one of exts, case-insensitively. Errors count as zero.
func countFilesByExt(dir string, exts []string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(entry.Name())), ".")
		for _, want := range exts {
			if ext == want {
				count++
				break
			}
		}
	}
	return count
}

// formatTimeAgo renders an age as "X minutes/hours/days ago".
func formatTimeAgo(age time.Duration) string {
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return plural(int(age.Minutes()), "minute")
	case age < 24*time.Hour:
		return plural(int(age.Hours()), "hour")
	default:
		return plural(int(age.Hours()/24), "day")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
