// Package dispatch maps automation requests onto local subprocesses
// and records every execution in the operation log. Each command in
// the dispatch table owns its subprocess invocation, timeout, and
// result-message format; the dispatcher itself never returns an error
// to the caller, it folds failures into the Result.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"eco/pkg/config"
	"eco/pkg/oplog"
	"eco/pkg/request"
)

// Subprocess deadlines. Media organizing moves large files, so it
// gets the long one.
const (
	organizePDFTimeout   = 300 * time.Second
	organizeMediaTimeout = 600 * time.Second
	extractTimeout       = 300 * time.Second
	syncTimeout          = 300 * time.Second
)

var mediaExtensions = []string{"jpg", "jpeg", "png", "heic", "mov", "mp4", "mp3"}

// Result is the outcome of one dispatched request.
type Result struct {
	Success bool
	Message string
}

// Reconciler surfaces cross-subsystem issues for the reconcile
// command. The probe-backed implementation lives with the CLI wiring.
type Reconciler interface {
	Issues(ctx context.Context) ([]string, error)
}

// BriefingPublisher generates and publishes a daily briefing, used by
// the custom daily-briefing request.
type BriefingPublisher interface {
	Publish(ctx context.Context) (summary string, err error)
}

// Dispatcher executes automation requests.
type Dispatcher struct {
	cfg    config.Config
	runner Runner
	ops    *oplog.Store
	recon  Reconciler
	brief  BriefingPublisher
	logger *log.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithReconciler wires the reconcile command.
func WithReconciler(r Reconciler) Option {
	return func(d *Dispatcher) { d.recon = r }
}

// WithBriefingPublisher wires the custom daily-briefing command.
func WithBriefingPublisher(b BriefingPublisher) Option {
	return func(d *Dispatcher) { d.brief = b }
}

// WithLogger replaces the default stderr logger.
func WithLogger(l *log.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// New creates a Dispatcher. ops may be nil, in which case executions
// are not recorded.
func New(cfg config.Config, runner Runner, ops *oplog.Store, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		cfg:    cfg,
		runner: runner,
		ops:    ops,
		logger: log.New(os.Stderr, "dispatch: ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Execute runs one request through the dispatch table and appends a
// single operation-log row. It never returns an error; failures are
// reported through Result.
func (d *Dispatcher) Execute(ctx context.Context, req request.Request) Result {
	start := time.Now()
	d.logger.Printf("executing %q (command=%s, args=%q)", req.Name, req.Command, req.Arguments)

	var res Result
	switch req.Command {
	case request.CmdOrganize:
		res = d.organize(ctx, req.Arguments)
	case request.CmdExtract:
		res = d.extract(ctx)
	case request.CmdSync:
		res = d.sync(ctx)
	case request.CmdReconcile:
		res = d.reconcile(ctx)
	case request.CmdCustom, "":
		res = d.custom(ctx, req.Name, req.Arguments)
	default:
		res = Result{Success: false, Message: fmt.Sprintf("unknown command: %s", req.Command)}
	}

	d.record(ctx, req, res, time.Since(start))
	return res
}

func (d *Dispatcher) record(ctx context.Context, req request.Request, res Result, elapsed time.Duration) {
	if d.ops == nil {
		return
	}
	params, _ := json.Marshal(map[string]string{
		"name":      req.Name,
		"command":   string(req.Command),
		"arguments": req.Arguments,
	})
	rec := oplog.Record{
		Tool:       toolName(req.Command),
		Parameters: string(params),
		Result:     res.Message,
		Success:    res.Success,
		DurationMS: elapsed.Milliseconds(),
	}
	if err := d.ops.Append(ctx, rec); err != nil {
		d.logger.Printf("operation log append failed: %v", err)
	}
}

func toolName(cmd request.Command) string {
	switch cmd {
	case request.CmdOrganize:
		return "organize_downloads"
	case request.CmdExtract:
		return "extract_tax_documents"
	case request.CmdSync:
		return "sync_context"
	case request.CmdReconcile:
		return "run_reconciliation"
	default:
		return "custom_request"
	}
}

// organize runs the downloads organizer. The argument selects file
// types: tax means PDFs only, media means media only, anything else
// runs both.
func (d *Dispatcher) organize(ctx context.Context, target string) Result {
	repo := d.cfg.Repos.DownloadsOrganizer
	if _, err := os.Stat(repo); err != nil {
		return Result{Success: false, Message: fmt.Sprintf("Error: downloads-organizer not found at %s", repo)}
	}

	runPDF := target != "media"
	runMedia := target != "tax"

	workdir := filepath.Join(repo, "src")
	if runPDF {
		if _, stderr, err := d.runner.Run(ctx, "python3", []string{"-m", "downloads_organizer", "pdf", "--yes"}, workdir, organizePDFTimeout); err != nil {
			return Result{Success: false, Message: organizeError(err, stderr)}
		}
	}
	if runMedia {
		if _, stderr, err := d.runner.Run(ctx, "python3", []string{"-m", "downloads_organizer", "media", "--yes"}, workdir, organizeMediaTimeout); err != nil {
			return Result{Success: false, Message: organizeError(err, stderr)}
		}
	}

	pdfs := countFilesByExt(d.cfg.DownloadsDir, []string{"pdf"})
	media := countFilesByExt(d.cfg.DownloadsDir, mediaExtensions)
	return Result{
		Success: true,
		Message: fmt.Sprintf("Organized files. Remaining: %d PDFs, %d media", pdfs, media),
	}
}

func organizeError(err error, stderr string) string {
	if stderr != "" {
		return fmt.Sprintf("Error: %v: %s", err, strings.TrimSpace(stderr))
	}
	return fmt.Sprintf("Error: %v", err)
}

// extractOutput is the JSON the OCR extractor prints on stdout.
type extractOutput struct {
	Success     bool   `json:"success"`
	Processed   int    `json:"processed"`
	NeedsReview int    `json:"needs_review"`
	Error       string `json:"error"`
}

func (d *Dispatcher) extract(ctx context.Context) Result {
	repo := d.cfg.Repos.TaxRules
	script, err := findScript(repo, "extract.py")
	if err != nil {
		return Result{Success: false, Message: "Error: " + err.Error()}
	}

	stdout, stderr, err := d.runner.Run(ctx, "python3", []string{script, "--json"}, repo, extractTimeout)
	if err != nil {
		return Result{Success: false, Message: organizeError(err, stderr)}
	}

	var out extractOutput
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		return Result{Success: false, Message: "Error: unexpected extractor output"}
	}
	if !out.Success {
		msg := out.Error
		if msg == "" {
			msg = "Extraction failed"
		}
		return Result{Success: false, Message: "Error: " + msg}
	}
	return Result{
		Success: true,
		Message: fmt.Sprintf("Extracted %d documents. %d need review.", out.Processed, out.NeedsReview),
	}
}

func (d *Dispatcher) sync(ctx context.Context) Result {
	repo := d.cfg.Repos.ContextSync
	script, err := findScript(repo, "sync.py")
	if err != nil {
		return Result{Success: false, Message: "Error: " + err.Error()}
	}

	if _, stderr, err := d.runner.Run(ctx, "python3", []string{script}, repo, syncTimeout); err != nil {
		return Result{Success: false, Message: organizeError(err, stderr)}
	}

	lastSync := "unknown"
	if info, err := os.Stat(filepath.Join(repo, "docs", "context", "CHANGELOG.md")); err == nil {
		lastSync = info.ModTime().Format(time.RFC3339)
	}
	return Result{Success: true, Message: fmt.Sprintf("Context synced. Last sync: %s", lastSync)}
}

func (d *Dispatcher) reconcile(ctx context.Context) Result {
	if d.recon == nil {
		return Result{Success: false, Message: "Error: reconciliation not configured"}
	}
	issues, err := d.recon.Issues(ctx)
	if err != nil {
		return Result{Success: false, Message: fmt.Sprintf("Error: %v", err)}
	}
	if len(issues) == 0 {
		return Result{Success: true, Message: "All systems healthy. No issues found."}
	}
	shown := issues
	if len(shown) > 3 {
		shown = shown[:3]
	}
	return Result{
		Success: true,
		Message: fmt.Sprintf("Found %d issues: %s", len(issues), strings.Join(shown, "; ")),
	}
}

// custom handles free-form requests. daily-briefing is the one known
// custom command; everything else is logged for manual handling and
// reported as success so it does not loop through the queue as failed.
func (d *Dispatcher) custom(ctx context.Context, name, arguments string) Result {
	if strings.ToLower(strings.TrimSpace(arguments)) == "daily-briefing" {
		if d.brief == nil {
			return Result{Success: false, Message: "Error: briefing publisher not configured"}
		}
		summary, err := d.brief.Publish(ctx)
		if err != nil {
			return Result{Success: false, Message: fmt.Sprintf("Failed to save briefing: %v", err)}
		}
		return Result{Success: true, Message: "Briefing saved. " + summary}
	}
	return Result{
		Success: true,
		Message: fmt.Sprintf("Custom request logged: %q (args: %s). Requires manual handling.", name, arguments),
	}
}

// findScript locates an entry script at the repo root or under src/.
func findScript(repo, name string) (string, error) {
	if repo == "" {
		return "", fmt.Errorf("repository not configured")
	}
	for _, candidate := range []string{filepath.Join(repo, name), filepath.Join(repo, "src", name)} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s not found in %s", name, repo)
}

// countFilesByExt counts directory entries whose extension matches one
// of exts, case-insensitively. Errors count as zero.
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
