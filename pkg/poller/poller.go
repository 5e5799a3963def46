// Package poller drives the control loop: fetch queued automation
// requests from the workspace, execute each one, and write the outcome
// back. There is exactly one poller per workspace database; the claim
// is a plain status write, not a lease.
package poller

import (
	"context"
	"log"
	"os"
	"time"

	"eco/pkg/dispatch"
	"eco/pkg/request"
)

const defaultInterval = 60 * time.Second

// Store is the slice of the workspace client the poller needs.
type Store interface {
	PendingRequests(ctx context.Context) ([]request.Request, error)
	UpdateStatus(ctx context.Context, id string, status request.Status, result string) error
}

// Executor runs one request to completion.
type Executor interface {
	Execute(ctx context.Context, req request.Request) dispatch.Result
}

// Config controls the polling loop.
type Config struct {
	// Interval between passes. Zero means the 60-second default.
	Interval time.Duration
	// Once runs a single pass and returns.
	Once bool
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = defaultInterval
	}
	return c
}

// Poller polls the store and dispatches requests sequentially.
type Poller struct {
	store  Store
	exec   Executor
	cfg    Config
	logger *log.Logger
}

// Option configures a Poller.
type Option func(*Poller)

// WithLogger replaces the default stderr logger.
func WithLogger(l *log.Logger) Option {
	return func(p *Poller) { p.logger = l }
}

// New creates a Poller.
func New(store Store, exec Executor, cfg Config, opts ...Option) *Poller {
	p := &Poller{
		store:  store,
		exec:   exec,
		cfg:    cfg.withDefaults(),
		logger: log.New(os.Stderr, "poller: ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run polls until ctx is cancelled (or after one pass when Once is
// set). The only error it returns is ctx.Err(); fetch and update
// failures are logged and the loop keeps going.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Printf("starting polling loop (interval: %s)", p.cfg.Interval)

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		p.pass(ctx)

		if p.cfg.Once {
			return nil
		}

		select {
		case <-ctx.Done():
			p.logger.Printf("polling stopped: %v", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// pass handles one fetch-and-dispatch cycle. A fetch failure is
// treated as zero requests. Requests run strictly sequentially;
// cancellation is observed between requests, and any request that was
// claimed is always finalized to done or failed.
func (p *Poller) pass(ctx context.Context) {
	reqs, err := p.store.PendingRequests(ctx)
	if err != nil {
		p.logger.Printf("fetch pending requests: %v", err)
		return
	}
	if len(reqs) == 0 {
		return
	}
	p.logger.Printf("found %d pending request(s)", len(reqs))

	for _, req := range reqs {
		if ctx.Err() != nil {
			return
		}
		p.process(ctx, req)
	}
}

func (p *Poller) process(ctx context.Context, req request.Request) {
	if !req.Status.CanTransition(request.StatusRunning) {
		p.logger.Printf("skipping %s: status %q cannot start running", req.ID, req.Status)
		return
	}

	p.logger.Printf("processing %q (cmd=%s, args=%q)", req.Name, req.Command, req.Arguments)
	if err := p.store.UpdateStatus(ctx, req.ID, request.StatusRunning, ""); err != nil {
		// Never execute a request that was not claimed.
		p.logger.Printf("claim %s: %v", req.ID, err)
		return
	}

	res := p.exec.Execute(ctx, req)

	final := request.StatusDone
	if !res.Success {
		final = request.StatusFailed
	}
	if err := p.store.UpdateStatus(ctx, req.ID, final, res.Message); err != nil {
		p.logger.Printf("finalize %s as %s: %v", req.ID, final, err)
		return
	}
	if res.Success {
		p.logger.Printf("completed: %s", res.Message)
	} else {
		p.logger.Printf("failed: %s", res.Message)
	}
}
