package main

import (
	"context"
	"time"

	"eco/pkg/config"
	"eco/pkg/oplog"
	"eco/pkg/probe"
	"eco/pkg/request"
	"eco/pkg/workspace"
)

// fetchTimeout is how long to wait for one data source round-trip.
const fetchTimeout = 5 * time.Second

// historyLimit is how many recent operations the dashboard shows.
const historyLimit = 20

// fetchChecks probes all local subsystems. Probes never fail as a
// group; individual failures surface as per-system statuses.
func fetchChecks(ctx context.Context) []probe.Check {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return nil
	}
	return probe.New(*cfg).All(ctx)
}

// fetchHistory reads the newest operations from the local log.
func fetchHistory(ctx context.Context) ([]oplog.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	ops, err := oplog.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	defer ops.Close()

	return ops.Recent(ctx, oplog.QueryOpts{Limit: historyLimit})
}

// fetchRequests lists queued automation requests from the workspace.
// Returns nil when the workspace is not configured or unreachable; the
// workspace being offline is not an error condition for the dashboard.
func fetchRequests(ctx context.Context) ([]request.Request, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.Workspace.Token == "" || cfg.Workspace.RequestsDatabaseID == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	opts := []workspace.Option{}
	if cfg.Workspace.BaseURL != "" {
		opts = append(opts, workspace.WithBaseURL(cfg.Workspace.BaseURL))
	}
	ws := workspace.NewClient(cfg.Workspace.Token, cfg.Workspace.RequestsDatabaseID, opts...)

	reqs, err := ws.PendingRequests(ctx)
	if err != nil {
		return nil, nil
	}
	return reqs, nil
}
