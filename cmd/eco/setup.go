package main

import (
	"context"
	"fmt"

	"eco/pkg/briefing"
	"eco/pkg/calendar"
	"eco/pkg/config"
	"eco/pkg/monarch"
	"eco/pkg/oplog"
	"eco/pkg/probe"
	"eco/pkg/workspace"
)

// loadConfig resolves the eco home and reads config.toml (or
// config.yaml). A missing config file yields defaults, not an error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newWorkspaceClient builds the requests-database client. Both the
// token and the database ID are required for any workspace operation.
func newWorkspaceClient(cfg *config.Config) (*workspace.Client, error) {
	if cfg.Workspace.Token == "" {
		return nil, fmt.Errorf("workspace token not configured (set %s or workspace.token in config)", config.EnvWorkspaceToken)
	}
	if cfg.Workspace.RequestsDatabaseID == "" {
		return nil, fmt.Errorf("requests database not configured (run: eco config set-database <id>)")
	}
	opts := []workspace.Option{}
	if cfg.Workspace.BaseURL != "" {
		opts = append(opts, workspace.WithBaseURL(cfg.Workspace.BaseURL))
	}
	return workspace.NewClient(cfg.Workspace.Token, cfg.Workspace.RequestsDatabaseID, opts...), nil
}

// openOplog opens the operation history database.
func openOplog(cfg *config.Config) (*oplog.Store, error) {
	ops, err := oplog.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open operation log: %w", err)
	}
	return ops, nil
}

// probeReconciler backs the reconcile command with the status probes.
type probeReconciler struct {
	prober *probe.Prober
}

func (r *probeReconciler) Issues(ctx context.Context) ([]string, error) {
	return probe.Summarize(r.prober.All(ctx)).AttentionItems, nil
}

// briefingPublisher builds the publisher behind the daily-briefing
// custom request.
func briefingPublisher(cfg *config.Config, ws *workspace.Client, gen *briefing.Generator) *briefing.WorkspacePublisher {
	return briefing.NewWorkspacePublisher(gen, ws, cfg.Workspace.BriefingParentPageID)
}

// newGenerator wires the briefing generator from whatever sources the
// config provides. Optional sources left nil degrade to error-shaped
// sections.
func newGenerator(cfg *config.Config) *briefing.Generator {
	prober := probe.New(*cfg)

	var lister briefing.RequestLister
	if ws, err := newWorkspaceClient(cfg); err == nil {
		lister = ws
	}

	// An empty token surfaces as a not-authenticated financial section
	// with a hint, so the client is always constructed.
	financial := monarch.NewClient(cfg.Monarch.BaseURL, cfg.Monarch.Token)

	cal := calendar.NewCLIProvider(cfg.CalendarTool)

	return briefing.NewGenerator(prober, lister, financial, cal)
}
