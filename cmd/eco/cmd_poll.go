package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"eco/pkg/dispatch"
	"eco/pkg/poller"
	"eco/pkg/probe"

	"github.com/spf13/cobra"
)

// newPollCmd creates the "eco poll" subcommand.
func newPollCmd() *cobra.Command {
	var (
		once     bool
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Poll the workspace for automation requests",
		Long:  "Fetches queued requests from the workspace database, executes them\nagainst local subsystems, and writes results back. Runs until\ninterrupted unless --once is set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ws, err := newWorkspaceClient(cfg)
			if err != nil {
				return err
			}
			ops, err := openOplog(cfg)
			if err != nil {
				return err
			}
			defer ops.Close()

			gen := newGenerator(cfg)
			publisher := briefingPublisher(cfg, ws, gen)

			d := dispatch.New(*cfg, dispatch.ExecRunner{}, ops,
				dispatch.WithReconciler(&probeReconciler{prober: probe.New(*cfg)}),
				dispatch.WithBriefingPublisher(publisher),
			)

			p := poller.New(ws, d, poller.Config{Interval: interval, Once: once})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "process one pass and exit")
	cmd.Flags().DurationVar(&interval, "interval", 60*time.Second, "time between polling passes")

	return cmd
}
