package main

import (
	"fmt"

	"eco/pkg/monarch"
	"eco/pkg/txsync"

	"github.com/spf13/cobra"
)

// newTxSyncCmd creates the "eco txsync" subcommand.
func newTxSyncCmd() *cobra.Command {
	var (
		days   int
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "txsync",
		Short: "Sync recent transactions into the workspace",
		Long:  "Fetches recent transactions from the financial aggregator and creates pages in the transactions database, skipping ones already synced.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Monarch.Token == "" {
				return fmt.Errorf("monarch token not configured (set monarch.token in config.toml)")
			}
			ws, err := newWorkspaceClient(cfg)
			if err != nil {
				return err
			}

			source := monarch.NewClient(cfg.Monarch.BaseURL, cfg.Monarch.Token)
			syncer := txsync.New(source, ws, cfg.Workspace.TransactionsDatabaseID)

			summary, err := syncer.Sync(cmd.Context(), txsync.Options{
				Days:   days,
				DryRun: dryRun,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), summary.String())
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "how many days of transactions to fetch")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would sync without writing")

	return cmd
}
