package main

import (
	"fmt"

	"eco/internal/appversion"

	"github.com/spf13/cobra"
)

// newRootCmd creates the root eco command with all subcommands attached.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "eco",
		Short:         "Personal automation control plane",
		Long:          "eco polls the workspace for automation requests, runs them against\nlocal subsystems, and assembles the daily briefing.",
		Version:       fmt.Sprintf("eco %s", appversion.String()),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("{{.Version}}\n")

	cmd.AddCommand(
		newPollCmd(),
		newBriefingCmd(),
		newStatusCmd(),
		newHistoryCmd(),
		newRequestsCmd(),
		newConfigCmd(),
		newTxSyncCmd(),
		newDashCmd(),
	)

	return cmd
}
