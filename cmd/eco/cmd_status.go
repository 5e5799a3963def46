package main

import (
	"encoding/json"
	"fmt"
	"io"

	"eco/pkg/probe"

	"github.com/spf13/cobra"
)

// newStatusCmd creates the "eco status" subcommand.
func newStatusCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show subsystem health",
		Long:  "Probes every automation subsystem locally and reports health,\nstaleness, and attention items.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			checks := probe.New(*cfg).All(cmd.Context())
			summary := probe.Summarize(checks)

			if asJSON {
				data, err := json.MarshalIndent(map[string]any{
					"systems": checks,
					"summary": summary,
				}, "", "  ")
				if err != nil {
					return fmt.Errorf("encode status: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			renderStatus(cmd.OutOrStdout(), checks, summary)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output status as JSON")

	return cmd
}

func renderStatus(w io.Writer, checks []probe.Check, summary probe.Summary) {
	for _, check := range checks {
		fmt.Fprintf(w, "%s %s: %s\n", check.Icon, check.Name, check.Status)
		for _, detail := range check.Details {
			fmt.Fprintf(w, "   %s\n", detail)
		}
	}
	fmt.Fprintf(w, "\n%d/%d healthy, %d need attention, %d not running\n",
		summary.Healthy, summary.TotalSystems, summary.NeedsAttention, summary.NotRunning)
	for _, item := range summary.AttentionItems {
		fmt.Fprintf(w, "  ! %s\n", item)
	}
}
