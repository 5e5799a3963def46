package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// newRequestsCmd creates the "eco requests" subcommand.
func newRequestsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "requests",
		Short: "List queued automation requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ws, err := newWorkspaceClient(cfg)
			if err != nil {
				return err
			}

			reqs, err := ws.PendingRequests(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch requests: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				data, err := json.MarshalIndent(reqs, "", "  ")
				if err != nil {
					return fmt.Errorf("encode requests: %w", err)
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			if len(reqs) == 0 {
				fmt.Fprintln(out, "no queued requests")
				return nil
			}
			for _, req := range reqs {
				created := ""
				if !req.Created.IsZero() {
					created = req.Created.Format(time.RFC3339)
				}
				fmt.Fprintf(out, "%s  %-10s %-20s %s\n", created, req.Command, req.Arguments, req.Name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output requests as JSON")

	return cmd
}
