package main

import (
	"encoding/json"
	"fmt"
	"time"

	"eco/pkg/oplog"

	"github.com/spf13/cobra"
)

// newHistoryCmd creates the "eco history" subcommand.
func newHistoryCmd() *cobra.Command {
	var (
		limit  int
		tool   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent operations",
		Long:  "Queries the local operation log for recent automation runs,\nnewest first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ops, err := openOplog(cfg)
			if err != nil {
				return err
			}
			defer ops.Close()

			records, err := ops.Recent(cmd.Context(), oplog.QueryOpts{Tool: tool, Limit: limit})
			if err != nil {
				return fmt.Errorf("query history: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				data, err := json.MarshalIndent(map[string]any{
					"operations": records,
					"count":      len(records),
				}, "", "  ")
				if err != nil {
					return fmt.Errorf("encode history: %w", err)
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			if len(records) == 0 {
				fmt.Fprintln(out, "no operations recorded")
				return nil
			}
			for _, rec := range records {
				mark := "ok"
				if !rec.Success {
					mark = "FAIL"
				}
				fmt.Fprintf(out, "%s  %-24s %-4s %6dms  %s\n",
					rec.Timestamp.Format(time.RFC3339), rec.Tool, mark, rec.DurationMS, rec.Result)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of operations to show")
	cmd.Flags().StringVar(&tool, "tool", "", "filter by tool name")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output history as JSON")

	return cmd
}
