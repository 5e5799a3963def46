package main

import (
	"encoding/json"
	"fmt"
	"os"

	"eco/pkg/briefing"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// newBriefingCmd creates the "eco briefing" subcommand.
func newBriefingCmd() *cobra.Command {
	var (
		noFinancial bool
		noCalendar  bool
		asJSON      bool
		quiet       bool
		publish     bool
	)

	cmd := &cobra.Command{
		Use:   "briefing",
		Short: "Generate the daily briefing",
		Long:  "Assembles subsystem health, pending documents, queued requests,\nfinancial summary, and today's calendar into one briefing.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			gen := newGenerator(cfg)
			b := gen.Generate(cmd.Context(), briefing.Options{
				IncludeFinancial: !noFinancial,
				IncludeCalendar:  !noCalendar,
			})

			out := cmd.OutOrStdout()
			switch {
			case asJSON:
				data, err := json.MarshalIndent(b, "", "  ")
				if err != nil {
					return fmt.Errorf("encode briefing: %w", err)
				}
				fmt.Fprintln(out, string(data))
			case quiet:
				fmt.Fprintln(out, b.Summary)
			default:
				color := isatty.IsTerminal(os.Stdout.Fd())
				fmt.Fprintln(out, briefing.RenderText(b, color))
			}

			if publish {
				ws, err := newWorkspaceClient(cfg)
				if err != nil {
					return err
				}
				if _, err := briefingPublisher(cfg, ws, gen).Publish(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "briefing published")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noFinancial, "no-financial", false, "skip the financial section")
	cmd.Flags().BoolVar(&noCalendar, "no-calendar", false, "skip the calendar section")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output the briefing as JSON")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the summary line")
	cmd.Flags().BoolVar(&publish, "publish", false, "also save the briefing to the workspace")

	return cmd
}
