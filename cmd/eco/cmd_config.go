package main

import (
	"fmt"

	"eco/pkg/workspace"

	"github.com/spf13/cobra"
)

// newConfigCmd creates the "eco config" subcommand group.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage eco configuration",
	}

	cmd.AddCommand(
		newConfigSetDatabaseCmd(),
		newConfigInitDatabaseCmd(),
		newConfigShowCmd(),
	)

	return cmd
}

// newConfigSetDatabaseCmd records an existing requests database ID.
func newConfigSetDatabaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-database <database-id>",
		Short: "Point eco at an existing requests database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cfg.Workspace.RequestsDatabaseID = args[0]
			if err := cfg.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "requests database set to %s\n", args[0])
			return nil
		},
	}
}

// newConfigInitDatabaseCmd creates a fresh requests database under a
// workspace page and records its ID.
func newConfigInitDatabaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-database <parent-page-id>",
		Short: "Create the requests database in the workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Workspace.Token == "" {
				return fmt.Errorf("workspace token not configured")
			}

			opts := []workspace.Option{}
			if cfg.Workspace.BaseURL != "" {
				opts = append(opts, workspace.WithBaseURL(cfg.Workspace.BaseURL))
			}
			ws := workspace.NewClient(cfg.Workspace.Token, "", opts...)

			id, err := ws.CreateRequestsDatabase(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			cfg.Workspace.RequestsDatabaseID = id
			if err := cfg.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created requests database %s\n", id)
			return nil
		},
	}
}

// newConfigShowCmd prints the resolved configuration paths.
func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "home:                 %s\n", cfg.Home)
			fmt.Fprintf(out, "db_path:              %s\n", cfg.DBPath)
			fmt.Fprintf(out, "downloads_dir:        %s\n", cfg.DownloadsDir)
			fmt.Fprintf(out, "calendar_tool:        %s\n", cfg.CalendarTool)
			fmt.Fprintf(out, "downloads_organizer:  %s\n", cfg.Repos.DownloadsOrganizer)
			fmt.Fprintf(out, "context_sync:         %s\n", cfg.Repos.ContextSync)
			fmt.Fprintf(out, "tax_rules:            %s\n", cfg.Repos.TaxRules)
			fmt.Fprintf(out, "requests_database_id: %s\n", cfg.Workspace.RequestsDatabaseID)
			fmt.Fprintf(out, "workspace_token:      %s\n", maskSecret(cfg.Workspace.Token))
			return nil
		},
	}
}

// maskSecret keeps enough of a token to recognize it without leaking
// it into terminal scrollback.
func maskSecret(s string) string {
	if s == "" {
		return "(unset)"
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
