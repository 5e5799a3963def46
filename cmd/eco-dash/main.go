// Package main implements the eco-dash interactive dashboard.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

// robotMode outputs a JSON snapshot of the dashboard state for
// scripting, instead of starting the TUI.
func robotMode(ctx context.Context) ([]byte, error) {
	checks := fetchChecks(ctx)
	records, _ := fetchHistory(ctx)
	requests, _ := fetchRequests(ctx)

	snapshot := map[string]any{
		"systems":    checks,
		"operations": records,
		"requests":   requests,
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--json" {
		data, err := robotMode(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	p := tea.NewProgram(newModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running dashboard: %v\n", err)
		os.Exit(1)
	}
}
