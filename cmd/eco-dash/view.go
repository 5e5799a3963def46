package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// renderChecksView renders one line per subsystem plus attention items.
func (m Model) renderChecksView() string {
	theme := DefaultTheme()
	title := sectionTitle(theme, "Systems")

	if len(m.checks) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title,
			lipgloss.NewStyle().Foreground(theme.Muted).Render("probing..."))
	}

	lines := make([]string, 0, len(m.checks)+len(m.summary.AttentionItems)+1)
	lines = append(lines, title)
	for _, check := range m.checks {
		style := lipgloss.NewStyle().Foreground(statusColor(theme, check.Status))
		lines = append(lines, fmt.Sprintf("%s %s: %s", check.Icon, check.Name, style.Render(check.Status)))
		for _, detail := range check.Details {
			lines = append(lines, lipgloss.NewStyle().Foreground(theme.Muted).Render("   "+detail))
		}
	}
	for _, item := range m.summary.AttentionItems {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.Warning).Render(" ! "+item))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderHistoryView renders recent operations, newest first.
func (m Model) renderHistoryView() string {
	theme := DefaultTheme()
	title := sectionTitle(theme, "Recent Operations")

	if len(m.records) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title,
			lipgloss.NewStyle().Foreground(theme.Muted).Render("no operations recorded"))
	}

	lines := make([]string, 0, len(m.records)+1)
	lines = append(lines, title)
	for _, rec := range m.records {
		mark := lipgloss.NewStyle().Foreground(theme.Success).Render("ok")
		if !rec.Success {
			mark = lipgloss.NewStyle().Foreground(theme.Error).Render("FAIL")
		}
		lines = append(lines, fmt.Sprintf("%s  %-24s %s  %s",
			rec.Timestamp.Format(time.Stamp), rec.Tool, mark, rec.Result))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderRequestsView renders queued automation requests.
func (m Model) renderRequestsView() string {
	theme := DefaultTheme()
	title := sectionTitle(theme, "Queued Requests")

	if !m.workspaceOK {
		return lipgloss.JoinVertical(lipgloss.Left, title,
			lipgloss.NewStyle().Foreground(theme.Error).Render("workspace offline"))
	}
	if len(m.requests) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title,
			lipgloss.NewStyle().Foreground(theme.Muted).Render("no queued requests"))
	}

	lines := make([]string, 0, len(m.requests)+1)
	lines = append(lines, title)
	for _, req := range m.requests {
		args := req.Arguments
		if args == "" {
			args = "-"
		}
		lines = append(lines, fmt.Sprintf("%-10s %-20s %s",
			req.Command, args, lipgloss.NewStyle().Foreground(theme.Secondary).Render(req.Name)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func sectionTitle(theme Theme, text string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).Render(text)
}

// statusColor maps a subsystem status to a theme color.
func statusColor(theme Theme, status string) lipgloss.Color {
	switch status {
	case "watching", "connected", "synced", "installed", "idle":
		return theme.Success
	case "stale", "loaded":
		return theme.Warning
	default:
		return theme.Error
	}
}
