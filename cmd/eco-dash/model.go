package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"eco/pkg/config"
	"eco/pkg/oplog"
	"eco/pkg/probe"
	"eco/pkg/request"
)

// tickMsg is sent by Bubble Tea on every tick interval.
// Used to trigger periodic data refresh from the probes and workspace.
type tickMsg time.Time

// checksMsg carries freshly probed subsystem checks.
type checksMsg []probe.Check

// historyMsg carries recent operations from the local log.
type historyMsg []oplog.Record

// requestsMsg carries queued requests from the workspace.
// nil means the workspace is offline or not configured.
type requestsMsg []request.Request

// tickCmd returns a command that sends a tickMsg after 2 seconds.
func tickCmd() tea.Cmd {
	return tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchChecksCmd() tea.Cmd {
	return func() tea.Msg {
		return checksMsg(fetchChecks(context.Background()))
	}
}

func fetchHistoryCmd() tea.Cmd {
	return func() tea.Msg {
		records, _ := fetchHistory(context.Background())
		return historyMsg(records)
	}
}

func fetchRequestsCmd() tea.Cmd {
	return func() tea.Msg {
		reqs, _ := fetchRequests(context.Background())
		return requestsMsg(reqs)
	}
}

// oplogDir returns the directory holding the operation log, for the
// file watcher.
func oplogDir() string {
	cfg, err := config.Load()
	if err != nil {
		return ""
	}
	return filepath.Dir(cfg.DBPath)
}

// ViewType represents different views in the dashboard.
type ViewType int

const (
	// StatusView shows subsystem health.
	StatusView ViewType = iota
	// HistoryView shows recent operations.
	HistoryView
	// RequestsView shows queued automation requests.
	RequestsView
)

// Model is the Bubble Tea model for the eco dashboard.
type Model struct {
	activeView  ViewType
	workspaceOK bool

	// Data fetched from external sources
	checks   []probe.Check
	summary  probe.Summary
	records  []oplog.Record
	requests []request.Request

	// UI state
	width  int
	height int
}

// newModel creates a new Model initialized with StatusView active.
func newModel() Model {
	return Model{activeView: StatusView}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{fetchChecksCmd(), fetchHistoryCmd(), fetchRequestsCmd(), tickCmd()}
	if watch := watchOplogDir(oplogDir()); watch != nil {
		cmds = append(cmds, watch)
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case checksMsg:
		m.checks = []probe.Check(msg)
		m.summary = probe.Summarize(m.checks)

	case historyMsg:
		m.records = []oplog.Record(msg)

	case requestsMsg:
		if msg == nil {
			m.workspaceOK = false
			m.requests = nil
		} else {
			m.workspaceOK = true
			m.requests = []request.Request(msg)
		}

	case fsChangeMsg:
		// The operation log changed on disk; refresh immediately and
		// re-arm the watcher.
		cmds := []tea.Cmd{fetchHistoryCmd()}
		if watch := watchOplogDir(oplogDir()); watch != nil {
			cmds = append(cmds, watch)
		}
		return m, tea.Batch(cmds...)

	case tickMsg:
		return m, tea.Batch(fetchChecksCmd(), fetchHistoryCmd(), fetchRequestsCmd(), tickCmd())
	}

	return m, nil
}

// handleKeyPress processes keyboard input and returns updated model with optional command.
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "tab":
		m.activeView = (m.activeView + 1) % 3
	case "shift+tab":
		m.activeView = (m.activeView + 2) % 3
	case "1", "s":
		m.activeView = StatusView
	case "2", "h":
		m.activeView = HistoryView
	case "3", "r":
		m.activeView = RequestsView
	case "g":
		return m, tea.Batch(fetchChecksCmd(), fetchHistoryCmd(), fetchRequestsCmd())
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	statusBar := m.renderStatusBar()

	switch m.activeView {
	case HistoryView:
		return statusBar + "\n" + m.renderHistoryView()
	case RequestsView:
		return statusBar + "\n" + m.renderRequestsView()
	default:
		return statusBar + "\n" + m.renderChecksView()
	}
}

// renderStatusBar renders the status bar with workspace health and aggregate counts.
func (m Model) renderStatusBar() string {
	theme := DefaultTheme()

	var workspaceStatus string
	if m.workspaceOK {
		workspaceStatus = lipgloss.NewStyle().Foreground(theme.Success).Render("workspace: online")
	} else {
		workspaceStatus = lipgloss.NewStyle().Foreground(theme.Error).Render("workspace: offline")
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Left,
		workspaceStatus,
		lipgloss.NewStyle().Render(" | Healthy: "),
		lipgloss.NewStyle().Foreground(theme.Success).Render(fmt.Sprintf("%d/%d", m.summary.Healthy, m.summary.TotalSystems)),
		lipgloss.NewStyle().Render(" | Attention: "),
		lipgloss.NewStyle().Foreground(theme.Warning).Render(fmt.Sprintf("%d", m.summary.NeedsAttention)),
		lipgloss.NewStyle().Render(" | Queued: "),
		lipgloss.NewStyle().Foreground(theme.Primary).Render(fmt.Sprintf("%d", len(m.requests))),
	)
}
