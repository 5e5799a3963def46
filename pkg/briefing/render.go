package briefing

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	summaryStyle = lipgloss.NewStyle().Italic(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// RenderText formats a briefing for terminal display. With color off
// the output is plain markdown-ish text suitable for piping.
func RenderText(b Briefing, color bool) string {
	style := func(s lipgloss.Style, text string) string {
		if !color {
			return text
		}
		return s.Render(text)
	}

	var lines []string
	lines = append(lines,
		style(headingStyle, "# "+b.Greeting+"!"),
		"**"+b.Date+"**",
		"",
		style(summaryStyle, "*"+b.Summary+"*"),
		"",
	)

	lines = append(lines, style(headingStyle, "## Ecosystem Status"))
	if b.Ecosystem.Error == "" {
		lines = append(lines,
			fmt.Sprintf("- Healthy: %d", b.Ecosystem.Healthy),
			fmt.Sprintf("- Needs attention: %d", b.Ecosystem.AttentionNeeded),
		)
		for i, item := range b.Ecosystem.AttentionItems {
			if i == 5 {
				break
			}
			lines = append(lines, "  - "+item)
		}
	} else {
		lines = append(lines, style(errorStyle, "- Error: "+b.Ecosystem.Error))
	}
	lines = append(lines, "")

	lines = append(lines, style(headingStyle, "## Pending Documents"))
	if b.Documents.Error == "" {
		lines = append(lines,
			fmt.Sprintf("- PDFs: %d", b.Documents.PendingPDFs),
			fmt.Sprintf("- Media: %d", b.Documents.PendingMedia),
			fmt.Sprintf("- Needs review: %d", b.Documents.NeedsReview),
		)
	} else {
		lines = append(lines, style(errorStyle, "- Error: "+b.Documents.Error))
	}
	lines = append(lines, "")

	if b.Financial != nil {
		lines = append(lines, style(headingStyle, "## Financial Summary"))
		if b.Financial.Error == "" {
			lines = append(lines,
				"- Net worth: "+formatUSD(b.Financial.NetWorth),
				"- MTD Income: "+formatUSD(b.Financial.MTDIncome),
				"- MTD Expenses: "+formatUSD(math.Abs(b.Financial.MTDExpenses)),
			)
		} else {
			lines = append(lines, style(errorStyle, "- "+b.Financial.Error))
			if b.Financial.Hint != "" {
				lines = append(lines, "- Hint: "+b.Financial.Hint)
			}
		}
		lines = append(lines, "")
	}

	lines = append(lines, style(headingStyle, "## Automation Requests"))
	if b.Automation.Error == "" {
		if b.Automation.PendingCount > 0 {
			lines = append(lines, fmt.Sprintf("- %d request(s) pending:", b.Automation.PendingCount))
			for i, req := range b.Automation.Requests {
				if i == 3 {
					break
				}
				name := req.Name
				if name == "" {
					name = "Unnamed"
				}
				lines = append(lines, fmt.Sprintf("  - %s: %s %s", name, req.Command, req.Arguments))
			}
		} else {
			lines = append(lines, "- No pending requests")
		}
	} else {
		lines = append(lines, style(errorStyle, "- Error: "+b.Automation.Error))
	}
	lines = append(lines, "")

	if b.Calendar != nil {
		lines = append(lines, style(headingStyle, "## Today's Events"))
		switch {
		case b.Calendar.Error != "":
			lines = append(lines, style(errorStyle, "- Error: "+b.Calendar.Error))
		case !b.Calendar.Available:
			lines = append(lines, "- Calendar not available")
			if b.Calendar.Hint != "" {
				lines = append(lines, "- "+b.Calendar.Hint)
			}
		case b.Calendar.Count == 0:
			lines = append(lines, "- No events scheduled")
		default:
			for i, ev := range b.Calendar.Events.Events {
				if i == 5 {
					break
				}
				title := ev.Title
				if title == "" {
					title = "Untitled"
				}
				line := "- " + title
				if ev.Time != "" {
					line = "- " + ev.Time + " " + title
				}
				lines = append(lines, line)
			}
		}
	}

	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// formatUSD renders a dollar amount with thousands separators.
func formatUSD(v float64) string {
	neg := v < 0
	s := fmt.Sprintf("%.2f", math.Abs(v))

	dot := strings.IndexByte(s, '.')
	whole, frac := s[:dot], s[dot:]
	var sb strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(digit)
	}

	out := "$" + sb.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}
