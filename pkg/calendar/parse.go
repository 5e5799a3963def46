package calendar

import (
	"regexp"
	"strings"
)

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// parseOutput converts icalBuddy output into events. Bullet lines
// start a new event, lines containing AM/PM become the event time,
// attendee lines are skipped.
func parseOutput(out string) []Event {
	clean := ansiRe.ReplaceAllString(out, "")

	var (
		events  []Event
		current *Event
	)
	for _, line := range strings.Split(strings.TrimSpace(clean), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, "•") || strings.HasPrefix(trimmed, "*") {
			if current != nil {
				events = append(events, *current)
			}
			title := strings.TrimSpace(strings.TrimLeft(trimmed, "•* "))
			current = &Event{Title: title}
			continue
		}
		if current == nil {
			continue
		}
		if strings.HasPrefix(trimmed, "attendees:") {
			continue
		}
		if strings.Contains(trimmed, "AM") || strings.Contains(trimmed, "PM") {
			current.Time = trimmed
		}
	}
	if current != nil {
		events = append(events, *current)
	}
	return events
}
