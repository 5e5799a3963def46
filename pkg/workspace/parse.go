package workspace

import (
	"fmt"
	"strings"
	"time"

	"eco/pkg/request"
)

// ParseRequestPage converts one wire page into a typed request. The
// canonical schema is Name (title), Command + Arguments (rich text),
// Status (select), Created (created time). A page without an ID is
// rejected; missing optional properties parse to zero values.
func ParseRequestPage(page Page) (request.Request, error) {
	if page.ID == "" {
		return request.Request{}, fmt.Errorf("page has no id")
	}

	req := request.Request{
		ID:        page.ID,
		URL:       page.URL,
		Name:      firstText(page.Properties["Name"].Title),
		Command:   request.Command(strings.ToLower(strings.TrimSpace(firstText(page.Properties["Command"].RichText)))),
		Arguments: strings.TrimSpace(firstText(page.Properties["Arguments"].RichText)),
	}

	if sel := page.Properties["Status"].Select; sel != nil {
		status := request.Status(sel.Name)
		if !status.Valid() {
			return request.Request{}, fmt.Errorf("page %s has unknown status %q", page.ID, sel.Name)
		}
		req.Status = status
	}

	if created := page.Properties["Created"].CreatedTime; created != "" {
		ts, err := time.Parse(time.RFC3339, created)
		if err != nil {
			return request.Request{}, fmt.Errorf("page %s created time: %w", page.ID, err)
		}
		req.Created = ts
	}

	return req, nil
}

func firstText(parts []richText) string {
	if len(parts) == 0 {
		return ""
	}
	return parts[0].Text.Content
}

// TruncateText caps s at limit runes. Truncation happens on rune
// boundaries, so multi-byte characters are never split; a string at or
// under the limit is returned unchanged.
func TruncateText(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
