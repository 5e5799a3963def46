package briefing

import (
	"context"
	"fmt"
)

// PageCreator is the slice of the workspace client publishing needs.
type PageCreator interface {
	PublishBriefing(ctx context.Context, parentPageID, title, body string) error
}

// WorkspacePublisher generates a full briefing and writes it to the
// workspace as a page. It backs the daily-briefing custom request.
type WorkspacePublisher struct {
	gen          *Generator
	pages        PageCreator
	parentPageID string
}

// NewWorkspacePublisher creates a publisher targeting parentPageID.
func NewWorkspacePublisher(gen *Generator, pages PageCreator, parentPageID string) *WorkspacePublisher {
	return &WorkspacePublisher{gen: gen, pages: pages, parentPageID: parentPageID}
}

// Publish generates today's briefing, saves it, and returns the
// summary line.
func (p *WorkspacePublisher) Publish(ctx context.Context) (string, error) {
	if p.parentPageID == "" {
		return "", fmt.Errorf("briefing parent page not configured")
	}

	b := p.gen.Generate(ctx, Options{IncludeFinancial: true, IncludeCalendar: true})
	title := "Daily Briefing - " + b.Date
	if err := p.pages.PublishBriefing(ctx, p.parentPageID, title, RenderText(b, false)); err != nil {
		return "", fmt.Errorf("publish briefing: %w", err)
	}
	return b.Summary, nil
}
