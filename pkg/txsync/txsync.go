// Package txsync copies bank transactions from the financial
// aggregator into a workspace database, deduplicating on the
// aggregator's transaction ID so reruns are safe.
package txsync

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"eco/pkg/monarch"
	"eco/pkg/workspace"
)

const (
	fetchLimit = 500

	titleLimit = 100
	notesLimit = 2000
)

// entityMapping maps aggregator account names to business entities.
// Unlisted accounts fall through to the default.
var entityMapping = map[string]string{
	"default": "Treehouse LLC",
}

// categoryMapping normalizes aggregator categories to the workspace
// schema.
var categoryMapping = map[string]string{
	"Utilities":             "Utilities",
	"Insurance":             "Insurance",
	"Maintenance & Repairs": "Repairs & Maintenance",
	"Property Tax":          "Taxes",
	"Mortgage":              "Mortgage",
	"HOA Fees":              "HOA",
	"Rental Income":         "Rental Income",
	"default":               "Other",
}

// TransactionSource fetches transactions for a date range.
type TransactionSource interface {
	Transactions(ctx context.Context, start, end time.Time, limit int) ([]monarch.Transaction, error)
}

// PageStore is the slice of the workspace client the syncer needs.
type PageStore interface {
	QueryDatabase(ctx context.Context, databaseID string, filter any, sorts []workspace.Sort) ([]workspace.Page, error)
	CreateTransactionPage(ctx context.Context, databaseID string, page workspace.TransactionPage) error
}

// Summary is the result of one sync run.
type Summary struct {
	Synced  int      `json:"synced"`
	Skipped int      `json:"skipped"`
	Errors  int      `json:"errors"`
	Details []string `json:"error_details,omitempty"`
}

func (s Summary) String() string {
	return fmt.Sprintf("Synced %d, skipped %d duplicates, %d errors", s.Synced, s.Skipped, s.Errors)
}

// Options controls one sync run.
type Options struct {
	// Days back from now to sync. Zero means 7.
	Days int
	// DryRun counts what would be created without writing.
	DryRun bool
}

// Syncer pulls transactions and writes workspace pages.
type Syncer struct {
	source     TransactionSource
	store      PageStore
	databaseID string
	now        func() time.Time
	logger     *log.Logger
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Syncer) { s.now = now }
}

// WithLogger replaces the default stderr logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Syncer) { s.logger = l }
}

// New creates a Syncer targeting the given transactions database.
func New(source TransactionSource, store PageStore, databaseID string, opts ...Option) *Syncer {
	s := &Syncer{
		source:     source,
		store:      store,
		databaseID: databaseID,
		now:        time.Now,
		logger:     log.New(os.Stderr, "txsync: ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sync pulls the last N days of transactions and creates a page per
// transaction not already present. Per-transaction create failures are
// counted, not fatal.
func (s *Syncer) Sync(ctx context.Context, opts Options) (Summary, error) {
	if s.databaseID == "" {
		return Summary{}, fmt.Errorf("transactions database not configured")
	}
	days := opts.Days
	if days <= 0 {
		days = 7
	}

	end := s.now()
	start := end.AddDate(0, 0, -days)
	s.logger.Printf("syncing transactions from %s to %s", start.Format("2006-01-02"), end.Format("2006-01-02"))

	txs, err := s.source.Transactions(ctx, start, end, fetchLimit)
	if err != nil {
		return Summary{}, fmt.Errorf("fetch transactions: %w", err)
	}
	if len(txs) == 0 {
		return Summary{}, nil
	}
	s.logger.Printf("retrieved %d transaction(s)", len(txs))

	existing, err := s.existingIDs(ctx)
	if err != nil {
		// Dedup is best-effort; a failed lookup syncs everything.
		s.logger.Printf("existing ID lookup failed, syncing without dedup: %v", err)
		existing = map[string]bool{}
	}

	var sum Summary
	for _, tx := range txs {
		if existing[tx.ID] {
			sum.Skipped++
			continue
		}
		if opts.DryRun {
			sum.Synced++
			continue
		}
		if err := s.store.CreateTransactionPage(ctx, s.databaseID, mapTransaction(tx)); err != nil {
			sum.Errors++
			sum.Details = append(sum.Details, fmt.Sprintf("%s: %v", tx.ID, err))
			s.logger.Printf("create page for %s: %v", tx.ID, err)
			continue
		}
		sum.Synced++
	}
	return sum, nil
}

// existingIDs collects the external transaction IDs already present in
// the workspace database.
func (s *Syncer) existingIDs(ctx context.Context) (map[string]bool, error) {
	pages, err := s.store.QueryDatabase(ctx, s.databaseID, nil, nil)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool, len(pages))
	for _, page := range pages {
		if id := workspace.ExternalID(page); id != "" {
			ids[id] = true
		}
	}
	return ids, nil
}

// mapTransaction converts one transaction to workspace page fields.
// The merchant name titles the page, falling back to the bank's raw
// description; the raw description lands in notes when it differs.
func mapTransaction(tx monarch.Transaction) workspace.TransactionPage {
	title := tx.Merchant
	if title == "" {
		title = tx.Description
	}

	page := workspace.TransactionPage{
		Title:      workspace.TruncateText(title, titleLimit),
		Date:       tx.Date,
		Amount:     tx.Amount,
		ExternalID: tx.ID,
	}
	if tx.Description != "" && tx.Description != title {
		page.Notes = workspace.TruncateText(tx.Description, notesLimit)
	}
	if tx.Category != "" {
		page.Category = mapWithDefault(categoryMapping, tx.Category)
	}

	// Tags override the account-based entity mapping.
	for _, tag := range tx.Tags {
		switch tag {
		case "TH":
			page.Entity = "Treehouse LLC"
		case "PERS":
			page.Entity = "Personal"
		}
	}
	if page.Entity == "" {
		page.Entity = mapWithDefault(entityMapping, tx.Account)
	}
	return page
}

func mapWithDefault(m map[string]string, key string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return m["default"]
}
