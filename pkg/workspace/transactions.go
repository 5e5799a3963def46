package workspace

import (
	"context"
)

// TransactionPage is the flattened property set of one row in the
// transactions database. ExternalID is the aggregator's transaction ID
// and drives deduplication.
type TransactionPage struct {
	Title      string
	Date       string
	Amount     float64
	ExternalID string
	Notes      string
	Category   string
	Entity     string
}

// CreateTransactionPage inserts one transaction row. Empty optional
// fields are omitted from the write.
func (c *Client) CreateTransactionPage(ctx context.Context, databaseID string, tx TransactionPage) error {
	amount := tx.Amount
	props := map[string]property{
		"Description": {Title: []richText{{Text: textBody{Content: tx.Title}}}},
		"Date":        {Date: &dateValue{Start: tx.Date}},
		"Amount":      {Number: &amount},
		"Monarch ID":  {RichText: []richText{{Text: textBody{Content: tx.ExternalID}}}},
	}
	if tx.Notes != "" {
		props["Notes"] = property{RichText: []richText{{Text: textBody{Content: tx.Notes}}}}
	}
	if tx.Category != "" {
		props["Category"] = property{Select: &selectValue{Name: tx.Category}}
	}
	if tx.Entity != "" {
		props["Entity"] = property{Select: &selectValue{Name: tx.Entity}}
	}
	return c.CreatePage(ctx, databaseID, props)
}

// ExternalID extracts the aggregator transaction ID from a
// transactions-database page.
func ExternalID(page Page) string {
	return firstText(page.Properties["Monarch ID"].RichText)
}
