package monarch

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// Transaction is one bank transaction, flattened from the API's
// nested shape.
type Transaction struct {
	ID          string
	Date        string
	Amount      float64
	Description string
	Merchant    string
	Category    string
	Account     string
	Pending     bool
	Tags        []string
}

type nameRef struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// transactionWire mirrors the API response. plaidName carries the
// bank's original description.
type transactionWire struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Amount    float64   `json:"amount"`
	PlaidName string    `json:"plaidName"`
	Merchant  *nameRef  `json:"merchant"`
	Category  *nameRef  `json:"category"`
	Account   *nameRef  `json:"account"`
	Pending   bool      `json:"pending"`
	Tags      []nameRef `json:"tags"`
}

type transactionsResponse struct {
	AllTransactions struct {
		Results []transactionWire `json:"results"`
	} `json:"allTransactions"`
}

// Transactions returns transactions in [start, end], newest first, up
// to limit.
func (c *Client) Transactions(ctx context.Context, start, end time.Time, limit int) ([]Transaction, error) {
	query := url.Values{
		"start_date": {start.Format("2006-01-02")},
		"end_date":   {end.Format("2006-01-02")},
		"limit":      {strconv.Itoa(limit)},
	}
	var resp transactionsResponse
	if err := c.get(ctx, "/transactions", query, &resp); err != nil {
		return nil, err
	}

	out := make([]Transaction, 0, len(resp.AllTransactions.Results))
	for _, w := range resp.AllTransactions.Results {
		tx := Transaction{
			ID:          w.ID,
			Date:        w.Date,
			Amount:      w.Amount,
			Description: w.PlaidName,
			Pending:     w.Pending,
		}
		if w.Merchant != nil {
			tx.Merchant = w.Merchant.Name
		}
		if w.Category != nil {
			tx.Category = w.Category.Name
		}
		if w.Account != nil {
			tx.Account = w.Account.DisplayName
			if tx.Account == "" {
				tx.Account = w.Account.Name
			}
		}
		for _, tag := range w.Tags {
			tx.Tags = append(tx.Tags, tag.Name)
		}
		out = append(out, tx)
	}
	return out, nil
}
