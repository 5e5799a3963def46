// Package monarch is a read-only consumer of the financial aggregator
// API, used by the daily briefing. It is optional infrastructure: a
// missing token or an unreachable API fails the briefing's financial
// section, never the briefing.
package monarch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrNotAuthenticated means no API token is configured. Callers show
// the hint instead of an HTTP error.
var ErrNotAuthenticated = errors.New("monarch: not authenticated (set monarch.token in config)")

// Account is one tracked account.
type Account struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Balance  float64 `json:"balance"`
	IsActive bool    `json:"is_active"`
}

// Cashflow is an aggregate over a date range.
type Cashflow struct {
	Summary struct {
		SumIncome  float64 `json:"sumIncome"`
		SumExpense float64 `json:"sumExpense"`
		Savings    float64 `json:"savings"`
	} `json:"summary"`
}

// Snapshot is the financial overview the briefing renders.
type Snapshot struct {
	AccountCount int                `json:"account_count"`
	TotalsByType map[string]float64 `json:"totals_by_type"`
	NetWorth     float64            `json:"net_worth"`
	MTDIncome    float64            `json:"mtd_income"`
	MTDExpenses  float64            `json:"mtd_expenses"`
	MTDSavings   float64            `json:"mtd_savings"`
}

// Client talks to the aggregator API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithClock replaces the wall clock used for month boundaries.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a financial API client.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Accounts returns all tracked accounts.
func (c *Client) Accounts(ctx context.Context) ([]Account, error) {
	var accounts []Account
	if err := c.get(ctx, "/accounts", nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// Cashflow returns income and expense sums from start onward.
func (c *Client) Cashflow(ctx context.Context, start time.Time) (Cashflow, error) {
	var cf Cashflow
	query := url.Values{"start_date": {start.Format("2006-01-02")}}
	if err := c.get(ctx, "/cashflow", query, &cf); err != nil {
		return Cashflow{}, err
	}
	return cf, nil
}

// Snapshot aggregates active-account balances by type plus
// month-to-date cashflow.
func (c *Client) Snapshot(ctx context.Context) (Snapshot, error) {
	accounts, err := c.Accounts(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("accounts: %w", err)
	}

	snap := Snapshot{TotalsByType: map[string]float64{}}
	for _, a := range accounts {
		if !a.IsActive {
			continue
		}
		snap.AccountCount++
		t := a.Type
		if t == "" {
			t = "Other"
		}
		snap.TotalsByType[t] += a.Balance
		snap.NetWorth += a.Balance
	}

	today := c.now()
	startOfMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	cf, err := c.Cashflow(ctx, startOfMonth)
	if err != nil {
		return Snapshot{}, fmt.Errorf("cashflow: %w", err)
	}
	snap.MTDIncome = cf.Summary.SumIncome
	snap.MTDExpenses = cf.Summary.SumExpense
	snap.MTDSavings = cf.Summary.Savings
	return snap, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if c.token == "" {
		return ErrNotAuthenticated
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
