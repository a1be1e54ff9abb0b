// Package brokersim provides a Go client for the broker's admin HTTP API.
package brokersim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks to a brokerd admin endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the admin API at baseURL, e.g.
// "http://127.0.0.1:5502".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Status describes the broker and its exchange connection.
type Status struct {
	Broker       string   `json:"broker"`
	ExchangeOpen bool     `json:"exchange_open"`
	Tickers      []string `json:"tickers"`
}

// Quote is one ticker's current price in cents.
type Quote struct {
	Ticker string `json:"ticker"`
	Price  int    `json:"price"`
}

// Execution is one journaled trade execution.
type Execution struct {
	OrderID   int64  `json:"order_id"`
	AccountID string `json:"account_id"`
	Ticker    string `json:"ticker"`
	Side      string `json:"side"`
	Shares    int64  `json:"shares"`
	Price     int64  `json:"price"`
	Timestamp int64  `json:"timestamp"`
}

// TickerStats summarizes one ticker's trading day.
type TickerStats struct {
	Ticker     string `json:"ticker"`
	Trades     int    `json:"trades"`
	BuyShares  int64  `json:"buy_shares"`
	SellShares int64  `json:"sell_shares"`
	Notional   int64  `json:"notional"`
	High       int64  `json:"high"`
	Low        int64  `json:"low"`
	First      int64  `json:"first"`
	Last       int64  `json:"last"`
}

// Status retrieves the broker status.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var status Status
	err := c.get(ctx, "/api/status", &status)
	return status, err
}

// Quote retrieves the current quote for a ticker.
func (c *Client) Quote(ctx context.Context, ticker string) (Quote, error) {
	var quote Quote
	err := c.get(ctx, "/api/quote/"+ticker, &quote)
	return quote, err
}

// Executions retrieves the executions journaled on a date (YYYY-MM-DD).
func (c *Client) Executions(ctx context.Context, date string) ([]Execution, error) {
	var resp struct {
		Executions []Execution `json:"executions"`
	}
	if err := c.get(ctx, "/api/executions/"+date, &resp); err != nil {
		return nil, err
	}
	return resp.Executions, nil
}

// Stats retrieves per-ticker summaries for a date (YYYY-MM-DD).
func (c *Client) Stats(ctx context.Context, date string) ([]TickerStats, error) {
	var resp struct {
		Tickers []TickerStats `json:"tickers"`
	}
	if err := c.get(ctx, "/api/stats/"+date, &resp); err != nil {
		return nil, err
	}
	return resp.Tickers, nil
}

// get performs one GET round trip, decoding the JSON body into v. Non-2xx
// responses are surfaced with the server's error message when present.
func (c *Client) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", path, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&body) == nil && body.Error != "" {
			return fmt.Errorf("GET %s: %s (status %d)", path, body.Error, resp.StatusCode)
		}
		return fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response to %s: %w", path, err)
	}
	return nil
}
