package httpapi

// StatusResponse describes the broker and its exchange connection.
type StatusResponse struct {
	Broker       string   `json:"broker"`
	ExchangeOpen bool     `json:"exchange_open"`
	Tickers      []string `json:"tickers"`
}

// QuoteResponse is one ticker's current price in cents.
type QuoteResponse struct {
	Ticker string `json:"ticker"`
	Price  int    `json:"price"`
}

// ExecutionJSON is one journaled execution.
type ExecutionJSON struct {
	OrderID   int64  `json:"order_id"`
	AccountID string `json:"account_id"`
	Ticker    string `json:"ticker"`
	Side      string `json:"side"`
	Shares    int64  `json:"shares"`
	Price     int64  `json:"price"`
	Timestamp int64  `json:"timestamp"`
}

// ExecutionsResponse lists one day's executions.
type ExecutionsResponse struct {
	Date       string          `json:"date"`
	Executions []ExecutionJSON `json:"executions"`
}

// TickerStatsJSON summarizes one ticker's day.
type TickerStatsJSON struct {
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

// StatsResponse lists per-ticker summaries for one day.
type StatsResponse struct {
	Date    string            `json:"date"`
	Tickers []TickerStatsJSON `json:"tickers"`
}
