// Package exchange defines the stock exchange abstraction, its event model,
// an in-memory simulated exchange, and the text protocol that exposes an
// exchange over TCP (commands) and UDP multicast (events).
package exchange

import (
	"errors"

	"brokersim/internal/domain"
)

// ErrUnknownTicker indicates the requested symbol is not listed. The network
// protocol keeps -1 as its wire sentinel; at the API level an unknown ticker
// is always this error, never a sentinel price.
var ErrUnknownTicker = errors.New("ticker not listed on exchange")

// StockExchange is the trading authority the broker executes against. It may
// be local (Simulated) or remote (Proxy).
type StockExchange interface {
	// IsOpen reports whether the exchange is accepting trades.
	IsOpen() bool

	// Tickers returns the symbols of all listed stocks.
	Tickers() []string

	// Quote returns the current price for the given symbol.
	Quote(ticker string) (domain.Quote, error)

	// ExecuteTrade executes the order and returns the execution price in cents.
	ExecuteTrade(order *domain.Order) (int, error)

	// AddListener registers a listener for exchange events.
	AddListener(l Listener)

	// RemoveListener deregisters a previously added listener.
	RemoveListener(l Listener)
}
