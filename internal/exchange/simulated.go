package exchange

import (
	"log/slog"
	"sort"
	"sync"

	"brokersim/internal/domain"
)

// Compile-time interface check.
var _ StockExchange = (*Simulated)(nil)

// Simulated is an in-memory exchange. Prices and open/closed state are driven
// externally via SetPrice, Open, and Close; each change is published to all
// registered listeners.
type Simulated struct {
	mu     sync.RWMutex
	open   bool
	prices map[string]int

	hub hub
	log *slog.Logger
}

// NewSimulated creates a closed exchange listing the given tickers at their
// starting prices, in cents.
func NewSimulated(prices map[string]int, log *slog.Logger) *Simulated {
	listed := make(map[string]int, len(prices))
	for ticker, price := range prices {
		listed[ticker] = price
	}
	return &Simulated{prices: listed, log: log}
}

// IsOpen reports whether the exchange is open for trading.
func (s *Simulated) IsOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.open
}

// Tickers returns all listed symbols in lexical order.
func (s *Simulated) Tickers() []string {
	s.mu.RLock()
	tickers := make([]string, 0, len(s.prices))
	for ticker := range s.prices {
		tickers = append(tickers, ticker)
	}
	s.mu.RUnlock()

	sort.Strings(tickers)
	return tickers
}

// Quote returns the current price for the symbol.
func (s *Simulated) Quote(ticker string) (domain.Quote, error) {
	s.mu.RLock()
	price, ok := s.prices[ticker]
	s.mu.RUnlock()
	if !ok {
		return domain.Quote{}, ErrUnknownTicker
	}
	return domain.Quote{Ticker: ticker, Price: price}, nil
}

// ExecuteTrade fills the order at the symbol's current price and returns that
// price. The exchange supplies the price unconditionally; gating execution on
// the open state is the broker's responsibility.
func (s *Simulated) ExecuteTrade(order *domain.Order) (int, error) {
	s.mu.RLock()
	price, ok := s.prices[order.Ticker]
	s.mu.RUnlock()
	if !ok {
		return 0, ErrUnknownTicker
	}
	s.log.Info("trade executed", "order", order.String(), "price", price)
	return price, nil
}

// AddListener registers a listener for exchange events.
func (s *Simulated) AddListener(l Listener) {
	s.hub.add(l)
}

// RemoveListener deregisters a listener.
func (s *Simulated) RemoveListener(l Listener) {
	s.hub.remove(l)
}

// Open marks the exchange open and notifies listeners. No-op if already open.
func (s *Simulated) Open() {
	s.mu.Lock()
	if s.open {
		s.mu.Unlock()
		return
	}
	s.open = true
	s.mu.Unlock()

	s.log.Info("exchange opened")
	s.hub.publish(Event{Type: Opened})
}

// Close marks the exchange closed and notifies listeners. No-op if already
// closed.
func (s *Simulated) Close() {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return
	}
	s.open = false
	s.mu.Unlock()

	s.log.Info("exchange closed")
	s.hub.publish(Event{Type: Closed})
}

// SetPrice updates the symbol's price and notifies listeners.
func (s *Simulated) SetPrice(ticker string, price int) error {
	s.mu.Lock()
	if _, ok := s.prices[ticker]; !ok {
		s.mu.Unlock()
		return ErrUnknownTicker
	}
	s.prices[ticker] = price
	s.mu.Unlock()

	s.hub.publish(Event{Type: PriceChanged, Ticker: ticker, Price: price})
	return nil
}
