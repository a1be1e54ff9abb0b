// Package domain defines the order model and quote types shared by the
// broker, exchange, and storage layers.
package domain

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// OrderKind identifies one of the four order variants.
type OrderKind int

const (
	MarketBuy OrderKind = iota
	MarketSell
	StopBuy
	StopSell
)

// String returns the lower-case name of the order kind.
func (k OrderKind) String() string {
	switch k {
	case MarketBuy:
		return "market-buy"
	case MarketSell:
		return "market-sell"
	case StopBuy:
		return "stop-buy"
	case StopSell:
		return "stop-sell"
	default:
		return fmt.Sprintf("OrderKind(%d)", int(k))
	}
}

var (
	// ErrBadShares indicates a non-positive share count.
	ErrBadShares = errors.New("order shares must be positive")

	// ErrBadPrice indicates a negative stop price.
	ErrBadPrice = errors.New("stop price must be non-negative")
)

// orderIDs allocates the monotonically increasing order identifiers used as
// the final comparator tie-break.
var orderIDs atomic.Int64

// nextOrderID returns the next order identifier.
func nextOrderID() int64 {
	return orderIDs.Add(1)
}

// Order is a single order of any kind. Price is the stop price in cents and
// is only meaningful for stop orders.
type Order struct {
	ID        int64
	Kind      OrderKind
	AccountID string
	Ticker    string
	Shares    int
	Price     int
}

func newOrder(kind OrderKind, accountID, ticker string, shares, price int) (*Order, error) {
	if shares <= 0 {
		return nil, ErrBadShares
	}
	if price < 0 {
		return nil, ErrBadPrice
	}
	return &Order{
		ID:        nextOrderID(),
		Kind:      kind,
		AccountID: accountID,
		Ticker:    ticker,
		Shares:    shares,
		Price:     price,
	}, nil
}

// NewMarketBuy creates a market buy order.
func NewMarketBuy(accountID, ticker string, shares int) (*Order, error) {
	return newOrder(MarketBuy, accountID, ticker, shares, 0)
}

// NewMarketSell creates a market sell order.
func NewMarketSell(accountID, ticker string, shares int) (*Order, error) {
	return newOrder(MarketSell, accountID, ticker, shares, 0)
}

// NewStopBuy creates a stop buy order with the given stop price in cents.
func NewStopBuy(accountID, ticker string, shares, price int) (*Order, error) {
	return newOrder(StopBuy, accountID, ticker, shares, price)
}

// NewStopSell creates a stop sell order with the given stop price in cents.
func NewStopSell(accountID, ticker string, shares, price int) (*Order, error) {
	return newOrder(StopSell, accountID, ticker, shares, price)
}

// IsBuy reports whether the order buys shares.
func (o *Order) IsBuy() bool {
	return o.Kind == MarketBuy || o.Kind == StopBuy
}

// IsStop reports whether the order is threshold-triggered.
func (o *Order) IsStop() bool {
	return o.Kind == StopBuy || o.Kind == StopSell
}

// ValueAt returns the signed effect of executing the order at the given price
// on the owning account's balance, in cents. Buys debit, sells credit.
func (o *Order) ValueAt(executionPrice int) int {
	v := o.Shares * executionPrice
	if o.IsBuy() {
		return -v
	}
	return v
}

// ToMarket converts a dispatched stop order into the corresponding market
// order, preserving account, ticker, and shares under a fresh order ID.
// Market orders are returned unchanged.
func (o *Order) ToMarket() *Order {
	switch o.Kind {
	case StopBuy:
		return &Order{ID: nextOrderID(), Kind: MarketBuy, AccountID: o.AccountID, Ticker: o.Ticker, Shares: o.Shares}
	case StopSell:
		return &Order{ID: nextOrderID(), Kind: MarketSell, AccountID: o.AccountID, Ticker: o.Ticker, Shares: o.Shares}
	default:
		return o
	}
}

// String renders the order for logs.
func (o *Order) String() string {
	if o.IsStop() {
		return fmt.Sprintf("%s #%d %s %d@stop:%d acct:%s", o.Kind, o.ID, o.Ticker, o.Shares, o.Price, o.AccountID)
	}
	return fmt.Sprintf("%s #%d %s x%d acct:%s", o.Kind, o.ID, o.Ticker, o.Shares, o.AccountID)
}

// Quote is a point-in-time price for a ticker, in cents.
type Quote struct {
	Ticker string
	Price  int
}
