package broker

import (
	"fmt"
	"log/slog"

	"brokersim/internal/account"
	"brokersim/internal/domain"
	"brokersim/internal/exchange"
	"brokersim/internal/store"
)

// Compile-time interface check.
var _ exchange.Listener = (*Broker)(nil)

// Broker accepts orders on behalf of accounts, owns one OrderManager per
// listed symbol plus the shared market-order queue, and settles executed
// trades into accounts. It listens for exchange events: open and close gate
// the market queue, price changes re-evaluate the matching symbol's stop
// queues.
type Broker struct {
	name     string
	accounts *account.Manager
	exchange exchange.StockExchange
	managers map[string]*OrderManager
	market   *Queue[bool]
	journal  *store.TradeJournal
	log      *slog.Logger
}

// New constructs a broker ready to accept orders: it enumerates every ticker
// the exchange lists, seeds one OrderManager per ticker with its current
// quote, wires dispatched stop orders to re-enter the market queue as market
// orders, wires market dispatch to execution, and registers for exchange
// events. journal may be nil to disable trade journaling.
func New(name string, accounts *account.Manager, ex exchange.StockExchange, journal *store.TradeJournal, log *slog.Logger) *Broker {
	b := &Broker{
		name:     name,
		accounts: accounts,
		exchange: ex,
		managers: make(map[string]*OrderManager),
		market:   NewQueue(ex.IsOpen(), marketFilter, marketLess),
		journal:  journal,
		log:      log,
	}
	b.market.SetOrderProcessor(b.executeOrder)

	toMarket := func(order *domain.Order) {
		b.market.Enqueue(order.ToMarket())
	}
	for _, ticker := range ex.Tickers() {
		quote, err := ex.Quote(ticker)
		if err != nil {
			// A ticker listed a moment ago may already be gone; skip it.
			log.Warn("no quote for listed ticker, skipping", "ticker", ticker, "err", err)
			continue
		}
		m := NewOrderManager(quote.Ticker, quote.Price)
		m.SetBuyOrderProcessor(toMarket)
		m.SetSellOrderProcessor(toMarket)
		b.managers[quote.Ticker] = m
		log.Info("order manager created", "ticker", quote.Ticker, "price", quote.Price)
	}

	ex.AddListener(b)
	return b
}

// Name returns the broker's name.
func (b *Broker) Name() string {
	return b.name
}

// Close deregisters the broker from the exchange and releases the account
// manager's resources. The broker must not be used afterwards.
func (b *Broker) Close() error {
	b.exchange.RemoveListener(b)
	if err := b.accounts.Close(); err != nil {
		return fmt.Errorf("broker %s: close accounts: %w", b.name, err)
	}
	return nil
}

// CreateAccount creates and persists a new account.
func (b *Broker) CreateAccount(name, password string, balance int) (*account.Account, error) {
	return b.accounts.CreateAccount(name, password, balance)
}

// GetAccount looks up an account and validates the password. The failure
// causes are distinguishable: account.ErrNotFound for a missing account,
// account.ErrBadCredentials for a password mismatch.
func (b *Broker) GetAccount(name, password string) (*account.Account, error) {
	acct, err := b.accounts.Account(name)
	if err != nil {
		return nil, err
	}
	if err := b.accounts.ValidateLogin(name, password); err != nil {
		return nil, err
	}
	return acct, nil
}

// DeleteAccount removes the account from the store.
func (b *Broker) DeleteAccount(name string) error {
	return b.accounts.DeleteAccount(name)
}

// PlaceOrder routes the order to the shared market queue or to the order
// manager for its ticker. Stop orders on a ticker this broker does not manage
// fail with exchange.ErrUnknownTicker.
func (b *Broker) PlaceOrder(order *domain.Order) error {
	switch order.Kind {
	case domain.MarketBuy, domain.MarketSell:
		b.market.Enqueue(order)
	case domain.StopBuy, domain.StopSell:
		m, ok := b.managers[order.Ticker]
		if !ok {
			return fmt.Errorf("broker %s: place %s for %s: %w", b.name, order.Kind, order.Ticker, exchange.ErrUnknownTicker)
		}
		if err := m.QueueOrder(order); err != nil {
			return err
		}
		b.log.Info("stop order queued", "order", order.String())
	default:
		return fmt.Errorf("broker %s: unknown order kind %d", b.name, int(order.Kind))
	}
	ordersPlaced.WithLabelValues(order.Kind.String()).Inc()
	return nil
}

// RequestQuote returns the current quote for the ticker.
func (b *Broker) RequestQuote(ticker string) (domain.Quote, error) {
	return b.exchange.Quote(ticker)
}

// ExchangeOpen reports whether the exchange is currently open.
func (b *Broker) ExchangeOpen() bool {
	return b.exchange.IsOpen()
}

// Tickers returns the symbols listed on the exchange.
func (b *Broker) Tickers() []string {
	return b.exchange.Tickers()
}

// ExchangeOpened opens the market-queue gate, dispatching all pending market
// orders.
func (b *Broker) ExchangeOpened(exchange.Event) {
	b.log.Info("exchange opened")
	b.market.SetThreshold(true)
}

// ExchangeClosed closes the market-queue gate.
func (b *Broker) ExchangeClosed(exchange.Event) {
	b.log.Info("exchange closed")
	b.market.SetThreshold(false)
}

// PriceChanged forwards the new price to the symbol's order manager.
func (b *Broker) PriceChanged(evt exchange.Event) {
	m, ok := b.managers[evt.Ticker]
	if !ok {
		b.log.Warn("price change for unmanaged ticker", "ticker", evt.Ticker)
		return
	}
	m.AdjustPrice(evt.Price)
}

// executeOrder is the market queue's processor: it executes the dispatched
// order against the exchange and reflects the result into the owning account.
// Failures here are logged and counted, never retried; the order has already
// left its queue.
func (b *Broker) executeOrder(order *domain.Order) {
	price, err := b.exchange.ExecuteTrade(order)
	if err != nil {
		b.log.Error("trade execution failed", "order", order.String(), "err", err)
		executionFailures.WithLabelValues("trade").Inc()
		return
	}

	acct, err := b.accounts.Account(order.AccountID)
	if err != nil {
		b.log.Error("cannot settle trade, account lookup failed",
			"order", order.String(), "price", price, "err", err)
		executionFailures.WithLabelValues("account").Inc()
		return
	}
	if err := acct.ReflectOrder(order, price); err != nil {
		b.log.Error("cannot settle trade, account update failed",
			"order", order.String(), "price", price, "err", err)
		executionFailures.WithLabelValues("settle").Inc()
		return
	}

	ordersExecuted.Inc()
	b.log.Info("order executed", "order", order.String(), "price", price)

	if b.journal != nil {
		if err := b.journal.Append(store.NewExecutionRecord(order, price)); err != nil {
			b.log.Error("trade journal append failed", "order", order.String(), "err", err)
			executionFailures.WithLabelValues("journal").Inc()
		}
	}
}

// MarketQueue exposes the shared market-order queue for inspection.
func (b *Broker) MarketQueue() *Queue[bool] {
	return b.market
}

// OrderManagerFor returns the order manager for the ticker, if any.
func (b *Broker) OrderManagerFor(ticker string) (*OrderManager, bool) {
	m, ok := b.managers[ticker]
	return m, ok
}
