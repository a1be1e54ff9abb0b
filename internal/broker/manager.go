package broker

import (
	"fmt"

	"brokersim/internal/domain"
)

// OrderManager owns the two stop-order queues for one ticker symbol. It holds
// no state of its own beyond the symbol; everything lives in the queues.
type OrderManager struct {
	symbol   string
	stopBuy  *Queue[int]
	stopSell *Queue[int]
}

// NewOrderManager creates a manager for the symbol with both queues seeded at
// the symbol's current price, in cents.
func NewOrderManager(symbol string, price int) *OrderManager {
	return &OrderManager{
		symbol:   symbol,
		stopBuy:  NewQueue(price, stopBuyFilter, stopBuyLess),
		stopSell: NewQueue(price, stopSellFilter, stopSellLess),
	}
}

// Symbol returns the managed ticker.
func (m *OrderManager) Symbol() string {
	return m.symbol
}

// QueueOrder enqueues a stop order into the queue for its side. Market orders
// belong in the broker's shared market queue and are rejected here.
func (m *OrderManager) QueueOrder(order *domain.Order) error {
	switch order.Kind {
	case domain.StopBuy:
		m.stopBuy.Enqueue(order)
		return nil
	case domain.StopSell:
		m.stopSell.Enqueue(order)
		return nil
	default:
		return fmt.Errorf("order manager %s: cannot queue %s order", m.symbol, order.Kind)
	}
}

// AdjustPrice sets the new price as the threshold on both queues, dispatching
// every order that is now eligible on each side.
func (m *OrderManager) AdjustPrice(price int) {
	m.stopBuy.SetThreshold(price)
	m.stopSell.SetThreshold(price)
}

// SetBuyOrderProcessor wires the consumer of dispatched stop-buy orders.
func (m *OrderManager) SetBuyOrderProcessor(p Processor) {
	m.stopBuy.SetOrderProcessor(p)
}

// SetSellOrderProcessor wires the consumer of dispatched stop-sell orders.
func (m *OrderManager) SetSellOrderProcessor(p Processor) {
	m.stopSell.SetOrderProcessor(p)
}

// StopBuyQueue exposes the stop-buy queue for inspection.
func (m *OrderManager) StopBuyQueue() *Queue[int] {
	return m.stopBuy
}

// StopSellQueue exposes the stop-sell queue for inspection.
func (m *OrderManager) StopSellQueue() *Queue[int] {
	return m.stopSell
}
