// Package broker implements the order management and dispatch engine: the
// threshold-gated order queues, the per-symbol order managers, and the broker
// that routes orders, reacts to exchange events, and settles executions
// against accounts.
package broker

import (
	"sync"

	"github.com/tidwall/btree"

	"brokersim/internal/domain"
)

// DispatchFilter reports whether an order is eligible for dispatch under the
// current threshold.
type DispatchFilter[T any] func(threshold T, order *domain.Order) bool

// Processor consumes orders removed from a queue by dispatch.
type Processor func(order *domain.Order)

// Queue is a threshold-gated ordered collection of pending orders. The head
// of the queue, per the less function, is always the single best dispatch
// candidate. All operations on one queue serialize on its mutex; processors
// run inside the critical section, so a processor must never call back into
// the same queue.
type Queue[T any] struct {
	mu        sync.Mutex
	orders    *btree.BTreeG[*domain.Order]
	threshold T
	filter    DispatchFilter[T]
	processor Processor
}

// NewQueue creates a queue with the given initial threshold, dispatch filter,
// and ordering. The less function must fall through to the order ID so that
// distinct orders never compare equal; re-enqueueing an order with the same
// ID replaces it rather than duplicating it.
func NewQueue[T any](threshold T, filter DispatchFilter[T], less func(a, b *domain.Order) bool) *Queue[T] {
	return &Queue[T]{
		orders:    btree.NewBTreeG(less),
		threshold: threshold,
		filter:    filter,
	}
}

// Enqueue inserts the order and dispatches every currently eligible order.
func (q *Queue[T]) Enqueue(order *domain.Order) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.orders.Set(order)
	q.dispatchLocked()
}

// Dequeue removes and returns the best candidate if it passes the dispatch
// filter. It never blocks: with no eligible candidate it returns (nil, false)
// and leaves the queue untouched.
func (q *Queue[T]) Dequeue() (*domain.Order, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dequeueLocked()
}

func (q *Queue[T]) dequeueLocked() (*domain.Order, bool) {
	head, ok := q.orders.Min()
	if !ok || !q.filter(q.threshold, head) {
		return nil, false
	}
	q.orders.Delete(head)
	return head, true
}

// DispatchOrders drains all currently eligible orders, handing each to the
// registered processor. With no processor registered, eligible orders are
// removed and dropped; that is the valid state before wiring completes.
func (q *Queue[T]) DispatchOrders() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.dispatchLocked()
}

func (q *Queue[T]) dispatchLocked() {
	for {
		order, ok := q.dequeueLocked()
		if !ok {
			return
		}
		if q.processor != nil {
			q.processor(order)
		}
	}
}

// SetThreshold replaces the threshold and immediately re-dispatches. This is
// the sole path by which external price and state changes cause dispatch.
func (q *Queue[T]) SetThreshold(threshold T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.threshold = threshold
	q.dispatchLocked()
}

// Threshold returns the current threshold value.
func (q *Queue[T]) Threshold() T {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.threshold
}

// SetOrderProcessor replaces the processor used by subsequent dispatches.
func (q *Queue[T]) SetOrderProcessor(p Processor) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.processor = p
}

// Len returns the number of pending orders.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.orders.Len()
}

// Orders returns a snapshot of the pending orders in queue order.
func (q *Queue[T]) Orders() []*domain.Order {
	q.mu.Lock()
	defer q.mu.Unlock()
	snapshot := make([]*domain.Order, 0, q.orders.Len())
	q.orders.Scan(func(o *domain.Order) bool {
		snapshot = append(snapshot, o)
		return true
	})
	return snapshot
}

// stopBuyLess orders stop-buy candidates: the lowest stop price is the first
// satisfied as the market climbs, so it dispatches first. Ties break by
// descending shares, then ascending order ID.
func stopBuyLess(a, b *domain.Order) bool {
	if a.Price != b.Price {
		return a.Price < b.Price
	}
	if a.Shares != b.Shares {
		return a.Shares > b.Shares
	}
	return a.ID < b.ID
}

// stopSellLess orders stop-sell candidates: the highest stop price is the
// first satisfied as the market falls. Ties break by descending shares, then
// ascending order ID.
func stopSellLess(a, b *domain.Order) bool {
	if a.Price != b.Price {
		return a.Price > b.Price
	}
	if a.Shares != b.Shares {
		return a.Shares > b.Shares
	}
	return a.ID < b.ID
}

// marketLess orders market orders by creation.
func marketLess(a, b *domain.Order) bool {
	return a.ID < b.ID
}

// stopBuyFilter fires once the market price reaches the stop price.
func stopBuyFilter(price int, order *domain.Order) bool {
	return price > 0 && price >= order.Price
}

// stopSellFilter fires once the market price falls to the stop price.
func stopSellFilter(price int, order *domain.Order) bool {
	return price > 0 && price <= order.Price
}

// marketFilter fires whenever the exchange is open.
func marketFilter(open bool, _ *domain.Order) bool {
	return open
}
