package broker

import (
	"sync"
	"testing"

	"brokersim/internal/domain"
)

func stopBuy(t *testing.T, shares, price int) *domain.Order {
	t.Helper()
	o, err := domain.NewStopBuy("acct0001", "MSFT", shares, price)
	if err != nil {
		t.Fatalf("NewStopBuy(%d, %d): %v", shares, price, err)
	}
	return o
}

func stopSell(t *testing.T, shares, price int) *domain.Order {
	t.Helper()
	o, err := domain.NewStopSell("acct0001", "MSFT", shares, price)
	if err != nil {
		t.Fatalf("NewStopSell(%d, %d): %v", shares, price, err)
	}
	return o
}

func marketBuy(t *testing.T, shares int) *domain.Order {
	t.Helper()
	o, err := domain.NewMarketBuy("acct0001", "MSFT", shares)
	if err != nil {
		t.Fatalf("NewMarketBuy(%d): %v", shares, err)
	}
	return o
}

func TestStopBuyQueueOrdering(t *testing.T) {
	q := NewQueue(500, stopBuyFilter, stopBuyLess)

	big600 := stopBuy(t, 40, 600)
	small600 := stopBuy(t, 30, 600)
	mid900 := stopBuy(t, 50, 900)

	// Enqueue in an order unrelated to the expected dispatch order. The
	// threshold of 500 keeps everything queued.
	q.Enqueue(mid900)
	q.Enqueue(small600)
	q.Enqueue(big600)

	var dispatched []*domain.Order
	q.SetOrderProcessor(func(o *domain.Order) { dispatched = append(dispatched, o) })
	q.SetThreshold(950)

	want := []*domain.Order{big600, small600, mid900}
	if len(dispatched) != len(want) {
		t.Fatalf("dispatched %d orders, want %d", len(dispatched), len(want))
	}
	for i, o := range want {
		if dispatched[i] != o {
			t.Errorf("dispatch[%d] = %v, want %v", i, dispatched[i], o)
		}
	}
}

func TestStopBuyQueueTieBreakByID(t *testing.T) {
	q := NewQueue(0, stopBuyFilter, stopBuyLess)

	first := stopBuy(t, 10, 700)
	second := stopBuy(t, 10, 700)
	q.Enqueue(second)
	q.Enqueue(first)

	var dispatched []*domain.Order
	q.SetOrderProcessor(func(o *domain.Order) { dispatched = append(dispatched, o) })
	q.SetThreshold(700)

	if len(dispatched) != 2 {
		t.Fatalf("dispatched %d orders, want 2", len(dispatched))
	}
	if dispatched[0] != first || dispatched[1] != second {
		t.Error("equal price and shares should dispatch in order-ID order")
	}
}

func TestDequeueLeavesIneligibleHead(t *testing.T) {
	q := NewQueue(100, stopBuyFilter, stopBuyLess)
	q.Enqueue(stopBuy(t, 10, 500))

	if o, ok := q.Dequeue(); ok {
		t.Fatalf("Dequeue returned %v below threshold, want none", o)
	}
	if q.Len() != 1 {
		t.Errorf("queue length = %d after failed dequeue, want 1", q.Len())
	}

	q.SetThreshold(500)
	if q.Len() != 0 {
		t.Errorf("queue length = %d after threshold raise, want 0", q.Len())
	}
}

func TestZeroPriceDispatchesNothing(t *testing.T) {
	buys := NewQueue(0, stopBuyFilter, stopBuyLess)
	buys.Enqueue(stopBuy(t, 10, 0))
	if buys.Len() != 1 {
		t.Errorf("stop-buy with stop price 0 dispatched at price 0; a zero price must gate dispatch")
	}

	sells := NewQueue(0, stopSellFilter, stopSellLess)
	sells.Enqueue(stopSell(t, 10, 500))
	if sells.Len() != 1 {
		t.Errorf("stop-sell dispatched at price 0; a zero price must gate dispatch")
	}
}

func TestMarketQueueGating(t *testing.T) {
	q := NewQueue(false, marketFilter, marketLess)

	var dispatched []*domain.Order
	q.SetOrderProcessor(func(o *domain.Order) { dispatched = append(dispatched, o) })

	orders := []*domain.Order{marketBuy(t, 1), marketBuy(t, 2), marketBuy(t, 3)}
	for _, o := range orders {
		q.Enqueue(o)
	}
	if len(dispatched) != 0 {
		t.Fatalf("dispatched %d orders while closed, want 0", len(dispatched))
	}
	if q.Len() != 3 {
		t.Fatalf("queue length = %d, want 3", q.Len())
	}

	q.SetThreshold(true)
	if len(dispatched) != 3 {
		t.Fatalf("dispatched %d orders after open, want 3", len(dispatched))
	}
	for i, o := range orders {
		if dispatched[i] != o {
			t.Errorf("dispatch[%d] = %v, want creation order", i, dispatched[i])
		}
	}
}

func TestDispatchIdempotent(t *testing.T) {
	q := NewQueue(true, marketFilter, marketLess)

	count := 0
	q.SetOrderProcessor(func(*domain.Order) { count++ })
	q.Enqueue(marketBuy(t, 5))

	if count != 1 {
		t.Fatalf("processor ran %d times, want 1", count)
	}
	q.DispatchOrders()
	q.DispatchOrders()
	if count != 1 {
		t.Errorf("processor ran %d times after repeat dispatch, want 1", count)
	}
}

func TestEnqueueSameOrderTwice(t *testing.T) {
	q := NewQueue(100, stopBuyFilter, stopBuyLess)
	o := stopBuy(t, 10, 500)
	q.Enqueue(o)
	q.Enqueue(o)
	if q.Len() != 1 {
		t.Errorf("queue length = %d after duplicate enqueue, want 1", q.Len())
	}
}

func TestNilProcessorDropsDispatchedOrders(t *testing.T) {
	q := NewQueue(true, marketFilter, marketLess)
	q.Enqueue(marketBuy(t, 1))
	if q.Len() != 0 {
		t.Errorf("queue length = %d, want 0: eligible orders drop even without a processor", q.Len())
	}
}

func TestConcurrentEnqueueAndThreshold(t *testing.T) {
	const n = 200

	q := NewQueue(0, stopBuyFilter, stopBuyLess)

	var mu sync.Mutex
	dispatched := make(map[int64]int)
	q.SetOrderProcessor(func(o *domain.Order) {
		mu.Lock()
		dispatched[o.ID]++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		o := stopBuy(t, 1, 100+i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Enqueue(o)
		}()
		if i%10 == 0 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				q.SetThreshold(150)
			}()
		}
	}
	wg.Wait()
	q.SetThreshold(100 + n)

	mu.Lock()
	defer mu.Unlock()
	if len(dispatched) != n {
		t.Fatalf("%d distinct orders dispatched, want %d", len(dispatched), n)
	}
	for id, times := range dispatched {
		if times != 1 {
			t.Errorf("order %d dispatched %d times, want exactly once", id, times)
		}
	}
	if q.Len() != 0 {
		t.Errorf("queue length = %d after final dispatch, want 0", q.Len())
	}
}
