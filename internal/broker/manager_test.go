package broker

import (
	"testing"

	"brokersim/internal/domain"
)

// Stop-buy behavior around threshold moves: orders whose stop price is at or
// below the new price dispatch; the rest stay queued.
func TestOrderManagerStopBuyDispatch(t *testing.T) {
	m := NewOrderManager("MSFT", 500)

	for _, spec := range []struct{ shares, price int }{
		{50, 900},
		{50, 1000},
		{30, 600},
		{40, 600},
	} {
		if err := m.QueueOrder(stopBuy(t, spec.shares, spec.price)); err != nil {
			t.Fatalf("QueueOrder: %v", err)
		}
	}
	if got := m.StopBuyQueue().Len(); got != 4 {
		t.Fatalf("stop-buy queue length = %d, want 4", got)
	}

	// Price falls: buys trigger on price >= stop price, so nothing moves.
	m.AdjustPrice(400)
	if got := m.StopBuyQueue().Len(); got != 4 {
		t.Errorf("after AdjustPrice(400) length = %d, want 4", got)
	}

	// Price climbs past all but the 1000 stop.
	m.AdjustPrice(950)
	if got := m.StopBuyQueue().Len(); got != 1 {
		t.Errorf("after AdjustPrice(950) length = %d, want 1", got)
	}
	remaining := m.StopBuyQueue().Orders()
	if len(remaining) != 1 || remaining[0].Price != 1000 {
		t.Errorf("remaining order = %v, want the 1000 stop", remaining)
	}
}

func TestOrderManagerStopSellDispatch(t *testing.T) {
	m := NewOrderManager("MSFT", 500)

	for _, spec := range []struct{ shares, price int }{
		{50, 400},
		{50, 450},
		{30, 450},
		{40, 350},
	} {
		if err := m.QueueOrder(stopSell(t, spec.shares, spec.price)); err != nil {
			t.Fatalf("QueueOrder: %v", err)
		}
	}
	if got := m.StopSellQueue().Len(); got != 4 {
		t.Fatalf("stop-sell queue length = %d, want 4", got)
	}

	// Sells trigger on price <= stop price: the 450s and the 400 go, the 350
	// stays.
	m.AdjustPrice(400)
	if got := m.StopSellQueue().Len(); got != 1 {
		t.Errorf("after AdjustPrice(400) length = %d, want 1", got)
	}
	remaining := m.StopSellQueue().Orders()
	if len(remaining) != 1 || remaining[0].Price != 350 {
		t.Errorf("remaining order = %v, want the 350 stop", remaining)
	}
}

func TestOrderManagerDispatchOrder(t *testing.T) {
	// Seeded above every stop so nothing fires on enqueue.
	m := NewOrderManager("MSFT", 500)

	var dispatched []*domain.Order
	m.SetSellOrderProcessor(func(o *domain.Order) { dispatched = append(dispatched, o) })

	lo := stopSell(t, 10, 400)
	hiSmall := stopSell(t, 30, 450)
	hiBig := stopSell(t, 50, 450)
	m.QueueOrder(lo)
	m.QueueOrder(hiSmall)
	m.QueueOrder(hiBig)
	if len(dispatched) != 0 {
		t.Fatalf("dispatched %d orders at price 500, want 0", len(dispatched))
	}

	// Drop through all of them at once.
	m.AdjustPrice(300)

	want := []*domain.Order{hiBig, hiSmall, lo}
	if len(dispatched) != len(want) {
		t.Fatalf("dispatched %d orders, want %d", len(dispatched), len(want))
	}
	for i, o := range want {
		if dispatched[i] != o {
			t.Errorf("dispatch[%d] = %v, want %v (highest stop first, more shares first)", i, dispatched[i], o)
		}
	}
}

func TestOrderManagerRejectsMarketOrders(t *testing.T) {
	m := NewOrderManager("MSFT", 100)
	if err := m.QueueOrder(marketBuy(t, 10)); err == nil {
		t.Error("QueueOrder accepted a market order, want error")
	}
}

func TestOrderManagerSymbol(t *testing.T) {
	m := NewOrderManager("BA", 100)
	if got := m.Symbol(); got != "BA" {
		t.Errorf("Symbol() = %q, want %q", got, "BA")
	}
}
