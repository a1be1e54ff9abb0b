package exchange

import "sync"

// EventType identifies an exchange-wide event.
type EventType int

const (
	Opened EventType = iota
	Closed
	PriceChanged
)

// String returns the name of the event type.
func (t EventType) String() string {
	switch t {
	case Opened:
		return "opened"
	case Closed:
		return "closed"
	case PriceChanged:
		return "price-changed"
	default:
		return "unknown"
	}
}

// Event is a tagged exchange event. Ticker and Price are only meaningful for
// PriceChanged events.
type Event struct {
	Type   EventType
	Ticker string
	Price  int
}

// Listener receives exchange events. Callbacks are invoked synchronously and
// in delivery order; slow listeners delay subsequent events.
type Listener interface {
	ExchangeOpened(evt Event)
	ExchangeClosed(evt Event)
	PriceChanged(evt Event)
}

// hub is the publish/subscribe registry shared by the simulated exchange and
// the network proxy.
type hub struct {
	mu        sync.Mutex
	listeners []Listener
}

func (h *hub) add(l Listener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, existing := range h.listeners {
		if existing == l {
			return
		}
	}
	h.listeners = append(h.listeners, l)
}

func (h *hub) remove(l Listener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, existing := range h.listeners {
		if existing == l {
			h.listeners = append(h.listeners[:i], h.listeners[i+1:]...)
			return
		}
	}
}

// publish delivers the event to every listener, in registration order. The
// listener slice is snapshotted so callbacks may add or remove listeners
// without deadlocking.
func (h *hub) publish(evt Event) {
	h.mu.Lock()
	snapshot := make([]Listener, len(h.listeners))
	copy(snapshot, h.listeners)
	h.mu.Unlock()

	for _, l := range snapshot {
		deliver(l, evt)
	}
}

func deliver(l Listener, evt Event) {
	switch evt.Type {
	case Opened:
		l.ExchangeOpened(evt)
	case Closed:
		l.ExchangeClosed(evt)
	case PriceChanged:
		l.PriceChanged(evt)
	}
}
