package exchange

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"reflect"
	"strings"
	"testing"

	"brokersim/internal/domain"
)

// startPair wires a simulated exchange to an adapter on a loopback port and a
// proxy dialed to it. Events stay disabled so the tests do not depend on
// multicast support in the environment.
func startPair(t *testing.T, prices map[string]int) (*Simulated, *Proxy) {
	t.Helper()
	logger := testLogger()

	ex := NewSimulated(prices, logger)
	adapter, err := NewAdapter(ex, "127.0.0.1:0", "", logger)
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	t.Cleanup(func() { adapter.Close() })

	proxy, err := DialProxy(context.Background(), adapter.Addr().String(), "", logger)
	if err != nil {
		t.Fatalf("DialProxy: %v", err)
	}
	t.Cleanup(func() { proxy.Close() })

	return ex, proxy
}

func TestProxyState(t *testing.T) {
	ex, proxy := startPair(t, map[string]int{"MSFT": 41523})

	if proxy.IsOpen() {
		t.Error("IsOpen() = true against a closed exchange")
	}
	ex.Open()
	if !proxy.IsOpen() {
		t.Error("IsOpen() = false against an open exchange")
	}
}

func TestProxyTickers(t *testing.T) {
	_, proxy := startPair(t, map[string]int{"T": 1930, "BA": 36014, "MSFT": 41523})

	want := []string{"BA", "MSFT", "T"}
	if got := proxy.Tickers(); !reflect.DeepEqual(got, want) {
		t.Errorf("Tickers() = %v, want %v", got, want)
	}
}

func TestProxyQuote(t *testing.T) {
	_, proxy := startPair(t, map[string]int{"BA": 36014})

	quote, err := proxy.Quote("BA")
	if err != nil {
		t.Fatalf("Quote(BA): %v", err)
	}
	if quote.Ticker != "BA" || quote.Price != 36014 {
		t.Errorf("quote = %+v, want BA at 36014", quote)
	}

	if _, err := proxy.Quote("ZZZZ"); !errors.Is(err, ErrUnknownTicker) {
		t.Errorf("Quote(ZZZZ): err = %v, want ErrUnknownTicker", err)
	}
}

func TestProxyExecuteTrade(t *testing.T) {
	_, proxy := startPair(t, map[string]int{"MSFT": 41523})

	order, err := domain.NewMarketSell("seller99", "MSFT", 3)
	if err != nil {
		t.Fatalf("NewMarketSell: %v", err)
	}
	price, err := proxy.ExecuteTrade(order)
	if err != nil {
		t.Fatalf("ExecuteTrade: %v", err)
	}
	if price != 41523 {
		t.Errorf("execution price = %d, want 41523", price)
	}

	unknown, _ := domain.NewMarketSell("seller99", "ZZZZ", 3)
	if _, err := proxy.ExecuteTrade(unknown); !errors.Is(err, ErrUnknownTicker) {
		t.Errorf("ExecuteTrade(ZZZZ): err = %v, want ErrUnknownTicker", err)
	}
}

func TestProxySequentialCommands(t *testing.T) {
	// Many round trips over the single connection.
	_, proxy := startPair(t, map[string]int{"MSFT": 41523})

	for i := 0; i < 20; i++ {
		quote, err := proxy.Quote("MSFT")
		if err != nil {
			t.Fatalf("Quote round trip %d: %v", i, err)
		}
		if quote.Price != 41523 {
			t.Fatalf("Quote round trip %d: price = %d", i, quote.Price)
		}
	}
}

// TestAdapterRawProtocol exercises the adapter with hand-written command
// lines, the way a non-Go client would.
func TestAdapterRawProtocol(t *testing.T) {
	logger := testLogger()
	ex := NewSimulated(map[string]int{"BA": 36014, "F": 1189}, logger)
	adapter, err := NewAdapter(ex, "127.0.0.1:0", "", logger)
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	t.Cleanup(func() { adapter.Close() })

	conn, err := net.Dial("tcp", adapter.Addr().String())
	if err != nil {
		t.Fatalf("dial adapter: %v", err)
	}
	defer conn.Close()
	reader := bufio.NewReader(conn)

	roundTrip := func(cmd string) string {
		t.Helper()
		if _, err := fmt.Fprintln(conn, cmd); err != nil {
			t.Fatalf("send %q: %v", cmd, err)
		}
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read response to %q: %v", cmd, err)
		}
		return strings.TrimSpace(line)
	}

	if got := roundTrip("GET_STATE_CMD"); got != "CLOSED_STATE" {
		t.Errorf("GET_STATE_CMD = %q, want CLOSED_STATE", got)
	}
	if got := roundTrip("GET_TICKERS_CMD"); got != "BA:F" {
		t.Errorf("GET_TICKERS_CMD = %q, want BA:F", got)
	}
	if got := roundTrip("GET_QUOTE_CMD:BA"); got != "36014" {
		t.Errorf("GET_QUOTE_CMD:BA = %q, want 36014", got)
	}
	if got := roundTrip("GET_QUOTE_CMD:ZZZZ"); got != "-1" {
		t.Errorf("GET_QUOTE_CMD:ZZZZ = %q, want -1", got)
	}
	if got := roundTrip("EXECUTE_TRADE_CMD:BUY_ORDER:buyer123:F:10"); got != "1189" {
		t.Errorf("execute trade = %q, want 1189", got)
	}
	if got := roundTrip("FEED_SQUIRRELS_CMD"); got != "INVALID_COMMAND" {
		t.Errorf("unknown command = %q, want INVALID_COMMAND", got)
	}
	if got := roundTrip("GET_QUOTE_CMD"); got != "INVALID_COMMAND" {
		t.Errorf("quote with no ticker = %q, want INVALID_COMMAND", got)
	}
}
