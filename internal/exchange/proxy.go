package exchange

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"brokersim/internal/domain"
	"brokersim/internal/util"
)

// Compile-time interface check.
var _ StockExchange = (*Proxy)(nil)

// Proxy implements StockExchange against a remote exchange adapter. Commands
// are serialized over one long-lived TCP connection; exchange events arrive
// on a multicast socket serviced by a dedicated receive goroutine and are
// forwarded, in arrival order, to registered listeners.
type Proxy struct {
	cmdMu  sync.Mutex // serializes command round trips
	conn   net.Conn
	reader *bufio.Reader

	events *net.UDPConn
	hub    hub
	log    *slog.Logger
}

const (
	dialAttempts  = 5
	dialBaseDelay = 200 * time.Millisecond

	// eventBufSize bounds a single event datagram.
	eventBufSize = 256
)

// DialProxy connects to the exchange adapter at cmdAddr, retrying with
// exponential backoff, and joins the multicast group at eventAddr for events.
// An empty eventAddr disables the event receiver.
func DialProxy(ctx context.Context, cmdAddr, eventAddr string, log *slog.Logger) (*Proxy, error) {
	var conn net.Conn
	err := util.Retry(ctx, dialAttempts, dialBaseDelay, func() error {
		var derr error
		conn, derr = net.Dial("tcp", cmdAddr)
		return derr
	})
	if err != nil {
		return nil, fmt.Errorf("proxy: dial %s: %w", cmdAddr, err)
	}

	p := &Proxy{
		conn:   conn,
		reader: bufio.NewReader(conn),
		log:    log,
	}

	if eventAddr != "" {
		group, err := net.ResolveUDPAddr("udp", eventAddr)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("proxy: resolve event group %s: %w", eventAddr, err)
		}
		events, err := net.ListenMulticastUDP("udp", nil, group)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("proxy: join event group %s: %w", eventAddr, err)
		}
		p.events = events
		go p.receiveEvents()
	}

	log.Info("exchange proxy connected", "cmdAddr", cmdAddr, "eventAddr", eventAddr)
	return p, nil
}

// Close shuts down the command connection and the event receiver.
func (p *Proxy) Close() error {
	err := p.conn.Close()
	if p.events != nil {
		p.events.Close()
	}
	return err
}

// transmit writes one command line and blocks for its single response line.
func (p *Proxy) transmit(cmd string) (string, error) {
	p.cmdMu.Lock()
	defer p.cmdMu.Unlock()

	if _, err := fmt.Fprintln(p.conn, cmd); err != nil {
		return "", fmt.Errorf("proxy: send %s: %w", cmd, err)
	}
	line, err := p.reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("proxy: read response to %s: %w", cmd, err)
	}
	return strings.TrimSpace(line), nil
}

// IsOpen queries the exchange state. Transport failures are logged and
// reported as closed; the broker treats an unreachable exchange as one it
// cannot trade against.
func (p *Proxy) IsOpen() bool {
	response, err := p.transmit(GetStateCmd)
	if err != nil {
		p.log.Error("state query failed", "err", err)
		return false
	}
	return response == OpenState
}

// Tickers returns the symbols of all listed stocks.
func (p *Proxy) Tickers() []string {
	response, err := p.transmit(GetTickersCmd)
	if err != nil {
		p.log.Error("ticker query failed", "err", err)
		return nil
	}
	if response == "" {
		return nil
	}
	return strings.Split(response, ElementDelimiter)
}

// Quote returns the current price for the symbol.
func (p *Proxy) Quote(ticker string) (domain.Quote, error) {
	response, err := p.transmit(EncodeQuoteCmd(ticker))
	if err != nil {
		return domain.Quote{}, err
	}
	if response == InvalidStock {
		return domain.Quote{}, ErrUnknownTicker
	}
	price, err := strconv.Atoi(response)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("proxy: bad quote response %q: %w", response, err)
	}
	return domain.Quote{Ticker: ticker, Price: price}, nil
}

// ExecuteTrade executes the order on the remote exchange and returns the
// execution price in cents.
func (p *Proxy) ExecuteTrade(order *domain.Order) (int, error) {
	response, err := p.transmit(EncodeTradeCmd(order))
	if err != nil {
		return 0, err
	}
	if response == InvalidStock {
		return 0, ErrUnknownTicker
	}
	price, err := strconv.Atoi(response)
	if err != nil {
		return 0, fmt.Errorf("proxy: bad trade response %q: %w", response, err)
	}
	return price, nil
}

// AddListener registers a listener for exchange events.
func (p *Proxy) AddListener(l Listener) {
	p.hub.add(l)
}

// RemoveListener deregisters a listener.
func (p *Proxy) RemoveListener(l Listener) {
	p.hub.remove(l)
}

// receiveEvents blocks on the multicast socket, decoding each datagram and
// delivering it to listeners before receiving the next. Delivery order is the
// arrival order; listener callbacks run on this goroutine.
func (p *Proxy) receiveEvents() {
	buf := make([]byte, eventBufSize)
	for {
		n, _, err := p.events.ReadFromUDP(buf)
		if err != nil {
			// Socket closed.
			return
		}
		evt, err := DecodeEvent(string(buf[:n]))
		if err != nil {
			p.log.Warn("dropping undecodable event datagram", "err", err)
			continue
		}
		p.hub.publish(evt)
	}
}
