package exchange

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
)

// Compile-time interface check.
var _ Listener = (*Adapter)(nil)

// Adapter exposes a StockExchange over the network: it answers text commands
// on a TCP port and republishes exchange events as UDP multicast datagrams.
// Each accepted connection is served by its own goroutine and may carry many
// sequential request/response pairs.
type Adapter struct {
	exchange StockExchange
	listener net.Listener
	events   *net.UDPConn
	log      *slog.Logger
}

// NewAdapter starts an adapter for the exchange. cmdAddr is the TCP listen
// address; eventAddr is the multicast group address for events, or empty to
// disable event publication. The adapter registers itself as an exchange
// listener and begins accepting connections before returning.
func NewAdapter(ex StockExchange, cmdAddr, eventAddr string, log *slog.Logger) (*Adapter, error) {
	listener, err := net.Listen("tcp", cmdAddr)
	if err != nil {
		return nil, fmt.Errorf("adapter: listen %s: %w", cmdAddr, err)
	}

	a := &Adapter{exchange: ex, listener: listener, log: log}

	if eventAddr != "" {
		group, err := net.ResolveUDPAddr("udp", eventAddr)
		if err != nil {
			listener.Close()
			return nil, fmt.Errorf("adapter: resolve event group %s: %w", eventAddr, err)
		}
		conn, err := net.DialUDP("udp", nil, group)
		if err != nil {
			listener.Close()
			return nil, fmt.Errorf("adapter: dial event group %s: %w", eventAddr, err)
		}
		a.events = conn
	}

	ex.AddListener(a)
	go a.acceptLoop()

	log.Info("exchange adapter listening", "cmdAddr", listener.Addr().String(), "eventAddr", eventAddr)
	return a, nil
}

// Addr returns the TCP address the adapter is listening on.
func (a *Adapter) Addr() net.Addr {
	return a.listener.Addr()
}

// Close deregisters the adapter from the exchange and shuts down both the
// command listener and the event socket. In-flight connections are torn down
// when their sockets fail.
func (a *Adapter) Close() error {
	a.exchange.RemoveListener(a)
	err := a.listener.Close()
	if a.events != nil {
		a.events.Close()
	}
	return err
}

func (a *Adapter) acceptLoop() {
	for {
		conn, err := a.listener.Accept()
		if err != nil {
			// Listener closed.
			return
		}
		go a.handleConn(conn)
	}
}

// handleConn serially processes one connection's commands: one newline
// terminated command in, one newline terminated response out.
func (a *Adapter) handleConn(conn net.Conn) {
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		response := a.handleCommand(scanner.Text())
		if _, err := fmt.Fprintln(conn, response); err != nil {
			a.log.Warn("adapter write failed, dropping connection", "remote", remote, "err", err)
			return
		}
	}
	if err := scanner.Err(); err != nil {
		a.log.Warn("adapter read failed, dropping connection", "remote", remote, "err", err)
	}
}

func (a *Adapter) handleCommand(line string) string {
	fields := strings.Split(strings.TrimSpace(line), ElementDelimiter)

	switch fields[0] {
	case GetStateCmd:
		if a.exchange.IsOpen() {
			return OpenState
		}
		return ClosedState

	case GetTickersCmd:
		return strings.Join(a.exchange.Tickers(), ElementDelimiter)

	case GetQuoteCmd:
		if len(fields) != 2 {
			return InvalidCommand
		}
		quote, err := a.exchange.Quote(fields[1])
		if err != nil {
			return InvalidStock
		}
		return strconv.Itoa(quote.Price)

	case ExecuteTradeCmd:
		order, err := DecodeTradeCmd(fields[1:])
		if err != nil {
			a.log.Warn("bad execute trade command", "line", line, "err", err)
			return InvalidCommand
		}
		price, err := a.exchange.ExecuteTrade(order)
		if err != nil {
			return InvalidStock
		}
		return strconv.Itoa(price)

	default:
		return InvalidCommand
	}
}

// publishEvent sends one encoded event datagram, fire-and-forget.
func (a *Adapter) publishEvent(evt Event) {
	if a.events == nil {
		return
	}
	if _, err := a.events.Write([]byte(EncodeEvent(evt))); err != nil {
		a.log.Warn("event publish failed", "event", evt.Type.String(), "err", err)
	}
}

// ExchangeOpened republishes the open event to the multicast group.
func (a *Adapter) ExchangeOpened(evt Event) { a.publishEvent(evt) }

// ExchangeClosed republishes the close event to the multicast group.
func (a *Adapter) ExchangeClosed(evt Event) { a.publishEvent(evt) }

// PriceChanged republishes the price change to the multicast group.
func (a *Adapter) PriceChanged(evt Event) { a.publishEvent(evt) }
