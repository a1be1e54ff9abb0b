package exchange

import (
	"fmt"
	"strconv"
	"strings"

	"brokersim/internal/domain"
)

// Protocol vocabulary shared by the adapter and the proxy. Commands travel
// client to exchange over TCP, one newline-terminated line per command with
// exactly one response line. Events travel exchange to clients as UTF-8 UDP
// multicast datagrams. Fields are separated by ElementDelimiter.
const (
	ElementDelimiter = ":"

	// Commands.
	GetStateCmd     = "GET_STATE_CMD"
	GetTickersCmd   = "GET_TICKERS_CMD"
	GetQuoteCmd     = "GET_QUOTE_CMD"
	ExecuteTradeCmd = "EXECUTE_TRADE_CMD"

	// Order types within an execute-trade command.
	BuyOrder  = "BUY_ORDER"
	SellOrder = "SELL_ORDER"

	// State responses.
	OpenState   = "OPEN_STATE"
	ClosedState = "CLOSED_STATE"

	// Events.
	OpenEvent        = "OPEN_EVENT"
	ClosedEvent      = "CLOSED_EVENT"
	PriceChangeEvent = "PRICE_CHANGE_EVENT"

	// InvalidStock is the wire sentinel for an unlisted ticker.
	InvalidStock = "-1"

	// InvalidCommand is the response to an unrecognized command.
	InvalidCommand = "INVALID_COMMAND"
)

// EncodeQuoteCmd builds a quote request for the given symbol.
func EncodeQuoteCmd(ticker string) string {
	return GetQuoteCmd + ElementDelimiter + ticker
}

// EncodeTradeCmd builds an execute-trade command for the given order.
// Format: EXECUTE_TRADE_CMD:BUY_ORDER|SELL_ORDER:accountId:ticker:shares
func EncodeTradeCmd(order *domain.Order) string {
	orderType := SellOrder
	if order.IsBuy() {
		orderType = BuyOrder
	}
	return strings.Join([]string{
		ExecuteTradeCmd,
		orderType,
		order.AccountID,
		order.Ticker,
		strconv.Itoa(order.Shares),
	}, ElementDelimiter)
}

// DecodeTradeCmd parses the body of an execute-trade command (the fields
// after the command name) into a market order.
func DecodeTradeCmd(fields []string) (*domain.Order, error) {
	if len(fields) != 4 {
		return nil, fmt.Errorf("execute trade: want 4 fields, got %d", len(fields))
	}
	orderType, accountID, ticker := fields[0], fields[1], fields[2]
	shares, err := strconv.Atoi(fields[3])
	if err != nil {
		return nil, fmt.Errorf("execute trade: bad share count %q: %w", fields[3], err)
	}
	switch orderType {
	case BuyOrder:
		return domain.NewMarketBuy(accountID, ticker, shares)
	case SellOrder:
		return domain.NewMarketSell(accountID, ticker, shares)
	default:
		return nil, fmt.Errorf("execute trade: unknown order type %q", orderType)
	}
}

// EncodeEvent renders an exchange event as a datagram payload.
func EncodeEvent(evt Event) string {
	switch evt.Type {
	case Opened:
		return OpenEvent
	case Closed:
		return ClosedEvent
	case PriceChanged:
		return strings.Join([]string{
			PriceChangeEvent,
			evt.Ticker,
			strconv.Itoa(evt.Price),
		}, ElementDelimiter)
	default:
		return ""
	}
}

// DecodeEvent parses a datagram payload into an exchange event.
func DecodeEvent(payload string) (Event, error) {
	fields := strings.Split(strings.TrimSpace(payload), ElementDelimiter)
	switch fields[0] {
	case OpenEvent:
		return Event{Type: Opened}, nil
	case ClosedEvent:
		return Event{Type: Closed}, nil
	case PriceChangeEvent:
		if len(fields) != 3 {
			return Event{}, fmt.Errorf("price change event: want 3 fields, got %d", len(fields))
		}
		price, err := strconv.Atoi(fields[2])
		if err != nil {
			return Event{}, fmt.Errorf("price change event: bad price %q: %w", fields[2], err)
		}
		return Event{Type: PriceChanged, Ticker: fields[1], Price: price}, nil
	default:
		return Event{}, fmt.Errorf("unknown event %q", fields[0])
	}
}
