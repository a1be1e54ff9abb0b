package domain

import (
	"errors"
	"testing"
)

func TestNewOrderValidation(t *testing.T) {
	if _, err := NewMarketBuy("acct0001", "MSFT", 0); !errors.Is(err, ErrBadShares) {
		t.Errorf("NewMarketBuy with 0 shares: err = %v, want ErrBadShares", err)
	}
	if _, err := NewStopSell("acct0001", "MSFT", 10, -5); !errors.Is(err, ErrBadPrice) {
		t.Errorf("NewStopSell with negative price: err = %v, want ErrBadPrice", err)
	}
	if _, err := NewStopBuy("acct0001", "MSFT", 10, 0); err != nil {
		t.Errorf("NewStopBuy with zero price: err = %v, want nil", err)
	}
}

func TestOrderIDsMonotonic(t *testing.T) {
	a, err := NewMarketBuy("acct0001", "BA", 1)
	if err != nil {
		t.Fatalf("NewMarketBuy: %v", err)
	}
	b, err := NewMarketSell("acct0001", "BA", 1)
	if err != nil {
		t.Fatalf("NewMarketSell: %v", err)
	}
	if b.ID <= a.ID {
		t.Errorf("order IDs not increasing: first %d, second %d", a.ID, b.ID)
	}
}

func TestValueAt(t *testing.T) {
	buy, _ := NewMarketBuy("acct0001", "F", 50)
	if got := buy.ValueAt(300); got != -15000 {
		t.Errorf("buy.ValueAt(300) = %d, want -15000", got)
	}
	sell, _ := NewMarketSell("acct0001", "F", 50)
	if got := sell.ValueAt(300); got != 15000 {
		t.Errorf("sell.ValueAt(300) = %d, want 15000", got)
	}
}

func TestToMarket(t *testing.T) {
	stop, _ := NewStopBuy("acct0001", "T", 25, 1200)
	mkt := stop.ToMarket()
	if mkt.Kind != MarketBuy {
		t.Errorf("ToMarket kind = %v, want MarketBuy", mkt.Kind)
	}
	if mkt.ID == stop.ID {
		t.Error("ToMarket reused the stop order's ID, want a fresh one")
	}
	if mkt.AccountID != stop.AccountID || mkt.Ticker != stop.Ticker || mkt.Shares != stop.Shares {
		t.Errorf("ToMarket lost fields: got %+v from %+v", mkt, stop)
	}
	if mkt.Price != 0 {
		t.Errorf("ToMarket kept stop price %d, want 0", mkt.Price)
	}

	sell, _ := NewStopSell("acct0001", "T", 25, 900)
	if got := sell.ToMarket().Kind; got != MarketSell {
		t.Errorf("stop-sell ToMarket kind = %v, want MarketSell", got)
	}

	already, _ := NewMarketSell("acct0001", "T", 25)
	if got := already.ToMarket(); got != already {
		t.Error("ToMarket on a market order should return the same order")
	}
}
