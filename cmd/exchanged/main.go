// Command exchanged runs the simulated stock exchange and its network
// adapter: text commands over TCP, events over UDP multicast. A random walk
// drives the listed prices so connected brokers see live price changes.
package main

import (
	"context"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"brokersim/internal/config"
	"brokersim/internal/exchange"
	"brokersim/internal/util"
)

const defaultWalkInterval = 2 * time.Second

func main() {
	cfgPath := "config/brokersim.yaml"
	if p := os.Getenv("BROKERSIM_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if len(cfg.Simulation.Tickers) == 0 {
		log.Fatal("no tickers configured under simulation.tickers")
	}

	logger := util.NewLogger(cfg.Logging.Level)
	util.SetDefault(logger)

	ex := exchange.NewSimulated(cfg.Simulation.Tickers, logger)

	adapter, err := exchange.NewAdapter(ex, cfg.Exchange.CommandAddr(), cfg.Exchange.EventAddr(), logger)
	if err != nil {
		log.Fatalf("failed to start exchange adapter: %v", err)
	}
	defer adapter.Close()

	if cfg.Simulation.OpenAtStart {
		ex.Open()
	}

	interval := defaultWalkInterval
	if cfg.Simulation.WalkInterval != "" {
		d, err := time.ParseDuration(cfg.Simulation.WalkInterval)
		if err != nil {
			log.Fatalf("bad simulation.walk_interval %q: %v", cfg.Simulation.WalkInterval, err)
		}
		interval = d
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go walkPrices(ctx, ex, interval)

	<-ctx.Done()
	logger.Info("shutting down exchange")
	ex.Close()
}

// walkPrices nudges a random listed price each interval, at most 5% per step.
func walkPrices(ctx context.Context, ex *exchange.Simulated, interval time.Duration) {
	tick := time.NewTicker(interval)
	defer tick.Stop()

	tickers := ex.Tickers()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			ticker := tickers[rand.Intn(len(tickers))]
			quote, err := ex.Quote(ticker)
			if err != nil {
				continue
			}
			step := quote.Price / 20
			if step == 0 {
				step = 1
			}
			price := quote.Price + rand.Intn(2*step+1) - step
			if price < 1 {
				price = 1
			}
			ex.SetPrice(ticker, price)
		}
	}
}
