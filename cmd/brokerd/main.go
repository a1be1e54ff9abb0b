// Command brokerd runs a broker against a remote exchange: it dials the
// exchange adapter's command port, joins the event multicast group, opens the
// SQLite account store and the trade journal, and dispatches orders as
// exchange events arrive.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"brokersim/internal/account"
	"brokersim/internal/broker"
	"brokersim/internal/config"
	"brokersim/internal/exchange"
	"brokersim/internal/httpapi"
	"brokersim/internal/store"
	"brokersim/internal/util"
)

func main() {
	cfgPath := "config/brokersim.yaml"
	if p := os.Getenv("BROKERSIM_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level)
	util.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	proxy, err := exchange.DialProxy(ctx, cfg.Exchange.CommandAddr(), cfg.Exchange.EventAddr(), logger)
	if err != nil {
		log.Fatalf("failed to connect to exchange: %v", err)
	}
	defer proxy.Close()

	accountStore, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("failed to open account store: %v", err)
	}
	accounts := account.NewManager(accountStore, logger)

	var journal *store.TradeJournal
	if cfg.Storage.JournalDir != "" {
		journal = store.NewTradeJournal(cfg.Storage.JournalDir)
	}

	b := broker.New(cfg.Broker.Name, accounts, proxy, journal, logger)
	logger.Info("broker ready", "name", b.Name(), "exchangeOpen", proxy.IsOpen())

	var admin *http.Server
	if cfg.Admin.ListenAddr != "" {
		admin = &http.Server{
			Addr:    cfg.Admin.ListenAddr,
			Handler: httpapi.NewServer(b, journal, logger).Handler(),
		}
		go func() {
			logger.Info("admin api listening", "addr", admin.Addr)
			if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("admin api failed", "err", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down broker")
	if admin != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := admin.Shutdown(shutdownCtx); err != nil {
			logger.Error("admin api shutdown failed", "err", err)
		}
		shutdownCancel()
	}
	if err := b.Close(); err != nil {
		logger.Error("broker close failed", "err", err)
	}
}
