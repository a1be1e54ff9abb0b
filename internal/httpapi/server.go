// Package httpapi exposes the broker's administrative HTTP API: exchange
// status, quotes, journaled executions, and Prometheus metrics.
package httpapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"brokersim/internal/broker"
	"brokersim/internal/store"
)

// Server serves the admin HTTP API for one broker.
type Server struct {
	broker  *broker.Broker
	journal *store.TradeJournal
	log     *slog.Logger
}

// NewServer creates a server for the broker. journal may be nil; the
// execution endpoints then report empty days.
func NewServer(b *broker.Broker, journal *store.TradeJournal, log *slog.Logger) *Server {
	return &Server{broker: b, journal: journal, log: log}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/quote/{ticker}", s.handleQuote)
	mux.HandleFunc("GET /api/executions/{date}", s.handleExecutions)
	mux.HandleFunc("GET /api/stats/{date}", s.handleStats)
	mux.Handle("GET /metrics", promhttp.Handler())
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, StatusResponse{
		Broker:       s.broker.Name(),
		ExchangeOpen: s.broker.ExchangeOpen(),
		Tickers:      s.broker.Tickers(),
	})
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(r.PathValue("ticker"))
	quote, err := s.broker.RequestQuote(ticker)
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no quote for %s", ticker))
		return
	}
	writeJSON(w, QuoteResponse{Ticker: quote.Ticker, Price: quote.Price})
}

// readDay parses the {date} path value and loads that day's executions.
func (s *Server) readDay(r *http.Request) (string, []store.ExecutionRecord, error) {
	date := r.PathValue("date")
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date, nil, fmt.Errorf("bad date %q, want YYYY-MM-DD", date)
	}
	if s.journal == nil {
		return date, nil, nil
	}
	records, err := s.journal.ReadDay(day)
	if err != nil {
		return date, nil, fmt.Errorf("reading executions for %s: %w", date, err)
	}
	return date, records, nil
}

func (s *Server) handleExecutions(w http.ResponseWriter, r *http.Request) {
	date, records, err := s.readDay(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	executions := make([]ExecutionJSON, 0, len(records))
	for i := range records {
		executions = append(executions, ExecutionJSON{
			OrderID:   records[i].OrderID,
			AccountID: records[i].AccountID,
			Ticker:    records[i].Ticker,
			Side:      records[i].Side,
			Shares:    records[i].Shares,
			Price:     records[i].Price,
			Timestamp: records[i].Timestamp,
		})
	}
	writeJSON(w, ExecutionsResponse{Date: date, Executions: executions})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	date, records, err := s.readDay(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	stats := store.SummarizeExecutions(records)
	tickers := make([]TickerStatsJSON, 0, len(stats))
	for _, ts := range stats {
		tickers = append(tickers, TickerStatsJSON{
			Ticker:     ts.Ticker,
			Trades:     ts.Trades,
			BuyShares:  ts.BuyShares,
			SellShares: ts.SellShares,
			Notional:   ts.Notional,
			High:       ts.High,
			Low:        ts.Low,
			First:      ts.First,
			Last:       ts.Last,
		})
	}
	writeJSON(w, StatsResponse{Date: date, Tickers: tickers})
}
