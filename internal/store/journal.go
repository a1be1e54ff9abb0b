package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/parquet-go/parquet-go"

	"brokersim/internal/domain"
)

// ExecutionRecord is the Parquet schema for one executed trade.
type ExecutionRecord struct {
	OrderID   int64  `parquet:"order_id"`
	AccountID string `parquet:"account_id"`
	Ticker    string `parquet:"ticker"`
	Side      string `parquet:"side"` // "buy" or "sell"
	Shares    int64  `parquet:"shares"`
	Price     int64  `parquet:"price"` // execution price, cents
	Timestamp int64  `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
}

// NewExecutionRecord builds a record for the order executed now at the given
// price.
func NewExecutionRecord(order *domain.Order, executionPrice int) ExecutionRecord {
	side := "sell"
	if order.IsBuy() {
		side = "buy"
	}
	return ExecutionRecord{
		OrderID:   order.ID,
		AccountID: order.AccountID,
		Ticker:    order.Ticker,
		Side:      side,
		Shares:    int64(order.Shares),
		Price:     int64(executionPrice),
		Timestamp: time.Now().UnixMilli(),
	}
}

// TradeJournal appends executed trades to Parquet files partitioned by day.
// Layout: <DataDir>/executions/<YYYY-MM-DD>.parquet
type TradeJournal struct {
	DataDir string

	mu sync.Mutex
}

// NewTradeJournal creates a journal rooted at the given data directory.
func NewTradeJournal(dataDir string) *TradeJournal {
	return &TradeJournal{DataDir: dataDir}
}

// Append writes the record into its day file, merging with any records
// already present.
func (j *TradeJournal) Append(rec ExecutionRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	path := j.dayPath(time.UnixMilli(rec.Timestamp))
	existing, err := readParquetFile[ExecutionRecord](path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("journal: read %s: %w", path, err)
	}
	merged := mergeExecutionRecords(existing, []ExecutionRecord{rec})

	if err := writeParquetFile(path, merged); err != nil {
		return fmt.Errorf("journal: write %s: %w", path, err)
	}
	return nil
}

// ReadDay returns all executions journaled for the given day, ordered by
// timestamp. A missing day file yields an empty slice.
func (j *TradeJournal) ReadDay(day time.Time) ([]ExecutionRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	records, err := readParquetFile[ExecutionRecord](j.dayPath(day))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return records, nil
}

// dayPath returns the filesystem path for a day's execution file.
func (j *TradeJournal) dayPath(t time.Time) string {
	date := t.Format("2006-01-02")
	return filepath.Join(j.DataDir, "executions", date+".parquet")
}

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	return parquet.ReadFile[T](path)
}

// mergeExecutionRecords deduplicates by order ID, preferring new records over
// existing ones. Results are sorted by timestamp, then order ID.
func mergeExecutionRecords(existing, incoming []ExecutionRecord) []ExecutionRecord {
	seen := make(map[int64]ExecutionRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[r.OrderID] = r
	}
	for _, r := range incoming {
		seen[r.OrderID] = r
	}

	merged := make([]ExecutionRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Timestamp != merged[j].Timestamp {
			return merged[i].Timestamp < merged[j].Timestamp
		}
		return merged[i].OrderID < merged[j].OrderID
	})
	return merged
}
