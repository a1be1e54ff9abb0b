package store

import "sort"

// TickerStats aggregates one day's executions for a single ticker. Prices are
// in cents.
type TickerStats struct {
	Ticker     string
	Trades     int
	BuyShares  int64
	SellShares int64
	Notional   int64 // sum of shares * price over all executions
	High       int64
	Low        int64
	First      int64 // first execution price, by timestamp
	Last       int64 // last execution price, by timestamp
}

// SummarizeExecutions computes per-ticker statistics from a day's execution
// records. Results are sorted by notional descending, then ticker.
func SummarizeExecutions(records []ExecutionRecord) []TickerStats {
	groups := make(map[string][]int)
	for i := range records {
		groups[records[i].Ticker] = append(groups[records[i].Ticker], i)
	}

	stats := make([]TickerStats, 0, len(groups))
	for ticker, indices := range groups {
		sort.Slice(indices, func(a, b int) bool {
			ra, rb := &records[indices[a]], &records[indices[b]]
			if ra.Timestamp != rb.Timestamp {
				return ra.Timestamp < rb.Timestamp
			}
			return ra.OrderID < rb.OrderID
		})

		s := TickerStats{Ticker: ticker}
		for j, idx := range indices {
			r := &records[idx]
			s.Trades++
			s.Notional += r.Shares * r.Price
			if r.Side == "buy" {
				s.BuyShares += r.Shares
			} else {
				s.SellShares += r.Shares
			}
			if j == 0 {
				s.First = r.Price
				s.Low = r.Price
			}
			if r.Price > s.High {
				s.High = r.Price
			}
			if r.Price < s.Low {
				s.Low = r.Price
			}
			s.Last = r.Price
		}
		stats = append(stats, s)
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Notional != stats[j].Notional {
			return stats[i].Notional > stats[j].Notional
		}
		return stats[i].Ticker < stats[j].Ticker
	})
	return stats
}
