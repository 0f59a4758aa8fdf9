package barstore

import (
	"context"
	"sort"
)

// Memory is a map-backed Store, used by tests and by callers that have
// already loaded bars into process memory (e.g. from a CSV fixture).
type Memory struct {
	byTicker map[string][]Bar
}

// NewMemory builds a Memory store from a ticker-to-bars map. Each slice is
// copied and sorted by Date so callers don't need to pre-sort.
func NewMemory(data map[string][]Bar) *Memory {
	m := &Memory{byTicker: make(map[string][]Bar, len(data))}
	for ticker, bars := range data {
		cp := make([]Bar, len(bars))
		copy(cp, bars)
		sort.Slice(cp, func(i, j int) bool { return cp[i].Date.Before(cp[j].Date) })
		m.byTicker[ticker] = cp
	}
	return m
}

// Put replaces the bars stored for ticker.
func (m *Memory) Put(ticker string, bars []Bar) {
	cp := make([]Bar, len(bars))
	copy(cp, bars)
	sort.Slice(cp, func(i, j int) bool { return cp[i].Date.Before(cp[j].Date) })
	m.byTicker[ticker] = cp
}

func (m *Memory) Get(_ context.Context, ticker string) ([]Bar, error) {
	bars := m.byTicker[ticker]
	if bars == nil {
		return nil, nil
	}
	out := make([]Bar, len(bars))
	copy(out, bars)
	return out, nil
}

var _ Store = (*Memory)(nil)
