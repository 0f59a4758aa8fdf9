package barstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestMemoryGetUnknownTickerIsEmptyNotError(t *testing.T) {
	m := NewMemory(map[string][]Bar{
		"AAPL": {{Date: day(0), Close: 100}},
	})
	bars, err := m.Get(context.Background(), "ZZZZ")
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestMemoryGetSortsByDate(t *testing.T) {
	m := NewMemory(map[string][]Bar{
		"AAPL": {
			{Date: day(2), Close: 102},
			{Date: day(0), Close: 100},
			{Date: day(1), Close: 101},
		},
	})
	bars, err := m.Get(context.Background(), "AAPL")
	require.NoError(t, err)
	require.True(t, Sorted(bars))
	assert.Equal(t, 100.0, bars[0].Close)
	assert.Equal(t, 102.0, bars[2].Close)
}

func TestMemoryGetReturnsCopyNotAlias(t *testing.T) {
	m := NewMemory(map[string][]Bar{"AAPL": {{Date: day(0), Close: 100}}})
	bars, err := m.Get(context.Background(), "AAPL")
	require.NoError(t, err)
	bars[0].Close = 999

	again, err := m.Get(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 100.0, again[0].Close)
}

func TestParquetGetMissingFileIsEmptyNotError(t *testing.T) {
	p := NewParquet(t.TempDir())
	bars, err := p.Get(context.Background(), "MISSING")
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestParquetRoundTrip(t *testing.T) {
	p := NewParquet(t.TempDir())
	want := []Bar{
		{Date: day(0), Open: 10, High: 11, Low: 9, Close: 10.5, AdjustedClose: 10.5, Volume: 1000},
		{Date: day(1), Open: 10.5, High: 12, Low: 10, Close: 11.5, AdjustedClose: 11.5, Volume: 1100},
	}
	require.NoError(t, p.WriteTicker("AAPL", want))

	got, err := p.Get(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, want[0].Close, got[0].Close)
	assert.Equal(t, want[1].Volume, got[1].Volume)
	assert.True(t, got[0].Date.Equal(want[0].Date))
}

type countingStore struct {
	calls int
	bars  []Bar
}

func (c *countingStore) Get(_ context.Context, _ string) ([]Bar, error) {
	c.calls++
	return c.bars, nil
}

func TestLRUCachesRepeatedGets(t *testing.T) {
	underlying := &countingStore{bars: []Bar{{Date: day(0), Close: 1}}}
	cache := NewLRU(underlying, 10)

	for i := 0; i < 5; i++ {
		_, err := cache.Get(context.Background(), "AAPL")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, underlying.calls)
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	underlying := &countingStore{bars: []Bar{{Date: day(0), Close: 1}}}
	cache := NewLRU(underlying, 2)

	ctx := context.Background()
	_, _ = cache.Get(ctx, "A")
	_, _ = cache.Get(ctx, "B")
	assert.Equal(t, 2, cache.Len())

	_, _ = cache.Get(ctx, "A") // A now most-recently-used
	_, _ = cache.Get(ctx, "C") // evicts B, not A

	assert.Equal(t, 2, cache.Len())
	_, ok := cache.lookup("B")
	assert.False(t, ok)
	_, ok = cache.lookup("A")
	assert.True(t, ok)
}

func TestLRUUnboundedWhenCapacityNonPositive(t *testing.T) {
	underlying := &countingStore{bars: []Bar{{Date: day(0), Close: 1}}}
	cache := NewLRU(underlying, 0)
	ctx := context.Background()
	for _, ticker := range []string{"A", "B", "C", "D", "E"} {
		_, _ = cache.Get(ctx, ticker)
	}
	assert.Equal(t, 5, cache.Len())
}
