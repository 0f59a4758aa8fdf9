package barstore

import (
	"container/list"
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// LRU wraps a Store with a bounded, concurrency-safe cache of full bar
// series keyed by ticker, evicting the least-recently-used entry once
// capacity is exceeded. Concurrent Get calls for the same uncached ticker
// are coalesced through a singleflight.Group so a sweep's many variants
// never cause duplicate I/O against the underlying Store.
type LRU struct {
	underlying Store
	capacity   int

	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = most recently used

	group singleflight.Group
}

type lruEntry struct {
	ticker string
	bars   []Bar
}

// NewLRU wraps underlying with an LRU cache holding at most capacity
// tickers' worth of bars. capacity <= 0 disables the bound (unlimited).
func NewLRU(underlying Store, capacity int) *LRU {
	return &LRU{
		underlying: underlying,
		capacity:   capacity,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
	}
}

func (c *LRU) Get(ctx context.Context, ticker string) ([]Bar, error) {
	if cached, ok := c.lookup(ticker); ok {
		return cached, nil
	}

	v, err, _ := c.group.Do(ticker, func() (any, error) {
		if cached, ok := c.lookup(ticker); ok {
			return cached, nil
		}
		bars, err := c.underlying.Get(ctx, ticker)
		if err != nil {
			return nil, err
		}
		c.insert(ticker, bars)
		return bars, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Bar), nil
}

func (c *LRU) lookup(ticker string) ([]Bar, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[ticker]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*lruEntry).bars, true
}

func (c *LRU) insert(ticker string, bars []Bar) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[ticker]; ok {
		el.Value.(*lruEntry).bars = bars
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(&lruEntry{ticker: ticker, bars: bars})
	c.entries[ticker] = el

	if c.capacity > 0 {
		for len(c.entries) > c.capacity {
			oldest := c.order.Back()
			if oldest == nil {
				break
			}
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*lruEntry).ticker)
		}
	}
}

// Len returns the number of tickers currently cached, for tests.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

var _ Store = (*LRU)(nil)
