package indicator

import (
	"container/list"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/atlasforge/flowback/internal/telemetry"
)

// Key identifies one memoized indicator series.
type Key struct {
	Ticker string
	Name   Name
	Window int
}

func (k Key) string() string {
	return fmt.Sprintf("%s:%s:%d", k.Ticker, k.Name, k.Window)
}

// Cache memoizes indicator series for the lifetime of a sweep, bounded by
// a FIFO eviction policy (once capacity is exceeded, the oldest-inserted
// entry goes first). Concurrent
// callers computing the same key are coalesced through a singleflight
// group so only one of them pays for the computation.
type Cache struct {
	capacity int

	mu      sync.Mutex
	entries map[string][]float64
	order   *list.List
	elems   map[string]*list.Element

	group singleflight.Group

	hits, misses int
}

// NewCache builds a Cache holding at most capacity entries. capacity <= 0
// disables the bound.
func NewCache(capacity int) *Cache {
	return &Cache{
		capacity: capacity,
		entries:  make(map[string][]float64),
		order:    list.New(),
		elems:    make(map[string]*list.Element),
	}
}

// GetOrCompute returns the memoized series for key, computing it via
// compute on a miss. The returned slice must be treated as immutable by
// the caller — it may be shared across concurrent readers.
func (c *Cache) GetOrCompute(key Key, compute func() ([]float64, error)) ([]float64, error) {
	k := key.string()

	c.mu.Lock()
	if v, ok := c.entries[k]; ok {
		c.hits++
		c.mu.Unlock()
		telemetry.IndicatorCacheHits.Inc()
		return v, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(k, func() (any, error) {
		c.mu.Lock()
		if v, ok := c.entries[k]; ok {
			c.mu.Unlock()
			return v, nil
		}
		c.mu.Unlock()

		series, err := compute()
		if err != nil {
			return nil, err
		}
		c.insert(k, series)
		return series, nil
	})
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
	telemetry.IndicatorCacheMisses.Inc()
	return v.([]float64), nil
}

func (c *Cache) insert(k string, series []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[k]; ok {
		return
	}
	c.entries[k] = series
	c.elems[k] = c.order.PushBack(k)

	if c.capacity > 0 {
		for len(c.entries) > c.capacity {
			oldest := c.order.Front()
			if oldest == nil {
				break
			}
			oldestKey := oldest.Value.(string)
			c.order.Remove(oldest)
			delete(c.entries, oldestKey)
			delete(c.elems, oldestKey)
		}
	}
}

// Stats reports hit/miss counters, for diagnostics and tests.
func (c *Cache) Stats() (hits, misses, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, len(c.entries)
}
