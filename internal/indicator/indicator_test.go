package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMAWarmupAndValue(t *testing.T) {
	close := []float64{1, 2, 3, 4, 5}
	out := SMA(close, 3)
	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 2.0, out[2], 1e-9) // mean(1,2,3)
	assert.InDelta(t, 3.0, out[3], 1e-9)
	assert.InDelta(t, 4.0, out[4], 1e-9)
}

func TestEMASeededWithSMA(t *testing.T) {
	close := []float64{1, 2, 3, 4, 5, 6}
	out := EMA(close, 3)
	require.True(t, math.IsNaN(out[0]))
	require.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 2.0, out[2], 1e-9) // SMA(1,2,3)
	alpha := 2.0 / 4.0
	want3 := alpha*close[3] + (1-alpha)*out[2]
	assert.InDelta(t, want3, out[3], 1e-9)
}

func TestRSIWilderNeutralWhenFlat(t *testing.T) {
	close := make([]float64, 20)
	for i := range close {
		close[i] = 100
	}
	out := RSIWilder(close, 14)
	assert.InDelta(t, 50, out[19], 1e-9)
}

func TestRSIWilderMonotoneRisePushesToHundred(t *testing.T) {
	close := make([]float64, 20)
	for i := range close {
		close[i] = float64(i + 1)
	}
	out := RSIWilder(close, 14)
	assert.InDelta(t, 100, out[19], 1e-6)
}

func TestDrawdownIsNonPositivePercentage(t *testing.T) {
	close := []float64{100, 110, 90, 95}
	out := Drawdown(close, 4)
	// At index 2, rolling max (min_periods=1) is 110, drawdown = (90-110)/110*100
	assert.InDelta(t, (90.0-110.0)/110.0*100, out[2], 1e-9)
	assert.LessOrEqual(t, out[2], 0.0)
}

func TestMaxDrawdownIsRollingMinOfDrawdown(t *testing.T) {
	close := []float64{100, 110, 90, 95, 120}
	dd := Drawdown(close, 5)
	mdd := MaxDrawdown(close, 5)
	// MaxDrawdown at the last index over the full window should equal the
	// most negative Drawdown value seen in that window.
	worst := 0.0
	for _, v := range dd {
		if v < worst {
			worst = v
		}
	}
	assert.InDelta(t, worst, mdd[len(mdd)-1], 1e-9)
}

func TestComputeUnknownIndicatorReturnsIndicatorError(t *testing.T) {
	_, err := Compute(Name("NOT_A_REAL_INDICATOR"), Input{Close: []float64{1, 2, 3}}, 5)
	require.Error(t, err)
}

func TestComputeDispatchesSMA(t *testing.T) {
	in := Input{Close: []float64{1, 2, 3, 4, 5}}
	out, err := Compute(SMA_, in, 3)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, out[4], 1e-9)
}

func TestCacheHitAvoidsRecompute(t *testing.T) {
	cache := NewCache(10)
	calls := 0
	compute := func() ([]float64, error) {
		calls++
		return []float64{1, 2, 3}, nil
	}
	key := Key{Ticker: "SPY", Name: SMA_, Window: 10}

	_, err := cache.GetOrCompute(key, compute)
	require.NoError(t, err)
	_, err = cache.GetOrCompute(key, compute)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	hits, misses, size := cache.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
	assert.Equal(t, 1, size)
}

func TestCacheEvictsOldestEntryBeyondCapacity(t *testing.T) {
	cache := NewCache(2)
	mk := func(name string) func() ([]float64, error) {
		return func() ([]float64, error) { return []float64{1}, nil }
	}
	_, _ = cache.GetOrCompute(Key{Ticker: "A", Name: SMA_, Window: 1}, mk("a"))
	_, _ = cache.GetOrCompute(Key{Ticker: "B", Name: SMA_, Window: 1}, mk("b"))
	_, _ = cache.GetOrCompute(Key{Ticker: "C", Name: SMA_, Window: 1}, mk("c"))

	_, _, size := cache.Stats()
	assert.Equal(t, 2, size)

	calls := 0
	_, _ = cache.GetOrCompute(Key{Ticker: "A", Name: SMA_, Window: 1}, func() ([]float64, error) {
		calls++
		return []float64{1}, nil
	})
	assert.Equal(t, 1, calls, "A should have been evicted and required recomputation")
}
