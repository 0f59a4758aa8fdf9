package perf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlicingFullRangeMatchesCompute(t *testing.T) {
	in := Input{
		Dates:    []int64{0, 1, 2, 3, 4},
		Values:   []float64{10000, 10100, 10200, 10150, 10400},
		Invested: []bool{true, true, true, true, true},
	}
	full := Compute(in)
	sliced := Slice(in, []int{0, 1, 2, 3, 4})
	assert.Equal(t, full, sliced)
}

func TestBuyAndHoldZeroDrawdown(t *testing.T) {
	in := Input{
		Dates:    []int64{0, 1, 2, 3, 4},
		Values:   []float64{10000, 10100, 10200, 10300, 10400},
		Invested: []bool{true, true, true, true, true},
	}
	rec := Compute(in)
	assert.InDelta(t, 0.0, rec.MaxDrawdown, 1e-12)
	assert.Greater(t, rec.CAGR, 0.0)
	assert.InDelta(t, 1.0, rec.TIM, 1e-12)
}

func TestFewerThanTwoValuesZeroesAffectedMetrics(t *testing.T) {
	in := Input{Dates: []int64{0}, Values: []float64{10000}, Invested: []bool{true}}
	rec := Compute(in)
	assert.Equal(t, 0.0, rec.CAGR)
	assert.Equal(t, 0.0, rec.Volatility)
	assert.Equal(t, 0.0, rec.Sharpe)
	assert.Equal(t, 0.0, rec.Sortino)
	assert.Equal(t, 0.0, rec.MaxDrawdown)
}

func TestZeroVarianceReturnsZeroSharpe(t *testing.T) {
	in := Input{
		Dates:    []int64{0, 1, 2, 3},
		Values:   []float64{10000, 10000, 10000, 10000},
		Invested: []bool{true, true, true, true},
	}
	rec := Compute(in)
	assert.Equal(t, 0.0, rec.Sharpe)
	assert.Equal(t, 0.0, rec.Sortino)
	assert.Equal(t, 0.0, rec.Volatility)
}

func TestZeroTimYieldsZeroTimar(t *testing.T) {
	in := Input{
		Dates:    []int64{0, 1, 2},
		Values:   []float64{10000, 10000, 10000},
		Invested: []bool{false, false, false},
	}
	rec := Compute(in)
	assert.Equal(t, 0.0, rec.TIM)
	assert.Equal(t, 0.0, rec.TIMAR)
}

func TestMaxDrawdownIsNonNegativeFraction(t *testing.T) {
	in := Input{
		Dates:    []int64{0, 1, 2, 3},
		Values:   []float64{100, 50, 25, 100},
		Invested: []bool{true, true, true, true},
	}
	rec := Compute(in)
	assert.InDelta(t, 0.75, rec.MaxDrawdown, 1e-9)
}

func TestWinRateUsesFullCurveNextBarReturns(t *testing.T) {
	in := Input{
		Dates:    []int64{0, 1, 2, 3, 4},
		Values:   []float64{100, 110, 90, 120, 100},
		Invested: []bool{true, true, true, true, false},
	}
	// invested bars are 0,1,2,3; next-bar returns: 110/100-1>0, 90/110-1<0, 120/90-1>0, 100/120-1<0
	rec := Slice(in, []int{0, 1, 2, 3})
	assert.InDelta(t, 0.5, rec.WinRate, 1e-9)
}

func TestBetaAndTreynorWithBenchmark(t *testing.T) {
	// Portfolio returns are exactly 2x the benchmark's every period, so
	// beta is exactly 2 regardless of the underlying values chosen.
	benchReturns := []float64{0.01, 0.02, -0.01, 0.03}
	bench := []float64{100}
	values := []float64{10000}
	for _, r := range benchReturns {
		bench = append(bench, bench[len(bench)-1]*(1+r))
		values = append(values, values[len(values)-1]*(1+2*r))
	}

	in := Input{
		Dates:     []int64{0, 1, 2, 3, 4},
		Values:    values,
		Invested:  []bool{true, true, true, true, true},
		Benchmark: bench,
	}
	rec := Compute(in)
	assert.InDelta(t, 2.0, rec.Beta, 1e-9)
	assert.NotEqual(t, 0.0, rec.Treynor)
}

func TestBetaZeroWhenNoBenchmark(t *testing.T) {
	in := Input{
		Dates:    []int64{0, 1, 2},
		Values:   []float64{100, 105, 110},
		Invested: []bool{true, true, true},
	}
	rec := Compute(in)
	assert.Equal(t, 0.0, rec.Beta)
	assert.Equal(t, 0.0, rec.Treynor)
}
