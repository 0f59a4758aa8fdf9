// Package indicator implements the named technical-indicator roster as
// pure, deterministic `(series, params) → series` functions, plus the
// memoizing cache (C4) that sits in front of them during a sweep.
//
// # Drawdown convention
//
// Two drawdown conventions exist in this codebase and they are never
// interchangeable:
//
//   - The indicators named "Drawdown" and "Max Drawdown" in this package
//     return a PERCENTAGE (e.g. -12.5 for a 12.5% decline from the rolling
//     high), matching pandas_ta-style indicator output.
//   - internal/perf's max_drawdown metric returns a non-negative FRACTION
//     (e.g. 0.125), matching industry performance-reporting convention.
//
// A condition referencing "Max Drawdown" as an indicator and a report
// referencing max_drawdown as a performance metric are computing related
// but differently-scaled quantities; callers must not conflate them.
package indicator

import "math"

// Input is the OHLCV data an indicator formula reads from. Close holds
// adjusted close, matching the reference implementation's preference for
// split/dividend-adjusted prices wherever an "Adj Close" column exists.
type Input struct {
	Open   []float64
	High   []float64
	Low    []float64
	Close  []float64
	Volume []float64
}

func (in Input) n() int { return len(in.Close) }

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func isFinite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
