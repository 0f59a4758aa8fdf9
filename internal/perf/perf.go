// Package perf computes the standard performance metric bundle from an
// equity curve, optionally restricted to a subset of bar indices for
// in-sample/out-of-sample slicing.
//
// max_drawdown here is a NON-NEGATIVE FRACTION (e.g. 0.125 for a 12.5%
// drawdown) — the opposite convention from internal/indicator's
// Drawdown/MaxDrawdown family, which returns signed percentages. Never
// mix the two without converting.
package perf

import (
	"math"
	"sort"
)

const periodsPerYear = 252.0
const riskFreeAnnual = 0.03

// Record is the fixed metric bundle C7 produces for one equity curve (or
// one restricted slice of it).
type Record struct {
	StartDate  int64
	Years      float64
	CAGR       float64
	Volatility float64
	Sharpe     float64
	Sortino    float64

	// MaxDrawdown is a non-negative fraction.
	MaxDrawdown float64
	Calmar      float64
	Beta        float64
	Treynor     float64
	TIM         float64
	TIMAR       float64
	WinRate     float64

	// Supplemented metrics, grounded on original_source/python/metrics.py.
	DD3                    float64
	DD50                   float64
	DD95                   float64
	UlcerIndex             float64
	UlcerPerformanceIndex  float64
	GainToPain             float64
	PayoffRatio            float64
	Expectancy             float64
	HitRate                float64
	MaxConsecutiveWins     int
	MaxConsecutiveLosses   int
	AvgDrawdown            float64
	AvgDrawdownLength      float64
	LongestDrawdownLength  int
	Skew                   float64
	Kurtosis               float64
}

// Input bundles everything Compute needs out of a completed simulation.
type Input struct {
	Dates  []int64
	Values []float64
	// Invested marks, per bar, whether the allocation held at that bar
	// was non-empty. Same length as Values.
	Invested []bool
	// Benchmark holds a second equity-like series (e.g. SPY buy-and-hold)
	// used for beta/treynor. May be nil if unavailable.
	Benchmark []float64
}

// Compute returns the metric bundle for the full curve. Use Slice to
// restrict to a bar-index subset first.
func Compute(in Input) Record {
	return computeOn(in, indicesAll(len(in.Values)), in)
}

// Slice restricts Compute to indices (which must be sorted ascending and
// within range), computing win_rate from the full curve's next-bar
// returns per spec.
func Slice(in Input, indices []int) Record {
	return computeOn(in, indices, in)
}

func indicesAll(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func computeOn(in Input, indices []int, full Input) Record {
	var rec Record
	if len(indices) == 0 {
		return rec
	}

	values := gather(in.Values, indices)
	dates := gather(in.Dates, indices)
	rec.StartDate = dates[0]
	rec.Years = float64(len(values)) / periodsPerYear

	returns := pctReturns(values)

	rec.CAGR = cagr(values, rec.Years)
	rec.Volatility = stddev(returns) * math.Sqrt(periodsPerYear)
	rec.Sharpe = sharpe(returns)
	rec.Sortino = sortino(returns)

	dd := drawdownFractions(values)
	rec.MaxDrawdown = maxOf(dd)
	if rec.MaxDrawdown > 0 {
		rec.Calmar = rec.CAGR / rec.MaxDrawdown
	}

	if in.Benchmark != nil {
		benchValues := gather(in.Benchmark, indices)
		benchReturns := pctReturns(benchValues)
		rec.Beta = beta(returns, benchReturns)
		if rec.Beta != 0 {
			rec.Treynor = (rec.CAGR - riskFreeAnnual) / rec.Beta
		}
	}

	rec.TIM = timeInMarket(gather(in.Invested, indices))
	if rec.TIM > 0 {
		rec.TIMAR = rec.CAGR / rec.TIM
	}
	rec.WinRate = winRate(full, indices)

	rec.DD3 = avgWorstN(dd, 3)
	rec.DD50 = percentile(dd, 0.50)
	rec.DD95 = percentile(dd, 0.95)
	rec.UlcerIndex = ulcerIndex(dd)
	if rec.UlcerIndex > 0 {
		rec.UlcerPerformanceIndex = (rec.CAGR - riskFreeAnnual) / rec.UlcerIndex
	}
	rec.GainToPain = gainToPain(values, dd)
	rec.PayoffRatio = payoffRatio(returns)
	rec.Expectancy = expectancy(returns)
	rec.HitRate = hitRate(returns)
	rec.MaxConsecutiveWins, rec.MaxConsecutiveLosses = consecutiveRuns(returns)
	rec.AvgDrawdown, rec.AvgDrawdownLength = avgDrawdownAndLength(dd)
	rec.LongestDrawdownLength = longestDrawdownLength(dd)
	rec.Skew, rec.Kurtosis = skewKurtosis(returns)

	return rec
}

func gather[T any](xs []T, indices []int) []T {
	out := make([]T, len(indices))
	for i, idx := range indices {
		out[i] = xs[idx]
	}
	return out
}

func pctReturns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, len(values)-1)
	for i := 0; i+1 < len(values); i++ {
		if values[i] == 0 {
			out[i] = 0
			continue
		}
		out[i] = values[i+1]/values[i] - 1
	}
	return out
}

func cagr(values []float64, years float64) float64 {
	if len(values) < 2 || years <= 0 || values[0] == 0 {
		return 0
	}
	growth := values[len(values)-1] / values[0]
	if growth < 0 {
		return 0
	}
	return math.Pow(growth, 1/years) - 1
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var sumSq float64
	for _, x := range xs {
		d := x - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)-1))
}

func sharpe(returns []float64) float64 {
	sd := stddev(returns)
	if sd == 0 {
		return 0
	}
	return mean(returns) / sd * math.Sqrt(periodsPerYear)
}

func sortino(returns []float64) float64 {
	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	sd := stddev(downside)
	if sd == 0 {
		return 0
	}
	return mean(returns) / sd * math.Sqrt(periodsPerYear)
}

// drawdownFractions returns, per bar, (peak-value)/peak as a
// non-negative fraction.
func drawdownFractions(values []float64) []float64 {
	out := make([]float64, len(values))
	peak := math.Inf(-1)
	for i, v := range values {
		if v > peak {
			peak = v
		}
		if peak <= 0 {
			out[i] = 0
			continue
		}
		out[i] = (peak - v) / peak
	}
	return out
}

func maxOf(xs []float64) float64 {
	var m float64
	for _, x := range xs {
		if x > m {
			m = x
		}
	}
	return m
}

func beta(returns, benchReturns []float64) float64 {
	n := len(returns)
	if len(benchReturns) < n {
		n = len(benchReturns)
	}
	if n < 2 {
		return 0
	}
	r, b := returns[:n], benchReturns[:n]
	mr, mb := mean(r), mean(b)
	var cov, varB float64
	for i := 0; i < n; i++ {
		dr, db := r[i]-mr, b[i]-mb
		cov += dr * db
		varB += db * db
	}
	cov /= float64(n - 1)
	varB /= float64(n - 1)
	if varB == 0 {
		return 0
	}
	return cov / varB
}

func timeInMarket(invested []bool) float64 {
	if len(invested) == 0 {
		return 0
	}
	var active int
	for _, v := range invested {
		if v {
			active++
		}
	}
	return float64(active) / float64(len(invested))
}

// winRate is computed from invested bars in indices using next-bar
// returns of the FULL curve, per spec — a deliberate exception to the
// "compute on values[S]" rule that the other metrics follow.
func winRate(full Input, indices []int) float64 {
	var wins, total int
	for _, i := range indices {
		if i >= len(full.Invested) || !full.Invested[i] {
			continue
		}
		if i+1 >= len(full.Values) || full.Values[i] == 0 {
			continue
		}
		total++
		if full.Values[i+1]/full.Values[i]-1 > 0 {
			wins++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total)
}

func avgWorstN(dd []float64, n int) float64 {
	sorted := append([]float64(nil), dd...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return mean(sorted)
}

func percentile(xs []float64, q float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	idx := int(math.Ceil(q*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func ulcerIndex(dd []float64) float64 {
	if len(dd) == 0 {
		return 0
	}
	var sumSq float64
	for _, d := range dd {
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(dd)))
}

// gainToPain divides total compounded return by the sum of increases in
// drawdown magnitude from one bar to the next.
func gainToPain(values, dd []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var pain float64
	prev := 0.0
	for _, d := range dd {
		if d > prev {
			pain += d - prev
		}
		prev = d
	}
	if pain <= 0 {
		return 0
	}
	gain := values[len(values)-1]/values[0] - 1
	return gain / pain
}

func payoffRatio(returns []float64) float64 {
	var gains, losses []float64
	for _, r := range returns {
		if r > 0 {
			gains = append(gains, r)
		} else if r < 0 {
			losses = append(losses, r)
		}
	}
	if len(gains) == 0 || len(losses) == 0 {
		return 0
	}
	return mean(gains) / math.Abs(mean(losses))
}

func expectancy(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	var gains, losses []float64
	for _, r := range returns {
		if r > 0 {
			gains = append(gains, r)
		} else if r < 0 {
			losses = append(losses, r)
		}
	}
	p := hitRate(returns)
	return p*mean(gains) + (1-p)*mean(losses)
}

func hitRate(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	var wins int
	for _, r := range returns {
		if r > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(returns))
}

func consecutiveRuns(returns []float64) (maxWins, maxLosses int) {
	var curWin, curLoss int
	for _, r := range returns {
		if r > 0 {
			curWin++
			curLoss = 0
		} else if r < 0 {
			curLoss++
			curWin = 0
		} else {
			curWin, curLoss = 0, 0
		}
		if curWin > maxWins {
			maxWins = curWin
		}
		if curLoss > maxLosses {
			maxLosses = curLoss
		}
	}
	return
}

func avgDrawdownAndLength(dd []float64) (float64, float64) {
	var mags []float64
	var lens []float64
	var curMags []float64
	for _, d := range dd {
		if d > 0 {
			curMags = append(curMags, d)
			continue
		}
		if len(curMags) > 0 {
			mags = append(mags, mean(curMags))
			lens = append(lens, float64(len(curMags)))
			curMags = nil
		}
	}
	if len(curMags) > 0 {
		mags = append(mags, mean(curMags))
		lens = append(lens, float64(len(curMags)))
	}
	if len(mags) == 0 {
		return 0, 0
	}
	return mean(mags), mean(lens)
}

func longestDrawdownLength(dd []float64) int {
	var longest, cur int
	for _, d := range dd {
		if d > 0 {
			cur++
			if cur > longest {
				longest = cur
			}
			continue
		}
		cur = 0
	}
	return longest
}

func skewKurtosis(returns []float64) (float64, float64) {
	n := len(returns)
	if n < 2 {
		return 0, 0
	}
	m := mean(returns)
	sd := stddev(returns)
	if sd == 0 {
		return 0, 0
	}
	var sumCube, sumQuad float64
	for _, r := range returns {
		z := (r - m) / sd
		sumCube += z * z * z
		sumQuad += z * z * z * z
	}
	skew := sumCube / float64(n)
	kurt := sumQuad/float64(n) - 3
	return skew, kurt
}
