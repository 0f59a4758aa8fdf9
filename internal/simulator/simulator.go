// Package simulator drives a strategy tree bar-by-bar over an aligned
// panel, rebalancing a notional portfolio on every allocation change and
// emitting the resulting equity curve.
package simulator

import (
	"sort"

	"github.com/atlasforge/flowback/internal/indicator"
	"github.com/atlasforge/flowback/internal/panel"
	"github.com/atlasforge/flowback/internal/tree"
)

// StartingEquity is the notional capital a simulation begins with.
const StartingEquity = 10_000.0

// Point is one sample of the equity curve.
type Point struct {
	Date   int64
	Equity float64
}

// Result is the full output of a simulation run.
type Result struct {
	Equity []Point
	// Allocations holds the target allocation chosen at each bar, in
	// panel order, for callers (e.g. Trace) that need it alongside the
	// curve.
	Allocations []tree.Allocation
}

// Trace, when non-nil, is invoked once per bar after its allocation has
// been computed and the equity curve point appended. It exists for
// tests and for verbose CLI output; it never affects simulation state.
type Trace func(barIndex int, date int64, alloc tree.Allocation, equity float64)

// Dates returns the equity curve's timestamp axis.
func (r *Result) Dates() []int64 {
	out := make([]int64, len(r.Equity))
	for i, p := range r.Equity {
		out[i] = p.Date
	}
	return out
}

// Values returns the equity curve's value axis.
func (r *Result) Values() []float64 {
	out := make([]float64, len(r.Equity))
	for i, p := range r.Equity {
		out[i] = p.Equity
	}
	return out
}

// Invested reports, per bar, whether that bar's allocation was non-empty
// — the input internal/perf's time-in-market metric needs.
func (r *Result) Invested() []bool {
	out := make([]bool, len(r.Allocations))
	for i, a := range r.Allocations {
		out[i] = len(a) > 0
	}
	return out
}

// Run simulates root over p, starting from StartingEquity and applying a
// proportional cost on every rebalance. costBps is in basis points
// (e.g. 5 means 0.05%).
//
// Share pricing uses the panel's unadjusted close. AdjustedClose is
// reserved for the indicator layer (tree.Context); mixing the two into
// share counts would double-count split/dividend adjustments already
// baked into the price the shares are marked at.
func Run(root *tree.Node, p *panel.Panel, cache *indicator.Cache, costBps float64, trace Trace) (*Result, error) {
	costMultiplier := 1 - costBps/10_000

	ctx := tree.NewContext(p, cache)
	holdings := map[string]float64{}
	var prevAlloc tree.Allocation

	curve := make([]Point, 0, p.Len())
	allocs := make([]tree.Allocation, 0, p.Len())

	for i := 0; i < p.Len(); i++ {
		barCtx := ctx.AtBar(i)
		alloc, err := tree.Eval(root, barCtx)
		if err != nil {
			return nil, err
		}

		currentValue := markToMarket(holdings, p, i)
		if len(holdings) == 0 {
			currentValue = equityAt(curve)
		}

		equity := currentValue
		if !allocationsEqual(alloc, prevAlloc) {
			rebalance(holdings, alloc, p, i, currentValue, costMultiplier)
			prevAlloc = alloc
			equity = markToMarket(holdings, p, i)
		}

		curve = append(curve, Point{Date: p.Dates[i], Equity: equity})
		allocs = append(allocs, alloc)

		if trace != nil {
			trace(i, p.Dates[i], alloc, equity)
		}
	}

	return &Result{Equity: curve, Allocations: allocs}, nil
}

// equityAt returns the running equity: StartingEquity before any bar has
// been appended, or the prior bar's equity otherwise. Holdings are empty
// only on bar 0 (before the first rebalance) or after a rebalance into an
// all-cash allocation, at which point equity should hold steady rather
// than reset.
func equityAt(curve []Point) float64 {
	if len(curve) == 0 {
		return StartingEquity
	}
	return curve[len(curve)-1].Equity
}

// markToMarket values holdings at bar i's close prices.
func markToMarket(holdings map[string]float64, p *panel.Panel, i int) float64 {
	var total float64
	tickers := make([]string, 0, len(holdings))
	for t := range holdings {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	for _, t := range tickers {
		total += holdings[t] * closeAt(p, t, i)
	}
	return total
}

func closeAt(p *panel.Panel, ticker string, i int) float64 {
	series := p.Close[ticker]
	if i < 0 || i >= len(series) {
		return 0
	}
	return series[i]
}

// rebalance sets holdings to target shares for every ticker in alloc,
// zeroing out everything else, iterating alloc's tickers in sorted
// order so the proportional cost and share math accumulate identically
// across runs.
func rebalance(holdings map[string]float64, alloc tree.Allocation, p *panel.Panel, i int, currentValue, costMultiplier float64) {
	tickers := make([]string, 0, len(alloc))
	for t := range alloc {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	for t := range holdings {
		if _, ok := alloc[t]; !ok {
			delete(holdings, t)
		}
	}

	for _, t := range tickers {
		weight := alloc[t]
		targetValue := currentValue * weight * costMultiplier
		price := closeAt(p, t, i)
		if price == 0 {
			delete(holdings, t)
			continue
		}
		holdings[t] = targetValue / price
	}
}

func allocationsEqual(a, b tree.Allocation) bool {
	if len(a) != len(b) {
		return false
	}
	for t, w := range a {
		if bw, ok := b[t]; !ok || bw != w {
			return false
		}
	}
	return true
}
