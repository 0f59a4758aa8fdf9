package tree

import (
	"math"

	"github.com/atlasforge/flowback/internal/indicator"
	"github.com/atlasforge/flowback/internal/panel"
)

// Context is the per-bar evaluation context: the panel, the current bar
// index, the shared indicator cache, and the node-state map used by
// stateful gates (altExit). NodeState persists across bars within one
// simulation and must not be shared between independent simulations.
type Context struct {
	Panel     *panel.Panel
	BarIndex  int
	Cache     *indicator.Cache
	NodeState map[string]bool
}

// NewContext builds a Context with a fresh node-state map.
func NewContext(p *panel.Panel, cache *indicator.Cache) *Context {
	return &Context{Panel: p, Cache: cache, NodeState: make(map[string]bool)}
}

// AtBar returns a shallow copy of ctx positioned at a different bar index,
// sharing the same panel, cache, and node-state map (so altExit state
// keeps accumulating across the bars of one simulation).
func (ctx *Context) AtBar(index int) *Context {
	return &Context{Panel: ctx.Panel, BarIndex: index, Cache: ctx.Cache, NodeState: ctx.NodeState}
}

func (ctx *Context) seriesFor(ticker string, metric indicator.Name, window int) ([]float64, error) {
	key := indicator.Key{Ticker: ticker, Name: metric, Window: window}
	return ctx.Cache.GetOrCompute(key, func() ([]float64, error) {
		in := indicator.Input{
			Open:   ctx.Panel.Open[ticker],
			High:   ctx.Panel.High[ticker],
			Low:    ctx.Panel.Low[ticker],
			Close:  ctx.Panel.AdjustedClose[ticker],
			Volume: ctx.Panel.Volume[ticker],
		}
		return indicator.Compute(metric, in, window)
	})
}

// metricAtIndex returns the named indicator's value for ticker at the
// given bar index. ok is false on a missing ticker, an out-of-range
// index, a non-finite value, or a computation error — any of which must
// degrade to "false" at the condition layer, never abort evaluation.
func (ctx *Context) metricAtIndex(ticker string, metric indicator.Name, window, index int) (float64, bool) {
	if index < 0 {
		return 0, false
	}
	series, err := ctx.seriesFor(ticker, metric, window)
	if err != nil || index >= len(series) {
		return 0, false
	}
	v := series[index]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// metricAt is metricAtIndex at the context's current bar.
func (ctx *Context) metricAt(ticker string, metric indicator.Name, window int) (float64, bool) {
	return ctx.metricAtIndex(ticker, metric, window, ctx.BarIndex)
}
