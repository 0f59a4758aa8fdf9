package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasforge/flowback/internal/indicator"
	"github.com/atlasforge/flowback/internal/panel"
)

// flatPanel builds a minimal Panel where every field for ticker holds the
// given values, suitable for indicator.Price which needs no warm-up.
func flatPanel(tickerValues map[string][]float64) *panel.Panel {
	p := &panel.Panel{
		Open: map[string][]float64{}, High: map[string][]float64{}, Low: map[string][]float64{},
		Close: map[string][]float64{}, AdjustedClose: map[string][]float64{}, Volume: map[string][]float64{},
	}
	for ticker, values := range tickerValues {
		p.Open[ticker] = values
		p.High[ticker] = values
		p.Low[ticker] = values
		p.Close[ticker] = values
		p.AdjustedClose[ticker] = values
		p.Volume[ticker] = values
	}
	for _, values := range tickerValues {
		p.Dates = make([]int64, len(values))
		break
	}
	return p
}

func newCtx(p *panel.Panel, bar int) *Context {
	return &Context{Panel: p, BarIndex: bar, Cache: indicator.NewCache(0), NodeState: map[string]bool{}}
}

func TestPositionNodeEqualWeight(t *testing.T) {
	node := &Node{ID: "p1", Kind: KindPosition, Positions: []string{"SPY", "QQQ"}}
	alloc, err := Eval(node, newCtx(flatPanel(map[string][]float64{"SPY": {100}, "QQQ": {50}}), 0))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, alloc["SPY"], 1e-12)
	assert.InDelta(t, 0.5, alloc["QQQ"], 1e-12)
}

func TestPositionNodeEmptyListIsEmptyAllocation(t *testing.T) {
	node := &Node{ID: "p1", Kind: KindPosition, Positions: nil}
	alloc, err := Eval(node, newCtx(flatPanel(nil), 0))
	require.NoError(t, err)
	assert.Empty(t, alloc)
}

func TestFunctionNodePicksLowestMetric(t *testing.T) {
	// scenario 4 from the concrete end-to-end suite, using Price in place
	// of RSI so the metric value is exactly the engineered input (RSI's
	// own warm-up math is covered separately in internal/indicator).
	a := &Node{ID: "A", Kind: KindPosition, Positions: []string{"A"}}
	b := &Node{ID: "B", Kind: KindPosition, Positions: []string{"B"}}
	c := &Node{ID: "C", Kind: KindPosition, Positions: []string{"C"}}
	fn := &Node{
		ID: "fn", Kind: KindFunction, Metric: indicator.Price, Window: 1, Rank: "bottom", PickN: 1,
		Children: map[string][]*Node{"next": {a, b, c}},
	}

	p := flatPanel(map[string][]float64{"A": {40}, "B": {20}, "C": {55}})
	alloc, err := Eval(fn, newCtx(p, 0))
	require.NoError(t, err)
	assert.Equal(t, Allocation{"B": 1.0}, alloc)
}

func TestScalingBlendEndpointsAndMidpoint(t *testing.T) {
	spy := &Node{ID: "spy", Kind: KindPosition, Positions: []string{"SPY"}}
	bil := &Node{ID: "bil", Kind: KindPosition, Positions: []string{"BIL"}}
	mk := func(gauge float64) *Node {
		return &Node{
			ID: "scale", Kind: KindScaling,
			ScalingTicker: "SPY", ScalingMetric: indicator.Price, ScalingWindow: 1,
			From: 30, To: 70,
			Children: map[string][]*Node{"then": {spy}, "else": {bil}},
		}
	}

	at := func(gauge float64) Allocation {
		p := flatPanel(map[string][]float64{"SPY": {gauge}, "BIL": {gauge}})
		alloc, err := Eval(mk(gauge), newCtx(p, 0))
		require.NoError(t, err)
		return alloc
	}

	assert.InDelta(t, 1.0, at(30)["SPY"], 1e-9)
	assert.InDelta(t, 0.0, at(30)["BIL"], 1e-9)

	assert.InDelta(t, 0.0, at(70)["SPY"], 1e-9)
	assert.InDelta(t, 1.0, at(70)["BIL"], 1e-9)

	assert.InDelta(t, 0.5, at(50)["SPY"], 1e-9)
	assert.InDelta(t, 0.5, at(50)["BIL"], 1e-9)
}

func TestScalingFromEqualsToYieldsThenAlloc(t *testing.T) {
	spy := &Node{ID: "spy", Kind: KindPosition, Positions: []string{"SPY"}}
	bil := &Node{ID: "bil", Kind: KindPosition, Positions: []string{"BIL"}}
	node := &Node{
		ID: "scale", Kind: KindScaling,
		ScalingTicker: "SPY", ScalingMetric: indicator.Price, ScalingWindow: 1,
		From: 50, To: 50,
		Children: map[string][]*Node{"then": {spy}, "else": {bil}},
	}
	p := flatPanel(map[string][]float64{"SPY": {50}, "BIL": {50}})
	alloc, err := Eval(node, newCtx(p, 0))
	require.NoError(t, err)
	assert.Equal(t, Allocation{"SPY": 1.0}, alloc)
}

func TestAltExitStaysInElseWhenNeverTriggered(t *testing.T) {
	spy := &Node{ID: "spy", Kind: KindPosition, Positions: []string{"SPY"}}
	cash := &Node{ID: "cash", Kind: KindPosition, Positions: []string{"BIL"}}
	node := &Node{
		ID: "alt", Kind: KindAltExit,
		EntryConditions: []Condition{{Composition: "if", LeftTicker: "SPY", LeftMetric: indicator.Price, LeftWindow: 1, Comparator: "gt", Threshold: 1e9}},
		ExitConditions:  []Condition{{Composition: "if", LeftTicker: "SPY", LeftMetric: indicator.Price, LeftWindow: 1, Comparator: "lt", Threshold: -1e9}},
		Children:        map[string][]*Node{"then": {spy}, "else": {cash}},
	}
	p := flatPanel(map[string][]float64{"SPY": {100, 101, 102}})
	ctx := newCtx(p, 0)
	for bar := 0; bar < 3; bar++ {
		alloc, err := Eval(node, ctx.AtBar(bar))
		require.NoError(t, err)
		assert.Equal(t, Allocation{"BIL": 1.0}, alloc)
	}
	assert.Len(t, ctx.NodeState, 1)
	assert.False(t, ctx.NodeState["alt"])
}

func TestAltExitTransitionsAndPersistsAcrossBars(t *testing.T) {
	spy := &Node{ID: "spy", Kind: KindPosition, Positions: []string{"SPY"}}
	cash := &Node{ID: "cash", Kind: KindPosition, Positions: []string{"BIL"}}
	node := &Node{
		ID: "alt", Kind: KindAltExit,
		EntryConditions: []Condition{{Composition: "if", LeftTicker: "SPY", LeftMetric: indicator.Price, LeftWindow: 1, Comparator: "gt", Threshold: 50}},
		ExitConditions:  []Condition{{Composition: "if", LeftTicker: "SPY", LeftMetric: indicator.Price, LeftWindow: 1, Comparator: "lt", Threshold: 10}},
		Children:        map[string][]*Node{"then": {spy}, "else": {cash}},
	}
	p := flatPanel(map[string][]float64{"SPY": {5, 60, 60, 5}})
	ctx := newCtx(p, 0)

	alloc0, _ := Eval(node, ctx.AtBar(0))
	assert.Equal(t, Allocation{"BIL": 1.0}, alloc0) // not entered, entry not met (5 < 50)

	alloc1, _ := Eval(node, ctx.AtBar(1))
	assert.Equal(t, Allocation{"SPY": 1.0}, alloc1) // entry met (60 > 50), transitions to entered

	alloc2, _ := Eval(node, ctx.AtBar(2))
	assert.Equal(t, Allocation{"SPY": 1.0}, alloc2) // stays entered; exit not met

	alloc3, _ := Eval(node, ctx.AtBar(3))
	assert.Equal(t, Allocation{"BIL": 1.0}, alloc3) // exit met (5 < 10), transitions back out
}

func TestConditionCompositionAndBindsTighterThanOr(t *testing.T) {
	// if A and B or C: (A && B) || C
	conds := func(a, b, c bool) []Condition {
		mk := func(comp string, v bool) Condition {
			threshold := 0.0
			if v {
				threshold = -1 // value (1) > -1 => true
			} else {
				threshold = 2 // value (1) > 2 is false
			}
			return Condition{Composition: comp, LeftTicker: "X", LeftMetric: indicator.Price, LeftWindow: 1, Comparator: "gt", Threshold: threshold}
		}
		return []Condition{mk("if", a), mk("and", b), mk("or", c)}
	}
	p := flatPanel(map[string][]float64{"X": {1}})
	ctx := newCtx(p, 0)

	assert.True(t, evalConditions(ctx, conds(true, true, false)))   // A&&B
	assert.False(t, evalConditions(ctx, conds(true, false, false))) // A&&!B, !C
	assert.True(t, evalConditions(ctx, conds(false, false, true)))  // C alone
	assert.False(t, evalConditions(ctx, conds(false, false, false)))
}

func TestConditionsAllFalseOnMissingData(t *testing.T) {
	conds := []Condition{{Composition: "if", LeftTicker: "MISSING", LeftMetric: indicator.Price, LeftWindow: 1, Comparator: "gt", Threshold: 0}}
	ctx := newCtx(flatPanel(map[string][]float64{"X": {1}}), 0)
	assert.False(t, evalConditions(ctx, conds))
}

func TestCrossAboveRequiresStrictSignChange(t *testing.T) {
	// SPY: 5, 15 — crosses above 10 between bar 0 and bar 1.
	p := flatPanel(map[string][]float64{"SPY": {5, 15, 15}})
	cond := Condition{Composition: "if", LeftTicker: "SPY", LeftMetric: indicator.Price, LeftWindow: 1, Comparator: "crossAbove", Threshold: 10}

	ctx0 := newCtx(p, 0)
	assert.False(t, evalConditions(ctx0, []Condition{cond})) // no prior bar

	ctx1 := newCtx(p, 1)
	assert.True(t, evalConditions(ctx1, []Condition{cond})) // 5 < 10, 15 >= 10

	ctx2 := newCtx(p, 2)
	assert.False(t, evalConditions(ctx2, []Condition{cond})) // already above; no new cross
}

func TestValidateRejectsUnsupportedWeighting(t *testing.T) {
	node := &Node{ID: "n", Kind: KindBasic, Weighting: "inverse"}
	err := Validate(node)
	require.Error(t, err)
}

func TestValidateRejectsNonPositiveWindow(t *testing.T) {
	node := &Node{ID: "n", Kind: KindFunction, Metric: indicator.Price, Window: 0}
	err := Validate(node)
	require.Error(t, err)
}

func TestValidateAcceptsWellFormedTree(t *testing.T) {
	spy := &Node{ID: "spy", Kind: KindPosition, Positions: []string{"SPY"}}
	node := &Node{
		ID: "root", Kind: KindIndicator,
		Conditions: []Condition{{Composition: "if", LeftTicker: "SPY", LeftMetric: indicator.Price, LeftWindow: 1, Comparator: "gt", Threshold: 0}},
		Children:   map[string][]*Node{"then": {spy}},
	}
	assert.NoError(t, Validate(node))
}
