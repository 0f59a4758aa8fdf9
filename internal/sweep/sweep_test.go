package sweep

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasforge/flowback/internal/indicator"
	"github.com/atlasforge/flowback/internal/panel"
	"github.com/atlasforge/flowback/internal/perf"
	"github.com/atlasforge/flowback/internal/simulator"
	"github.com/atlasforge/flowback/internal/tree"
)

func buildPanel(closes map[string][]float64) *panel.Panel {
	p := &panel.Panel{
		Open: map[string][]float64{}, High: map[string][]float64{}, Low: map[string][]float64{},
		Close: map[string][]float64{}, AdjustedClose: map[string][]float64{}, Volume: map[string][]float64{},
	}
	for ticker, values := range closes {
		p.Open[ticker] = values
		p.High[ticker] = values
		p.Low[ticker] = values
		p.Close[ticker] = values
		p.AdjustedClose[ticker] = values
		p.Volume[ticker] = make([]float64, len(values))
		p.Dates = make([]int64, len(values))
		for i := range p.Dates {
			p.Dates[i] = int64(i)
		}
	}
	return p
}

func rsiGateTree() *tree.Node {
	spy := &tree.Node{ID: "spy", Kind: tree.KindPosition, Positions: []string{"SPY"}}
	bil := &tree.Node{ID: "bil", Kind: tree.KindPosition, Positions: []string{"BIL"}}
	return &tree.Node{
		ID: "gate", Kind: tree.KindIndicator,
		Conditions: []tree.Condition{{ID: "c1", Composition: "if", LeftTicker: "SPY", LeftMetric: indicator.RSIWilder_, LeftWindow: 14, Comparator: "lt", Threshold: 30}},
		Children:   map[string][]*tree.Node{"then": {spy}, "else": {bil}},
	}
}

func flatPrices(n int, start float64) []float64 {
	out := make([]float64, n)
	v := start
	for i := range out {
		out[i] = v
		v += 0.37
	}
	return out
}

func TestFourVariantsOverThresholdShareCacheEntry(t *testing.T) {
	p := buildPanel(map[string][]float64{"SPY": flatPrices(40, 50), "BIL": flatPrices(40, 10)})
	cache := indicator.NewCache(0)

	ranges := []Range{{NodeID: "gate", ConditionID: "c1", Field: FieldThreshold, Enabled: true, Min: 25, Max: 40, Step: 5}}
	results, err := Run(context.Background(), rsiGateTree(), ranges, p, nil, 0, 2, cache)
	require.NoError(t, err)
	require.Len(t, results, 4)
	for _, r := range results {
		require.NoError(t, r.Err)
	}

	_, _, size := cache.Stats()
	// All four variants read the same (SPY, RSI, 14) series — the cache
	// should hold exactly one entry for it (plus BIL's Price lookups are
	// absent here since the gate only reads SPY).
	assert.Equal(t, 1, size)
}

func TestZeroEnabledRangesYieldsSingleVariantEqualToBaseBacktest(t *testing.T) {
	p := buildPanel(map[string][]float64{"SPY": flatPrices(10, 100)})
	root := &tree.Node{ID: "root", Kind: tree.KindPosition, Positions: []string{"SPY"}}

	results, err := Run(context.Background(), root, nil, p, nil, 0, 1, indicator.NewCache(0))
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)

	simResult, err := simulator.Run(root, p, indicator.NewCache(0), 0, nil)
	require.NoError(t, err)
	want := perf.Compute(perf.Input{Dates: simResult.Dates(), Values: simResult.Values(), Invested: simResult.Invested()})
	assert.Equal(t, want, results[0].Metrics)
}

func TestRangeValuesIncludesMaxEvenWhenStepSkipsIt(t *testing.T) {
	r := Range{Min: 0, Max: 10, Step: 3}
	assert.Equal(t, []float64{0, 3, 6, 9, 10}, r.Values())
}

func TestResultsPreserveInputOrder(t *testing.T) {
	p := buildPanel(map[string][]float64{"SPY": flatPrices(30, 50), "BIL": flatPrices(30, 10)})
	ranges := []Range{{NodeID: "gate", ConditionID: "c1", Field: FieldThreshold, Enabled: true, Min: 20, Max: 50, Step: 10}}
	results, err := Run(context.Background(), rsiGateTree(), ranges, p, nil, 0, 4, indicator.NewCache(0))
	require.NoError(t, err)
	require.Len(t, results, 4)
	for i, r := range results {
		require.Len(t, r.Assignments, 1)
		assert.Equal(t, float64(20+10*i), r.Assignments[0].Value)
	}
}
