// Package sweep expands a base strategy tree and a set of parameter
// ranges into variant trees, evaluates each one against a shared panel
// and indicator cache, and reports per-variant metric bundles in input
// order.
package sweep

import (
	"context"
	"encoding/json"
	"math"
	"runtime"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/atlasforge/flowback/internal/bterrors"
	"github.com/atlasforge/flowback/internal/indicator"
	"github.com/atlasforge/flowback/internal/panel"
	"github.com/atlasforge/flowback/internal/perf"
	"github.com/atlasforge/flowback/internal/simulator"
	"github.com/atlasforge/flowback/internal/tree"
)

// Field identifies which field of a targeted condition (or, for the
// window-only exception below, of the node itself) a Range overrides.
type Field string

const (
	FieldWindow    Field = "window"
	FieldThreshold Field = "threshold"
)

// Range describes one parameter dimension of the sweep: a target
// location in the base tree plus the (min, max, step) of values to try.
//
// Target addressing follows original_source/python/flowchart_branch_generator.py's
// (nodeId, conditionId) pair: NodeID plus ConditionID locate exactly one
// Condition anywhere in the tree (in Conditions, EntryConditions,
// ExitConditions, or any numbered Item's Conditions). ConditionID empty
// with Field=window targets a function node's bare Window field
// directly, since it has no condition to key into.
type Range struct {
	NodeID      string
	ConditionID string
	Field       Field
	Enabled     bool
	Min, Max, Step float64
}

// Values enumerates this range's discrete values, always including Max
// even if Step would otherwise skip over it. A non-positive Step yields
// Min alone.
func (r Range) Values() []float64 {
	if r.Step <= 0 {
		return []float64{r.Min}
	}
	var values []float64
	for v := r.Min; v <= r.Max+1e-9; v += r.Step {
		values = append(values, v)
	}
	if len(values) == 0 || math.Abs(values[len(values)-1]-r.Max) > 1e-9 {
		values = append(values, r.Max)
	}
	return values
}

// Assignment is one (range, value) pair chosen for a variant.
type Assignment struct {
	Range Range
	Value float64
}

// VariantResult is one variant's outcome: the parameter assignment that
// produced it alongside its metric bundle, or an error if evaluation
// failed. RunID has no effect on computation or determinism; it exists
// purely for log correlation and cache-stats attribution across a
// sweep's concurrent variants.
type VariantResult struct {
	RunID       string
	Assignments []Assignment
	Metrics     perf.Record
	Err         error
}

// Run expands ranges into the Cartesian product of enabled, numeric
// ranges, evaluates every variant against p using a shared indicator
// cache, and returns results in the same order the combinations were
// generated (base tree first if there are zero enabled ranges).
//
// workers bounds the concurrent variant count; values <= 0 default to
// runtime.GOMAXPROCS(0) workers.
func Run(ctx context.Context, base *tree.Node, ranges []Range, p *panel.Panel, benchmark []float64, costBps float64, workers int, cache *indicator.Cache) ([]VariantResult, error) {
	enabled := enabledRanges(ranges)
	combos := cartesianProduct(enabled)

	if cache == nil {
		cache = indicator.NewCache(cacheSizeHint(base, len(combos)))
	}

	results := make([]VariantResult, len(combos))

	g, ctx := errgroup.WithContext(ctx)
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(workers)

	for i, combo := range combos {
		i, combo := i, combo
		runID := uuid.New().String()
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = VariantResult{RunID: runID, Assignments: combo, Err: bterrors.Cancelled("sweep cancelled before variant %d ran", i)}
				return nil
			}
			variant, err := applyAssignments(base, combo)
			if err != nil {
				results[i] = VariantResult{RunID: runID, Assignments: combo, Err: err}
				return nil
			}
			if err := tree.Validate(variant); err != nil {
				results[i] = VariantResult{RunID: runID, Assignments: combo, Err: err}
				return nil
			}
			simResult, err := simulator.Run(variant, p, cache, costBps, nil)
			if err != nil {
				results[i] = VariantResult{RunID: runID, Assignments: combo, Err: err}
				return nil
			}
			in := perf.Input{Dates: simResult.Dates(), Values: simResult.Values(), Invested: simResult.Invested(), Benchmark: benchmark}
			results[i] = VariantResult{RunID: runID, Assignments: combo, Metrics: perf.Compute(in)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func enabledRanges(ranges []Range) []Range {
	out := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		if r.Enabled {
			out = append(out, r)
		}
	}
	return out
}

// cartesianProduct returns every combination of the ranges' discrete
// values, one Assignment slice per combination. Zero enabled ranges
// yields a single empty combination — the base tree evaluated as-is.
func cartesianProduct(ranges []Range) [][]Assignment {
	if len(ranges) == 0 {
		return [][]Assignment{{}}
	}
	combos := [][]Assignment{{}}
	for _, r := range ranges {
		var next [][]Assignment
		for _, combo := range combos {
			for _, v := range r.Values() {
				extended := append(append([]Assignment{}, combo...), Assignment{Range: r, Value: v})
				next = append(next, extended)
			}
		}
		combos = next
	}
	return combos
}

// applyAssignments deep-copies base and overwrites each assignment's
// targeted field.
func applyAssignments(base *tree.Node, assignments []Assignment) (*tree.Node, error) {
	variant, err := deepCopy(base)
	if err != nil {
		return nil, err
	}
	for _, a := range assignments {
		if err := applyOne(variant, a); err != nil {
			return nil, err
		}
	}
	return variant, nil
}

func deepCopy(n *tree.Node) (*tree.Node, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}
	var out tree.Node
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func applyOne(root *tree.Node, a Assignment) error {
	node := findNode(root, a.Range.NodeID)
	if node == nil {
		return bterrors.MalformedTree("sweep target node %q not found", a.Range.NodeID)
	}

	if a.Range.ConditionID == "" {
		switch a.Range.Field {
		case FieldWindow:
			switch node.Kind {
			case tree.KindFunction:
				node.Window = int(a.Value)
				return nil
			case tree.KindScaling:
				node.ScalingWindow = int(a.Value)
				return nil
			}
		}
		return bterrors.MalformedTree("sweep target node %q has no bare field for %q", a.Range.NodeID, a.Range.Field)
	}

	if applyToCondition(node.Conditions, a) || applyToCondition(node.EntryConditions, a) || applyToCondition(node.ExitConditions, a) {
		return nil
	}
	for i := range node.Items {
		if applyToCondition(node.Items[i].Conditions, a) {
			return nil
		}
	}
	return bterrors.MalformedTree("sweep target condition %q on node %q not found", a.Range.ConditionID, a.Range.NodeID)
}

func applyToCondition(conditions []tree.Condition, a Assignment) bool {
	for i := range conditions {
		if conditions[i].ID != a.Range.ConditionID {
			continue
		}
		switch a.Range.Field {
		case FieldWindow:
			conditions[i].LeftWindow = int(a.Value)
		case FieldThreshold:
			conditions[i].Threshold = a.Value
		}
		return true
	}
	return false
}

func findNode(node *tree.Node, id string) *tree.Node {
	if node == nil {
		return nil
	}
	if node.ID == id {
		return node
	}
	slots := make([]string, 0, len(node.Children))
	for slot := range node.Children {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	for _, slot := range slots {
		for _, c := range node.Children[slot] {
			if found := findNode(c, id); found != nil {
				return found
			}
		}
	}
	return nil
}

// cacheSizeHint walks the base tree once, collecting the set of
// (ticker, indicator, window) triples any condition in it could touch,
// to size a freshly created cache. Purely an optimization — never a
// correctness dependency, per the concurrency model's shared-cache note.
func cacheSizeHint(root *tree.Node, variantCount int) int {
	triples := map[indicator.Key]bool{}
	var walk func(n *tree.Node)
	collect := func(conds []tree.Condition) {
		for _, c := range conds {
			triples[indicator.Key{Ticker: c.LeftTicker, Name: c.LeftMetric, Window: c.LeftWindow}] = true
			if c.Expanded {
				triples[indicator.Key{Ticker: c.RightTicker, Name: c.RightMetric, Window: c.RightWindow}] = true
			}
		}
	}
	walk = func(n *tree.Node) {
		if n == nil {
			return
		}
		collect(n.Conditions)
		collect(n.EntryConditions)
		collect(n.ExitConditions)
		for _, item := range n.Items {
			collect(item.Conditions)
		}
		if n.Kind == tree.KindFunction || n.Kind == tree.KindScaling {
			triples[indicator.Key{Ticker: n.ScalingTicker, Name: n.Metric, Window: n.Window}] = true
		}
		for _, children := range n.Children {
			for _, c := range children {
				walk(c)
			}
		}
	}
	walk(root)

	hint := len(triples) * variantCount
	if hint <= 0 {
		hint = 64
	}
	return hint
}
