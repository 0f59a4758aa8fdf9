package tree

import (
	"fmt"
	"sort"

	"github.com/atlasforge/flowback/internal/bterrors"
	"github.com/atlasforge/flowback/internal/indicator"
)

// Eval computes the allocation produced by node at ctx's current bar.
func Eval(node *Node, ctx *Context) (Allocation, error) {
	if node == nil {
		return Allocation{}, nil
	}
	switch node.Kind {
	case KindPosition:
		return evalPosition(node), nil
	case KindBasic:
		return evalAndCombine(node.Children["next"], ctx)
	case KindIndicator:
		return evalIndicatorNode(node, ctx)
	case KindFunction:
		return evalFunction(node, ctx)
	case KindScaling:
		return evalScaling(node, ctx)
	case KindAltExit:
		return evalAltExit(node, ctx)
	case KindNumbered:
		return evalNumbered(node, ctx)
	default:
		return nil, bterrors.MalformedTree("unknown node kind %q (id=%s)", node.Kind, node.ID)
	}
}

func evalPosition(node *Node) Allocation {
	out := Allocation{}
	if len(node.Positions) == 0 {
		return out
	}
	w := 1.0 / float64(len(node.Positions))
	for _, t := range node.Positions {
		out[t] += w
	}
	return out
}

func evalIndicatorNode(node *Node, ctx *Context) (Allocation, error) {
	slot := "else"
	if evalConditions(ctx, node.Conditions) {
		slot = "then"
	}
	return evalAndCombine(node.Children[slot], ctx)
}

func evalAltExit(node *Node, ctx *Context) (Allocation, error) {
	entered := ctx.NodeState[node.ID]
	entryMet := evalConditions(ctx, node.EntryConditions)
	exitMet := evalConditions(ctx, node.ExitConditions)

	switch {
	case !entered && entryMet:
		entered = true
	case entered && exitMet:
		entered = false
	}
	ctx.NodeState[node.ID] = entered

	slot := "else"
	if entered {
		slot = "then"
	}
	return evalAndCombine(node.Children[slot], ctx)
}

func evalNumbered(node *Node, ctx *Context) (Allocation, error) {
	nTrue := 0
	for _, item := range node.Items {
		if evalConditions(ctx, item.Conditions) {
			nTrue++
		}
	}

	switch node.Quantifier {
	case "any":
		return branchOnBool(nTrue >= 1, node, ctx)
	case "all":
		return branchOnBool(nTrue == len(node.Items), node, ctx)
	case "none":
		return branchOnBool(nTrue == 0, node, ctx)
	case "exactly":
		return branchOnBool(nTrue == node.N, node, ctx)
	case "atLeast":
		return branchOnBool(nTrue >= node.N, node, ctx)
	case "atMost":
		return branchOnBool(nTrue <= node.N, node, ctx)
	case "ladder":
		slotName := fmt.Sprintf("ladder-%d", nTrue)
		return evalAndCombine(node.Children[slotName], ctx)
	default:
		return nil, bterrors.MalformedTree("unknown quantifier %q (id=%s)", node.Quantifier, node.ID)
	}
}

func branchOnBool(met bool, node *Node, ctx *Context) (Allocation, error) {
	slot := "else"
	if met {
		slot = "then"
	}
	return evalAndCombine(node.Children[slot], ctx)
}

func evalFunction(node *Node, ctx *Context) (Allocation, error) {
	type scored struct {
		child *Node
		value float64
	}
	children := node.Children["next"]
	scoredChildren := make([]scored, 0, len(children))
	for _, c := range children {
		if c == nil {
			continue
		}
		tickers := collectPositionTickers(c)
		avg, ok := averageMetric(ctx, tickers, node.Metric, node.Window)
		if !ok {
			continue
		}
		scoredChildren = append(scoredChildren, scored{child: c, value: avg})
	}

	sort.SliceStable(scoredChildren, func(i, j int) bool {
		if node.Rank == "bottom" {
			return scoredChildren[i].value < scoredChildren[j].value
		}
		return scoredChildren[i].value > scoredChildren[j].value
	})

	n := node.PickN
	if n > len(scoredChildren) {
		n = len(scoredChildren)
	}
	if n < 0 {
		n = 0
	}
	picked := make([]*Node, n)
	for i := 0; i < n; i++ {
		picked[i] = scoredChildren[i].child
	}
	return evalAndCombine(picked, ctx)
}

func collectPositionTickers(node *Node) []string {
	seen := map[string]bool{}
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		if n.Kind == KindPosition {
			for _, t := range n.Positions {
				seen[t] = true
			}
		}
		for _, children := range n.Children {
			for _, c := range children {
				walk(c)
			}
		}
	}
	walk(node)
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func averageMetric(ctx *Context, tickers []string, metric indicator.Name, window int) (float64, bool) {
	if len(tickers) == 0 {
		return 0, false
	}
	var sum float64
	var n int
	for _, t := range tickers {
		v, ok := ctx.metricAt(t, metric, window)
		if !ok {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func evalScaling(node *Node, ctx *Context) (Allocation, error) {
	v, ok := ctx.metricAt(node.ScalingTicker, node.ScalingMetric, node.ScalingWindow)
	b := 0.0
	if ok && node.To != node.From {
		b = clamp((v-node.From)/(node.To-node.From), 0, 1)
	}

	thenAlloc, err := evalAndCombine(node.Children["then"], ctx)
	if err != nil {
		return nil, err
	}
	elseAlloc, err := evalAndCombine(node.Children["else"], ctx)
	if err != nil {
		return nil, err
	}
	return blend(thenAlloc, elseAlloc, b), nil
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func blend(thenAlloc, elseAlloc Allocation, b float64) Allocation {
	out := Allocation{}
	for _, t := range unionTickers(thenAlloc, elseAlloc) {
		if w := (1-b)*thenAlloc[t] + b*elseAlloc[t]; w != 0 {
			out[t] = w
		}
	}
	return out
}

func unionTickers(allocs ...Allocation) []string {
	seen := map[string]bool{}
	for _, a := range allocs {
		for t := range a {
			seen[t] = true
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// evalAndCombine evaluates each non-nil child in declared order and
// combines the results under the "equal" weighting policy (the only
// policy Validate allows through).
func evalAndCombine(children []*Node, ctx *Context) (Allocation, error) {
	allocs := make([]Allocation, 0, len(children))
	for _, c := range children {
		if c == nil {
			continue
		}
		a, err := Eval(c, ctx)
		if err != nil {
			return nil, err
		}
		allocs = append(allocs, a)
	}
	return combineEqual(allocs), nil
}

// combineEqual averages non-empty child allocations uniformly, iterating
// children in declared order and each allocation's tickers in sorted
// order so floating-point addition is reproducible bit-for-bit.
func combineEqual(allocs []Allocation) Allocation {
	nonEmpty := make([]Allocation, 0, len(allocs))
	for _, a := range allocs {
		if len(a) > 0 {
			nonEmpty = append(nonEmpty, a)
		}
	}
	if len(nonEmpty) == 0 {
		return Allocation{}
	}

	sum := map[string]float64{}
	for _, a := range nonEmpty {
		tickers := make([]string, 0, len(a))
		for t := range a {
			tickers = append(tickers, t)
		}
		sort.Strings(tickers)
		for _, t := range tickers {
			sum[t] += a[t]
		}
	}

	out := Allocation{}
	n := float64(len(nonEmpty))
	tickers := make([]string, 0, len(sum))
	for t := range sum {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	for _, t := range tickers {
		out[t] = sum[t] / n
	}
	return out
}
