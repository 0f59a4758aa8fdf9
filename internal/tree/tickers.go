package tree

import "sort"

// CollectTickers walks the whole tree and returns two sorted, deduped
// ticker sets: every ticker named in a position leaf, and every ticker
// an indicator computation reads from (condition left/right sides and
// scaling gauges). A function node's ranking metric reads its descendant
// position tickers, which appear only in the position set. Panel
// construction needs both: position tickers to know what the portfolio
// can hold, indicator tickers to know what the alignment pass must
// intersect over.
func CollectTickers(root *Node) (positions, indicators []string) {
	posSeen := map[string]bool{}
	indSeen := map[string]bool{}

	collectConditions := func(conditions []Condition) {
		for _, c := range conditions {
			if c.LeftTicker != "" {
				indSeen[c.LeftTicker] = true
			}
			if c.Expanded && c.RightTicker != "" {
				indSeen[c.RightTicker] = true
			}
		}
	}

	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		switch n.Kind {
		case KindPosition:
			for _, t := range n.Positions {
				posSeen[t] = true
			}
		case KindIndicator:
			collectConditions(n.Conditions)
		case KindAltExit:
			collectConditions(n.EntryConditions)
			collectConditions(n.ExitConditions)
		case KindNumbered:
			for _, item := range n.Items {
				collectConditions(item.Conditions)
			}
		case KindFunction:
			// ranking metric is evaluated over descendant position
			// tickers, discovered separately once those are walked.
		case KindScaling:
			if n.ScalingTicker != "" {
				indSeen[n.ScalingTicker] = true
			}
		}
		for _, children := range n.Children {
			for _, c := range children {
				walk(c)
			}
		}
	}
	walk(root)

	positions = sortedKeys(posSeen)
	indicators = sortedKeys(indSeen)
	return positions, indicators
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
