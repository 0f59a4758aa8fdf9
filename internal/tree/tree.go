// Package tree implements the strategy tree: a tagged-union node type
// covering all seven node kinds, its condition-composition semantics, and
// the recursive evaluator that turns a tree plus a bar index into an
// Allocation.
package tree

import "github.com/atlasforge/flowback/internal/indicator"

// Kind discriminates a Node's variant.
type Kind string

const (
	KindPosition  Kind = "position"
	KindBasic     Kind = "basic"
	KindIndicator Kind = "indicator"
	KindFunction  Kind = "function"
	KindScaling   Kind = "scaling"
	KindAltExit   Kind = "altExit"
	KindNumbered  Kind = "numbered"
)

// Node is the tagged union: Kind selects which of the kind-specific
// fields below are populated. Common fields (ID, Weighting, Children) are
// shared by every kind.
type Node struct {
	ID        string
	Kind      Kind
	Weighting string // "equal" is the only supported policy; see Validate.
	Children  map[string][]*Node

	// position
	Positions []string

	// indicator
	Conditions []Condition

	// function (ranking/filtering)
	Metric indicator.Name
	Window int
	PickN  int
	Rank   string // "top" or "bottom"

	// scaling (linear blend)
	ScalingTicker string
	ScalingMetric indicator.Name
	ScalingWindow int
	From, To      float64

	// altExit (stateful gate)
	EntryConditions []Condition
	ExitConditions  []Condition

	// numbered (quantifier)
	Quantifier string // any, all, none, exactly, atLeast, atMost, ladder
	N          int
	Items      []NumberedItem
}

// NumberedItem is one entry in a numbered node's item list.
type NumberedItem struct {
	Conditions []Condition
}

// Condition is a single predicate line, carrying its own composition tag
// (if/and/or) relative to the conditions around it in the same list.
type Condition struct {
	// ID addresses this condition for parameter-sweep overrides; empty
	// when the condition is never a sweep target.
	ID string

	Composition string // "if", "and", "or"

	LeftTicker string
	LeftMetric indicator.Name
	LeftWindow int

	Comparator string // "gt", "lt", "crossAbove", "crossBelow"

	Expanded    bool
	Threshold   float64
	RightTicker string
	RightMetric indicator.Name
	RightWindow int
}

// Allocation is a ticker-to-weight mapping. The sum is 0 or 1 in the
// common case; scaling blends may produce valid intermediate sums.
type Allocation map[string]float64
