package tree

// evalConditions evaluates a condition list's if/and/or composition with
// AND binding tighter than OR. Per spec, any single condition with
// missing (non-finite, or out-of-range) input fails the ENTIRE list, not
// just the OR-term it belongs to.
func evalConditions(ctx *Context, conditions []Condition) bool {
	if len(conditions) == 0 {
		return false
	}

	values := make([]bool, len(conditions))
	for i, c := range conditions {
		v, ok := evalCondition(ctx, c)
		if !ok {
			return false
		}
		values[i] = v
	}

	var groups [][]bool
	var current []bool
	for i, c := range conditions {
		if c.Composition == "and" {
			current = append(current, values[i])
			continue
		}
		// "if" or "or": close the current AND-group and start a new one
		// from this condition.
		if len(current) > 0 {
			groups = append(groups, current)
		}
		current = []bool{values[i]}
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}

	for _, g := range groups {
		allTrue := true
		for _, b := range g {
			if !b {
				allTrue = false
				break
			}
		}
		if allTrue {
			return true
		}
	}
	return false
}

// evalCondition evaluates a single predicate. ok is false whenever any
// input the predicate depends on is missing; the caller treats that as
// "condition list fails entirely", per spec.
//
// crossAbove/crossBelow follow the original implementation's strict
// sign-change form (a value crossing the threshold between bar i-1 and
// bar i), not the simplified "greater/less than at the current bar" form
// spec.md's own open question flags as ambiguous — see DESIGN.md.
func evalCondition(ctx *Context, c Condition) (bool, bool) {
	left, ok := ctx.metricAt(c.LeftTicker, c.LeftMetric, c.LeftWindow)
	if !ok {
		return false, false
	}
	right, ok := rightValue(ctx, c, ctx.BarIndex)
	if !ok {
		return false, false
	}

	switch c.Comparator {
	case "gt":
		return left > right, true
	case "lt":
		return left < right, true
	case "crossAbove":
		if ctx.BarIndex == 0 {
			return false, true
		}
		prevLeft, ok := ctx.metricAtIndex(c.LeftTicker, c.LeftMetric, c.LeftWindow, ctx.BarIndex-1)
		if !ok {
			return false, false
		}
		prevRight, ok := rightValue(ctx, c, ctx.BarIndex-1)
		if !ok {
			return false, false
		}
		return prevLeft < prevRight && left >= right, true
	case "crossBelow":
		if ctx.BarIndex == 0 {
			return false, true
		}
		prevLeft, ok := ctx.metricAtIndex(c.LeftTicker, c.LeftMetric, c.LeftWindow, ctx.BarIndex-1)
		if !ok {
			return false, false
		}
		prevRight, ok := rightValue(ctx, c, ctx.BarIndex-1)
		if !ok {
			return false, false
		}
		return prevLeft > prevRight && left <= right, true
	default:
		return false, false
	}
}

func rightValue(ctx *Context, c Condition, index int) (float64, bool) {
	if !c.Expanded {
		return c.Threshold, true
	}
	return ctx.metricAtIndex(c.RightTicker, c.RightMetric, c.RightWindow, index)
}
