package tree

import "github.com/atlasforge/flowback/internal/bterrors"

// Validate walks the tree rejecting malformed structure before a
// simulation ever begins: unsupported weighting policies, non-positive
// windows, and unknown node kinds / quantifiers all fail here rather than
// silently degrading at evaluation time.
//
// Per spec.md's open question on weighting policies, this implementation
// rejects anything other than "equal" explicitly (an empty Weighting is
// treated as "equal" for caller convenience), rather than falling back to
// the first child as the reference implementation does.
func Validate(node *Node) error {
	if node == nil {
		return nil
	}
	if node.Weighting != "" && node.Weighting != "equal" {
		return bterrors.MalformedTree("unsupported weighting policy %q (id=%s)", node.Weighting, node.ID)
	}

	switch node.Kind {
	case KindPosition, KindBasic:
	case KindIndicator:
		if err := validateConditions(node.Conditions, node.ID); err != nil {
			return err
		}
	case KindFunction:
		if node.Window <= 0 {
			return bterrors.MalformedTree("non-positive window on function node %s", node.ID)
		}
	case KindScaling:
		if node.ScalingWindow <= 0 {
			return bterrors.MalformedTree("non-positive window on scaling node %s", node.ID)
		}
	case KindAltExit:
		if err := validateConditions(node.EntryConditions, node.ID); err != nil {
			return err
		}
		if err := validateConditions(node.ExitConditions, node.ID); err != nil {
			return err
		}
	case KindNumbered:
		switch node.Quantifier {
		case "any", "all", "none", "exactly", "atLeast", "atMost", "ladder":
		default:
			return bterrors.MalformedTree("unknown quantifier %q (id=%s)", node.Quantifier, node.ID)
		}
		for _, item := range node.Items {
			if err := validateConditions(item.Conditions, node.ID); err != nil {
				return err
			}
		}
	default:
		return bterrors.MalformedTree("unknown node kind %q (id=%s)", node.Kind, node.ID)
	}

	for _, children := range node.Children {
		for _, c := range children {
			if err := Validate(c); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateConditions(conditions []Condition, nodeID string) error {
	for _, c := range conditions {
		if c.LeftWindow <= 0 {
			return bterrors.MalformedTree("non-positive window in condition on node %s", nodeID)
		}
		if c.Expanded && c.RightWindow <= 0 {
			return bterrors.MalformedTree("non-positive window in condition on node %s", nodeID)
		}
	}
	return nil
}
