package xpath

// Axis enumerates the thirteen XPath 1.0 axes (spec §4.9 "Navigate(axis,
// node_test)").
type Axis int

const (
	AxisChild Axis = iota
	AxisDescendant
	AxisParent
	AxisAncestor
	AxisFollowingSibling
	AxisPrecedingSibling
	AxisFollowing
	AxisPreceding
	AxisAttribute
	AxisNamespace
	AxisSelf
	AxisDescendantOrSelf
	AxisAncestorOrSelf
)

func axisByName(name string) (Axis, bool) {
	switch name {
	case "child":
		return AxisChild, true
	case "descendant":
		return AxisDescendant, true
	case "parent":
		return AxisParent, true
	case "ancestor":
		return AxisAncestor, true
	case "following-sibling":
		return AxisFollowingSibling, true
	case "preceding-sibling":
		return AxisPrecedingSibling, true
	case "following":
		return AxisFollowing, true
	case "preceding":
		return AxisPreceding, true
	case "attribute":
		return AxisAttribute, true
	case "namespace":
		return AxisNamespace, true
	case "self":
		return AxisSelf, true
	case "descendant-or-self":
		return AxisDescendantOrSelf, true
	case "ancestor-or-self":
		return AxisAncestorOrSelf, true
	default:
		return 0, false
	}
}

// isReverseAxis reports whether an axis visits nodes in reverse document
// order, per the XPath 1.0 spec's axis definitions; Navigate's
// document-order sort corrects for this uniformly (spec §4.10 "Union
// preserves document order"), so step evaluation itself need not special-
// case direction.
func isReverseAxis(a Axis) bool {
	switch a {
	case AxisAncestor, AxisAncestorOrSelf, AxisPreceding, AxisPrecedingSibling:
		return true
	default:
		return false
	}
}

// stepAxis walks doc from n along axis, returning candidate nodes in
// whatever order is natural for that axis; callers apply the node test,
// dedup, and document-order sort afterward (Navigate's contract, spec
// §4.9-4.10).
func stepAxis(doc DocumentAccess, n NodeID, axis Axis) []NodeID {
	switch axis {
	case AxisChild:
		return doc.Children(n)

	case AxisDescendant:
		return doc.Descendants(n)

	case AxisDescendantOrSelf:
		return append([]NodeID{n}, doc.Descendants(n)...)

	case AxisParent:
		if p, ok := doc.ParentOf(n); ok {
			return []NodeID{p}
		}
		return nil

	case AxisAncestor:
		var out []NodeID
		cur := n
		for {
			p, ok := doc.ParentOf(cur)
			if !ok {
				break
			}
			out = append(out, p)
			cur = p
		}
		return out

	case AxisAncestorOrSelf:
		return append([]NodeID{n}, stepAxis(doc, n, AxisAncestor)...)

	case AxisFollowingSibling:
		var out []NodeID
		cur := n
		for {
			s, ok := doc.NextSiblingOf(cur)
			if !ok {
				break
			}
			out = append(out, s)
			cur = s
		}
		return out

	case AxisPrecedingSibling:
		var out []NodeID
		cur := n
		for {
			s, ok := doc.PrevSiblingOf(cur)
			if !ok {
				break
			}
			out = append(out, s)
			cur = s
		}
		return out

	case AxisFollowing:
		return followingOrPreceding(doc, n, true)

	case AxisPreceding:
		return followingOrPreceding(doc, n, false)

	case AxisSelf:
		return []NodeID{n}

	case AxisAttribute, AxisNamespace:
		// Handled specially by the evaluator (spec §4.10: "Navigate with the
		// attribute axis is special-cased: it returns a string-list"); a
		// general Navigate call should never reach here for these axes.
		return nil

	default:
		return nil
	}
}

// followingOrPreceding computes the following:: or preceding:: axis by
// walking the whole document in order and filtering out the node's own
// ancestors and itself (and, for following, its descendants too — they are
// reached via descendant:: already and the spec excludes them here).
func followingOrPreceding(doc DocumentAccess, n NodeID, wantFollowing bool) []NodeID {
	root, ok := doc.RootElement()
	if !ok {
		return nil
	}
	all := append([]NodeID{root}, doc.Descendants(root)...)

	ancestors := map[NodeID]bool{n: true}
	for _, a := range stepAxis(doc, n, AxisAncestor) {
		ancestors[a] = true
	}
	descendants := map[NodeID]bool{}
	for _, d := range doc.Descendants(n) {
		descendants[d] = true
	}

	passed := false
	var out []NodeID
	for _, cand := range all {
		if cand == n {
			passed = true
			continue
		}
		if ancestors[cand] || descendants[cand] {
			continue
		}
		if wantFollowing {
			if passed {
				out = append(out, cand)
			}
		} else {
			if !passed {
				out = append(out, cand)
			}
		}
	}
	return out
}
