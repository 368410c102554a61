package xpath

import (
	"math"
	"strings"
)

// callFunction dispatches an XPath 1.0 core function call (spec §4.11).
// args have already been evaluated against ctx; the document-aware
// resolvers (stringValueOf, numberValueOf) handle node-set conversion.
func callFunction(ctx Context, name string, args []Value) (Value, error) {
	switch name {
	case "position":
		return numberValue(float64(ctx.Position)), nil

	case "last":
		return numberValue(float64(ctx.Size)), nil

	case "count":
		if len(args) != 1 {
			return Value{}, &EvalError{Msg: "count() takes exactly one argument"}
		}
		return numberValue(float64(len(args[0].NodeSet()))), nil

	case "local-name":
		n, ok := singleNodeArg(ctx, args)
		if !ok {
			return stringValue(""), nil
		}
		return stringValue(ctx.Doc.NodeLocalName(n)), nil

	case "namespace-uri":
		n, ok := singleNodeArg(ctx, args)
		if !ok {
			return stringValue(""), nil
		}
		return stringValue(ctx.Doc.NodeNamespaceURI(n)), nil

	case "name":
		n, ok := singleNodeArg(ctx, args)
		if !ok {
			return stringValue(""), nil
		}
		return stringValue(ctx.Doc.NodeName(n)), nil

	case "string":
		if len(args) == 0 {
			return stringValue(StringValue(ctx.Doc, ctx.Node)), nil
		}
		return stringValue(stringValueOf(ctx.Doc, args[0])), nil

	case "concat":
		if len(args) < 2 {
			return Value{}, &EvalError{Msg: "concat() takes at least two arguments"}
		}
		var b strings.Builder
		for _, a := range args {
			b.WriteString(stringValueOf(ctx.Doc, a))
		}
		return stringValue(b.String()), nil

	case "starts-with":
		if len(args) != 2 {
			return Value{}, &EvalError{Msg: "starts-with() takes exactly two arguments"}
		}
		s, prefix := stringValueOf(ctx.Doc, args[0]), stringValueOf(ctx.Doc, args[1])
		return boolValue(strings.HasPrefix(s, prefix)), nil

	case "contains":
		if len(args) != 2 {
			return Value{}, &EvalError{Msg: "contains() takes exactly two arguments"}
		}
		s, sub := stringValueOf(ctx.Doc, args[0]), stringValueOf(ctx.Doc, args[1])
		return boolValue(strings.Contains(s, sub)), nil

	case "substring":
		if len(args) != 2 && len(args) != 3 {
			return Value{}, &EvalError{Msg: "substring() takes two or three arguments"}
		}
		return stringValue(xpathSubstring(ctx, args)), nil

	case "substring-before":
		if len(args) != 2 {
			return Value{}, &EvalError{Msg: "substring-before() takes exactly two arguments"}
		}
		s, sep := stringValueOf(ctx.Doc, args[0]), stringValueOf(ctx.Doc, args[1])
		if i := strings.Index(s, sep); i >= 0 {
			return stringValue(s[:i]), nil
		}
		return stringValue(""), nil

	case "substring-after":
		if len(args) != 2 {
			return Value{}, &EvalError{Msg: "substring-after() takes exactly two arguments"}
		}
		s, sep := stringValueOf(ctx.Doc, args[0]), stringValueOf(ctx.Doc, args[1])
		if i := strings.Index(s, sep); i >= 0 {
			return stringValue(s[i+len(sep):]), nil
		}
		return stringValue(""), nil

	case "string-length":
		s := ""
		if len(args) == 0 {
			s = StringValue(ctx.Doc, ctx.Node)
		} else {
			s = stringValueOf(ctx.Doc, args[0])
		}
		return numberValue(float64(len([]rune(s)))), nil

	case "normalize-space":
		s := ""
		if len(args) == 0 {
			s = StringValue(ctx.Doc, ctx.Node)
		} else {
			s = stringValueOf(ctx.Doc, args[0])
		}
		return stringValue(normalizeSpace(s)), nil

	case "translate":
		if len(args) != 3 {
			return Value{}, &EvalError{Msg: "translate() takes exactly three arguments"}
		}
		s := stringValueOf(ctx.Doc, args[0])
		from := []rune(stringValueOf(ctx.Doc, args[1]))
		to := []rune(stringValueOf(ctx.Doc, args[2]))
		return stringValue(xpathTranslate(s, from, to)), nil

	case "boolean":
		if len(args) != 1 {
			return Value{}, &EvalError{Msg: "boolean() takes exactly one argument"}
		}
		return boolValue(boolOf(ctx.Doc, args[0])), nil

	case "not":
		if len(args) != 1 {
			return Value{}, &EvalError{Msg: "not() takes exactly one argument"}
		}
		return boolValue(!boolOf(ctx.Doc, args[0])), nil

	case "true":
		return boolValue(true), nil

	case "false":
		return boolValue(false), nil

	case "lang":
		if len(args) != 1 {
			return Value{}, &EvalError{Msg: "lang() takes exactly one argument"}
		}
		return boolValue(langMatches(ctx.Doc, ctx.Node, stringValueOf(ctx.Doc, args[0]))), nil

	case "number":
		if len(args) == 0 {
			return numberValue(parseXPathNumber(StringValue(ctx.Doc, ctx.Node))), nil
		}
		return numberValue(numberValueOf(ctx.Doc, args[0])), nil

	case "sum":
		if len(args) != 1 {
			return Value{}, &EvalError{Msg: "sum() takes exactly one argument"}
		}
		total := 0.0
		for _, n := range args[0].NodeSet() {
			v := parseXPathNumber(StringValue(ctx.Doc, n))
			if math.IsNaN(v) {
				return numberValue(math.NaN()), nil
			}
			total += v
		}
		return numberValue(total), nil

	case "floor":
		if len(args) != 1 {
			return Value{}, &EvalError{Msg: "floor() takes exactly one argument"}
		}
		return numberValue(math.Floor(numberValueOf(ctx.Doc, args[0]))), nil

	case "ceiling":
		if len(args) != 1 {
			return Value{}, &EvalError{Msg: "ceiling() takes exactly one argument"}
		}
		return numberValue(math.Ceil(numberValueOf(ctx.Doc, args[0]))), nil

	case "round":
		if len(args) != 1 {
			return Value{}, &EvalError{Msg: "round() takes exactly one argument"}
		}
		return numberValue(xpathRound(numberValueOf(ctx.Doc, args[0]))), nil

	case "id":
		return Value{}, errIDNotSupported

	default:
		return Value{}, &EvalError{Msg: "unknown function: " + name}
	}
}

// singleNodeArg resolves the node local-name/namespace-uri/name functions'
// optional argument: the argument's first node in document order, or the
// context node if no argument was given (XPath 1.0 default-argument rule).
func singleNodeArg(ctx Context, args []Value) (NodeID, bool) {
	if len(args) == 0 {
		return ctx.Node, true
	}
	ns := args[0].NodeSet()
	if len(ns) == 0 {
		return 0, false
	}
	return ns[0], true
}

// xpathSubstring implements 1-indexed, character-based substring() with
// XPath 1.0's fractional-argument rounding rules (spec §4.11).
func xpathSubstring(ctx Context, args []Value) string {
	s := []rune(stringValueOf(ctx.Doc, args[0]))
	start := numberValueOf(ctx.Doc, args[1])
	if math.IsNaN(start) {
		return ""
	}
	var length float64 = math.Inf(1)
	if len(args) == 3 {
		length = numberValueOf(ctx.Doc, args[2])
		if math.IsNaN(length) {
			return ""
		}
	}
	first := xpathRound(start)
	last := first + xpathRound(length)
	if math.IsInf(length, 1) {
		last = math.Inf(1)
	}
	from := int(math.Max(first, 1))
	if from < 1 {
		from = 1
	}
	toF := last
	if toF > float64(len(s)+1) {
		toF = float64(len(s) + 1)
	}
	to := int(toF)
	if to <= from || from > len(s) {
		return ""
	}
	return string(s[from-1 : to-1])
}

// normalizeSpace collapses runs of XML whitespace to a single space and
// trims both ends (spec §4.11).
func normalizeSpace(s string) string {
	var b strings.Builder
	inSpace := true
	for _, r := range s {
		if isXMLSpace(r) {
			if !inSpace {
				b.WriteByte(' ')
				inSpace = true
			}
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), " ")
}

func isXMLSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// xpathTranslate maps each rune of s found in from to the rune at the same
// position in to, or drops it if to is shorter than from (spec §4.11).
func xpathTranslate(s string, from, to []rune) string {
	var b strings.Builder
	for _, r := range s {
		idx := -1
		for i, f := range from {
			if f == r {
				idx = i
				break
			}
		}
		switch {
		case idx < 0:
			b.WriteRune(r)
		case idx < len(to):
			b.WriteRune(to[idx])
		default:
			// dropped: r is in from but has no counterpart in to.
		}
	}
	return b.String()
}

// xpathRound implements XPath 1.0 round(): round half towards positive
// infinity, unlike Go's math.Round (half away from zero).
func xpathRound(n float64) float64 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return n
	}
	return math.Floor(n + 0.5)
}

// langMatches walks ancestors (starting at n) for the nearest xml:lang
// attribute and compares it to target, exact or as a "lang-" subtag
// prefix, case-insensitively (spec §4.11).
func langMatches(doc DocumentAccess, n NodeID, target string) bool {
	target = strings.ToLower(target)
	cur := n
	for {
		if doc.NodeKindOf(cur) == ElementNode {
			if v, ok := doc.GetAttribute(cur, "xml:lang"); ok {
				v = strings.ToLower(v)
				return v == target || strings.HasPrefix(v, target+"-")
			}
		}
		p, ok := doc.ParentOf(cur)
		if !ok || p == doc.DocumentNode() {
			return false
		}
		cur = p
	}
}
