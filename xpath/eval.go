package xpath

import (
	"fmt"
	"math"
	"strings"
)

// Context carries (doc, context_node, position, size) through evaluation
// (spec §4.10).
type Context struct {
	Doc      DocumentAccess
	Node     NodeID
	Position int
	Size     int
}

// Eval runs prog against doc with node as the initial context node (spec
// §4.10 "Evaluate-compiled walks the op list pushing XPathValues on a
// stack").
func Eval(doc DocumentAccess, node NodeID, prog *Program) (Value, error) {
	ctx := Context{Doc: doc, Node: node, Position: 1, Size: 1}
	return evalOps(ctx, prog.ops)
}

func evalOps(ctx Context, ops []op) (Value, error) {
	var stack []Value
	pop := func() Value {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}

	for _, o := range ops {
		switch o.code {
		case opRoot:
			stack = append(stack, nodeSetValue([]NodeID{ctx.Doc.DocumentNode()}))

		case opContext:
			stack = append(stack, nodeSetValue([]NodeID{ctx.Node}))

		case opParent:
			cur := pop()
			var out []NodeID
			for _, n := range cur.NodeSet() {
				if p, ok := ctx.Doc.ParentOf(n); ok {
					out = append(out, p)
				}
			}
			stack = append(stack, nodeSetValue(dedupSorted(ctx.Doc, out)))

		case opNavigate:
			cur := pop()
			if o.axis == AxisAttribute || o.axis == AxisNamespace {
				var vals []string
				for _, n := range cur.NodeSet() {
					vals = append(vals, attributeAxisValues(ctx.Doc, n, o.test)...)
				}
				stack = append(stack, stringListValue(vals))
				continue
			}
			var out []NodeID
			for _, n := range cur.NodeSet() {
				for _, c := range stepAxis(ctx.Doc, n, o.axis) {
					if matchesTest(ctx.Doc, c, o.test) {
						out = append(out, c)
					}
				}
			}
			stack = append(stack, nodeSetValue(dedupSorted(ctx.Doc, out)))

		case opPredicate:
			cur := pop()
			ns := cur.NodeSet()
			size := len(ns)
			var out []NodeID
			for i, n := range ns {
				subCtx := Context{Doc: ctx.Doc, Node: n, Position: i + 1, Size: size}
				v, err := evalOps(subCtx, o.sub)
				if err != nil {
					return Value{}, err
				}
				if predicateMatches(v, i+1) {
					out = append(out, n)
				}
			}
			stack = append(stack, nodeSetValue(out))

		case opPredicatePosition:
			cur := pop()
			ns := cur.NodeSet()
			var out []NodeID
			for i, n := range ns {
				if i+1 == o.posN {
					out = append(out, n)
				}
			}
			stack = append(stack, nodeSetValue(out))

		case opPredicateAttrEq, opPredicateAttrNeq:
			cur := pop()
			ns := cur.NodeSet()
			var out []NodeID
			for _, n := range ns {
				v, has := ctx.Doc.GetAttribute(n, o.attrName)
				match := has && v == o.attrValue
				if o.code == opPredicateAttrNeq {
					match = has && v != o.attrValue
				}
				if match {
					out = append(out, n)
				}
			}
			stack = append(stack, nodeSetValue(out))

		case opUnion:
			right := pop()
			left := pop()
			combined := append(append([]NodeID{}, left.NodeSet()...), right.NodeSet()...)
			stack = append(stack, nodeSetValue(dedupSorted(ctx.Doc, combined)))

		case opBinary:
			right := pop()
			left := pop()
			v, err := evalBinary(ctx.Doc, o.binOp, left, right)
			if err != nil {
				return Value{}, err
			}
			stack = append(stack, v)

		case opNegate:
			v := pop()
			stack = append(stack, numberValue(-numberValueOf(ctx.Doc, v)))

		case opNumber:
			stack = append(stack, numberValue(o.num))

		case opString:
			stack = append(stack, stringValue(o.str))

		case opVariable:
			return Value{}, &EvalError{Msg: "undefined variable: $" + o.varName}

		case opCall:
			args := make([]Value, len(o.argProgs))
			for i, ap := range o.argProgs {
				v, err := evalOps(ctx, ap)
				if err != nil {
					return Value{}, err
				}
				args[i] = v
			}
			v, err := callFunction(ctx, o.callName, args)
			if err != nil {
				return Value{}, err
			}
			stack = append(stack, v)

		default:
			return Value{}, fmt.Errorf("xpath: unknown opcode %d", o.code)
		}
	}

	if len(stack) == 0 {
		return Value{}, nil
	}
	return stack[len(stack)-1], nil
}

// predicateMatches implements spec §4.9's Predicate rule: "include if
// result is number equal to position or otherwise boolean-true".
func predicateMatches(v Value, position int) bool {
	if v.kind == kindNumber {
		return v.number == math.Trunc(v.number) && int(v.number) == position
	}
	return v.Bool()
}

func matchesTest(doc DocumentAccess, n NodeID, test nodeTest) bool {
	kind := doc.NodeKindOf(n)
	switch test.kind {
	case testAny:
		return true
	case testText:
		return kind == TextNode
	case testComment:
		return kind == CommentNode
	case testPI:
		if kind != PINode {
			return false
		}
		return test.piTarget == "" || doc.NodeName(n) == test.piTarget
	case testName:
		if kind != ElementNode {
			return false
		}
		if test.name == "*" {
			return true
		}
		if prefix, ok := wildcardPrefix(test.name); ok {
			return doc.NodePrefix(n) == prefix
		}
		if doc.NodeName(n) == test.name {
			return true
		}
		// An unprefixed name test also matches a prefixed element with the
		// same local name; prefixes are not resolved to namespaces.
		return !strings.Contains(test.name, ":") && doc.NodeLocalName(n) == test.name
	default:
		return false
	}
}

func wildcardPrefix(name string) (string, bool) {
	if strings.HasSuffix(name, ":*") {
		return strings.TrimSuffix(name, ":*"), true
	}
	return "", false
}

func attributeAxisValues(doc DocumentAccess, n NodeID, test nodeTest) []string {
	attrs := doc.GetAttributeValues(n)
	if test.kind == testName && test.name != "*" {
		for _, a := range attrs {
			if a.Name == test.name {
				return []string{a.Value}
			}
		}
		return nil
	}
	out := make([]string, len(attrs))
	for i, a := range attrs {
		out[i] = a.Value
	}
	return out
}

// boolOf converts v to boolean the way XPath 1.0's boolean() does, with a
// node-set converting via non-emptiness (spec §4.11 "boolean").
func boolOf(doc DocumentAccess, v Value) bool { return v.Bool() }

// numberValueOf resolves v to a number, routing node-sets through the
// document-aware first-node string-value (spec §4.11: "number() with a
// node-set uses the first node's trimmed string-value").
func numberValueOf(doc DocumentAccess, v Value) float64 {
	switch v.kind {
	case kindNodeSet:
		if len(v.nodeSet) == 0 {
			return math.NaN()
		}
		return parseXPathNumber(StringValue(doc, v.nodeSet[0]))
	case kindStringList:
		if len(v.strList) == 0 {
			return math.NaN()
		}
		return parseXPathNumber(v.strList[0])
	default:
		return v.Num()
	}
}

// ResolveString resolves v to a string the way a host displaying a query
// result wants: a node-set's first member's string-value, a string-list's
// first member, or the plain conversion otherwise. This is the
// document-aware second conversion path spec §9 calls for ("because
// resolving a node-set to a string requires document access, provide a
// second conversion path that takes both the value and a document
// reference").
func ResolveString(doc DocumentAccess, v Value) string { return stringValueOf(doc, v) }

// stringValueOf resolves v to a string, routing node-sets through the
// document-aware resolver (spec §4.11: "All helpers converting XPathValue
// -> string must go through a document-aware resolver").
func stringValueOf(doc DocumentAccess, v Value) string {
	switch v.kind {
	case kindNodeSet:
		if len(v.nodeSet) == 0 {
			return ""
		}
		return StringValue(doc, v.nodeSet[0])
	case kindStringList:
		if len(v.strList) == 0 {
			return ""
		}
		return v.strList[0]
	default:
		return v.Str()
	}
}

func evalBinary(doc DocumentAccess, bop BinaryOp, l, r Value) (Value, error) {
	switch bop {
	case OpOr:
		return boolValue(boolOf(doc, l) || boolOf(doc, r)), nil
	case OpAnd:
		return boolValue(boolOf(doc, l) && boolOf(doc, r)), nil
	case OpEq:
		return boolValue(evalEquality(doc, l, r)), nil
	case OpNeq:
		return boolValue(!evalEquality(doc, l, r)), nil
	case OpLt, OpLe, OpGt, OpGe:
		ln, rn := numberValueOf(doc, l), numberValueOf(doc, r)
		var res bool
		switch bop {
		case OpLt:
			res = ln < rn
		case OpLe:
			res = ln <= rn
		case OpGt:
			res = ln > rn
		case OpGe:
			res = ln >= rn
		}
		return boolValue(res), nil
	case OpAdd:
		return numberValue(numberValueOf(doc, l) + numberValueOf(doc, r)), nil
	case OpSub:
		return numberValue(numberValueOf(doc, l) - numberValueOf(doc, r)), nil
	case OpMul:
		return numberValue(numberValueOf(doc, l) * numberValueOf(doc, r)), nil
	case OpDiv:
		return numberValue(numberValueOf(doc, l) / numberValueOf(doc, r)), nil
	case OpMod:
		return numberValue(math.Mod(numberValueOf(doc, l), numberValueOf(doc, r))), nil
	default:
		return Value{}, fmt.Errorf("xpath: unknown binary operator %d", bop)
	}
}

// evalEquality implements spec §4.10's node-set-aware equality rules:
// node-set/node-set is true iff any pair of string-values compares equal;
// node-set vs primitive converts each member and compares; a boolean
// operand forces boolean comparison; a number operand forces numeric
// comparison; otherwise string comparison.
func evalEquality(doc DocumentAccess, l, r Value) bool {
	lColl, lIsColl := collectionOf(doc, l)
	rColl, rIsColl := collectionOf(doc, r)

	switch {
	case lIsColl && rIsColl:
		for _, ls := range lColl {
			for _, rs := range rColl {
				if ls == rs {
					return true
				}
			}
		}
		return false

	case lIsColl || rIsColl:
		coll, other := lColl, r
		if rIsColl {
			coll, other = rColl, l
		}
		switch other.kind {
		case kindBoolean:
			return (len(coll) > 0) == other.boolean
		case kindNumber:
			on := other.number
			for _, s := range coll {
				if parseXPathNumber(s) == on {
					return true
				}
			}
			return false
		default:
			os := stringValueOf(doc, other)
			for _, s := range coll {
				if s == os {
					return true
				}
			}
			return false
		}

	default:
		if l.kind == kindBoolean || r.kind == kindBoolean {
			return boolOf(doc, l) == boolOf(doc, r)
		}
		if l.kind == kindNumber || r.kind == kindNumber {
			return numberValueOf(doc, l) == numberValueOf(doc, r)
		}
		return stringValueOf(doc, l) == stringValueOf(doc, r)
	}
}

// collectionOf returns v's member strings if v is a node-set or
// string-list (both compare member-wise against the other operand), using
// StringValue to resolve node-set members through doc. The bool result
// reports whether v was such a collection at all.
func collectionOf(doc DocumentAccess, v Value) ([]string, bool) {
	switch v.kind {
	case kindStringList:
		return v.strList, true
	case kindNodeSet:
		out := make([]string, len(v.nodeSet))
		for i, n := range v.nodeSet {
			out[i] = StringValue(doc, n)
		}
		return out, true
	default:
		return nil, false
	}
}
