package xpath

import "math"

// opCode enumerates the linear stack-machine operations spec §4.9 names.
type opCode int

const (
	opRoot opCode = iota
	opContext
	opParent               // ".." fast path; equivalent to Navigate(AxisParent, node())
	opNavigate
	opPredicate
	opPredicatePosition    // [n] fast path for an integer-constant predicate
	opPredicateAttrEq      // [@n='v'] fast path
	opPredicateAttrNeq     // [@n!='v'] mirror fast path
	opUnion
	opBinary
	opNegate
	opNumber
	opString
	opVariable
	opCall
)

// op is one instruction; only the fields relevant to Code are populated,
// the same polymorphic-field discipline package sax uses for Event.
type op struct {
	code opCode

	axis Axis
	test nodeTest

	sub []op // Predicate's sub-program, or a Call argument program

	attrName  string
	attrValue string

	posN int // PredicatePosition's constant

	binOp BinaryOp

	num float64
	str string

	varName string

	callName string
	argProgs [][]op
}

// Program is a compiled XPath expression, ready for repeated evaluation
// against any DocumentAccess (spec §4.9-4.10).
type Program struct {
	ops  []op
	text string // the original expression text, for cache keys and errors
}

func compile(e Expr) []op {
	switch n := e.(type) {
	case *pathExpr:
		var ops []op
		if n.absolute {
			ops = append(ops, op{code: opRoot})
		} else {
			ops = append(ops, op{code: opContext})
		}
		return append(ops, compileSteps(n.steps)...)

	case *binaryExpr:
		ops := compile(n.left)
		ops = append(ops, compile(n.right)...)
		return append(ops, op{code: opBinary, binOp: n.op})

	case *unaryMinusExpr:
		return append(compile(n.operand), op{code: opNegate})

	case *unionExpr:
		ops := compile(n.left)
		ops = append(ops, compile(n.right)...)
		return append(ops, op{code: opUnion})

	case *numberExpr:
		return []op{{code: opNumber, num: n.value}}

	case *stringExpr:
		return []op{{code: opString, str: n.value}}

	case *variableExpr:
		return []op{{code: opVariable, varName: n.name}}

	case *callExpr:
		argProgs := make([][]op, len(n.args))
		for i, a := range n.args {
			argProgs[i] = compile(a)
		}
		return []op{{code: opCall, callName: n.name, argProgs: argProgs}}

	case *filterExpr:
		ops := compile(n.primary)
		ops = append(ops, compilePredicates(n.predicates)...)
		if n.path != nil {
			ops = append(ops, compileSteps(n.path.steps)...)
		}
		return ops

	default:
		return nil
	}
}

// compileSteps lowers a chain of location steps, assuming the current
// node-set is already on the stack (pushed by opRoot/opContext or by a
// preceding filter expression).
func compileSteps(steps []*stepExpr) []op {
	var ops []op
	for _, s := range steps {
		if s.axis == AxisParent && s.test.kind == testAny {
			ops = append(ops, op{code: opParent})
		} else {
			ops = append(ops, op{code: opNavigate, axis: s.axis, test: s.test})
		}
		ops = append(ops, compilePredicates(s.predicates)...)
	}
	return ops
}

func compilePredicates(preds []Expr) []op {
	var ops []op
	for _, p := range preds {
		ops = append(ops, compilePredicate(p))
	}
	return ops
}

// compilePredicate recognizes the two fast-path shapes spec §4.9 names
// before falling back to a general sub-program.
func compilePredicate(p Expr) op {
	if n, ok := p.(*numberExpr); ok {
		if n.value == math.Trunc(n.value) && n.value > 0 {
			return op{code: opPredicatePosition, posN: int(n.value)}
		}
	}
	if b, ok := p.(*binaryExpr); ok && (b.op == OpEq || b.op == OpNeq) {
		if name, value, ok := attrEqShape(b.left, b.right); ok {
			code := opPredicateAttrEq
			if b.op == OpNeq {
				code = opPredicateAttrNeq
			}
			return op{code: code, attrName: name, attrValue: value}
		}
	}
	return op{code: opPredicate, sub: compile(p)}
}

// attrEqShape recognizes "@name" on one side and a string literal on the
// other, in either order, matching spec §4.9's "[@n='v'] and its mirror".
func attrEqShape(a, b Expr) (name, value string, ok bool) {
	if n, v, ok := attrNameAndLiteral(a, b); ok {
		return n, v, true
	}
	return attrNameAndLiteral(b, a)
}

func attrNameAndLiteral(attrSide, litSide Expr) (name, value string, ok bool) {
	pe, ok := attrSide.(*pathExpr)
	if !ok || pe.absolute || len(pe.steps) != 1 {
		return "", "", false
	}
	step := pe.steps[0]
	if step.axis != AxisAttribute || step.test.kind != testName || step.test.name == "*" {
		return "", "", false
	}
	if len(step.predicates) != 0 {
		return "", "", false
	}
	lit, ok := litSide.(*stringExpr)
	if !ok {
		return "", "", false
	}
	return step.test.name, lit.value, true
}

// Compile parses and lowers an XPath 1.0 expression into a Program (spec
// §4.8-4.9). Use Cache.Compile instead when queries repeat, to reuse
// compiled programs across calls.
func Compile(expr string) (*Program, error) {
	p, err := newParser(expr)
	if err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &Program{ops: compile(e), text: expr}, nil
}
