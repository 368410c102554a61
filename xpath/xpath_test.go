package xpath_test

import (
	"testing"

	"github.com/mkowalczyk/rustyx/domtest"
	"github.com/mkowalczyk/rustyx/xpath"
)

func mustEval(t *testing.T, doc xpath.DocumentAccess, node xpath.NodeID, expr string) xpath.Value {
	t.Helper()
	prog, err := xpath.Compile(expr)
	if err != nil {
		t.Fatalf("Compile(%q): %v", expr, err)
	}
	v, err := xpath.Eval(doc, node, prog)
	if err != nil {
		t.Fatalf("Eval(%q): %v", expr, err)
	}
	return v
}

// S1: mixed content ordering — string(/p) on <p>A<b/>C</p> returns "AC".
func TestMixedContentStringValue(t *testing.T) {
	tree := domtest.Build(domtest.Elem("p", nil,
		domtest.Text("A"),
		domtest.Elem("b", nil),
		domtest.Text("C"),
	))
	root, _ := tree.RootElement()
	v := mustEval(t, tree, root, "string(/p)")
	if got := v.Str(); got != "AC" {
		t.Fatalf("string(/p) = %q, want %q", got, "AC")
	}
}

// S3: predicate fast paths — //a[@k='x'] and //a[2] on
// <r><a k="x"/><a k="y"/><a k="x"/></r>.
func TestPredicateFastPaths(t *testing.T) {
	tree := domtest.Build(domtest.Elem("r", nil,
		domtest.Elem("a", []xpath.Attr{{Name: "k", Value: "x"}}),
		domtest.Elem("a", []xpath.Attr{{Name: "k", Value: "y"}}),
		domtest.Elem("a", []xpath.Attr{{Name: "k", Value: "x"}}),
	))
	root, _ := tree.RootElement()

	v := mustEval(t, tree, root, "//a[@k='x']")
	ns := v.NodeSet()
	if len(ns) != 2 {
		t.Fatalf("//a[@k='x'] returned %d nodes, want 2", len(ns))
	}
	rChildren := tree.Children(root)
	if ns[0] != rChildren[0] || ns[1] != rChildren[2] {
		t.Fatalf("//a[@k='x'] = %v, want first and third child of r", ns)
	}

	v2 := mustEval(t, tree, root, "//a[2]")
	ns2 := v2.NodeSet()
	if len(ns2) != 1 || ns2[0] != rChildren[1] {
		t.Fatalf("//a[2] = %v, want [second child of r]", ns2)
	}
}

// Invariant 8: the fast-path predicate ops and the general Predicate
// sub-program path must produce identical node-sets.
func TestPredicateFastPathEquivalence(t *testing.T) {
	tree := domtest.Build(domtest.Elem("r", nil,
		domtest.Elem("a", []xpath.Attr{{Name: "k", Value: "x"}}),
		domtest.Elem("a", []xpath.Attr{{Name: "k", Value: "y"}}),
		domtest.Elem("a", []xpath.Attr{{Name: "k", Value: "x"}}),
	))
	root, _ := tree.RootElement()

	fast := mustEval(t, tree, root, "//a[@k='x']")
	general := mustEval(t, tree, root, "//a[@k=concat('', 'x')]")
	if !sameNodeSet(fast.NodeSet(), general.NodeSet()) {
		t.Fatalf("fast path %v != general path %v", fast.NodeSet(), general.NodeSet())
	}

	fastPos := mustEval(t, tree, root, "//a[2]")
	generalPos := mustEval(t, tree, root, "//a[position()=1+1]")
	if !sameNodeSet(fastPos.NodeSet(), generalPos.NodeSet()) {
		t.Fatalf("fast position path %v != general path %v", fastPos.NodeSet(), generalPos.NodeSet())
	}
}

func sameNodeSet(a, b []xpath.NodeID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// S7: XPath number coercion — <r><price>42.5</price></r>.
func TestNumberCoercion(t *testing.T) {
	tree := domtest.Build(domtest.Elem("r", nil,
		domtest.Elem("price", nil, domtest.Text("42.5")),
	))
	root, _ := tree.RootElement()

	if v := mustEval(t, tree, root, "/r/price > 10"); !v.Bool() {
		t.Fatalf("/r/price > 10 = false, want true")
	}
	if v := mustEval(t, tree, root, "/r/price < 100"); !v.Bool() {
		t.Fatalf("/r/price < 100 = false, want true")
	}
	if v := mustEval(t, tree, root, "sum(//price)"); v.Num() != 42.5 {
		t.Fatalf("sum(//price) = %v, want 42.5", v.Num())
	}
	if v := mustEval(t, tree, root, "sum(//nope)"); v.Num() != 0 {
		t.Fatalf("sum(//nope) = %v, want 0", v.Num())
	}
}

// S8: equality on node-sets — <r><a>hi</a><b>hi</b><c>bye</c></r>.
func TestNodeSetEquality(t *testing.T) {
	tree := domtest.Build(domtest.Elem("r", nil,
		domtest.Elem("a", nil, domtest.Text("hi")),
		domtest.Elem("b", nil, domtest.Text("hi")),
		domtest.Elem("c", nil, domtest.Text("bye")),
	))
	root, _ := tree.RootElement()

	if v := mustEval(t, tree, root, "/r/a = /r/b"); !v.Bool() {
		t.Fatalf("/r/a = /r/b = false, want true")
	}
	if v := mustEval(t, tree, root, "/r/a = /r/c"); v.Bool() {
		t.Fatalf("/r/a = /r/c = true, want false")
	}
}

func TestLocalNameAndAttributeAxis(t *testing.T) {
	tree := domtest.Build(domtest.Elem("root", nil,
		domtest.Elem("n:c", []xpath.Attr{{Name: "id", Value: "1"}}),
	))
	root, _ := tree.RootElement()

	if v := mustEval(t, tree, root, "//c/@id"); v.Str() != "1" {
		t.Fatalf("//c/@id resolved via Str() = %q, want %q", v.Str(), "1")
	}
	if v := mustEval(t, tree, root, "local-name(//c)"); v.Str() != "c" {
		t.Fatalf("local-name(//c) = %q, want %q", v.Str(), "c")
	}
}

func TestUnionPreservesDocumentOrder(t *testing.T) {
	tree := domtest.Build(domtest.Elem("r", nil,
		domtest.Elem("a", nil),
		domtest.Elem("b", nil),
		domtest.Elem("c", nil),
	))
	root, _ := tree.RootElement()
	v := mustEval(t, tree, root, "//c | //a | //b")
	ns := v.NodeSet()
	children := tree.Children(root)
	if !sameNodeSet(ns, children) {
		t.Fatalf("union = %v, want document order %v", ns, children)
	}
}

func TestStringFunctions(t *testing.T) {
	tree := domtest.Build(domtest.Elem("r", nil, domtest.Text("  hello   world  ")))
	root, _ := tree.RootElement()

	cases := []struct {
		expr string
		want string
	}{
		{"normalize-space(/r)", "hello world"},
		{"substring('12345', 2, 3)", "234"},
		{"substring-before('2024-01-02', '-')", "2024"},
		{"substring-after('2024-01-02', '-')", "01-02"},
		{"translate('bar', 'abc', 'xyz')", "yxr"},
		{"concat('a', 'b', 'c')", "abc"},
	}
	for _, c := range cases {
		if v := mustEval(t, tree, root, c.expr); v.Str() != c.want {
			t.Errorf("%s = %q, want %q", c.expr, v.Str(), c.want)
		}
	}
}

func TestRoundHalfTowardsPositiveInfinity(t *testing.T) {
	tree := domtest.Build(domtest.Elem("r", nil))
	root, _ := tree.RootElement()
	if v := mustEval(t, tree, root, "round(2.5)"); v.Num() != 3 {
		t.Fatalf("round(2.5) = %v, want 3", v.Num())
	}
	if v := mustEval(t, tree, root, "round(-2.5)"); v.Num() != -2 {
		t.Fatalf("round(-2.5) = %v, want -2", v.Num())
	}
}

func TestIDFunctionRefused(t *testing.T) {
	tree := domtest.Build(domtest.Elem("r", nil))
	root, _ := tree.RootElement()
	prog, err := xpath.Compile("id('x')")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := xpath.Eval(tree, root, prog); err == nil {
		t.Fatalf("expected id() to be refused with an error")
	}
}

func TestCacheReusesCompiledProgram(t *testing.T) {
	c := xpath.NewCache(xpath.DefaultCacheSize)
	p1, err := c.Compile("//a[@k='x']")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	p2, err := c.Compile("//a[@k='x']")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if p1 != p2 {
		t.Fatalf("expected cached program pointer to be reused")
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
}
