package domtest_test

import (
	"testing"

	"github.com/mkowalczyk/rustyx/domtest"
	"github.com/mkowalczyk/rustyx/xpath"
)

func TestChildrenPreserveSourceOrder(t *testing.T) {
	tree := domtest.Build(domtest.Elem("p", nil,
		domtest.Text("A"),
		domtest.Elem("b", nil),
		domtest.Text("C"),
	))
	root, _ := tree.RootElement()
	children := tree.Children(root)
	if len(children) != 3 {
		t.Fatalf("got %d children, want 3", len(children))
	}
	if tree.NodeKindOf(children[0]) != xpath.TextNode || tree.TextContent(children[0]) != "A" {
		t.Fatalf("children[0] = %v, want text %q", children[0], "A")
	}
	if tree.NodeKindOf(children[1]) != xpath.ElementNode || tree.NodeName(children[1]) != "b" {
		t.Fatalf("children[1] = %v, want element %q", children[1], "b")
	}
	if tree.NodeKindOf(children[2]) != xpath.TextNode || tree.TextContent(children[2]) != "C" {
		t.Fatalf("children[2] = %v, want text %q", children[2], "C")
	}
}

func TestNamespaceResolution(t *testing.T) {
	tree := domtest.Build(domtest.Elem("root", []xpath.Attr{{Name: "xmlns:n", Value: "http://e"}},
		domtest.Elem("n:c", []xpath.Attr{{Name: "id", Value: "1"}}),
	))
	root, _ := tree.RootElement()
	child := tree.Children(root)[0]
	if uri := tree.NodeNamespaceURI(child); uri != "http://e" {
		t.Fatalf("NodeNamespaceURI(n:c) = %q, want %q", uri, "http://e")
	}
	if local := tree.NodeLocalName(child); local != "c" {
		t.Fatalf("NodeLocalName(n:c) = %q, want %q", local, "c")
	}
}

func TestNamespaceScopeDoesNotLeakToSiblings(t *testing.T) {
	tree := domtest.Build(domtest.Elem("root", nil,
		domtest.Elem("a", []xpath.Attr{{Name: "xmlns:n", Value: "http://a"}},
			domtest.Elem("n:x", nil),
		),
		domtest.Elem("n:y", nil),
	))
	root, _ := tree.RootElement()
	a := tree.Children(root)[0]
	nx := tree.Children(a)[0]
	ny := tree.Children(root)[1]

	if uri := tree.NodeNamespaceURI(nx); uri != "http://a" {
		t.Fatalf("NodeNamespaceURI(n:x) = %q, want %q", uri, "http://a")
	}
	if uri := tree.NodeNamespaceURI(ny); uri != "" {
		t.Fatalf("NodeNamespaceURI(n:y) = %q, want empty (scope should not leak to sibling)", uri)
	}
}

func TestRenderRoundTripsStructure(t *testing.T) {
	tree := domtest.Build(domtest.Elem("p", []xpath.Attr{{Name: "k", Value: "v"}},
		domtest.Text("A"),
		domtest.Elem("b", nil),
		domtest.Text("C"),
	))
	root, _ := tree.RootElement()
	got := string(domtest.Render(tree, root))
	want := `<p k="v">A<b/>C</p>`
	if got != want {
		t.Fatalf("Render = %q, want %q", got, want)
	}
}
