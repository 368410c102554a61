package index

import (
	"testing"

	"github.com/mkowalczyk/rustyx/scan"
)

func build(t *testing.T, input string, strict bool) *Index {
	t.Helper()
	b := NewBuilder([]byte(input))
	var opts []scan.Option
	if strict {
		opts = append(opts, scan.Strict())
	}
	if err := scan.Scan([]byte(input), b, opts...); err != nil {
		t.Fatalf("scan error: %v", err)
	}
	return b.Finish()
}

func TestMixedContentOrdering(t *testing.T) {
	// S1: <p>A<b/>C</p> — children(p) = [text("A"), element(b), text("C")].
	idx := build(t, `<p>A<b/>C</p>`, true)
	if idx.Root == NoNode {
		t.Fatal("expected a root element")
	}
	refs := idx.ChildRefRange(idx.Root)
	if len(refs) != 3 {
		t.Fatalf("expected 3 children of <p>, got %d", len(refs))
	}
	if _, isText := isChildRefText(refs[0]); !isText {
		t.Fatal("expected first child to be text")
	}
	if txt := idx.Texts[refs[0]&^childRefTextFlag].Span.String(idx.Input); txt != "A" {
		t.Fatalf("expected first child text 'A', got %q", txt)
	}
	if _, isText := isChildRefText(refs[1]); isText {
		t.Fatal("expected second child to be an element")
	}
	if name := idx.Elements[refs[1]].Name.String(idx.Input); name != "b" {
		t.Fatalf("expected second child <b>, got %q", name)
	}
	if _, isText := isChildRefText(refs[2]); !isText {
		t.Fatal("expected third child to be text")
	}
	if txt := idx.Texts[refs[2]&^childRefTextFlag].Span.String(idx.Input); txt != "C" {
		t.Fatalf("expected third child text 'C', got %q", txt)
	}
}

func TestChildOrderingIsStrictlyAscendingByOffset(t *testing.T) {
	idx := build(t, `<r><a/>text<b/>more<c/></r>`, true)
	refs := idx.ChildRefRange(idx.Root)
	lastOffset := -1
	for _, ref := range refs {
		var off int
		if i, isText := isChildRefText(ref); isText {
			off = int(idx.Texts[i].Span.Offset())
		} else {
			off = int(idx.Elements[ref].Name.Offset)
		}
		if off <= lastOffset {
			t.Fatalf("children not in ascending source order: %d after %d", off, lastOffset)
		}
		lastOffset = off
	}
}

func TestNamespacedAttributeAndElement(t *testing.T) {
	// S2: <root xmlns:n="http://e"><n:c id="1"/></root>
	idx := build(t, `<root xmlns:n="http://e"><n:c id="1"/></root>`, true)
	view := NewView(idx)
	root, _ := view.RootElement()
	children := view.Children(root)
	if len(children) != 1 {
		t.Fatalf("expected one child, got %d", len(children))
	}
	c := children[0]
	if view.NodeLocalName(c) != "c" {
		t.Fatalf("expected local-name 'c', got %q", view.NodeLocalName(c))
	}
	if v, ok := view.GetAttribute(c, "id"); !ok || v != "1" {
		t.Fatalf("expected attribute id='1', got %q ok=%v", v, ok)
	}
}

func TestStrictModeBadXMLDeclaration(t *testing.T) {
	// S4: two leading spaces before the XML declaration.
	b := NewBuilder([]byte(`  <?xml version="1.0"?><r/>`))
	err := scan.Scan([]byte(`  <?xml version="1.0"?><r/>`), b, scan.Strict())
	if err == nil {
		t.Fatal("expected an error for whitespace before the XML declaration in strict mode")
	}
}

func TestLenientModeBadXMLDeclarationStillParses(t *testing.T) {
	idx := build(t, `  <?xml version="1.0"?><r/>`, false)
	if idx.Root == NoNode {
		t.Fatal("expected a root element to be parsed in lenient mode")
	}
}

func TestFirstLastChildNoNodeIffNoChildElements(t *testing.T) {
	// §3: FirstChild/LastChild are NoNode iff the element has no child
	// elements. <p><a/></p>: p's only child element is empty, and must
	// still be both FirstChild and LastChild of <p>.
	idx := build(t, `<p><a/></p>`, true)
	p := idx.Elements[idx.Root]
	if p.FirstChild == NoNode || p.LastChild == NoNode {
		t.Fatalf("expected <p> to report a child element, got FirstChild=%d LastChild=%d", p.FirstChild, p.LastChild)
	}
	if p.FirstChild != p.LastChild {
		t.Fatalf("expected <p>'s sole child <a/> to be both FirstChild and LastChild, got %d != %d", p.FirstChild, p.LastChild)
	}
	a := idx.Elements[p.FirstChild]
	if a.Name.String(idx.Input) != "a" {
		t.Fatalf("expected FirstChild to be <a>, got %q", a.Name.String(idx.Input))
	}

	// A leaf with no child elements at all must report NoNode for both.
	if a.FirstChild != NoNode || a.LastChild != NoNode {
		t.Fatalf("expected <a/> (no children) to have NoNode FirstChild/LastChild, got %d/%d", a.FirstChild, a.LastChild)
	}
}

func TestNextSiblingSkipsOnlyElementLinks(t *testing.T) {
	// <r><a/>text<b/></r>: element-to-element NextSibling links only
	// chain elements together; intervening text does not break the link.
	idx := build(t, `<r><a/>text<b/></r>`, true)
	r := idx.Elements[idx.Root]
	a := idx.Elements[r.FirstChild]
	if a.Name.String(idx.Input) != "a" {
		t.Fatalf("expected FirstChild <a>, got %q", a.Name.String(idx.Input))
	}
	if a.NextSibling == NoNode {
		t.Fatal("expected <a> to have an element NextSibling despite intervening text")
	}
	b := idx.Elements[a.NextSibling]
	if b.Name.String(idx.Input) != "b" {
		t.Fatalf("expected <a>'s NextSibling to be <b>, got %q", b.Name.String(idx.Input))
	}
	if r.LastChild != a.NextSibling {
		t.Fatalf("expected <r>'s LastChild to be <b>, got element %d", r.LastChild)
	}
}
