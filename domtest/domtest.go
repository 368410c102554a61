// Package domtest provides a reified, fully in-memory DOM tree implementing
// xpath.DocumentAccess, used only by tests (spec §1, §9 "Polymorphic
// dispatch... without inheritance... three consumers: index builder, SAX
// collector, test DOM"). It is grounded on wilkmaciej-xml-streamer's
// XMLElement/XMLContentNode shape, generalized from pointer-linked nodes
// into an arena of indices so the same NodeID encoding package index uses
// (high bit distinguishes text from element) works across both
// implementations of the capability.
package domtest

import "github.com/mkowalczyk/rustyx/xpath"

type nodeKind int

const (
	elementKind nodeKind = iota
	textKind
	commentKind
	piKind
)

type node struct {
	kind     nodeKind
	name     string // element name, or PI target
	attrs    []xpath.Attr
	text     string // text/comment content, or a PI's data
	parent   int    // arena index, or -1 for the root element's document parent
	children []int  // arena indices, in source order
	pos      int    // synthetic document-order position
	nsURI    string // resolved namespace URI, elements only (spec §9.1 supplement)
}

// Tree is a built, read-only reified document (spec §9 "test-only DOM").
type Tree struct {
	nodes []node
	root  int
}

// Spec describes one node to build, recursively, via the Elem/Text/Comment/PI
// constructors below and Build.
type Spec struct {
	kind     nodeKind
	name     string
	attrs    []xpath.Attr
	text     string
	children []Spec
}

// Elem builds an element node spec with the given attributes and children.
func Elem(name string, attrs []xpath.Attr, children ...Spec) Spec {
	return Spec{kind: elementKind, name: name, attrs: attrs, children: children}
}

// Text builds a text node spec.
func Text(s string) Spec { return Spec{kind: textKind, text: s} }

// Comment builds a comment node spec.
func Comment(s string) Spec { return Spec{kind: commentKind, text: s} }

// PI builds a processing-instruction node spec with the given target and
// data.
func PI(target, data string) Spec { return Spec{kind: piKind, name: target, text: data} }

// Build flattens root into a Tree, assigning each node a synthetic
// document-order position as it is visited (pre-order, matching source
// order) — the same role index.Index.Elements/Texts offsets play for
// package index's View (spec §4.10's DocumentPosition contract).
func Build(root Spec) *Tree {
	t := &Tree{}
	nextPos := 0
	resolver := newNamespaceResolver()
	var add func(s Spec, parent int) int
	add = func(s Spec, parent int) int {
		i := len(t.nodes)
		t.nodes = append(t.nodes, node{
			kind:   s.kind,
			name:   s.name,
			attrs:  s.attrs,
			text:   s.text,
			parent: parent,
			pos:    nextPos,
		})
		nextPos++

		if s.kind == elementKind {
			resolver.pushScope()
			attrs := make([]attrWithName, len(s.attrs))
			for j, a := range s.attrs {
				attrs[j] = attrWithName{name: a.Name, value: a.Value}
			}
			resolver.declareFromAttrs(attrs)
			t.nodes[i].nsURI = resolveElementNamespace(resolver, s.name)
		}

		children := make([]int, 0, len(s.children))
		for _, c := range s.children {
			children = append(children, add(c, i))
		}
		t.nodes[i].children = children

		if s.kind == elementKind {
			resolver.popScope()
		}
		return i
	}
	t.root = add(root, -1)
	return t
}

func elementNodeID(i int) xpath.NodeID { return xpath.NodeID(i) }
func textNodeID(i int) xpath.NodeID    { return xpath.NodeID(i) | (1 << 31) }

func splitNodeID(id xpath.NodeID) int { return int(id &^ (1 << 31)) }

// RootElement implements xpath.DocumentAccess.
func (t *Tree) RootElement() (xpath.NodeID, bool) {
	if len(t.nodes) == 0 {
		return 0, false
	}
	return elementNodeID(t.root), true
}

// DocumentNode implements xpath.DocumentAccess.
func (t *Tree) DocumentNode() xpath.NodeID { return xpath.Document }

func (t *Tree) idOf(i int) xpath.NodeID {
	if t.nodes[i].kind == elementKind {
		return elementNodeID(i)
	}
	return textNodeID(i)
}

// NodeKindOf implements xpath.DocumentAccess.
func (t *Tree) NodeKindOf(id xpath.NodeID) xpath.NodeKind {
	if id == xpath.Document {
		return xpath.DocumentNodeKind
	}
	switch t.nodes[splitNodeID(id)].kind {
	case elementKind:
		return xpath.ElementNode
	case commentKind:
		return xpath.CommentNode
	case piKind:
		return xpath.PINode
	default:
		return xpath.TextNode
	}
}

// NodeName implements xpath.DocumentAccess.
func (t *Tree) NodeName(id xpath.NodeID) string {
	if id == xpath.Document {
		return ""
	}
	n := t.nodes[splitNodeID(id)]
	if n.kind == elementKind || n.kind == piKind {
		return n.name
	}
	return ""
}

// NodeLocalName implements xpath.DocumentAccess.
func (t *Tree) NodeLocalName(id xpath.NodeID) string {
	name := t.NodeName(id)
	for i := 0; i < len(name); i++ {
		if name[i] == ':' {
			return name[i+1:]
		}
	}
	return name
}

// NodeNamespaceURI implements xpath.DocumentAccess, resolved via Build's
// namespace-declaration stack (spec §9.1 supplement) — unlike package
// index's View, which spec §4.5 explicitly leaves unresolved.
func (t *Tree) NodeNamespaceURI(id xpath.NodeID) string {
	if id == xpath.Document {
		return ""
	}
	n := t.nodes[splitNodeID(id)]
	if n.kind != elementKind {
		return ""
	}
	return n.nsURI
}

// NodePrefix implements xpath.DocumentAccess.
func (t *Tree) NodePrefix(id xpath.NodeID) string {
	name := t.NodeName(id)
	for i := 0; i < len(name); i++ {
		if name[i] == ':' {
			return name[:i]
		}
	}
	return ""
}

// TextContent implements xpath.DocumentAccess.
func (t *Tree) TextContent(id xpath.NodeID) string {
	if id == xpath.Document {
		return ""
	}
	n := t.nodes[splitNodeID(id)]
	if n.kind == elementKind {
		return xpath.StringValue(t, id)
	}
	return n.text
}

// GetAttribute implements xpath.DocumentAccess.
func (t *Tree) GetAttribute(id xpath.NodeID, name string) (string, bool) {
	if id == xpath.Document {
		return "", false
	}
	n := t.nodes[splitNodeID(id)]
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// GetAttributeValues implements xpath.DocumentAccess.
func (t *Tree) GetAttributeValues(id xpath.NodeID) []xpath.Attr {
	if id == xpath.Document {
		return nil
	}
	return t.nodes[splitNodeID(id)].attrs
}

// Children implements xpath.DocumentAccess.
func (t *Tree) Children(id xpath.NodeID) []xpath.NodeID {
	if id == xpath.Document {
		if root, ok := t.RootElement(); ok {
			return []xpath.NodeID{root}
		}
		return nil
	}
	n := t.nodes[splitNodeID(id)]
	out := make([]xpath.NodeID, len(n.children))
	for i, c := range n.children {
		out[i] = t.idOf(c)
	}
	return out
}

// Descendants implements xpath.DocumentAccess: every node under id, in
// document order, via a recursive walk.
func (t *Tree) Descendants(id xpath.NodeID) []xpath.NodeID {
	var out []xpath.NodeID
	var walk func(xpath.NodeID)
	walk = func(n xpath.NodeID) {
		for _, c := range t.Children(n) {
			out = append(out, c)
			if t.NodeKindOf(c) == xpath.ElementNode {
				walk(c)
			}
		}
	}
	walk(id)
	return out
}

// ParentOf implements xpath.DocumentAccess.
func (t *Tree) ParentOf(id xpath.NodeID) (xpath.NodeID, bool) {
	if id == xpath.Document {
		return 0, false
	}
	p := t.nodes[splitNodeID(id)].parent
	if p == -1 {
		return xpath.Document, true
	}
	return elementNodeID(p), true
}

// NextSiblingOf implements xpath.DocumentAccess.
func (t *Tree) NextSiblingOf(id xpath.NodeID) (xpath.NodeID, bool) {
	parent, ok := t.ParentOf(id)
	if !ok {
		return 0, false
	}
	siblings := t.Children(parent)
	for i, s := range siblings {
		if s == id && i+1 < len(siblings) {
			return siblings[i+1], true
		}
	}
	return 0, false
}

// PrevSiblingOf implements xpath.DocumentAccess.
func (t *Tree) PrevSiblingOf(id xpath.NodeID) (xpath.NodeID, bool) {
	parent, ok := t.ParentOf(id)
	if !ok {
		return 0, false
	}
	siblings := t.Children(parent)
	for i, s := range siblings {
		if s == id && i > 0 {
			return siblings[i-1], true
		}
	}
	return 0, false
}

// DocumentPosition implements xpath.DocumentAccess using each node's
// pre-order build position (spec §4.10).
func (t *Tree) DocumentPosition(id xpath.NodeID) int {
	if id == xpath.Document {
		return -1
	}
	return t.nodes[splitNodeID(id)].pos
}
