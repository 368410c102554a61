// Package xpath implements an XPath 1.0 lexer, recursive-descent parser,
// linear-op compiler, and stack-machine evaluator (spec §4.8-4.11),
// grounded on wilkmaciej-xml-streamer's navigator.go (the NodeNavigator
// shape XPath evaluates against) generalized from a single-tree navigator
// into a document-access capability two different representations can
// implement: the structural index view (package index) and the test-only
// reified DOM (package domtest).
package xpath

// NodeID is an opaque handle into a DocumentAccess implementation. The high
// bit distinguishes text nodes from element nodes; Document is a reserved
// id naming the synthetic document node (spec §3 "Node identifiers").
type NodeID uint32

const (
	textNodeFlag NodeID = 1 << 31
	// NoNode marks the absence of a node (e.g. no parent, no next sibling).
	NoNode NodeID = 1<<32 - 1
	// Document is the synthetic node whose only child is the root element;
	// it has no parent and is the target of absolute paths ("/...").
	Document NodeID = 1<<31 - 1
)

// IsText reports whether id names a text-kind node (text, CDATA, comment,
// or processing instruction all share this kind at the XPath level).
func (id NodeID) IsText() bool { return id != Document && id&textNodeFlag != 0 }

// NodeKind enumerates the kinds DocumentAccess reports through NodeKindOf.
type NodeKind int

const (
	ElementNode NodeKind = iota
	TextNode
	CommentNode
	PINode
	DocumentNodeKind
)

// Attr is one (name, value) pair as returned by GetAttributeValues.
type Attr struct {
	Name  string
	Value string
}

// DocumentAccess is the read-only interface the evaluator walks. It is
// implemented by index.View (the production structural index adapter) and
// by domtest.Tree (the reified tree used only by unit tests), letting the
// same compiled program run over either representation (spec §4.5, §9
// "Polymorphic dispatch").
type DocumentAccess interface {
	RootElement() (NodeID, bool)
	DocumentNode() NodeID

	NodeKindOf(id NodeID) NodeKind
	NodeName(id NodeID) string
	NodeLocalName(id NodeID) string
	NodeNamespaceURI(id NodeID) string
	NodePrefix(id NodeID) string
	TextContent(id NodeID) string

	GetAttribute(id NodeID, name string) (string, bool)
	GetAttributeValues(id NodeID) []Attr

	Children(id NodeID) []NodeID
	Descendants(id NodeID) []NodeID
	ParentOf(id NodeID) (NodeID, bool)
	NextSiblingOf(id NodeID) (NodeID, bool)
	PrevSiblingOf(id NodeID) (NodeID, bool)

	// DocumentPosition returns a key that orders strictly by document order
	// across element and text nodes alike (id values alone do not: text and
	// element ids are drawn from separate ranges, so a raw numeric id
	// comparison would sort all text after all elements regardless of
	// source position). The document node sorts before every other node.
	DocumentPosition(id NodeID) int
}

// StringValue computes a node's XPath string-value: its own text content
// for a text/comment/PI node, or the concatenation of all descendant text
// for an element or the document node.
func StringValue(doc DocumentAccess, id NodeID) string {
	switch doc.NodeKindOf(id) {
	case TextNode, CommentNode, PINode:
		return doc.TextContent(id)
	default:
		var out []byte
		for _, d := range doc.Descendants(id) {
			if doc.NodeKindOf(d) == TextNode {
				out = append(out, doc.TextContent(d)...)
			}
		}
		return string(out)
	}
}
