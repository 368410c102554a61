// Package index implements the structural index (spec §4.4): a columnar,
// span-based representation of a parsed document built in one pass from a
// scan.Handler stream, plus the document-access adapter XPath evaluates
// against (spec §4.5).
//
// Grounded on original_source/native/rustyxml/src/index/{builder,structural}.rs
// for the array layout and builder algorithm, and on
// wilkmaciej-xml-streamer/element.go for the tree-shape this replaces (that
// file builds one *XMLElement per node with parent/children pointers; this
// package stores the same relationships as parallel integer arrays instead,
// the cache-friendly columnar form the spec calls for).
package index

import "github.com/mkowalczyk/rustyx/span"

// NoNode is the sentinel for "no such link" in element/text parent and
// sibling fields.
const NoNode uint32 = 1<<32 - 1

// ElementFlags are the bit flags the element record carries.
type ElementFlags uint8

const (
	FlagEmpty ElementFlags = 1 << iota
	FlagHasPrefix
	FlagHasNamespace
)

// Element is one element record: ≤ 40 bytes, packed with indices rather
// than pointers.
type Element struct {
	Name        span.Span
	Parent      uint32
	FirstChild  uint32 // first *element* child; NoNode if none
	LastChild   uint32 // last *element* child; NoNode if none
	NextSibling uint32 // next *element* sibling; NoNode if none/last
	AttrStart   uint32
	AttrCount   uint32
	Depth       uint32
	Flags       ElementFlags
}

// TextFlags distinguish the four semantic kinds a Text record can carry.
type TextFlags uint8

const (
	FlagNeedsEntityDecode TextFlags = 1 << iota
	FlagIsCData
	FlagIsComment
	FlagIsPI
)

// Text is one text/CDATA/comment/processing-instruction record.
type Text struct {
	Span   span.ExtSpan
	Target span.Span // PI target name; zero value for non-PI records
	Parent uint32
	Flags  TextFlags
}

// Attribute is one (name, value) span pair; ordering within an element
// preserves source order.
type Attribute struct {
	Name  span.Span
	Value span.Span
}

const childRefTextFlag uint32 = 1 << 31

// Index is the frozen columnar document representation: four parallel
// arrays plus a per-element (start, count) range into the child-ref array.
type Index struct {
	Input      []byte
	Elements   []Element
	Texts      []Text
	Attrs      []Attribute
	ChildRefs  []uint32
	childRange []childRange
	Root       uint32 // NoNode if the document has no element
}

type childRange struct {
	Start uint32
	Count uint32
}

// ChildRefRange returns the slice of child-refs belonging to element e.
func (idx *Index) ChildRefRange(e uint32) []uint32 {
	r := idx.childRange[e]
	return idx.ChildRefs[r.Start : r.Start+r.Count]
}

func isChildRefText(ref uint32) (uint32, bool) {
	if ref&childRefTextFlag != 0 {
		return ref &^ childRefTextFlag, true
	}
	return ref, false
}
