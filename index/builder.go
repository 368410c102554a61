package index

import (
	"sort"

	"github.com/mkowalczyk/rustyx/scan"
	"github.com/mkowalczyk/rustyx/span"
)

// Builder implements scan.Handler, accumulating a structural index in a
// single pass (spec §4.4). Capacities are seeded from a heuristic on input
// length: ~1 element per 35 bytes, 2x texts, 0.4x attributes; these are
// advisory only and never affect correctness.
type Builder struct {
	idx Index

	stack       []uint32 // open element indices
	prevSibling []uint32 // per-depth previous-sibling element index, NoNode if none yet
}

// NewBuilder creates a Builder over input, ready to receive scan.Handler
// calls in document order.
func NewBuilder(input []byte) *Builder {
	n := len(input)
	elemCap := n/35 + 1
	textCap := elemCap * 2
	attrCap := int(float64(elemCap) * 0.4)
	return &Builder{
		idx: Index{
			Input:    input,
			Elements: make([]Element, 0, elemCap),
			Texts:    make([]Text, 0, textCap),
			Attrs:    make([]Attribute, 0, attrCap),
			Root:     NoNode,
		},
	}
}

func (b *Builder) ensurePrevSiblingDepth(depth int) {
	for len(b.prevSibling) <= depth {
		b.prevSibling = append(b.prevSibling, NoNode)
	}
}

// StartElement implements scan.Handler.
func (b *Builder) StartElement(name span.Span, attrs []scan.Attr, isEmpty bool) {
	depth := uint32(len(b.stack))
	parent := NoNode
	if len(b.stack) > 0 {
		parent = b.stack[len(b.stack)-1]
	}

	idx := uint32(len(b.idx.Elements))
	attrStart := uint32(len(b.idx.Attrs))
	hasNamespace := false
	for _, a := range attrs {
		b.idx.Attrs = append(b.idx.Attrs, Attribute{Name: a.Name, Value: a.Value})
		if isXMLNSAttr(a.Name, b.idx.Input) {
			hasNamespace = true
		}
	}

	var flags ElementFlags
	if isEmpty {
		flags |= FlagEmpty
	}
	if hasColonName(name, b.idx.Input) {
		flags |= FlagHasPrefix
	}
	if hasNamespace {
		flags |= FlagHasNamespace
	}

	b.idx.Elements = append(b.idx.Elements, Element{
		Name:        name,
		Parent:      parent,
		FirstChild:  NoNode,
		LastChild:   NoNode,
		NextSibling: NoNode,
		AttrStart:   attrStart,
		AttrCount:   uint32(len(attrs)),
		Depth:       depth,
		Flags:       flags,
	})

	b.ensurePrevSiblingDepth(int(depth))
	if prev := b.prevSibling[depth]; prev != NoNode {
		b.idx.Elements[prev].NextSibling = idx
	} else if parent != NoNode {
		b.idx.Elements[parent].FirstChild = idx
	}
	if parent != NoNode {
		b.idx.Elements[parent].LastChild = idx
	}
	b.prevSibling[depth] = idx
	for d := int(depth) + 1; d < len(b.prevSibling); d++ {
		b.prevSibling[d] = NoNode
	}

	if idx == 0 {
		b.idx.Root = idx
	}
	if !isEmpty {
		b.stack = append(b.stack, idx)
	}
}

// EndElement implements scan.Handler. Child links (FirstChild/LastChild/
// NextSibling) are set entirely in StartElement, as soon as each child's
// position in its parent's child list is known, so they cover empty
// children too (spec §3: FirstChild/LastChild are NoNode iff the element
// has no child elements).
func (b *Builder) EndElement(name span.Span) {
	if len(b.stack) == 0 {
		return // unbalanced input in lenient mode; nothing to close
	}
	b.stack = b.stack[:len(b.stack)-1]
}

func (b *Builder) appendText(content span.ExtSpan, target span.Span, flags TextFlags) {
	parent := NoNode
	if len(b.stack) > 0 {
		parent = b.stack[len(b.stack)-1]
	}
	b.idx.Texts = append(b.idx.Texts, Text{
		Span:   content,
		Target: target,
		Parent: parent,
		Flags:  flags,
	})
}

// Text implements scan.Handler.
func (b *Builder) Text(content span.ExtSpan, needsDecode bool) {
	var flags TextFlags
	if needsDecode {
		flags |= FlagNeedsEntityDecode
	}
	b.appendText(content, span.Span{}, flags)
}

// CData implements scan.Handler.
func (b *Builder) CData(content span.ExtSpan) {
	b.appendText(content, span.Span{}, FlagIsCData)
}

// Comment implements scan.Handler.
func (b *Builder) Comment(content span.ExtSpan) {
	b.appendText(content, span.Span{}, FlagIsComment)
}

// ProcessingInstruction implements scan.Handler.
func (b *Builder) ProcessingInstruction(target span.Span, data span.ExtSpan, hasData bool) {
	b.appendText(data, target, FlagIsPI)
}

// XMLDeclaration implements scan.Handler. The index does not retain XML
// declarations as document content (spec §4.4 lists no such record kind);
// retaining the exact pseudo-attribute values is the caller's concern if
// needed (scan.Handler.XMLDeclaration still fires so a caller layering a
// different handler on the same scan can capture it).
func (b *Builder) XMLDeclaration(content span.ExtSpan, hasData bool) {}

// DocType implements scan.Handler. Like XMLDeclaration, DOCTYPE content is
// not modeled as an index record; it is consumed and validated purely at
// the tokenizer layer (package token).
func (b *Builder) DocType(content span.ExtSpan) {}

// Finish freezes the index: it computes the per-element child-ref ranges
// from the parent links recorded on every element and text record (spec
// §4.4 step "On finish").
func (b *Builder) Finish() *Index {
	idx := &b.idx
	n := len(idx.Elements)
	counts := make([]uint32, n)
	for _, e := range idx.Elements {
		if e.Parent != NoNode {
			counts[e.Parent]++
		}
	}
	for _, t := range idx.Texts {
		if t.Parent != NoNode {
			counts[t.Parent]++
		}
	}

	ranges := make([]childRange, n)
	var running uint32
	for i, c := range counts {
		ranges[i] = childRange{Start: running, Count: c}
		running += c
	}
	idx.childRange = ranges

	childRefs := make([]uint32, running)
	placed := make([]uint32, n)
	for i, e := range idx.Elements {
		if e.Parent == NoNode {
			continue
		}
		p := e.Parent
		pos := ranges[p].Start + placed[p]
		childRefs[pos] = uint32(i)
		placed[p]++
	}
	for i, t := range idx.Texts {
		if t.Parent == NoNode {
			continue
		}
		p := t.Parent
		pos := ranges[p].Start + placed[p]
		childRefs[pos] = childRefTextFlag | uint32(i)
		placed[p]++
	}
	idx.ChildRefs = childRefs

	for i := 0; i < n; i++ {
		r := ranges[i]
		if r.Count <= 1 {
			continue
		}
		slice := childRefs[r.Start : r.Start+r.Count]
		sort.Slice(slice, func(a, bIdx int) bool {
			return idx.offsetOfChildRef(slice[a]) < idx.offsetOfChildRef(slice[bIdx])
		})
	}

	return idx
}

func (idx *Index) offsetOfChildRef(ref uint32) uint32 {
	if i, isText := isChildRefText(ref); isText {
		return idx.Texts[i].Span.Offset()
	}
	return idx.Elements[ref].Name.Offset
}

func hasColonName(name span.Span, input []byte) bool {
	for _, b := range name.Bytes(input) {
		if b == ':' {
			return true
		}
	}
	return false
}

func isXMLNSAttr(name span.Span, input []byte) bool {
	b := name.Bytes(input)
	if len(b) == 5 && string(b) == "xmlns" {
		return true
	}
	return len(b) > 6 && string(b[:6]) == "xmlns:"
}
