package index

import "github.com/mkowalczyk/rustyx/xpath"

// View adapts a frozen Index to the xpath.DocumentAccess capability (spec
// §4.5). It is the production document representation XPath queries run
// against; package domtest provides the test-only alternative.
type View struct {
	idx *Index
}

// NewView wraps idx for XPath evaluation.
func NewView(idx *Index) *View { return &View{idx: idx} }

func elementNodeID(i uint32) xpath.NodeID { return xpath.NodeID(i) }
func textNodeID(i uint32) xpath.NodeID    { return xpath.NodeID(i) | (1 << 31) }

func splitNodeID(id xpath.NodeID) (idxVal uint32, isText bool) {
	if id&(1<<31) != 0 {
		return uint32(id &^ (1 << 31)), true
	}
	return uint32(id), false
}

// RootElement implements xpath.DocumentAccess.
func (v *View) RootElement() (xpath.NodeID, bool) {
	if v.idx.Root == NoNode {
		return 0, false
	}
	return elementNodeID(v.idx.Root), true
}

// DocumentNode implements xpath.DocumentAccess.
func (v *View) DocumentNode() xpath.NodeID { return xpath.Document }

// NodeKindOf implements xpath.DocumentAccess.
func (v *View) NodeKindOf(id xpath.NodeID) xpath.NodeKind {
	if id == xpath.Document {
		return xpath.DocumentNodeKind
	}
	i, isText := splitNodeID(id)
	if !isText {
		return xpath.ElementNode
	}
	t := v.idx.Texts[i]
	switch {
	case t.Flags&FlagIsComment != 0:
		return xpath.CommentNode
	case t.Flags&FlagIsPI != 0:
		return xpath.PINode
	default:
		return xpath.TextNode
	}
}

// NodeName implements xpath.DocumentAccess: an element's raw (possibly
// prefixed) name, or a PI's target; empty for text/comment/document.
func (v *View) NodeName(id xpath.NodeID) string {
	i, isText := splitNodeID(id)
	if id == xpath.Document {
		return ""
	}
	if !isText {
		return v.idx.Elements[i].Name.String(v.idx.Input)
	}
	t := v.idx.Texts[i]
	if t.Flags&FlagIsPI != 0 {
		return t.Target.String(v.idx.Input)
	}
	return ""
}

// NodeLocalName implements xpath.DocumentAccess: NodeName with any
// "prefix:" stripped (spec §4.5).
func (v *View) NodeLocalName(id xpath.NodeID) string {
	name := v.NodeName(id)
	for i := 0; i < len(name); i++ {
		if name[i] == ':' {
			return name[i+1:]
		}
	}
	return name
}

// NodeNamespaceURI implements xpath.DocumentAccess. The index view never
// resolves namespace URIs (spec §4.5, §1 non-goals); higher layers that
// maintain a declaration stack (package domtest) can do so.
func (v *View) NodeNamespaceURI(id xpath.NodeID) string { return "" }

// NodePrefix implements xpath.DocumentAccess: the "prefix" portion of a
// possibly-prefixed element name, or empty.
func (v *View) NodePrefix(id xpath.NodeID) string {
	name := v.NodeName(id)
	for i := 0; i < len(name); i++ {
		if name[i] == ':' {
			return name[:i]
		}
	}
	return ""
}

// TextContent implements xpath.DocumentAccess: the raw span text for a
// text/CDATA/comment/PI record. Entity-decoding is not performed here; the
// index only records whether NEEDS_ENTITY_DECODE was set (spec §8.1
// "span fidelity" — decoding is a reader-layer concern for consumers that
// need it, since XPath string comparisons are defined on span text).
func (v *View) TextContent(id xpath.NodeID) string {
	i, isText := splitNodeID(id)
	if !isText {
		return xpath.StringValue(v, id)
	}
	return v.idx.Texts[i].Span.String(v.idx.Input)
}

// GetAttribute implements xpath.DocumentAccess.
func (v *View) GetAttribute(id xpath.NodeID, name string) (string, bool) {
	if id == xpath.Document {
		return "", false
	}
	i, isText := splitNodeID(id)
	if isText {
		return "", false
	}
	e := v.idx.Elements[i]
	for a := e.AttrStart; a < e.AttrStart+e.AttrCount; a++ {
		attr := v.idx.Attrs[a]
		if attr.Name.String(v.idx.Input) == name {
			return attr.Value.String(v.idx.Input), true
		}
	}
	return "", false
}

// GetAttributeValues implements xpath.DocumentAccess.
func (v *View) GetAttributeValues(id xpath.NodeID) []xpath.Attr {
	if id == xpath.Document {
		return nil
	}
	i, isText := splitNodeID(id)
	if isText {
		return nil
	}
	e := v.idx.Elements[i]
	if e.AttrCount == 0 {
		return nil
	}
	out := make([]xpath.Attr, 0, e.AttrCount)
	for a := e.AttrStart; a < e.AttrStart+e.AttrCount; a++ {
		attr := v.idx.Attrs[a]
		out = append(out, xpath.Attr{
			Name:  attr.Name.String(v.idx.Input),
			Value: attr.Value.String(v.idx.Input),
		})
	}
	return out
}

// Children implements xpath.DocumentAccess.
func (v *View) Children(id xpath.NodeID) []xpath.NodeID {
	if id == xpath.Document {
		if root, ok := v.RootElement(); ok {
			return []xpath.NodeID{root}
		}
		return nil
	}
	i, isText := splitNodeID(id)
	if isText {
		return nil
	}
	refs := v.idx.ChildRefRange(i)
	out := make([]xpath.NodeID, len(refs))
	for j, ref := range refs {
		if ci, isT := isChildRefText(ref); isT {
			out[j] = textNodeID(ci)
		} else {
			out[j] = elementNodeID(ref)
		}
	}
	return out
}

// Descendants implements xpath.DocumentAccess: all nodes under id in
// document order, via a recursive walk over child-ref ranges.
func (v *View) Descendants(id xpath.NodeID) []xpath.NodeID {
	var out []xpath.NodeID
	var walk func(xpath.NodeID)
	walk = func(n xpath.NodeID) {
		for _, c := range v.Children(n) {
			out = append(out, c)
			if _, isText := splitNodeID(c); !isText {
				walk(c)
			}
		}
	}
	walk(id)
	return out
}

// ParentOf implements xpath.DocumentAccess.
func (v *View) ParentOf(id xpath.NodeID) (xpath.NodeID, bool) {
	if id == xpath.Document {
		return 0, false
	}
	i, isText := splitNodeID(id)
	var parent uint32
	if isText {
		parent = v.idx.Texts[i].Parent
	} else {
		parent = v.idx.Elements[i].Parent
	}
	if parent == NoNode {
		return xpath.Document, true
	}
	return elementNodeID(parent), true
}

// NextSiblingOf implements xpath.DocumentAccess. For every node, element or
// text, it scans the parent's child-ref range for id and returns the entry
// after it; stored element sibling links are not consulted (spec §4.5:
// "text nodes do not carry sibling links").
func (v *View) NextSiblingOf(id xpath.NodeID) (xpath.NodeID, bool) {
	parent, ok := v.ParentOf(id)
	if !ok {
		return 0, false
	}
	siblings := v.Children(parent)
	for j, s := range siblings {
		if s == id && j+1 < len(siblings) {
			return siblings[j+1], true
		}
	}
	return 0, false
}

// DocumentPosition implements xpath.DocumentAccess: the node's start byte
// offset in the source, which orders element and text nodes correctly
// together even though they live in separate id ranges (spec §4.10, via
// the interface doc comment on DocumentPosition).
func (v *View) DocumentPosition(id xpath.NodeID) int {
	if id == xpath.Document {
		return -1
	}
	i, isText := splitNodeID(id)
	if isText {
		return int(v.idx.Texts[i].Span.Offset())
	}
	return int(v.idx.Elements[i].Name.Offset)
}

// PrevSiblingOf implements xpath.DocumentAccess.
func (v *View) PrevSiblingOf(id xpath.NodeID) (xpath.NodeID, bool) {
	parent, ok := v.ParentOf(id)
	if !ok {
		return 0, false
	}
	siblings := v.Children(parent)
	for j, s := range siblings {
		if s == id && j > 0 {
			return siblings[j-1], true
		}
	}
	return 0, false
}
