package domtest

import (
	"strings"

	"github.com/mkowalczyk/rustyx/xpath"
)

// Render serializes the subtree rooted at id back to XML bytes, entity-
// escaping text and attribute values. This is the Go counterpart of
// original_source's term.rs ("render a node subtree during host term
// construction"): that file converts a node to an Elixir term for a
// rustler host boundary this module has no equivalent of, so Render keeps
// term.rs's purpose — let a host observe a reconstructed subtree — in the
// one form that purpose takes without a host-term encoder: XML bytes.
func Render(doc xpath.DocumentAccess, id xpath.NodeID) []byte {
	var b strings.Builder
	render(&b, doc, id)
	return []byte(b.String())
}

func render(b *strings.Builder, doc xpath.DocumentAccess, id xpath.NodeID) {
	switch doc.NodeKindOf(id) {
	case xpath.TextNode:
		b.WriteString(escapeText(doc.TextContent(id)))
		return
	case xpath.CommentNode:
		b.WriteString("<!--")
		b.WriteString(doc.TextContent(id))
		b.WriteString("-->")
		return
	case xpath.PINode:
		b.WriteString("<?")
		b.WriteString(doc.NodeName(id))
		if data := doc.TextContent(id); data != "" {
			b.WriteByte(' ')
			b.WriteString(data)
		}
		b.WriteString("?>")
		return
	}

	name := doc.NodeName(id)
	b.WriteByte('<')
	b.WriteString(name)
	for _, a := range doc.GetAttributeValues(id) {
		b.WriteByte(' ')
		b.WriteString(a.Name)
		b.WriteString(`="`)
		b.WriteString(escapeAttr(a.Value))
		b.WriteByte('"')
	}

	children := doc.Children(id)
	if len(children) == 0 {
		b.WriteString("/>")
		return
	}
	b.WriteByte('>')
	for _, c := range children {
		render(b, doc, c)
	}
	b.WriteString("</")
	b.WriteString(name)
	b.WriteByte('>')
}

func escapeText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

func escapeAttr(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", "\"", "&quot;")
	return r.Replace(s)
}
