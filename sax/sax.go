// Package sax implements the SAX-style event collector (spec §4.6): a
// scan.Handler that records one compact event per callback instead of
// materializing a tree, with attributes pulled out into a parallel side
// table.
//
// Grounded on wilkmaciej-xml-streamer/parser.go's parse(), which drives
// gosax events into tree construction; this collector keeps the same
// "one record per event" discipline but stops short of building a tree at
// all, matching the spec's leaner SAX layer.
package sax

import (
	"github.com/mkowalczyk/rustyx/scan"
	"github.com/mkowalczyk/rustyx/span"
)

// EventType tags an Event's primary meaning.
type EventType uint8

const (
	StartElement EventType = iota
	EndElement
	Text
	CData
	Comment
	ProcessingInstruction
	XMLDeclaration
	DocType
)

// EventFlags carry secondary per-event information without adding a field.
type EventFlags uint8

const (
	FlagIsEmpty          EventFlags = 1 << iota // StartElement was a self-closing tag
	FlagNeedsEntityDecode                        // Text contains an '&'
	FlagHasData                                  // PI/XMLDeclaration content is non-empty
)

// Event is one fixed-size record: a type tag, a flags byte, a name span, a
// content span, and two uint32s that, for StartElement only, index into the
// attribute quad table (start, count). A ProcessingInstruction carries its
// target in Name and its data in Content.
type Event struct {
	Type      EventType
	Flags     EventFlags
	Name      span.Span // element name / PI target; zero value otherwise
	Content   span.ExtSpan
	AttrStart uint32
	AttrCount uint32
}

// AttrQuad is one (name, value) span pair in the collector's shared
// attribute side-table.
type AttrQuad struct {
	NameOffset  uint32
	NameLen     uint16
	ValueOffset uint32
	ValueLen    uint16
}

func (q AttrQuad) NameSpan() span.Span  { return span.Span{Offset: q.NameOffset, Len: q.NameLen} }
func (q AttrQuad) ValueSpan() span.Span { return span.Span{Offset: q.ValueOffset, Len: q.ValueLen} }

// Collector implements scan.Handler, buffering the full event list plus a
// shared attribute quad table. Empty elements emit both a StartElement and
// an EndElement event (spec §4.6).
type Collector struct {
	Events []Event
	Attrs  []AttrQuad
	input  []byte
}

// NewCollector creates a Collector over input.
func NewCollector(input []byte) *Collector {
	return &Collector{input: input}
}

// StartElement implements scan.Handler.
func (c *Collector) StartElement(name span.Span, attrs []scan.Attr, isEmpty bool) {
	start := uint32(len(c.Attrs))
	for _, a := range attrs {
		c.Attrs = append(c.Attrs, AttrQuad{
			NameOffset:  a.Name.Offset,
			NameLen:     a.Name.Len,
			ValueOffset: a.Value.Offset,
			ValueLen:    a.Value.Len,
		})
	}
	var flags EventFlags
	if isEmpty {
		flags |= FlagIsEmpty
	}
	c.Events = append(c.Events, Event{
		Type:      StartElement,
		Flags:     flags,
		Name:      name,
		AttrStart: start,
		AttrCount: uint32(len(attrs)),
	})
	if isEmpty {
		c.Events = append(c.Events, Event{Type: EndElement, Name: name})
	}
}

// EndElement implements scan.Handler.
func (c *Collector) EndElement(name span.Span) {
	c.Events = append(c.Events, Event{Type: EndElement, Name: name})
}

// Text implements scan.Handler.
func (c *Collector) Text(content span.ExtSpan, needsDecode bool) {
	var flags EventFlags
	if needsDecode {
		flags |= FlagNeedsEntityDecode
	}
	c.Events = append(c.Events, Event{Type: Text, Flags: flags, Content: content})
}

// CData implements scan.Handler.
func (c *Collector) CData(content span.ExtSpan) {
	c.Events = append(c.Events, Event{Type: CData, Content: content})
}

// Comment implements scan.Handler.
func (c *Collector) Comment(content span.ExtSpan) {
	c.Events = append(c.Events, Event{Type: Comment, Content: content})
}

// ProcessingInstruction implements scan.Handler.
func (c *Collector) ProcessingInstruction(target span.Span, data span.ExtSpan, hasData bool) {
	var flags EventFlags
	if hasData {
		flags |= FlagHasData
	}
	c.Events = append(c.Events, Event{Type: ProcessingInstruction, Flags: flags, Name: target, Content: data})
}

// XMLDeclaration implements scan.Handler.
func (c *Collector) XMLDeclaration(content span.ExtSpan, hasData bool) {
	var flags EventFlags
	if hasData {
		flags |= FlagHasData
	}
	c.Events = append(c.Events, Event{Type: XMLDeclaration, Flags: flags, Content: content})
}

// DocType implements scan.Handler.
func (c *Collector) DocType(content span.ExtSpan) {
	c.Events = append(c.Events, Event{Type: DocType, Content: content})
}

// Attributes returns the (name, value) string pairs for a StartElement
// event, resolving spans against the input the Collector was created with.
func (c *Collector) Attributes(e Event) []scan.Attr {
	if e.AttrCount == 0 {
		return nil
	}
	out := make([]scan.Attr, 0, e.AttrCount)
	for i := e.AttrStart; i < e.AttrStart+e.AttrCount; i++ {
		q := c.Attrs[i]
		out = append(out, scan.Attr{Name: q.NameSpan(), Value: q.ValueSpan()})
	}
	return out
}

// ContentString resolves an event's content span to a string.
func (c *Collector) ContentString(e Event) string { return e.Content.String(c.input) }
