// Package scan drives the token.Tokenizer and dispatches each token to a
// Handler, the single sink interface both the structural index builder
// (package index) and the SAX-style event collector (package sax) satisfy.
// Grounded on spec §4.3's unified scanner and on
// wilkmaciej-xml-streamer/parser.go's parse() method, which plays the same
// role over gosax events — generalized here from one hardwired consumer
// (the element tree builder) into a pluggable Handler.
package scan

import (
	"github.com/mkowalczyk/rustyx/span"
	"github.com/mkowalczyk/rustyx/token"
)

// Attr is one attribute as (name, value) spans into the scanned input.
type Attr struct {
	Name  span.Span
	Value span.Span
}

// Handler receives a well-formed stream of markup events. Implementations
// must not retain Span values past the call in which they're given without
// also retaining the backing input, since spans are only valid relative to
// the buffer Scan was called with.
type Handler interface {
	StartElement(name span.Span, attrs []Attr, isEmpty bool)
	EndElement(name span.Span)
	Text(content span.ExtSpan, needsDecode bool)
	CData(content span.ExtSpan)
	Comment(content span.ExtSpan)
	ProcessingInstruction(target span.Span, data span.ExtSpan, hasData bool)
	XMLDeclaration(content span.ExtSpan, hasData bool)
	DocType(content span.ExtSpan)
}

// Option configures a Scan call, following the teacher's functional-options
// pattern (wilkmaciej-xml-streamer's NewParser options).
type Option func(*config)

type config struct {
	strict bool
}

// Strict enables strict XML 1.0 well-formedness and DTD-shape validation
// (spec §4.2). Scanning is lenient by default.
func Strict() Option {
	return func(c *config) { c.strict = true }
}

// Scan tokenizes input and dispatches every emitted token to h, in document
// order, stopping either at EOF or at the first strict-mode error.
func Scan(input []byte, h Handler, opts ...Option) error {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	tok := token.New(input, cfg.strict)
	attrBuf := make([]Attr, 0, 8)

	for {
		tk, err := tok.Next()
		if err != nil {
			return err
		}
		switch tk.Kind {
		case token.EOF:
			return nil
		case token.StartTag, token.EmptyTag:
			attrBuf = attrBuf[:0]
			for _, a := range tk.Attrs {
				attrBuf = append(attrBuf, Attr{Name: a.Name, Value: a.Value})
			}
			h.StartElement(tk.Name, attrBuf, tk.Kind == token.EmptyTag)
		case token.EndTag:
			h.EndElement(tk.Name)
		case token.Text:
			h.Text(tk.Content, tk.HasData)
		case token.CData:
			h.CData(tk.Content)
		case token.Comment:
			h.Comment(tk.Content)
		case token.ProcessingInstruction:
			h.ProcessingInstruction(tk.Name, tk.Content, tk.HasData)
		case token.XMLDeclaration:
			h.XMLDeclaration(tk.Content, tk.HasData)
		case token.DocType:
			h.DocType(tk.Content)
		}
	}
}
