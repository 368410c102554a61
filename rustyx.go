// Package rustyx is the top-level façade over the engine's packages: parse
// into a queryable structural index, open a pull-style event reader,
// collect SAX-style events, and drive the chunked streaming extractor
// (spec §1's "three consumption modes ... a streaming mode"). It wires no
// new behavior of its own — each function is a thin constructor over the
// package that actually implements the concern, following the teacher's
// (wilkmaciej-xml-streamer) root-package convention of a small public
// surface over an internal tree/parser split.
package rustyx

import (
	"github.com/mkowalczyk/rustyx/index"
	"github.com/mkowalczyk/rustyx/reader"
	"github.com/mkowalczyk/rustyx/sax"
	"github.com/mkowalczyk/rustyx/scan"
	"github.com/mkowalczyk/rustyx/streaming"
	"github.com/mkowalczyk/rustyx/xmlenc"
	"github.com/mkowalczyk/rustyx/xpath"
)

// Document is a parsed, queryable structural index: the persistent
// consumption mode spec §1 names ("a persistent structural index suitable
// for repeated XPath 1.0 queries").
type Document struct {
	idx  *index.Index
	view *index.View
}

// Option configures Parse; Strict enables well-formedness validation.
type Option = scan.Option

// Strict enables strict XML 1.0 well-formedness and DTD-shape validation
// (spec §4.2); Parse is lenient by default.
func Strict() Option { return scan.Strict() }

// Parse builds a Document from input in a single pass. If input begins
// with a UTF-16 BOM it is transcoded to UTF-8 first (spec §6 "Encoding
// probe").
func Parse(input []byte, opts ...Option) (*Document, error) {
	input, err := xmlenc.ToUTF8(input)
	if err != nil {
		return nil, err
	}
	b := index.NewBuilder(input)
	if err := scan.Scan(input, b, opts...); err != nil {
		return nil, err
	}
	idx := b.Finish()
	return &Document{idx: idx, view: index.NewView(idx)}, nil
}

// Root returns the document's root element node, if any.
func (d *Document) Root() (xpath.NodeID, bool) { return d.view.RootElement() }

// View exposes the underlying xpath.DocumentAccess, for callers that want
// to drive the xpath package directly.
func (d *Document) View() xpath.DocumentAccess { return d.view }

// Query compiles and evaluates expr against d, rooted at d's document node
// (an absolute path context), using the package-level default cache.
func (d *Document) Query(expr string) (xpath.Value, error) {
	prog, err := defaultCache.Compile(expr)
	if err != nil {
		return xpath.Value{}, err
	}
	return xpath.Eval(d.view, d.view.DocumentNode(), prog)
}

// QueryFrom compiles and evaluates expr against d with node as the context
// node, for relative-path queries.
func (d *Document) QueryFrom(node xpath.NodeID, expr string) (xpath.Value, error) {
	prog, err := defaultCache.Compile(expr)
	if err != nil {
		return xpath.Value{}, err
	}
	return xpath.Eval(d.view, node, prog)
}

var defaultCache = xpath.NewCache(xpath.DefaultCacheSize)

// QueryString evaluates expr against node and resolves the result to a
// display string: a node-set's first member's string-value, a string-list's
// first member, or the plain string/number/boolean conversion otherwise
// (adapted from wilkmaciej-xml-streamer's ElementString, generalized from
// that teacher's *XMLElement/*XMLContentNode/*XMLAttribute type switch to
// xpath.ResolveString's document-aware resolver over this engine's Value).
func (d *Document) QueryString(node xpath.NodeID, expr string) (string, error) {
	v, err := d.QueryFrom(node, expr)
	if err != nil {
		return "", err
	}
	return xpath.ResolveString(d.view, v), nil
}

// NewReader opens a pull-style event reader over input (spec §1's
// pull-style-event-reader consumption mode).
func NewReader(input []byte, opts ...reader.Option) *reader.Reader {
	return reader.New(input, opts...)
}

// Collect runs the SAX-style collector over input in one pass (spec §1's
// SAX-style-event-collector consumption mode).
func Collect(input []byte, opts ...Option) (*sax.Collector, error) {
	c := sax.NewCollector(input)
	if err := scan.Scan(input, c, opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// NewStreamExtractor constructs a chunked element extractor (spec §4.7);
// tag, if non-empty, restricts extraction to elements with that name.
func NewStreamExtractor(tag string) *streaming.Extractor {
	if tag == "" {
		return streaming.New()
	}
	return streaming.NewWithFilter(tag)
}
