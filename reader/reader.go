// Package reader is the pull-style event reader spec §1 names as one of
// the engine's three consumption modes ("a pull-style event reader, a
// SAX-style event collector, and a persistent structural index").
// Grounded on original_source's reader/{slice,buffered,events}.rs (a pull
// SliceReader/BufferedReader pair folded into that one phrase by the
// spec's distillation) and, for the idiom, on wilkmaciej-xml-streamer's
// Parser — rewritten from that teacher's push callback-driven parse()
// into an explicit Next() pull loop directly over token.Tokenizer, since
// a pull reader's whole point is that the caller drives iteration rather
// than handing control to a callback.
package reader

import (
	"github.com/mkowalczyk/rustyx/token"
)

// Attr is one resolved (name, value) attribute pair.
type Attr struct {
	Name  string
	Value string
}

// Event is one markup event, with spans already resolved against the
// input the Reader was constructed with. Kind reuses token.Kind's values
// directly so callers can switch on the same constants the tokenizer
// itself uses.
type Event struct {
	Kind    token.Kind
	Name    string
	Content string
	HasData bool
	IsEmpty bool
	Attrs   []Attr
}

// Option configures a Reader, matching scan.Option's functional-options
// shape (grounded on the teacher's NewParser options).
type Option func(*config)

type config struct {
	strict bool
}

// Strict enables strict XML 1.0 well-formedness and DTD-shape validation
// (spec §4.2); the Reader is lenient by default.
func Strict() Option {
	return func(c *config) { c.strict = true }
}

// Reader pulls one Event at a time from input. It is not safe for
// concurrent use (spec §5: "the tokenizer... take[s] an exclusive
// reference to their cursor").
type Reader struct {
	input   []byte
	tok     *token.Tokenizer
	pending *Event
	err     error
}

// New constructs a Reader over input.
func New(input []byte, opts ...Option) *Reader {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Reader{input: input, tok: token.New(input, cfg.strict)}
}

// Next returns the next event, or an error on the first strict-mode
// violation, or (Event{Kind: token.EOF}, nil) at end of input. Once Next
// returns a non-nil error, every subsequent call returns that same error.
func (r *Reader) Next() (Event, error) {
	if r.pending != nil {
		ev := *r.pending
		r.pending = nil
		return ev, nil
	}
	return r.advance()
}

// Peek returns the next event without consuming it; the following Next
// call returns the same event.
func (r *Reader) Peek() (Event, error) {
	if r.pending != nil {
		return *r.pending, nil
	}
	ev, err := r.advance()
	if err != nil {
		return Event{}, err
	}
	r.pending = &ev
	return ev, nil
}

func (r *Reader) advance() (Event, error) {
	if r.err != nil {
		return Event{}, r.err
	}
	tk, err := r.tok.Next()
	if err != nil {
		r.err = err
		return Event{}, err
	}
	return r.toEvent(tk), nil
}

func (r *Reader) toEvent(tk token.Token) Event {
	ev := Event{
		Kind:    tk.Kind,
		HasData: tk.HasData,
		IsEmpty: tk.IsEmpty || tk.Kind == token.EmptyTag,
	}
	switch tk.Kind {
	case token.StartTag, token.EmptyTag:
		ev.Name = tk.Name.String(r.input)
		if len(tk.Attrs) > 0 {
			ev.Attrs = make([]Attr, len(tk.Attrs))
			for i, a := range tk.Attrs {
				ev.Attrs[i] = Attr{Name: a.Name.String(r.input), Value: a.Value.String(r.input)}
			}
		}
	case token.EndTag:
		ev.Name = tk.Name.String(r.input)
	case token.ProcessingInstruction:
		ev.Name = tk.Name.String(r.input)
		ev.Content = tk.Content.String(r.input)
	default:
		ev.Content = tk.Content.String(r.input)
	}
	return ev
}
