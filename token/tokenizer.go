package token

import (
	"github.com/mkowalczyk/rustyx/scanner"
	"github.com/mkowalczyk/rustyx/span"
)

// Tokenizer drives a scanner.Scanner to produce Tokens.
//
// State machine (spec §4.2):
//
//	Init --ws/decl?--> InsideText <-> InsideMarkup --> Done(EOF)
//	                      |
//	                      +--> InsideRef (entity) --> InsideText
//
// InsideRef is not modeled as a separate state machine state here: entity
// references inside text are handled by scanner.DecodeText once a whole
// text run has been located, which is equivalent and simpler in Go.
type Tokenizer struct {
	sc     *scanner.Scanner
	strict bool

	atDocStart bool
	depth      int
	openNames  []string // for end-tag balance checking in strict mode

	dtd *dtdState

	attrBuf []scanner.Attr

	err *ParseError
}

// New creates a Tokenizer over input. strict enables well-formedness and
// DTD-shape validation (spec §4.2); otherwise the tokenizer runs in
// lenient/tolerant mode.
func New(input []byte, strict bool) *Tokenizer {
	return &Tokenizer{
		sc:         scanner.New(input),
		strict:     strict,
		atDocStart: true,
		dtd:        newDTDState(),
	}
}

// Err returns the first strict-mode error encountered, or nil.
func (t *Tokenizer) Err() *ParseError { return t.err }

func (t *Tokenizer) fail(offset int, msg string) (Token, error) {
	if t.err == nil {
		t.err = &ParseError{Msg: msg, Offset: offset}
	}
	return Token{}, t.err
}

// Next returns the next token, or an EOF-kind token once input is exhausted.
// In strict mode, once an error has been recorded, Next keeps returning that
// same error (spec §4.2: "stops emitting further tokens").
func (t *Tokenizer) Next() (Token, error) {
	if t.err != nil {
		return Token{}, t.err
	}
	if t.sc.AtEnd() {
		if t.strict && len(t.openNames) > 0 {
			return t.fail(t.sc.Pos(), "unclosed element: "+t.openNames[len(t.openNames)-1])
		}
		return Token{Kind: EOF}, nil
	}

	if t.atDocStart {
		t.atDocStart = false
		if t.strict {
			if b, ok := t.sc.Peek(); ok && scanner.IsWhitespace(b) {
				return t.fail(t.sc.Pos(), "whitespace before XML declaration is not allowed in strict mode")
			}
		} else {
			t.sc.SkipWhitespace()
		}
	}

	b, ok := t.sc.Peek()
	if !ok {
		return Token{Kind: EOF}, nil
	}
	if b == '<' {
		return t.scanMarkup()
	}
	return t.scanText()
}

// scanText consumes a text run up to the next '<' (or EOF) and decodes it.
func (t *Tokenizer) scanText() (Token, error) {
	start := t.sc.Pos()
	lt := t.sc.FindByte('<')
	end := lt
	if lt < 0 {
		end = t.sc.Len()
	}
	raw := t.sc.Input()[start:end]
	t.sc.SetPos(end)

	if t.strict && bytesContainCDataClose(raw) {
		return t.fail(start, "text content must not contain ']]>'")
	}
	needsDecode := scanner.NeedsDecode(raw)
	if t.strict {
		if _, err := scanner.DecodeText(raw, false); err != nil {
			return t.fail(start, err.Error())
		}
	}
	return Token{
		Kind:    Text,
		Span:    span.NewExt(uint32(start), end-start),
		Content: span.NewExt(uint32(start), end-start),
		HasData: needsDecode,
	}, nil
}

func bytesContainCDataClose(b []byte) bool {
	for i := 0; i+3 <= len(b); i++ {
		if b[i] == ']' && b[i+1] == ']' && b[i+2] == '>' {
			return true
		}
	}
	return false
}

// scanMarkup handles the InsideMarkup state: one-byte lookahead after '<'
// dispatches to the right sub-scanner.
func (t *Tokenizer) scanMarkup() (Token, error) {
	start := t.sc.Pos()
	next, ok := t.sc.PeekAt(1)
	if !ok {
		// Bare '<' at EOF: emit as literal text and stop (never backtrack).
		t.sc.Advance(1)
		return Token{Kind: Text, Span: span.NewExt(uint32(start), 1), Content: span.NewExt(uint32(start), 1)}, nil
	}

	switch {
	case next == '/':
		return t.scanEndTag(start)
	case next == '!':
		return t.scanBang(start)
	case next == '?':
		return t.scanPI(start)
	default:
		return t.scanStartOrEmptyTag(start)
	}
}

func (t *Tokenizer) scanStartOrEmptyTag(start int) (Token, error) {
	t.sc.Advance(1) // consume '<'
	nameStart, nameEnd, ok := t.sc.ReadName()
	if !ok {
		return t.recoverBareLT(start)
	}
	name := span.New(uint32(nameStart), nameEnd-nameStart)

	attrsStart := t.sc.Pos()
	tagEnd := t.sc.FindTagEndQuoted()
	if tagEnd < 0 {
		return t.fail(start, "unterminated tag")
	}
	attrsEnd := tagEnd
	isEmpty := false
	if attrsEnd > attrsStart && t.sc.Input()[attrsEnd-1] == '/' {
		isEmpty = true
		attrsEnd--
	}

	attrs, err := scanner.ParseAttrs(t.attrBuf[:0], t.sc.Input(), attrsStart, attrsEnd, t.strict)
	if err != nil {
		return t.fail(attrsStart, err.Error())
	}
	t.attrBuf = attrs

	if t.strict {
		if err := checkDupAttrs(t.sc.Input(), attrs); err != nil {
			return t.fail(attrsStart, err.Error())
		}
	}

	t.sc.SetPos(tagEnd + 1)

	tokAttrs := make([]Attr, len(attrs))
	for i, a := range attrs {
		tokAttrs[i] = Attr{Name: a.Name, Value: a.Value}
	}

	kind := StartTag
	if isEmpty {
		kind = EmptyTag
	} else {
		t.depth++
		t.openNames = append(t.openNames, name.String(t.sc.Input()))
	}

	return Token{
		Kind:    kind,
		Span:    span.NewExt(uint32(start), t.sc.Pos()-start),
		Name:    name,
		Attrs:   tokAttrs,
		IsEmpty: isEmpty,
	}, nil
}

func (t *Tokenizer) scanEndTag(start int) (Token, error) {
	t.sc.Advance(2) // consume '</'
	nameStart, nameEnd, ok := t.sc.ReadName()
	if !ok {
		if t.strict {
			return t.fail(start, "invalid end-tag name")
		}
		return t.recoverBareLT(start)
	}
	name := span.New(uint32(nameStart), nameEnd-nameStart)

	gt := t.sc.FindByte('>')
	if gt < 0 {
		return t.fail(start, "unterminated end tag")
	}
	// End tags may not carry attributes (spec §4.2): anything non-whitespace
	// between the name and '>' is a strict-mode error.
	between := t.sc.Input()[nameEnd:gt]
	if t.strict {
		for _, b := range between {
			if !scanner.IsWhitespace(b) {
				return t.fail(nameEnd, "end tag must not carry attributes")
			}
		}
	}
	t.sc.SetPos(gt + 1)

	if t.strict {
		nameStr := name.String(t.sc.Input())
		if len(t.openNames) == 0 || t.openNames[len(t.openNames)-1] != nameStr {
			return t.fail(start, "mismatched end tag: "+nameStr)
		}
		t.openNames = t.openNames[:len(t.openNames)-1]
		t.depth--
	} else if len(t.openNames) > 0 {
		t.openNames = t.openNames[:len(t.openNames)-1]
		t.depth--
	}

	return Token{
		Kind: EndTag,
		Span: span.NewExt(uint32(start), t.sc.Pos()-start),
		Name: name,
	}, nil
}

// recoverBareLT implements the "never backtrack" robustness rule (spec
// §4.3): emit the single '<' byte as literal text and resume at the
// following byte.
func (t *Tokenizer) recoverBareLT(start int) (Token, error) {
	t.sc.SetPos(start + 1)
	return Token{Kind: Text, Span: span.NewExt(uint32(start), 1), Content: span.NewExt(uint32(start), 1)}, nil
}

func checkDupAttrs(input []byte, attrs []scanner.Attr) error {
	if len(attrs) < 2 {
		return nil
	}
	seen := make(map[string]struct{}, len(attrs))
	for _, a := range attrs {
		name := a.Name.String(input)
		if _, ok := seen[name]; ok {
			return errDupAttr(name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

type errDupAttr string

func (e errDupAttr) Error() string { return "duplicate attribute: " + string(e) }
