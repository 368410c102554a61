// Package token turns a byte slice into a stream of XML markup tokens. It
// implements spec §4.2: the tokenizer state machine, strict-mode
// well-formedness validation, and DTD internal-subset shape checks.
//
// Grounded on original_source/native/rustyxml/src/core/tokenizer.rs (state
// machine, token kinds) and dtd.rs (DTD declaration shape rules), carried
// into Go idiom: explicit (Token, error) returns instead of Result<Option<T>>,
// and a ParseError type instead of a borrowed &'static str.
package token

import "github.com/mkowalczyk/rustyx/span"

// Kind identifies the nine token kinds spec §4.2 names.
type Kind int

const (
	StartTag Kind = iota
	EndTag
	EmptyTag
	Text
	CData
	Comment
	ProcessingInstruction
	XMLDeclaration
	DocType
	EOF
)

func (k Kind) String() string {
	switch k {
	case StartTag:
		return "StartTag"
	case EndTag:
		return "EndTag"
	case EmptyTag:
		return "EmptyTag"
	case Text:
		return "Text"
	case CData:
		return "CData"
	case Comment:
		return "Comment"
	case ProcessingInstruction:
		return "ProcessingInstruction"
	case XMLDeclaration:
		return "XMLDeclaration"
	case DocType:
		return "DocType"
	case EOF:
		return "EOF"
	default:
		return "Unknown"
	}
}

// Token is one emitted unit of markup. Fields are populated according to
// Kind: Name for tags and PI targets, Content for text/CDATA/comment/PI
// data/DOCTYPE body, Attrs for start/empty tags. Span is the raw byte range
// in the input this token was read from (used by the streaming extractor
// and by the round-trip property, spec §8.5).
type Token struct {
	Kind Kind
	// Span is the token's whole raw byte range; Content, where populated, is
	// an ExtSpan because text/CDATA/comment/PI content routinely exceeds the
	// 64KiB a plain Span can address (spec §3 "extended span").
	Span    span.ExtSpan
	Name    span.Span
	Content span.ExtSpan
	// HasData is overloaded by Kind: for Text, whether Content contains an
	// entity reference needing decode; for ProcessingInstruction and
	// XMLDeclaration, whether Content is non-empty.
	HasData bool
	Attrs   []Attr
	IsEmpty bool // for StartTag promoted to self-closing
}

// Attr mirrors scanner.Attr to avoid a dependency cycle between token and
// scan on the attribute shape; scan re-slices scanner.Attr into this.
type Attr struct {
	Name  span.Span
	Value span.Span
}

// ParseError is returned by strict-mode tokenization on the first
// well-formedness violation. It carries a human-readable message and the
// byte offset where the violation was detected (spec §6-7).
type ParseError struct {
	Msg    string
	Offset int
}

func (e *ParseError) Error() string { return e.Msg }
