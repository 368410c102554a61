// Package scanner implements the lexical layer of the engine: a cursor over
// an immutable byte slice with forward search primitives, grounded on
// wilkmaciej-xml-streamer's hand-rolled byte loops (parser.go's
// parseAttributes/extractNamespaces) generalized into a reusable cursor and
// on original_source's core/scanner.rs for the quote-aware tag-end search.
//
// Search primitives delegate to bytes.IndexByte/IndexAny, which the Go
// runtime implements with vectorized assembly on every supported
// architecture — the closest stdlib equivalent to the Rust source's memchr
// SIMD search (see DESIGN.md for why no separate SIMD package was wired).
package scanner

import "bytes"

// Scanner is a forward-only cursor over an immutable input buffer.
type Scanner struct {
	input []byte
	pos   int
}

// New creates a Scanner positioned at the start of input.
func New(input []byte) *Scanner {
	return &Scanner{input: input}
}

// Pos returns the current byte offset.
func (s *Scanner) Pos() int { return s.pos }

// SetPos repositions the cursor. Callers must only move forward or to a
// previously observed position; the scanner never backtracks on its own.
func (s *Scanner) SetPos(pos int) { s.pos = pos }

// Len returns the total input length.
func (s *Scanner) Len() int { return len(s.input) }

// AtEnd reports whether the cursor has reached the end of input.
func (s *Scanner) AtEnd() bool { return s.pos >= len(s.input) }

// Input returns the full backing buffer (for span resolution elsewhere).
func (s *Scanner) Input() []byte { return s.input }

// Peek returns the byte at the cursor without advancing, and false if at EOF.
func (s *Scanner) Peek() (byte, bool) {
	if s.AtEnd() {
		return 0, false
	}
	return s.input[s.pos], true
}

// PeekAt returns the byte at offset n ahead of the cursor, and false if out
// of range.
func (s *Scanner) PeekAt(n int) (byte, bool) {
	i := s.pos + n
	if i < 0 || i >= len(s.input) {
		return 0, false
	}
	return s.input[i], true
}

// Advance moves the cursor forward by n bytes, clamped to input length.
func (s *Scanner) Advance(n int) {
	s.pos += n
	if s.pos > len(s.input) {
		s.pos = len(s.input)
	}
}

// FindByte returns the absolute offset of the next occurrence of b at or
// after the cursor, or -1 if not found. Does not move the cursor.
func (s *Scanner) FindByte(b byte) int {
	idx := bytes.IndexByte(s.input[s.pos:], b)
	if idx < 0 {
		return -1
	}
	return s.pos + idx
}

// FindAny2 returns the absolute offset of the next occurrence of either a or
// b at or after the cursor, or -1 if neither occurs.
func (s *Scanner) FindAny2(a, b byte) int {
	rest := s.input[s.pos:]
	ia, ib := bytes.IndexByte(rest, a), bytes.IndexByte(rest, b)
	idx := minNonNegative(ia, ib)
	if idx < 0 {
		return -1
	}
	return s.pos + idx
}

// FindAny3 returns the absolute offset of the next occurrence of any of a,
// b, or c at or after the cursor, or -1 if none occurs.
func (s *Scanner) FindAny3(a, b, c byte) int {
	rest := s.input[s.pos:]
	ia, ib, ic := bytes.IndexByte(rest, a), bytes.IndexByte(rest, b), bytes.IndexByte(rest, c)
	idx := minNonNegative(minNonNegative(ia, ib), ic)
	if idx < 0 {
		return -1
	}
	return s.pos + idx
}

func minNonNegative(a, b int) int {
	if a < 0 {
		return b
	}
	if b < 0 {
		return a
	}
	if a < b {
		return a
	}
	return b
}

// FindTagEndQuoted scans forward from the cursor for the next '>' that is
// not inside a single- or double-quoted attribute value, toggling
// in_single_quote/in_double_quote on unescaped quote bytes (a quote inside
// the opposite kind of quote does not toggle). Returns the absolute offset
// of the terminating '>' or -1 if the tag never closes before EOF.
func (s *Scanner) FindTagEndQuoted() int {
	inSingle, inDouble := false, false
	for i := s.pos; i < len(s.input); i++ {
		switch s.input[i] {
		case '\'':
			if !inDouble {
				inSingle = !inSingle
			}
		case '"':
			if !inSingle {
				inDouble = !inDouble
			}
		case '>':
			if !inSingle && !inDouble {
				return i
			}
		}
	}
	return -1
}

// nameStartByte reports whether b can begin an XML Name in the ASCII range
// (bytes >= 0x80 are always accepted here; full Unicode Name validation is
// deferred to strict mode, per spec §4.1).
func nameStartByte(b byte) bool {
	return b == ':' || b == '_' ||
		(b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b >= 0x80
}

// nameContByte reports whether b can continue an XML Name.
func nameContByte(b byte) bool {
	return nameStartByte(b) || b == '-' || b == '.' || (b >= '0' && b <= '9')
}

// ReadName advances the cursor over one XML Name token and returns its
// [start, end) byte range. Requires the first byte to be a valid name-start
// byte; returns ok=false (without advancing) otherwise.
func (s *Scanner) ReadName() (start, end int, ok bool) {
	if s.AtEnd() {
		return 0, 0, false
	}
	if !nameStartByte(s.input[s.pos]) {
		return 0, 0, false
	}
	start = s.pos
	i := s.pos + 1
	for i < len(s.input) && nameContByte(s.input[i]) {
		i++
	}
	s.pos = i
	return start, i, true
}

// SkipWhitespace advances the cursor over XML whitespace (space, tab, CR,
// LF) and reports how many bytes were skipped.
func (s *Scanner) SkipWhitespace() int {
	start := s.pos
	for s.pos < len(s.input) {
		switch s.input[s.pos] {
		case ' ', '\t', '\r', '\n':
			s.pos++
		default:
			return s.pos - start
		}
	}
	return s.pos - start
}

// IsWhitespace reports whether b is XML whitespace.
func IsWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}
