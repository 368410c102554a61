// Package streaming implements the chunked element extractor (spec §4.7):
// a stateful buffer that accumulates host-fed chunks, finds safe element
// boundaries that respect quoted attribute contexts, and emits completed
// top-level elements matching a target tag as raw byte strings.
//
// Grounded on original_source/native/rustyxml/src/strategy/streaming.rs
// (StreamingParser): the accumulation buffer, element builder, dual-path
// safe-boundary finder, and depth/target-depth bookkeeping all carry over
// directly. The Go port drops the parallel OwnedXmlEvent stream the Rust
// version also maintains — spec §4.7 only names completed-element output,
// so the event side of that struct had no home here and is not built.
package streaming

import (
	"bytes"

	"github.com/mkowalczyk/rustyx/span"
	"github.com/mkowalczyk/rustyx/token"
)

// safeBoundaryThreshold is the buffer size at which the boundary finder
// switches from a single-pass scan to an IndexByte-driven one (spec §4.7:
// "single-pass quote-tracking scan (small buffers) ... SIMD pass over '>'
// positions ... (large buffers)"). Go has no SIMD memchr in the standard
// library; bytes.IndexByte is the closest stand-in (it compiles to a
// vectorized loop on amd64/arm64) and the two paths are required to agree,
// which the tests in streaming_test.go check directly.
const safeBoundaryThreshold = 1024

// elementBuilder accumulates the bytes of a target element currently open
// across a chunk boundary.
type elementBuilder struct {
	accumulated   []byte
	startInBuffer int // offset into the current buffer where the element begins
}

// Extractor is a stateful streaming XML element extractor. It is not safe
// for concurrent use (spec §5: "must not be shared across threads without
// external synchronization").
type Extractor struct {
	buffer           []byte
	complete         [][]byte
	builder          *elementBuilder
	depth            int
	tagFilter        []byte
	hasFilter        bool
	insideTargetDepth int
}

// New creates an Extractor with no tag filter: every top-level element is
// captured.
func New() *Extractor {
	return &Extractor{buffer: make([]byte, 0, 8192)}
}

// NewWithFilter creates an Extractor that only captures elements named tag.
func NewWithFilter(tag string) *Extractor {
	return &Extractor{buffer: make([]byte, 0, 8192), tagFilter: []byte(tag), hasFilter: true}
}

// Feed appends chunk to the accumulation buffer and processes as much of it
// as forms a safe, complete prefix (spec §4.7 steps 1-6).
func (e *Extractor) Feed(chunk []byte) {
	e.buffer = append(e.buffer, chunk...)
	e.processBuffer()
}

func (e *Extractor) processBuffer() {
	boundary := findSafeBoundary(e.buffer)
	if boundary == 0 {
		return // not enough data yet
	}

	e.processSlice(e.buffer[:boundary])

	if e.builder != nil {
		e.builder.accumulated = append(e.builder.accumulated, e.buffer[e.builder.startInBuffer:boundary]...)
		e.builder.startInBuffer = 0
	}

	remaining := copy(e.buffer, e.buffer[boundary:])
	e.buffer = e.buffer[:remaining]
}

// processSlice runs the tokenizer over buf (a prefix of the live buffer)
// and drives the depth / target-capture state machine (spec §4.7 step 4).
// The tokenizer always runs in lenient mode here: a streaming host feeds
// arbitrary chunk boundaries, and strict-mode well-formedness checks are
// not meaningful against a prefix that may end mid-construct.
func (e *Extractor) processSlice(buf []byte) {
	tok := token.New(buf, false)
	for {
		tk, err := tok.Next()
		if err != nil {
			return
		}
		switch tk.Kind {
		case token.EOF:
			return

		case token.StartTag:
			e.depth++
			name := tk.Name.Bytes(buf)
			if e.isTarget(name) && e.insideTargetDepth == 0 {
				e.insideTargetDepth = e.depth
				e.builder = &elementBuilder{startInBuffer: int(tk.Span.Offset())}
			}

		case token.EmptyTag:
			name := tk.Name.Bytes(buf)
			if e.isTarget(name) && e.insideTargetDepth == 0 {
				e.complete = append(e.complete, cloneSpan(tk.Span, buf))
			}

		case token.EndTag:
			if e.depth == e.insideTargetDepth && e.builder != nil {
				e.insideTargetDepth = 0
				end := int(tk.Span.Offset()) + tk.Span.Len()
				elem := append(e.builder.accumulated, buf[e.builder.startInBuffer:end]...)
				e.complete = append(e.complete, elem)
				e.builder = nil
			}
			if e.depth > 0 {
				e.depth--
			}
		}
	}
}

func cloneSpan(s span.ExtSpan, buf []byte) []byte {
	b := s.Bytes(buf)
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func (e *Extractor) isTarget(name []byte) bool {
	if !e.hasFilter {
		return true
	}
	return bytes.Equal(name, e.tagFilter)
}

// findSafeBoundary returns the largest p <= len(buf) such that buf[p-1] is
// '>' and that '>' does not fall inside a quoted attribute value (spec
// §4.7 step 2). Returns 0 if no such boundary exists yet.
func findSafeBoundary(buf []byte) int {
	if len(buf) < safeBoundaryThreshold {
		return findSafeBoundarySinglePass(buf)
	}
	return findSafeBoundaryIndexed(buf)
}

func findSafeBoundarySinglePass(buf []byte) int {
	lastValidGT := 0
	inSingle, inDouble := false, false
	for i, b := range buf {
		switch {
		case b == '"' && !inSingle:
			inDouble = !inDouble
		case b == '\'' && !inDouble:
			inSingle = !inSingle
		case b == '>' && !inSingle && !inDouble:
			lastValidGT = i + 1
		}
	}
	return lastValidGT
}

func findSafeBoundaryIndexed(buf []byte) int {
	lastValidGT := 0
	inSingle, inDouble := false, false
	pos := 0
	for {
		rel := bytes.IndexByte(buf[pos:], '>')
		if rel < 0 {
			break
		}
		gtPos := pos + rel
		for _, b := range buf[pos:gtPos] {
			switch {
			case b == '"' && !inSingle:
				inDouble = !inDouble
			case b == '\'' && !inDouble:
				inSingle = !inSingle
			}
		}
		pos = gtPos + 1
		if !inSingle && !inDouble {
			lastValidGT = pos
		}
	}
	return lastValidGT
}

// TakeElements removes and returns up to max completed elements, in the
// order they were captured.
func (e *Extractor) TakeElements(max int) [][]byte {
	if max >= len(e.complete) {
		out := e.complete
		e.complete = nil
		return out
	}
	out := e.complete[:max]
	e.complete = append([][]byte(nil), e.complete[max:]...)
	return out
}

// AvailableElements reports how many completed elements are queued.
func (e *Extractor) AvailableElements() int { return len(e.complete) }

// BufferSize reports the number of unprocessed bytes currently held.
func (e *Extractor) BufferSize() int { return len(e.buffer) }

// HasPending reports whether unprocessed bytes remain in the buffer.
func (e *Extractor) HasPending() bool { return len(e.buffer) > 0 }

// Finalize processes any trailing buffered bytes as a final batch, without
// requiring a new safe boundary (spec §4.7: "finalize processes any
// trailing bytes as a final batch"). Call TakeElements afterward to drain
// whatever this produced. An element still open at EOF (malformed or
// truncated input) is discarded rather than emitted, since it has no
// closing tag to delimit it.
func (e *Extractor) Finalize() {
	if len(e.buffer) == 0 {
		return
	}
	e.processSlice(e.buffer)
	e.buffer = e.buffer[:0]
	e.builder = nil
}
