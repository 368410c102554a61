// Package span defines the zero-copy string reference used throughout the
// structural index: a pair of (offset, length) into an immutable input
// buffer, plus an extended variant for runs longer than 64 KiB.
package span

import "math"

// Span is a sub-slice reference (offset, len) into the original input.
// The caller must keep the backing input alive for as long as any Span
// derived from it is in use.
type Span struct {
	Offset uint32
	Len    uint16
}

// extendedSentinel marks a Span whose real length lives in an ExtSpan.
const extendedSentinel = math.MaxUint16

// New builds a Span, panicking if the length does not fit in 16 bits.
// Callers with possibly-long runs should use NewExt instead.
func New(offset uint32, length int) Span {
	if length > math.MaxUint16 {
		panic("span: length exceeds 64KiB, use an ExtSpan")
	}
	return Span{Offset: offset, Len: uint16(length)}
}

// Bytes returns the referenced sub-slice of input.
func (s Span) Bytes(input []byte) []byte {
	return input[s.Offset : uint64(s.Offset)+uint64(s.Len)]
}

// String returns the referenced sub-slice of input as a string, doing a
// single conversion (which the Go compiler can often elide on read-only
// use, but never guarantees zero-copy the way raw byte slices do).
func (s Span) String(input []byte) string {
	return string(s.Bytes(input))
}

// IsExtended reports whether this Span's Len is the extended sentinel and
// an accompanying ExtSpan must be consulted for the real length.
func (s Span) IsExtended() bool {
	return s.Len == extendedSentinel
}

// Empty reports whether the span references zero bytes.
func (s Span) Empty() bool {
	return s.Len == 0
}

// ExtSpan extends Span with a 32-bit length for text runs larger than a
// Span's 16-bit field can hold. ExtLen is authoritative whenever Base.Len
// equals the extended sentinel; otherwise Base.Len is authoritative and
// ExtLen is unused (kept zero).
type ExtSpan struct {
	Base   Span
	ExtLen uint32
}

// NewExt builds an ExtSpan, choosing the compact Span representation when
// the length is at most 65534 (65535 is the extended sentinel) and the
// extended one otherwise.
func NewExt(offset uint32, length int) ExtSpan {
	if length <= math.MaxUint16-1 {
		return ExtSpan{Base: Span{Offset: offset, Len: uint16(length)}}
	}
	return ExtSpan{
		Base:   Span{Offset: offset, Len: extendedSentinel},
		ExtLen: uint32(length),
	}
}

// Len returns the real length, resolving the extended sentinel if set.
func (e ExtSpan) Len() int {
	if e.Base.IsExtended() {
		return int(e.ExtLen)
	}
	return int(e.Base.Len)
}

// Offset returns the span's start offset in the input.
func (e ExtSpan) Offset() uint32 {
	return e.Base.Offset
}

// Bytes returns the referenced sub-slice of input.
func (e ExtSpan) Bytes(input []byte) []byte {
	off := uint64(e.Offset())
	return input[off : off+uint64(e.Len())]
}

// String returns the referenced sub-slice of input as a string.
func (e ExtSpan) String(input []byte) string {
	return string(e.Bytes(input))
}

// Empty reports whether the span references zero bytes.
func (e ExtSpan) Empty() bool {
	return e.Len() == 0
}
