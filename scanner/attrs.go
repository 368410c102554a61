package scanner

import "github.com/mkowalczyk/rustyx/span"

// Attr is one parsed (name, value) pair, as spans into the original input.
// Attribute values retain their raw (not entity-decoded) form; decoding is
// the caller's responsibility so the same Attr shape can serve both
// strict and lenient callers.
type Attr struct {
	Name  span.Span
	Value span.Span
}

// ParseAttrs parses an attribute list (the bytes between a tag name and its
// closing '>' or '/>') into a slice of Attr, appending into dst so callers
// can reuse a buffer across tags the way the unified scanner does (spec
// §4.3: "backed by a reused buffer that is cleared per start tag").
//
// Generalized from wilkmaciej-xml-streamer/parser.go's parseAttributes: the
// teacher version returns owned strings straight from a []byte tag body;
// here we report spans into the shared input instead, and in strict mode
// validate attribute names, require a quoted value, and reject a bare '='
// with no value.
func ParseAttrs(dst []Attr, input []byte, start, end int, strict bool) ([]Attr, error) {
	i := start
	for i < end {
		for i < end && IsWhitespace(input[i]) {
			i++
		}
		if i >= end {
			break
		}

		nameStart := i
		sc := &Scanner{input: input, pos: i}
		if ns, ne, ok := sc.ReadName(); ok {
			i = ne
			_ = ns
		} else if strict {
			return dst, errString("invalid attribute name")
		} else {
			// Lenient recovery: skip one byte and keep scanning.
			i++
			continue
		}
		nameEnd := i

		for i < end && IsWhitespace(input[i]) {
			i++
		}
		if i >= end || input[i] != '=' {
			if strict {
				return dst, errString("attribute without value")
			}
			// Lenient: attribute with no value at all; skip it.
			continue
		}
		i++ // consume '='
		for i < end && IsWhitespace(input[i]) {
			i++
		}
		if i >= end || (input[i] != '"' && input[i] != '\'') {
			if strict {
				return dst, errString("attribute value must be quoted")
			}
			continue
		}
		quote := input[i]
		i++
		valStart := i
		for i < end && input[i] != quote {
			i++
		}
		if i >= end {
			if strict {
				return dst, errString("unterminated attribute value")
			}
			break
		}
		valEnd := i
		i++ // consume closing quote

		dst = append(dst, Attr{
			Name:  span.New(uint32(nameStart), nameEnd-nameStart),
			Value: span.New(uint32(valStart), valEnd-valStart),
		})
	}
	return dst, nil
}
