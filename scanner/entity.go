package scanner

import (
	"bytes"
	"strconv"
	"unicode/utf8"
)

// builtinEntities are the five entities XML 1.0 defines without a DTD.
var builtinEntities = map[string]rune{
	"lt":   '<',
	"gt":   '>',
	"amp":  '&',
	"apos": '\'',
	"quot": '"',
}

// html5Entities is a small subset of HTML5 named character references
// recognized only in lenient mode; this is an intentional deviation from
// strict XML 1.0 (spec §9, open point) and must never be consulted from
// strict-mode decoding.
var html5Entities = map[string]rune{
	"nbsp":   ' ',
	"copy":   '©',
	"reg":    '®',
	"trade":  '™',
	"mdash":  '—',
	"ndash":  '–',
	"lsquo":  '‘',
	"rsquo":  '’',
	"ldquo":  '“',
	"rdquo":  '”',
	"hellip": '…',
}

// NeedsDecode reports whether text contains an '&' and therefore requires
// entity decoding before its value can be delivered to a reader.
func NeedsDecode(text []byte) bool {
	return bytes.IndexByte(text, '&') >= 0
}

// DecodeText decodes built-in and numeric character references in text. In
// lenient mode the small HTML5 named-entity table is also consulted and
// unknown entities are passed through verbatim (including the trailing
// '&' and any text up to a missing ';'). In strict mode every byte is
// additionally checked against the XML Char production and an unknown
// named entity is an error.
func DecodeText(text []byte, lenient bool) ([]byte, error) {
	if !NeedsDecode(text) {
		if !lenient {
			if err := validateChars(text); err != nil {
				return nil, err
			}
		}
		return text, nil
	}

	out := make([]byte, 0, len(text))
	pos := 0
	for pos < len(text) {
		amp := bytes.IndexByte(text[pos:], '&')
		if amp < 0 {
			out = append(out, text[pos:]...)
			break
		}
		out = append(out, text[pos:pos+amp]...)
		pos += amp

		semi := bytes.IndexByte(text[pos:], ';')
		if semi < 0 {
			if !lenient {
				return nil, errString("unterminated entity reference")
			}
			out = append(out, '&')
			pos++
			continue
		}
		body := text[pos+1 : pos+semi]
		r, ok, err := decodeOneEntity(body, lenient)
		if err != nil {
			return nil, err
		}
		if !ok {
			if !lenient {
				return nil, errString("unknown entity reference: &" + string(body) + ";")
			}
			out = append(out, '&')
			pos++
			continue
		}
		var buf [utf8.UTFMax]byte
		n := utf8.EncodeRune(buf[:], r)
		out = append(out, buf[:n]...)
		pos += semi + 1
	}

	if !lenient {
		if err := validateChars(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func decodeOneEntity(body []byte, lenient bool) (rune, bool, error) {
	if len(body) > 1 && body[0] == '#' {
		return decodeNumericRef(body[1:], lenient)
	}
	name := string(body)
	if r, ok := builtinEntities[name]; ok {
		return r, true, nil
	}
	if lenient {
		if r, ok := html5Entities[name]; ok {
			return r, true, nil
		}
	}
	return 0, false, nil
}

func decodeNumericRef(digits []byte, lenient bool) (rune, bool, error) {
	var (
		val int64
		err error
	)
	if len(digits) > 0 && (digits[0] == 'x' || digits[0] == 'X') {
		val, err = strconv.ParseInt(string(digits[1:]), 16, 64)
	} else {
		val, err = strconv.ParseInt(string(digits), 10, 64)
	}
	if err != nil || val < 0 || val > 0x10FFFF {
		if lenient {
			return 0, false, nil
		}
		return 0, false, errString("invalid numeric character reference")
	}
	r := rune(val)
	if !lenient && !isValidXMLChar(r) {
		return 0, false, errString("numeric character reference refers to an invalid XML character")
	}
	return r, true, nil
}

// isValidXMLChar implements XML 1.0's Char production: tab, LF, CR, and the
// ranges [0x20,0xD7FF] ∪ [0xE000,0xFFFD] ∪ [0x10000,0x10FFFF]. This forbids
// surrogate halves and the noncharacters U+FFFE/U+FFFF.
func isValidXMLChar(r rune) bool {
	switch {
	case r == 0x9 || r == 0xA || r == 0xD:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	default:
		return false
	}
}

// validateChars walks decoded UTF-8 text and rejects any byte sequence that
// is not a valid XML Char, per strict-mode's byte-for-byte content check
// (spec §4.2).
func validateChars(text []byte) error {
	for len(text) > 0 {
		r, size := utf8.DecodeRune(text)
		if r == utf8.RuneError && size <= 1 {
			return errString("invalid UTF-8 byte in content")
		}
		if !isValidXMLChar(r) {
			return errString("invalid XML character in content")
		}
		text = text[size:]
	}
	return nil
}

// IsValidXMLChar exports the Char-production check for use by callers
// outside this package (e.g. the tokenizer's strict-mode comment/CDATA/PI
// content checks).
func IsValidXMLChar(r rune) bool { return isValidXMLChar(r) }

// ValidateChars exports the content validator for reuse by the tokenizer.
func ValidateChars(text []byte) error { return validateChars(text) }

type errString string

func (e errString) Error() string { return string(e) }
