// Package xmlenc probes raw input for its XML-relevant encoding (UTF-8,
// UTF-16LE, UTF-16BE, with or without a byte-order mark) and transcodes
// UTF-16 input to UTF-8 before it reaches the scanner. This is upstream of
// the core parsing engine (spec §6) but has no host runtime to rely on in a
// plain Go module, so it ships here as its own small package.
package xmlenc

import (
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

// Encoding identifies a detected input encoding.
type Encoding int

const (
	// UTF8 covers both BOM-less UTF-8 and UTF-8 with a BOM (the BOM is
	// stripped by ToUTF8 either way).
	UTF8 Encoding = iota
	UTF16LE
	UTF16BE
)

func (e Encoding) String() string {
	switch e {
	case UTF8:
		return "UTF-8"
	case UTF16LE:
		return "UTF-16LE"
	case UTF16BE:
		return "UTF-16BE"
	default:
		return "unknown"
	}
}

// Detect inspects the first few bytes of data and reports the encoding it
// believes the document is in, using BOM sniffing where present and the
// XML declaration's characteristic null-byte pattern otherwise. It never
// reads past the first 4 bytes.
func Detect(data []byte) Encoding {
	switch {
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE:
		return UTF16LE
	case len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF:
		return UTF16BE
	case len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF:
		return UTF8
	}
	// No BOM. A UTF-16 document missing a BOM still starts with '<' (0x3C)
	// followed by a NUL byte in one of the two byte orders, since the XML
	// declaration (or root tag) is ASCII-range text widened to UTF-16.
	if len(data) >= 4 {
		if data[0] == 0x3C && data[1] == 0x00 {
			return UTF16LE
		}
		if data[0] == 0x00 && data[1] == 0x3C {
			return UTF16BE
		}
	}
	return UTF8
}

// ToUTF8 detects the encoding of data and returns UTF-8 bytes with any BOM
// stripped. UTF-8 input with no BOM is returned unchanged (no copy).
func ToUTF8(data []byte) ([]byte, error) {
	switch Detect(data) {
	case UTF16LE:
		return transcodeUTF16(data, unicode.LittleEndian)
	case UTF16BE:
		return transcodeUTF16(data, unicode.BigEndian)
	default:
		if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
			return data[3:], nil
		}
		return data, nil
	}
}

func transcodeUTF16(data []byte, endian unicode.Endianness) ([]byte, error) {
	bom := unicode.UseBOM
	decoder := unicode.UTF16(endian, bom).NewDecoder()
	out, err := decoder.Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("xmlenc: transcoding UTF-16 input: %w", err)
	}
	return out, nil
}
