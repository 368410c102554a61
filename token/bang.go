package token

import (
	"github.com/mkowalczyk/rustyx/scanner"
	"github.com/mkowalczyk/rustyx/span"
)

// scanBang handles the three '<!' markup forms: comments, CDATA sections,
// and DOCTYPE declarations.
func (t *Tokenizer) scanBang(start int) (Token, error) {
	input := t.sc.Input()
	rest := input[start:]
	switch {
	case hasPrefix(rest, "<!--"):
		return t.scanComment(start)
	case hasPrefix(rest, "<![CDATA["):
		return t.scanCData(start)
	case hasPrefix(rest, "<!DOCTYPE") || hasPrefix(rest, "<!doctype"):
		return t.scanDoctype(start)
	default:
		if t.strict {
			return t.fail(start, "unrecognized '<!' markup")
		}
		return t.recoverBareLT(start)
	}
}

func hasPrefix(b []byte, prefix string) bool {
	if len(b) < len(prefix) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		if b[i] != prefix[i] {
			return false
		}
	}
	return true
}

func (t *Tokenizer) scanComment(start int) (Token, error) {
	t.sc.Advance(4) // consume '<!--'
	contentStart := t.sc.Pos()
	input := t.sc.Input()
	end := -1
	for i := contentStart; i+2 < len(input); i++ {
		if input[i] == '-' && input[i+1] == '-' {
			end = i
			break
		}
	}
	if end < 0 {
		return t.fail(start, "unterminated comment")
	}
	if end+3 > len(input) || input[end+2] != '>' {
		return t.fail(start, "comment must not contain '--' except at its close")
	}
	if t.strict {
		if err := scanner.ValidateChars(input[contentStart:end]); err != nil {
			return t.fail(contentStart, err.Error())
		}
	}
	t.sc.SetPos(end + 3)
	return Token{
		Kind:    Comment,
		Span:    span.NewExt(uint32(start), t.sc.Pos()-start),
		Content: span.NewExt(uint32(contentStart), end-contentStart),
	}, nil
}

func (t *Tokenizer) scanCData(start int) (Token, error) {
	t.sc.Advance(9) // consume '<![CDATA['
	contentStart := t.sc.Pos()
	input := t.sc.Input()
	end := -1
	for i := contentStart; i+3 <= len(input); i++ {
		if input[i] == ']' && input[i+1] == ']' && input[i+2] == '>' {
			end = i
			break
		}
	}
	if end < 0 {
		return t.fail(start, "unterminated CDATA section")
	}
	if t.strict {
		if err := scanner.ValidateChars(input[contentStart:end]); err != nil {
			return t.fail(contentStart, err.Error())
		}
	}
	t.sc.SetPos(end + 3)
	return Token{
		Kind:    CData,
		Span:    span.NewExt(uint32(start), t.sc.Pos()-start),
		Content: span.NewExt(uint32(contentStart), end-contentStart),
	}, nil
}

func (t *Tokenizer) scanDoctype(start int) (Token, error) {
	t.sc.Advance(9) // consume '<!DOCTYPE'
	input := t.sc.Input()

	depth := 1
	i := t.sc.Pos()
	bodyStart := i
	for i < len(input) && depth > 0 {
		switch input[i] {
		case '[':
			depth++
		case ']':
			depth--
		case '>':
			if depth == 1 {
				depth = 0
				continue
			}
		}
		i++
	}
	if depth != 0 {
		return t.fail(start, "unterminated DOCTYPE declaration")
	}
	bodyEnd := i
	// consume trailing '>'
	if bodyEnd >= len(input) || input[bodyEnd] != '>' {
		return t.fail(start, "unterminated DOCTYPE declaration")
	}
	t.sc.SetPos(bodyEnd + 1)

	if t.strict {
		if err := t.dtd.validateDoctype(input[bodyStart:bodyEnd]); err != nil {
			return t.fail(bodyStart, err.Error())
		}
	}

	return Token{
		Kind:    DocType,
		Span:    span.NewExt(uint32(start), t.sc.Pos()-start),
		Content: span.NewExt(uint32(bodyStart), bodyEnd-bodyStart),
	}, nil
}
