package token

import (
	"github.com/mkowalczyk/rustyx/scanner"
	"github.com/mkowalczyk/rustyx/span"
)

// scanPI handles both processing instructions and the XML declaration,
// which shares the '<?...?>' lexical shape but is distinguished by its
// "xml" target and restricted content (version/encoding/standalone
// pseudo-attributes, spec §4.2).
func (t *Tokenizer) scanPI(start int) (Token, error) {
	t.sc.Advance(2) // consume '<?'
	input := t.sc.Input()

	nameStart, nameEnd, ok := t.sc.ReadName()
	if !ok {
		if t.strict {
			return t.fail(start, "processing instruction missing target name")
		}
		return t.recoverBareLT(start)
	}
	target := span.New(uint32(nameStart), nameEnd-nameStart)
	targetStr := target.String(input)

	isXMLDecl := targetStr == "xml"
	if t.strict && isXMLDecl && start != 0 {
		return t.fail(start, "XML declaration must appear at the very start of the document")
	}
	if t.strict && !isXMLDecl && eqFold(targetStr, "xml") {
		return t.fail(nameStart, "processing instruction target must not be 'xml'")
	}

	contentStart := t.sc.Pos()
	qEnd := -1
	for i := contentStart; i+1 < len(input); i++ {
		if input[i] == '?' && input[i+1] == '>' {
			qEnd = i
			break
		}
	}
	if qEnd < 0 {
		return t.fail(start, "unterminated processing instruction")
	}
	// Trim leading whitespace the way the grammar separates target from
	// content; Content starts after it, while Span still covers the whole
	// raw '<?...?>' bytes.
	dataStart := contentStart
	for dataStart < qEnd && scanner.IsWhitespace(input[dataStart]) {
		dataStart++
	}

	t.sc.SetPos(qEnd + 2)

	if isXMLDecl {
		if t.strict {
			if err := validateXMLDecl(input[dataStart:qEnd]); err != nil {
				return t.fail(dataStart, err.Error())
			}
		}
		return Token{
			Kind:    XMLDeclaration,
			Span:    span.NewExt(uint32(start), t.sc.Pos()-start),
			Content: span.NewExt(uint32(dataStart), qEnd-dataStart),
			HasData: qEnd > dataStart,
		}, nil
	}

	if t.strict {
		if err := scanner.ValidateChars(input[dataStart:qEnd]); err != nil {
			return t.fail(dataStart, err.Error())
		}
	}
	return Token{
		Kind:    ProcessingInstruction,
		Span:    span.NewExt(uint32(start), t.sc.Pos()-start),
		Name:    target,
		Content: span.NewExt(uint32(dataStart), qEnd-dataStart),
		HasData: qEnd > dataStart,
	}, nil
}

func eqFold(s, t string) bool {
	if len(s) != len(t) {
		return false
	}
	for i := 0; i < len(s); i++ {
		a, b := s[i], t[i]
		if a >= 'A' && a <= 'Z' {
			a += 'a' - 'A'
		}
		if b >= 'A' && b <= 'Z' {
			b += 'a' - 'A'
		}
		if a != b {
			return false
		}
	}
	return true
}

// validateXMLDecl checks that the XML declaration's pseudo-attribute list
// begins with a mandatory "version" pseudo-attribute (spec §4.2). The list
// is split with scanner.ParseAttrs; the version/encoding/standalone names,
// their order and the standalone value are then checked here.
func validateXMLDecl(body []byte) error {
	attrs, err := scanner.ParseAttrs(nil, body, 0, len(body), true)
	if err != nil {
		return err
	}
	if len(attrs) == 0 {
		return errString("XML declaration requires a 'version' pseudo-attribute")
	}
	firstName := attrs[0].Name.String(body)
	if firstName != "version" {
		return errString("XML declaration's first pseudo-attribute must be 'version'")
	}
	seen := map[string]bool{}
	order := []string{"version", "encoding", "standalone"}
	rank := -1
	for _, a := range attrs {
		name := a.Name.String(body)
		if seen[name] {
			return errString("duplicate pseudo-attribute in XML declaration: " + name)
		}
		seen[name] = true
		idx := indexOf(order, name)
		if idx < 0 {
			return errString("unknown pseudo-attribute in XML declaration: " + name)
		}
		if idx < rank {
			return errString("XML declaration pseudo-attributes out of order")
		}
		rank = idx
	}
	if seen["standalone"] {
		val := attrValue(attrs, body, "standalone")
		if val != "yes" && val != "no" {
			return errString("standalone pseudo-attribute must be 'yes' or 'no'")
		}
	}
	return nil
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

func attrValue(attrs []scanner.Attr, body []byte, name string) string {
	for _, a := range attrs {
		if a.Name.String(body) == name {
			return a.Value.String(body)
		}
	}
	return ""
}
