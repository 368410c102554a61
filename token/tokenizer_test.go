package token

import "testing"

func collectKinds(t *testing.T, input string, strict bool) []Kind {
	t.Helper()
	tok := New([]byte(input), strict)
	var kinds []Kind
	for {
		tk, err := tok.Next()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		kinds = append(kinds, tk.Kind)
		if tk.Kind == EOF {
			break
		}
	}
	return kinds
}

func TestTokenizeSimpleElement(t *testing.T) {
	kinds := collectKinds(t, `<root>hello</root>`, true)
	want := []Kind{StartTag, Text, EndTag, EOF}
	if !kindsEqual(kinds, want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
}

func TestTokenizeEmptyTag(t *testing.T) {
	kinds := collectKinds(t, `<root><child a="1"/></root>`, true)
	want := []Kind{StartTag, EmptyTag, EndTag, EOF}
	if !kindsEqual(kinds, want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
}

func TestTokenizeXMLDeclaration(t *testing.T) {
	kinds := collectKinds(t, `<?xml version="1.0" encoding="UTF-8"?><root/>`, true)
	want := []Kind{XMLDeclaration, EmptyTag, EOF}
	if !kindsEqual(kinds, want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
}

func TestTokenizeComment(t *testing.T) {
	kinds := collectKinds(t, `<root><!-- note --></root>`, true)
	want := []Kind{StartTag, Comment, EndTag, EOF}
	if !kindsEqual(kinds, want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
}

func TestTokenizeCData(t *testing.T) {
	kinds := collectKinds(t, `<root><![CDATA[<not a tag>]]></root>`, true)
	want := []Kind{StartTag, CData, EndTag, EOF}
	if !kindsEqual(kinds, want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
}

func TestTokenizeProcessingInstruction(t *testing.T) {
	kinds := collectKinds(t, `<root><?target data?></root>`, true)
	want := []Kind{StartTag, ProcessingInstruction, EndTag, EOF}
	if !kindsEqual(kinds, want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
}

func TestStrictModeMismatchedEndTag(t *testing.T) {
	tok := New([]byte(`<a></b>`), true)
	for {
		tk, err := tok.Next()
		if err != nil {
			return // expected
		}
		if tk.Kind == EOF {
			t.Fatal("expected a ParseError for mismatched end tag, got none")
		}
	}
}

func TestStrictModeUnclosedElement(t *testing.T) {
	tok := New([]byte(`<a><b></b>`), true)
	for {
		tk, err := tok.Next()
		if err != nil {
			return // expected: </a> never appears
		}
		if tk.Kind == EOF {
			t.Fatal("expected a ParseError for an unclosed element, got none")
		}
	}
}

func TestStrictModeRejectsBareAmpersand(t *testing.T) {
	tok := New([]byte(`<a>Tom & Jerry</a>`), true)
	sawErr := false
	for {
		tk, err := tok.Next()
		if err != nil {
			sawErr = true
			break
		}
		if tk.Kind == EOF {
			break
		}
	}
	if !sawErr {
		t.Fatal("expected strict mode to reject a bare '&' in text")
	}
}

func TestLenientModeNeverBacktracksOnBareLT(t *testing.T) {
	// "a < b" has a '<' not followed by a valid name start; lenient mode
	// must emit it as literal text and keep going instead of hanging or
	// erroring (spec §4.3 "never backtrack").
	kinds := collectKinds(t, `<root>a < b</root>`, false)
	want := []Kind{StartTag, Text, Text, Text, EndTag, EOF}
	if !kindsEqual(kinds, want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
}

func TestXMLDeclarationRequiresVersionInStrictMode(t *testing.T) {
	tok := New([]byte(`<?xml encoding="UTF-8"?><root/>`), true)
	_, err := tok.Next()
	if err == nil {
		t.Fatal("expected an error: XML declaration without 'version'")
	}
}

func TestDoctypeWithInternalSubset(t *testing.T) {
	input := `<!DOCTYPE greeting [
  <!ELEMENT greeting (#PCDATA)>
]><greeting>hi</greeting>`
	kinds := collectKinds(t, input, true)
	want := []Kind{DocType, StartTag, Text, EndTag, EOF}
	if !kindsEqual(kinds, want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
}

func TestDoctypeRejectsDuplicateElementDecl(t *testing.T) {
	input := `<!DOCTYPE greeting [
  <!ELEMENT greeting (#PCDATA)>
  <!ELEMENT greeting (#PCDATA)>
]><greeting>hi</greeting>`
	tok := New([]byte(input), true)
	_, err := tok.Next()
	if err == nil {
		t.Fatal("expected duplicate ELEMENT declaration to be rejected")
	}
}

func kindsEqual(a, b []Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
