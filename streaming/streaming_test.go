package streaming

import (
	"bytes"
	"testing"
)

func TestStreamingAcrossChunks(t *testing.T) {
	// S5: target "item", fed in three chunks that split mid-element and
	// mid-attribute-value; expect exactly the two completed elements in
	// order, with no spurious partial emits.
	e := NewWithFilter("item")
	e.Feed([]byte(`<root><item id="1">a`))
	e.Feed([]byte(`bc</item><item id="`))
	e.Feed([]byte(`2"/></root>`))
	e.Finalize()

	got := e.TakeElements(10)
	want := []string{`<item id="1">abc</item>`, `<item id="2"/>`}
	if len(got) != len(want) {
		t.Fatalf("got %d elements, want %d: %q", len(got), len(want), got)
	}
	for i := range want {
		if string(got[i]) != want[i] {
			t.Fatalf("element %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestStreamingSimple(t *testing.T) {
	e := New()
	e.Feed([]byte("<root>"))
	e.Feed([]byte("<item/>"))
	e.Feed([]byte("</root>"))
	e.Finalize()

	if e.AvailableElements() == 0 {
		t.Fatal("expected at least one captured element")
	}
}

func TestStreamingSplitAcrossTagName(t *testing.T) {
	e := New()
	e.Feed([]byte("<ro"))
	e.Feed([]byte("ot><i"))
	e.Feed([]byte("tem/></root>"))
	e.Finalize()

	if e.AvailableElements() == 0 {
		t.Fatal("expected at least one captured element")
	}
}

func TestFilterOnlyCapturesMatchingTag(t *testing.T) {
	e := NewWithFilter("item")
	e.Feed([]byte(`<root><item/><other/><item/></root>`))
	e.Finalize()

	got := e.TakeElements(10)
	if len(got) != 2 {
		t.Fatalf("expected 2 filtered elements, got %d: %q", len(got), got)
	}
	for _, el := range got {
		if !bytes.HasPrefix(el, []byte("<item")) {
			t.Fatalf("expected only <item> elements, got %q", el)
		}
	}
}

func TestFindSafeBoundaryAgreesAcrossPathThreshold(t *testing.T) {
	small := []byte(`<a b="x>y"><c/></a>`)
	if got, want := findSafeBoundarySinglePass(small), findSafeBoundaryIndexed(small); got != want {
		t.Fatalf("boundary mismatch on small input: single-pass=%d indexed=%d", got, want)
	}

	// Pad past the threshold with a long quoted attribute value containing
	// a '>' that must not be treated as a boundary, followed by a real one.
	var buf bytes.Buffer
	buf.WriteString(`<root attr="`)
	buf.Write(bytes.Repeat([]byte("x>y "), 300))
	buf.WriteString(`"><child/></root>`)
	large := buf.Bytes()
	if len(large) < safeBoundaryThreshold {
		t.Fatalf("test input too short: %d bytes", len(large))
	}
	if got, want := findSafeBoundarySinglePass(large), findSafeBoundaryIndexed(large); got != want {
		t.Fatalf("boundary mismatch on large input: single-pass=%d indexed=%d", got, want)
	}
	if got := findSafeBoundary(large); got != len(large) {
		t.Fatalf("expected full boundary at %d, got %d", len(large), got)
	}
}

func TestSafeBoundaryZeroWhenQuoteStillOpen(t *testing.T) {
	// An unterminated quoted attribute must never produce a boundary past
	// the quote, even though raw '>' bytes appear inside it.
	buf := []byte(`<a b="x>y`)
	if got := findSafeBoundary(buf); got != 0 {
		t.Fatalf("expected boundary 0 with an open quote, got %d", got)
	}
}
