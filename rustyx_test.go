package rustyx_test

import (
	"testing"

	"github.com/mkowalczyk/rustyx"
)

func TestParseAndQuery(t *testing.T) {
	doc, err := rustyx.Parse([]byte(`<r><a>hi</a><b>hi</b><c>bye</c></r>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	v, err := doc.Query("/r/a = /r/b")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !v.Bool() {
		t.Fatalf("/r/a = /r/b = false, want true")
	}
}

func TestParseStrictRejectsLeadingWhitespaceBeforeDecl(t *testing.T) {
	_, err := rustyx.Parse([]byte("  <?xml version=\"1.0\"?><r/>"), rustyx.Strict())
	if err == nil {
		t.Fatalf("expected a strict-mode error")
	}
}

func TestCollectAndStream(t *testing.T) {
	c, err := rustyx.Collect([]byte(`<p>A<b/>C</p>`))
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(c.Events) == 0 {
		t.Fatalf("expected at least one collected event")
	}

	ex := rustyx.NewStreamExtractor("item")
	ex.Feed([]byte(`<root><item id="1">abc</item><item id="2"/></root>`))
	ex.Finalize()
	got := ex.TakeElements(ex.AvailableElements())
	if len(got) != 2 {
		t.Fatalf("TakeElements returned %d elements, want 2", len(got))
	}
}

func TestReaderFacade(t *testing.T) {
	r := rustyx.NewReader([]byte(`<a/>`))
	ev, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if ev.Name != "a" {
		t.Fatalf("Name = %q, want %q", ev.Name, "a")
	}
}
