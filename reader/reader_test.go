package reader_test

import (
	"errors"
	"testing"

	"github.com/mkowalczyk/rustyx/reader"
	"github.com/mkowalczyk/rustyx/token"
)

func TestReaderPullsEventsInOrder(t *testing.T) {
	r := reader.New([]byte(`<p>A<b/>C</p>`))

	want := []token.Kind{
		token.StartTag, token.Text, token.EmptyTag, token.Text, token.EndTag, token.EOF,
	}
	for i, k := range want {
		ev, err := r.Next()
		if err != nil {
			t.Fatalf("event %d: unexpected error: %v", i, err)
		}
		if ev.Kind != k {
			t.Fatalf("event %d: kind = %v, want %v", i, ev.Kind, k)
		}
	}
}

func TestReaderPeekDoesNotConsume(t *testing.T) {
	r := reader.New([]byte(`<a/>`))

	peeked, err := r.Peek()
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	if peeked.Kind != token.EmptyTag {
		t.Fatalf("Peek kind = %v, want EmptyTag", peeked.Kind)
	}

	next, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if next.Name != peeked.Name || next.Kind != peeked.Kind {
		t.Fatalf("Next() after Peek() = %+v, want %+v", next, peeked)
	}
}

func TestReaderResolvesAttributes(t *testing.T) {
	r := reader.New([]byte(`<item id="1" label="x"/>`))
	ev, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if ev.Name != "item" {
		t.Fatalf("Name = %q, want %q", ev.Name, "item")
	}
	if len(ev.Attrs) != 2 || ev.Attrs[0].Value != "1" || ev.Attrs[1].Value != "x" {
		t.Fatalf("Attrs = %+v, want [id=1 label=x]", ev.Attrs)
	}
}

func TestReaderStrictModeReportsOffset(t *testing.T) {
	r := reader.New([]byte(`  <?xml version="1.0"?><r/>`), reader.Strict())
	_, err := r.Next()
	if err == nil {
		t.Fatalf("expected a strict-mode error for a misplaced XML declaration")
	}
	var pe *token.ParseError
	if !errors.As(err, &pe) || pe.Offset != 0 {
		t.Fatalf("err = %v, want a *token.ParseError at offset 0", err)
	}
}
