package scan

import (
	"testing"

	"github.com/mkowalczyk/rustyx/span"
)

type recorder struct {
	events []string
	input  []byte
}

func (r *recorder) StartElement(name span.Span, attrs []Attr, isEmpty bool) {
	r.events = append(r.events, "start:"+name.String(r.input))
}
func (r *recorder) EndElement(name span.Span) {
	r.events = append(r.events, "end:"+name.String(r.input))
}
func (r *recorder) Text(content span.ExtSpan, needsDecode bool) {
	r.events = append(r.events, "text:"+content.String(r.input))
}
func (r *recorder) CData(content span.ExtSpan) {
	r.events = append(r.events, "cdata:"+content.String(r.input))
}
func (r *recorder) Comment(content span.ExtSpan) {
	r.events = append(r.events, "comment:"+content.String(r.input))
}
func (r *recorder) ProcessingInstruction(target span.Span, data span.ExtSpan, hasData bool) {
	r.events = append(r.events, "pi:"+target.String(r.input))
}
func (r *recorder) XMLDeclaration(content span.ExtSpan, hasData bool) {
	r.events = append(r.events, "decl")
}
func (r *recorder) DocType(content span.ExtSpan) {
	r.events = append(r.events, "doctype")
}

func TestScanDispatchesEventsInDocumentOrder(t *testing.T) {
	input := []byte(`<?xml version="1.0"?><root a="1"><child>hi</child><!--c--></root>`)
	rec := &recorder{input: input}
	if err := Scan(input, rec, Strict()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"decl", "start:root", "start:child", "text:hi", "end:child", "comment:c", "end:root"}
	if len(rec.events) != len(want) {
		t.Fatalf("got %v, want %v", rec.events, want)
	}
	for i := range want {
		if rec.events[i] != want[i] {
			t.Fatalf("event %d: got %q, want %q (full: %v)", i, rec.events[i], want[i], rec.events)
		}
	}
}

func TestScanStopsAtFirstStrictError(t *testing.T) {
	input := []byte(`<a></b>`)
	rec := &recorder{input: input}
	err := Scan(input, rec, Strict())
	if err == nil {
		t.Fatal("expected an error for mismatched end tag")
	}
}

func TestScanLenientNeverHangsOnInvalidMarkup(t *testing.T) {
	// Scenario S6: invalid markup does not hang the scanner.
	input := []byte(`<1bad/><good/>`)
	rec := &recorder{input: input}
	if err := Scan(input, rec); err != nil {
		t.Fatalf("lenient scan should not error: %v", err)
	}
	foundGood := false
	for _, e := range rec.events {
		if e == "start:good" {
			foundGood = true
		}
	}
	if !foundGood {
		t.Fatalf("expected an empty start_element for 'good', got %v", rec.events)
	}
}
