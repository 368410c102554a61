package sax

import (
	"testing"

	"github.com/mkowalczyk/rustyx/scan"
)

func TestCollectorRecordsEventsAndAttrs(t *testing.T) {
	input := []byte(`<root a="1"><child/>text</root>`)
	c := NewCollector(input)
	if err := scan.Scan(input, c, scan.Strict()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var types []EventType
	for _, e := range c.Events {
		types = append(types, e.Type)
	}
	want := []EventType{StartElement, StartElement, EndElement, Text, EndElement}
	if len(types) != len(want) {
		t.Fatalf("got %v events, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("event %d: got %v want %v (full %v)", i, types[i], want[i], types)
		}
	}

	rootStart := c.Events[0]
	attrs := c.Attributes(rootStart)
	if len(attrs) != 1 || attrs[0].Name.String(input) != "a" || attrs[0].Value.String(input) != "1" {
		t.Fatalf("unexpected attributes: %v", attrs)
	}

	childStart := c.Events[1]
	if childStart.Flags&FlagIsEmpty == 0 {
		t.Fatal("expected FlagIsEmpty on the empty <child/> start event")
	}

	textEvent := c.Events[3]
	if c.ContentString(textEvent) != "text" {
		t.Fatalf("expected text content 'text', got %q", c.ContentString(textEvent))
	}
}
