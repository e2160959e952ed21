package page

import (
	"context"
	"testing"
)

func TestMemoryHighlightIsSingleAndRemovable(t *testing.T) {
	ctx := context.Background()
	p := NewMemory()
	p.AddBlock("intro", "Intro")

	if err := p.Highlight(ctx, "intro"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := p.Highlight(ctx, "intro"); err != nil {
		t.Fatalf("expected second highlight to be a no-op, got %v", err)
	}
	if p.Highlighted() != "intro" {
		t.Fatalf("expected intro to be highlighted, got %q", p.Highlighted())
	}

	if err := p.RemoveHighlight(ctx, "intro"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := p.RemoveHighlight(ctx, "intro"); err != nil {
		t.Fatalf("expected removing a missing highlight to be a no-op, got %v", err)
	}
	if p.IsHighlighted("intro") {
		t.Fatalf("expected highlight to be removed")
	}
}

func TestMemoryClickRunsHandler(t *testing.T) {
	clicked := 0
	p := NewMemory()
	p.AddControl("go", "Go", func() { clicked++ })

	if err := p.Click(context.Background(), "go"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if clicked != 1 || p.Clicks("go") != 1 {
		t.Fatalf("expected one click, got handler %d, count %d", clicked, p.Clicks("go"))
	}
}

func TestHighlightID(t *testing.T) {
	if id := HighlightID("name"); id != "walkthrough-highlight-name" {
		t.Fatalf("expected walkthrough-highlight-name, got %q", id)
	}
}
