// Package page is the boundary between a walkthrough and the page it runs
// on: clicking controls, reading and writing fields and highlighting the
// element a step is about.
package page

import (
	"context"
	"errors"
	"fmt"
)

var ErrMissingElement = errors.New("element not found")

// MissingElementError names the element that could not be resolved.
type MissingElementError struct {
	ID string
}

func (e *MissingElementError) Error() string {
	return fmt.Sprintf("element with id %q was not found", e.ID)
}

func (e *MissingElementError) Is(target error) bool {
	return target == ErrMissingElement
}

func missing(id string) error {
	return &MissingElementError{ID: id}
}

// Page performs the side effects a walkthrough needs. All methods return a
// *MissingElementError when id does not resolve.
type Page interface {
	Click(ctx context.Context, id string) error
	Focus(ctx context.Context, id string) error
	Value(ctx context.Context, id string) (string, error)
	SetValue(ctx context.Context, id, value string) error
	// Highlight wraps the element in a highlight. Highlighting an already
	// highlighted element is a no-op.
	Highlight(ctx context.Context, id string) error
	// RemoveHighlight unwraps the element, leaving it otherwise unchanged.
	// Removing a missing highlight is a no-op.
	RemoveHighlight(ctx context.Context, id string) error
}

const highlightPrefix = "walkthrough-highlight-"

// HighlightID is the id of the wrapper placed around a highlighted element.
func HighlightID(id string) string {
	return highlightPrefix + id
}

// HighlightStyle is applied to highlight wrappers by pages that render.
type HighlightStyle struct {
	Outline      string
	BorderRadius string
	Padding      string
	Background   string
}

var DefaultHighlightStyle = HighlightStyle{
	Outline:      "3px solid #ffb000",
	BorderRadius: "6px",
	Padding:      "2px",
	Background:   "rgba(255, 176, 0, 0.12)",
}

// CSS renders the style as an inline declaration block.
func (s HighlightStyle) CSS() string {
	return fmt.Sprintf("outline: %s; border-radius: %s; padding: %s; background: %s;",
		s.Outline, s.BorderRadius, s.Padding, s.Background)
}
