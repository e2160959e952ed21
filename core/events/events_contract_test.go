package events

import (
	"strings"
	"testing"
)

func TestSignalsAreUniqueAndNamespaced(t *testing.T) {
	seen := map[Signal]bool{}
	for _, signal := range Signals() {
		if seen[signal] {
			t.Fatalf("expected signal %q to be listed once", signal)
		}
		seen[signal] = true

		namespace, _, ok := strings.Cut(signal.String(), ".")
		if !ok {
			t.Fatalf("expected signal %q to carry a namespace", signal)
		}
		switch namespace {
		case "playback", "input_confirm", "input_edit":
		default:
			t.Fatalf("unexpected namespace %q for signal %q", namespace, signal)
		}
	}

	if got := len(seen); got != 11 {
		t.Fatalf("expected 11 canonical signals, got %d", got)
	}
}

func TestIsCorrectAndIsNotCorrectAreDistinct(t *testing.T) {
	if IsCorrect == IsNotCorrect {
		t.Fatalf("expected confirm and reject signals to differ, both were %q", IsCorrect)
	}
}
