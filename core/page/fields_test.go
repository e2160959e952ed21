package page

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestFindOccurrences(t *testing.T) {
	testCases := []struct {
		name     string
		value    string
		word     string
		expected int
	}{
		{name: "two matches", value: "capital letter capital", word: "capital", expected: 2},
		{name: "no match", value: "capital letter capital", word: "nope", expected: 0},
		{name: "case insensitive", value: "Capital letter capital", word: "CAPITAL", expected: 2},
		{name: "whole words only", value: "capitalise capital", word: "capital", expected: 1},
		{name: "empty word", value: "anything", word: "", expected: 0},
		{name: "empty value", value: "", word: "word", expected: 0},
		{name: "accented word", value: "I like café", word: "café", expected: 1},
		{name: "accented case insensitive", value: "Élodie and élodie", word: "élodie", expected: 2},
		{name: "accented letters are part of the word", value: "cafés", word: "café", expected: 0},
		{name: "word before an accented letter", value: "naïve", word: "na", expected: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FindOccurrences(tc.value, tc.word); got != tc.expected {
				t.Fatalf("expected %d occurrences, got %d", tc.expected, got)
			}
		})
	}
}

func TestCapitaliseNth(t *testing.T) {
	testCases := []struct {
		name     string
		n        int
		expected string
	}{
		{name: "first", n: 1, expected: "Capital letter capital"},
		{name: "second", n: 2, expected: "capital letter Capital"},
		{name: "out of range", n: 3, expected: "capital letter capital"},
		{name: "zero", n: 0, expected: "capital letter capital"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CapitaliseNth("capital letter capital", "capital", tc.n); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestCapitaliseNthAccented(t *testing.T) {
	if got := CapitaliseNth("émile émile", "émile", 1); got != "Émile émile" {
		t.Fatalf("expected %q, got %q", "Émile émile", got)
	}
	if got := CapitaliseNth("émile émile", "émile", 2); got != "émile Émile" {
		t.Fatalf("expected %q, got %q", "émile Émile", got)
	}
}

func TestReplaceFirstWord(t *testing.T) {
	testCases := []struct {
		name     string
		value    string
		word     string
		expected string
	}{
		{name: "skips longer word", value: "plans to plan", word: "plan", expected: "plans to goal"},
		{name: "case insensitive", value: "Plan a plan", word: "plan", expected: "goal a plan"},
		{name: "accented", value: "cafés and café", word: "café", expected: "cafés and goal"},
		{name: "no whole word", value: "plans", word: "plan", expected: "plans"},
		{name: "empty word", value: "plans", word: " ", expected: "plans"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ReplaceFirstWord(tc.value, tc.word, "goal"); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestReplaceInFieldMatchesWholeWords(t *testing.T) {
	ctx := context.Background()
	p := NewMemory()
	p.AddField("answer", "Answer", "plans to plan")

	if err := ReplaceInField(ctx, p, "answer", "plan", "goal"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if value, _ := p.Value(ctx, "answer"); value != "plans to goal" {
		t.Fatalf("expected %q, got %q", "plans to goal", value)
	}
}

func TestReplaceFirst(t *testing.T) {
	if got := ReplaceFirst("finish this", "this", "that"); got != "finish that" {
		t.Fatalf("expected %q, got %q", "finish that", got)
	}
	if got := ReplaceFirst("this and this", "this", "that"); got != "that and this" {
		t.Fatalf("expected only the first occurrence replaced, got %q", got)
	}
	if got := ReplaceFirst("unchanged", "missing", "x"); got != "unchanged" {
		t.Fatalf("expected value unchanged, got %q", got)
	}
}

func TestAppendWord(t *testing.T) {
	if got := AppendWord("hello", "world"); got != "hello world" {
		t.Fatalf("expected %q, got %q", "hello world", got)
	}
	if got := AppendWord("", "world"); got != "world" {
		t.Fatalf("expected %q, got %q", "world", got)
	}
	if got := AppendWord("hello", "  "); got != "hello" {
		t.Fatalf("expected %q, got %q", "hello", got)
	}
}

func TestFieldUtilitiesReportMissingElement(t *testing.T) {
	ctx := context.Background()
	p := NewMemory()

	testCases := []struct {
		name string
		call func() error
	}{
		{name: "clear", call: func() error { return ClearField(ctx, p, "ghost") }},
		{name: "fill", call: func() error { return FillField(ctx, p, "ghost", "x") }},
		{name: "add", call: func() error { return AddToField(ctx, p, "ghost", "x") }},
		{name: "replace", call: func() error { return ReplaceInField(ctx, p, "ghost", "a", "b") }},
		{name: "capitalise", call: func() error { return CapitaliseInField(ctx, p, "ghost", "a", 1) }},
		{name: "count", call: func() error { _, err := CountInField(ctx, p, "ghost", "a"); return err }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			if !errors.Is(err, ErrMissingElement) {
				t.Fatalf("expected missing element error, got %v", err)
			}
			var missingErr *MissingElementError
			if !errors.As(err, &missingErr) || missingErr.ID != "ghost" {
				t.Fatalf("expected error naming ghost, got %v", err)
			}
			if !strings.Contains(err.Error(), "ghost") {
				t.Fatalf("expected message to name the id, got %q", err.Error())
			}
		})
	}
}

func TestFieldUtilitiesEditValue(t *testing.T) {
	ctx := context.Background()
	p := NewMemory()
	p.AddField("answer", "Answer", "")

	if err := FillField(ctx, p, "answer", "finish this"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := ReplaceInField(ctx, p, "answer", "this", "that"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := AddToField(ctx, p, "answer", "today"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := CapitaliseInField(ctx, p, "answer", "today", 1); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	value, _ := p.Value(ctx, "answer")
	if value != "finish that Today" {
		t.Fatalf("expected %q, got %q", "finish that Today", value)
	}

	count, err := CountInField(ctx, p, "answer", "that")
	if err != nil || count != 1 {
		t.Fatalf("expected 1 occurrence, got %d (%v)", count, err)
	}

	if err := ClearField(ctx, p, "answer"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if value, _ := p.Value(ctx, "answer"); value != "" {
		t.Fatalf("expected cleared field, got %q", value)
	}
}

func TestFirstOccurrence(t *testing.T) {
	match, ok := FirstOccurrence("capitalise This and this", "this")
	if !ok || match != "This" {
		t.Fatalf("expected This, got %q (%v)", match, ok)
	}
	if _, ok := FirstOccurrence("capitalise", "capital"); ok {
		t.Fatalf("expected no match inside a longer word")
	}
}
