package actions

import (
	"context"
	"testing"

	"github.com/koscakluka/ema-walkthrough/core/page"
	"github.com/koscakluka/ema-walkthrough/core/script"
)

func TestEvaluateInvoke(t *testing.T) {
	testCases := []struct {
		name      string
		utterance string
		expected  string
		control   string
		success   bool
		clicks    int
	}{
		{name: "contained phrase", utterance: "please Start now", expected: "start", control: "go", success: true, clicks: 1},
		{name: "phrase compared lower-cased", utterance: "start", expected: "START", control: "go", success: true, clicks: 1},
		{name: "phrase absent", utterance: "stop", expected: "start", control: "go", success: false, clicks: 0},
		{name: "empty expected phrase", utterance: "start", expected: "", control: "go", success: false, clicks: 0},
		{name: "missing control", utterance: "start", expected: "start", control: "ghost", success: false, clicks: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := page.NewMemory()
			p.AddControl("go", "Go", nil)
			d := NewDispatcher(p)

			result := d.Evaluate(context.Background(), tc.utterance, script.Invoke(tc.expected, tc.control), tc.expected)
			if result.Success != tc.success {
				t.Fatalf("expected success %v, got %v", tc.success, result.Success)
			}
			if p.Clicks("go") != tc.clicks {
				t.Fatalf("expected %d clicks, got %d", tc.clicks, p.Clicks("go"))
			}
		})
	}
}

func TestEvaluateCollect(t *testing.T) {
	p := page.NewMemory()
	p.AddField("name", "Name", "")
	d := NewDispatcher(p)

	result := d.Evaluate(context.Background(), "  Ada Lovelace ", script.Collect("name"), "")
	if !result.Success {
		t.Fatalf("expected collect to succeed")
	}
	if value, _ := p.Value(context.Background(), "name"); value != "Ada Lovelace" {
		t.Fatalf("expected field to hold %q, got %q", "Ada Lovelace", value)
	}

	if result := d.Evaluate(context.Background(), "   ", script.Collect("name"), ""); result.Success {
		t.Fatalf("expected blank utterance to fail")
	}
	if result := d.Evaluate(context.Background(), "text", script.Collect("ghost"), ""); result.Success {
		t.Fatalf("expected missing field to fail")
	}
}

func TestEvaluateWithoutAction(t *testing.T) {
	d := NewDispatcher(page.NewMemory())
	if result := d.Evaluate(context.Background(), "anything", nil, "anything"); result.Success {
		t.Fatalf("expected no action to fail")
	}
}
