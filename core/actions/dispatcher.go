// Package actions decides whether a recognized utterance completes the
// action a step is waiting for, and performs it on the page.
package actions

import (
	"context"
	"errors"
	"strings"

	"github.com/koscakluka/ema-walkthrough/core/page"
	"github.com/koscakluka/ema-walkthrough/core/script"
	"go.opentelemetry.io/otel/attribute"
)

type Result struct {
	Success bool
	// MatchedPhrase is the phrase that triggered an invoke action, or the
	// text written by a collect action.
	MatchedPhrase string
}

type Dispatcher struct {
	page page.Page
}

func NewDispatcher(p page.Page) *Dispatcher {
	return &Dispatcher{page: p}
}

// Evaluate checks utterance against action. On success the side effect has
// already been applied: the control was clicked or the field was written.
// A missing element is a silent failure.
func (d *Dispatcher) Evaluate(ctx context.Context, utterance string, action *script.Action, expectedPhrase string) Result {
	if action == nil {
		return Result{}
	}

	ctx, span := tracer.Start(ctx, "evaluate action")
	defer span.End()
	span.SetAttributes(attribute.String("action.kind", string(action.Kind)))

	switch action.Kind {
	case script.ActionInvoke:
		phrase := strings.ToLower(strings.TrimSpace(expectedPhrase))
		if phrase == "" {
			return Result{}
		}
		if !strings.Contains(strings.ToLower(strings.TrimSpace(utterance)), phrase) {
			return Result{}
		}

		if err := d.page.Click(ctx, action.ControlRef); err != nil {
			span.RecordError(err)
			d.logFailure(ctx, "failed to click control", action.ControlRef, err)
			return Result{}
		}
		return Result{Success: true, MatchedPhrase: phrase}

	case script.ActionCollect:
		text := strings.TrimSpace(utterance)
		if text == "" {
			return Result{}
		}

		if err := page.FillField(ctx, d.page, action.FieldRef, text); err != nil {
			span.RecordError(err)
			d.logFailure(ctx, "failed to fill field", action.FieldRef, err)
			return Result{}
		}
		return Result{Success: true, MatchedPhrase: text}
	}

	return Result{}
}

func (d *Dispatcher) logFailure(ctx context.Context, msg, id string, err error) {
	if errors.Is(err, page.ErrMissingElement) {
		logger.DebugContext(ctx, msg, "element", id, "error", err)
		return
	}
	logger.WarnContext(ctx, msg, "element", id, "error", err)
}
