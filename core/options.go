package orchestration

import (
	"context"
	"time"

	"github.com/koscakluka/ema-walkthrough/core/actions"
	"github.com/koscakluka/ema-walkthrough/core/events"
	"github.com/koscakluka/ema-walkthrough/core/page"
	"github.com/koscakluka/ema-walkthrough/core/script"
	"github.com/koscakluka/ema-walkthrough/core/speechtotext"
	"github.com/koscakluka/ema-walkthrough/core/texttospeech"
)

// Recognizer is the part of a recognition session the walkthrough drives.
type Recognizer interface {
	Start() error
	Stop() error
	Clear()
	Snapshot() speechtotext.Snapshot
	IsListening() bool
}

var _ Recognizer = (*speechtotext.Session)(nil)

// Evaluator checks an utterance against a step action and applies it to the
// page. Invoke steps and the editor's fill both go through it.
type Evaluator interface {
	Evaluate(ctx context.Context, utterance string, action *script.Action, expectedPhrase string) actions.Result
}

var _ Evaluator = (*actions.Dispatcher)(nil)

type ControllerOption func(*Controller)

// WithBus sets the bus the playback session publishes on. Each controller
// gets its own bus unless one is given.
func WithBus(bus *events.Bus) ControllerOption {
	return func(c *Controller) { c.bus = bus }
}

func WithNarrator(narrator texttospeech.Narrator) ControllerOption {
	return func(c *Controller) { c.narrator = narrator }
}

func WithRecognizer(recognizer Recognizer) ControllerOption {
	return func(c *Controller) { c.recognizer = recognizer }
}

func WithPage(p page.Page) ControllerOption {
	return func(c *Controller) { c.page = p }
}

// WithEvaluator replaces the dispatcher built over the page.
func WithEvaluator(evaluator Evaluator) ControllerOption {
	return func(c *Controller) { c.evaluator = evaluator }
}

// WithExecutor sets where timer callbacks run. It should be the same
// executor the narrator and recognizer use.
func WithExecutor(execute func(func())) ControllerOption {
	return func(c *Controller) { c.execute = execute }
}

// WithAfterFunc replaces time.AfterFunc, mostly for tests. The returned
// function stops the timer.
func WithAfterFunc(afterFunc func(time.Duration, func()) func() bool) ControllerOption {
	return func(c *Controller) { c.afterFunc = afterFunc }
}

func WithStatusCallback(callback func(Status)) ControllerOption {
	return func(c *Controller) { c.onStatus = callback }
}

func WithWarningCallback(callback func(error)) ControllerOption {
	return func(c *Controller) { c.onWarning = callback }
}

// WithKeywordAcknowledgement sets how long a detected "next" or "cancel"
// stays visible in the status.
func WithKeywordAcknowledgement(d time.Duration) ControllerOption {
	return func(c *Controller) { c.detectedFor = d }
}

type noopRecognizer struct{}

func (noopRecognizer) Start() error                    { return nil }
func (noopRecognizer) Stop() error                     { return nil }
func (noopRecognizer) Clear()                          {}
func (noopRecognizer) Snapshot() speechtotext.Snapshot { return speechtotext.Snapshot{} }
func (noopRecognizer) IsListening() bool               { return false }
