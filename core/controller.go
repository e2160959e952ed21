// Package orchestration plays voice guided walkthroughs. A [Controller]
// narrates script steps in order and waits for the action a step asks for;
// an [Editor] lets the user fill in and correct a field by voice.
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/koscakluka/ema-walkthrough/core/actions"
	"github.com/koscakluka/ema-walkthrough/core/events"
	"github.com/koscakluka/ema-walkthrough/core/page"
	"github.com/koscakluka/ema-walkthrough/core/script"
	"github.com/koscakluka/ema-walkthrough/core/speechtotext"
	"github.com/koscakluka/ema-walkthrough/core/texttospeech"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrNoScript       = errors.New("no script loaded")
	ErrAlreadyPlaying = errors.New("script is already playing")
)

// Controller plays one script at a time. Its methods, and the callbacks of
// the narrator and recognizer it is given, must all run on one goroutine.
type Controller struct {
	bus        *events.Bus
	narrator   texttospeech.Narrator
	recognizer Recognizer
	page       page.Page
	evaluator  Evaluator
	editor     *Editor

	execute     func(func())
	afterFunc   func(time.Duration, func()) func() bool
	onStatus    func(Status)
	onWarning   func(error)
	detectedFor time.Duration

	steps        []script.Step
	state        State
	cursor       Cursor
	index        int
	lastStepID   int
	targetPhrase string

	// parent is the context the current pass was started with; ctx carries
	// the pass span
	parent   context.Context
	ctx      context.Context
	span     trace.Span
	token    *CancellationToken
	pass     int
	finished bool

	passUnsubscribers []func()
	stepUnsubscribers []func()

	detected      Keyword
	detectedTimer int
	stopDetected  func() bool

	stepsCompleted metric.Int64Counter
}

func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{
		execute:     func(fn func()) { fn() },
		onStatus:    func(Status) {},
		onWarning:   func(error) {},
		detectedFor: time.Second,
		parent:      context.Background(),
		ctx:         context.Background(),
	}
	c.afterFunc = func(d time.Duration, fn func()) func() bool {
		return time.AfterFunc(d, func() { c.execute(fn) }).Stop
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.bus == nil {
		c.bus = events.NewBus()
	}
	if c.narrator == nil {
		c.narrator = texttospeech.NewNarration()
	}
	if c.recognizer == nil {
		c.recognizer = noopRecognizer{}
	}
	if c.page == nil {
		c.page = page.NewMemory()
	}

	if c.evaluator == nil {
		c.evaluator = actions.NewDispatcher(c.page)
	}
	c.editor = NewEditor(c.bus, c.narrator, c.recognizer, c.page,
		WithEditorEvaluator(c.evaluator),
		WithRestartCallback(c.StartAgain),
		WithChangeCallback(c.notify),
	)

	var err error
	if c.stepsCompleted, err = meter.Int64Counter("walkthrough.steps.completed",
		metric.WithDescription("Number of script steps completed"),
	); err != nil {
		logger.Warn("failed to create steps counter", "error", err)
	}

	return c
}

func (c *Controller) Bus() *events.Bus {
	return c.bus
}

func (c *Controller) Editor() *Editor {
	return c.editor
}

func (c *Controller) Steps() []script.Step {
	return c.steps
}

// Load installs steps, numbering them from 1.
func (c *Controller) Load(steps []script.Step) error {
	if c.cursor.Playing {
		return ErrAlreadyPlaying
	}

	loaded, err := script.Load(steps)
	if err != nil {
		return fmt.Errorf("failed to load script: %w", err)
	}
	c.steps = loaded
	c.lastStepID = 0
	c.state = StateIdle
	c.notify()
	return nil
}

// Play starts at the first step whose id is at least resumeID. A resumeID
// below 1 starts at the beginning.
func (c *Controller) Play(ctx context.Context, resumeID int) error {
	if c.cursor.Playing {
		return ErrAlreadyPlaying
	}
	if len(c.steps) == 0 {
		return ErrNoScript
	}
	resumeID = max(resumeID, 1)

	index := len(c.steps)
	for i, step := range c.steps {
		if step.ID >= resumeID {
			index = i
			break
		}
	}

	c.pass++
	c.token = NewCancellationToken()
	c.finished = false
	c.cursor = Cursor{Playing: true}
	c.parent = ctx
	c.ctx, c.span = tracer.Start(ctx, "play script")
	c.span.SetAttributes(attribute.Int("script.resume_id", resumeID), attribute.Int("script.steps", len(c.steps)))

	pass := c.pass
	c.passUnsubscribers = []func(){
		c.bus.Subscribe(events.NextClicked, func() { c.onNext(pass) }),
		c.bus.Subscribe(events.CancelClicked, func() { c.onCancel(pass) }),
	}

	c.playStep(index)
	return nil
}

// Next skips to the following step.
func (c *Controller) Next() {
	if !c.cursor.Playing {
		return
	}
	c.bus.Publish(events.NextClicked)
}

// Cancel stops playback. ReadScriptFinished is published once everything
// the pass held has been released.
func (c *Controller) Cancel() {
	if !c.cursor.Playing {
		return
	}
	c.token.RequestCancel()
	c.cursor.Cancelled = true
	c.bus.Publish(events.CancelClicked)
}

// Previous replays the step before the current one, or the current one when
// it is the first.
func (c *Controller) Previous() {
	c.restartAt(func(id int) int { return max(id-1, 1) })
}

// StartAgain replays the current step.
func (c *Controller) StartAgain() {
	c.restartAt(func(id int) int { return max(id, 1) })
}

func (c *Controller) restartAt(target func(id int) int) {
	ctx := c.parent
	if !c.cursor.Playing {
		if err := c.Play(ctx, target(c.lastStepID)); err != nil {
			c.warn(fmt.Errorf("failed to restart script: %w", err))
		}
		return
	}

	resumeID := target(c.cursor.StepID)
	c.bus.Once(events.ReadScriptFinished, func() {
		if err := c.Play(ctx, resumeID); err != nil {
			c.warn(fmt.Errorf("failed to restart script: %w", err))
		}
	})
	c.Cancel()
}

// HandleSpeech reacts to the recognized transcript. Hosts call it whenever
// the recognition session reports an update.
func (c *Controller) HandleSpeech(snapshot speechtotext.Snapshot) {
	defer c.notify()
	if !c.cursor.Playing || snapshot.IsEmpty() {
		return
	}

	step := c.steps[c.index]
	if c.state == StateAwaitingAction && step.Action.IsInvoke() {
		result := c.evaluator.Evaluate(c.ctx, snapshot.Latest(), step.Action, c.targetPhrase)
		if result.Success {
			c.recognizer.Clear()
			c.advance(c.pass)
			return
		}
	}

	if !(c.editor.Active() && c.editor.Stage().takesFreeText()) {
		switch MatchKeyword(snapshot.Latest()) {
		case KeywordNext:
			c.acknowledge(KeywordNext)
			c.recognizer.Clear()
			c.Next()
			return
		case KeywordCancel:
			c.acknowledge(KeywordCancel)
			c.recognizer.Clear()
			c.Cancel()
			return
		}
	}

	if c.state == StateAwaitingAction && step.Action.IsCollect() {
		c.editor.HandleSpeech(snapshot)
	}
}

func (c *Controller) State() State {
	return c.state
}

func (c *Controller) Cursor() Cursor {
	return c.cursor
}

func (c *Controller) Status() Status {
	status := Status{
		State:        c.state,
		Cursor:       c.cursor,
		TargetPhrase: c.targetPhrase,
		Editing:      c.editor.Active(),
		Stage:        c.editor.Stage(),
		Transcript:   c.recognizer.Snapshot(),
		Listening:    c.recognizer.IsListening(),
		Detected:     c.detected,
	}
	if c.cursor.Playing && c.index < len(c.steps) {
		status.StepText = c.steps[c.index].Text
	}
	return status
}

func (c *Controller) playStep(index int) {
	if c.token.IsCancelled() || index >= len(c.steps) {
		c.finish()
		return
	}

	step := c.steps[index]
	c.index = index
	c.cursor.StepID = step.ID
	c.lastStepID = step.ID
	c.state = StateSpeaking
	c.targetPhrase = ""
	c.span.AddEvent("step", trace.WithAttributes(attribute.Int("step.id", step.ID)))

	if step.FocusTarget != "" {
		if err := c.page.Highlight(c.ctx, step.FocusTarget); err != nil {
			c.logElementError("failed to highlight step", step.FocusTarget, err)
		}
	}
	c.stopListening()
	c.notify()

	pass, token := c.pass, c.token
	if err := c.narrator.Speak(c.ctx, step.Text,
		texttospeech.WithEndCallback(func() { c.onNarrated(pass, token, index) }),
		texttospeech.WithErrorCallback(func(err error) {
			c.warn(fmt.Errorf("failed to narrate step %d: %w", step.ID, err))
			c.onNarrated(pass, token, index)
		}),
	); err != nil {
		c.span.RecordError(err)
	}
}

func (c *Controller) onNarrated(pass int, token *CancellationToken, index int) {
	if pass != c.pass || token.IsCancelled() || !c.cursor.Playing || index != c.index {
		return
	}

	step := c.steps[index]
	if step.Action == nil {
		c.completeStep(step)
		c.playStep(index + 1)
		return
	}

	c.state = StateAwaitingAction
	c.recognizer.Clear()

	switch step.Action.Kind {
	case script.ActionInvoke:
		c.targetPhrase = step.Action.TargetPhrase
	case script.ActionCollect:
		if err := c.page.Focus(c.ctx, step.Action.FieldRef); err != nil {
			c.logElementError("failed to focus field", step.Action.FieldRef, err)
		}
		c.editor.Enter(c.ctx, step.Action.FieldRef, token)
		c.stepUnsubscribers = append(c.stepUnsubscribers,
			c.bus.Subscribe(events.IsCorrect, func() { c.advance(pass) }),
		)
	}

	if err := c.recognizer.Start(); err != nil {
		c.warn(fmt.Errorf("failed to start listening: %w", err))
	}
	c.notify()
}

func (c *Controller) onNext(pass int) {
	if pass != c.pass || !c.cursor.Playing {
		return
	}
	if err := c.narrator.Cancel(); err != nil {
		c.span.RecordError(err)
	}
	c.advance(pass)
}

func (c *Controller) onCancel(pass int) {
	if pass != c.pass || !c.cursor.Playing {
		return
	}
	if err := c.narrator.Cancel(); err != nil {
		c.span.RecordError(err)
	}
	c.releaseStep(c.steps[c.index])
	c.finish()
}

// advance leaves the current step, completed, and plays the next one.
func (c *Controller) advance(pass int) {
	if pass != c.pass || !c.cursor.Playing {
		return
	}

	c.completeStep(c.steps[c.index])
	if c.token.IsCancelled() {
		c.finish()
		return
	}
	c.playStep(c.index + 1)
}

func (c *Controller) completeStep(step script.Step) {
	c.releaseStep(step)
	if c.stepsCompleted != nil {
		c.stepsCompleted.Add(c.ctx, 1)
	}
}

func (c *Controller) releaseStep(step script.Step) {
	for _, unsubscribe := range c.stepUnsubscribers {
		unsubscribe()
	}
	c.stepUnsubscribers = nil

	c.editor.Exit()
	c.stopListening()
	if step.FocusTarget != "" {
		if err := c.page.RemoveHighlight(c.ctx, step.FocusTarget); err != nil {
			c.logElementError("failed to remove highlight", step.FocusTarget, err)
		}
	}
	c.targetPhrase = ""
}

func (c *Controller) finish() {
	if c.finished {
		return
	}
	c.finished = true

	for _, unsubscribe := range c.passUnsubscribers {
		unsubscribe()
	}
	c.passUnsubscribers = nil
	c.state = StateFinished
	c.cursor = Cursor{}
	c.targetPhrase = ""
	if c.span != nil {
		c.span.End()
	}
	c.notify()

	c.bus.Publish(events.ReadScriptFinished)
}

// stopListening drops the transcript first so the update sent on stop
// cannot be taken for a new answer.
func (c *Controller) stopListening() {
	c.recognizer.Clear()
	if err := c.recognizer.Stop(); err != nil {
		c.warn(fmt.Errorf("failed to stop listening: %w", err))
	}
}

func (c *Controller) acknowledge(keyword Keyword) {
	if c.stopDetected != nil {
		c.stopDetected()
	}
	c.detected = keyword
	c.detectedTimer++
	timer := c.detectedTimer
	c.stopDetected = c.afterFunc(c.detectedFor, func() {
		if timer != c.detectedTimer {
			return
		}
		c.detected = KeywordNone
		c.notify()
	})
}

func (c *Controller) notify() {
	c.onStatus(c.Status())
}

func (c *Controller) warn(err error) {
	if c.span != nil {
		c.span.RecordError(err)
	}
	logger.WarnContext(c.ctx, "walkthrough warning", "error", err)
	c.onWarning(err)
}

func (c *Controller) logElementError(msg, id string, err error) {
	if errors.Is(err, page.ErrMissingElement) {
		logger.DebugContext(c.ctx, msg, "element", id, "error", err)
		return
	}
	c.warn(fmt.Errorf("%s: %w", msg, err))
}
