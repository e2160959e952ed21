// Package texttospeech narrates text: one utterance at a time, with start and
// end notifications and cancellation.
package texttospeech

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

var (
	// ErrInterrupted is reported for speech that was cancelled or superseded.
	// It is never surfaced to a narrator's callbacks.
	ErrInterrupted = errors.New("speech interrupted")
	ErrUnsupported = errors.New("speech synthesis is not supported")
)

type Narrator interface {
	// Speak starts narrating text, cancelling any utterance still in flight.
	Speak(ctx context.Context, text string, opts ...SpeakOption) error
	// Cancel stops the current utterance. Its end callback is never called.
	Cancel() error
}

type SpeakOptions struct {
	OnStart func()
	OnEnd   func()
	OnError func(error)
}

type SpeakOption func(*SpeakOptions)

func WithStartCallback(callback func()) SpeakOption {
	return func(o *SpeakOptions) { o.OnStart = callback }
}

func WithEndCallback(callback func()) SpeakOption {
	return func(o *SpeakOptions) { o.OnEnd = callback }
}

func WithErrorCallback(callback func(error)) SpeakOption {
	return func(o *SpeakOptions) { o.OnError = callback }
}

type utterance struct {
	id        uuid.UUID
	text      string
	generator SpeechGenerator
	options   SpeakOptions

	started bool
}

// Narration is a [Narrator] over a [Synthesizer] and an optional
// [AudioOutput]. Without a synthesizer it runs silently: every utterance
// starts and ends straight away so a text-only host can still step through.
type Narration struct {
	synthesizer Synthesizer
	output      AudioOutput
	execute     func(func())
	onWarning   func(error)

	current  *utterance
	mu       sync.Mutex
	warnOnce sync.Once
}

var _ Narrator = (*Narration)(nil)

type NarrationOption func(*Narration)

func WithSynthesizer(synthesizer Synthesizer) NarrationOption {
	return func(n *Narration) { n.synthesizer = synthesizer }
}

func WithAudioOutput(output AudioOutput) NarrationOption {
	return func(n *Narration) { n.output = output }
}

// WithExecutor sets where callbacks run. Drivers call back from their own
// goroutines, so a host with a single-threaded core passes its loop here.
func WithExecutor(execute func(func())) NarrationOption {
	return func(n *Narration) { n.execute = execute }
}

func WithWarningCallback(callback func(error)) NarrationOption {
	return func(n *Narration) { n.onWarning = callback }
}

func NewNarration(opts ...NarrationOption) *Narration {
	n := &Narration{
		execute:   func(fn func()) { fn() },
		onWarning: func(error) {},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Narration) Supported() bool {
	return n.synthesizer != nil
}

func (n *Narration) Speak(ctx context.Context, text string, opts ...SpeakOption) error {
	u := &utterance{
		id:   uuid.New(),
		text: text,
		options: SpeakOptions{
			OnStart: func() {},
			OnEnd:   func() {},
			OnError: func(error) {},
		},
	}
	for _, opt := range opts {
		opt(&u.options)
	}

	n.supersede(u)

	if n.synthesizer == nil {
		n.warnOnce.Do(func() {
			logger.Warn("narration is running silently", "error", ErrUnsupported)
			n.onWarning(ErrUnsupported)
		})
		n.markStarted(u)
		n.finish(u)
		return nil
	}

	ctx, span := tracer.Start(ctx, "speak")
	defer span.End()
	span.SetAttributes(attribute.String("utterance.id", u.id.String()))

	generator, err := n.synthesizer.NewSpeechGenerator(ctx,
		WithSpeechAudioCallback(func(audio []byte) { n.onAudio(u, audio) }),
		WithSpeechEndedCallback(func() { n.onGenerated(u) }),
		WithSpeechErrorCallback(func(err error) { n.onError(u, err) }),
	)
	if err != nil {
		err = fmt.Errorf("failed to create speech generator: %w", err)
		span.RecordError(err)
		n.onError(u, err)
		return err
	}

	n.mu.Lock()
	if n.current != u {
		n.mu.Unlock()
		_ = generator.Cancel()
		return nil
	}
	u.generator = generator
	n.mu.Unlock()

	if err := generator.SendText(text); err != nil {
		err = fmt.Errorf("failed to send text to speech generator: %w", err)
		span.RecordError(err)
		n.onError(u, err)
		return err
	}
	if err := generator.EndOfText(); err != nil {
		err = fmt.Errorf("failed to end text for speech generator: %w", err)
		span.RecordError(err)
		n.onError(u, err)
		return err
	}

	return nil
}

func (n *Narration) Cancel() error {
	n.mu.Lock()
	u := n.current
	n.current = nil
	n.mu.Unlock()

	return n.stop(u)
}

func (n *Narration) supersede(u *utterance) {
	n.mu.Lock()
	previous := n.current
	n.current = u
	n.mu.Unlock()

	if err := n.stop(previous); err != nil {
		logger.Warn("failed to cancel superseded speech", "error", err)
	}
}

func (n *Narration) stop(u *utterance) error {
	if u == nil {
		return nil
	}

	if n.output != nil {
		n.output.ClearBuffer()
	}

	if u.generator == nil {
		return nil
	}
	if err := u.generator.Cancel(); err != nil && !errors.Is(err, ErrInterrupted) {
		return fmt.Errorf("failed to cancel speech generator: %w", err)
	}
	return nil
}

func (n *Narration) isCurrent(u *utterance) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current == u
}

// markStarted reports the start of u once.
func (n *Narration) markStarted(u *utterance) {
	n.mu.Lock()
	if n.current != u || u.started {
		n.mu.Unlock()
		return
	}
	u.started = true
	n.mu.Unlock()

	n.execute(func() {
		if n.isCurrent(u) {
			u.options.OnStart()
		}
	})
}

func (n *Narration) onAudio(u *utterance, audio []byte) {
	if !n.isCurrent(u) {
		return
	}
	n.markStarted(u)

	if n.output != nil {
		if err := n.output.SendAudio(audio); err != nil {
			logger.Warn("failed to play speech audio", "utterance", u.id.String(), "error", err)
		}
	}
}

func (n *Narration) onGenerated(u *utterance) {
	if !n.isCurrent(u) {
		return
	}
	n.markStarted(u)

	if n.output == nil {
		n.finish(u)
		return
	}

	if err := n.output.Mark(u.id.String(), func(string) { n.finish(u) }); err != nil {
		logger.Warn("failed to mark end of speech", "utterance", u.id.String(), "error", err)
		n.finish(u)
	}
}

func (n *Narration) finish(u *utterance) {
	n.execute(func() {
		n.mu.Lock()
		if n.current != u {
			n.mu.Unlock()
			return
		}
		n.current = nil
		n.mu.Unlock()

		u.options.OnEnd()
	})
}

func (n *Narration) onError(u *utterance, err error) {
	if errors.Is(err, ErrInterrupted) || !n.isCurrent(u) {
		return
	}

	logger.Warn("speech failed", "utterance", u.id.String(), "error", err)
	n.execute(func() {
		n.mu.Lock()
		if n.current != u {
			n.mu.Unlock()
			return
		}
		n.current = nil
		n.mu.Unlock()

		u.options.OnError(err)
	})
}
