// Package speechtotext turns microphone audio into a running transcript that
// a walkthrough can read and clear between prompts.
package speechtotext

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/koscakluka/ema-walkthrough/core/audio"
)

var (
	ErrUnsupported = errors.New("speech recognition is not supported")
	// ErrNoSpeech is reported when the speaker paused without saying
	// anything. It does not stop a session.
	ErrNoSpeech = errors.New("no speech detected")
	ErrClosed   = errors.New("recognition session is closed")
)

// Driver is a streaming transcription service.
type Driver interface {
	Transcribe(ctx context.Context, opts ...TranscriptionOption) error
	SendAudio(audio []byte) error
	StopStream() error
}

// DriverFactory creates a driver the first time a session starts listening.
type DriverFactory func(ctx context.Context) (Driver, error)

type AudioInput interface {
	StartCapture(ctx context.Context, onAudio func(audio []byte)) error
	StopCapture() error
}

// Snapshot is the transcript heard since it was last cleared.
type Snapshot struct {
	Final   string
	Interim string
}

// Latest is the final text, or the interim text while nothing is final yet.
func (s Snapshot) Latest() string {
	if s.Final != "" {
		return s.Final
	}
	return s.Interim
}

func (s Snapshot) IsEmpty() bool {
	return s.Final == "" && s.Interim == ""
}

// Session owns one recognition driver and the transcript it produces. Its
// methods and callbacks are meant to run on a single goroutine; drivers hand
// their results to the executor.
type Session struct {
	factory   DriverFactory
	input     AudioInput
	encoding  audio.EncodingInfo
	execute   func(func())
	onUpdate  func(Snapshot)
	onWarning func(error)

	ctx    context.Context
	cancel context.CancelFunc

	driver     Driver
	initTried  bool
	warnedOnce bool
	listening  bool
	generation int
	snapshot   Snapshot

	mu sync.Mutex
}

type SessionOption func(*Session)

func WithDriverFactory(factory DriverFactory) SessionOption {
	return func(s *Session) { s.factory = factory }
}

func WithDriver(driver Driver) SessionOption {
	return func(s *Session) { s.driver = driver }
}

func WithAudioInput(input AudioInput) SessionOption {
	return func(s *Session) { s.input = input }
}

func WithSessionEncodingInfo(encodingInfo audio.EncodingInfo) SessionOption {
	return func(s *Session) {
		if !encodingInfo.IsZero() {
			s.encoding = encodingInfo
		}
	}
}

func WithExecutor(execute func(func())) SessionOption {
	return func(s *Session) { s.execute = execute }
}

func WithUpdateCallback(callback func(Snapshot)) SessionOption {
	return func(s *Session) { s.onUpdate = callback }
}

func WithWarningCallback(callback func(error)) SessionOption {
	return func(s *Session) { s.onWarning = callback }
}

func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		encoding:  audio.GetDefaultEncodingInfo(),
		execute:   func(fn func()) { fn() },
		onUpdate:  func(Snapshot) {},
		onWarning: func(error) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open binds the session to ctx. Drivers started later live until Close or
// until ctx is done.
func (s *Session) Open(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
}

func (s *Session) Close() error {
	err := s.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.ctx, s.cancel = nil, nil
	s.snapshot = Snapshot{}
	return err
}

// Supported reports whether Start can do anything. It stays true until a
// lazy initialization has failed.
func (s *Session) Supported() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.driver != nil || (s.factory != nil && !s.initTried)
}

func (s *Session) IsListening() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listening
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Clear forgets the transcript without notifying.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = Snapshot{}
}

// Start begins listening. Starting a session that is already listening does
// nothing. Without a usable driver it warns once and does nothing.
func (s *Session) Start() error {
	s.mu.Lock()
	if s.ctx == nil {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.listening {
		s.mu.Unlock()
		return nil
	}
	ctx := s.ctx

	if s.driver == nil && !s.initTried {
		s.initTried = true
		if s.factory != nil {
			driver, err := s.factory(ctx)
			if err != nil {
				s.mu.Unlock()
				s.warnUnsupported(fmt.Errorf("%w: %w", ErrUnsupported, err))
				return nil
			}
			s.driver = driver
		}
	}
	if s.driver == nil {
		s.mu.Unlock()
		s.warnUnsupported(ErrUnsupported)
		return nil
	}

	s.generation++
	generation := s.generation
	driver := s.driver
	s.listening = true
	s.mu.Unlock()

	if err := driver.Transcribe(ctx,
		WithEncodingInfo(s.encoding),
		WithInterimTranscriptionCallback(func(transcript string) {
			s.post(generation, func() { s.setInterim(transcript) })
		}),
		WithPartialTranscriptionCallback(func(transcript string) {
			s.post(generation, func() { s.appendFinal(transcript) })
		}),
		WithErrorCallback(func(err error) {
			s.post(generation, func() { s.fail(err) })
		}),
	); err != nil {
		s.mu.Lock()
		s.listening = false
		s.mu.Unlock()
		return fmt.Errorf("failed to start transcription: %w", err)
	}

	if s.input != nil {
		if err := s.input.StartCapture(ctx, func(audio []byte) {
			if err := driver.SendAudio(audio); err != nil {
				s.post(generation, func() { s.fail(err) })
			}
		}); err != nil {
			_ = s.Stop()
			return fmt.Errorf("failed to start audio capture: %w", err)
		}
	}

	s.notify()
	return nil
}

// Stop stops listening. Results still in flight from the driver are dropped.
func (s *Session) Stop() error {
	s.mu.Lock()
	if !s.listening {
		s.mu.Unlock()
		return nil
	}
	s.listening = false
	s.generation++
	driver := s.driver
	s.mu.Unlock()

	var errs []error
	if s.input != nil {
		if err := s.input.StopCapture(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop audio capture: %w", err))
		}
	}
	if driver != nil {
		if err := driver.StopStream(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop transcription: %w", err))
		}
	}

	s.notify()
	return errors.Join(errs...)
}

// SubmitText records typed text as if it had been heard, so a host without a
// microphone can still answer.
func (s *Session) SubmitText(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	s.appendFinal(text)
}

func (s *Session) post(generation int, fn func()) {
	s.execute(func() {
		s.mu.Lock()
		current := s.generation == generation && s.listening
		s.mu.Unlock()
		if current {
			fn()
		}
	})
}

func (s *Session) setInterim(transcript string) {
	s.mu.Lock()
	s.snapshot.Interim = strings.TrimSpace(transcript)
	s.mu.Unlock()
	s.notify()
}

func (s *Session) appendFinal(transcript string) {
	transcript = strings.TrimSpace(transcript)
	s.mu.Lock()
	if transcript != "" {
		s.snapshot.Final = strings.TrimSpace(s.snapshot.Final + " " + transcript)
	}
	s.snapshot.Interim = ""
	s.mu.Unlock()
	s.notify()
}

func (s *Session) fail(err error) {
	if errors.Is(err, ErrNoSpeech) {
		return
	}
	if stopErr := s.Stop(); stopErr != nil {
		err = errors.Join(err, stopErr)
	}
	logger.Warn("speech recognition stopped", "error", err)
	s.onWarning(err)
}

func (s *Session) warnUnsupported(err error) {
	s.mu.Lock()
	warned := s.warnedOnce
	s.warnedOnce = true
	s.mu.Unlock()
	if warned {
		return
	}
	logger.Warn("speech recognition unavailable", "error", err)
	s.onWarning(err)
}

func (s *Session) notify() {
	s.onUpdate(s.Snapshot())
}
