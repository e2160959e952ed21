package speechtotext

import (
	"context"
	"errors"
	"testing"
)

type stubDriver struct {
	options     TranscriptionOptions
	transcribes int
	stops       int
	audio       int
}

func (d *stubDriver) Transcribe(_ context.Context, opts ...TranscriptionOption) error {
	d.transcribes++
	d.options = TranscriptionOptions{}
	for _, opt := range opts {
		opt(&d.options)
	}
	return nil
}

func (d *stubDriver) SendAudio([]byte) error {
	d.audio++
	return nil
}

func (d *stubDriver) StopStream() error {
	d.stops++
	return nil
}

type stubInput struct {
	onAudio func([]byte)
	stops   int
}

func (i *stubInput) StartCapture(_ context.Context, onAudio func([]byte)) error {
	i.onAudio = onAudio
	return nil
}

func (i *stubInput) StopCapture() error {
	i.stops++
	return nil
}

func openSession(t *testing.T, opts ...SessionOption) *Session {
	t.Helper()
	s := NewSession(opts...)
	s.Open(context.Background())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSessionStartIsIdempotent(t *testing.T) {
	driver := &stubDriver{}
	s := openSession(t, WithDriver(driver))

	if err := s.Start(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if driver.transcribes != 1 {
		t.Fatalf("expected one transcription, got %d", driver.transcribes)
	}
	if !s.IsListening() {
		t.Fatalf("expected session to be listening")
	}
}

func TestSessionAccumulatesTranscript(t *testing.T) {
	driver := &stubDriver{}
	updates := 0
	s := openSession(t, WithDriver(driver), WithUpdateCallback(func(Snapshot) { updates++ }))
	_ = s.Start()

	driver.options.InterimTranscriptionCallback("hel")
	if snapshot := s.Snapshot(); snapshot.Interim != "hel" || snapshot.Latest() != "hel" {
		t.Fatalf("expected interim hel, got %+v", snapshot)
	}

	driver.options.PartialTranscriptionCallback("hello")
	driver.options.PartialTranscriptionCallback("world")
	snapshot := s.Snapshot()
	if snapshot.Final != "hello world" || snapshot.Interim != "" {
		t.Fatalf("expected final hello world, got %+v", snapshot)
	}
	if updates < 3 {
		t.Fatalf("expected updates to be reported, got %d", updates)
	}

	s.Clear()
	if !s.Snapshot().IsEmpty() {
		t.Fatalf("expected cleared snapshot, got %+v", s.Snapshot())
	}
}

func TestSessionDropsResultsAfterStop(t *testing.T) {
	driver := &stubDriver{}
	input := &stubInput{}
	s := openSession(t, WithDriver(driver), WithAudioInput(input))
	_ = s.Start()

	input.onAudio([]byte{0, 1})
	if driver.audio != 1 {
		t.Fatalf("expected audio to reach the driver")
	}

	stale := driver.options
	if err := s.Stop(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	stale.PartialTranscriptionCallback("late")

	if !s.Snapshot().IsEmpty() {
		t.Fatalf("expected late result to be dropped, got %+v", s.Snapshot())
	}
	if driver.stops != 1 || input.stops != 1 {
		t.Fatalf("expected driver and input to stop once, got %d and %d", driver.stops, input.stops)
	}
}

func TestSessionIgnoresNoSpeechAndStopsOnOtherErrors(t *testing.T) {
	driver := &stubDriver{}
	var warnings []error
	s := openSession(t, WithDriver(driver), WithWarningCallback(func(err error) { warnings = append(warnings, err) }))
	_ = s.Start()

	driver.options.ErrorCallback(ErrNoSpeech)
	if !s.IsListening() || len(warnings) != 0 {
		t.Fatalf("expected no-speech to be ignored")
	}

	failure := errors.New("network down")
	driver.options.ErrorCallback(failure)
	if s.IsListening() {
		t.Fatalf("expected session to stop on error")
	}
	if len(warnings) != 1 || !errors.Is(warnings[0], failure) {
		t.Fatalf("expected one warning wrapping the failure, got %v", warnings)
	}
}

func TestSessionInitializesLazilyOnce(t *testing.T) {
	attempts := 0
	var warnings []error
	s := openSession(t,
		WithDriverFactory(func(context.Context) (Driver, error) {
			attempts++
			return nil, errors.New("no microphone")
		}),
		WithWarningCallback(func(err error) { warnings = append(warnings, err) }),
	)

	if !s.Supported() {
		t.Fatalf("expected session to be supported before trying")
	}
	_ = s.Start()
	_ = s.Start()

	if attempts != 1 {
		t.Fatalf("expected one initialization attempt, got %d", attempts)
	}
	if len(warnings) != 1 || !errors.Is(warnings[0], ErrUnsupported) {
		t.Fatalf("expected one unsupported warning, got %v", warnings)
	}
	if s.Supported() || s.IsListening() {
		t.Fatalf("expected session to be unsupported and idle")
	}
}

func TestSessionSubmitText(t *testing.T) {
	s := openSession(t)
	s.SubmitText("  next  ")
	if s.Snapshot().Final != "next" {
		t.Fatalf("expected typed text to be final, got %+v", s.Snapshot())
	}
}

func TestSessionStartBeforeOpen(t *testing.T) {
	s := NewSession(WithDriver(&stubDriver{}))
	if err := s.Start(); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
