package deepgram

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/koscakluka/ema-walkthrough/core/speechtotext"
)

func TestNewCallbackConfigDefaultsToNoopCallbacks(t *testing.T) {
	callbacks, wsConfig := newCallbackConfig(speechtotext.TranscriptionOptions{})

	callbacks.interimTranscriptionCallback("interim")
	callbacks.partialTranscriptionCallback("final")
	callbacks.transcriptionCallback("full")
	callbacks.startSpeechCallback()
	callbacks.endSpeechCallback()
	callbacks.errorCallback(errors.New("ignored"))

	if wsConfig.shouldDetectSpeechStart {
		t.Fatalf("expected speech-start detection disabled when callback is unset")
	}
	if wsConfig.shouldEnhanceSpeechEndingDetection {
		t.Fatalf("expected speech-end enhancement disabled when callbacks are unset")
	}
	if wsConfig.shouldRequestInterimResults {
		t.Fatalf("expected interim-results disabled when callbacks are unset")
	}
}

func TestNewCallbackConfigKeepsConfiguredCallbacksAndFlags(t *testing.T) {
	interimCalls := atomic.Int32{}
	partialCalls := atomic.Int32{}
	transcriptionCalls := atomic.Int32{}
	startCalls := atomic.Int32{}
	endCalls := atomic.Int32{}

	callbacks, wsConfig := newCallbackConfig(speechtotext.TranscriptionOptions{
		InterimTranscriptionCallback: func(string) { interimCalls.Add(1) },
		PartialTranscriptionCallback: func(string) { partialCalls.Add(1) },
		TranscriptionCallback:        func(string) { transcriptionCalls.Add(1) },
		SpeechStartedCallback:        func() { startCalls.Add(1) },
		SpeechEndedCallback:          func() { endCalls.Add(1) },
	})

	callbacks.interimTranscriptionCallback("hel")
	callbacks.partialTranscriptionCallback("hello")
	callbacks.transcriptionCallback("hello world")
	callbacks.startSpeechCallback()
	callbacks.endSpeechCallback()

	if !wsConfig.shouldDetectSpeechStart {
		t.Fatalf("expected speech-start detection enabled")
	}
	if !wsConfig.shouldEnhanceSpeechEndingDetection {
		t.Fatalf("expected speech-end enhancement enabled")
	}
	if !wsConfig.shouldRequestInterimResults {
		t.Fatalf("expected interim-results enabled")
	}

	for name, calls := range map[string]*atomic.Int32{
		"interim":       &interimCalls,
		"partial":       &partialCalls,
		"transcription": &transcriptionCalls,
		"speech-start":  &startCalls,
		"speech-end":    &endCalls,
	} {
		if got := calls.Load(); got != 1 {
			t.Fatalf("expected %s callback once, got %d", name, got)
		}
	}
}

func TestProcessMessageReportsSegmentsAndNoSpeech(t *testing.T) {
	var partials, interims []string
	var errs []error
	callbacks, _ := newCallbackConfig(speechtotext.TranscriptionOptions{
		InterimTranscriptionCallback: func(transcript string) { interims = append(interims, transcript) },
		PartialTranscriptionCallback: func(transcript string) { partials = append(partials, transcript) },
		ErrorCallback:                func(err error) { errs = append(errs, err) },
	})

	var seg segment
	seg.processMessage([]byte(`{"type":"SpeechStarted"}`), callbacks)
	seg.processMessage([]byte(`{"type":"Results","is_final":false,"channel":{"alternatives":[{"transcript":"hel"}]}}`), callbacks)
	seg.processMessage([]byte(`{"type":"Results","is_final":true,"speech_final":true,"channel":{"alternatives":[{"transcript":"hello"}]}}`), callbacks)

	if len(interims) != 1 || interims[0] != "hel" {
		t.Fatalf("expected interim hel, got %v", interims)
	}
	if len(partials) != 1 || partials[0] != "hello" {
		t.Fatalf("expected final segment hello, got %v", partials)
	}
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}

	seg.processMessage([]byte(`{"type":"SpeechStarted"}`), callbacks)
	seg.processMessage([]byte(`{"type":"UtteranceEnd"}`), callbacks)
	if len(errs) != 1 || !errors.Is(errs[0], speechtotext.ErrNoSpeech) {
		t.Fatalf("expected no-speech error, got %v", errs)
	}
}

func TestSegmentsDoNotShareTranscripts(t *testing.T) {
	var transcripts []string
	var errs []error
	callbacks, _ := newCallbackConfig(speechtotext.TranscriptionOptions{
		TranscriptionCallback: func(transcript string) { transcripts = append(transcripts, transcript) },
		ErrorCallback:         func(err error) { errs = append(errs, err) },
	})

	var stopped, current segment
	stopped.processMessage([]byte(`{"type":"SpeechStarted"}`), callbacks)
	stopped.processMessage([]byte(`{"type":"Results","is_final":true,"channel":{"alternatives":[{"transcript":"old answer"}]}}`), callbacks)

	current.processMessage([]byte(`{"type":"SpeechStarted"}`), callbacks)
	current.processMessage([]byte(`{"type":"Results","is_final":true,"channel":{"alternatives":[{"transcript":"new answer"}]}}`), callbacks)
	current.processMessage([]byte(`{"type":"UtteranceEnd"}`), callbacks)

	if len(transcripts) != 1 || transcripts[0] != "new answer" {
		t.Fatalf("expected only the current connection's transcript, got %v", transcripts)
	}
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}
