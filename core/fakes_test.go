package orchestration

import (
	"context"

	"github.com/koscakluka/ema-walkthrough/core/actions"
	"github.com/koscakluka/ema-walkthrough/core/script"
	"github.com/koscakluka/ema-walkthrough/core/speechtotext"
	"github.com/koscakluka/ema-walkthrough/core/texttospeech"
)

type fakeNarrator struct {
	spoken    []string
	pending   *texttospeech.SpeakOptions
	cancelled int
	// utterances keeps the options of every Speak call, so a test can end
	// one after it was cancelled or replaced
	utterances []*texttospeech.SpeakOptions
}

func (n *fakeNarrator) Speak(_ context.Context, text string, opts ...texttospeech.SpeakOption) error {
	options := texttospeech.SpeakOptions{OnStart: func() {}, OnEnd: func() {}, OnError: func(error) {}}
	for _, opt := range opts {
		opt(&options)
	}
	n.spoken = append(n.spoken, text)
	n.pending = &options
	n.utterances = append(n.utterances, &options)
	return nil
}

func (n *fakeNarrator) Cancel() error {
	n.cancelled++
	n.pending = nil
	return nil
}

// finish ends the utterance in flight, if any.
func (n *fakeNarrator) finish() bool {
	pending := n.pending
	if pending == nil {
		return false
	}
	n.pending = nil
	pending.OnStart()
	pending.OnEnd()
	return true
}

func (n *fakeNarrator) last() string {
	if len(n.spoken) == 0 {
		return ""
	}
	return n.spoken[len(n.spoken)-1]
}

type fakeRecognizer struct {
	snapshot  speechtotext.Snapshot
	listening bool
	starts    int
	stops     int
	// onUpdate mirrors a session reporting every start and stop
	onUpdate func(speechtotext.Snapshot)
}

func (r *fakeRecognizer) Start() error {
	r.starts++
	r.listening = true
	if r.onUpdate != nil {
		r.onUpdate(r.snapshot)
	}
	return nil
}

func (r *fakeRecognizer) Stop() error {
	r.stops++
	r.listening = false
	if r.onUpdate != nil {
		r.onUpdate(r.snapshot)
	}
	return nil
}

func (r *fakeRecognizer) Clear()                          { r.snapshot = speechtotext.Snapshot{} }
func (r *fakeRecognizer) Snapshot() speechtotext.Snapshot { return r.snapshot }
func (r *fakeRecognizer) IsListening() bool               { return r.listening }

func (r *fakeRecognizer) hear(final string) speechtotext.Snapshot {
	r.snapshot.Final = final
	return r.snapshot
}

type evaluation struct {
	utterance string
	action    script.Action
}

type recordingEvaluator struct {
	next        Evaluator
	evaluations []evaluation
}

func (e *recordingEvaluator) Evaluate(ctx context.Context, utterance string, action *script.Action, expectedPhrase string) actions.Result {
	if action != nil {
		e.evaluations = append(e.evaluations, evaluation{utterance: utterance, action: *action})
	}
	return e.next.Evaluate(ctx, utterance, action, expectedPhrase)
}
