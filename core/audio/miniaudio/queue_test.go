package miniaudio

import "testing"

func TestPlaybackQueueReleasesMarksOncePlayed(t *testing.T) {
	var q playbackQueue
	q.push(make([]byte, 10))
	q.mark("first", func(string) {})
	q.push(make([]byte, 10))
	q.mark("second", func(string) {})

	out := make([]byte, 8)
	if reached := q.pop(out); len(reached) != 0 {
		t.Fatalf("expected no marks after 8 bytes, got %d", len(reached))
	}

	reached := q.pop(out)
	if len(reached) != 1 || reached[0].name != "first" {
		t.Fatalf("expected first mark after 16 bytes, got %+v", reached)
	}

	reached = q.pop(out)
	if len(reached) != 1 || reached[0].name != "second" {
		t.Fatalf("expected second mark after all audio, got %+v", reached)
	}
}

func TestPlaybackQueueMarkOnEmptyQueueFiresOnNextPop(t *testing.T) {
	var q playbackQueue
	q.mark("now", func(string) {})

	reached := q.pop(make([]byte, 4))
	if len(reached) != 1 {
		t.Fatalf("expected mark to be released immediately, got %d", len(reached))
	}
}

func TestPlaybackQueueClearDropsMarks(t *testing.T) {
	var q playbackQueue
	q.push(make([]byte, 4))
	q.mark("dropped", func(string) {})
	q.clear()

	if reached := q.pop(make([]byte, 4)); len(reached) != 0 {
		t.Fatalf("expected cleared marks not to fire, got %d", len(reached))
	}
}
