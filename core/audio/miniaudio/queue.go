package miniaudio

import "sync"

type playbackMark struct {
	name     string
	position int
	callback func(string)
}

// playbackQueue holds audio waiting for the device and the marks placed in
// it. Mark positions are byte offsets into the pending audio.
type playbackQueue struct {
	audio []byte
	marks []playbackMark
	mu    sync.Mutex
}

func (q *playbackQueue) push(audio []byte) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.audio = append(q.audio, audio...)
}

func (q *playbackQueue) mark(name string, callback func(string)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.marks = append(q.marks, playbackMark{name: name, position: len(q.audio), callback: callback})
}

func (q *playbackQueue) clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.audio = nil
	q.marks = nil
}

// pop copies pending audio into out and returns the marks that were reached.
// Whatever part of out is not covered by audio is left untouched.
func (q *playbackQueue) pop(out []byte) []playbackMark {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := copy(out, q.audio)
	q.audio = q.audio[n:]
	if len(q.audio) == 0 {
		q.audio = nil
	}

	passed := 0
	for i := range q.marks {
		if q.marks[i].position <= n {
			passed++
			continue
		}
		q.marks[i].position -= n
	}
	if passed == 0 {
		return nil
	}

	reached := q.marks[:passed:passed]
	q.marks = q.marks[passed:]
	return reached
}
