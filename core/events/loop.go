package events

import (
	"context"
	"fmt"
	"sync"
)

// Loop runs posted functions one at a time on the goroutine that called
// Run. Drivers deliver their callbacks through Post so the walkthrough
// state machine never runs concurrently with itself.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	closed  bool
	running bool
}

func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post enqueues fn. It never blocks, so it is safe to call from inside a
// function that is already running on the loop. Functions posted after the
// loop stopped are dropped and Post reports false.
func (l *Loop) Post(fn func()) bool {
	if l == nil || fn == nil {
		return false
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Run executes posted functions until ctx is done. A panicking function is
// reported as an error and stops the loop.
func (l *Loop) Run(ctx context.Context) (err error) {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return fmt.Errorf("loop already running")
	}
	l.running = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.closed = true
		l.queue = nil
		l.mu.Unlock()
	}()

	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("loop function panicked: %v", recovered)
		}
	}()

	for {
		for fn := l.next(); fn != nil; fn = l.next() {
			fn()
			if ctx.Err() != nil {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-l.wake:
		}
	}
}

func (l *Loop) next() func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.queue) == 0 {
		return nil
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn
}
