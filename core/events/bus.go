package events

import "sync"

type subscription struct {
	handler func()
	removed bool
}

// Bus is a synchronous publish/subscribe channel scoped to one playback
// session.
//
// Handlers registered before Publish run in registration order on the
// publishing goroutine. A handler removed while a publish is in progress,
// by itself or by another handler, is not invoked for the rest of that
// publish. Handlers added while a publish is in progress wait for the next
// one. Publishing a signal nobody listens to is a no-op.
type Bus struct {
	mu            sync.Mutex
	subscriptions map[Signal][]*subscription
}

func NewBus() *Bus {
	return &Bus{subscriptions: map[Signal][]*subscription{}}
}

// Subscribe registers handler for signal and returns a function removing
// it. The returned function is idempotent.
func (b *Bus) Subscribe(signal Signal, handler func()) (unsubscribe func()) {
	if b == nil || handler == nil {
		return func() {}
	}

	sub := &subscription{handler: handler}
	b.mu.Lock()
	b.subscriptions[signal] = append(b.subscriptions[signal], sub)
	b.mu.Unlock()

	return func() { b.remove(signal, sub) }
}

// Once registers handler for the next publish of signal only.
func (b *Bus) Once(signal Signal, handler func()) (unsubscribe func()) {
	var unsubscribeOnce func()
	unsubscribeOnce = b.Subscribe(signal, func() {
		unsubscribeOnce()
		handler()
	})
	return unsubscribeOnce
}

func (b *Bus) Publish(signal Signal) {
	if b == nil {
		return
	}

	b.mu.Lock()
	snapshot := append([]*subscription(nil), b.subscriptions[signal]...)
	b.mu.Unlock()

	for _, sub := range snapshot {
		b.mu.Lock()
		removed := sub.removed
		b.mu.Unlock()
		if removed {
			continue
		}
		sub.handler()
	}
}

// Subscribers reports how many handlers currently listen to signal.
func (b *Bus) Subscribers(signal Signal) int {
	if b == nil {
		return 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscriptions[signal])
}

func (b *Bus) remove(signal Signal, sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub.removed {
		return
	}
	sub.removed = true

	subs := b.subscriptions[signal]
	for i, candidate := range subs {
		if candidate == sub {
			b.subscriptions[signal] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subscriptions[signal]) == 0 {
		delete(b.subscriptions, signal)
	}
}
