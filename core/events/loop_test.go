package events

import (
	"context"
	"slices"
	"testing"
	"time"
)

func TestLoopRunsPostedFunctionsInOrder(t *testing.T) {
	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan []int, 1)
	order := []int{}
	loop.Post(func() { order = append(order, 1) })
	loop.Post(func() {
		order = append(order, 2)
		loop.Post(func() {
			order = append(order, 3)
			done <- order
		})
	})

	go func() { _ = loop.Run(ctx) }()

	select {
	case got := <-done:
		if !slices.Equal(got, []int{1, 2, 3}) {
			t.Fatalf("expected [1 2 3], got %v", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected posted functions to run")
	}
}

func TestLoopDropsPostsAfterStop(t *testing.T) {
	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		_ = loop.Run(ctx)
		close(stopped)
	}()
	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatalf("expected loop to stop on context cancellation")
	}

	if loop.Post(func() {}) {
		t.Fatalf("expected post after stop to be rejected")
	}
}

func TestLoopReportsPanics(t *testing.T) {
	loop := NewLoop()
	loop.Post(func() { panic("boom") })

	if err := loop.Run(context.Background()); err == nil {
		t.Fatalf("expected panic to be reported as an error")
	}
}
