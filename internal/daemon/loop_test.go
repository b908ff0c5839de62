package daemon

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

func runLoop(t *testing.T, l *Loop) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return cancel
}

func TestLoopRunsTasksInOrder(t *testing.T) {
	l := NewLoop(8)
	runLoop(t, l)

	var order []int
	for i := 1; i <= 3; i++ {
		if !l.Post(func() { order = append(order, i) }) {
			t.Fatalf("expected task %d to be queued", i)
		}
	}
	if err := l.Do(context.Background(), func() { order = append(order, 4) }); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4}, order); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestLoopPostWhenFull(t *testing.T) {
	l := NewLoop(1)
	if !l.Post(func() {}) {
		t.Fatalf("expected first post to be queued")
	}
	if l.Post(func() {}) {
		t.Fatalf("expected post to a full queue to fail")
	}
}

func TestLoopStopped(t *testing.T) {
	l := NewLoop(4)
	cancel := runLoop(t, l)
	cancel()
	<-l.done

	if l.Post(func() {}) {
		t.Fatalf("expected post to a stopped loop to fail")
	}
	if err := l.Do(context.Background(), func() {}); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}

func TestLoopDoHonoursContext(t *testing.T) {
	l := NewLoop(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// Nothing runs the loop, so the task can only be abandoned.
	if err := l.Do(ctx, func() {}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRefresherTickRecoversPanic(t *testing.T) {
	r := NewRefresher(RefresherConfig{Logger: zerolog.Nop()}, func() error {
		panic("boom")
	})
	r.tick()
}

func TestRefresherRunsUntilCancelled(t *testing.T) {
	var calls atomic.Int32
	r := NewRefresher(RefresherConfig{Interval: 5 * time.Millisecond, Logger: zerolog.Nop()}, func() error {
		calls.Add(1)
		return errors.New("no display")
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Run(ctx)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("expected at least 2 refreshes, got %d", calls.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done
}

func TestNewRefresherDefaultsInterval(t *testing.T) {
	r := NewRefresher(RefresherConfig{}, func() error { return nil })
	if r.interval != 2*time.Second {
		t.Fatalf("expected 2s default interval, got %v", r.interval)
	}
}
