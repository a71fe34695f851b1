package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeClock advances only when slept on, so reservations are deterministic.
type fakeClock struct {
	mu  sync.Mutex
	t   time.Time
	log []time.Duration
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) sleep(_ context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
	c.log = append(c.log, d)
	return nil
}

func newTestInterval(min time.Duration, c *fakeClock) *Interval {
	l := NewInterval(min)
	l.now = c.now
	l.sleep = c.sleep
	return l
}

func TestWait_SpacesSequentialCalls(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	l := newTestInterval(500*time.Millisecond, clock)

	var stamps []time.Time
	for i := 0; i < 4; i++ {
		if err := l.Wait(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		stamps = append(stamps, clock.now())
	}
	for i := 1; i < len(stamps); i++ {
		if gap := stamps[i].Sub(stamps[i-1]); gap < 500*time.Millisecond {
			t.Fatalf("call %d only %v after previous, want >= 500ms", i, gap)
		}
	}
}

func TestWait_FirstCallDoesNotSleep(t *testing.T) {
	clock := &fakeClock{t: time.Unix(100, 0)}
	l := newTestInterval(500*time.Millisecond, clock)
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clock.log) != 0 {
		t.Fatalf("first call slept %v, want no sleep", clock.log)
	}
}

func TestWait_ConcurrentCallersGetDistinctSlots(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	l := NewInterval(500 * time.Millisecond)
	l.now = clock.now
	l.sleep = func(context.Context, time.Duration) error { return nil }

	const n = 8
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_ = l.Wait(context.Background())
		}()
	}
	wg.Wait()

	// All slots were reserved at the same fake instant, so the final
	// reservation must be (n-1) intervals out.
	want := time.Unix(0, 0).Add((n - 1) * 500 * time.Millisecond)
	if !l.last.Equal(want) {
		t.Fatalf("last reserved slot = %v, want %v", l.last, want)
	}
}

func TestWait_CanceledWhileSleeping(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	l := NewInterval(time.Second)
	l.now = clock.now
	l.sleep = func(ctx context.Context, _ time.Duration) error { return context.Canceled }

	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error on first call: %v", err)
	}
	if err := l.Wait(context.Background()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWait_NilAndZeroIntervalAreNoops(t *testing.T) {
	var l *Interval
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("nil limiter: %v", err)
	}
	z := NewInterval(0)
	if err := z.Wait(context.Background()); err != nil {
		t.Fatalf("zero interval: %v", err)
	}
}
