package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Interval enforces a minimum spacing between calls across every caller
// sharing the limiter. Wait reserves the next free slot under the lock and
// sleeps outside it, so the lock is held only for bookkeeping and never for
// the duration of the wait itself.
type Interval struct {
	mu   sync.Mutex
	min  time.Duration
	last time.Time

	// test seams
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// NewInterval returns a limiter spacing calls at least min apart.
func NewInterval(min time.Duration) *Interval {
	return &Interval{
		min:   min,
		now:   time.Now,
		sleep: sleepFor,
	}
}

// Wait blocks until the caller's reserved slot arrives or ctx is done.
// Concurrent callers are granted slots in arrival order, each at least the
// configured interval after the previous one.
func (l *Interval) Wait(ctx context.Context) error {
	if l == nil || l.min <= 0 {
		return ctx.Err()
	}
	l.mu.Lock()
	now := l.now()
	slot := l.last.Add(l.min)
	if slot.Before(now) {
		slot = now
	}
	l.last = slot
	l.mu.Unlock()

	if d := slot.Sub(now); d > 0 {
		if err := l.sleep(ctx, d); err != nil {
			return err
		}
	}
	return ctx.Err()
}

func sleepFor(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
