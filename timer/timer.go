package timer

import (
	"context"
	"sync"
	"time"
)

// Sleeper holds the control flow for a settle delay.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// Real sleeps on the wall clock and wakes early when ctx ends.
type Real struct{}

func (Real) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Recorder returns at once and remembers every delay it was asked for.
type Recorder struct {
	mu    sync.Mutex
	slept []time.Duration
}

func (r *Recorder) Sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.slept = append(r.slept, d)
	r.mu.Unlock()
	return ctx.Err()
}

func (r *Recorder) Slept() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]time.Duration, len(r.slept))
	copy(out, r.slept)
	return out
}

func (r *Recorder) Total() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total time.Duration
	for _, d := range r.slept {
		total += d
	}
	return total
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.slept = nil
	r.mu.Unlock()
}
