package timer

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRealSleep(t *testing.T) {
	start := time.Now()
	if err := (Real{}).Sleep(context.Background(), 20*time.Millisecond); err != nil {
		t.Fatalf("Sleep failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Sleep returned after %v, want at least 20ms", elapsed)
	}
}

func TestRealSleepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := (Real{}).Sleep(ctx, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Sleep = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Error("cancelled Sleep did not return promptly")
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Sleep(context.Background(), 500*time.Millisecond)
	r.Sleep(context.Background(), time.Second)

	if got := r.Slept(); len(got) != 2 || got[0] != 500*time.Millisecond || got[1] != time.Second {
		t.Errorf("Slept() = %v", got)
	}
	if r.Total() != 1500*time.Millisecond {
		t.Errorf("Total() = %v, want 1.5s", r.Total())
	}
	r.Reset()
	if len(r.Slept()) != 0 {
		t.Errorf("Slept() after Reset = %v", r.Slept())
	}
}
