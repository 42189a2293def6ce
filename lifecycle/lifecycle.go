// Package lifecycle runs the lift's teardown exactly once, however the
// process is asked to stop.
package lifecycle

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"liftsim/logger"
)

var Log = logger.GetLogger()

type step struct {
	name string
	fn   func()
}

type Teardown struct {
	mu    sync.Mutex
	steps []step
	once  sync.Once
	ran   bool
}

// Add registers fn to run during teardown, after the steps added before it.
func (t *Teardown) Add(name string, fn func()) {
	t.mu.Lock()
	t.steps = append(t.steps, step{name: name, fn: fn})
	t.mu.Unlock()
}

// Run executes every step once. Later calls return immediately. A step that
// panics is logged and the remaining steps still run.
func (t *Teardown) Run() {
	t.once.Do(func() {
		t.mu.Lock()
		steps := t.steps
		t.ran = true
		t.mu.Unlock()

		for _, s := range steps {
			runStep(s)
		}
	})
}

func (t *Teardown) Ran() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ran
}

func runStep(s step) {
	defer func() {
		if r := recover(); r != nil {
			Log.Error().Interface("panic", r).Str("step", s.name).Msg("teardown step failed")
		}
	}()
	s.fn()
}

// Signals ends the returned context on SIGINT or SIGTERM.
func Signals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// Shield stops further interrupts from killing the process while the
// teardown is running.
func Shield() {
	signal.Ignore(os.Interrupt, syscall.SIGTERM)
}
