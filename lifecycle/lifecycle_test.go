package lifecycle

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"liftsim/logger"
)

func TestTeardownRunsOnceInOrder(t *testing.T) {
	var td Teardown
	var order []string
	td.Add("lamps", func() { order = append(order, "lamps") })
	td.Add("buttons", func() { order = append(order, "buttons") })

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			td.Run()
		}()
	}
	wg.Wait()
	td.Run()

	if len(order) != 2 || order[0] != "lamps" || order[1] != "buttons" {
		t.Errorf("steps ran as %v, want [lamps buttons]", order)
	}
	if !td.Ran() {
		t.Error("Ran() = false after Run")
	}
}

func TestTeardownSurvivesPanickingStep(t *testing.T) {
	_ = logger.GetLoggerConfigured(zerolog.Disabled)

	var td Teardown
	reached := false
	td.Add("bad", func() { panic("line stuck") })
	td.Add("good", func() { reached = true })
	td.Run()

	if !reached {
		t.Error("step after a panicking step did not run")
	}
}

func TestSignalsFollowsParent(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := Signals(parent)
	defer stop()

	cancel()
	<-ctx.Done()
	if ctx.Err() != context.Canceled {
		t.Errorf("ctx.Err() = %v, want context.Canceled", ctx.Err())
	}
}
