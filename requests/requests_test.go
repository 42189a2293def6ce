package requests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"liftsim/elevio"
	"liftsim/gpio"
	"liftsim/lights"
	"liftsim/logger"
	"liftsim/timer"
)

const TEST_TIMEOUT = 2 * time.Second

var (
	buttons = []gpio.Pin{14, 27, 22, 65}
	dirPins = []gpio.Pin{30, 66, 60, 67, 31, 69, 50}
	posPins = []gpio.Pin{49, 47, 15, 46}
	ackPins = []gpio.Pin{3, 23, 2, 26}
)

type fixture struct {
	sim    *gpio.Sim
	bank   *lights.Bank
	rec    *timer.Recorder
	source *Source
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	_ = logger.GetLoggerConfigured(zerolog.Disabled)

	f := &fixture{sim: gpio.NewSim(), rec: &timer.Recorder{}}
	f.bank = lights.New(f.sim, dirPins, posPins, ackPins, f.rec, 500*time.Millisecond)
	f.bank.Init()
	f.source = New(f.sim, f.bank, buttons, f.rec, time.Second)
	f.source.Init()
	return f
}

func press(t *testing.T, ctx context.Context, sim *gpio.Sim, pins ...gpio.Pin) {
	t.Helper()
	go func() {
		if err := sim.Press(ctx, pins...); err != nil && ctx.Err() == nil {
			t.Errorf("Press failed: %v", err)
		}
	}()
}

func TestAwaitCallSingleButton(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), TEST_TIMEOUT)
	defer cancel()

	press(t, ctx, f.sim, buttons[2])
	floor, err := f.source.AwaitCall(ctx)
	if err != nil {
		t.Fatalf("AwaitCall failed: %v", err)
	}
	if floor != 2 {
		t.Errorf("AwaitCall = %d, want 2", floor)
	}
	if !f.bank.Lit(lights.GroupAck, 2) {
		t.Error("ack lamp 2 not lit on resolution")
	}
	if f.bank.LitCount(lights.GroupAck) != 1 {
		t.Errorf("ack lamps = %v, want only floor 2", f.bank.Snapshot().Ack)
	}
	if got := f.rec.Slept(); len(got) != 1 || got[0] != time.Second {
		t.Errorf("settle delays = %v, want [1s]", got)
	}
}

func TestAwaitCallAckLitBeforeSettle(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), TEST_TIMEOUT)
	defer cancel()

	var litAtSettle bool
	f.source.sleeper = sleeperFunc(func(ctx context.Context, d time.Duration) error {
		litAtSettle = f.bank.Lit(lights.GroupAck, 1)
		return nil
	})

	press(t, ctx, f.sim, buttons[1])
	if _, err := f.source.AwaitCall(ctx); err != nil {
		t.Fatalf("AwaitCall failed: %v", err)
	}
	if !litAtSettle {
		t.Error("ack lamp was not lit when the settle delay started")
	}
}

func TestAwaitCallSimultaneousLowestFirst(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), TEST_TIMEOUT)
	defer cancel()

	press(t, ctx, f.sim, buttons[3], buttons[1])

	first, err := f.source.AwaitCall(ctx)
	if err != nil {
		t.Fatalf("AwaitCall failed: %v", err)
	}
	if first != 1 {
		t.Errorf("first call = %d, want 1", first)
	}
	if f.bank.Lit(lights.GroupAck, 3) {
		t.Error("ack lamp 3 lit for a dropped floor")
	}
}

func TestAwaitCallDropsRestOfFiredSet(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), TEST_TIMEOUT)
	defer cancel()

	press(t, ctx, f.sim, buttons[1], buttons[3])
	if floor, err := f.source.AwaitCall(ctx); err != nil || floor != 1 {
		t.Fatalf("AwaitCall = %d, %v, want 1", floor, err)
	}

	short, cancelShort := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancelShort()
	if floor, err := f.source.AwaitCall(short); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("AwaitCall without a new press = %d, %v, want it to block", floor, err)
	}

	press(t, ctx, f.sim, buttons[3])
	floor, err := f.source.AwaitCall(ctx)
	if err != nil {
		t.Fatalf("AwaitCall failed: %v", err)
	}
	if floor != 3 {
		t.Errorf("call after a new press = %d, want 3", floor)
	}
}

func TestAwaitCallUnreadableInput(t *testing.T) {
	f := newFixture(t)
	f.source.chip = failingChip{f.sim}

	floor, err := f.source.AwaitCall(context.Background())
	if !errors.Is(err, ErrNoActionableCall) {
		t.Errorf("AwaitCall error = %v, want ErrNoActionableCall", err)
	}
	if floor != elevio.NoFloor {
		t.Errorf("AwaitCall = %d, want NoFloor", floor)
	}
	if f.bank.LitCount(lights.GroupAck) != 0 {
		t.Error("ack lamp lit for a failed wait")
	}
}

func TestAwaitCallSpuriousWakeUp(t *testing.T) {
	f := newFixture(t)
	f.source.chip = spuriousChip{f.sim}

	if _, err := f.source.AwaitCall(context.Background()); !errors.Is(err, ErrNoActionableCall) {
		t.Errorf("AwaitCall error = %v, want ErrNoActionableCall", err)
	}
}

func TestAwaitCallCancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := f.source.AwaitCall(ctx)
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("AwaitCall = %v, want context.Canceled", err)
		}
	case <-time.After(TEST_TIMEOUT):
		t.Fatal("AwaitCall did not return after cancel")
	}
}

func TestCloseReleasesButtons(t *testing.T) {
	f := newFixture(t)
	f.source.Close()
	f.source.Close()

	for _, p := range buttons {
		if f.sim.Acquired(p) {
			t.Errorf("button %d still acquired", p)
		}
	}
}

type sleeperFunc func(ctx context.Context, d time.Duration) error

func (f sleeperFunc) Sleep(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

type failingChip struct{ *gpio.Sim }

func (failingChip) WaitEdge(context.Context, []gpio.Handle) ([]gpio.Handle, error) {
	return nil, gpio.ErrResourceUnavailable
}

type spuriousChip struct{ *gpio.Sim }

func (spuriousChip) WaitEdge(context.Context, []gpio.Handle) ([]gpio.Handle, error) {
	return []gpio.Handle{999}, nil
}
