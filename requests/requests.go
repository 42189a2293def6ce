// Package requests turns call button edges into floor calls.
package requests

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"liftsim/elevio"
	"liftsim/gpio"
	"liftsim/lights"
	"liftsim/logger"
	"liftsim/timer"
)

var Log = logger.GetLogger()

// ErrNoActionableCall means a wake-up did not name any floor. The caller
// should wait again.
var ErrNoActionableCall = errors.New("requests: no actionable call")

// Source waits on every call button at once. When several floors fire
// together the lowest one is the call and the rest are dropped.
type Source struct {
	chip    gpio.Chip
	bank    *lights.Bank
	pins    []gpio.Pin
	buttons []gpio.Handle
	sleeper timer.Sleeper
	settle  time.Duration
}

// New builds a source over one button per floor. buttons[i] calls floor i.
func New(chip gpio.Chip, bank *lights.Bank, buttons []gpio.Pin, sleeper timer.Sleeper, settle time.Duration) *Source {
	s := &Source{
		chip:    chip,
		bank:    bank,
		pins:    buttons,
		buttons: make([]gpio.Handle, len(buttons)),
		sleeper: sleeper,
		settle:  settle,
	}
	for i, p := range buttons {
		s.buttons[i] = gpio.Handle(p)
	}
	return s
}

// Init claims every button as a falling-edge input.
func (s *Source) Init() {
	for i, p := range s.pins {
		h, err := s.chip.Acquire(p)
		discard(err, "acquire button", p)
		s.buttons[i] = h
		discard(s.chip.Configure(h, gpio.In, gpio.EdgeFalling), "configure button", p)
	}
}

// AwaitCall blocks until a button is pressed and returns its floor. The
// floor's acknowledgement lamp is lit before the settle delay starts.
func (s *Source) AwaitCall(ctx context.Context) (elevio.Floor, error) {
	floor, err := s.waitFired(ctx)
	if err != nil {
		return elevio.NoFloor, err
	}

	Log.Info().Msgf("LIFT button is pressed for floor #%d", floor)
	s.bank.Set(lights.GroupAck, int(floor), true)
	if err := s.sleeper.Sleep(ctx, s.settle); err != nil {
		return floor, err
	}
	return floor, nil
}

// waitFired resolves one wake-up to the lowest floor among the ready buttons.
func (s *Source) waitFired(ctx context.Context) (elevio.Floor, error) {
	Log.Info().Msg("Waiting for button press ...")

	ready, err := s.chip.WaitEdge(ctx, s.buttons)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return elevio.NoFloor, ctxErr
	}
	if err != nil {
		return elevio.NoFloor, errors.Wrapf(ErrNoActionableCall, "wait for buttons: %v", err)
	}

	floor := elevio.NoFloor
	for _, h := range ready {
		for i, b := range s.buttons {
			if b == h && (floor == elevio.NoFloor || elevio.Floor(i) < floor) {
				floor = elevio.Floor(i)
			}
		}
	}
	if floor == elevio.NoFloor {
		return elevio.NoFloor, errors.Wrapf(ErrNoActionableCall, "wake-up on %v names no button", ready)
	}
	if len(ready) > 1 {
		Log.Debug().Int("floor", int(floor)).Int("fired", len(ready)).Msg("dropping the rest of the fired set")
	}
	return floor, nil
}

// Close releases every button line.
func (s *Source) Close() {
	for i, h := range s.buttons {
		discard(s.chip.Release(h), "release button", s.pins[i])
	}
}

func discard(err error, what string, pin gpio.Pin) {
	if err != nil {
		Log.Debug().Err(err).Int("pin", int(pin)).Msg(what)
	}
}
