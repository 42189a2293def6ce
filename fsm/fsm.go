package fsm

import (
	"context"

	"github.com/pkg/errors"

	"liftsim/config"
	"liftsim/elevator"
	"liftsim/elevio"
	"liftsim/lights"
	"liftsim/logger"
	"liftsim/requests"
	"liftsim/timer"
)

var Log = logger.GetLogger()

// CallSource hands out one floor call at a time.
type CallSource interface {
	AwaitCall(ctx context.Context) (elevio.Floor, error)
}

// Controller moves the car one floor at a time and keeps the panel in step
// with its model.
type Controller struct {
	bank    *lights.Bank
	calls   CallSource
	sleeper timer.Sleeper
	timing  config.Timing
	state   elevator.Elevator
}

func NewController(bank *lights.Bank, calls CallSource, sleeper timer.Sleeper, timing config.Timing, defaultFloor elevio.Floor) *Controller {
	return &Controller{
		bank:    bank,
		calls:   calls,
		sleeper: sleeper,
		timing:  timing,
		state:   elevator.ElevatorInit(defaultFloor),
	}
}

func (c *Controller) State() elevator.Elevator {
	return c.state
}

// Start lights the position lamp of the floor the car starts on.
func (c *Controller) Start() {
	c.bank.IlluminateDefault(c.state.Floor)
}

// Service takes the car to requested and clears that floor's ack lamp.
// Every floor on the way is shown in turn, each after a full direction sweep.
func (c *Controller) Service(ctx context.Context, requested elevio.Floor) error {
	if n := c.bank.Count(lights.GroupPosition); !requested.Valid(n) {
		panic(errors.Wrapf(lights.ErrInvalidIndex, "floor %d outside [0, %d)", requested, n))
	}

	dirn := elevator.ChooseDirection(c.state, requested)
	if dirn != elevio.D_Idle {
		Log.Info().Msgf("LIFT going %s to floor #%d", elevio.DirnToString(dirn), requested)
		c.state.Depart()
	}

	for c.state.Floor != requested {
		if err := c.step(ctx, dirn); err != nil {
			c.state.Moving = false
			c.state.Behaviour = elevator.EB_Idle
			return err
		}
	}

	c.state.Arrive(requested)
	c.bank.Set(lights.GroupAck, int(requested), false)
	return nil
}

func (c *Controller) step(ctx context.Context, dirn elevio.Dirn) error {
	sweep := c.bank.SweepUp
	if dirn == elevio.D_Down {
		sweep = c.bank.SweepDown
	}
	if err := sweep(ctx); err != nil {
		return err
	}
	if err := c.sleeper.Sleep(ctx, c.timing.SweepPause); err != nil {
		return err
	}

	from := c.state.Floor
	to := from + elevio.Floor(dirn)
	c.bank.Set(lights.GroupPosition, int(from), false)
	c.bank.Set(lights.GroupPosition, int(to), true)
	c.state.Floor = to

	return c.sleeper.Sleep(ctx, c.timing.FloorSettle)
}

// Run serves calls until ctx ends. It only returns with an error.
func (c *Controller) Run(ctx context.Context) error {
	for {
		floor, err := c.calls.AwaitCall(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if errors.Is(err, requests.ErrNoActionableCall) {
			Log.Debug().Err(err).Msg("no call to serve")
			if err := c.sleeper.Sleep(ctx, c.timing.RetryBackoff); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}

		if err := c.Service(ctx, floor); err != nil {
			return err
		}
		if err := c.sleeper.Sleep(ctx, c.timing.ArrivalDwell); err != nil {
			return err
		}
	}
}
