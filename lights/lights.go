// Package lights owns the lamps of the lift panel: the direction bar, one
// position lamp per floor and one call acknowledgement lamp per floor.
//
// The bank keeps its own model of which lamps are lit and writes through to
// the GPIO chip. Line failures are logged and dropped; the model is never
// rolled back because of them.
package lights

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"liftsim/elevio"
	"liftsim/gpio"
	"liftsim/logger"
	"liftsim/timer"
)

var Log = logger.GetLogger()

type Group int

const (
	GroupDirection Group = iota
	GroupPosition
	GroupAck
	numGroups
)

var ErrInvalidIndex = errors.New("lights: invalid index")

func GroupToString(g Group) string {
	switch g {
	case GroupDirection:
		return "direction"
	case GroupPosition:
		return "position"
	case GroupAck:
		return "ack"
	default:
		return "undefined"
	}
}

// Change is reported to observers whenever a lamp flips.
type Change struct {
	Group Group
	Index int
	On    bool
}

type Snapshot struct {
	Direction []bool
	Position  []bool
	Ack       []bool
}

type Bank struct {
	chip      gpio.Chip
	pins      [numGroups][]gpio.Pin
	handles   [numGroups][]gpio.Handle
	lit       [numGroups][]bool
	sleeper   timer.Sleeper
	step      time.Duration
	observers []func(Change)
}

// New builds a bank over the given pins. position and ack are indexed by
// floor and must be the same length.
func New(chip gpio.Chip, direction, position, ack []gpio.Pin, sleeper timer.Sleeper, step time.Duration) *Bank {
	if len(position) != len(ack) {
		panic(errors.Wrapf(ErrInvalidIndex, "%d position lamps but %d ack lamps", len(position), len(ack)))
	}

	b := &Bank{
		chip:    chip,
		sleeper: sleeper,
		step:    step,
	}
	b.pins[GroupDirection] = direction
	b.pins[GroupPosition] = position
	b.pins[GroupAck] = ack
	for g := range b.pins {
		b.lit[g] = make([]bool, len(b.pins[g]))
		b.handles[g] = make([]gpio.Handle, len(b.pins[g]))
		for i, p := range b.pins[g] {
			b.handles[g][i] = gpio.Handle(p)
		}
	}
	return b
}

// Init claims every lamp line as an output and drives it low.
func (b *Bank) Init() {
	for g := range b.pins {
		for i, p := range b.pins[g] {
			h, err := b.chip.Acquire(p)
			discard(err, "acquire lamp", p)
			b.handles[g][i] = h
			discard(b.chip.Configure(h, gpio.Out, gpio.EdgeNone), "configure lamp", p)
			discard(b.chip.Write(h, gpio.Low), "clear lamp", p)
			b.lit[g][i] = false
		}
	}
}

func (b *Bank) Observe(fn func(Change)) {
	b.observers = append(b.observers, fn)
}

func (b *Bank) Count(g Group) int {
	if g < 0 || g >= numGroups {
		return 0
	}
	return len(b.pins[g])
}

func (b *Bank) check(g Group, index int) {
	if g < 0 || g >= numGroups {
		panic(errors.Wrapf(ErrInvalidIndex, "no lamp group %d", g))
	}
	if index < 0 || index >= len(b.pins[g]) {
		panic(errors.Wrapf(ErrInvalidIndex, "%s lamp %d outside [0, %d)", GroupToString(g), index, len(b.pins[g])))
	}
}

// Set drives one lamp. Setting a lamp to its current state is harmless.
// An index outside the configured group panics with ErrInvalidIndex.
func (b *Bank) Set(g Group, index int, on bool) {
	b.check(g, index)

	level := gpio.Low
	if on {
		level = gpio.High
	}
	discard(b.chip.Write(b.handles[g][index], level), "write lamp", b.pins[g][index])

	if b.lit[g][index] == on {
		return
	}
	b.lit[g][index] = on
	for _, fn := range b.observers {
		fn(Change{Group: g, Index: index, On: on})
	}
}

func (b *Bank) Lit(g Group, index int) bool {
	b.check(g, index)
	return b.lit[g][index]
}

// LitCount is the number of lit lamps in g.
func (b *Bank) LitCount(g Group) int {
	n := 0
	for _, on := range b.lit[g] {
		if on {
			n++
		}
	}
	return n
}

func (b *Bank) Snapshot() Snapshot {
	cp := func(in []bool) []bool {
		out := make([]bool, len(in))
		copy(out, in)
		return out
	}
	return Snapshot{
		Direction: cp(b.lit[GroupDirection]),
		Position:  cp(b.lit[GroupPosition]),
		Ack:       cp(b.lit[GroupAck]),
	}
}

// SweepUp lights the direction lamps bottom to top, one per step, then
// turns them all off.
func (b *Bank) SweepUp(ctx context.Context) error {
	n := b.Count(GroupDirection)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return b.sweep(ctx, order)
}

// SweepDown is SweepUp top to bottom.
func (b *Bank) SweepDown(ctx context.Context) error {
	n := b.Count(GroupDirection)
	order := make([]int, n)
	for i := range order {
		order[i] = n - 1 - i
	}
	return b.sweep(ctx, order)
}

func (b *Bank) sweep(ctx context.Context, order []int) error {
	defer b.clearDirection()

	for _, i := range order {
		b.Set(GroupDirection, i, true)
		if err := b.sleeper.Sleep(ctx, b.step); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bank) clearDirection() {
	for i := range b.pins[GroupDirection] {
		b.Set(GroupDirection, i, false)
	}
}

// IlluminateDefault lights the position lamp of the floor the lift starts on.
func (b *Bank) IlluminateDefault(floor elevio.Floor) {
	b.Set(GroupPosition, int(floor), true)
}

// ShutdownAll clears every lamp and releases its line. It never fails and
// may be called again.
func (b *Bank) ShutdownAll() {
	for g := range b.pins {
		for i, p := range b.pins[g] {
			b.Set(Group(g), i, false)
			discard(b.chip.Release(b.handles[g][i]), "release lamp", p)
		}
	}
}

func discard(err error, what string, pin gpio.Pin) {
	if err != nil {
		Log.Debug().Err(err).Int("pin", int(pin)).Msg(what)
	}
}
