// Package gpio is the line abstraction the lift core talks to. Every backend
// exposes the same six operations: acquire, configure, write, read, a
// multiplexed wait for edges and release. Backend failures are reported as
// errors matching ErrResourceUnavailable. It is up to the caller to decide
// whether to act on them.
package gpio

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Pin is a board-level line number. On the sysfs backend it is the kernel's
// global GPIO number, e.g. (bank * 32) + offset on a BeagleBone.
type Pin int

// Handle identifies an acquired line.
type Handle int

type Direction int

const (
	In Direction = iota
	Out
)

type Edge int

const (
	EdgeNone Edge = iota
	EdgeFalling
)

type Level int

const (
	Low  Level = 0
	High Level = 1
)

var ErrResourceUnavailable = errors.New("gpio: resource unavailable")

// Chip is implemented by every backend.
type Chip interface {
	Acquire(pin Pin) (Handle, error)
	Configure(h Handle, dir Direction, edge Edge) error
	Write(h Handle, level Level) error
	Read(h Handle) (Level, error)
	// WaitEdge blocks until at least one of hs has seen an edge since the
	// wait was armed and returns every such handle, in the order of hs.
	WaitEdge(ctx context.Context, hs []Handle) ([]Handle, error)
	Release(h Handle) error
	Close() error
}

const (
	BackendSysfs    = "sysfs"
	BackendCdev     = "cdev"
	BackendPeriph   = "periph"
	BackendRpio     = "rpio"
	BackendKeyboard = "keyboard"
	BackendSim      = "sim"
)

const DefaultSysfsDir = "/sys/class/gpio"

type Options struct {
	SysfsDir string
	// Chip pins every line to one character device. Empty means pin p lives
	// on gpiochip(p/32) at offset p%32.
	Chip         string
	PollInterval time.Duration
	// KeyPins maps digit keys to button pins for the keyboard backend:
	// KeyPins[3] is pressed with '3'.
	KeyPins []Pin
}

// Open returns the backend registered under name.
func Open(name string, opts Options) (Chip, error) {
	if opts.SysfsDir == "" {
		opts.SysfsDir = DefaultSysfsDir
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 10 * time.Millisecond
	}

	switch name {
	case BackendPeriph:
		p, err := NewPeriph()
		if err != nil {
			return nil, err
		}
		return p, nil
	case BackendKeyboard:
		k, err := NewKeyboard(opts.KeyPins)
		if err != nil {
			return nil, err
		}
		return k, nil
	case BackendSim:
		return NewSim(), nil
	default:
		return openPlatform(name, opts)
	}
}

func unavailable(format string, args ...interface{}) error {
	return errors.Wrapf(ErrResourceUnavailable, format, args...)
}

func DirectionToString(d Direction) string {
	switch d {
	case In:
		return "in"
	case Out:
		return "out"
	default:
		return "undefined"
	}
}

func EdgeToString(e Edge) string {
	switch e {
	case EdgeNone:
		return "none"
	case EdgeFalling:
		return "falling"
	default:
		return "undefined"
	}
}

func orderLike(hs []Handle, ready map[Handle]bool) []Handle {
	out := make([]Handle, 0, len(ready))
	for _, h := range hs {
		if ready[h] {
			out = append(out, h)
		}
	}
	return out
}
