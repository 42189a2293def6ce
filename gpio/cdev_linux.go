//go:build linux

package gpio

import (
	"context"
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"
)

const (
	cdevConsumer     = "liftsim"
	cdevLinesPerChip = 32
)

// Cdev uses the GPIO character device. Lines are requested on Configure,
// since a uAPI request carries its direction.
type Cdev struct {
	chip  string
	mu    sync.Mutex
	known map[Handle]bool
	lines map[Handle]*gpiocdev.Line
	edges *edgeQueue
}

func NewCdev(chip string) *Cdev {
	return &Cdev{
		chip:  chip,
		known: make(map[Handle]bool),
		lines: make(map[Handle]*gpiocdev.Line),
		edges: newEdgeQueue(),
	}
}

func (c *Cdev) locate(h Handle) (string, int) {
	if c.chip != "" {
		return c.chip, int(h)
	}
	return fmt.Sprintf("gpiochip%d", int(h)/cdevLinesPerChip), int(h) % cdevLinesPerChip
}

func (c *Cdev) Acquire(pin Pin) (Handle, error) {
	c.mu.Lock()
	c.known[Handle(pin)] = true
	c.mu.Unlock()
	return Handle(pin), nil
}

func (c *Cdev) Configure(h Handle, dir Direction, edge Edge) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.known[h] {
		return unavailable("cdev: line %d not acquired", h)
	}
	if l, ok := c.lines[h]; ok {
		l.Close()
		delete(c.lines, h)
	}

	opts := []gpiocdev.LineReqOption{gpiocdev.WithConsumer(cdevConsumer)}
	if dir == Out {
		opts = append(opts, gpiocdev.AsOutput(0))
	} else {
		opts = append(opts, gpiocdev.AsInput)
		if edge == EdgeFalling {
			opts = append(opts,
				gpiocdev.WithFallingEdge,
				gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) {
					c.edges.post(h)
				}))
		}
	}

	chip, offset := c.locate(h)
	l, err := gpiocdev.RequestLine(chip, offset, opts...)
	if err != nil {
		return unavailable("cdev: request %s:%d: %v", chip, offset, err)
	}
	c.lines[h] = l
	return nil
}

func (c *Cdev) line(h Handle) (*gpiocdev.Line, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.lines[h]
	if !ok {
		return nil, unavailable("cdev: line %d not configured", h)
	}
	return l, nil
}

func (c *Cdev) Write(h Handle, level Level) error {
	l, err := c.line(h)
	if err != nil {
		return err
	}
	if err := l.SetValue(int(level)); err != nil {
		return unavailable("cdev: set %d: %v", h, err)
	}
	return nil
}

func (c *Cdev) Read(h Handle) (Level, error) {
	l, err := c.line(h)
	if err != nil {
		return Low, err
	}
	v, err := l.Value()
	if err != nil {
		return Low, unavailable("cdev: get %d: %v", h, err)
	}
	if v != 0 {
		return High, nil
	}
	return Low, nil
}

func (c *Cdev) WaitEdge(ctx context.Context, hs []Handle) ([]Handle, error) {
	return c.edges.wait(ctx, hs)
}

func (c *Cdev) Release(h Handle) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.known, h)
	c.edges.drop(h)
	l, ok := c.lines[h]
	if !ok {
		return nil
	}
	delete(c.lines, h)
	if err := l.Close(); err != nil {
		return unavailable("cdev: close %d: %v", h, err)
	}
	return nil
}

func (c *Cdev) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for h, l := range c.lines {
		l.Close()
		delete(c.lines, h)
	}
	return nil
}
