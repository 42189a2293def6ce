package gpio

import (
	"context"
	"fmt"
	"sync"
	"time"

	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Periph resolves pins by their "GPIO<n>" names in the periph registry.
// Each edge-triggered input gets a watcher blocked in WaitForEdge.
type Periph struct {
	mu       sync.Mutex
	pins     map[Handle]pgpio.PinIO
	watchers map[Handle]chan struct{}
	edges    *edgeQueue
}

func NewPeriph() (*Periph, error) {
	if _, err := host.Init(); err != nil {
		return nil, unavailable("periph: host init: %v", err)
	}
	return &Periph{
		pins:     make(map[Handle]pgpio.PinIO),
		watchers: make(map[Handle]chan struct{}),
		edges:    newEdgeQueue(),
	}, nil
}

func (p *Periph) Acquire(pin Pin) (Handle, error) {
	h := Handle(pin)
	io := gpioreg.ByName(fmt.Sprintf("GPIO%d", pin))
	if io == nil {
		return h, unavailable("periph: no pin GPIO%d", pin)
	}

	p.mu.Lock()
	p.pins[h] = io
	p.mu.Unlock()
	return h, nil
}

func (p *Periph) pin(h Handle) (pgpio.PinIO, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	io, ok := p.pins[h]
	if !ok {
		return nil, unavailable("periph: pin %d not acquired", h)
	}
	return io, nil
}

func (p *Periph) Configure(h Handle, dir Direction, edge Edge) error {
	io, err := p.pin(h)
	if err != nil {
		return err
	}
	p.stopWatcher(h)

	if dir == Out {
		if err := io.Out(pgpio.Low); err != nil {
			return unavailable("periph: %s out: %v", io, err)
		}
		return nil
	}

	pe := pgpio.NoEdge
	if edge == EdgeFalling {
		pe = pgpio.FallingEdge
	}
	if err := io.In(pgpio.PullUp, pe); err != nil {
		return unavailable("periph: %s in: %v", io, err)
	}
	if edge == EdgeFalling {
		p.startWatcher(h, io)
	}
	return nil
}

func (p *Periph) startWatcher(h Handle, io pgpio.PinIO) {
	done := make(chan struct{})
	p.mu.Lock()
	p.watchers[h] = done
	p.mu.Unlock()

	go func() {
		for {
			if io.WaitForEdge(-1) {
				p.edges.post(h)
				continue
			}
			// WaitForEdge gives up when the pin is halted or reconfigured.
			select {
			case <-done:
				return
			case <-time.After(10 * time.Millisecond):
			}
		}
	}()
}

func (p *Periph) stopWatcher(h Handle) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if done, ok := p.watchers[h]; ok {
		close(done)
		delete(p.watchers, h)
	}
}

func (p *Periph) Write(h Handle, level Level) error {
	io, err := p.pin(h)
	if err != nil {
		return err
	}
	if err := io.Out(level == High); err != nil {
		return unavailable("periph: %s write: %v", io, err)
	}
	return nil
}

func (p *Periph) Read(h Handle) (Level, error) {
	io, err := p.pin(h)
	if err != nil {
		return Low, err
	}
	if io.Read() == pgpio.High {
		return High, nil
	}
	return Low, nil
}

func (p *Periph) WaitEdge(ctx context.Context, hs []Handle) ([]Handle, error) {
	return p.edges.wait(ctx, hs)
}

func (p *Periph) Release(h Handle) error {
	io, err := p.pin(h)
	if err != nil {
		return err
	}
	p.stopWatcher(h)
	p.edges.drop(h)

	p.mu.Lock()
	delete(p.pins, h)
	p.mu.Unlock()

	if err := io.Halt(); err != nil {
		return unavailable("periph: %s halt: %v", io, err)
	}
	return nil
}

func (p *Periph) Close() error {
	p.mu.Lock()
	hs := make([]Handle, 0, len(p.pins))
	for h := range p.pins {
		hs = append(hs, h)
	}
	p.mu.Unlock()

	for _, h := range hs {
		p.Release(h)
	}
	return nil
}
