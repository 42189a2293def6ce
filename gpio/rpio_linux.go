//go:build linux

package gpio

import (
	"context"
	"sync"
	"time"

	"github.com/stianeikeland/go-rpio/v4"
)

// Rpio drives a Raspberry Pi through /dev/gpiomem. The SoC latches edges in
// its event detect register, which a ticker polls.
type Rpio struct {
	mu       sync.Mutex
	acquired map[Handle]bool
	inputs   map[Handle]bool
	edges    *edgeQueue
	done     chan struct{}
	once     sync.Once
}

func NewRpio(poll time.Duration) (*Rpio, error) {
	if err := rpio.Open(); err != nil {
		return nil, unavailable("rpio: open: %v", err)
	}

	r := &Rpio{
		acquired: make(map[Handle]bool),
		inputs:   make(map[Handle]bool),
		edges:    newEdgeQueue(),
		done:     make(chan struct{}),
	}
	go r.poll(poll)
	return r, nil
}

func (r *Rpio) poll(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
		}

		r.mu.Lock()
		var fired []Handle
		for h := range r.inputs {
			if rpio.Pin(h).EdgeDetected() {
				fired = append(fired, h)
			}
		}
		r.mu.Unlock()

		if len(fired) > 0 {
			r.edges.post(fired...)
		}
	}
}

func (r *Rpio) Acquire(pin Pin) (Handle, error) {
	r.mu.Lock()
	r.acquired[Handle(pin)] = true
	r.mu.Unlock()
	return Handle(pin), nil
}

func (r *Rpio) Configure(h Handle, dir Direction, edge Edge) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.acquired[h] {
		return unavailable("rpio: pin %d not acquired", h)
	}

	pin := rpio.Pin(h)
	if dir == Out {
		pin.Output()
		delete(r.inputs, h)
		return nil
	}

	pin.Input()
	pin.PullUp()
	if edge == EdgeFalling {
		pin.Detect(rpio.FallEdge)
		r.inputs[h] = true
	} else {
		pin.Detect(rpio.NoEdge)
		delete(r.inputs, h)
	}
	return nil
}

func (r *Rpio) Write(h Handle, level Level) error {
	if !r.isAcquired(h) {
		return unavailable("rpio: pin %d not acquired", h)
	}
	if level == High {
		rpio.Pin(h).High()
	} else {
		rpio.Pin(h).Low()
	}
	return nil
}

func (r *Rpio) Read(h Handle) (Level, error) {
	if !r.isAcquired(h) {
		return Low, unavailable("rpio: pin %d not acquired", h)
	}
	if rpio.Pin(h).Read() == rpio.High {
		return High, nil
	}
	return Low, nil
}

func (r *Rpio) isAcquired(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.acquired[h]
}

func (r *Rpio) WaitEdge(ctx context.Context, hs []Handle) ([]Handle, error) {
	return r.edges.wait(ctx, hs)
}

func (r *Rpio) Release(h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.inputs[h] {
		rpio.Pin(h).Detect(rpio.NoEdge)
		delete(r.inputs, h)
	}
	delete(r.acquired, h)
	r.edges.drop(h)
	return nil
}

func (r *Rpio) Close() error {
	var err error
	r.once.Do(func() {
		close(r.done)
		if cerr := rpio.Close(); cerr != nil {
			err = unavailable("rpio: close: %v", cerr)
		}
	})
	return err
}
