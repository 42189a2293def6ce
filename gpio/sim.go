package gpio

import (
	"context"
	"sync"
)

// Sim is an in-memory chip. Inputs idle high; Press drives falling edges on
// them. Every write to an output is kept in History.
type Sim struct {
	mu      sync.Mutex
	lines   map[Handle]*simLine
	failing map[Pin]bool
	history []Write
	edges   *edgeQueue
}

type simLine struct {
	dir   Direction
	edge  Edge
	level Level
}

// Write is one recorded output change.
type Write struct {
	Pin   Pin
	Level Level
}

func NewSim() *Sim {
	return &Sim{
		lines:   make(map[Handle]*simLine),
		failing: make(map[Pin]bool),
		edges:   newEdgeQueue(),
	}
}

func (s *Sim) Acquire(pin Pin) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := Handle(pin)
	if s.failing[pin] {
		return h, unavailable("sim: acquire %d", pin)
	}
	if _, ok := s.lines[h]; !ok {
		s.lines[h] = &simLine{}
	}
	return h, nil
}

func (s *Sim) Configure(h Handle, dir Direction, edge Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.line(h)
	if err != nil {
		return err
	}
	l.dir, l.edge = dir, edge
	if dir == In {
		l.level = High
	} else {
		l.level = Low
	}
	return nil
}

func (s *Sim) Write(h Handle, level Level) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.line(h)
	if err != nil {
		return err
	}
	if l.dir != Out {
		return unavailable("sim: write to input %d", h)
	}
	l.level = level
	s.history = append(s.history, Write{Pin: Pin(h), Level: level})
	return nil
}

func (s *Sim) Read(h Handle) (Level, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.line(h)
	if err != nil {
		return Low, err
	}
	return l.level, nil
}

func (s *Sim) WaitEdge(ctx context.Context, hs []Handle) ([]Handle, error) {
	return s.edges.wait(ctx, hs)
}

func (s *Sim) Release(h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failing[Pin(h)] {
		return unavailable("sim: release %d", h)
	}
	delete(s.lines, h)
	s.edges.drop(h)
	return nil
}

func (s *Sim) Close() error {
	return nil
}

func (s *Sim) line(h Handle) (*simLine, error) {
	if s.failing[Pin(h)] {
		return nil, unavailable("sim: line %d failing", h)
	}
	l, ok := s.lines[h]
	if !ok {
		return nil, unavailable("sim: line %d not acquired", h)
	}
	return l, nil
}

// Press waits until a WaitEdge is armed on all pins and then fires a falling
// edge on each of them at once.
func (s *Sim) Press(ctx context.Context, pins ...Pin) error {
	hs := make([]Handle, len(pins))
	for i, p := range pins {
		hs[i] = Handle(p)
	}
	if err := s.edges.awaitArmed(ctx, hs...); err != nil {
		return err
	}
	s.Pulse(pins...)
	return nil
}

// Pulse fires falling edges without waiting. Edges on lines nobody is
// waiting for are lost.
func (s *Sim) Pulse(pins ...Pin) {
	hs := make([]Handle, 0, len(pins))
	s.mu.Lock()
	for _, p := range pins {
		l, ok := s.lines[Handle(p)]
		if !ok || l.dir != In || l.edge != EdgeFalling {
			continue
		}
		hs = append(hs, Handle(p))
	}
	s.mu.Unlock()

	s.edges.post(hs...)
}

// Fail makes every later operation on pin report ErrResourceUnavailable.
func (s *Sim) Fail(pin Pin) {
	s.mu.Lock()
	s.failing[pin] = true
	s.mu.Unlock()
}

func (s *Sim) Level(pin Pin) Level {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.lines[Handle(pin)]; ok {
		return l.level
	}
	return Low
}

func (s *Sim) Acquired(pin Pin) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.lines[Handle(pin)]
	return ok
}

func (s *Sim) History() []Write {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Write, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Sim) ResetHistory() {
	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()
}
