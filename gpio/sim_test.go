package gpio

import (
	"context"
	"errors"
	"testing"
	"time"
)

const testTimeout = 2 * time.Second

func newButtons(t *testing.T, s *Sim, pins ...Pin) []Handle {
	t.Helper()
	hs := make([]Handle, len(pins))
	for i, p := range pins {
		h, err := s.Acquire(p)
		if err != nil {
			t.Fatalf("Acquire(%d) failed: %v", p, err)
		}
		if err := s.Configure(h, In, EdgeFalling); err != nil {
			t.Fatalf("Configure(%d) failed: %v", p, err)
		}
		hs[i] = h
	}
	return hs
}

func TestSimOutputs(t *testing.T) {
	s := NewSim()
	h, _ := s.Acquire(47)
	if err := s.Configure(h, Out, EdgeNone); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}

	s.Write(h, High)
	if s.Level(47) != High {
		t.Errorf("Level(47) = %v, want High", s.Level(47))
	}
	s.Write(h, Low)

	want := []Write{{47, High}, {47, Low}}
	got := s.History()
	if len(got) != len(want) {
		t.Fatalf("History() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("History()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if err := s.Release(h); err != nil {
		t.Errorf("Release failed: %v", err)
	}
	if err := s.Write(h, High); !errors.Is(err, ErrResourceUnavailable) {
		t.Errorf("Write after Release = %v, want ErrResourceUnavailable", err)
	}
}

func TestSimWriteToInputFails(t *testing.T) {
	s := NewSim()
	hs := newButtons(t, s, 14)
	if err := s.Write(hs[0], High); !errors.Is(err, ErrResourceUnavailable) {
		t.Errorf("Write to input = %v, want ErrResourceUnavailable", err)
	}
	if lvl, _ := s.Read(hs[0]); lvl != High {
		t.Errorf("idle input level = %v, want High", lvl)
	}
}

func TestSimFailingPin(t *testing.T) {
	s := NewSim()
	s.Fail(3)

	if _, err := s.Acquire(3); !errors.Is(err, ErrResourceUnavailable) {
		t.Errorf("Acquire(failing) = %v, want ErrResourceUnavailable", err)
	}
	if err := s.Write(Handle(3), High); !errors.Is(err, ErrResourceUnavailable) {
		t.Errorf("Write(failing) = %v, want ErrResourceUnavailable", err)
	}
	if err := s.Release(Handle(3)); !errors.Is(err, ErrResourceUnavailable) {
		t.Errorf("Release(failing) = %v, want ErrResourceUnavailable", err)
	}
}

func TestSimWaitEdgeReturnsFiredSet(t *testing.T) {
	s := NewSim()
	hs := newButtons(t, s, 14, 27, 22, 65)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	go s.Press(ctx, 65, 27)

	ready, err := s.WaitEdge(ctx, hs)
	if err != nil {
		t.Fatalf("WaitEdge failed: %v", err)
	}
	if len(ready) != 2 || ready[0] != hs[1] || ready[1] != hs[3] {
		t.Errorf("WaitEdge = %v, want [%d %d]", ready, hs[1], hs[3])
	}
}

func TestSimStaleEdgesAreDropped(t *testing.T) {
	s := NewSim()
	hs := newButtons(t, s, 14, 27)

	// Nobody is waiting yet, so this edge is lost.
	s.Pulse(14)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := s.WaitEdge(ctx, hs); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitEdge = %v, want context.DeadlineExceeded", err)
	}
}

func TestSimWaitEdgeCancelled(t *testing.T) {
	s := NewSim()
	hs := newButtons(t, s, 14)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := s.WaitEdge(ctx, hs)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("WaitEdge = %v, want context.Canceled", err)
		}
	case <-time.After(testTimeout):
		t.Fatal("WaitEdge did not return after cancel")
	}
}

func TestOpen(t *testing.T) {
	c, err := Open(BackendSim, Options{})
	if err != nil {
		t.Fatalf("Open(sim) failed: %v", err)
	}
	if _, ok := c.(*Sim); !ok {
		t.Errorf("Open(sim) = %T, want *Sim", c)
	}

	if _, err := Open("bogus", Options{}); err == nil {
		t.Error("Open(bogus) succeeded, want error")
	}
}
