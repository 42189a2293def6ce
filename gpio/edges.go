package gpio

import (
	"context"
	"sync"
)

// edgeQueue multiplexes per-line edge notifications into one blocking wait.
// Edges are only kept for lines armed by a wait in progress; arming drops
// anything older, the same way a fresh read of a sysfs value file does.
type edgeQueue struct {
	mu      sync.Mutex
	armed   map[Handle]bool
	pending map[Handle]bool
	notify  chan struct{}
	armedCh chan struct{}
}

func newEdgeQueue() *edgeQueue {
	return &edgeQueue{
		pending: make(map[Handle]bool),
		notify:  make(chan struct{}, 1),
		armedCh: make(chan struct{}),
	}
}

func (q *edgeQueue) wait(ctx context.Context, hs []Handle) ([]Handle, error) {
	q.mu.Lock()
	q.armed = make(map[Handle]bool, len(hs))
	for _, h := range hs {
		q.armed[h] = true
		delete(q.pending, h)
	}
	close(q.armedCh)
	q.armedCh = make(chan struct{})
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		q.armed = nil
		q.mu.Unlock()
	}()

	for {
		q.mu.Lock()
		ready := make(map[Handle]bool)
		for _, h := range hs {
			if q.pending[h] {
				ready[h] = true
				delete(q.pending, h)
			}
		}
		q.mu.Unlock()

		if len(ready) > 0 {
			return orderLike(hs, ready), nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.notify:
		}
	}
}

// post records edges on hs in one step so a waiter sees them as one fired set.
func (q *edgeQueue) post(hs ...Handle) {
	q.mu.Lock()
	posted := false
	for _, h := range hs {
		if q.armed[h] {
			q.pending[h] = true
			posted = true
		}
	}
	q.mu.Unlock()

	if posted {
		select {
		case q.notify <- struct{}{}:
		default:
		}
	}
}

func (q *edgeQueue) awaitArmed(ctx context.Context, hs ...Handle) error {
	for {
		q.mu.Lock()
		all := true
		for _, h := range hs {
			if !q.armed[h] {
				all = false
				break
			}
		}
		ch := q.armedCh
		q.mu.Unlock()

		if all {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		}
	}
}

func (q *edgeQueue) drop(h Handle) {
	q.mu.Lock()
	delete(q.pending, h)
	q.mu.Unlock()
}
