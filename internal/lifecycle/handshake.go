package lifecycle

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

type signal struct {
	sem *semaphore.Weighted
}

func newSignal(available bool) signal {
	sem := semaphore.NewWeighted(1)
	if !available {
		sem.TryAcquire(1)
	}
	return signal{sem}
}

func (s signal) wait(ctx context.Context) error {
	return s.sem.Acquire(ctx, 1)
}

func (s signal) post() {
	s.sem.Release(1)
}

// Handshake makes the allocator and the tracker take strict turns: the n-th
// observation happens after the n-th mutation and before the (n+1)-th.
type Handshake struct {
	allocTurn signal
	trackTurn signal
	done      atomic.Bool
}

func NewHandshake() *Handshake {
	return &Handshake{
		allocTurn: newSignal(true),
		trackTurn: newSignal(false),
	}
}

func (h *Handshake) AllocStep(ctx context.Context, last bool, mutate func()) error {
	if err := h.allocTurn.wait(ctx); err != nil {
		return err
	}
	mutate()
	if last {
		h.done.Store(true)
	}
	h.trackTurn.post()
	return nil
}

// TrackStep runs one observation on the tracker's turn and hands the turn
// back. done reports whether the observed mutation was the last one; it is
// read while the turn is still held so it can never refer to a later step.
func (h *Handshake) TrackStep(ctx context.Context, observe func() error) (done bool, err error) {
	if err = h.trackTurn.wait(ctx); err != nil {
		return false, err
	}
	err = observe()
	done = h.done.Load()
	h.allocTurn.post()
	return done, err
}
