// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package throttle bounds the GPU work a frame pacer keeps in flight.
//
// A Throttle pairs a counting semaphore, sized to the swapchain image count,
// with a small ring recording the command buffers that were submitted
// recently. Acquire is taken before a frame's work reaches the queue and
// Release is called from the buffer's completion handler, so the number of
// outstanding submissions never exceeds Capacity.
//
// The ring is bookkeeping only. Evicting a record never cancels GPU work;
// it exists so DrainAll can wait for recent buffers to be scheduled before
// the application is suspended.
//
// Liveness: a GPU that never completes a buffer never returns its permit,
// and Acquire then blocks forever. The throttle does not time out or retry.
package throttle

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/gogpu/pacer/internal/nopslog"
)

var (
	// ErrInvalidCapacity is returned by New for a capacity below one.
	ErrInvalidCapacity = errors.New("throttle: capacity must be positive")

	// ErrClosed is returned by AcquireContext once the throttle is closed.
	ErrClosed = errors.New("throttle: closed")
)

// Buffer is a submitted command buffer as seen by the throttle.
// swapchain.CommandBuffer satisfies it.
type Buffer interface {
	WaitUntilScheduled()
}

// Throttle is the submission budget plus the in-flight ring.
// All methods are safe for concurrent use.
type Throttle struct {
	mu          sync.Mutex
	cond        *sync.Cond
	capacity    int
	outstanding int
	ring        []Buffer // oldest first, len <= capacity
	closed      bool
	evicted     uint64
	log         *slog.Logger
}

// New creates a throttle allowing capacity outstanding submissions.
func New(capacity int) (*Throttle, error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	t := &Throttle{
		capacity: capacity,
		ring:     make([]Buffer, 0, capacity),
		log:      nopslog.New(),
	}
	t.cond = sync.NewCond(&t.mu)
	return t, nil
}

// SetLogger sets the logger used for ring diagnostics. Nil disables logging.
func (t *Throttle) SetLogger(l *slog.Logger) {
	l = nopslog.Or(l)
	t.mu.Lock()
	t.log = l
	t.mu.Unlock()
}

// Acquire blocks until fewer than Capacity submissions are outstanding and
// takes a permit.
func (t *Throttle) Acquire() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for t.outstanding >= t.capacity {
		t.cond.Wait()
	}
	t.outstanding++
}

// TryAcquire takes a permit if one is free without blocking.
func (t *Throttle) TryAcquire() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.outstanding >= t.capacity {
		return false
	}
	t.outstanding++
	return true
}

// AcquireContext is Acquire with cancellation. It returns ctx.Err() when
// ctx is done and ErrClosed when the throttle is closed while waiting; in
// both cases no permit is taken.
func (t *Throttle) AcquireContext(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		t.mu.Lock()
		t.cond.Broadcast()
		t.mu.Unlock()
	})
	defer stop()

	t.mu.Lock()
	defer t.mu.Unlock()
	for {
		if t.closed {
			return ErrClosed
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if t.outstanding < t.capacity {
			t.outstanding++
			return nil
		}
		t.cond.Wait()
	}
}

// Release returns a permit. It is called from completion handlers, possibly
// after Close. Releasing with no permit outstanding panics.
func (t *Throttle) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.outstanding == 0 {
		panic("throttle: Release without matching Acquire")
	}
	t.outstanding--
	t.cond.Broadcast()
}

// Track records a submitted buffer. At capacity the oldest record is
// dropped. Track is ignored after Close.
func (t *Throttle) Track(b Buffer) {
	if b == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	if len(t.ring) == t.capacity {
		t.ring[0] = nil
		t.ring = append(t.ring[:0], t.ring[1:]...)
		t.evicted++
		t.log.Debug("throttle: evicted oldest in-flight record", "evicted", t.evicted)
	}
	t.ring = append(t.ring, b)
}

// DrainAll blocks until every tracked buffer has reached at least the
// scheduled state. Buffers are not required to complete. Tracked records
// stay in the ring.
func (t *Throttle) DrainAll() {
	t.mu.Lock()
	pending := make([]Buffer, len(t.ring))
	copy(pending, t.ring)
	t.mu.Unlock()

	for _, b := range pending {
		b.WaitUntilScheduled()
	}
}

// InFlight returns the number of outstanding permits.
func (t *Throttle) InFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.outstanding
}

// Tracked returns the number of records in the ring.
func (t *Throttle) Tracked() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.ring)
}

// Capacity returns the permit count the throttle was built with.
func (t *Throttle) Capacity() int {
	return t.capacity
}

// Close marks the ring defunct and wakes AcquireContext waiters. The ring
// is cleared; permits still outstanding are returned by their completion
// handlers as usual. Close is idempotent.
func (t *Throttle) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	clear(t.ring)
	t.ring = t.ring[:0]
	t.cond.Broadcast()
}

// Closed reports whether Close was called.
func (t *Throttle) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
