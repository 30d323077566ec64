// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package clock

import (
	"sync"
	"time"
)

// DisplayLinkOption configures a DisplayLink.
type DisplayLinkOption func(*DisplayLink)

// WithRefreshRate sets the emulated display refresh rate in Hz.
func WithRefreshRate(hz int) DisplayLinkOption {
	return func(d *DisplayLink) {
		if hz > 0 {
			d.refreshRate = hz
		}
	}
}

// WithDispatcher routes tick delivery through dispatch.
func WithDispatcher(dispatch Dispatcher) DisplayLinkOption {
	return func(d *DisplayLink) {
		d.dispatch = dispatch
	}
}

// WithStartPaused creates the display link in the paused state.
func WithStartPaused() DisplayLinkOption {
	return func(d *DisplayLink) {
		d.paused = true
	}
}

// DisplayLink is a timer-driven vsync emulation.
//
// Ticks are scheduled on an absolute timeline (epoch + n*interval) so timer
// latency does not accumulate. When the consumer falls more than one
// interval behind, the schedule restarts from now instead of bursting
// missed ticks.
type DisplayLink struct {
	mu          sync.Mutex
	refreshRate int
	preferred   int
	paused      bool
	started     bool
	stopped     bool
	handler     func(Tick)
	dispatch    Dispatcher
	seq         uint64

	epoch time.Time
	wake  chan struct{}
	stop  chan struct{}
}

var _ Clock = (*DisplayLink)(nil)

// NewDisplayLink creates a stopped display link. Call Start to begin ticking.
func NewDisplayLink(opts ...DisplayLinkOption) *DisplayLink {
	d := &DisplayLink{
		refreshRate: DefaultRefreshRate,
		epoch:       time.Now(),
		wake:        make(chan struct{}, 1),
		stop:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start begins delivering ticks to handler.
func (d *DisplayLink) Start(handler func(Tick)) error {
	if handler == nil {
		return ErrNilHandler
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return ErrStopped
	}
	if d.started {
		return ErrStarted
	}
	d.started = true
	d.handler = handler
	go d.run()
	return nil
}

// SetPaused pauses or resumes tick delivery.
func (d *DisplayLink) SetPaused(paused bool) {
	d.mu.Lock()
	changed := d.paused != paused
	d.paused = paused
	d.mu.Unlock()
	if changed {
		d.poke()
	}
}

// Paused reports whether tick delivery is paused.
func (d *DisplayLink) Paused() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.paused
}

// SetPreferredFramesPerSecond caps the tick rate.
func (d *DisplayLink) SetPreferredFramesPerSecond(fps int) {
	if fps < 0 {
		fps = 0
	}
	d.mu.Lock()
	changed := d.preferred != fps
	d.preferred = fps
	d.mu.Unlock()
	if changed {
		d.poke()
	}
}

// PreferredFramesPerSecond returns the configured cap.
func (d *DisplayLink) PreferredFramesPerSecond() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.preferred
}

// Interval returns the current tick interval.
func (d *DisplayLink) Interval() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return frameInterval(d.refreshRate, d.preferred)
}

// Now returns the time elapsed since the display link was created.
func (d *DisplayLink) Now() time.Duration {
	return time.Since(d.epoch)
}

// Stop invalidates the display link. It does not wait for the timer
// goroutine, so it is safe to call from inside a tick handler; a tick that
// was dispatched before Stop is dropped on delivery.
func (d *DisplayLink) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.stopped = true
	close(d.stop)
}

// poke wakes the run loop so it re-reads pause state and interval.
func (d *DisplayLink) poke() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *DisplayLink) run() {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	next := time.Now()
	for {
		d.mu.Lock()
		paused := d.paused
		interval := frameInterval(d.refreshRate, d.preferred)
		d.mu.Unlock()

		if paused {
			select {
			case <-d.stop:
				return
			case <-d.wake:
				next = time.Now()
				continue
			}
		}

		next = next.Add(interval)
		now := time.Now()
		if lag := now.Sub(next); lag > interval {
			next = now.Add(interval)
		}
		timer.Reset(next.Sub(now))

		select {
		case <-d.stop:
			return
		case <-d.wake:
			timer.Stop()
			next = time.Now()
			continue
		case <-timer.C:
		}

		d.fire(next.Sub(d.epoch) + interval)
	}
}

// fire delivers one tick. The paused state is re-checked on the
// dispatching goroutine because a pause may race with an already
// scheduled dispatch.
func (d *DisplayLink) fire(target time.Duration) {
	d.mu.Lock()
	d.seq++
	tick := Tick{Seq: d.seq, Timestamp: target}
	handler := d.handler
	dispatch := d.dispatch
	d.mu.Unlock()

	deliver := func() {
		d.mu.Lock()
		skip := d.paused || d.stopped
		d.mu.Unlock()
		if !skip {
			handler(tick)
		}
	}
	if dispatch == nil {
		deliver()
		return
	}
	dispatch(deliver)
}
