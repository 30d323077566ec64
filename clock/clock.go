// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package clock provides frame clocks: recurring callbacks paced by the
// display's vertical sync that carry the target presentation timestamp of
// the frame about to be produced.
//
// Two implementations are provided:
//
//   - DisplayLink: a vsync emulation driven by a monotonic timer, used when
//     the host platform has no native display link or for headless runs.
//   - Manual: a deterministic clock whose ticks are fired explicitly,
//     used by tests and by hosts that forward their own vsync callbacks.
//
// Ticks are delivered through a Dispatcher so the host can marshal them
// onto the goroutine that owns rendering.
package clock

import (
	"errors"
	"time"
)

// Errors returned by clock operations.
var (
	// ErrStarted is returned when Start is called on a running clock.
	ErrStarted = errors.New("clock: already started")

	// ErrStopped is returned when Start is called on a stopped clock.
	ErrStopped = errors.New("clock: stopped")

	// ErrNilHandler is returned when Start is called with a nil handler.
	ErrNilHandler = errors.New("clock: nil tick handler")
)

// DefaultRefreshRate is the display refresh rate assumed when none is
// configured.
const DefaultRefreshRate = 60

// Tick is a single frame clock callback.
type Tick struct {
	// Seq is the tick sequence number, starting at 1.
	Seq uint64

	// Timestamp is the target presentation time of the frame, measured
	// from the clock's epoch. It is what the content producer should
	// animate to. Hosts with jittery vsync sources may deliver values
	// that run backwards; consumers must clamp.
	Timestamp time.Duration
}

// Dispatcher runs fn on the goroutine that owns rendering.
// A nil Dispatcher calls fn directly on the clock's goroutine.
type Dispatcher func(fn func())

// Clock is a pausable frame clock.
//
// All methods are safe for concurrent use.
type Clock interface {
	// Start begins delivering ticks to handler. A clock can be started once.
	Start(handler func(Tick)) error

	// SetPaused pauses or resumes tick delivery. Pausing an already paused
	// clock (or resuming a running one) is a no-op.
	SetPaused(paused bool)

	// Paused reports whether tick delivery is paused.
	Paused() bool

	// SetPreferredFramesPerSecond caps the tick rate. Zero or negative
	// values select the display refresh rate.
	SetPreferredFramesPerSecond(fps int)

	// PreferredFramesPerSecond returns the configured cap (0 = refresh rate).
	PreferredFramesPerSecond() int

	// Now returns the current time on the clock's timeline, comparable
	// with Tick.Timestamp.
	Now() time.Duration

	// Stop invalidates the clock. No ticks are delivered after Stop
	// returns, except one that was already dispatched. Stop is idempotent.
	Stop()
}

// frameInterval returns the tick interval for the given refresh rate and
// preferred rate. Like CADisplayLink and Choreographer, the preferred rate
// snaps to an integer divisor of the refresh rate so frames stay aligned
// with vsync.
func frameInterval(refreshRate, preferred int) time.Duration {
	if refreshRate <= 0 {
		refreshRate = DefaultRefreshRate
	}
	divisor := 1
	if preferred > 0 && preferred < refreshRate {
		divisor = (refreshRate + preferred - 1) / preferred
	}
	return time.Second * time.Duration(divisor) / time.Duration(refreshRate)
}
