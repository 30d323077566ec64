// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package clock

import (
	"sync"
	"time"
)

// Manual is a clock whose ticks are fired explicitly.
//
// It records every pause/resume transition so tests can assert that the
// clock was driven correctly. Hosts that receive vsync from the platform
// can also forward those callbacks through Fire.
type Manual struct {
	mu        sync.Mutex
	handler   func(Tick)
	paused    bool
	started   bool
	stopped   bool
	preferred int
	now       time.Duration
	seq       uint64
	history   []bool
}

var _ Clock = (*Manual)(nil)

// NewManual creates a manual clock. Like a platform display link it starts
// running; the first SetPaused call decides the real state.
func NewManual() *Manual {
	return &Manual{}
}

// Start registers the tick handler.
func (m *Manual) Start(handler func(Tick)) error {
	if handler == nil {
		return ErrNilHandler
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return ErrStopped
	}
	if m.started {
		return ErrStarted
	}
	m.started = true
	m.handler = handler
	return nil
}

// SetPaused records and applies the pause state.
func (m *Manual) SetPaused(paused bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = paused
	m.history = append(m.history, paused)
}

// Paused reports whether the clock is paused.
func (m *Manual) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// SetPreferredFramesPerSecond stores the cap. Manual clocks do not pace.
func (m *Manual) SetPreferredFramesPerSecond(fps int) {
	if fps < 0 {
		fps = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.preferred = fps
}

// PreferredFramesPerSecond returns the stored cap.
func (m *Manual) PreferredFramesPerSecond() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.preferred
}

// Now returns the manual clock's current time.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// SetNow moves the manual clock's current time.
func (m *Manual) SetNow(now time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Fire delivers a tick with the given target timestamp on the calling
// goroutine. It returns false without calling the handler when the clock
// is paused, stopped or not started.
func (m *Manual) Fire(target time.Duration) bool {
	m.mu.Lock()
	if !m.started || m.stopped || m.paused {
		m.mu.Unlock()
		return false
	}
	m.seq++
	tick := Tick{Seq: m.seq, Timestamp: target}
	handler := m.handler
	m.mu.Unlock()

	handler(tick)
	return true
}

// Stop invalidates the clock.
func (m *Manual) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
}

// Stopped reports whether Stop was called.
func (m *Manual) Stopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

// PauseHistory returns every value passed to SetPaused, in order.
func (m *Manual) PauseHistory() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]bool, len(m.history))
	copy(out, m.history)
	return out
}
