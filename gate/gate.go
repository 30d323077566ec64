// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gate implements the redraw gate: the small state machine that
// decides whether the frame clock should run and how many upcoming ticks
// actually draw.
//
// The clock runs iff the application is active and either continuous
// ticking is requested or at least one redraw is scheduled:
//
//	running = active && (needsProactive || scheduled > 0)
//
// Every mutator recomputes running and pushes it to the clock, so a stale
// pause/resume signal is never left behind.
//
// Gate is not safe for concurrent use; it belongs to the goroutine that
// drives the frame clock.
package gate

// RedrawTicks is the number of ticks scheduled by RequestRedraw.
//
// A single pending tick races with the clock being paused and resumed
// between two vsyncs, which shows up as a dropped frame at high refresh
// rates. Scheduling two ticks absorbs that race.
const RedrawTicks = 2

// Pauser is the part of the frame clock the gate drives.
type Pauser interface {
	SetPaused(paused bool)
}

// Gate is the redraw gate state machine.
type Gate struct {
	clock Pauser

	needsProactive bool
	active         bool
	scheduled      int
}

// New creates a gate driving clock. The application starts active with no
// scheduled redraws, so the clock is paused immediately.
func New(clock Pauser) *Gate {
	g := &Gate{clock: clock, active: true}
	g.recompute()
	return g
}

// SetNeedsProactive declares whether the clock must keep ticking without
// invalidations, e.g. to keep pointer tracking latency low.
func (g *Gate) SetNeedsProactive(v bool) {
	g.needsProactive = v
	g.recompute()
}

// NeedsProactive reports the proactive flag.
func (g *Gate) NeedsProactive() bool {
	return g.needsProactive
}

// SetApplicationActive feeds the application lifecycle state. While
// inactive no tick draws, even if redraws are scheduled.
func (g *Gate) SetApplicationActive(v bool) {
	g.active = v
	g.recompute()
}

// ApplicationActive reports the lifecycle flag.
func (g *Gate) ApplicationActive() bool {
	return g.active
}

// RequestRedraw marks the next RedrawTicks ticks as draw-eligible.
// Repeated requests do not accumulate beyond RedrawTicks.
func (g *Gate) RequestRedraw() {
	g.scheduled = RedrawTicks
	g.recompute()
}

// Scheduled returns the number of remaining draw-eligible ticks.
func (g *Gate) Scheduled() int {
	return g.scheduled
}

// Running reports whether the clock should be running.
func (g *Gate) Running() bool {
	return g.active && (g.needsProactive || g.scheduled > 0)
}

// OnTick consumes one clock tick. Every tick uses up one scheduled draw,
// even while the application is inactive. draw is called at most once, iff
// a redraw was scheduled and the application is active; OnTick reports
// whether it was.
func (g *Gate) OnTick(draw func()) bool {
	if g.scheduled <= 0 {
		return false
	}
	g.scheduled--
	g.recompute()
	if !g.active {
		return false
	}
	draw()
	return true
}

func (g *Gate) recompute() {
	if g.clock != nil {
		g.clock.SetPaused(!g.Running())
	}
}
