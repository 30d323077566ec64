// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pacer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/gg/recording"
	"github.com/google/uuid"

	"github.com/gogpu/pacer/clock"
	"github.com/gogpu/pacer/gate"
	"github.com/gogpu/pacer/interop"
	"github.com/gogpu/pacer/swapchain"
	"github.com/gogpu/pacer/throttle"
	"github.com/gogpu/pacer/uiloop"
)

// presentLabel is the debug label of the per-frame command buffer.
const presentLabel = "pacer.present"

// Redrawer is the frame pacer. It owns a frame clock, a redraw gate and a
// submission throttle, and draws its Content into a swapchain.
//
// Redrawer is NOT safe for concurrent use. All methods except Stats, ID
// and Do must be called from the owning goroutine (see WithDispatcher).
type Redrawer struct {
	id      string
	log     *slog.Logger
	sc      swapchain.Swapchain
	dev     swapchain.Device
	queue   swapchain.Queue
	content Content

	clock    clock.Clock
	dispatch clock.Dispatcher
	loop     *uiloop.Loop // nil when the host provides the owning goroutine
	gate     *gate.Gate
	throttle *throttle.Throttle
	enc      *encoder // nil unless WithBackgroundEncoding

	// Owned by the owning goroutine.
	maxFPS           int
	forceTransaction bool
	interopActive    bool
	lastTimestamp    time.Duration

	disposed atomic.Bool

	statsMu sync.Mutex
	stats   Stats
}

// frame is one recorded frame on its way to the GPU.
type frame struct {
	payload *recording.Recording

	// tx is the frame's interop transaction when it was retrieved before
	// encoding; nil means retrieve it after flushing.
	tx *interop.Transaction

	force bool
	wait  bool
}

// New creates a Redrawer drawing content into sc with dev.
//
// The frame clock starts paused; call NeedRedraw or SetNeedsProactiveRedraw
// to begin drawing.
func New(sc swapchain.Swapchain, dev swapchain.Device, content Content, opts ...Option) (*Redrawer, error) {
	if sc == nil {
		return nil, ErrNilSwapchain
	}
	if dev == nil {
		return nil, ErrNilDevice
	}
	if content == nil {
		return nil, ErrNilContent
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	capacity := o.capacity
	if capacity == 0 {
		capacity = sc.ImageCount()
		if capacity <= 0 {
			capacity = swapchain.DefaultImageCount
		}
	}
	th, err := throttle.New(capacity)
	if err != nil {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}

	r := &Redrawer{
		id:               uuid.NewString(),
		sc:               sc,
		dev:              dev,
		queue:            dev.Queue(),
		content:          content,
		dispatch:         o.dispatcher,
		throttle:         th,
		maxFPS:           max(o.maxFPS, 0),
		forceTransaction: o.forceTransaction,
	}
	base := o.logger
	if base == nil {
		base = Logger()
	}
	r.log = base.With("pacer", r.id)
	propagateLogger(th, r.log)
	propagateLogger(sc, r.log)
	propagateLogger(dev, r.log)

	r.clock = o.clock
	if r.clock == nil {
		if r.dispatch == nil {
			r.loop = uiloop.New(0)
			r.dispatch = r.loop.Dispatch
		}
		r.clock = clock.NewDisplayLink(clock.WithDispatcher(r.dispatch), clock.WithStartPaused())
	}
	r.clock.SetPreferredFramesPerSecond(r.maxFPS)
	r.gate = gate.New(r.clock)
	r.stats.Capacity = capacity

	if o.background {
		r.enc = newEncoder(r)
	}

	if err := r.clock.Start(r.onTick); err != nil {
		if r.enc != nil {
			r.enc.close()
		}
		if r.loop != nil {
			r.loop.Close()
		}
		th.Close()
		return nil, fmt.Errorf("pacer: start clock: %w", err)
	}

	r.log.Info("pacer: redrawer created",
		"capacity", capacity,
		"background_encoding", o.background,
		"force_transaction", o.forceTransaction)
	return r, nil
}

// MustNew is like New but panics on error.
func MustNew(sc swapchain.Swapchain, dev swapchain.Device, content Content, opts ...Option) *Redrawer {
	r, err := New(sc, dev, content, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// ID returns the instance ID attached to the Redrawer's log records.
func (r *Redrawer) ID() string {
	return r.id
}

// NeedRedraw schedules drawing on the next two clock ticks.
func (r *Redrawer) NeedRedraw() {
	if r.disposed.Load() {
		return
	}
	r.gate.RequestRedraw()
}

// DrawSynchronously draws a frame now, outside the clock, and waits until
// the GPU completed it. Used for resize and first-frame paths where the
// window must not show stale content.
func (r *Redrawer) DrawSynchronously() {
	if r.disposed.Load() {
		return
	}
	r.draw(true, r.clock.Now())
}

// SetMaximumFramesPerSecond caps the clock rate. Zero or negative values
// select the display refresh rate.
func (r *Redrawer) SetMaximumFramesPerSecond(fps int) {
	r.maxFPS = max(fps, 0)
	r.clock.SetPreferredFramesPerSecond(r.maxFPS)
}

// MaximumFramesPerSecond returns the clock rate cap (0 = refresh rate).
func (r *Redrawer) MaximumFramesPerSecond() int {
	return r.maxFPS
}

// SetNeedsProactiveRedraw keeps the clock ticking without invalidations,
// so a NeedRedraw lands on the very next vsync.
func (r *Redrawer) SetNeedsProactiveRedraw(v bool) {
	r.gate.SetNeedsProactive(v)
}

// NeedsProactiveRedraw reports whether the clock ticks without invalidations.
func (r *Redrawer) NeedsProactiveRedraw() bool {
	return r.gate.NeedsProactive()
}

// SetForcePresentWithTransaction presents every frame transactionally.
func (r *Redrawer) SetForcePresentWithTransaction(v bool) {
	r.forceTransaction = v
}

// ForcePresentWithTransaction reports the force flag.
func (r *Redrawer) ForcePresentWithTransaction() bool {
	return r.forceTransaction
}

// InteropActive reports whether externally composited content is on screen.
func (r *Redrawer) InteropActive() bool {
	return r.interopActive
}

// OnApplicationActiveChanged feeds the application lifecycle. When the
// application becomes inactive it returns only after every tracked command
// buffer has been scheduled on the GPU.
func (r *Redrawer) OnApplicationActiveChanged(active bool) {
	if r.disposed.Load() {
		return
	}
	r.gate.SetApplicationActive(active)
	if active {
		return
	}
	if r.enc != nil {
		r.enc.barrier()
	}
	r.throttle.DrainAll()
	r.log.Debug("pacer: drained in-flight work for suspension", "in_flight", r.throttle.InFlight())
}

// Do runs fn on the owning goroutine and waits for it to return. Without a
// dispatcher fn runs on the calling goroutine.
//
// Calling Do from the owning goroutine deadlocks unless the dispatcher runs
// functions synchronously.
func (r *Redrawer) Do(fn func()) error {
	if r.disposed.Load() {
		return ErrDisposed
	}
	if r.loop != nil {
		if err := r.loop.Call(fn); err != nil {
			return ErrDisposed
		}
		return nil
	}
	if r.dispatch == nil {
		fn()
		return nil
	}
	done := make(chan struct{})
	r.dispatch(func() {
		defer close(done)
		fn()
	})
	<-done
	return nil
}

// Dispose stops the clock and releases the swapchain and device. Frames
// still in flight are not cancelled; their completion handlers return
// their permits to the closed throttle.
//
// Dispose panics with ErrAlreadyDisposed when called twice.
func (r *Redrawer) Dispose() {
	if !r.disposed.CompareAndSwap(false, true) {
		panic(ErrAlreadyDisposed)
	}
	r.clock.Stop()
	if r.enc != nil {
		r.enc.close()
	}
	inFlight := r.throttle.InFlight()
	r.throttle.Close()
	r.dev.Release()
	r.sc.Release()
	if r.loop != nil {
		// Dispose may run on the loop itself; Close waits for it to return.
		go r.loop.Close()
	}
	r.log.Info("pacer: redrawer disposed", "in_flight", inFlight)
}

// Stats returns a snapshot of the Redrawer's counters. Safe for concurrent
// use.
func (r *Redrawer) Stats() Stats {
	r.statsMu.Lock()
	s := r.stats
	r.statsMu.Unlock()
	s.InFlight = r.throttle.InFlight()
	return s
}

func (r *Redrawer) record(fn func(s *Stats)) {
	r.statsMu.Lock()
	fn(&r.stats)
	r.statsMu.Unlock()
}

func (r *Redrawer) onTick(t clock.Tick) {
	if r.disposed.Load() {
		return
	}
	r.gate.OnTick(func() {
		r.draw(false, t.Timestamp)
	})
}

// draw produces one frame for target.
func (r *Redrawer) draw(wait bool, target time.Duration) {
	if r.disposed.Load() {
		return
	}

	effective := max(target, r.lastTimestamp)
	r.lastTimestamp = effective
	r.record(func(s *Stats) { s.LastTimestamp = effective })

	w, h := r.sc.DrawableSize()
	if w <= 0 || h <= 0 {
		r.log.Debug("pacer: skipped frame, zero drawable size", "width", w, "height", h)
		r.record(func(s *Stats) { s.SkippedZeroSize++ })
		return
	}

	rec := recording.NewRecorder(w, h)
	r.content.Render(rec, effective)
	f := frame{
		payload: rec.FinishRecording(),
		force:   r.forceTransaction,
		wait:    wait,
	}

	if r.enc == nil {
		r.encode(nil, f)
		return
	}

	tx := r.content.RetrieveInteropTransaction()
	f.tx = &tx
	if !f.wait && !f.force && !r.interopActive && tx.State == interop.StateNone && !tx.HasActions() {
		r.enc.post(f)
		return
	}
	// Transactional and interop frames keep their ordering against the
	// encoder's frames.
	r.enc.barrier()
	r.encode(nil, f)
}

// encode acquires a permit and a drawable, replays the frame and presents
// it. A nil ctx acquires the permit without cancellation.
//
// Only frames without interop work reach encode from the encoder
// goroutine, so the interop flag is touched by the owning goroutine alone.
func (r *Redrawer) encode(ctx context.Context, f frame) {
	if ctx == nil {
		r.throttle.Acquire()
	} else if err := r.throttle.AcquireContext(ctx); err != nil {
		r.log.Debug("pacer: dropped encoded frame", "err", err)
		return
	}

	drawable, err := r.sc.NextDrawable()
	if err != nil || drawable == nil {
		r.throttle.Release()
		r.log.Warn("pacer: skipped frame, no drawable", "err", err)
		r.record(func(s *Stats) { s.SkippedNoDrawable++ })
		return
	}

	target, err := r.dev.NewRenderTarget(drawable)
	if err != nil || target == nil {
		drawable.Release()
		r.throttle.Release()
		r.log.Warn("pacer: skipped frame, no render target", "err", err)
		r.record(func(s *Stats) { s.SkippedNoTarget++ })
		return
	}
	err = target.Replay(f.payload)
	if err == nil {
		err = target.Flush()
	}
	target.Release()

	tx := r.transaction(f)
	if tx.State == interop.StateBegan && !r.interopActive {
		r.setInteropActive(true)
	}

	var cb swapchain.CommandBuffer
	if err == nil {
		cb, err = r.queue.NewCommandBuffer(presentLabel)
	}
	if err != nil {
		drawable.Release()
		r.throttle.Release()
		r.log.Warn("pacer: skipped frame, encoding failed", "err", err)
		r.record(func(s *Stats) { s.SkippedEncode++ })
		// Interop side effects still apply; only the GPU frame is lost.
		tx.Run()
		r.endInterop(tx)
		return
	}

	// A failed commit still runs completed handlers, so the permit is
	// returned on every path from here.
	cb.AddCompletedHandler(r.throttle.Release)

	committed := true
	if f.force || tx.HasActions() {
		if err := cb.Commit(); err != nil {
			committed = false
			drawable.Release()
			r.log.Warn("pacer: commit failed", "err", err)
		} else {
			cb.WaitUntilScheduled()
			if err := drawable.Present(); err != nil {
				r.log.Warn("pacer: present failed", "err", err)
			}
			r.record(func(s *Stats) { s.TransactionalPresents++ })
			r.log.Debug("pacer: transactional present", "actions", len(tx.Actions))
		}
		tx.Run()
	} else {
		cb.PresentDrawable(drawable)
		if err := cb.Commit(); err != nil {
			committed = false
			r.log.Warn("pacer: commit failed", "err", err)
		}
	}
	r.endInterop(tx)

	if !committed {
		r.record(func(s *Stats) { s.SubmitErrors++ })
		return
	}
	r.throttle.Track(cb)
	r.record(func(s *Stats) { s.FramesDrawn++ })

	if f.wait {
		cb.WaitUntilCompleted()
	}
}

// transaction returns the frame's interop transaction, retrieving it from
// the content unless it was retrieved before encoding.
func (r *Redrawer) transaction(f frame) interop.Transaction {
	if f.tx != nil {
		return *f.tx
	}
	return r.content.RetrieveInteropTransaction()
}

// endInterop clears the interop flag after an Ended transaction was
// presented.
func (r *Redrawer) endInterop(tx interop.Transaction) {
	if tx.State == interop.StateEnded && r.interopActive {
		r.setInteropActive(false)
	}
}

func (r *Redrawer) setInteropActive(active bool) {
	r.interopActive = active
	// Interop content composites over the frame: drop opacity and draw
	// synchronously while it is on screen.
	r.sc.SetInteropMode(!active, !active)
	r.record(func(s *Stats) { s.InteropActive = active })
	r.log.Debug("pacer: interop mode changed", "active", active)
}
