// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gputest provides a scriptable in-memory GPU for pacer tests.
//
// A GPU hands out a swapchain.Swapchain and a swapchain.Device backed by the
// same state. Tests script drawable sizes and failures, choose when command
// buffers are scheduled and completed, and inspect an ordered event log.
package gputest

import (
	"fmt"
	"sync"

	"github.com/gogpu/gg/recording"

	"github.com/gogpu/pacer/swapchain"
)

// Mode selects how committed command buffers progress.
type Mode int

const (
	// ModeSync schedules and completes a buffer inside Commit.
	ModeSync Mode = iota

	// ModeAsync schedules and completes a buffer on a new goroutine.
	ModeAsync

	// ModeManual holds buffers until the test calls Schedule or Complete.
	ModeManual
)

// InteropMode is one recorded SetInteropMode call.
type InteropMode struct {
	Opaque bool
	Async  bool
}

// Frame describes a presented drawable.
type Frame struct {
	Seq      int
	Width    int
	Height   int
	Commands int
}

// GPU is the fake device state. All methods are safe for concurrent use.
type GPU struct {
	mu sync.Mutex

	width, height int
	imageCount    int
	mode          Mode

	nextErr   error
	targetErr error
	replayErr error
	submitErr error

	seq      int
	pending  []*swapchain.Buffer
	buffers  []*swapchain.Buffer
	frames   []Frame
	interop  []InteropMode
	events   []string
	acquired int
	released int

	swapchainReleased bool
	deviceReleased    bool
}

// New creates a GPU with a width x height drawable, three swapchain images
// and ModeSync.
func New(width, height int) *GPU {
	return &GPU{width: width, height: height, imageCount: swapchain.DefaultImageCount}
}

// Swapchain returns the swapchain view of g.
func (g *GPU) Swapchain() swapchain.Swapchain { return (*fakeSwapchain)(g) }

// Device returns the device view of g.
func (g *GPU) Device() swapchain.Device { return (*fakeDevice)(g) }

// SetSize changes the drawable size.
func (g *GPU) SetSize(width, height int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.width, g.height = width, height
}

// SetImageCount changes the reported swapchain image count.
func (g *GPU) SetImageCount(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.imageCount = n
}

// SetMode selects how new buffers progress.
func (g *GPU) SetMode(m Mode) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mode = m
}

// FailNextDrawable makes NextDrawable return err until cleared with nil.
func (g *GPU) FailNextDrawable(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextErr = err
}

// FailRenderTarget makes NewRenderTarget return err until cleared with nil.
func (g *GPU) FailRenderTarget(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.targetErr = err
}

// FailReplay makes RenderTarget.Replay return err until cleared with nil.
func (g *GPU) FailReplay(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.replayErr = err
}

// FailSubmit makes Commit fail with err until cleared with nil.
func (g *GPU) FailSubmit(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.submitErr = err
}

// Log appends an event. Tests use it to interleave their own events, such
// as interop actions, with the GPU's.
func (g *GPU) Log(event string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.events = append(g.events, event)
}

// Events returns a copy of the event log.
func (g *GPU) Events() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.events...)
}

// ResetEvents clears the event log.
func (g *GPU) ResetEvents() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.events = nil
}

// Frames returns the presented frames in presentation order.
func (g *GPU) Frames() []Frame {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Frame(nil), g.frames...)
}

// InteropModes returns every SetInteropMode call in order.
func (g *GPU) InteropModes() []InteropMode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]InteropMode(nil), g.interop...)
}

// Buffers returns every committed command buffer in commit order.
func (g *GPU) Buffers() []*swapchain.Buffer {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*swapchain.Buffer(nil), g.buffers...)
}

// Pending returns the number of held buffers in ModeManual.
func (g *GPU) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}

// Acquired returns the number of drawables handed out.
func (g *GPU) Acquired() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.acquired
}

// ReleasedDrawables returns the number of drawables released unpresented.
func (g *GPU) ReleasedDrawables() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.released
}

// SwapchainReleased reports whether Swapchain().Release was called.
func (g *GPU) SwapchainReleased() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.swapchainReleased
}

// DeviceReleased reports whether Device().Release was called.
func (g *GPU) DeviceReleased() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.deviceReleased
}

// ScheduleAll marks every held buffer scheduled. They stay held until
// completed.
func (g *GPU) ScheduleAll() {
	g.mu.Lock()
	held := append([]*swapchain.Buffer(nil), g.pending...)
	g.mu.Unlock()
	for _, b := range held {
		g.schedule(b)
	}
}

// CompleteNext completes the oldest held buffer. It reports false when none
// is held.
func (g *GPU) CompleteNext() bool {
	g.mu.Lock()
	if len(g.pending) == 0 {
		g.mu.Unlock()
		return false
	}
	b := g.pending[0]
	g.pending = g.pending[1:]
	g.mu.Unlock()
	g.complete(b)
	return true
}

// CompleteAll completes every held buffer in commit order.
func (g *GPU) CompleteAll() {
	for g.CompleteNext() {
	}
}

func (g *GPU) submit(b *swapchain.Buffer) error {
	g.mu.Lock()
	if err := g.submitErr; err != nil {
		g.events = append(g.events, "submit-failed:"+b.Label())
		g.mu.Unlock()
		return err
	}
	g.events = append(g.events, "commit:"+b.Label())
	g.buffers = append(g.buffers, b)
	mode := g.mode
	if mode == ModeManual {
		g.pending = append(g.pending, b)
	}
	g.mu.Unlock()

	switch mode {
	case ModeSync:
		g.complete(b)
	case ModeAsync:
		go g.complete(b)
	}
	return nil
}

func (g *GPU) schedule(b *swapchain.Buffer) {
	if b.Status().AtLeastScheduled() {
		return
	}
	g.Log("scheduled:" + b.Label())
	_ = b.MarkScheduled()
}

func (g *GPU) complete(b *swapchain.Buffer) {
	g.schedule(b)
	_ = b.MarkCompleted()
	g.Log("completed:" + b.Label())
}

// Drawable is a fake swapchain image.
type Drawable struct {
	gpu           *GPU
	seq           int
	width, height int
	commands      int

	mu        sync.Mutex
	presented bool
	released  bool
}

// Seq returns the acquisition sequence number, starting at 1.
func (d *Drawable) Seq() int { return d.seq }

// Size returns the drawable size.
func (d *Drawable) Size() (int, int) { return d.width, d.height }

// Present records the drawable as presented.
func (d *Drawable) Present() error {
	d.mu.Lock()
	if d.presented || d.released {
		d.mu.Unlock()
		return fmt.Errorf("gputest: drawable %d already presented or released", d.seq)
	}
	d.presented = true
	commands := d.commands
	d.mu.Unlock()

	g := d.gpu
	g.mu.Lock()
	defer g.mu.Unlock()
	g.frames = append(g.frames, Frame{Seq: d.seq, Width: d.width, Height: d.height, Commands: commands})
	g.events = append(g.events, fmt.Sprintf("present:%d", d.seq))
	return nil
}

// Release returns an unpresented drawable.
func (d *Drawable) Release() {
	d.mu.Lock()
	if d.presented || d.released {
		d.mu.Unlock()
		return
	}
	d.released = true
	d.mu.Unlock()

	g := d.gpu
	g.mu.Lock()
	defer g.mu.Unlock()
	g.released++
	g.events = append(g.events, fmt.Sprintf("release:%d", d.seq))
}

type fakeSwapchain GPU

func (s *fakeSwapchain) gpu() *GPU { return (*GPU)(s) }

func (s *fakeSwapchain) DrawableSize() (int, int) {
	g := s.gpu()
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.width, g.height
}

func (s *fakeSwapchain) ImageCount() int {
	g := s.gpu()
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.imageCount
}

func (s *fakeSwapchain) NextDrawable() (swapchain.Drawable, error) {
	g := s.gpu()
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.nextErr != nil {
		g.events = append(g.events, "acquire-failed")
		return nil, g.nextErr
	}
	g.seq++
	g.acquired++
	g.events = append(g.events, fmt.Sprintf("acquire:%d", g.seq))
	return &Drawable{gpu: g, seq: g.seq, width: g.width, height: g.height}, nil
}

func (s *fakeSwapchain) SetInteropMode(opaque, async bool) {
	g := s.gpu()
	g.mu.Lock()
	defer g.mu.Unlock()
	g.interop = append(g.interop, InteropMode{Opaque: opaque, Async: async})
	g.events = append(g.events, fmt.Sprintf("interop:opaque=%t,async=%t", opaque, async))
}

func (s *fakeSwapchain) Release() {
	g := s.gpu()
	g.mu.Lock()
	defer g.mu.Unlock()
	g.swapchainReleased = true
}

type fakeDevice GPU

func (dev *fakeDevice) gpu() *GPU { return (*GPU)(dev) }

func (dev *fakeDevice) NewRenderTarget(d swapchain.Drawable) (swapchain.RenderTarget, error) {
	g := dev.gpu()
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.targetErr != nil {
		g.events = append(g.events, "target-failed")
		return nil, g.targetErr
	}
	fd, ok := d.(*Drawable)
	if !ok {
		return nil, fmt.Errorf("gputest: foreign drawable %T", d)
	}
	return &renderTarget{gpu: g, drawable: fd}, nil
}

func (dev *fakeDevice) Queue() swapchain.Queue { return (*fakeQueue)(dev) }

func (dev *fakeDevice) Release() {
	g := dev.gpu()
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deviceReleased = true
}

type fakeQueue GPU

func (q *fakeQueue) NewCommandBuffer(label string) (swapchain.CommandBuffer, error) {
	g := (*GPU)(q)
	return swapchain.NewBuffer(label, g.submit), nil
}

type renderTarget struct {
	gpu      *GPU
	drawable *Drawable
	released bool
}

func (t *renderTarget) Replay(rec *recording.Recording) error {
	g := t.gpu
	g.mu.Lock()
	defer g.mu.Unlock()
	if t.released {
		return swapchain.ErrReleased
	}
	if g.replayErr != nil {
		g.events = append(g.events, "replay-failed")
		return g.replayErr
	}
	if rec.Width() != t.drawable.width || rec.Height() != t.drawable.height {
		return swapchain.ErrSizeMismatch
	}
	t.drawable.mu.Lock()
	t.drawable.commands = len(rec.Commands())
	t.drawable.mu.Unlock()
	g.events = append(g.events, fmt.Sprintf("replay:%d", t.drawable.seq))
	return nil
}

func (t *renderTarget) Flush() error {
	g := t.gpu
	g.mu.Lock()
	defer g.mu.Unlock()
	if t.released {
		return swapchain.ErrReleased
	}
	g.events = append(g.events, fmt.Sprintf("flush:%d", t.drawable.seq))
	return nil
}

func (t *renderTarget) Release() {
	t.gpu.mu.Lock()
	defer t.gpu.mu.Unlock()
	t.released = true
}
