// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package software provides a CPU swapchain backend.
//
// Drawables are RGBA images sized from the window. Recordings are replayed
// with gg's raster backend and presented frames are kept for inspection, so
// the backend serves headless runs, tests and the demo.
//
// Import it for its side effect of registering the "software" backend:
//
//	import _ "github.com/gogpu/pacer/backend/software"
package software

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/pacer/internal/nopslog"
	"github.com/gogpu/pacer/internal/replay"
	"github.com/gogpu/pacer/swapchain"
)

// Name is the registry name of this backend.
const Name = "software"

// ErrNoWindow is returned by New when the config has no window.
var ErrNoWindow = errors.New("software: config has no window")

func init() {
	swapchain.Register(Name, func(cfg swapchain.Config) (swapchain.Swapchain, swapchain.Device, error) {
		return New(cfg)
	})
}

// Swapchain is a CPU swapchain. It implements swapchain.Swapchain.
type Swapchain struct {
	window gpucontext.WindowProvider
	images int

	mu       sync.Mutex
	acquired int
	front    *image.RGBA
	presents int
	opaque   bool
	async    bool
	released bool
	log      *slog.Logger
}

// Device replays recordings on the CPU. It implements swapchain.Device.
type Device struct {
	sc    *Swapchain
	queue *swapchain.SerialQueue
	once  sync.Once
}

var (
	_ swapchain.Swapchain = (*Swapchain)(nil)
	_ swapchain.Device    = (*Device)(nil)
)

// New creates a software swapchain and device for cfg.Window.
func New(cfg swapchain.Config) (*Swapchain, *Device, error) {
	if cfg.Window == nil {
		return nil, nil, ErrNoWindow
	}
	sc := &Swapchain{
		window: cfg.Window,
		images: cfg.ResolvedImageCount(),
		opaque: true,
		async:  true,
		log:    nopslog.New(),
	}
	dev := &Device{sc: sc}
	dev.queue = swapchain.NewSerialQueue(0, func(err error) {
		sc.logger().Warn("software: present failed", "err", err)
	})
	return sc, dev, nil
}

// SetLogger sets the backend logger.
func (s *Swapchain) SetLogger(l *slog.Logger) {
	l = nopslog.Or(l)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = l
}

func (s *Swapchain) logger() *slog.Logger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log
}

// DrawableSize returns the window size in physical pixels.
func (s *Swapchain) DrawableSize() (int, int) {
	return swapchain.PhysicalSize(s.window)
}

// ImageCount returns the number of drawables that can be held at once.
func (s *Swapchain) ImageCount() int {
	return s.images
}

// NextDrawable returns a cleared image of the current drawable size.
// It fails with swapchain.ErrNoDrawable when every image is in use.
func (s *Swapchain) NextDrawable() (swapchain.Drawable, error) {
	w, h := s.DrawableSize()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: drawable size %dx%d", swapchain.ErrNoDrawable, w, h)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return nil, swapchain.ErrReleased
	}
	if s.acquired >= s.images {
		return nil, fmt.Errorf("%w: all %d images in use", swapchain.ErrNoDrawable, s.images)
	}
	s.acquired++
	return &Drawable{sc: s, img: image.NewRGBA(image.Rect(0, 0, w, h))}, nil
}

// SetInteropMode switches opacity and presentation mode. In opaque mode
// presented frames are composited over black.
func (s *Swapchain) SetInteropMode(opaque, async bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opaque = opaque
	s.async = async
}

// InteropMode returns the current mode.
func (s *Swapchain) InteropMode() (opaque, async bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opaque, s.async
}

// Release frees the swapchain. Drawables still held can be presented.
func (s *Swapchain) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released = true
}

// Presents returns the number of presented frames.
func (s *Swapchain) Presents() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presents
}

// LastPresented returns a copy of the most recently presented frame, or
// nil if none was presented.
func (s *Swapchain) LastPresented() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.front == nil {
		return nil
	}
	out := image.NewRGBA(s.front.Bounds())
	copy(out.Pix, s.front.Pix)
	return out
}

// Snapshot returns the most recently presented frame resized by factor, or
// nil if none was presented.
func (s *Swapchain) Snapshot(factor float64) *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.front == nil {
		return nil
	}
	return replay.Scale(s.front, factor)
}

func (s *Swapchain) present(img *image.RGBA) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acquired--
	s.front = replay.Compose(img, s.opaque)
	s.presents++
}

func (s *Swapchain) recycle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acquired--
}

// Drawable is a CPU swapchain image.
type Drawable struct {
	sc  *Swapchain
	img *image.RGBA

	mu   sync.Mutex
	done bool
}

// Size returns the image size.
func (d *Drawable) Size() (int, int) {
	b := d.img.Bounds()
	return b.Dx(), b.Dy()
}

// Present shows the image and asks the window to redraw.
func (d *Drawable) Present() error {
	if !d.finish() {
		return swapchain.ErrReleased
	}
	d.sc.present(d.img)
	d.sc.window.RequestRedraw()
	return nil
}

// Release returns the image unpresented.
func (d *Drawable) Release() {
	if d.finish() {
		d.sc.recycle()
	}
}

func (d *Drawable) finish() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.done {
		return false
	}
	d.done = true
	return true
}

// NewRenderTarget wraps a drawable from this backend.
func (dev *Device) NewRenderTarget(d swapchain.Drawable) (swapchain.RenderTarget, error) {
	sd, ok := d.(*Drawable)
	if !ok || sd.sc != dev.sc {
		return nil, fmt.Errorf("software: foreign drawable %T", d)
	}
	return replay.NewTarget(sd.img), nil
}

// Queue returns the device queue.
func (dev *Device) Queue() swapchain.Queue {
	return dev.queue
}

// Release waits for committed buffers to complete and stops the queue.
func (dev *Device) Release() {
	dev.once.Do(dev.queue.Close)
}
