// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package hosted provides a swapchain backend for applications whose window
// and GPU device are owned by a gogpu host.
//
// Frames are rasterized on the CPU. A presented frame becomes the host's
// pending frame and the window is asked to redraw; the host then calls
// RenderTo from its draw callback, which uploads the frame into a host
// texture and draws it:
//
//	sc, dev, _ := swapchain.Open(hosted.Name, swapchain.Config{Window: app})
//	app.OnDraw(func(dc *gogpu.Context) {
//	    sc.(*hosted.Swapchain).RenderTo(dc.AsTextureDrawer())
//	})
package hosted

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
const Name = "hosted"

// Errors returned by the hosted backend.
var (
	// ErrNoWindow is returned by New when the config has no window.
	ErrNoWindow = errors.New("hosted: config has no window")

	// ErrNoTextureCreator is returned by RenderTo when the drawer cannot
	// create textures.
	ErrNoTextureCreator = errors.New("hosted: drawer has no texture creator")

	// ErrNotTexture is returned when a created texture does not implement
	// gpucontext.Texture.
	ErrNotTexture = errors.New("hosted: created value is not a gpucontext.Texture")
)

func init() {
	swapchain.Register(Name, func(cfg swapchain.Config) (swapchain.Swapchain, swapchain.Device, error) {
		return New(cfg)
	})
}

// textureDestroyer matches gogpu.Texture.Destroy.
type textureDestroyer interface {
	Destroy()
}

// Swapchain presents CPU frames through host textures.
type Swapchain struct {
	window gpucontext.WindowProvider
	images int

	mu       sync.Mutex
	acquired int
	pending  *image.RGBA // presented, not yet drawn by the host
	opaque   bool
	async    bool
	released bool
	presents int
	log      *slog.Logger

	// texMu serializes the host's draw callback with Release.
	texMu      sync.Mutex
	texture    gpucontext.Texture
	oldTexture gpucontext.Texture
	uploads    int
}

// Device replays recordings on the CPU.
type Device struct {
	sc    *Swapchain
	queue *swapchain.SerialQueue
	once  sync.Once
}

var (
	_ swapchain.Swapchain = (*Swapchain)(nil)
	_ swapchain.Device    = (*Device)(nil)
)

// New creates a hosted swapchain and device for cfg.Window.
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
		sc.logger().Warn("hosted: present failed", "err", err)
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
	return &drawable{sc: s, img: image.NewRGBA(image.Rect(0, 0, w, h))}, nil
}

// SetInteropMode switches opacity and presentation mode. In opaque mode
// frames are flattened over black before upload.
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

// Presents returns the number of presented frames.
func (s *Swapchain) Presents() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presents
}

// Release frees the swapchain and its host textures.
func (s *Swapchain) Release() {
	s.mu.Lock()
	s.released = true
	s.pending = nil
	s.mu.Unlock()

	s.texMu.Lock()
	defer s.texMu.Unlock()
	destroy(s.oldTexture)
	destroy(s.texture)
	s.oldTexture, s.texture = nil, nil
}

func (s *Swapchain) present(img *image.RGBA) {
	s.mu.Lock()
	s.acquired--
	s.pending = replay.Compose(img, s.opaque)
	s.presents++
	s.mu.Unlock()
	s.window.RequestRedraw()
}

func (s *Swapchain) recycle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acquired--
}

func destroy(tex gpucontext.Texture) {
	if d, ok := tex.(textureDestroyer); ok {
		d.Destroy()
	}
}

type drawable struct {
	sc  *Swapchain
	img *image.RGBA

	mu   sync.Mutex
	done bool
}

func (d *drawable) Size() (int, int) {
	b := d.img.Bounds()
	return b.Dx(), b.Dy()
}

func (d *drawable) Present() error {
	if !d.finish() {
		return swapchain.ErrReleased
	}
	d.sc.present(d.img)
	return nil
}

func (d *drawable) Release() {
	if d.finish() {
		d.sc.recycle()
	}
}

func (d *drawable) finish() bool {
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
	hd, ok := d.(*drawable)
	if !ok || hd.sc != dev.sc {
		return nil, fmt.Errorf("hosted: foreign drawable %T", d)
	}
	return replay.NewTarget(hd.img), nil
}

// Queue returns the device queue.
func (dev *Device) Queue() swapchain.Queue {
	return dev.queue
}

// Release waits for committed buffers to complete and stops the queue.
func (dev *Device) Release() {
	dev.once.Do(dev.queue.Close)
}
