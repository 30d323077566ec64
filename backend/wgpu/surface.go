// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/pacer/internal/nopslog"
	"github.com/gogpu/pacer/swapchain"
)

// Name is the registry name of this backend.
const Name = "wgpu"

// Configuration errors.
var (
	ErrNoWindow  = errors.New("wgpu: config has no window")
	ErrNoSurface = errors.New("wgpu: config has no surface")
	ErrNoDevice  = errors.New("wgpu: config has no device")
)

func init() {
	swapchain.Register(Name, func(cfg swapchain.Config) (swapchain.Swapchain, swapchain.Device, error) {
		return New(cfg)
	})
}

// Target is passed as swapchain.Config.Native. The caller owns both objects
// and releases them after the swapchain and device.
type Target struct {
	Surface *wgpu.Surface

	// Device may be nil when swapchain.Config.Provider supplies a
	// *wgpu.Device.
	Device *wgpu.Device
}

// settings is a validated configuration.
type settings struct {
	window  gpucontext.WindowProvider
	surface *wgpu.Surface
	device  *wgpu.Device
	format  gputypes.TextureFormat
	images  int
	adapter *gpucontext.AdapterInfo
}

func resolve(cfg swapchain.Config) (settings, error) {
	s := settings{window: cfg.Window, format: cfg.Format, images: cfg.ResolvedImageCount()}
	if cfg.Window == nil {
		return s, ErrNoWindow
	}
	switch t := cfg.Native.(type) {
	case *Target:
		if t != nil {
			s.surface, s.device = t.Surface, t.Device
		}
	case *wgpu.Surface:
		s.surface = t
	}
	if s.surface == nil {
		return s, ErrNoSurface
	}
	if p := cfg.Provider; p != nil {
		if s.device == nil {
			s.device, _ = p.Device().(*wgpu.Device)
		}
		if s.format == gputypes.TextureFormatUndefined {
			s.format = p.SurfaceFormat()
		}
		info := p.AdapterInfo()
		s.adapter = &info
	}
	if s.device == nil {
		return s, ErrNoDevice
	}
	if s.format == gputypes.TextureFormatUndefined {
		s.format = gputypes.TextureFormatBGRA8Unorm
	}
	return s, nil
}

// surfaceModes maps the interop mode to surface settings. Compositable
// frames keep premultiplied alpha and are presented in lockstep with the
// compositor.
func surfaceModes(opaque, async bool) (gputypes.CompositeAlphaMode, gputypes.PresentMode) {
	alpha := gputypes.CompositeAlphaModeOpaque
	if !opaque {
		alpha = gputypes.CompositeAlphaModePremultiplied
	}
	present := gputypes.PresentModeFifo
	if async {
		present = gputypes.PresentModeMailbox
	}
	return alpha, present
}

// Swapchain presents frames on a wgpu surface.
//
// The surface hands out one texture at a time. A frame's texture is
// presented or discarded before the next frame asks for one, so ImageCount
// only bounds GPU work in flight.
type Swapchain struct {
	surface *wgpu.Surface
	device  *wgpu.Device
	window  gpucontext.WindowProvider
	format  gputypes.TextureFormat
	images  int

	mu         sync.Mutex
	width      int
	height     int
	opaque     bool
	async      bool
	dirty      bool
	acquired   bool
	released   bool
	suboptimal int
	log        *slog.Logger
}

// Format returns the surface texture format.
func (s *Swapchain) Format() gputypes.TextureFormat {
	return s.format
}

// SetLogger sets the backend logger.
func (s *Swapchain) SetLogger(l *slog.Logger) {
	l = nopslog.Or(l)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = l
}

// DrawableSize returns the window size in physical pixels.
func (s *Swapchain) DrawableSize() (int, int) {
	return swapchain.PhysicalSize(s.window)
}

// ImageCount returns the in-flight frame budget.
func (s *Swapchain) ImageCount() int {
	return s.images
}

// SetInteropMode reconfigures the surface before the next frame.
func (s *Swapchain) SetInteropMode(opaque, async bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opaque == opaque && s.async == async {
		return
	}
	s.opaque, s.async = opaque, async
	s.dirty = true
}

// InteropMode returns the current mode.
func (s *Swapchain) InteropMode() (opaque, async bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opaque, s.async
}

// NextDrawable acquires the current surface texture, reconfiguring the
// surface first when the size or interop mode changed.
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
	if s.acquired {
		return nil, fmt.Errorf("%w: surface texture still held", swapchain.ErrNoDrawable)
	}
	if s.dirty || w != s.width || h != s.height {
		if err := s.configureLocked(w, h); err != nil {
			return nil, fmt.Errorf("%w: %w", swapchain.ErrNoDrawable, err)
		}
	}

	tex, suboptimal, err := s.surface.GetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", swapchain.ErrNoDrawable, err)
	}
	if suboptimal {
		// Reconfigure on the next frame; this one is still presentable.
		s.suboptimal++
		s.dirty = true
	}
	s.acquired = true
	return &drawable{sc: s, tex: tex, width: w, height: h}, nil
}

func (s *Swapchain) configureLocked(w, h int) error {
	alpha, present := surfaceModes(s.opaque, s.async)
	err := s.surface.Configure(s.device, &wgpu.SurfaceConfiguration{
		Width:       uint32(w),
		Height:      uint32(h),
		Format:      s.format,
		Usage:       wgpu.TextureUsageRenderAttachment,
		PresentMode: present,
		AlphaMode:   alpha,
	})
	if err != nil {
		return fmt.Errorf("configure surface: %w", err)
	}
	s.width, s.height = w, h
	s.dirty = false
	s.log.Debug("wgpu: surface configured",
		"width", w, "height", h, "alpha", alpha, "present", present)
	return nil
}

// Release unconfigures the surface. The surface itself stays owned by the
// caller.
func (s *Swapchain) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return
	}
	s.released = true
	if s.acquired {
		s.surface.DiscardTexture()
		s.acquired = false
	}
	s.surface.Unconfigure()
}

func (s *Swapchain) finish(tex *wgpu.SurfaceTexture, present bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acquired = false
	if s.released {
		return swapchain.ErrReleased
	}
	if !present {
		s.surface.DiscardTexture()
		return nil
	}
	return s.surface.Present(tex)
}

type drawable struct {
	sc     *Swapchain
	tex    *wgpu.SurfaceTexture
	width  int
	height int

	// newView overrides the render attachment, for offscreen targets.
	newView func() (*wgpu.TextureView, error)

	mu   sync.Mutex
	done bool
}

func (d *drawable) Size() (int, int) {
	return d.width, d.height
}

// view creates the render attachment view of the drawable.
func (d *drawable) view() (*wgpu.TextureView, error) {
	if d.newView != nil {
		return d.newView()
	}
	return d.tex.CreateView(nil)
}

func (d *drawable) Present() error {
	if !d.take() {
		return swapchain.ErrReleased
	}
	return d.sc.finish(d.tex, true)
}

func (d *drawable) Release() {
	if d.take() {
		_ = d.sc.finish(d.tex, false)
	}
}

func (d *drawable) take() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.done {
		return false
	}
	d.done = true
	return true
}
