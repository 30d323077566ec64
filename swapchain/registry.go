// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package swapchain

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DefaultImageCount is the swapchain image count used when a backend does
// not report one (triple buffering).
const DefaultImageCount = 3

// ErrUnknownBackend is returned by Open for unregistered backend names.
var ErrUnknownBackend = errors.New("swapchain: unknown backend")

// ErrNoBackend is returned by OpenBest when no backend is registered.
var ErrNoBackend = errors.New("swapchain: no backend registered")

// Config carries what a backend needs to build a swapchain.
type Config struct {
	// Window supplies the drawable size (logical size * scale factor).
	Window gpucontext.WindowProvider

	// Provider shares the host's GPU device, if any.
	Provider gpucontext.DeviceProvider

	// ImageCount is the requested number of swapchain images.
	// Zero selects DefaultImageCount.
	ImageCount int

	// Format is the drawable pixel format. Undefined lets the backend
	// choose (usually Provider.SurfaceFormat()).
	Format gputypes.TextureFormat

	// Native holds backend-specific handles, such as a *wgpu.Surface or a
	// gpucontext.TextureDrawer.
	Native any
}

// ResolvedImageCount returns ImageCount, or DefaultImageCount when unset.
func (c Config) ResolvedImageCount() int {
	if c.ImageCount > 0 {
		return c.ImageCount
	}
	return DefaultImageCount
}

// PhysicalSize returns the window size in physical pixels.
// A nil window reports 0x0.
func PhysicalSize(w gpucontext.WindowProvider) (width, height int) {
	if w == nil {
		return 0, 0
	}
	lw, lh := w.Size()
	scale := w.ScaleFactor()
	return int(float64(lw) * scale), int(float64(lh) * scale)
}

// Factory builds a swapchain and its device.
type Factory func(cfg Config) (Swapchain, Device, error)

// backends is the process-wide backend registry. GPU backends are
// preferred over host-drawn and CPU backends.
var backends = gpucontext.NewRegistry[Factory](
	gpucontext.WithPriority("wgpu", "hosted", "software"),
)

// Register makes a backend available by name. Backend packages call it from
// init, the way database/sql drivers do:
//
//	import _ "github.com/gogpu/pacer/backend/software"
//
// Registering an existing name replaces it.
func Register(name string, factory Factory) {
	backends.Register(name, func() Factory { return factory })
}

// Unregister removes a backend.
func Unregister(name string) {
	backends.Unregister(name)
}

// Backends returns the registered backend names, sorted.
func Backends() []string {
	names := backends.Available()
	sort.Strings(names)
	return names
}

// Open builds a swapchain with the named backend.
func Open(name string, cfg Config) (Swapchain, Device, error) {
	if !backends.Has(name) {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	factory := backends.Get(name)
	sc, dev, err := factory(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("swapchain: open %s: %w", name, err)
	}
	return sc, dev, nil
}

// OpenBest builds a swapchain with the highest-priority registered backend
// and returns the backend's name.
func OpenBest(cfg Config) (string, Swapchain, Device, error) {
	name := backends.BestName()
	if name == "" {
		return "", nil, nil, ErrNoBackend
	}
	sc, dev, err := Open(name, cfg)
	return name, sc, dev, err
}
