// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package replay rasterizes gg recordings into RGBA images for backends
// that present CPU pixels.
package replay

import (
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/gg/recording"
	"github.com/gogpu/gg/recording/backends/raster"
	"golang.org/x/image/draw"

	"github.com/gogpu/pacer/swapchain"
)

// Into replays rec with gg's raster backend and copies the result into dst.
// The recording must have dst's size.
func Into(dst *image.RGBA, rec *recording.Recording) error {
	if rec == nil {
		return fmt.Errorf("replay: nil recording")
	}
	b := dst.Bounds()
	if rec.Width() != b.Dx() || rec.Height() != b.Dy() {
		return fmt.Errorf("%w: recording %dx%d, target %dx%d",
			swapchain.ErrSizeMismatch, rec.Width(), rec.Height(), b.Dx(), b.Dy())
	}

	rb := raster.NewBackend()
	if err := rec.Playback(rb); err != nil {
		return fmt.Errorf("replay: playback: %w", err)
	}
	draw.Draw(dst, b, rb.Image(), image.Point{}, draw.Src)
	return nil
}

// Scale returns src resized by factor with bilinear filtering.
// A factor of 1 returns a copy.
func Scale(src image.Image, factor float64) *image.RGBA {
	sb := src.Bounds()
	w := max(int(float64(sb.Dx())*factor), 1)
	h := max(int(float64(sb.Dy())*factor), 1)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == sb.Dx() && h == sb.Dy() {
		draw.Draw(dst, dst.Bounds(), src, sb.Min, draw.Src)
		return dst
	}
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, sb, draw.Src, nil)
	return dst
}

// Compose copies src into a new image. In opaque mode src is composited
// over black so every pixel ends up fully opaque.
func Compose(src *image.RGBA, opaque bool) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	if opaque {
		draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Over)
		return dst
	}
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}

// Target is a render target over a CPU image. Replay rasterizes
// synchronously, so Flush has nothing left to submit.
type Target struct {
	dst *image.RGBA
}

var _ swapchain.RenderTarget = (*Target)(nil)

// NewTarget returns a render target drawing into dst.
func NewTarget(dst *image.RGBA) *Target {
	return &Target{dst: dst}
}

// Replay rasterizes rec into the target image.
func (t *Target) Replay(rec *recording.Recording) error {
	if t.dst == nil {
		return swapchain.ErrReleased
	}
	return Into(t.dst, rec)
}

// Flush reports whether the target is still usable.
func (t *Target) Flush() error {
	if t.dst == nil {
		return swapchain.ErrReleased
	}
	return nil
}

// Release detaches the target from its image.
func (t *Target) Release() {
	t.dst = nil
}
