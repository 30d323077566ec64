// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package replay

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/gg/recording"

	"github.com/gogpu/pacer/swapchain"
)

func TestIntoDrawsRecording(t *testing.T) {
	rec := recording.NewRecorder(16, 16)
	rec.SetRGB(1, 0, 0)
	rec.DrawRectangle(0, 0, 16, 16)
	rec.Fill()

	dst := image.NewRGBA(image.Rect(0, 0, 16, 16))
	if err := Into(dst, rec.FinishRecording()); err != nil {
		t.Fatalf("Into() error = %v", err)
	}
	c := dst.RGBAAt(8, 8)
	if c.R < 200 || c.G > 50 || c.B > 50 || c.A < 200 {
		t.Errorf("center pixel = %v, want opaque red", c)
	}
}

func TestIntoSizeMismatch(t *testing.T) {
	rec := recording.NewRecorder(8, 8).FinishRecording()
	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	if err := Into(dst, rec); !errors.Is(err, swapchain.ErrSizeMismatch) {
		t.Errorf("Into() error = %v, want ErrSizeMismatch", err)
	}
	if err := Into(dst, nil); err == nil {
		t.Error("Into(nil) returned nil error")
	}
}

func TestScale(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 20, 10))
	tests := []struct {
		factor float64
		w, h   int
	}{
		{1, 20, 10},
		{0.5, 10, 5},
		{2, 40, 20},
		{0.01, 1, 1},
	}
	for _, tt := range tests {
		got := Scale(src, tt.factor).Bounds()
		if got.Dx() != tt.w || got.Dy() != tt.h {
			t.Errorf("Scale(%v) = %dx%d, want %dx%d", tt.factor, got.Dx(), got.Dy(), tt.w, tt.h)
		}
	}
}

func TestCompose(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	if a := Compose(src, true).RGBAAt(0, 0).A; a != 255 {
		t.Errorf("opaque Compose alpha = %d, want 255", a)
	}
	if a := Compose(src, false).RGBAAt(0, 0).A; a != 0 {
		t.Errorf("compositable Compose alpha = %d, want 0", a)
	}
}

func TestTargetRelease(t *testing.T) {
	target := NewTarget(image.NewRGBA(image.Rect(0, 0, 4, 4)))
	if err := target.Replay(recording.NewRecorder(4, 4).FinishRecording()); err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if err := target.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	target.Release()
	if err := target.Replay(recording.NewRecorder(4, 4).FinishRecording()); !errors.Is(err, swapchain.ErrReleased) {
		t.Errorf("Replay() after Release error = %v", err)
	}
	if err := target.Flush(); !errors.Is(err, swapchain.ErrReleased) {
		t.Errorf("Flush() after Release error = %v", err)
	}
}
