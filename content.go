// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pacer

import (
	"time"

	"github.com/gogpu/gg/recording"

	"github.com/gogpu/pacer/interop"
)

// Content is the producer of frames: the scene or widget tree drawn by the
// Redrawer.
type Content interface {
	// Render draws the frame for timestamp t into rec. It is called at most
	// once per frame, must not block on I/O and must not retain rec.
	Render(rec *recording.Recorder, t time.Duration)

	// RetrieveInteropTransaction returns the interop work pending for the
	// frame. The Redrawer calls it exactly once per drawn frame.
	RetrieveInteropTransaction() interop.Transaction
}

// RenderFunc adapts a plain render function to Content. It never has
// interop work.
type RenderFunc func(rec *recording.Recorder, t time.Duration)

// Render calls f.
func (f RenderFunc) Render(rec *recording.Recorder, t time.Duration) {
	f(rec, t)
}

// RetrieveInteropTransaction returns interop.Empty.
func (f RenderFunc) RetrieveInteropTransaction() interop.Transaction {
	return interop.Empty
}
