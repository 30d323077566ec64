// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package pacer drives GPU frame production in lock-step with a frame clock.
//
// # Overview
//
// A Redrawer decides when to draw, bounds how much GPU work is in flight and
// decides how each frame is presented. It ties together:
//
//   - a frame clock (package clock) that ticks at the display refresh rate,
//   - a redraw gate (package gate) that pauses the clock when nothing needs
//     drawing and counts draw-eligible ticks,
//   - a submission throttle (package throttle) holding at most one permit per
//     swapchain image,
//   - a swapchain and device (package swapchain) provided by a backend.
//
// Every frame is recorded with gg's deferred recorder, replayed into the
// next drawable and presented.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/pacer"
//	    _ "github.com/gogpu/pacer/backend/software"
//	)
//
//	sc, dev, err := swapchain.Open("software", swapchain.Config{Window: win})
//	r, err := pacer.New(sc, dev, content)
//	defer r.Dispose()
//
//	r.NeedRedraw() // draws on the next two ticks
//
// # Presentation
//
// Frames are normally presented immediately: the drawable is attached to the
// frame's command buffer and shown once the GPU schedules it.
//
// When the content producer returns an interop transaction carrying actions,
// or when WithForcePresentWithTransaction is set, the frame is presented
// transactionally: the command buffer is committed, the Redrawer waits until
// the GPU scheduled it, presents the drawable from the owning goroutine and
// only then runs the actions. Externally composited content changed by the
// actions lands in the same compositor update as the GPU frame.
//
// # Threading
//
// A Redrawer belongs to one goroutine, the one its clock ticks are
// dispatched to (see WithDispatcher). Its methods are not safe for
// concurrent use; Do runs a function on the owning goroutine. Command
// buffer completion handlers run on backend goroutines and only touch the
// throttle.
//
// # Logging
//
// pacer logs through log/slog and is silent by default. See SetLogger.
package pacer
