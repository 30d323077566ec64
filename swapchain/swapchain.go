// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package swapchain

import (
	"errors"

	"github.com/gogpu/gg/recording"
)

// Errors returned by swapchain backends.
var (
	// ErrNoDrawable is returned by NextDrawable when no swapchain image is
	// available (timeout, resource exhaustion, surface lost).
	ErrNoDrawable = errors.New("swapchain: no drawable available")

	// ErrReleased is returned when a released object is used.
	ErrReleased = errors.New("swapchain: released")

	// ErrSizeMismatch is returned when a recording does not fit its target.
	ErrSizeMismatch = errors.New("swapchain: recording size does not match target")

	// ErrCommitted is returned when a command buffer is committed twice.
	ErrCommitted = errors.New("swapchain: command buffer already committed")
)

// Swapchain is a rotating set of GPU-writable images presented in turn.
type Swapchain interface {
	// DrawableSize returns the current drawable size in physical pixels.
	// Either dimension may be zero during rotation or resize.
	DrawableSize() (width, height int)

	// ImageCount returns the number of swapchain images. The redrawer sizes
	// its in-flight budget from it.
	ImageCount() int

	// NextDrawable acquires the next image. Returns ErrNoDrawable (possibly
	// wrapped) when none is available; the caller skips the frame.
	NextDrawable() (Drawable, error)

	// SetInteropMode switches between the default opaque, asynchronously
	// drawn mode and the compositable mode required while interop content
	// is on screen (opaque=false, async=false).
	SetInteropMode(opaque, async bool)

	// Release frees swapchain resources.
	Release()
}

// Drawable is a swapchain image acquired for one frame.
type Drawable interface {
	// Size returns the drawable size in physical pixels.
	Size() (width, height int)

	// Present presents the drawable immediately from the calling goroutine.
	// Used by transactional presentation after the GPU acknowledged the
	// frame's schedule.
	Present() error

	// Release returns an unpresented drawable to the swapchain.
	Release()
}

// RenderTarget is a GPU render target built over a drawable.
type RenderTarget interface {
	// Replay draws the recorded frame into the target.
	Replay(rec *recording.Recording) error

	// Flush submits the replayed work to the queue.
	Flush() error

	// Release frees the target. The drawable is not released.
	Release()
}

// Queue is the logical GPU command submission queue.
type Queue interface {
	// NewCommandBuffer creates an empty command buffer.
	NewCommandBuffer(label string) (CommandBuffer, error)
}

// Device creates render targets and owns the queue.
type Device interface {
	// NewRenderTarget wraps a drawable as a render target.
	NewRenderTarget(d Drawable) (RenderTarget, error)

	// Queue returns the device queue.
	Queue() Queue

	// Release frees device-level resources (pipelines, staging memory).
	Release()
}

// CommandBuffer is a recorded, GPU-submittable unit of work.
//
// Completed handlers run on a backend goroutine, never on the goroutine
// that committed the buffer.
type CommandBuffer interface {
	// Label returns the debug label.
	Label() string

	// AddCompletedHandler registers fn to run once the GPU completes the
	// buffer. Must be called before Commit.
	AddCompletedHandler(fn func())

	// PresentDrawable schedules d to be presented as soon as the buffer is
	// scheduled. Must be called before Commit.
	PresentDrawable(d Drawable)

	// Commit enqueues the buffer. Non-blocking. When it fails, completed
	// handlers still run and attached drawables are released.
	Commit() error

	// WaitUntilScheduled blocks until the buffer has been scheduled on the
	// GPU. Returns immediately if it already was.
	WaitUntilScheduled()

	// WaitUntilCompleted blocks until the GPU completed the buffer.
	WaitUntilCompleted()

	// Status reports the buffer's progress.
	Status() Status
}

// Status is the progress of a command buffer.
type Status uint8

const (
	// StatusNotEnqueued means the buffer was not committed yet.
	StatusNotEnqueued Status = iota

	// StatusCommitted means the buffer was committed but not yet scheduled.
	StatusCommitted

	// StatusScheduled means the GPU accepted the buffer for execution.
	StatusScheduled

	// StatusCompleted means the GPU finished the buffer.
	StatusCompleted

	// StatusError means execution failed. Completed handlers still run.
	StatusError
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusNotEnqueued:
		return "NotEnqueued"
	case StatusCommitted:
		return "Committed"
	case StatusScheduled:
		return "Scheduled"
	case StatusCompleted:
		return "Completed"
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// AtLeastScheduled reports whether the GPU has taken the buffer.
func (s Status) AtLeastScheduled() bool {
	return s >= StatusScheduled
}
