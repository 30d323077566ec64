// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pacer

import "time"

// Stats is a snapshot of a Redrawer's counters.
type Stats struct {
	// FramesDrawn counts frames whose command buffer was committed.
	FramesDrawn uint64

	// TransactionalPresents counts frames presented transactionally.
	TransactionalPresents uint64

	// SkippedZeroSize counts frames abandoned because the drawable had a
	// zero dimension.
	SkippedZeroSize uint64

	// SkippedNoDrawable counts frames abandoned because no drawable could
	// be acquired.
	SkippedNoDrawable uint64

	// SkippedNoTarget counts frames abandoned because no render target
	// could be built over the drawable.
	SkippedNoTarget uint64

	// SkippedEncode counts frames abandoned during replay, flush or
	// command buffer creation.
	SkippedEncode uint64

	// SubmitErrors counts command buffers whose commit failed.
	SubmitErrors uint64

	// InFlight is the number of throttle permits held by uncompleted frames.
	InFlight int

	// Capacity is the throttle capacity.
	Capacity int

	// LastTimestamp is the effective timestamp of the latest frame.
	LastTimestamp time.Duration

	// InteropActive reports whether interop content is on screen.
	InteropActive bool
}

// Skipped returns the total number of abandoned frames.
func (s Stats) Skipped() uint64 {
	return s.SkippedZeroSize + s.SkippedNoDrawable + s.SkippedNoTarget + s.SkippedEncode
}
