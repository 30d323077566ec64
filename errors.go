// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pacer

import "errors"

// Errors returned by New.
var (
	// ErrNilSwapchain is returned when New is called without a swapchain.
	ErrNilSwapchain = errors.New("pacer: nil swapchain")

	// ErrNilDevice is returned when New is called without a device.
	ErrNilDevice = errors.New("pacer: nil device")

	// ErrNilContent is returned when New is called without a content producer.
	ErrNilContent = errors.New("pacer: nil content")

	// ErrInvalidCapacity is returned for a non-positive in-flight capacity.
	ErrInvalidCapacity = errors.New("pacer: in-flight capacity must be positive")
)

// ErrAlreadyDisposed is the panic value of a second Dispose call.
var ErrAlreadyDisposed = errors.New("pacer: redrawer already disposed")

// ErrDisposed is returned by Do after Dispose.
var ErrDisposed = errors.New("pacer: redrawer disposed")
