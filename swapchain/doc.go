// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package swapchain defines the GPU-facing contract of the redrawer: the
// swapchain that hands out drawables, the device that turns drawables into
// render targets, and the queue whose command buffers report when the GPU
// scheduled and completed them.
//
// # Backends
//
// Backends register themselves by name, following the database/sql driver
// pattern:
//
//	import _ "github.com/gogpu/pacer/backend/software"
//
//	sc, dev, err := swapchain.Open("software", swapchain.Config{
//	    Window: gpucontext.NullWindowProvider{W: 800, H: 600},
//	})
//
// Bundled backends:
//
//   - wgpu: renders into a wgpu.Surface (backend/wgpu)
//   - hosted: draws into a texture owned by a gogpu host window (backend/hosted)
//   - software: CPU images with an emulated queue (backend/software)
//
// # Command buffers
//
// Buffer implements the command buffer state machine
// (NotEnqueued -> Committed -> Scheduled -> Completed) so backends only
// report GPU progress. Completed handlers run on the goroutine that
// observes completion, never on the committing goroutine.
package swapchain
