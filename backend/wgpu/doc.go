// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package wgpu presents frames on a gogpu/wgpu surface.
//
// Recordings are rasterized on the CPU, uploaded to an RGBA texture with
// Queue.WriteTexture and drawn onto the acquired surface texture by a small
// WGSL blit pipeline. The blit is submitted when the render target is
// flushed. Command buffers created by the device cover everything flushed
// before them; they are scheduled as soon as they are committed and
// complete once Queue.Poll reports their submission index.
//
// The caller creates the surface and device and passes them in
// swapchain.Config.Native:
//
//	sc, dev, err := swapchain.Open(wgpu.Name, swapchain.Config{
//	    Window: window,
//	    Native: &wgpu.Target{Surface: surface, Device: device},
//	})
//
// Interop modes map to surface settings: opaque frames use
// CompositeAlphaModeOpaque, compositable ones CompositeAlphaModePremultiplied.
// Asynchronous presentation uses mailbox presentation; synchronous
// presentation uses FIFO.
package wgpu
