// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pacer

import (
	"context"
	"sync"
)

// encoder replays and submits plain frames on a background goroutine.
//
// At most one frame is handed over at a time: post waits for the previous
// frame to be encoded before handing over the next. barrier waits for the
// goroutine to go idle; the owning goroutine calls it before encoding
// anything whose presentation must be ordered against interop actions.
type encoder struct {
	r      *Redrawer
	frames chan frame
	busy   sync.WaitGroup
	done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
}

func newEncoder(r *Redrawer) *encoder {
	ctx, cancel := context.WithCancel(context.Background())
	e := &encoder{
		r:      r,
		frames: make(chan frame),
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
	go e.run()
	return e
}

func (e *encoder) run() {
	defer close(e.done)
	for f := range e.frames {
		e.r.encode(e.ctx, f)
		e.busy.Done()
	}
}

// post hands f to the encoder goroutine.
func (e *encoder) post(f frame) {
	e.busy.Wait()
	e.busy.Add(1)
	e.frames <- f
}

// barrier blocks until the encoder goroutine is idle.
func (e *encoder) barrier() {
	e.busy.Wait()
}

// close cancels a frame waiting for a permit and stops the goroutine.
func (e *encoder) close() {
	e.cancel()
	close(e.frames)
	<-e.done
}
