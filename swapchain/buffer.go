// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package swapchain

import (
	"errors"
	"sync"
)

// SubmitFunc hands a committed buffer to a backend queue. The backend later
// drives the buffer through MarkScheduled and MarkCompleted.
type SubmitFunc func(b *Buffer) error

// Buffer is the command buffer state machine shared by backends.
//
// It implements CommandBuffer. Backends create it with NewBuffer, encode
// their work alongside it, and report GPU progress with MarkScheduled and
// MarkCompleted from whatever goroutine observes that progress.
type Buffer struct {
	label  string
	submit SubmitFunc

	mu       sync.Mutex
	cond     *sync.Cond
	status   Status
	handlers []func()
	present  []Drawable
	err      error
	done     bool
}

var _ CommandBuffer = (*Buffer)(nil)

// NewBuffer creates a buffer that calls submit on Commit.
func NewBuffer(label string, submit SubmitFunc) *Buffer {
	b := &Buffer{label: label, submit: submit}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Label returns the debug label.
func (b *Buffer) Label() string {
	return b.label
}

// AddCompletedHandler registers fn to run on completion.
func (b *Buffer) AddCompletedHandler(fn func()) {
	if fn == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, fn)
}

// PresentDrawable attaches d for presentation once scheduled.
func (b *Buffer) PresentDrawable(d Drawable) {
	if d == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.present = append(b.present, d)
}

// Commit enqueues the buffer through the backend's submit function.
// A submit failure completes the buffer with StatusError so completion
// handlers still run.
func (b *Buffer) Commit() error {
	b.mu.Lock()
	if b.status != StatusNotEnqueued {
		b.mu.Unlock()
		return ErrCommitted
	}
	b.status = StatusCommitted
	b.mu.Unlock()

	if b.submit == nil {
		return nil
	}
	if err := b.submit(b); err != nil {
		b.MarkFailed(err)
		return err
	}
	return nil
}

// MarkScheduled moves the buffer to StatusScheduled and presents the
// attached drawables. It returns the joined presentation errors.
// Calling it again, or after completion, is a no-op.
func (b *Buffer) MarkScheduled() error {
	b.mu.Lock()
	if b.status >= StatusScheduled {
		b.mu.Unlock()
		return nil
	}
	b.status = StatusScheduled
	present := b.present
	b.present = nil
	b.cond.Broadcast()
	b.mu.Unlock()

	var errs []error
	for _, d := range present {
		if err := d.Present(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// MarkCompleted runs the completed handlers and moves the buffer to
// StatusCompleted. A buffer that was never marked scheduled is scheduled
// first. Handlers run before waiters of WaitUntilCompleted are released.
func (b *Buffer) MarkCompleted() error {
	err := b.MarkScheduled()
	b.finish(StatusCompleted, nil)
	return err
}

// MarkFailed completes the buffer with StatusError. Attached drawables are
// released unpresented.
func (b *Buffer) MarkFailed(err error) {
	b.mu.Lock()
	present := b.present
	b.present = nil
	b.mu.Unlock()
	for _, d := range present {
		d.Release()
	}
	b.finish(StatusError, err)
}

func (b *Buffer) finish(status Status, err error) {
	b.mu.Lock()
	if b.done {
		b.mu.Unlock()
		return
	}
	b.done = true
	handlers := b.handlers
	b.handlers = nil
	b.mu.Unlock()

	for _, fn := range handlers {
		fn()
	}

	b.mu.Lock()
	b.status = status
	b.err = err
	b.cond.Broadcast()
	b.mu.Unlock()
}

// WaitUntilScheduled blocks until the buffer is at least scheduled.
func (b *Buffer) WaitUntilScheduled() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for b.status < StatusScheduled {
		b.cond.Wait()
	}
}

// WaitUntilCompleted blocks until the buffer completed or failed.
func (b *Buffer) WaitUntilCompleted() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for b.status != StatusCompleted && b.status != StatusError {
		b.cond.Wait()
	}
}

// Status reports the buffer's progress.
func (b *Buffer) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// Err returns the failure recorded by MarkFailed.
func (b *Buffer) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}
