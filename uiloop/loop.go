// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package uiloop provides an owning-thread executor for hosts that do not
// bring their own UI loop.
//
// A Loop runs submitted functions one at a time on a goroutine locked to
// its OS thread. Frame clock ticks, redraw gate updates and frame drawing
// are posted to it, so everything the pacer keeps unlocked is touched from
// a single thread.
package uiloop

import (
	"errors"
	"runtime"
	"sync"
)

// ErrClosed is returned by Call after Close.
var ErrClosed = errors.New("uiloop: closed")

// DefaultQueueSize is the number of functions that can be posted without
// blocking.
const DefaultQueueSize = 64

// Loop is a single-threaded function executor.
type Loop struct {
	funcs   chan func()
	stop    chan struct{}
	stopped chan struct{}
	once    sync.Once

	mu     sync.RWMutex
	closed bool
}

// New starts a loop with the given queue size. A size below one selects
// DefaultQueueSize.
func New(queueSize int) *Loop {
	if queueSize < 1 {
		queueSize = DefaultQueueSize
	}
	l := &Loop{
		funcs:   make(chan func(), queueSize),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	ready := make(chan struct{})
	go l.run(ready)
	<-ready
	return l
}

func (l *Loop) run(ready chan<- struct{}) {
	defer close(l.stopped)
	runtime.LockOSThread()
	// Not unlocked: the thread is discarded when the goroutine exits.
	close(ready)
	for {
		select {
		case fn := <-l.funcs:
			fn()
		case <-l.stop:
			// Drain what was posted before Close.
			for {
				select {
				case fn := <-l.funcs:
					fn()
				default:
					return
				}
			}
		}
	}
}

// Post queues fn to run on the loop thread and returns immediately unless
// the queue is full. It reports false if the loop is closed. Posting to a
// full queue from the loop thread deadlocks.
func (l *Loop) Post(fn func()) bool {
	if fn == nil {
		return false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return false
	}
	l.funcs <- fn
	return true
}

// Dispatch posts fn, dropping it if the loop is closed. It has the
// signature of clock.Dispatcher.
func (l *Loop) Dispatch(fn func()) {
	l.Post(fn)
}

// Call runs fn on the loop thread and waits for it to return.
// Calling it from the loop thread itself deadlocks.
func (l *Loop) Call(fn func()) error {
	done := make(chan struct{})
	if !l.Post(func() {
		defer close(done)
		fn()
	}) {
		return ErrClosed
	}
	<-done
	return nil
}

// Close stops accepting work, runs what was already queued and waits for
// the loop thread to exit. Close must not be called from the loop thread.
func (l *Loop) Close() {
	l.once.Do(func() {
		l.mu.Lock()
		l.closed = true
		l.mu.Unlock()
		close(l.stop)
	})
	<-l.stopped
}

// Done is closed once the loop thread exited.
func (l *Loop) Done() <-chan struct{} {
	return l.stopped
}
