// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package swapchain

import "sync"

// DefaultQueueDepth is the number of committed buffers a SerialQueue
// accepts before Commit blocks.
const DefaultQueueDepth = 16

// SerialQueue is a Queue for backends whose work is done by the time a
// buffer is committed, such as CPU rasterizers. A single goroutine takes
// committed buffers in order and marks each scheduled, then completed.
//
// Presentation of attached drawables therefore happens on the queue
// goroutine, in commit order.
type SerialQueue struct {
	mu     sync.Mutex
	work   chan *Buffer
	closed bool
	done   chan struct{}
	onErr  func(error)
}

var _ Queue = (*SerialQueue)(nil)

// NewSerialQueue starts a queue goroutine. onErr, if non-nil, receives
// presentation errors.
func NewSerialQueue(depth int, onErr func(error)) *SerialQueue {
	if depth < 1 {
		depth = DefaultQueueDepth
	}
	q := &SerialQueue{
		work:  make(chan *Buffer, depth),
		done:  make(chan struct{}),
		onErr: onErr,
	}
	go q.run()
	return q
}

func (q *SerialQueue) run() {
	defer close(q.done)
	for b := range q.work {
		if err := b.MarkCompleted(); err != nil && q.onErr != nil {
			q.onErr(err)
		}
	}
}

// NewCommandBuffer creates a buffer submitted to this queue on Commit.
func (q *SerialQueue) NewCommandBuffer(label string) (CommandBuffer, error) {
	return NewBuffer(label, q.submit), nil
}

func (q *SerialQueue) submit(b *Buffer) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrReleased
	}
	q.work <- b
	return nil
}

// Close stops accepting buffers and waits until every buffer already
// committed has completed. Close is idempotent.
func (q *SerialQueue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.work)
	}
	q.mu.Unlock()
	<-q.done
}
