// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"sync"
	"time"

	"github.com/gogpu/pacer/swapchain"
)

// DefaultPollInterval is how often the queue is polled for completed
// submissions.
const DefaultPollInterval = time.Millisecond

type submission struct {
	index uint64
	buf   *swapchain.Buffer
}

// poller completes buffers once the queue reports their submission index
// as done. Buffers complete in submission order.
type poller struct {
	poll     func() uint64
	interval time.Duration

	mu      sync.Mutex
	pending []submission
	closed  bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

func newPoller(poll func() uint64, interval time.Duration) *poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	p := &poller{
		poll:     poll,
		interval: interval,
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go p.run()
	return p
}

// track registers buf as finishing with submission index.
// It reports false when the poller was closed.
func (p *poller) track(index uint64, buf *swapchain.Buffer) bool {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	p.pending = append(p.pending, submission{index: index, buf: buf})
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
	return true
}

func (p *poller) run() {
	defer close(p.done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			p.completeUpTo(^uint64(0))
			return
		case <-p.wake:
		case <-ticker.C:
		}
		if p.idle() {
			continue
		}
		p.completeUpTo(p.poll())
	}
}

func (p *poller) idle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending) == 0
}

func (p *poller) completeUpTo(index uint64) {
	p.mu.Lock()
	n := 0
	for n < len(p.pending) && p.pending[n].index <= index {
		n++
	}
	done := p.pending[:n:n]
	p.pending = p.pending[n:]
	p.mu.Unlock()

	for _, s := range done {
		_ = s.buf.MarkCompleted()
	}
}

// close stops polling and completes every outstanding buffer.
func (p *poller) close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		<-p.done
		return
	}
	p.closed = true
	p.mu.Unlock()
	close(p.stop)
	<-p.done
}
