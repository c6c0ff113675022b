// Copyright 2025 The Gromb Authors. All rights reserved.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"sync"

	"github.com/tayne3/bitio"
)

// defaultQueueCapacity bounds a MemoryQueue's channel when NewMemoryQueue is
// given a non-positive capacity.
const defaultQueueCapacity = 16

// MemoryQueue hands packets from one goroutine's PushStream to another's
// PopStream over a bounded channel, without touching disk or network. It is
// the transport used by bitiobench's default mode and by same-process
// pipelines that only need to decouple producer and consumer.
type MemoryQueue struct {
	ch        chan bitio.Packet
	done      chan struct{}
	closeOnce sync.Once
}

// NewMemoryQueue constructs a queue backed by a channel of the given
// capacity (at least 1, defaulting to defaultQueueCapacity). Emit blocks
// once the channel is full.
func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = defaultQueueCapacity
	}
	return &MemoryQueue{
		ch:   make(chan bitio.Packet, capacity),
		done: make(chan struct{}),
	}
}

// Emit is a bitio.PushOption-compatible sink: it sends p on the channel,
// blocking while the channel is full, and fails once the queue is closed.
func (q *MemoryQueue) Emit(p bitio.Packet) error {
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}
	select {
	case q.ch <- p:
		return nil
	case <-q.done:
		return ErrQueueClosed
	}
}

// Fetch is a bitio.PopOption-compatible source: it blocks until a packet is
// available or the queue is closed and drained.
//
// done never closes ch itself - closing a channel concurrently with a
// blocked send on it races with Emit, which runs on an independent
// goroutine. Once done fires, Fetch drains whatever is left in ch with a
// non-blocking receive before reporting ErrQueueClosed, so packets already
// queued are still delivered.
func (q *MemoryQueue) Fetch() (bitio.Packet, error) {
	select {
	case p := <-q.ch:
		return p, nil
	case <-q.done:
		select {
		case p := <-q.ch:
			return p, nil
		default:
			return bitio.Packet{}, ErrQueueClosed
		}
	}
}

// Close marks the queue closed and unblocks any Emit waiting to send.
// Packets already buffered in the channel are still delivered by Fetch;
// once drained, Fetch returns ErrQueueClosed.
func (q *MemoryQueue) Close() {
	q.closeOnce.Do(func() { close(q.done) })
}
