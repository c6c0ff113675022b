// Copyright 2025 The Gromb Authors. All rights reserved.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package bitio

// defaultBufferBits is the capacity, in bits, of a buffer produced by the
// default allocator when none is configured via WithAllocate/WithBufferBits.
const defaultBufferBits = 8192 // 1024 bytes

// minBufferBytes is the smallest buffer capacity that keeps both the
// 4-byte staging spill and the 8-byte unaligned peek tail in bounds.
const minBufferBytes = 8

// pushConfig holds PushStream construction options.
type pushConfig struct {
	emit       func(Packet) error
	allocate   func() (Buffer, error)
	bufferBits int
}

// PushOption configures a PushStream at construction time.
type PushOption func(*pushConfig)

// WithEmit sets the sink callback that receives each filled packet. Required.
func WithEmit(emit func(Packet) error) PushOption {
	return func(c *pushConfig) { c.emit = emit }
}

// WithAllocate sets the buffer allocation callback. If omitted, a default
// allocator producing defaultBufferBits/8-byte buffers is used.
func WithAllocate(allocate func() (Buffer, error)) PushOption {
	return func(c *pushConfig) { c.allocate = allocate }
}

// WithBufferBits sizes the default allocator, in bits. Ignored if
// WithAllocate is also given.
func WithBufferBits(bits int) PushOption {
	return func(c *pushConfig) { c.bufferBits = bits }
}

// popConfig holds PopStream construction options.
type popConfig struct {
	fetch func() (Packet, error)
}

// PopOption configures a PopStream at construction time.
type PopOption func(*popConfig)

// WithFetch sets the source callback that supplies the next packet. Required.
func WithFetch(fetch func() (Packet, error)) PopOption {
	return func(c *popConfig) { c.fetch = fetch }
}
