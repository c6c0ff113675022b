// Copyright 2025 The Gromb Authors. All rights reserved.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package bitio implements a bit-granular streaming codec: PushStream packs
// variable-width (1-32 bit) code-words into fixed-capacity Buffers and hands
// filled Buffers off as Packets; PopStream does the inverse. Buffers are
// exchanged with caller-supplied sinks and sources, so the codec itself never
// decides where packets come from or go.
package bitio

// Buffer is an owned, fixed-capacity byte region. It is conceptually
// move-only: once handed to a Packet or consumed by take, the original
// Buffer value must not be read from or written to again. Go has no
// compiler-enforced linear types, so this is a documented convention rather
// than a runtime guarantee - the same trade every slice-based API in this
// ecosystem makes.
type Buffer struct {
	data    []byte
	release func([]byte)
}

// NewBuffer allocates a zeroed Buffer of the given capacity in bytes. A
// capacity of zero or less yields the zero (invalid) Buffer.
func NewBuffer(capacity int) Buffer {
	if capacity <= 0 {
		return Buffer{}
	}
	return Buffer{data: make([]byte, capacity)}
}

// NewBufferWithRelease wraps an existing byte slice as a Buffer. release, if
// non-nil, is invoked by Close with the slice that was wrapped - the Go
// analogue of the source design's custom deleter hook, useful for returning
// the slice to a pool instead of letting it fall to the garbage collector.
func NewBufferWithRelease(data []byte, release func([]byte)) Buffer {
	return Buffer{data: data, release: release}
}

// Capacity returns the buffer's byte capacity. It is immutable for the life
// of the Buffer.
func (b Buffer) Capacity() int { return len(b.data) }

// Data exposes the buffer's full backing region for direct read/write access.
func (b Buffer) Data() []byte { return b.data }

// Valid reports whether the Buffer still owns a backing region. The zero
// Buffer, and any Buffer that has been moved via take or released via
// Close, is invalid.
func (b Buffer) Valid() bool { return b.data != nil }

// take performs a move: it returns the receiver's contents and clears the
// receiver to the zero value, mirroring a C++ move constructor leaving its
// source empty.
func (b *Buffer) take() Buffer {
	out := *b
	*b = Buffer{}
	return out
}

// Close runs the release hook, if one was supplied, and clears the Buffer.
// Calling Close on an already-empty Buffer is a no-op.
func (b *Buffer) Close() {
	if b.release != nil && b.data != nil {
		b.release(b.data)
	}
	*b = Buffer{}
}
