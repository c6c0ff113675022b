// Copyright 2025 The Gromb Authors. All rights reserved.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transport provides concrete emit/fetch collaborators for
// github.com/tayne3/bitio streams: an in-memory queue for same-process
// producer/consumer pairs, a length-prefixed file format, and a
// flate-compressed variant of the file format.
package transport

import "errors"

var (
	// ErrQueueClosed is returned by a memory queue's fetch once the queue has
	// been closed and drained.
	ErrQueueClosed = errors.New("transport: queue closed")

	// ErrFrameTooLarge is returned when a fetched frame's declared bit count
	// would require a negative or implausibly large payload read.
	ErrFrameTooLarge = errors.New("transport: frame bit count exceeds limit")

	// ErrShortPayload is returned when a frame's payload is truncated before
	// the reader observes as many bytes as the frame header promised.
	ErrShortPayload = errors.New("transport: truncated frame payload")
)

// maxFrameBits bounds a single frame's declared bit count, guarding against a
// corrupt or adversarial length header forcing an enormous allocation.
const maxFrameBits = 1 << 34
