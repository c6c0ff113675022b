// Copyright 2025 The Gromb Authors. All rights reserved.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package bitio

import "errors"

var (
	// ErrInvalidWidth reports a push or pop width outside [1, 32].
	ErrInvalidWidth = errors.New("bitio: width must be in [1, 32]")

	// ErrCodeOverflow reports a push code with nonzero bits above width.
	ErrCodeOverflow = errors.New("bitio: code has bits set above width")

	// ErrNoEmit reports a PushStream configured without WithEmit.
	ErrNoEmit = errors.New("bitio: push stream requires WithEmit")

	// ErrNoFetch reports a PopStream configured without WithFetch.
	ErrNoFetch = errors.New("bitio: pop stream requires WithFetch")

	// ErrBufferTooSmall reports an allocator or fetched packet whose buffer
	// cannot safely hold a 32-bit spill plus the 8-byte unaligned peek tail.
	ErrBufferTooSmall = errors.New("bitio: buffer capacity too small")
)
