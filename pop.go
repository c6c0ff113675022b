// Copyright 2025 The Gromb Authors. All rights reserved.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package bitio

import "encoding/binary"

// PopStream consumes Packets from a caller-supplied source, yielding
// code-words and peek windows. It holds at most one buffer at a time and,
// like PushStream, is single-owner, single-goroutine.
type PopStream struct {
	dir   Direction
	fetch func() (Packet, error)

	buf            Buffer
	bufBeginBit    int
	bufEndBit      int
	readPos        int
	maxSafePeekBit int

	totalConsumed int64
}

// NewPopStream constructs a PopStream for the given direction. WithFetch
// is required. The stream loads its first buffer lazily, on the first
// Pop/Peek/Discard/Align call, so construction cannot fail.
func NewPopStream(dir Direction, opts ...PopOption) *PopStream {
	cfg := popConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &PopStream{dir: dir, fetch: cfg.fetch}
}

func (s *PopStream) loadInputBuffer() error {
	if s.fetch == nil {
		return ErrNoFetch
	}
	if s.buf.Valid() {
		if s.dir == Forward {
			s.totalConsumed += int64(s.readPos - s.bufBeginBit)
		} else {
			s.totalConsumed += int64(s.bufBeginBit - s.readPos)
		}
	}

	pkt, err := s.fetch()
	if err != nil {
		return err
	}
	buf := pkt.take()
	if buf.Capacity() < minBufferBytes {
		return ErrBufferTooSmall
	}
	s.buf = buf
	s.bufBeginBit = pkt.Start
	s.bufEndBit = pkt.End
	s.readPos = s.bufBeginBit
	s.maxSafePeekBit = buf.Capacity()*8 - 32
	return nil
}

func (s *PopStream) ensureLoaded() error {
	if s.buf.Valid() {
		return nil
	}
	return s.loadInputBuffer()
}

// extract reads the width bits starting at bitPos, interpreting the buffer
// as a sequence of big-endian bytes (MSB-first). It is direction-agnostic:
// it always reads ascending from bitPos regardless of which direction the
// caller is walking in.
//
// It loads an 8-byte window the way the source design does, for a uniform
// shift-and-mask regardless of width. When fewer than 8 bytes remain from
// bitPos to the end of the buffer - as within the last 4 bytes below
// maxSafePeekBit, and at the straddle and tail-of-buffer call sites - the
// window is zero-padded on the right. That padding never contaminates
// the result: by construction every caller only asks for positions where
// ceil((bitPos%8+width)/8) real bytes are available, and padding only ever
// occupies bits the subsequent shift discards.
func (s *PopStream) extract(bitPos int, width uint) uint32 {
	data := s.buf.Data()
	byteIdx := bitPos / 8

	var word uint64
	if byteIdx+8 <= len(data) {
		word = binary.BigEndian.Uint64(data[byteIdx : byteIdx+8])
	} else {
		var window [8]byte
		copy(window[:], data[byteIdx:])
		word = binary.BigEndian.Uint64(window[:])
	}

	shift := 64 - width - uint(bitPos%8)
	mask := uint64(1)<<width - 1
	return uint32((word >> shift) & mask)
}

// Pop reads width bits from the stream, fetching additional packets as
// needed when a code straddles a packet boundary. width must be in
// [1, 32].
func (s *PopStream) Pop(width uint8) (uint32, error) {
	if width < 1 || width > 32 {
		return 0, ErrInvalidWidth
	}
	if err := s.ensureLoaded(); err != nil {
		return 0, err
	}
	w := uint(width)

	if s.dir == Forward {
		nextRead := s.readPos + int(w)
		if nextRead <= s.bufEndBit {
			code := s.extract(s.readPos, w)
			s.readPos = nextRead
			return code, nil
		}
		n := uint(s.bufEndBit - s.readPos)
		var code uint32
		if n > 0 {
			code = s.extract(s.readPos, n)
		}
		s.readPos = s.bufEndBit
		if err := s.loadInputBuffer(); err != nil {
			return 0, err
		}
		r := w - n
		code = (code << r) | s.extract(s.readPos, r)
		s.readPos += int(r)
		return code, nil
	}

	nextRead := s.readPos - int(w)
	if nextRead >= s.bufEndBit {
		s.readPos = nextRead
		return s.extract(s.readPos, w), nil
	}
	// The n bits left at the bottom of this buffer are the code's low part;
	// its high part sits at the top of the next buffer.
	n := uint(s.readPos - s.bufEndBit)
	var low uint32
	if n > 0 {
		low = s.extract(s.bufEndBit, n)
	}
	s.readPos = s.bufEndBit
	if err := s.loadInputBuffer(); err != nil {
		return 0, err
	}
	r := w - n
	s.readPos -= int(r)
	return s.extract(s.readPos, r)<<n | low, nil
}

// PopBit is a fast path for single-bit reads.
func (s *PopStream) PopBit() (uint8, error) {
	if err := s.ensureLoaded(); err != nil {
		return 0, err
	}
	if s.dir == Forward {
		if s.readPos >= s.bufEndBit {
			if err := s.loadInputBuffer(); err != nil {
				return 0, err
			}
		}
		b := s.buf.Data()[s.readPos/8]
		bit := (b >> uint(7-s.readPos%8)) & 1
		s.readPos++
		return bit, nil
	}

	if s.readPos <= s.bufEndBit {
		if err := s.loadInputBuffer(); err != nil {
			return 0, err
		}
	}
	s.readPos--
	b := s.buf.Data()[s.readPos/8]
	bit := (b >> uint(7-s.readPos%8)) & 1
	return bit, nil
}

// Peek returns the width bits Pop(width) would read from the current
// buffer, without advancing the cursor. ok is false when the cursor lies
// past maxSafePeekBit (inside the buffer's last 32 bits) or, for Reverse,
// when fewer than width bits lie below it; a Reverse stream whose cursor
// is at the top of its buffer, as at the start of every packet a reverse
// PushStream emits, therefore cannot peek. The check is against the
// buffer's capacity, not the packet's occupied range: near the end of a
// packet, Peek returns whatever bits follow in the buffer rather than bits
// from the next packet. Peek never fetches a new packet.
func (s *PopStream) Peek(width uint8) (code uint32, ok bool, err error) {
	if width < 1 || width > 32 {
		return 0, false, ErrInvalidWidth
	}
	if err := s.ensureLoaded(); err != nil {
		return 0, false, err
	}
	w := uint(width)

	if s.dir == Forward {
		if s.readPos > s.maxSafePeekBit {
			return 0, false, nil
		}
		return s.extract(s.readPos, w), true, nil
	}

	if int(w) > s.readPos || s.readPos > s.maxSafePeekBit {
		return 0, false, nil
	}
	return s.extract(s.readPos-int(w), w), true, nil
}

// Discard advances the cursor by count bits, loading new buffers as
// needed, without materializing the discarded value.
func (s *PopStream) Discard(count int) error {
	if count < 0 {
		return ErrInvalidWidth
	}
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	for count > 0 {
		var avail int
		if s.dir == Forward {
			avail = s.bufEndBit - s.readPos
		} else {
			avail = s.readPos - s.bufEndBit
		}
		if avail <= 0 {
			if err := s.loadInputBuffer(); err != nil {
				return err
			}
			continue
		}
		step := count
		if step > avail {
			step = avail
		}
		if s.dir == Forward {
			s.readPos += step
		} else {
			s.readPos -= step
		}
		count -= step
	}
	return nil
}

// Align discards bits, if necessary, until the read cursor sits on a byte
// boundary. A no-op if already aligned; idempotent.
//
// Forward's cursor climbs toward the next boundary, so the remaining
// distance is 8-rem. Reverse's cursor descends toward the boundary below
// it, so the remaining distance is rem itself.
func (s *PopStream) Align() error {
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	rem := s.readPos % 8
	if rem == 0 {
		return nil
	}
	if s.dir == Reverse {
		return s.Discard(rem)
	}
	return s.Discard(8 - rem)
}

// SizeConsumed returns the total number of bits popped or discarded so far.
func (s *PopStream) SizeConsumed() int64 {
	if !s.buf.Valid() {
		return s.totalConsumed
	}
	if s.dir == Forward {
		return s.totalConsumed + int64(s.readPos-s.bufBeginBit)
	}
	return s.totalConsumed + int64(s.bufBeginBit-s.readPos)
}
