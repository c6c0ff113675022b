// Copyright 2025 The Gromb Authors. All rights reserved.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package bitio

import "encoding/binary"

// PushStream accumulates fixed- or variable-width code-words into a small
// 64-bit staging register, spills completed 32-bit slices into a buffer in
// network byte order, and hands filled buffers to a caller-supplied sink as
// Packets. It holds at most one buffer at a time and is single-owner,
// single-goroutine: no internal locking is performed.
//
// Forward and reverse streams differ in how the staging register fills.
// Forward places each new code just below the bits already staged
// (shift = 64 - stagingBits - width) and spills the top 32 bits to a
// writePos that starts at 0 and grows. Reverse shifts the staged bits down
// and places each new code at the top of the register, so the oldest staged
// bits are the lowest valid ones; it spills those lowest 32 valid bits to a
// writePos that starts at the buffer's capacity and shrinks. Either way each
// code reads MSB-first in ascending address order, and a reverse stream's
// first code ends at the buffer's last bit. See DESIGN.md.
type PushStream struct {
	dir Direction

	emit     func(Packet) error
	allocate func() (Buffer, error)

	buf      Buffer
	writePos int // forward: bytes already spilled, 0..cap. reverse: next free byte address, cap..0.

	staging     uint64
	stagingBits uint

	totalEmitted int64
}

// NewPushStream constructs a PushStream for the given direction. WithEmit
// is required; all other options are optional.
func NewPushStream(dir Direction, opts ...PushOption) (*PushStream, error) {
	cfg := pushConfig{bufferBits: defaultBufferBits}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.emit == nil {
		return nil, ErrNoEmit
	}
	if cfg.allocate == nil {
		bits := cfg.bufferBits
		if bits <= 0 {
			bits = defaultBufferBits
		}
		cfg.allocate = func() (Buffer, error) { return NewBuffer(bits / 8), nil }
	}

	s := &PushStream{dir: dir, emit: cfg.emit, allocate: cfg.allocate}
	buf, err := s.allocate()
	if err != nil {
		return nil, err
	}
	if err := s.adopt(buf); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PushStream) adopt(buf Buffer) error {
	if buf.Capacity() < minBufferBytes {
		return ErrBufferTooSmall
	}
	s.buf = buf
	if s.dir == Forward {
		s.writePos = 0
	} else {
		s.writePos = buf.Capacity()
	}
	return nil
}

// bytesWritten returns the number of fully-spilled bytes already resident
// in the current buffer, independent of direction.
func (s *PushStream) bytesWritten() int {
	if s.dir == Forward {
		return s.writePos
	}
	return s.buf.Capacity() - s.writePos
}

// Size returns the total number of bits pushed so far: bits already
// handed off via emitted packets, plus fully-spilled bytes in the current
// buffer, plus unspilled staging bits.
func (s *PushStream) Size() int64 {
	return s.totalEmitted + int64(s.bytesWritten())*8 + int64(s.stagingBits)
}

// Push accumulates code's low width bits into the stream. width must be in
// [1, 32] and code must have no bits set above width.
func (s *PushStream) Push(code uint32, width uint8) error {
	if width < 1 || width > 32 {
		return ErrInvalidWidth
	}
	if uint64(code) >= uint64(1)<<width {
		return ErrCodeOverflow
	}
	return s.accumulate(uint64(code), uint(width))
}

func (s *PushStream) accumulate(code uint64, width uint) error {
	if s.dir == Forward {
		s.staging |= code << (64 - s.stagingBits - width)
	} else {
		s.staging = s.staging>>width | code<<(64-width)
	}
	s.stagingBits += width

	for s.stagingBits >= 32 {
		word := uint32(s.staging >> 32)
		if s.dir == Reverse {
			word = uint32(s.staging >> (64 - s.stagingBits))
		}
		if err := s.spillWord(word); err != nil {
			return err
		}
		if s.dir == Forward {
			s.staging <<= 32
		}
		s.stagingBits -= 32

		if s.atBoundary() {
			if err := s.spillBuffer(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *PushStream) spillWord(word uint32) error {
	if s.dir == Forward {
		binary.BigEndian.PutUint32(s.buf.Data()[s.writePos:s.writePos+4], word)
		s.writePos += 4
		return nil
	}
	s.writePos -= 4
	binary.BigEndian.PutUint32(s.buf.Data()[s.writePos:s.writePos+4], word)
	return nil
}

func (s *PushStream) atBoundary() bool {
	if s.dir == Forward {
		return s.writePos >= s.buf.Capacity()
	}
	return s.writePos <= 0
}

// spillBuffer emits the current buffer's fully-spilled bytes (never the
// unspilled staging residue, which belongs to the next buffer) and
// allocates a replacement.
func (s *PushStream) spillBuffer() error {
	bitsToFlush := int64(s.bytesWritten()) * 8
	if bitsToFlush == 0 {
		return nil
	}
	return s.emitCurrentBuffer(bitsToFlush)
}

// Flush spills any partial staging word, emits the current buffer
// regardless of fill level, and allocates a fresh one. It is a no-op if
// nothing has been written or staged since the last flush.
//
// A partial word's valid bits are, in both directions, the top stagingBits
// bits of the 64-bit register. That is already the correct physical layout
// for forward, whose occupied range starts at the buffer's low address: the
// word's valid bits belong at its own MSB end. Reverse is the mirror image -
// its occupied range ends at the buffer's high address - so a partial
// word's valid bits must instead land at the word's LSB end, adjacent to
// the bits already spilled; shifting right by the number of absent bits
// moves them there without disturbing their relative order.
func (s *PushStream) Flush() error {
	bitsToFlush := int64(s.bytesWritten())*8 + int64(s.stagingBits)
	if bitsToFlush == 0 {
		return nil
	}
	if s.stagingBits > 0 {
		word := uint32(s.staging >> 32)
		if s.dir == Reverse {
			word >>= 32 - s.stagingBits
		}
		if err := s.spillWord(word); err != nil {
			return err
		}
		s.staging = 0
		s.stagingBits = 0
	}
	return s.emitCurrentBuffer(bitsToFlush)
}

// emitCurrentBuffer packages the current buffer as a Packet carrying
// exactly bitsToFlush meaningful bits, hands it to the sink, and replaces
// the buffer with a freshly allocated one.
func (s *PushStream) emitCurrentBuffer(bitsToFlush int64) error {
	s.totalEmitted += bitsToFlush

	var pkt Packet
	if s.dir == Forward {
		pkt = NewPacket(s.buf.take(), Forward, 0, int(bitsToFlush))
	} else {
		capBits := s.buf.Capacity() * 8
		pkt = NewPacket(s.buf.take(), Reverse, capBits, capBits-int(bitsToFlush))
	}
	if err := s.emit(pkt); err != nil {
		return err
	}

	buf, err := s.allocate()
	if err != nil {
		return err
	}
	return s.adopt(buf)
}

// Align pads the staging register with zero bits up to the next byte
// boundary. A no-op if already aligned. Primarily useful for reverse
// streams, where byte alignment before a final flush matters to a reader
// walking the tail; harmless for forward streams.
func (s *PushStream) Align() error {
	rem := s.stagingBits % 8
	if rem == 0 {
		return nil
	}
	return s.accumulate(0, 8-rem)
}

// Close flushes the stream. Unlike the source design's destructor (which
// swallows a flush failure to preserve a no-throw destructor contract), Go
// callers already expect Close to report failure via io.Closer convention,
// so the flush error is returned rather than discarded.
func (s *PushStream) Close() error {
	return s.Flush()
}
