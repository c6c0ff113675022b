// Copyright 2025 The Gromb Authors. All rights reserved.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/google/uuid"

	"github.com/tayne3/bitio"
)

// fileHeaderSize is the session tag written once at the start of a framed
// file: a 16-byte UUID identifying the run that produced it.
const fileHeaderSize = 16

// FileSink writes packets to an io.Writer as a sequence of
// [uint32 bitCount][ceil(bitCount/8) bytes] frames, preceded by a session
// UUID header. It implements the packet wire format described for the file
// transport collaborator.
type FileSink struct {
	w       *bufio.Writer
	session uuid.UUID
}

// NewFileSink writes a fresh session header to w and returns a sink ready to
// accept packets. The session id is returned so a companion FileSource (or a
// log line) can record which run a file belongs to.
func NewFileSink(w io.Writer) (*FileSink, uuid.UUID, error) {
	session := uuid.New()
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(session[:]); err != nil {
		return nil, uuid.Nil, err
	}
	return &FileSink{w: bw, session: session}, session, nil
}

// Emit writes one frame: a big-endian uint32 bit count followed by the
// packet's occupied bytes, rounded up to a whole byte.
//
// A forward packet's occupied range starts at bit 0, so its bytes sit at the
// front of the buffer. A reverse packet's range ends at the buffer's last
// bit, so its bytes sit at the back; occupiedByteRange locates the right
// slice for either case instead of assuming the front.
func (s *FileSink) Emit(p bitio.Packet) error {
	bitCount := p.Size()
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(bitCount))
	if _, err := s.w.Write(header[:]); err != nil {
		return err
	}
	lo, hi := occupiedByteRange(p)
	if _, err := s.w.Write(p.Buf.Data()[lo:hi]); err != nil {
		return err
	}
	return nil
}

// occupiedByteRange returns the [lo, hi) byte slice of p.Buf that holds p's
// meaningful bits, rounding outward to whole bytes.
func occupiedByteRange(p bitio.Packet) (lo, hi int) {
	start, end := p.Start, p.End
	if start > end {
		start, end = end, start
	}
	return start / 8, (end + 7) / 8
}

// Close flushes any buffered frame bytes to the underlying writer.
func (s *FileSink) Close() error {
	return s.w.Flush()
}

// FileSource reads frames written by FileSink back into packets.
type FileSource struct {
	r       *bufio.Reader
	session uuid.UUID
	dir     bitio.Direction
}

// NewFileSource reads and validates the session header, then returns a
// source that yields packets in the given direction (the direction the
// original PushStream used, so the caller must track which direction a file
// was written in).
func NewFileSource(r io.Reader, dir bitio.Direction) (*FileSource, uuid.UUID, error) {
	br := bufio.NewReader(r)
	var header [fileHeaderSize]byte
	if _, err := io.ReadFull(br, header[:]); err != nil {
		return nil, uuid.Nil, err
	}
	session, err := uuid.FromBytes(header[:])
	if err != nil {
		return nil, uuid.Nil, err
	}
	return &FileSource{r: br, session: session, dir: dir}, session, nil
}

// Session returns the UUID tag read from the file header.
func (s *FileSource) Session() uuid.UUID { return s.session }

// Fetch reads one frame and returns it as a Packet spanning the frame's
// bitCount bits, in a buffer of at least 8 bytes that it allocates.
func (s *FileSource) Fetch() (bitio.Packet, error) {
	var header [4]byte
	if _, err := io.ReadFull(s.r, header[:]); err != nil {
		return bitio.Packet{}, err
	}
	bitCount := int(binary.BigEndian.Uint32(header[:]))
	if bitCount < 0 || bitCount > maxFrameBits {
		return bitio.Packet{}, ErrFrameTooLarge
	}

	payloadLen := (bitCount + 7) / 8
	data := make([]byte, payloadLen)
	if _, err := io.ReadFull(s.r, data); err != nil {
		return bitio.Packet{}, ErrShortPayload
	}

	// Buffers need at least 8 bytes of capacity to keep PopStream's
	// unaligned 8-byte peek window in bounds near the packet's tail; pad
	// short final frames up to that floor.
	capacity := payloadLen
	if capacity < 8 {
		capacity = 8
	}
	buf := bitio.NewBuffer(capacity)

	if s.dir == bitio.Forward {
		copy(buf.Data(), data)
		return bitio.NewPacket(buf, bitio.Forward, 0, bitCount), nil
	}
	// Reverse packets occupy the high end of the buffer; place the payload
	// there so occupiedByteRange's accounting holds on the far side too.
	copy(buf.Data()[capacity-payloadLen:], data)
	capBits := capacity * 8
	return bitio.NewPacket(buf, bitio.Reverse, capBits, capBits-bitCount), nil
}
