// Copyright 2025 The Gromb Authors. All rights reserved.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"encoding/binary"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/tayne3/bitio"
)

// CompressedSink frames packets the same way FileSink does, but runs the
// frame stream through a flate writer first. It operates one layer above
// bitio's own bit-packing - the core never compresses; this collaborator
// compresses the packet bytes it is handed.
type CompressedSink struct {
	fw *flate.Writer
}

// NewCompressedSink wraps w with a flate compressor at the given level (see
// compress/flate for level constants; flate.DefaultCompression is a
// reasonable default).
func NewCompressedSink(w io.Writer, level int) (*CompressedSink, error) {
	fw, err := flate.NewWriter(w, level)
	if err != nil {
		return nil, err
	}
	return &CompressedSink{fw: fw}, nil
}

// Emit writes one [uint32 bitCount][payload] frame through the compressor.
func (s *CompressedSink) Emit(p bitio.Packet) error {
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(p.Size()))
	if _, err := s.fw.Write(header[:]); err != nil {
		return err
	}
	lo, hi := occupiedByteRange(p)
	_, err := s.fw.Write(p.Buf.Data()[lo:hi])
	return err
}

// Close flushes any pending compressed data and finishes the flate stream;
// no further Emit calls are valid afterward.
func (s *CompressedSink) Close() error {
	return s.fw.Close()
}

// CompressedSource reads frames written by CompressedSink.
type CompressedSource struct {
	fr  io.ReadCloser
	dir bitio.Direction
}

// NewCompressedSource wraps r with a flate decompressor.
func NewCompressedSource(r io.Reader, dir bitio.Direction) *CompressedSource {
	return &CompressedSource{fr: flate.NewReader(r), dir: dir}
}

// Fetch decompresses and parses one frame.
func (s *CompressedSource) Fetch() (bitio.Packet, error) {
	var header [4]byte
	if _, err := io.ReadFull(s.fr, header[:]); err != nil {
		return bitio.Packet{}, err
	}
	bitCount := int(binary.BigEndian.Uint32(header[:]))
	if bitCount < 0 || bitCount > maxFrameBits {
		return bitio.Packet{}, ErrFrameTooLarge
	}

	payloadLen := (bitCount + 7) / 8
	data := make([]byte, payloadLen)
	if _, err := io.ReadFull(s.fr, data); err != nil {
		return bitio.Packet{}, ErrShortPayload
	}

	capacity := payloadLen
	if capacity < 8 {
		capacity = 8
	}
	buf := bitio.NewBuffer(capacity)

	if s.dir == bitio.Forward {
		copy(buf.Data(), data)
		return bitio.NewPacket(buf, bitio.Forward, 0, bitCount), nil
	}
	copy(buf.Data()[capacity-payloadLen:], data)
	capBits := capacity * 8
	return bitio.NewPacket(buf, bitio.Reverse, capBits, capBits-bitCount), nil
}

// Close releases the decompressor's resources.
func (s *CompressedSource) Close() error {
	return s.fr.Close()
}
