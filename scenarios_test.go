// Copyright 2025 The Gromb Authors. All rights reserved.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package bitio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMemoryPipe wires a PushStream's emit directly to a queue a PopStream's
// fetch drains, mirroring how the in-memory transport collaborator connects
// the two halves of a stream.
func newMemoryPipe() (push func(Packet) error, pop func() (Packet, error)) {
	var queue []Packet
	push = func(p Packet) error {
		queue = append(queue, p)
		return nil
	}
	pop = func() (Packet, error) {
		p := queue[0]
		queue = queue[1:]
		return p, nil
	}
	return push, pop
}

func TestScenarioBasicRoundTripForward(t *testing.T) {
	const n = 1 << 12 // scaled down from 2^23; exercises the same property

	emit, fetch := newMemoryPipe()
	ps, err := NewPushStream(Forward, WithEmit(emit))
	require.NoError(t, err)

	for i := uint32(0); i < n; i++ {
		require.NoError(t, ps.Push(i, 32))
	}
	require.NoError(t, ps.Close())

	pop := NewPopStream(Forward, WithFetch(fetch))
	for i := uint32(0); i < n; i++ {
		code, err := pop.Pop(32)
		require.NoError(t, err)
		require.Equal(t, i, code)
	}
}

func TestScenarioBasicRoundTripReverse(t *testing.T) {
	const n = 1 << 12

	emit, fetch := newMemoryPipe()
	ps, err := NewPushStream(Reverse, WithEmit(emit))
	require.NoError(t, err)

	for i := uint32(0); i < n; i++ {
		require.NoError(t, ps.Push(i, 32))
	}
	require.NoError(t, ps.Close())

	pop := NewPopStream(Reverse, WithFetch(fetch))
	for i := uint32(0); i < n; i++ {
		code, err := pop.Pop(32)
		require.NoError(t, err)
		require.Equal(t, i, code)
	}
}

func TestScenarioMixedWidths(t *testing.T) {
	type codeword struct {
		code  uint32
		width uint8
	}
	words := []codeword{
		{0x5, 3},
		{0x3FF, 10},
		{0x1, 1},
		{0xCAFE, 16},
		{0xDEADBEEF, 32},
	}

	var emitted []Packet
	ps, err := NewPushStream(Forward, WithEmit(func(p Packet) error {
		emitted = append(emitted, p)
		return nil
	}))
	require.NoError(t, err)

	for _, w := range words {
		require.NoError(t, ps.Push(w.code, w.width))
	}
	require.NoError(t, ps.Close())

	require.Len(t, emitted, 1)
	assert.Equal(t, 62, emitted[0].Size())

	idx := 0
	pop := NewPopStream(Forward, WithFetch(func() (Packet, error) {
		p := emitted[idx]
		idx++
		return p, nil
	}))
	for _, w := range words {
		code, err := pop.Pop(w.width)
		require.NoError(t, err)
		assert.Equal(t, w.code, code)
	}
	assert.EqualValues(t, 62, pop.SizeConsumed())
}

func TestScenarioCrossPacketStraddle(t *testing.T) {
	emit, fetch0 := newMemoryPipe()
	ps, err := NewPushStream(Forward, WithEmit(emit), WithBufferBits(128))
	require.NoError(t, err)

	for i := 0; i < 31; i++ {
		require.NoError(t, ps.Push(uint32(i%16), 4))
	}
	require.NoError(t, ps.Push(0x1FF, 9))
	require.NoError(t, ps.Close())

	fetches := 0
	fetch := func() (Packet, error) {
		fetches++
		return fetch0()
	}

	pop := NewPopStream(Forward, WithFetch(fetch))
	for i := 0; i < 31; i++ {
		code, err := pop.Pop(4)
		require.NoError(t, err)
		assert.Equal(t, uint32(i%16), code)
	}
	code, err := pop.Pop(9)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x1FF), code)

	assert.Equal(t, 2, fetches)
}

func TestScenarioFlushOnClose(t *testing.T) {
	var emitted []Packet
	ps, err := NewPushStream(Forward, WithEmit(func(p Packet) error {
		emitted = append(emitted, p)
		return nil
	}))
	require.NoError(t, err)

	require.NoError(t, ps.Push(0x1, 1))
	require.NoError(t, ps.Close())

	require.Len(t, emitted, 1)
	assert.Equal(t, 1, emitted[0].Size())
	assert.Equal(t, byte(0x80), emitted[0].Buf.Data()[0])
}

func TestScenarioReverseDirectionCrossConsumer(t *testing.T) {
	const n = 1024

	var emitted []Packet
	ps, err := NewPushStream(Reverse, WithEmit(func(p Packet) error {
		emitted = append(emitted, p)
		return nil
	}))
	require.NoError(t, err)

	for i := uint32(0); i < n; i++ {
		require.NoError(t, ps.Push(i, 32))
	}
	require.NoError(t, ps.Close())

	// Reverse the packet collection and reinterpret each as a Forward
	// packet by swapping offsets, then feed to a forward PopStream.
	reversed := make([]Packet, len(emitted))
	for i, p := range emitted {
		reversed[len(emitted)-1-i] = p.Reversed()
	}

	idx := 0
	pop := NewPopStream(Forward, WithFetch(func() (Packet, error) {
		p := reversed[idx]
		idx++
		return p, nil
	}))

	for i := uint32(0); i < n; i++ {
		code, err := pop.Pop(32)
		require.NoError(t, err)
		assert.Equal(t, n-1-i, code)
	}
}

func TestScenarioPeekDoesNotAdvance(t *testing.T) {
	var emitted []Packet
	ps, err := NewPushStream(Forward, WithEmit(func(p Packet) error {
		emitted = append(emitted, p)
		return nil
	}))
	require.NoError(t, err)

	require.NoError(t, ps.Push(0xABCD, 16))
	require.NoError(t, ps.Close())

	idx := 0
	pop := NewPopStream(Forward, WithFetch(func() (Packet, error) {
		p := emitted[idx]
		idx++
		return p, nil
	}))

	first, ok, err := pop.Peek(16)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint32(0xABCD), first)

	second, ok, err := pop.Peek(16)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint32(0xABCD), second)

	popped, err := pop.Pop(16)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xABCD), popped)
}
