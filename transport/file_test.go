// Copyright 2025 The Gromb Authors. All rights reserved.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tayne3/bitio"
)

func TestFileSinkSourceForwardRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	sink, session, err := NewFileSink(&buf)
	require.NoError(t, err)

	ps, err := bitio.NewPushStream(bitio.Forward, bitio.WithEmit(sink.Emit))
	require.NoError(t, err)
	require.NoError(t, ps.Push(0x1, 1))
	require.NoError(t, ps.Close())
	require.NoError(t, sink.Close())

	source, readSession, err := NewFileSource(&buf, bitio.Forward)
	require.NoError(t, err)
	assert.Equal(t, session, readSession)

	pop := bitio.NewPopStream(bitio.Forward, bitio.WithFetch(source.Fetch))
	bit, err := pop.PopBit()
	require.NoError(t, err)
	assert.EqualValues(t, 1, bit)
}

func TestFileSinkSourceReverseRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	sink, _, err := NewFileSink(&buf)
	require.NoError(t, err)

	ps, err := bitio.NewPushStream(bitio.Reverse, bitio.WithEmit(sink.Emit))
	require.NoError(t, err)
	for i := uint32(0); i < 4; i++ {
		require.NoError(t, ps.Push(i, 32))
	}
	require.NoError(t, ps.Close())
	require.NoError(t, sink.Close())

	source, _, err := NewFileSource(&buf, bitio.Reverse)
	require.NoError(t, err)

	pop := bitio.NewPopStream(bitio.Reverse, bitio.WithFetch(source.Fetch))
	for i := uint32(0); i < 4; i++ {
		code, err := pop.Pop(32)
		require.NoError(t, err)
		assert.Equal(t, i, code)
	}
}

func TestFileSinkReverseShortFinalFrame(t *testing.T) {
	var buf bytes.Buffer
	sink, _, err := NewFileSink(&buf)
	require.NoError(t, err)

	ps, err := bitio.NewPushStream(bitio.Reverse, bitio.WithEmit(sink.Emit))
	require.NoError(t, err)
	require.NoError(t, ps.Push(0x1, 1))
	require.NoError(t, ps.Close())
	require.NoError(t, sink.Close())

	source, _, err := NewFileSource(&buf, bitio.Reverse)
	require.NoError(t, err)

	pop := bitio.NewPopStream(bitio.Reverse, bitio.WithFetch(source.Fetch))
	bit, err := pop.PopBit()
	require.NoError(t, err)
	assert.EqualValues(t, 1, bit)
}
