// Copyright 2025 The Gromb Authors. All rights reserved.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tayne3/bitio"
	"github.com/tayne3/bitio/metrics"
	"github.com/tayne3/bitio/transport"
)

// run executes cfg.concurrency independent streams (one per goroutine, never
// sharing a single stream) and reports aggregate throughput.
func run(ctx context.Context, cfg benchConfig, logger *zap.Logger) error {
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	start := time.Now()

	if cfg.transport != "memory" {
		if err := runFileStream(cfg, collector, logger); err != nil {
			return err
		}
	} else {
		g, _ := errgroup.WithContext(ctx)
		for i := 0; i < cfg.concurrency; i++ {
			i := i
			g.Go(func() error {
				return runMemoryStream(cfg, collector, logger, i)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}

	elapsed := time.Since(start)
	totalBits := int64(cfg.count) * int64(cfg.width) * int64(cfg.concurrency)
	logger.Info("round trip verified",
		zap.Int("count", cfg.count),
		zap.Int("concurrency", cfg.concurrency),
		zap.Duration("elapsed", elapsed),
		zap.Float64("bits_per_sec", float64(totalBits)/elapsed.Seconds()),
	)
	return nil
}

// codeAt derives a deterministic, width-bounded code for index i so the
// sequence is reproducible and easy to verify on pop.
func codeAt(i int, width uint8) uint32 {
	if width == 32 {
		return uint32(i)
	}
	return uint32(i) & (1<<width - 1)
}

func runMemoryStream(cfg benchConfig, collector *metrics.Collector, logger *zap.Logger, streamIndex int) error {
	// The whole stream is pushed before any of it is popped, so the queue
	// must hold every packet the push side emits: one per full buffer plus
	// at most one partial buffer from Close.
	packetBits := cfg.bufferBits / 8 * 8
	if cfg.bufferBits <= 0 {
		packetBits = 8192
	}
	if packetBits < 64 {
		packetBits = 64
	}
	queue := transport.NewMemoryQueue(cfg.count*int(cfg.width)/packetBits + 1)

	ps, err := bitio.NewPushStream(cfg.direction,
		bitio.WithEmit(collector.WrapEmit(queue.Emit)),
		bitio.WithBufferBits(cfg.bufferBits),
	)
	if err != nil {
		return fmt.Errorf("stream %d: new push stream: %w", streamIndex, err)
	}

	for i := 0; i < cfg.count; i++ {
		if err := ps.Push(codeAt(i, cfg.width), cfg.width); err != nil {
			return fmt.Errorf("stream %d: push: %w", streamIndex, err)
		}
	}
	if err := ps.Close(); err != nil {
		return fmt.Errorf("stream %d: close push stream: %w", streamIndex, err)
	}
	queue.Close()

	pop := bitio.NewPopStream(cfg.direction, bitio.WithFetch(collector.WrapFetch(queue.Fetch)))
	for i := 0; i < cfg.count; i++ {
		code, err := pop.Pop(cfg.width)
		if err != nil {
			return fmt.Errorf("stream %d: pop: %w", streamIndex, err)
		}
		if want := codeAt(i, cfg.width); code != want {
			return fmt.Errorf("stream %d: code %d mismatch: got %#x want %#x", streamIndex, i, code, want)
		}
	}

	logger.Debug("memory stream verified", zap.Int("stream", streamIndex), zap.Int("count", cfg.count))
	return nil
}

// runFileStream drives the transport=file/compressed modes. Like
// runMemoryStream it does not overlap push and pop: it writes the whole
// stream, then reopens the file to drain and verify it.
func runFileStream(cfg benchConfig, collector *metrics.Collector, logger *zap.Logger) error {
	w, err := os.Create(cfg.outFile)
	if err != nil {
		return fmt.Errorf("create %s: %w", cfg.outFile, err)
	}

	var emit func(bitio.Packet) error
	var closeSink func() error

	if cfg.transport == "compressed" {
		sink, err := transport.NewCompressedSink(w, -1)
		if err != nil {
			w.Close()
			return fmt.Errorf("new compressed sink: %w", err)
		}
		emit = sink.Emit
		closeSink = func() error {
			if err := sink.Close(); err != nil {
				return err
			}
			return w.Close()
		}
	} else {
		sink, _, err := transport.NewFileSink(w)
		if err != nil {
			w.Close()
			return fmt.Errorf("new file sink: %w", err)
		}
		emit = sink.Emit
		closeSink = func() error {
			if err := sink.Close(); err != nil {
				return err
			}
			return w.Close()
		}
	}

	ps, err := bitio.NewPushStream(cfg.direction,
		bitio.WithEmit(collector.WrapEmit(emit)),
		bitio.WithBufferBits(cfg.bufferBits),
	)
	if err != nil {
		return fmt.Errorf("new push stream: %w", err)
	}
	for i := 0; i < cfg.count; i++ {
		if err := ps.Push(codeAt(i, cfg.width), cfg.width); err != nil {
			return fmt.Errorf("push: %w", err)
		}
	}
	if err := ps.Close(); err != nil {
		return fmt.Errorf("close push stream: %w", err)
	}
	if err := closeSink(); err != nil {
		return fmt.Errorf("close sink: %w", err)
	}

	r, err := os.Open(cfg.outFile)
	if err != nil {
		return fmt.Errorf("open %s: %w", cfg.outFile, err)
	}
	defer r.Close()

	var fetch func() (bitio.Packet, error)
	if cfg.transport == "compressed" {
		source := transport.NewCompressedSource(r, cfg.direction)
		defer source.Close()
		fetch = source.Fetch
	} else {
		source, _, err := transport.NewFileSource(r, cfg.direction)
		if err != nil {
			return fmt.Errorf("new file source: %w", err)
		}
		fetch = source.Fetch
	}

	pop := bitio.NewPopStream(cfg.direction, bitio.WithFetch(collector.WrapFetch(fetch)))
	for i := 0; i < cfg.count; i++ {
		code, err := pop.Pop(cfg.width)
		if err != nil {
			return fmt.Errorf("pop: %w", err)
		}
		if want := codeAt(i, cfg.width); code != want {
			return fmt.Errorf("code %d mismatch: got %#x want %#x", i, code, want)
		}
	}

	logger.Debug("file stream verified", zap.String("transport", cfg.transport), zap.Int("count", cfg.count))
	return nil
}
