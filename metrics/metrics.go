// Copyright 2025 The Gromb Authors. All rights reserved.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package metrics instruments bitio streams with Prometheus counters and
// histograms, without requiring the core package to know metrics exist.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tayne3/bitio"
)

// Collector holds the Prometheus instruments used to observe a running
// PushStream/PopStream pair. It carries no reference to any stream; callers
// wrap their own emit/fetch callbacks with the Wrap* helpers below.
type Collector struct {
	BitsPushed     prometheus.Counter
	BitsPopped     prometheus.Counter
	PacketsEmitted prometheus.Counter
	PacketsFetched prometheus.Counter
	FlushLatency   prometheus.Histogram
}

// NewCollector builds a Collector and registers its instruments with reg. A
// nil reg is valid and yields unregistered (test-only) instruments.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		BitsPushed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bitio",
			Name:      "bits_pushed_total",
			Help:      "Total number of bits carried by packets handed to an emit sink.",
		}),
		BitsPopped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bitio",
			Name:      "bits_popped_total",
			Help:      "Total number of bits carried by packets returned by a fetch source.",
		}),
		PacketsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bitio",
			Name:      "packets_emitted_total",
			Help:      "Total number of packets handed to an emit sink.",
		}),
		PacketsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bitio",
			Name:      "packets_fetched_total",
			Help:      "Total number of packets returned by a fetch source.",
		}),
		FlushLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bitio",
			Name:      "flush_latency_seconds",
			Help:      "Time spent inside the emit callback per flushed packet.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(c.BitsPushed, c.BitsPopped, c.PacketsEmitted, c.PacketsFetched, c.FlushLatency)
	}
	return c
}

// WrapEmit returns an emit callback, suitable for bitio.WithEmit, that
// delegates to next and times the call; only when next succeeds does it
// count the packet and its bits.
func (c *Collector) WrapEmit(next func(bitio.Packet) error) func(bitio.Packet) error {
	return func(p bitio.Packet) error {
		start := time.Now()
		err := next(p)
		c.FlushLatency.Observe(time.Since(start).Seconds())
		if err != nil {
			return err
		}
		c.PacketsEmitted.Inc()
		c.BitsPushed.Add(float64(p.Size()))
		return nil
	}
}

// WrapFetch returns a fetch callback, suitable for bitio.WithFetch, that
// delegates to next and, when next succeeds, counts the packet and its bits.
func (c *Collector) WrapFetch(next func() (bitio.Packet, error)) func() (bitio.Packet, error) {
	return func() (bitio.Packet, error) {
		p, err := next()
		if err != nil {
			return p, err
		}
		c.PacketsFetched.Inc()
		c.BitsPopped.Add(float64(p.Size()))
		return p, nil
	}
}
