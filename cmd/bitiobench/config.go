// Copyright 2025 The Gromb Authors. All rights reserved.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/tayne3/bitio"
)

// benchConfig is the resolved, validated set of knobs a run executes with.
// Every field has a flag default, optionally overridden by a config file via
// viper and, in turn, by an explicit flag on the command line.
type benchConfig struct {
	direction   bitio.Direction
	transport   string
	count       int
	width       uint8
	bufferBits  int
	concurrency int
	outFile     string
	verbose     bool
}

func loadConfig(v *viper.Viper) (benchConfig, error) {
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return benchConfig{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	var dir bitio.Direction
	switch v.GetString("direction") {
	case "forward":
		dir = bitio.Forward
	case "reverse":
		dir = bitio.Reverse
	default:
		return benchConfig{}, fmt.Errorf("unknown direction %q: want forward or reverse", v.GetString("direction"))
	}

	transport := v.GetString("transport")
	switch transport {
	case "memory", "file", "compressed":
	default:
		return benchConfig{}, fmt.Errorf("unknown transport %q: want memory, file, or compressed", transport)
	}

	width := v.GetInt("width")
	if width < 1 || width > 32 {
		return benchConfig{}, fmt.Errorf("width %d out of range: want 1-32", width)
	}

	concurrency := v.GetInt("concurrency")
	if concurrency < 1 {
		return benchConfig{}, fmt.Errorf("concurrency %d out of range: want >= 1", concurrency)
	}

	if transport != "memory" && concurrency != 1 {
		return benchConfig{}, fmt.Errorf("concurrency > 1 is only supported for transport=memory")
	}

	outFile := v.GetString("out-file")
	if (transport == "file" || transport == "compressed") && outFile == "" {
		return benchConfig{}, fmt.Errorf("transport=%s requires --out-file", transport)
	}

	return benchConfig{
		direction:   dir,
		transport:   transport,
		count:       v.GetInt("count"),
		width:       uint8(width),
		bufferBits:  v.GetInt("buffer-bits"),
		concurrency: concurrency,
		outFile:     outFile,
		verbose:     v.GetBool("verbose"),
	}, nil
}
