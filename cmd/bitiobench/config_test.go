// Copyright 2025 The Gromb Authors. All rights reserved.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tayne3/bitio"
)

func defaultViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("direction", "forward")
	v.SetDefault("transport", "memory")
	v.SetDefault("count", 10)
	v.SetDefault("width", 8)
	v.SetDefault("buffer-bits", 8192)
	v.SetDefault("concurrency", 1)
	v.SetDefault("out-file", "")
	v.SetDefault("verbose", false)
	v.SetDefault("config", "")
	return v
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(defaultViper())
	require.NoError(t, err)

	assert.Equal(t, bitio.Forward, cfg.direction)
	assert.Equal(t, "memory", cfg.transport)
	assert.Equal(t, 10, cfg.count)
	assert.EqualValues(t, 8, cfg.width)
}

func TestLoadConfigRejectsUnknownDirection(t *testing.T) {
	v := defaultViper()
	v.Set("direction", "sideways")

	_, err := loadConfig(v)
	assert.Error(t, err)
}

func TestLoadConfigRejectsUnknownTransport(t *testing.T) {
	v := defaultViper()
	v.Set("transport", "carrier-pigeon")

	_, err := loadConfig(v)
	assert.Error(t, err)
}

func TestLoadConfigRejectsWidthOutOfRange(t *testing.T) {
	v := defaultViper()
	v.Set("width", 33)

	_, err := loadConfig(v)
	assert.Error(t, err)
}

func TestLoadConfigRejectsFileTransportWithoutOutFile(t *testing.T) {
	v := defaultViper()
	v.Set("transport", "file")

	_, err := loadConfig(v)
	assert.Error(t, err)
}

func TestLoadConfigRejectsConcurrencyWithFileTransport(t *testing.T) {
	v := defaultViper()
	v.Set("transport", "file")
	v.Set("out-file", "/tmp/does-not-matter.bin")
	v.Set("concurrency", 2)

	_, err := loadConfig(v)
	assert.Error(t, err)
}
