// Copyright 2025 The Gromb Authors. All rights reserved.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command bitiobench pushes a configurable stream of codes through a
// PushStream, across a chosen transport, into a matching PopStream,
// verifies the round trip, and reports throughput.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "bitiobench",
		Short: "Exercise bitio push/transport/pop round trips and report throughput",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}

			logger, err := newLogger(cfg.verbose)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			return run(cmd.Context(), cfg, logger)
		},
	}

	flags := cmd.Flags()
	flags.String("direction", "forward", "stream direction: forward or reverse")
	flags.String("transport", "memory", "transport: memory, file, or compressed")
	flags.Int("count", 100000, "number of codes to push")
	flags.Int("width", 16, "bit width of each pushed code, 1-32")
	flags.Int("buffer-bits", 8192, "packet buffer capacity in bits")
	flags.Int("concurrency", 1, "number of independent streams to run concurrently")
	flags.String("out-file", "", "path to write the frame file for transport=file/compressed")
	flags.Bool("verbose", false, "enable debug logging")
	flags.String("config", "", "optional config file (yaml/json/toml) overriding defaults")

	_ = v.BindPFlags(flags)

	return cmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
