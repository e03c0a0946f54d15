// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package main implements the spindle CLI.
//
// The CLI exercises the spindle runtime from the command line:
//
//	spindle sleep 10 100 1000      # sleep and report the measured time
//	spindle hello -n 4             # start threads and wait for them
//	spindle info                   # backend, cores, timer resolution
//	spindle version --require 0.1  # check the runtime version
//	spindle journal run.db         # dump a lifecycle journal
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kolkov/spindle/internal/log"
	"github.com/kolkov/spindle/internal/spindle/api"
	"github.com/kolkov/spindle/internal/spindle/config"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	verbose    bool
	journal    string
	emulate    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "spindle",
		Short: "Portable threads, mutexes, condition variables and timers",
		Long: `spindle drives the spindle threading runtime from the command line.

Configuration is read from --config (YAML), then SPINDLE_* environment
variables, then flags.`,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "YAML configuration file")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "verbose debug output")
	pf.StringVar(&flags.journal, "journal", "", "record lifecycle events in this SQLite database")
	pf.BoolVar(&flags.emulate, "emulate-cond", false, "force event-based condition variables")

	rootCmd.AddCommand(
		newSleepCmd(flags),
		newHelloCmd(flags),
		newInfoCmd(flags),
		newVersionCmd(),
		newJournalCmd(),
	)
	return rootCmd
}

// loadConfig merges the config file, the environment and the flags.
func (f *globalFlags) loadConfig() (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	if f.verbose {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}
	if f.journal != "" {
		cfg.Journal = f.journal
	}
	if f.emulate {
		cfg.EmulateCond = true
	}
	return cfg, cfg.Validate()
}

// newRuntime builds an uninitialized runtime from the merged configuration.
func (f *globalFlags) newRuntime() (*api.Runtime, *log.Logger, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := log.New(cfg.LogLevel, cfg.Debug)
	r, err := api.New(cfg, api.WithLogger(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("create runtime: %w", err)
	}
	return r, logger, nil
}
