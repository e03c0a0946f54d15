// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds runtime configuration, loaded from YAML and
// overridden by SPINDLE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv.
const (
	EnvEmulateCond = "SPINDLE_EMULATE_COND"
	EnvMaxThreads  = "SPINDLE_MAX_THREADS"
	EnvLogLevel    = "SPINDLE_LOG_LEVEL"
	EnvDebug       = "SPINDLE_DEBUG"
	EnvJournal     = "SPINDLE_JOURNAL"
)

// Config configures a runtime. The zero value is valid.
type Config struct {
	// EmulateCond forces event-based condition variables even when the
	// backend has native ones.
	EmulateCond bool `yaml:"emulate_cond"`

	// MaxThreads bounds live threads created by the runtime; 0 is unlimited.
	MaxThreads int `yaml:"max_threads"`

	LogLevel string `yaml:"log_level"`
	Debug    bool   `yaml:"debug"`

	// Journal is the path of a SQLite database recording thread lifecycle
	// events. Empty disables the journal.
	Journal string `yaml:"journal"`
}

// Error describes an invalid configuration value.
type Error struct {
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config: %s: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Default returns the default configuration.
func Default() Config {
	return Config{LogLevel: "warn"}
}

// Load reads a YAML file on top of Default. A missing file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Marshal renders c as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// ApplyEnv overrides fields from SPINDLE_* environment variables.
func (c *Config) ApplyEnv() error {
	return c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvEmulateCond); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return &Error{Field: EnvEmulateCond, Message: "not a boolean", Err: err}
		}
		c.EmulateCond = b
	}
	if v, ok := lookup(EnvMaxThreads); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &Error{Field: EnvMaxThreads, Message: "not an integer", Err: err}
		}
		c.MaxThreads = n
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvDebug); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return &Error{Field: EnvDebug, Message: "not a boolean", Err: err}
		}
		c.Debug = b
	}
	if v, ok := lookup(EnvJournal); ok {
		c.Journal = v
	}
	return nil
}

var levels = []string{"", "debug", "info", "warn", "error"}

// Validate checks field ranges.
func (c Config) Validate() error {
	var errs []error
	if c.MaxThreads < 0 {
		errs = append(errs, &Error{Field: "max_threads", Message: "must be >= 0"})
	}
	known := false
	for _, l := range levels {
		if strings.EqualFold(c.LogLevel, l) {
			known = true
			break
		}
	}
	if !known {
		errs = append(errs, &Error{Field: "log_level", Message: fmt.Sprintf("unknown level %q", c.LogLevel)})
	}
	return errors.Join(errs...)
}
