// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Valid(t *testing.T) {
	assert.NoError(t, Default().Validate())
	assert.NoError(t, Config{}.Validate())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spindle.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
emulate_cond: true
max_threads: 16
log_level: debug
journal: /tmp/j.db
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Config{
		EmulateCond: true,
		MaxThreads:  16,
		LogLevel:    "debug",
		Journal:     "/tmp/j.db",
	}, cfg)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_threads: [1, 2"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestMarshal_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	want := Config{EmulateCond: true, MaxThreads: 3, LogLevel: "info"}

	data, err := want.Marshal()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvEmulateCond: "true",
		EnvMaxThreads:  "8",
		EnvLogLevel:    "error",
		EnvDebug:       "1",
		EnvJournal:     "j.db",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.applyEnv(lookup))
	assert.Equal(t, Config{
		EmulateCond: true,
		MaxThreads:  8,
		LogLevel:    "error",
		Debug:       true,
		Journal:     "j.db",
	}, cfg)
}

func TestApplyEnv_FromProcess(t *testing.T) {
	t.Setenv(EnvMaxThreads, "4")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, 4, cfg.MaxThreads)
}

func TestApplyEnv_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{EnvEmulateCond, "maybe"},
		{EnvMaxThreads, "lots"},
		{EnvDebug, "yes please"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cfg := Default()
			err := cfg.applyEnv(func(k string) (string, bool) {
				if k == tt.key {
					return tt.value, true
				}
				return "", false
			})
			var cerr *Error
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, tt.key, cerr.Field)
		})
	}
}

func TestValidate(t *testing.T) {
	err := Config{MaxThreads: -1, LogLevel: "loud"}.Validate()
	require.Error(t, err)

	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.Contains(t, err.Error(), "max_threads")
	assert.Contains(t, err.Error(), "log_level")
}
