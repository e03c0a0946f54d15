// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package log provides structured logging for spindle using zap.
package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with spindle-specific field helpers.
type Logger struct {
	*zap.Logger
}

// New creates a Logger. level is one of zap's level names ("debug", "info",
// "warn", "error"); an empty or unknown level means "warn". debug selects the
// human-readable development encoder.
func New(level string, debug bool) *Logger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}

	lvl := zapcore.WarnLevel
	if level != "" {
		if parsed, err := zapcore.ParseLevel(level); err == nil {
			lvl = parsed
		}
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	// Shorter timestamps
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		logger = zap.NewNop()
	}
	return &Logger{Logger: logger}
}

// NewNop creates a no-op logger.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// Wrap adopts an existing zap.Logger. A nil z yields a no-op logger.
func Wrap(z *zap.Logger) *Logger {
	if z == nil {
		return NewNop()
	}
	return &Logger{Logger: z}
}

// WithSession returns a logger with the session field preset.
func (l *Logger) WithSession(session string) *Logger {
	return &Logger{Logger: l.Logger.With(Session(session))}
}

// Field helpers.

// Thread creates a logical thread ID field.
func Thread(id int) zap.Field {
	return zap.Int("thread", id)
}

// Native creates a native thread identity field.
func Native(id uint64) zap.Field {
	return zap.Uint64("native", id)
}

// OSThread creates a kernel thread ID field.
func OSThread(tid uint64) zap.Field {
	return zap.Uint64("tid", tid)
}

// Session creates a runtime session field.
func Session(s string) zap.Field {
	return zap.String("session", s)
}

// Backend creates a backend name field.
func Backend(name string) zap.Field {
	return zap.String("backend", name)
}
