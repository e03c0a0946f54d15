// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package journal defines lifecycle observers for a runtime and a SQLite
// journal that records them.
package journal

import (
	"go.uber.org/zap"

	"github.com/kolkov/spindle/internal/log"
)

// Observer receives runtime lifecycle callbacks. Callbacks are invoked
// outside the registry lock, possibly from several threads at once, and
// must not call back into the runtime that issued them.
type Observer interface {
	// OnInit is called after a runtime becomes initialized.
	OnInit(session, backend string)

	// OnTerminate is called after a runtime returns to the uninitialized
	// state. destroyed counts the threads that were still live and had to
	// be destroyed.
	OnTerminate(session string, destroyed int)

	// OnThreadCreated is called after a thread record has been linked.
	OnThreadCreated(session string, id int, nativeID uint64)

	// OnThreadExited is called after a thread's entry function returned
	// and its record was removed.
	OnThreadExited(session string, id int)

	// OnThreadDestroyed is called after a thread was forcibly destroyed.
	OnThreadDestroyed(session string, id int)
}

// NoopObserver is an Observer that does nothing.
type NoopObserver struct{}

func (NoopObserver) OnInit(string, string)                {}
func (NoopObserver) OnTerminate(string, int)              {}
func (NoopObserver) OnThreadCreated(string, int, uint64) {}
func (NoopObserver) OnThreadExited(string, int)           {}
func (NoopObserver) OnThreadDestroyed(string, int)        {}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewComposite creates an Observer that forwards events to each non-nil
// observer in obs.
func NewComposite(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	switch len(filtered) {
	case 0:
		return NoopObserver{}
	case 1:
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnInit(session, backend string) {
	for _, o := range c.observers {
		o.OnInit(session, backend)
	}
}

func (c *CompositeObserver) OnTerminate(session string, destroyed int) {
	for _, o := range c.observers {
		o.OnTerminate(session, destroyed)
	}
}

func (c *CompositeObserver) OnThreadCreated(session string, id int, nativeID uint64) {
	for _, o := range c.observers {
		o.OnThreadCreated(session, id, nativeID)
	}
}

func (c *CompositeObserver) OnThreadExited(session string, id int) {
	for _, o := range c.observers {
		o.OnThreadExited(session, id)
	}
}

func (c *CompositeObserver) OnThreadDestroyed(session string, id int) {
	for _, o := range c.observers {
		o.OnThreadDestroyed(session, id)
	}
}

// LoggingObserver writes lifecycle events as structured logs.
type LoggingObserver struct {
	Logger *log.Logger
}

// NewLogging creates an Observer that logs to logger. A nil logger discards
// everything.
func NewLogging(logger *log.Logger) Observer {
	if logger == nil {
		logger = log.NewNop()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnInit(session, backend string) {
	o.Logger.Info("runtime initialized", log.Session(session), log.Backend(backend))
}

func (o *LoggingObserver) OnTerminate(session string, destroyed int) {
	if destroyed > 0 {
		o.Logger.Error("runtime terminated with live threads",
			log.Session(session),
			zap.Int("destroyed", destroyed),
		)
		return
	}
	o.Logger.Info("runtime terminated", log.Session(session))
}

func (o *LoggingObserver) OnThreadCreated(session string, id int, nativeID uint64) {
	o.Logger.Debug("thread created", log.Session(session), log.Thread(id), log.Native(nativeID))
}

func (o *LoggingObserver) OnThreadExited(session string, id int) {
	o.Logger.Debug("thread exited", log.Session(session), log.Thread(id))
}

func (o *LoggingObserver) OnThreadDestroyed(session string, id int) {
	o.Logger.Warn("thread destroyed", log.Session(session), log.Thread(id))
}
