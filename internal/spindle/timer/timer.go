// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package timer provides a monotonic clock with a settable zero point.
package timer

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/kolkov/spindle/internal/spindle/native"
)

// Timer reports seconds elapsed since a logical zero, derived from a
// backend's monotonic counter. The resolution is fixed when the Timer is
// created.
type Timer struct {
	backend    native.Backend
	resolution float64
	base       atomic.Int64
}

// New creates a timer whose zero is now.
func New(b native.Backend) *Timer {
	t := &Timer{backend: b, resolution: b.Resolution()}
	t.base.Store(b.Counter())
	return t
}

// Resolution returns the length of one counter tick in seconds.
func (t *Timer) Resolution() float64 {
	return t.resolution
}

// Get returns the seconds elapsed since the logical zero.
func (t *Timer) Get() float64 {
	return float64(t.backend.Counter()-t.base.Load()) * t.resolution
}

// Set moves the logical zero so that Get returns seconds now. The rate at
// which time passes is unaffected.
func (t *Timer) Set(seconds float64) {
	t.base.Store(t.backend.Counter() - int64(seconds/t.resolution))
}

// Sleep suspends the caller for at least seconds. Zero yields the processor;
// negative durations return immediately.
func (t *Timer) Sleep(seconds float64) {
	switch {
	case seconds < 0 || math.IsNaN(seconds):
		return
	case seconds == 0:
		t.backend.Yield()
		return
	}
	t.backend.Sleep(Duration(seconds))
}

// Duration converts seconds to a time.Duration, rounding up so that a sleep
// or wait of the result is never shorter than requested.
func Duration(seconds float64) time.Duration {
	ns := math.Ceil(seconds * float64(time.Second))
	if ns >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ns)
}
