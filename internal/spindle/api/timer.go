// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package api

import (
	"math"
	"time"

	"github.com/kolkov/spindle/internal/spindle/timer"
)

// GetTime returns seconds since the timer's logical zero, which is Init
// unless moved by SetTime.
func (r *Runtime) GetTime() (float64, error) {
	st := r.state.Load()
	if st == nil {
		return 0, ErrNotInitialized
	}
	return st.timer.Get(), nil
}

// SetTime redefines the logical zero so that GetTime returns seconds now.
func (r *Runtime) SetTime(seconds float64) error {
	st := r.state.Load()
	if st == nil {
		return ErrNotInitialized
	}
	st.timer.Set(seconds)
	return nil
}

// Sleep suspends the calling thread for at least seconds. Zero yields the
// processor instead.
func (r *Runtime) Sleep(seconds float64) error {
	st := r.state.Load()
	if st == nil {
		return ErrNotInitialized
	}
	st.timer.Sleep(seconds)
	return nil
}

// TimerResolution returns the timer's tick length in seconds, or 0 when
// uninitialized.
func (r *Runtime) TimerResolution() float64 {
	if st := r.state.Load(); st != nil {
		return st.timer.Resolution()
	}
	return 0
}

// timeout converts a wait timeout in seconds into the backend's form:
// negative durations mean no deadline.
func timeout(seconds float64) time.Duration {
	switch {
	case seconds >= Infinity:
		return -1
	case seconds <= 0 || math.IsNaN(seconds):
		return 0
	}
	return timer.Duration(seconds)
}
