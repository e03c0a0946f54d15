// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package timer

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kolkov/spindle/internal/spindle/native"
)

func TestTimer_StartsNearZero(t *testing.T) {
	tm := New(native.New(native.Options{}))
	got := tm.Get()
	assert.GreaterOrEqual(t, got, 0.0)
	assert.Less(t, got, 0.5)
}

func TestTimer_SetGetRoundTrip(t *testing.T) {
	tm := New(native.New(native.Options{}))

	for _, want := range []float64{0, 0.5, 1, 42.125, 3600, 86400 * 7} {
		tm.Set(want)
		got := tm.Get()
		if math.Abs(got-want) > 1e-3 {
			t.Errorf("Set(%v); Get() = %v, want within 1ms", want, got)
		}
	}
}

func TestTimer_Monotonic(t *testing.T) {
	tm := New(native.New(native.Options{}))
	prev := tm.Get()
	for i := 0; i < 1000; i++ {
		now := tm.Get()
		if now < prev {
			t.Fatalf("Get() went backwards: %v after %v", now, prev)
		}
		prev = now
	}
}

func TestTimer_SleepAtLeast(t *testing.T) {
	tm := New(native.New(native.Options{}))

	before := tm.Get()
	tm.Sleep(0.05)
	elapsed := tm.Get() - before

	assert.GreaterOrEqual(t, elapsed, 0.05)
}

func TestTimer_SleepZeroAndNegative(t *testing.T) {
	tm := New(native.New(native.Options{}))

	start := time.Now()
	tm.Sleep(0)
	tm.Sleep(-1)
	tm.Sleep(math.NaN())
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestDuration(t *testing.T) {
	tests := []struct {
		in   float64
		want time.Duration
	}{
		{0, 0},
		{0.05, 50 * time.Millisecond},
		{1, time.Second},
		{1e-10, 1},
		{1e30, time.Duration(math.MaxInt64)},
	}
	for _, tt := range tests {
		if got := Duration(tt.in); got != tt.want {
			t.Errorf("Duration(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
