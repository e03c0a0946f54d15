// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package native

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// CLOCK_MONOTONIC reports nanoseconds.
const counterResolution = 1e-9

func monotonicCounter() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return goMonotonic()
	}
	return ts.Nano()
}

func osThreadID() uint64 {
	return uint64(unix.Gettid())
}

// cpuCount honors the process affinity mask, which is what sysconf's
// online-processor count approximates for a single process.
func cpuCount() int {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return runtime.NumCPU()
	}
	return set.Count()
}
