// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux && !windows

package native

import "runtime"

const counterResolution = 1e-9

func monotonicCounter() int64 { return goMonotonic() }

// No portable kernel thread ID outside Linux without cgo.
func osThreadID() uint64 { return 0 }

func cpuCount() int { return runtime.NumCPU() }
