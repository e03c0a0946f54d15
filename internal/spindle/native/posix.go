// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !windows

package native

import (
	"runtime"
	"sync"
	"time"
)

// posixBackend provides native condition variables and Go-implemented
// events.
type posixBackend struct {
	spawner
}

var (
	_ Backend = (*posixBackend)(nil)
	_ Killer  = (*posixBackend)(nil)
)

func newPlatform(opts Options) Backend {
	return &posixBackend{
		spawner: spawner{max: opts.MaxThreads, osID: osThreadID},
	}
}

func (b *posixBackend) Name() string { return "posix" }

func (b *posixBackend) Self() NativeID { return goroutineID() }

func (b *posixBackend) OSThreadID() uint64 { return osThreadID() }

func (b *posixBackend) NewLock() Lock { return &sync.Mutex{} }

func (b *posixBackend) NewEvent(manualReset bool) (Event, error) {
	return newGoEvent(manualReset), nil
}

func (b *posixBackend) WaitAny(events []Event, timeout time.Duration) (int, bool) {
	return waitAnyGo(events, timeout)
}

func (b *posixBackend) NewCond() (Cond, bool) { return newNotifyCond(), true }

func (b *posixBackend) Counter() int64 { return monotonicCounter() }

func (b *posixBackend) Resolution() float64 { return counterResolution }

func (b *posixBackend) Yield() { runtime.Gosched() }

func (b *posixBackend) Sleep(d time.Duration) { time.Sleep(d) }

func (b *posixBackend) CPUCount() int { return atLeastOne(cpuCount()) }
