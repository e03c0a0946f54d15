// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build windows

package native

import (
	"runtime"
	"sync"
	"time"

	"golang.org/x/sys/windows"
)

// windowsBackend has no native condition variables; callers emulate them
// with a pair of Win32 events.
type windowsBackend struct {
	spawner
}

var (
	_ Backend = (*windowsBackend)(nil)
	_ Killer  = (*windowsBackend)(nil)
)

// Go's monotonic clock is QueryPerformanceCounter-backed on Windows.
const counterResolution = 1e-9

func newPlatform(opts Options) Backend {
	return &windowsBackend{
		spawner: spawner{max: opts.MaxThreads, osID: osThreadID},
	}
}

func osThreadID() uint64 {
	return uint64(windows.GetCurrentThreadId())
}

func (b *windowsBackend) Name() string { return "windows" }

func (b *windowsBackend) Self() NativeID { return goroutineID() }

func (b *windowsBackend) OSThreadID() uint64 { return osThreadID() }

func (b *windowsBackend) NewLock() Lock { return &sync.Mutex{} }

// winEvent is a Win32 event object.
type winEvent struct {
	h windows.Handle
}

func (e *winEvent) Set()   { _ = windows.SetEvent(e.h) }
func (e *winEvent) Reset() { _ = windows.ResetEvent(e.h) }

func (e *winEvent) Close() error {
	return windows.CloseHandle(e.h)
}

func (b *windowsBackend) NewEvent(manualReset bool) (Event, error) {
	var manual uint32
	if manualReset {
		manual = 1
	}
	h, err := windows.CreateEvent(nil, manual, 0, nil)
	if err != nil {
		return nil, err
	}
	return &winEvent{h: h}, nil
}

// waitMillis converts a timeout to WaitForMultipleObjects milliseconds,
// rounding to nearest with a floor of 1 ms.
func waitMillis(timeout time.Duration) uint32 {
	if timeout < 0 {
		return windows.INFINITE
	}
	ms := (timeout + time.Millisecond/2) / time.Millisecond
	if ms <= 0 {
		return 1
	}
	if ms >= windows.INFINITE {
		return windows.INFINITE - 1
	}
	return uint32(ms)
}

func (b *windowsBackend) WaitAny(events []Event, timeout time.Duration) (int, bool) {
	handles := make([]windows.Handle, len(events))
	for i, ev := range events {
		we, ok := ev.(*winEvent)
		if !ok {
			return -1, false
		}
		handles[i] = we.h
	}

	res, err := windows.WaitForMultipleObjects(handles, false, waitMillis(timeout))
	if err != nil {
		return -1, false
	}
	idx := int(res) - windows.WAIT_OBJECT_0
	if idx < 0 || idx >= len(handles) {
		// WAIT_TIMEOUT or WAIT_ABANDONED_n.
		return -1, false
	}
	return idx, true
}

func (b *windowsBackend) NewCond() (Cond, bool) { return nil, false }

func (b *windowsBackend) Counter() int64 { return goMonotonic() }

func (b *windowsBackend) Resolution() float64 { return counterResolution }

func (b *windowsBackend) Yield() { runtime.Gosched() }

func (b *windowsBackend) Sleep(d time.Duration) { time.Sleep(d) }

func (b *windowsBackend) CPUCount() int {
	return atLeastOne(int(windows.GetActiveProcessorCount(windows.ALL_PROCESSOR_GROUPS)))
}
