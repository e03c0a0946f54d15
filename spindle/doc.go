// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package spindle provides portable threads, mutexes, condition variables
// and a monotonic timer.
//
// A spindle thread is a goroutine locked to its own OS thread for its whole
// life, identified by a small integer [ThreadID] assigned in creation order.
// The goroutine that calls [Init] becomes the main thread, ID 0.
//
// # Quick Start
//
//	func main() {
//		if !spindle.Init() {
//			os.Exit(1)
//		}
//		defer spindle.Terminate()
//
//		id := spindle.CreateThread(func(arg any) {
//			fmt.Println("hello from", spindle.CurrentThreadID(), arg)
//		}, "world")
//		spindle.WaitThread(id, spindle.Wait)
//	}
//
// # API Overview
//
//   - Lifecycle: [Init], [Terminate], [Exit]
//   - Timer: [GetTime], [SetTime], [Sleep]
//   - Threads: [CreateThread], [DestroyThread], [WaitThread], [CurrentThreadID]
//   - Mutexes: [CreateMutex], [DestroyMutex], [LockMutex], [UnlockMutex]
//   - Condition variables: [CreateCond], [DestroyCond], [WaitCond],
//     [SignalCond], [BroadcastCond]
//   - Information: [CPUCoreCount], [GetInfo], [Version], [AtLeast]
//
// # Uninitialized Behaviour
//
// Before Init and after Terminate, thread and timer functions return neutral
// values instead of failing: [GetTime] returns 0, [CreateThread] returns
// [InvalidThread], [WaitThread] returns true and [CurrentThreadID] returns
// [MainThread]. Mutexes and condition variables work regardless.
//
// # Condition Variables
//
// Platforms without native condition variables (Windows) get an emulation
// built from one auto-reset and one manual-reset event. Setting
// SPINDLE_EMULATE_COND=1 forces the emulation everywhere.
//
// # Configuration
//
// The process-wide runtime reads SPINDLE_MAX_THREADS, SPINDLE_EMULATE_COND,
// SPINDLE_LOG_LEVEL, SPINDLE_DEBUG and SPINDLE_JOURNAL when first used.
//
// # Termination
//
// Terminate destroys any thread still running; well-behaved programs wait
// for every thread first. Go has no exit hooks, so programs that leave
// through os.Exit should call [Exit] instead to terminate the runtime on the
// way out.
package spindle
