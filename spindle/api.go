// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package spindle provides portable threads, mutexes, condition variables
// and a monotonic timer.
//
// See doc.go for detailed documentation and examples.
package spindle

import (
	"os"
	"sync"

	"github.com/kolkov/spindle/internal/spindle/api"
	"github.com/kolkov/spindle/internal/spindle/config"
)

// ThreadID identifies a thread created by the runtime.
type ThreadID = api.ThreadID

// WaitMode selects whether WaitThread blocks.
type WaitMode = api.WaitMode

// Mutex is a mutual exclusion lock created by CreateMutex.
type Mutex = api.Mutex

// Cond is a condition variable created by CreateCond.
type Cond = api.Cond

const (
	// MainThread is the ID of the thread that called Init.
	MainThread = api.MainThread

	// InvalidThread is returned when a thread could not be created or
	// identified.
	InvalidThread = api.InvalidThread

	// Wait makes WaitThread block until the thread exits.
	Wait = api.Wait

	// NoWait makes WaitThread return immediately.
	NoWait = api.NoWait

	// Infinity is the condition wait timeout, in seconds, at or above
	// which WaitCond blocks without a deadline.
	Infinity = api.Infinity
)

var (
	stdOnce sync.Once
	std     *api.Runtime
)

// defaultRuntime returns the process-wide runtime, configured from the
// environment on first use.
func defaultRuntime() *api.Runtime {
	stdOnce.Do(func() {
		cfg := config.Default()
		if err := cfg.ApplyEnv(); err != nil {
			cfg = config.Default()
		}
		r, err := api.New(cfg)
		if err != nil {
			r, _ = api.New(config.Default())
		}
		std = r
	})
	return std
}

// Init initializes the runtime and makes the calling goroutine the main
// thread. It is safe to call more than once; later calls do nothing.
//
//	func main() {
//		spindle.Init()
//		defer spindle.Terminate()
//		// ...
//	}
func Init() bool {
	return defaultRuntime().Init() == nil
}

// Terminate shuts the runtime down. Threads still running are destroyed,
// which is an error in the caller. Calls from threads other than the one
// that called Init, and calls on an uninitialized runtime, do nothing.
func Terminate() {
	_ = defaultRuntime().Terminate()
}

// Exit terminates the runtime from any thread and exits the process with
// the given code.
func Exit(code int) {
	api.RunExitHooks()
	os.Exit(code)
}

// GetTime returns seconds elapsed since Init, or since the zero point set
// by SetTime. It returns 0 when uninitialized.
func GetTime() float64 {
	t, _ := defaultRuntime().GetTime()
	return t
}

// SetTime makes GetTime return t now, without changing the rate at which
// time passes.
func SetTime(t float64) {
	_ = defaultRuntime().SetTime(t)
}

// Sleep suspends the calling thread for at least t seconds. Sleep(0)
// yields the processor.
func Sleep(t float64) {
	_ = defaultRuntime().Sleep(t)
}

// CreateThread starts fn(arg) on a new thread and returns its ID, or
// InvalidThread on failure.
func CreateThread(fn func(arg any), arg any) ThreadID {
	id, _ := defaultRuntime().CreateThread(fn, arg)
	return id
}

// DestroyThread forcibly terminates a thread. The thread is not unwound:
// locks it holds stay held. Use it only as a last resort.
func DestroyThread(id ThreadID) {
	_ = defaultRuntime().Unsafe().DestroyThread(id)
}

// WaitThread waits for a thread to exit. With Wait it blocks; with NoWait it
// returns false if the thread is still running. It returns true for threads
// that have already exited.
func WaitThread(id ThreadID, mode WaitMode) bool {
	done, _ := defaultRuntime().WaitThread(id, mode)
	return done
}

// CurrentThreadID returns the calling thread's ID.
func CurrentThreadID() ThreadID {
	return defaultRuntime().CurrentThreadID()
}

// CreateMutex creates a mutex.
func CreateMutex() *Mutex {
	return defaultRuntime().CreateMutex()
}

// DestroyMutex releases a mutex.
func DestroyMutex(m *Mutex) {
	defaultRuntime().DestroyMutex(m)
}

// LockMutex locks m.
func LockMutex(m *Mutex) {
	defaultRuntime().LockMutex(m)
}

// UnlockMutex unlocks m.
func UnlockMutex(m *Mutex) {
	defaultRuntime().UnlockMutex(m)
}

// CreateCond creates a condition variable, or returns nil on failure.
func CreateCond() *Cond {
	c, err := defaultRuntime().CreateCond()
	if err != nil {
		return nil
	}
	return c
}

// DestroyCond releases a condition variable.
func DestroyCond(c *Cond) {
	defaultRuntime().DestroyCond(c)
}

// WaitCond unlocks m, waits up to timeout seconds for c to be signalled and
// locks m again. The caller must hold m. It reports whether the thread was
// woken before the timeout.
func WaitCond(c *Cond, m *Mutex, timeout float64) bool {
	return defaultRuntime().WaitCond(c, m, timeout)
}

// SignalCond wakes one thread waiting on c.
func SignalCond(c *Cond) {
	defaultRuntime().SignalCond(c)
}

// BroadcastCond wakes every thread waiting on c.
func BroadcastCond(c *Cond) {
	defaultRuntime().BroadcastCond(c)
}

// CPUCoreCount returns the number of logical processors, never less than 1.
func CPUCoreCount() int {
	return defaultRuntime().CPUCoreCount()
}
