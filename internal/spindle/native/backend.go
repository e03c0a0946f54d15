// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package native wraps one platform's thread, lock, event and counter
// primitives behind a uniform capability surface.
//
// Exactly one backend is compiled per platform:
//   - posix (every GOOS except windows): native condition variables,
//     Go-implemented events, CLOCK_MONOTONIC counter on Linux.
//   - windows: Win32 events, no native condition variables (callers layer
//     the event-based emulator from package condemu on top).
//
// Threads are goroutines locked to their own OS thread for their whole
// lifetime. Forced termination is a separate capability ([Killer]) so that
// ordinary code paths holding a [Backend] cannot reach it.
package native

import (
	"errors"
	"sync"
	"time"
)

// NativeID is the identity a backend assigns to a running thread.
// It is the goroutine ID on every backend.
type NativeID uint64

// ErrThreadLimit is returned by Spawn when Options.MaxThreads live threads
// already exist.
var ErrThreadLimit = errors.New("native: thread limit reached")

// Thread is a started native thread.
type Thread interface {
	// NativeID returns the identity the thread observes from Backend.Self.
	NativeID() NativeID

	// OSThreadID returns the kernel thread ID the goroutine is locked to,
	// or 0 when the platform exposes none.
	OSThreadID() uint64

	// Join blocks until the thread function has returned.
	Join()

	// Done is closed once the thread function has returned.
	Done() <-chan struct{}
}

// Lock is the native mutual exclusion primitive.
type Lock interface {
	sync.Locker
}

// Event is a settable wake-up primitive. Auto-reset events wake exactly one
// waiter per Set and clear themselves; manual-reset events stay set until
// Reset.
type Event interface {
	Set()
	Reset()
	Close() error
}

// Cond is a native condition variable. Wait releases l, blocks until woken or
// until timeout elapses (timeout < 0 waits forever), and re-acquires l before
// returning. It reports whether the waiter was woken rather than timed out.
type Cond interface {
	Wait(l sync.Locker, timeout time.Duration) bool
	Signal()
	Broadcast()
}

// Backend is the capability set every platform provides.
type Backend interface {
	// Name identifies the backend ("posix", "windows").
	Name() string

	// Spawn starts fn on a new native thread. The returned Thread already
	// knows its NativeID: Spawn returns only after the new thread has
	// reported it, and before fn is invoked.
	Spawn(fn func()) (Thread, error)

	// Self returns the calling thread's identity.
	Self() NativeID

	// OSThreadID returns the calling goroutine's current kernel thread ID,
	// or 0 when unavailable.
	OSThreadID() uint64

	NewLock() Lock

	NewEvent(manualReset bool) (Event, error)

	// WaitAny blocks until one of events is set or timeout elapses
	// (timeout < 0 waits forever). It returns the index of the event that
	// woke the caller, consuming it if it is auto-reset, and false on
	// timeout. Lower indices win when several events are set. Events from
	// another backend make it return false immediately.
	WaitAny(events []Event, timeout time.Duration) (int, bool)

	// NewCond returns a native condition variable, or false if the
	// platform has none.
	NewCond() (Cond, bool)

	// Counter returns the current value of the highest-resolution
	// monotonic counter available.
	Counter() int64

	// Resolution returns the length of one Counter tick in seconds.
	Resolution() float64

	// Yield gives up the processor without blocking.
	Yield()

	Sleep(d time.Duration)

	// CPUCount returns the number of logical processors available to the
	// process, never less than 1.
	CPUCount() int
}

// Killer is the forced-termination capability.
//
// Kill is non-cooperative and offers no cleanup guarantees: locks held by the
// target stay held and its heap state is not unwound. A goroutine cannot be
// preempted from outside, so the target is abandoned rather than stopped: it
// keeps running until its function returns, after which its OS thread is
// discarded instead of returned to the scheduler.
type Killer interface {
	Kill(t Thread) error
}

// Options configures a backend.
type Options struct {
	// MaxThreads bounds the number of live spawned threads. Zero means
	// unlimited.
	MaxThreads int
}

// New returns the backend compiled for this platform.
func New(opts Options) Backend {
	return newPlatform(opts)
}

// KillerOf returns the forced-termination capability of b, if it has one.
func KillerOf(b Backend) (Killer, bool) {
	k, ok := b.(Killer)
	return k, ok
}

// HasNativeCond reports whether b provides native condition variables.
func HasNativeCond(b Backend) bool {
	_, ok := b.NewCond()
	return ok
}
