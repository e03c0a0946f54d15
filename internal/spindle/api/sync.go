// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package api

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/kolkov/spindle/internal/spindle/condemu"
	"github.com/kolkov/spindle/internal/spindle/native"
)

// Mutex is a native lock handle. It is owned by its creator and not tracked
// by any registry. A nil or destroyed Mutex ignores Lock and Unlock.
type Mutex struct {
	lock      native.Lock
	destroyed atomic.Bool
}

func (m *Mutex) valid() bool {
	return m != nil && m.lock != nil && !m.destroyed.Load()
}

// Lock acquires m.
func (m *Mutex) Lock() {
	if m.valid() {
		m.lock.Lock()
	}
}

// Unlock releases m.
func (m *Mutex) Unlock() {
	if m.valid() {
		m.lock.Unlock()
	}
}

// Cond is a condition variable handle, backed by the native condition
// variable or by the event-based emulator.
type Cond struct {
	cond      native.Cond
	emu       *condemu.Emulator // nil when native
	destroyed atomic.Bool
}

func (c *Cond) valid() bool {
	return c != nil && c.cond != nil && !c.destroyed.Load()
}

// Emulated reports whether c runs on the event-based emulator.
func (c *Cond) Emulated() bool {
	return c != nil && c.emu != nil
}

// CreateMutex allocates a mutex. It does not require initialization.
func (r *Runtime) CreateMutex() *Mutex {
	return &Mutex{lock: r.backend.NewLock()}
}

// DestroyMutex releases m. Nil or already destroyed handles are ignored.
func (r *Runtime) DestroyMutex(m *Mutex) {
	if m == nil || !m.destroyed.CompareAndSwap(false, true) {
		r.logger.Warn("destroy of invalid mutex handle")
	}
}

// LockMutex acquires m, blocking until it is available.
func (r *Runtime) LockMutex(m *Mutex) {
	if !m.valid() {
		r.logger.Warn("lock of invalid mutex handle")
		return
	}
	m.lock.Lock()
}

// UnlockMutex releases m.
func (r *Runtime) UnlockMutex(m *Mutex) {
	if !m.valid() {
		r.logger.Warn("unlock of invalid mutex handle")
		return
	}
	m.lock.Unlock()
}

// CreateCond allocates a condition variable. The emulator is used when the
// backend has no native condition variables or the configuration asks for
// it. It does not require initialization.
func (r *Runtime) CreateCond() (*Cond, error) {
	if !r.cfg.EmulateCond {
		if nc, ok := r.backend.NewCond(); ok {
			return &Cond{cond: nc}, nil
		}
	}
	emu, err := condemu.New(r.backend)
	if err != nil {
		return nil, fmt.Errorf("api: create cond: %w", err)
	}
	return &Cond{cond: emu, emu: emu}, nil
}

// DestroyCond releases c. Nil or already destroyed handles are ignored.
func (r *Runtime) DestroyCond(c *Cond) {
	if c == nil || !c.destroyed.CompareAndSwap(false, true) {
		r.logger.Warn("destroy of invalid cond handle")
		return
	}
	if c.emu != nil {
		if err := c.emu.Close(); err != nil {
			r.logger.Warn("close emulated cond", zap.Error(err))
		}
	}
}

// WaitCond atomically releases m and waits on c for at most timeout
// seconds, then re-acquires m. A timeout at or above Infinity waits without
// a deadline; zero or negative polls. The caller must hold m. It reports
// whether the thread was woken by SignalCond or BroadcastCond.
func (r *Runtime) WaitCond(c *Cond, m *Mutex, seconds float64) bool {
	if !c.valid() || !m.valid() {
		r.logger.Warn("wait on invalid cond or mutex handle")
		return false
	}
	return c.cond.Wait(m.lock, timeout(seconds))
}

// SignalCond wakes one thread waiting on c. Without waiters it does
// nothing; the signal is not remembered.
func (r *Runtime) SignalCond(c *Cond) {
	if !c.valid() {
		r.logger.Warn("signal of invalid cond handle")
		return
	}
	c.cond.Signal()
}

// BroadcastCond wakes every thread currently waiting on c, once each.
func (r *Runtime) BroadcastCond(c *Cond) {
	if !c.valid() {
		r.logger.Warn("broadcast of invalid cond handle")
		return
	}
	c.cond.Broadcast()
}
