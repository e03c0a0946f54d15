// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package condemu implements condition variables on top of a backend's event
// primitive, for backends without native condition variables.
//
// Each condition variable owns two events and a waiter count:
//
//	SIGNAL     auto-reset, wakes exactly one waiter per Signal
//	BROADCAST  manual-reset, stays set until the last waiter it released
//	           has left Wait
//
// The count has its own lock, distinct from the caller's mutex. SIGNAL is
// backed by a counter of undelivered signals, never larger than the waiter
// count, so that two Signals issued before either is consumed still wake two
// waiters. Broadcasts carry a generation number so that a waiter which arrives
// while BROADCAST is still set for an earlier broadcast does not treat it as
// its own wake-up. Such a waiter blocks on SIGNAL alone until the earlier
// waiters have drained BROADCAST.
package condemu

import (
	"fmt"
	"sync"
	"time"

	"github.com/kolkov/spindle/internal/spindle/native"
)

const (
	signalIdx    = 0
	broadcastIdx = 1
)

// staleWait bounds how long a waiter parked behind an earlier broadcast
// blocks on SIGNAL alone before it looks at BROADCAST again.
const staleWait = time.Millisecond

// Emulator is an event-based condition variable. It satisfies native.Cond.
type Emulator struct {
	backend native.Backend
	events  []native.Event

	count   native.Lock
	waiters int
	signals int    // Signals not yet consumed, at most waiters
	gen     uint64 // incremented by every effective Broadcast
	pending int    // waiters released by the current broadcast still in Wait
}

var _ native.Cond = (*Emulator)(nil)

// New creates an emulated condition variable on b's events.
func New(b native.Backend) (*Emulator, error) {
	signal, err := b.NewEvent(false)
	if err != nil {
		return nil, fmt.Errorf("condemu: signal event: %w", err)
	}
	broadcast, err := b.NewEvent(true)
	if err != nil {
		_ = signal.Close()
		return nil, fmt.Errorf("condemu: broadcast event: %w", err)
	}
	return &Emulator{
		backend: b,
		events:  []native.Event{signal, broadcast},
		count:   b.NewLock(),
	}, nil
}

// Wait releases l, blocks until Signal or Broadcast wakes it or timeout
// elapses (timeout < 0 waits forever), and re-acquires l. It reports whether
// the caller was woken.
func (e *Emulator) Wait(l sync.Locker, timeout time.Duration) bool {
	e.count.Lock()
	e.waiters++
	gen := e.gen
	e.count.Unlock()

	l.Unlock()
	defer l.Lock()

	var deadline time.Time
	if timeout >= 0 {
		deadline = time.Now().Add(timeout)
	}

	for {
		remaining := time.Duration(-1)
		if timeout >= 0 {
			remaining = max(time.Until(deadline), 0)
		}

		idx, woken := e.backend.WaitAny(e.events, remaining)

		if woken && idx == broadcastIdx && e.stale(gen) {
			// BROADCAST is still set for a broadcast issued before we
			// arrived. Park on SIGNAL while its waiters drain it.
			if remaining == 0 {
				woken = false
			} else {
				idx, woken = e.backend.WaitAny(e.events[:signalIdx+1], parkFor(remaining))
				if !woken {
					continue
				}
			}
		}

		e.count.Lock()
		e.leave(gen, woken && idx == signalIdx)
		e.count.Unlock()
		return woken
	}
}

// stale reports whether no broadcast has happened since generation gen.
func (e *Emulator) stale(gen uint64) bool {
	e.count.Lock()
	defer e.count.Unlock()
	return e.gen == gen
}

func parkFor(remaining time.Duration) time.Duration {
	if remaining < 0 || remaining > staleWait {
		return staleWait
	}
	return remaining
}

// leave removes the caller from the waiter count. The count lock is held.
// signaled reports that the caller consumed SIGNAL.
func (e *Emulator) leave(gen uint64, signaled bool) {
	e.waiters--
	if signaled && e.signals > 0 {
		e.signals--
	}
	if gen != e.gen {
		// Counted by the latest broadcast.
		e.pending--
		if e.pending <= 0 {
			e.pending = 0
			e.events[broadcastIdx].Reset()
		}
	}
	e.signals = min(e.signals, e.waiters)
	switch {
	case e.waiters == 0:
		// A Signal nobody consumed must not reach future waiters.
		e.signals = 0
		e.events[signalIdx].Reset()
	case e.signals > 0:
		// SIGNAL auto-resets on each wake; re-arm it for the next one.
		e.events[signalIdx].Set()
	}
}

// Signal wakes one waiter. It does nothing when there are no waiters.
func (e *Emulator) Signal() {
	e.count.Lock()
	defer e.count.Unlock()
	if e.signals < e.waiters {
		e.signals++
		e.events[signalIdx].Set()
	}
}

// Broadcast wakes every current waiter once. Waiters arriving afterwards are
// not woken by it.
func (e *Emulator) Broadcast() {
	e.count.Lock()
	defer e.count.Unlock()
	if e.waiters > 0 {
		e.gen++
		e.pending = e.waiters
		// Every current waiter is released; pending signals would only
		// reach later arrivals.
		e.signals = 0
		e.events[signalIdx].Reset()
		e.events[broadcastIdx].Set()
	}
}

// Waiters returns the number of goroutines currently inside Wait.
func (e *Emulator) Waiters() int {
	e.count.Lock()
	defer e.count.Unlock()
	return e.waiters
}

// Close releases both events. The emulator must have no waiters.
func (e *Emulator) Close() error {
	var firstErr error
	for _, ev := range e.events {
		if err := ev.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
