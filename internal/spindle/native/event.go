// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package native

import (
	"sync"
	"time"
)

// goEvent is an event object built from a mutex and per-waiter wake
// channels, with Win32 semantics: an auto-reset event stays set until exactly
// one waiter consumes it; a manual-reset event stays set until Reset.
type goEvent struct {
	mu       sync.Mutex
	manual   bool
	set      bool
	closed   bool
	watchers map[chan struct{}]struct{}
}

func newGoEvent(manualReset bool) *goEvent {
	return &goEvent{
		manual:   manualReset,
		watchers: make(map[chan struct{}]struct{}),
	}
}

func (e *goEvent) Set() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.set = true
	for w := range e.watchers {
		select {
		case w <- struct{}{}:
		default:
		}
	}
}

func (e *goEvent) Reset() {
	e.mu.Lock()
	e.set = false
	e.mu.Unlock()
}

func (e *goEvent) Close() error {
	e.mu.Lock()
	e.closed = true
	e.set = false
	clear(e.watchers)
	e.mu.Unlock()
	return nil
}

// tryConsume reports whether the event is set, clearing it if auto-reset.
// When it is not set and w is non-nil, w is registered for wake-ups in the
// same critical section so that no Set can slip in between.
func (e *goEvent) tryConsume(w chan struct{}) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.set {
		if !e.manual {
			e.set = false
		}
		return true
	}
	if w != nil && !e.closed {
		e.watchers[w] = struct{}{}
	}
	return false
}

func (e *goEvent) unwatch(w chan struct{}) {
	e.mu.Lock()
	delete(e.watchers, w)
	e.mu.Unlock()
}

// waitAnyGo implements Backend.WaitAny for goEvents.
func waitAnyGo(events []Event, timeout time.Duration) (int, bool) {
	evs := make([]*goEvent, len(events))
	for i, ev := range events {
		ge, ok := ev.(*goEvent)
		if !ok {
			return -1, false
		}
		evs[i] = ge
	}

	var deadline <-chan time.Time
	if timeout >= 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	wake := make(chan struct{}, 1)
	unwatchAll := func() {
		for _, ev := range evs {
			ev.unwatch(wake)
		}
	}

	for {
		for i, ev := range evs {
			if ev.tryConsume(wake) {
				unwatchAll()
				return i, true
			}
		}

		select {
		case <-wake:
			// Another waiter may consume an auto-reset event first;
			// loop and re-check.
		case <-deadline:
			unwatchAll()
			// A Set that raced with the deadline still counts.
			for i, ev := range evs {
				if ev.tryConsume(nil) {
					return i, true
				}
			}
			return -1, false
		}
	}
}
