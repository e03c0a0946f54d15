// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package native

import (
	"sync"
	"time"
)

// notifyCond is a condition variable with timed waits, built on a FIFO list
// of per-waiter channels. sync.Cond has no timed wait, so it cannot serve.
type notifyCond struct {
	mu      sync.Mutex
	waiters []chan struct{}
}

func newNotifyCond() *notifyCond {
	return &notifyCond{}
}

func (c *notifyCond) Wait(l sync.Locker, timeout time.Duration) bool {
	ch := make(chan struct{})

	// Enqueue before releasing l: a Signal issued after l is released
	// always finds this waiter.
	c.mu.Lock()
	c.waiters = append(c.waiters, ch)
	c.mu.Unlock()

	l.Unlock()
	defer l.Lock()

	if timeout < 0 {
		<-ch
		return true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ch:
		return true
	case <-timer.C:
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, w := range c.waiters {
			if w == ch {
				c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
				return false
			}
		}
		// Dequeued by a concurrent Signal/Broadcast: the wake-up is ours.
		return true
	}
}

func (c *notifyCond) Signal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.waiters) == 0 {
		return
	}
	close(c.waiters[0])
	c.waiters = c.waiters[1:]
}

func (c *notifyCond) Broadcast() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, w := range c.waiters {
		close(w)
	}
	c.waiters = nil
}
