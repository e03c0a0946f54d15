// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package native

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyCond_TimedWaitExpires(t *testing.T) {
	c := newNotifyCond()
	var mu sync.Mutex

	mu.Lock()
	start := time.Now()
	woken := c.Wait(&mu, 20*time.Millisecond)
	elapsed := time.Since(start)
	mu.Unlock()

	assert.False(t, woken)
	assert.GreaterOrEqual(t, elapsed, 15*time.Millisecond)
	assert.Empty(t, c.waiters, "timed-out waiter must leave the queue")
}

func TestNotifyCond_SignalWithoutWaitersIsLost(t *testing.T) {
	c := newNotifyCond()
	var mu sync.Mutex

	c.Signal()

	mu.Lock()
	woken := c.Wait(&mu, 20*time.Millisecond)
	mu.Unlock()
	assert.False(t, woken)
}

func TestNotifyCond_SignalWakesOne(t *testing.T) {
	c := newNotifyCond()
	var mu sync.Mutex
	var woken atomic.Int32
	var wg sync.WaitGroup

	const waiters = 3
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mu.Lock()
			if c.Wait(&mu, 150*time.Millisecond) {
				woken.Add(1)
			}
			mu.Unlock()
		}()
	}

	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return len(c.waiters) == waiters
	}, time.Second, time.Millisecond)

	c.Signal()
	wg.Wait()
	assert.Equal(t, int32(1), woken.Load())
}

func TestNotifyCond_BroadcastWakesAll(t *testing.T) {
	c := newNotifyCond()
	var mu sync.Mutex
	var woken atomic.Int32
	var wg sync.WaitGroup

	const waiters = 5
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mu.Lock()
			if c.Wait(&mu, -1) {
				woken.Add(1)
			}
			mu.Unlock()
		}()
	}

	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return len(c.waiters) == waiters
	}, time.Second, time.Millisecond)

	c.Broadcast()
	wg.Wait()
	assert.Equal(t, int32(waiters), woken.Load())
}

func TestNotifyCond_ReacquiresLock(t *testing.T) {
	c := newNotifyCond()
	var mu sync.Mutex

	mu.Lock()
	c.Wait(&mu, time.Millisecond)
	// Wait must return with mu held again.
	assert.False(t, mu.TryLock())
	mu.Unlock()
}
