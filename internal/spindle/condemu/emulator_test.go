// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package condemu

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolkov/spindle/internal/spindle/native"
)

func newTestEmulator(t *testing.T) *Emulator {
	t.Helper()
	e, err := New(native.New(native.Options{}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

// startWaiters launches n goroutines that each wait once on e and records
// how many were woken.
func startWaiters(t *testing.T, e *Emulator, mu *sync.Mutex, n int, timeout time.Duration) (*sync.WaitGroup, *atomic.Int32) {
	t.Helper()
	var wg sync.WaitGroup
	var woken atomic.Int32
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mu.Lock()
			if e.Wait(mu, timeout) {
				woken.Add(1)
			}
			mu.Unlock()
		}()
	}
	require.Eventually(t, func() bool { return e.Waiters() == n }, 2*time.Second, time.Millisecond)
	return &wg, &woken
}

func TestEmulator_TimedWaitExpires(t *testing.T) {
	e := newTestEmulator(t)
	var mu sync.Mutex

	mu.Lock()
	start := time.Now()
	woken := e.Wait(&mu, 25*time.Millisecond)
	elapsed := time.Since(start)
	mu.Unlock()

	assert.False(t, woken)
	assert.GreaterOrEqual(t, elapsed, 20*time.Millisecond)
	assert.Zero(t, e.Waiters())
}

func TestEmulator_SignalWithoutWaitersIsNotQueued(t *testing.T) {
	e := newTestEmulator(t)
	var mu sync.Mutex

	e.Signal()
	e.Broadcast()

	mu.Lock()
	woken := e.Wait(&mu, 25*time.Millisecond)
	mu.Unlock()
	assert.False(t, woken, "a signal issued with no waiters must be lost")
}

func TestEmulator_SignalWakesExactlyOne(t *testing.T) {
	e := newTestEmulator(t)
	var mu sync.Mutex

	const n = 3
	wg, woken := startWaiters(t, e, &mu, n, 200*time.Millisecond)

	e.Signal()
	wg.Wait()

	assert.Equal(t, int32(1), woken.Load())
	assert.Zero(t, e.Waiters())
}

func TestEmulator_TwoSignalsWakeTwoWaiters(t *testing.T) {
	e := newTestEmulator(t)
	var mu sync.Mutex

	wg, woken := startWaiters(t, e, &mu, 2, -1)

	// Neither waiter can consume SIGNAL before both calls return.
	mu.Lock()
	e.Signal()
	e.Signal()
	mu.Unlock()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("woken=%d of 2 after two Signal calls", woken.Load())
	}
	assert.Equal(t, int32(2), woken.Load())
	assert.Zero(t, e.Waiters())
}

func TestEmulator_SignalsCappedAtWaiters(t *testing.T) {
	e := newTestEmulator(t)
	var mu sync.Mutex

	wg, woken := startWaiters(t, e, &mu, 1, -1)

	mu.Lock()
	e.Signal()
	e.Signal()
	e.Signal()
	mu.Unlock()
	wg.Wait()
	assert.Equal(t, int32(1), woken.Load())

	// The surplus signals had no waiter to wake and are gone.
	mu.Lock()
	again := e.Wait(&mu, 20*time.Millisecond)
	mu.Unlock()
	assert.False(t, again)
}

func TestEmulator_BroadcastWakesAllOnce(t *testing.T) {
	e := newTestEmulator(t)
	var mu sync.Mutex

	const n = 6
	wg, woken := startWaiters(t, e, &mu, n, -1)

	e.Broadcast()
	wg.Wait()

	assert.Equal(t, int32(n), woken.Load())
	assert.Zero(t, e.Waiters())

	// The broadcast was fully drained: a new waiter must block.
	mu.Lock()
	again := e.Wait(&mu, 20*time.Millisecond)
	mu.Unlock()
	assert.False(t, again, "no second wake-up from the same broadcast")
}

func TestEmulator_LateArrivalIgnoresEarlierBroadcast(t *testing.T) {
	e := newTestEmulator(t)
	var mu sync.Mutex

	// Hold the mutex so the released waiter cannot leave Wait, keeping
	// BROADCAST set while the late waiter arrives.
	wg, woken := startWaiters(t, e, &mu, 1, -1)

	mu.Lock()
	e.Broadcast()

	late := make(chan bool, 1)
	go func() {
		mu.Lock()
		late <- e.Wait(&mu, 60*time.Millisecond)
		mu.Unlock()
	}()
	mu.Unlock()

	wg.Wait()
	assert.Equal(t, int32(1), woken.Load())
	assert.False(t, <-late, "late waiter must not see the earlier broadcast")
}

// countingBackend records how often the emulator blocks on its events.
type countingBackend struct {
	native.Backend
	waits atomic.Int64
}

func (b *countingBackend) WaitAny(events []native.Event, timeout time.Duration) (int, bool) {
	b.waits.Add(1)
	return b.Backend.WaitAny(events, timeout)
}

func TestEmulator_StaleBroadcastParksOnSignal(t *testing.T) {
	b := &countingBackend{Backend: native.New(native.Options{})}
	e, err := New(b)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	// An earlier broadcast released one waiter that has not left Wait yet.
	e.count.Lock()
	e.waiters = 1
	e.gen++
	e.pending = 1
	e.events[broadcastIdx].Set()
	e.count.Unlock()

	var mu sync.Mutex
	late := make(chan bool, 1)
	go func() {
		mu.Lock()
		late <- e.Wait(&mu, -1)
		mu.Unlock()
	}()
	require.Eventually(t, func() bool { return e.Waiters() == 2 }, 2*time.Second, time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	select {
	case <-late:
		t.Fatal("late waiter woken by an earlier broadcast")
	default:
	}
	// Parked waits are bounded by staleWait; a Yield loop would block
	// thousands of times in the same window.
	assert.Less(t, b.waits.Load(), int64(500))

	mu.Lock()
	e.Signal()
	mu.Unlock()
	select {
	case woken := <-late:
		assert.True(t, woken)
	case <-time.After(2 * time.Second):
		t.Fatal("parked waiter missed the signal")
	}
	assert.Equal(t, 1, e.Waiters())
}

func TestEmulator_WaitReacquiresMutex(t *testing.T) {
	e := newTestEmulator(t)
	var mu sync.Mutex

	mu.Lock()
	e.Wait(&mu, time.Millisecond)
	assert.False(t, mu.TryLock())
	mu.Unlock()
}

func TestEmulator_ProducerConsumer(t *testing.T) {
	e := newTestEmulator(t)
	var mu sync.Mutex
	queue := 0
	const items = 100

	done := make(chan struct{})
	go func() {
		defer close(done)
		for got := 0; got < items; {
			mu.Lock()
			for queue == 0 {
				e.Wait(&mu, -1)
			}
			queue--
			got++
			mu.Unlock()
		}
	}()

	for i := 0; i < items; i++ {
		mu.Lock()
		queue++
		e.Signal()
		mu.Unlock()
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not drain the queue")
	}
}
