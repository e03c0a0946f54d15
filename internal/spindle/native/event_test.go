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

func newEvents(t *testing.T, b Backend) (auto, manual Event) {
	t.Helper()
	auto, err := b.NewEvent(false)
	require.NoError(t, err)
	manual, err = b.NewEvent(true)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = auto.Close()
		_ = manual.Close()
	})
	return auto, manual
}

func TestWaitAny_TimesOutWhenNothingSet(t *testing.T) {
	b := New(Options{})
	auto, manual := newEvents(t, b)

	start := time.Now()
	idx, ok := b.WaitAny([]Event{auto, manual}, 20*time.Millisecond)
	assert.False(t, ok)
	assert.Equal(t, -1, idx)
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestWaitAny_AutoResetConsumed(t *testing.T) {
	b := New(Options{})
	auto, manual := newEvents(t, b)

	auto.Set()
	idx, ok := b.WaitAny([]Event{auto, manual}, 0)
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	// The set state was consumed by the first wait.
	_, ok = b.WaitAny([]Event{auto, manual}, 10*time.Millisecond)
	assert.False(t, ok)
}

func TestWaitAny_ManualResetStaysSet(t *testing.T) {
	b := New(Options{})
	auto, manual := newEvents(t, b)

	manual.Set()
	for i := 0; i < 3; i++ {
		idx, ok := b.WaitAny([]Event{auto, manual}, 0)
		require.True(t, ok, "wait %d", i)
		assert.Equal(t, 1, idx)
	}

	manual.Reset()
	_, ok := b.WaitAny([]Event{auto, manual}, 10*time.Millisecond)
	assert.False(t, ok)
}

func TestWaitAny_LowerIndexWins(t *testing.T) {
	b := New(Options{})
	auto, manual := newEvents(t, b)

	manual.Set()
	auto.Set()
	idx, ok := b.WaitAny([]Event{auto, manual}, 0)
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestWaitAny_AutoResetWakesExactlyOne(t *testing.T) {
	b := New(Options{})
	auto, _ := newEvents(t, b)

	const waiters = 4
	var woken atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := b.WaitAny([]Event{auto}, 200*time.Millisecond); ok {
				woken.Add(1)
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	auto.Set()
	wg.Wait()

	assert.Equal(t, int32(1), woken.Load())
}

func TestWaitAny_SetWakesBlockedWaiter(t *testing.T) {
	b := New(Options{})
	auto, manual := newEvents(t, b)

	got := make(chan int, 1)
	go func() {
		idx, _ := b.WaitAny([]Event{auto, manual}, -1)
		got <- idx
	}()

	time.Sleep(10 * time.Millisecond)
	manual.Set()

	select {
	case idx := <-got:
		assert.Equal(t, 1, idx)
	case <-time.After(2 * time.Second):
		t.Fatal("waiter was not woken")
	}
}
