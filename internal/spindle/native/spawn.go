// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package native

import (
	"runtime"
	"sync/atomic"
)

// goThread is a goroutine locked to its own OS thread.
type goThread struct {
	id        NativeID
	osID      uint64
	done      chan struct{}
	abandoned atomic.Bool
}

func (t *goThread) NativeID() NativeID     { return t.id }
func (t *goThread) OSThreadID() uint64     { return t.osID }
func (t *goThread) Done() <-chan struct{} { return t.done }

func (t *goThread) Join() {
	<-t.done
}

// spawner starts goroutine threads and enforces the live-thread limit.
// Both backends embed it.
type spawner struct {
	max  int
	live atomic.Int64
	osID func() uint64
}

type started struct {
	id   NativeID
	osID uint64
}

func (s *spawner) Spawn(fn func()) (Thread, error) {
	if s.max > 0 && s.live.Add(1) > int64(s.max) {
		s.live.Add(-1)
		return nil, ErrThreadLimit
	} else if s.max <= 0 {
		s.live.Add(1)
	}

	t := &goThread{done: make(chan struct{})}
	ready := make(chan started, 1)
	go func() {
		runtime.LockOSThread()
		ready <- started{id: goroutineID(), osID: s.osID()}

		defer func() {
			s.live.Add(-1)
			// An abandoned thread exits still locked, which makes the
			// Go scheduler discard its OS thread.
			if !t.abandoned.Load() {
				runtime.UnlockOSThread()
			}
			close(t.done)
		}()
		fn()
	}()

	st := <-ready
	t.id, t.osID = st.id, st.osID
	return t, nil
}

// Kill abandons t. See Killer.
func (s *spawner) Kill(t Thread) error {
	if gt, ok := t.(*goThread); ok {
		gt.abandoned.Store(true)
	}
	return nil
}

// Live returns the number of spawned threads whose function has not yet
// returned.
func (s *spawner) Live() int {
	return int(s.live.Load())
}
