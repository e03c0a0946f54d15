// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package api

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kolkov/spindle/internal/log"
	"github.com/kolkov/spindle/internal/spindle/native"
	"github.com/kolkov/spindle/internal/spindle/registry"
)

// CreateThread starts entry(arg) on a new native thread and returns its ID.
// On failure it returns InvalidThread and leaves the registry unchanged,
// apart from the consumed ID.
func (r *Runtime) CreateThread(entry func(arg any), arg any) (ThreadID, error) {
	st := r.state.Load()
	if st == nil {
		return InvalidThread, ErrNotInitialized
	}
	if entry == nil {
		return InvalidThread, fmt.Errorf("%w: nil entry function", ErrInvalidThread)
	}

	announced := make(chan struct{})
	st.reg.Lock()
	rec := st.reg.Allocate(entry, arg)
	th, err := r.backend.Spawn(r.trampoline(st, announced))
	if err != nil {
		st.reg.Discard(rec)
		st.reg.Unlock()
		st.logger.Warn("create thread failed", log.Thread(rec.ID), zap.Error(err))
		return InvalidThread, fmt.Errorf("api: create thread %d: %w", rec.ID, err)
	}
	rec.Thread = th
	rec.NativeID = th.NativeID()
	rec.OSThreadID = th.OSThreadID()
	st.reg.Register(rec)
	st.reg.Unlock()

	st.logger.Debug("thread created",
		log.Thread(rec.ID),
		log.Native(uint64(rec.NativeID)),
		log.OSThread(rec.OSThreadID),
	)
	r.observer.OnThreadCreated(st.session, rec.ID, uint64(rec.NativeID))
	close(announced)
	return ThreadID(rec.ID), nil
}

// trampoline returns the function every spawned thread runs. The thread
// finds its own record by native identity once CreateThread has linked and
// announced it, so its exit is never observed before its creation.
func (r *Runtime) trampoline(st *state, announced <-chan struct{}) func() {
	return func() {
		<-announced
		self := r.backend.Self()

		st.reg.Lock()
		rec := st.reg.LookupNative(self)
		st.reg.Unlock()
		if rec == nil {
			st.logger.Error("spawned thread has no record", log.Native(uint64(self)))
			return
		}

		rec.Entry(rec.Arg)

		st.reg.Lock()
		removed := st.reg.Remove(rec)
		st.reg.Unlock()
		if removed {
			r.observer.OnThreadExited(st.session, rec.ID)
		}
	}
}

// WaitThread waits for thread id to exit. With Wait it blocks until the
// thread's entry function has returned or the thread is destroyed; with NoWait it returns false while
// the thread is registered and true once it is gone, blocking at most for
// the registry critical section. Reserved IDs (< 1) report true.
func (r *Runtime) WaitThread(id ThreadID, mode WaitMode) (bool, error) {
	st := r.state.Load()
	if st == nil {
		return true, ErrNotInitialized
	}
	if id <= MainThread {
		return true, ErrInvalidThread
	}

	st.reg.Lock()
	rec := st.reg.Lookup(int(id))
	st.reg.Unlock()
	if rec == nil {
		return true, nil
	}

	switch mode {
	case NoWait:
		return false, nil
	case Wait:
		select {
		case <-rec.Thread.Done():
		case <-rec.Destroyed():
		}
		return true, nil
	}
	return false, fmt.Errorf("api: wait thread %d: unknown mode %#x", id, int(mode))
}

// CurrentThreadID returns the calling thread's ID. It returns MainThread
// when the runtime is not initialized and InvalidThread for goroutines the
// runtime did not start.
func (r *Runtime) CurrentThreadID() ThreadID {
	st := r.state.Load()
	if st == nil {
		return MainThread
	}

	st.reg.Lock()
	defer st.reg.Unlock()
	if rec := st.reg.LookupNative(r.backend.Self()); rec != nil {
		return ThreadID(rec.ID)
	}
	return InvalidThread
}

// Unsafe exposes forced thread termination.
//
// Destroying a thread does not unwind it: locks it holds stay held and its
// state is left as is. A destroyed thread keeps running until its entry
// function returns; the runtime forgets it immediately and discards its OS
// thread afterwards. Joins in progress on a destroyed thread return as soon
// as it is destroyed, not when its entry function finishes. Use it only as a
// last resort.
type Unsafe struct {
	r *Runtime
}

// Unsafe returns the runtime's forced-termination operations.
func (r *Runtime) Unsafe() Unsafe {
	return Unsafe{r: r}
}

// DestroyThread forcibly terminates thread id and removes its record.
// Reserved IDs (< 1) are ignored.
func (u Unsafe) DestroyThread(id ThreadID) error {
	r := u.r
	st := r.state.Load()
	if st == nil {
		return ErrNotInitialized
	}
	if id <= MainThread {
		return ErrInvalidThread
	}
	killer, ok := native.KillerOf(r.backend)
	if !ok {
		return fmt.Errorf("api: destroy thread %d: backend %s: %w",
			id, r.backend.Name(), errors.ErrUnsupported)
	}

	st.reg.Lock()
	rec := st.reg.Lookup(int(id))
	if rec == nil {
		st.reg.Unlock()
		return fmt.Errorf("%w: %d", ErrInvalidThread, id)
	}
	err := killer.Kill(rec.Thread)
	st.reg.Destroy(rec)
	st.reg.Unlock()

	st.logger.Warn("thread destroyed", log.Thread(rec.ID), log.Native(uint64(rec.NativeID)))
	r.observer.OnThreadDestroyed(st.session, rec.ID)
	if err != nil {
		return fmt.Errorf("api: destroy thread %d: %w", id, err)
	}
	return nil
}

// Threads returns the IDs of every registered thread, main included, in
// ascending order. It returns nil when the runtime is not initialized.
func (r *Runtime) Threads() []ThreadID {
	st := r.state.Load()
	if st == nil {
		return nil
	}
	var ids []ThreadID
	st.reg.Lock()
	st.reg.Each(func(rec *registry.Record) bool {
		ids = append(ids, ThreadID(rec.ID))
		return true
	})
	st.reg.Unlock()
	return ids
}
