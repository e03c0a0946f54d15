// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package registry tracks the live threads of one runtime.
//
// Records live in an arena indexed by thread ID, with a second index by
// native identity. IDs are assigned from a monotonic counter starting at 0,
// which is always the record of the thread that created the registry.
//
// The arena drops its leading run of removed slots on every removal. A
// long-lived record with a low ID would otherwise pin every later slot, so
// once holes outnumber live arena records two to one (and number at least
// compactMin) the survivors move to a small ID-sorted overflow list and the
// arena restarts at the next ID. Memory therefore stays proportional to the
// number of live threads plus compactMin.
//
// The registry is not internally synchronized. Callers hold its lock
// (Registry embeds it) across any lookup plus whatever they do with the
// result, and across every mutation.
package registry

import (
	"cmp"
	"slices"
	"sync"

	"github.com/kolkov/spindle/internal/spindle/native"
)

// MainID is the ID of the record describing the initializing thread.
const MainID = 0

// compactMin is the number of interior holes tolerated before the arena
// is rebuilt.
const compactMin = 64

// Record describes one logical thread.
type Record struct {
	ID    int
	Entry func(arg any) // nil only for the main record
	Arg   any

	// Thread is the join/kill handle; nil for the main record.
	Thread native.Thread

	NativeID   native.NativeID
	OSThreadID uint64

	destroyed chan struct{}
}

// Destroyed is closed when the record is removed by Destroy. It is nil for
// the main record.
func (r *Record) Destroyed() <-chan struct{} {
	return r.destroyed
}

// IsMain reports whether r describes the initializing thread.
func (r *Record) IsMain() bool {
	return r.Entry == nil
}

// Registry is the arena of live thread records.
type Registry struct {
	sync.Locker

	main *Record

	// slots[i] holds the record with ID base+i, or nil once it has been
	// removed (or was allocated and never registered).
	slots []*Record
	base  int

	// overflow holds records evicted from the arena by compact, sorted by
	// ID. Every ID in it is below base.
	overflow []*Record

	byNative map[native.NativeID]*Record
	nextID   int
	live     int
}

// New creates a registry guarded by lock, with the main record bound to the
// given native identity.
func New(lock native.Lock, mainNative native.NativeID, mainOS uint64) *Registry {
	main := &Record{ID: MainID, NativeID: mainNative, OSThreadID: mainOS}
	return &Registry{
		Locker:   lock,
		main:     main,
		base:     MainID + 1,
		byNative: map[native.NativeID]*Record{mainNative: main},
		nextID:   MainID + 1,
		live:     1,
	}
}

// Main returns the initializing thread's record.
func (r *Registry) Main() *Record {
	return r.main
}

// Allocate creates an unlinked record and consumes the next ID. The ID is
// never handed out again, even if the record is never registered. The
// record must be passed to Register or Discard before the lock is released.
func (r *Registry) Allocate(entry func(arg any), arg any) *Record {
	rec := &Record{ID: r.nextID, Entry: entry, Arg: arg, destroyed: make(chan struct{})}
	r.nextID++
	r.slots = append(r.slots, nil)
	return rec
}

// Register links rec, which must come from Allocate. rec.NativeID must
// already be set.
func (r *Registry) Register(rec *Record) {
	i := rec.ID - r.base
	if i < 0 || i >= len(r.slots) || r.slots[i] != nil {
		return
	}
	r.slots[i] = rec
	r.byNative[rec.NativeID] = rec
	r.live++
}

// Discard releases the slot of an allocated record that will never be
// registered.
func (r *Registry) Discard(rec *Record) {
	r.compact()
}

// Len returns the number of live records, the main record included.
func (r *Registry) Len() int {
	return r.live
}

// Each calls fn for every live record in ID order, main first, until fn
// returns false. fn must not mutate the registry.
func (r *Registry) Each(fn func(rec *Record) bool) {
	if !fn(r.main) {
		return
	}
	for _, rec := range r.overflow {
		if !fn(rec) {
			return
		}
	}
	for _, rec := range r.slots {
		if rec != nil && !fn(rec) {
			return
		}
	}
}

// Threads returns the live non-main records in ID order.
func (r *Registry) Threads() []*Record {
	out := make([]*Record, 0, r.live-1)
	out = append(out, r.overflow...)
	for _, rec := range r.slots {
		if rec != nil {
			out = append(out, rec)
		}
	}
	return out
}

// Lookup returns the live record with the given ID, or nil.
func (r *Registry) Lookup(id int) *Record {
	if id == MainID {
		return r.main
	}
	i := id - r.base
	if i < 0 {
		if j, ok := r.findOverflow(id); ok {
			return r.overflow[j]
		}
		return nil
	}
	if i >= len(r.slots) {
		return nil
	}
	return r.slots[i]
}

func (r *Registry) findOverflow(id int) (int, bool) {
	return slices.BinarySearchFunc(r.overflow, id, func(rec *Record, id int) int {
		return cmp.Compare(rec.ID, id)
	})
}

// LookupNative returns the live record bound to the given native identity,
// or nil.
func (r *Registry) LookupNative(id native.NativeID) *Record {
	return r.byNative[id]
}

// Remove unlinks rec. It reports false, changing nothing, if rec is the
// main record or is not currently linked.
func (r *Registry) Remove(rec *Record) bool {
	if rec == nil || rec == r.main {
		return false
	}
	i := rec.ID - r.base
	switch {
	case i < 0:
		j, ok := r.findOverflow(rec.ID)
		if !ok || r.overflow[j] != rec {
			return false
		}
		r.overflow = slices.Delete(r.overflow, j, j+1)
	case i >= len(r.slots) || r.slots[i] != rec:
		return false
	default:
		r.slots[i] = nil
	}
	if r.byNative[rec.NativeID] == rec {
		delete(r.byNative, rec.NativeID)
	}
	r.live--
	r.compact()
	return true
}

// Destroy removes rec like Remove and, if it was linked, closes its
// Destroyed channel so that joins in progress return.
func (r *Registry) Destroy(rec *Record) bool {
	if !r.Remove(rec) {
		return false
	}
	close(rec.destroyed)
	return true
}

// compact drops the leading run of empty slots, and rebuilds the arena when
// interior holes dominate it.
func (r *Registry) compact() {
	n := 0
	for n < len(r.slots) && r.slots[n] == nil {
		n++
	}
	r.slots = r.slots[n:]
	r.base += n

	inArena := r.live - 1 - len(r.overflow)
	holes := len(r.slots) - inArena
	if holes < compactMin || holes < 2*inArena {
		return
	}
	for _, rec := range r.slots {
		if rec != nil {
			r.overflow = append(r.overflow, rec)
		}
	}
	r.slots = nil
	r.base = r.nextID
}
