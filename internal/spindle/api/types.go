// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package api

import (
	"errors"

	"github.com/kolkov/spindle/internal/spindle/native"
)

// ThreadID is a logical thread identity assigned by a Runtime.
type ThreadID int

const (
	// MainThread is the ID of the thread that initialized the runtime.
	MainThread ThreadID = 0

	// InvalidThread is returned when no thread could be identified or
	// created.
	InvalidThread ThreadID = -1
)

// WaitMode selects blocking behaviour for WaitThread.
type WaitMode int

const (
	// Wait blocks until the thread has exited.
	Wait WaitMode = 0x00040001

	// NoWait reports the thread's state without blocking.
	NoWait WaitMode = 0x00040002
)

func (m WaitMode) String() string {
	switch m {
	case Wait:
		return "wait"
	case NoWait:
		return "nowait"
	}
	return "unknown"
}

// Infinity is the timeout, in seconds, at or above which a condition wait
// has no deadline.
const Infinity = 100000.0

var (
	// ErrNotInitialized is returned by every thread and timer operation
	// of a runtime that is not initialized.
	ErrNotInitialized = errors.New("spindle: runtime not initialized")

	// ErrNotMainThread is returned by Terminate when called from a thread
	// other than the one that called Init.
	ErrNotMainThread = errors.New("spindle: terminate called off the main thread")

	// ErrInvalidThread is returned for reserved or unknown thread IDs and
	// for nil entry functions.
	ErrInvalidThread = errors.New("spindle: invalid thread")

	// ErrInvalidHandle is returned for nil or destroyed mutex and
	// condition variable handles.
	ErrInvalidHandle = errors.New("spindle: invalid handle")

	// ErrThreadLimit is returned by CreateThread when the configured thread
	// limit is reached.
	ErrThreadLimit = native.ErrThreadLimit
)
