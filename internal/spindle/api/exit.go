// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package api

import "sync"

// Go has no atexit: runtimes still initialized when the process exits
// through RunExitHooks are terminated there.
var exitHooks struct {
	mu       sync.Mutex
	runtimes map[*Runtime]struct{}
}

func registerExitHook(r *Runtime) {
	exitHooks.mu.Lock()
	defer exitHooks.mu.Unlock()
	if exitHooks.runtimes == nil {
		exitHooks.runtimes = make(map[*Runtime]struct{})
	}
	exitHooks.runtimes[r] = struct{}{}
}

func unregisterExitHook(r *Runtime) {
	exitHooks.mu.Lock()
	delete(exitHooks.runtimes, r)
	exitHooks.mu.Unlock()
}

// RunExitHooks terminates every runtime that is still initialized,
// regardless of the calling thread. It returns how many were terminated.
func RunExitHooks() int {
	exitHooks.mu.Lock()
	pending := make([]*Runtime, 0, len(exitHooks.runtimes))
	for r := range exitHooks.runtimes {
		pending = append(pending, r)
	}
	exitHooks.mu.Unlock()

	for _, r := range pending {
		r.logger.Warn("runtime still initialized at exit; terminating")
		r.forceTerminate()
	}
	return len(pending)
}
