// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Goroutine identity extraction.
//
// A spindle thread is a goroutine wired to its own OS thread. The goroutine ID
// is the identity the registry keys on: unlike the kernel thread ID it is
// stable for goroutines that never called runtime.LockOSThread (the
// initializing goroutine, for instance), and unlike the OS thread it is never
// handed to another goroutine after exit.
//
// The ID is read from the header of runtime.Stack: "goroutine 123 [running]:".

package native

import "runtime"

// goroutineID returns the current goroutine ID.
//
// Every backend's Self and Spawn report this value as the NativeID, so the
// registry can find the calling thread's record without any per-goroutine
// storage.
//
// Performance: ~1500ns per call, dominated by runtime.Stack. Callers invoke
// it once per spawn and once per CurrentThreadID, never on a wait path.
//
// Returns:
//   - NativeID: the goroutine ID (always positive), or 0 if the stack
//     header could not be parsed
func goroutineID() NativeID {
	// Only the first line is needed.
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	return parseGID(buf[:n])
}

// parseGID extracts the goroutine ID from stack trace bytes.
//
// Expected format: "goroutine 123 [running]:..."
//
// The bytes are scanned in place: no string conversion beyond the prefix
// check, no regexp and no allocation.
//
// Parameters:
//   - buf: stack trace bytes from runtime.Stack; only the first line is read
//
// Returns:
//   - NativeID: the parsed ID (123 in the example above), or 0 if buf is
//     shorter than the prefix, lacks it, or has no digits after it
func parseGID(buf []byte) NativeID {
	const prefix = "goroutine "
	const prefixLen = len(prefix)

	if len(buf) < prefixLen {
		return 0
	}
	if string(buf[:prefixLen]) != prefix {
		return 0
	}

	var gid NativeID
	digits := 0
	for i := prefixLen; i < len(buf); i++ {
		c := buf[i]
		if c < '0' || c > '9' {
			// Usually the space before "[running]".
			break
		}
		gid = gid*10 + NativeID(c-'0')
		digits++
	}
	if digits == 0 {
		return 0
	}
	return gid
}
