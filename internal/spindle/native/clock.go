// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package native

import "time"

// processEpoch anchors Go's monotonic clock for platforms without a directly
// readable monotonic counter.
var processEpoch = time.Now()

// goMonotonic returns nanoseconds elapsed on Go's monotonic clock.
func goMonotonic() int64 {
	return int64(time.Since(processEpoch))
}

// atLeastOne clamps a processor count.
func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
