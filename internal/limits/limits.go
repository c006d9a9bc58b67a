// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package limits raises process resource limits for vrfd.
package limits

import "runtime/debug"

// SetMemoryLimit configures the runtime to use the provided limit as a soft
// memory limit.  Non-positive limits are ignored.
func SetMemoryLimit(limit int64) {
	if limit <= 0 {
		return
	}
	debug.SetMemoryLimit(limit)
}
