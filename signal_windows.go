// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import "syscall"

func init() {
	interruptSignals = append(interruptSignals, syscall.SIGTERM)
}
