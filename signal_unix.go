// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

//go:build unix

package main

import "golang.org/x/sys/unix"

// Service managers and container runtimes stop the daemon with SIGTERM, and a
// hangup of the controlling terminal also shuts it down.
func init() {
	interruptSignals = append(interruptSignals, unix.SIGTERM, unix.SIGHUP)
}
