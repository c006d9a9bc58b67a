// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// This file opts vrfd into the GODEBUG defaults of newer Go releases when it
// is built with them.  Toolchains otherwise keep the defaults of the go
// directive in go.mod, which disables behavior changes such as stricter TLS
// and x509 handling for the RPC server.
//
// Review the release notes of every new Go release before raising the
// version below.

//go:build go1.23

//go:debug default=go1.23

package main
