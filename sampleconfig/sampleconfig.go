// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package sampleconfig provides the commented example configuration files for
// vrfd and vrfctl.
package sampleconfig

import (
	_ "embed"
)

// sampleVrfdConf is a string containing the commented example config for vrfd.
//
//go:embed sample-vrfd.conf
var sampleVrfdConf string

// sampleVrfctlConf is a string containing the commented example config for
// vrfctl.
//
//go:embed sample-vrfctl.conf
var sampleVrfctlConf string

// Vrfd returns a string containing the commented example config for vrfd.
func Vrfd() string {
	return sampleVrfdConf
}

// Vrfctl returns a string containing the commented example config for vrfctl.
func Vrfctl() string {
	return sampleVrfctlConf
}
