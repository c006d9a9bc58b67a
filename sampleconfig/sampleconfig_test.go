// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sampleconfig

import (
	"strings"
	"testing"
)

// TestSampleConfigs ensures the embedded sample configs are present and only
// contain commented out options.
func TestSampleConfigs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		contents string
		options  []string
	}{{
		name:     "vrfd",
		contents: Vrfd(),
		options:  []string{"; batchsize=", "; feereceiver=", "; rpclisten="},
	}, {
		name:     "vrfctl",
		contents: Vrfctl(),
		options:  []string{"; rpcserver=", "; proxy=", "; rpccert="},
	}}

	for _, test := range tests {
		if !strings.HasPrefix(test.contents, "[Application Options]") {
			t.Errorf("%s: missing application options section", test.name)
			continue
		}
		for _, option := range test.options {
			if !strings.Contains(test.contents, option) {
				t.Errorf("%s: missing option %q", test.name, option)
			}
		}
		for i, line := range strings.Split(test.contents, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || line[0] == ';' || line[0] == '[' {
				continue
			}
			t.Errorf("%s: line %d is not commented out: %q", test.name,
				i+1, line)
		}
	}
}
