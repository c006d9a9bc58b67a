// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestProfileMuxState ensures the profile server publishes the state of the
// queue, the sequencer and the oracle of a running server.
func TestProfileMuxState(t *testing.T) {
	s := newTestServer(t, func(c *config) {
		c.OracleManual = true
	})

	// Serve a number from the fallback source and let the next block request
	// words from the oracle.
	if _, err := s.queue.Draw(10); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	s.clock.Advance()

	mux := newProfileMux(s.daemonState)
	req := httptest.NewRequest(http.MethodGet, daemonStatePath, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status code -- got %d, want %d", rec.Code,
			http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}

	var state daemonState
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("unable to decode daemon state: %v", err)
	}
	if state.Queue.BatchSize != cfg.BatchSize {
		t.Errorf("unexpected batch size -- got %d, want %d",
			state.Queue.BatchSize, cfg.BatchSize)
	}
	if state.Queue.FallbackServed != 1 || state.Queue.Served != 0 {
		t.Errorf("unexpected served counts -- got %d/%d, want 0/1",
			state.Queue.Served, state.Queue.FallbackServed)
	}
	if !state.Queue.Outstanding {
		t.Error("outstanding request not reported")
	}
	if !state.Oracle.Manual || state.Oracle.Pending != 1 ||
		state.Oracle.Delivered != 0 {

		t.Errorf("unexpected oracle state %+v", state.Oracle)
	}
	best := s.clock.BestState()
	if state.BestBlock.Height != best.Height ||
		state.BestBlock.Hash != best.Hash.String() {

		t.Errorf("unexpected best block -- got %+v, want height %d hash %v",
			state.BestBlock, best.Height, best.Hash)
	}
}

// TestProfileMuxRoutes ensures the profile server routes the pprof index and
// redirects unknown paths to the daemon state.
func TestProfileMuxRoutes(t *testing.T) {
	t.Parallel()

	mux := newProfileMux(func() *daemonState { return &daemonState{} })
	tests := []struct {
		name     string
		path     string
		code     int
		location string
	}{{
		name: "pprof index",
		path: "/debug/pprof/",
		code: http.StatusOK,
	}, {
		name:     "root",
		path:     "/",
		code:     http.StatusSeeOther,
		location: daemonStatePath,
	}, {
		name:     "unknown path",
		path:     "/metrics",
		code:     http.StatusSeeOther,
		location: daemonStatePath,
	}}

	for _, test := range tests {
		req := httptest.NewRequest(http.MethodGet, test.path, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != test.code {
			t.Errorf("%s: unexpected status code -- got %d, want %d",
				test.name, rec.Code, test.code)
			continue
		}
		if got := rec.Header().Get("Location"); got != test.location {
			t.Errorf("%s: unexpected location -- got %q, want %q",
				test.name, got, test.location)
		}
	}
}

// TestProfileServerInvalidAddr ensures the profile server refuses to listen on
// privileged ports and that stopping a server that never started is a no-op.
func TestProfileServerInvalidAddr(t *testing.T) {
	t.Parallel()

	var profiler profileServer
	state := func() *daemonState { return &daemonState{} }
	if err := profiler.Start("80", state); err == nil {
		t.Fatal("profile server started on a privileged port")
	}
	if addr := profiler.Addr(); addr != "" {
		t.Fatalf("unexpected listen address %q", addr)
	}
	if err := profiler.Stop(); err != nil {
		t.Fatalf("unexpected error stopping idle server: %v", err)
	}
}
