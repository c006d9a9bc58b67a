// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"strconv"
	"sync"
	"time"

	"github.com/launchkit/vrfd/rpc/jsonrpc/types"
)

const (
	// minProfilePort is the lowest port the profile server may listen on.
	minProfilePort = 1024

	// daemonStatePath is the path the daemon state is served at.
	daemonStatePath = "/debug/vrfd"
)

// portToLocalHostAddr prepends a default host of 127.0.0.1 when the provided
// address is solely a port number.
func portToLocalHostAddr(addr string) string {
	if _, err := strconv.Atoi(addr); err == nil {
		addr = net.JoinHostPort("127.0.0.1", addr)
	}
	return addr
}

// validateProfileAddr ensures the provided address is of the form "host:port"
// with an unprivileged port.
func validateProfileAddr(addr string) error {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < minProfilePort || port > 65535 {
		return fmt.Errorf("address %q: port must be between %d and 65535",
			addr, minProfilePort)
	}
	return nil
}

// oracleState describes the simulated oracle in the daemon state.
type oracleState struct {
	Manual    bool   `json:"manual"`
	Pending   int    `json:"pending"`
	Delivered uint64 `json:"delivered"`
}

// daemonState is the document served by the profile server at
// daemonStatePath.
type daemonState struct {
	Queue     types.GetQueueInfoResult `json:"queue"`
	BestBlock types.GetBestBlockResult `json:"bestblock"`
	Oracle    oracleState              `json:"oracle"`
}

// newProfileMux returns the handler of the profile server.  It serves the
// pprof endpoints under /debug/pprof/ and the document returned by the state
// function under daemonStatePath.  Every other path redirects to the state.
func newProfileMux(state func() *daemonState) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.HandleFunc(daemonStatePath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(state()); err != nil {
			vrfdLog.Warnf("Unable to write daemon state to %s: %v",
				r.RemoteAddr, err)
		}
	})
	mux.Handle("/", http.RedirectHandler(daemonStatePath, http.StatusSeeOther))
	return mux
}

// profileServer serves the pprof endpoints along with the state of the random
// number queue and oracle over HTTP.
type profileServer struct {
	mtx      sync.Mutex
	wg       sync.WaitGroup
	server   *http.Server
	listener net.Listener
}

// Start listens on the provided address and serves the profiling endpoints
// and the daemon state returned by the state function in the background.  It
// has no effect when the server is already running.
//
// It is the caller's responsibility to call Stop to shutdown the server.
func (s *profileServer) Start(listenAddr string, state func() *daemonState) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.server != nil {
		return nil
	}

	listenAddr = portToLocalHostAddr(listenAddr)
	if err := validateProfileAddr(listenAddr); err != nil {
		return err
	}
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("unable to listen on %s: %w", listenAddr, err)
	}

	server := &http.Server{
		Handler:           newProfileMux(state),
		ReadHeaderTimeout: 3 * time.Second,
	}
	vrfdLog.Infof("Profile server listening on %s", listener.Addr())
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := server.Serve(listener)
		if !errors.Is(err, http.ErrServerClosed) {
			vrfdLog.Errorf("Profile server exited: %v", err)
		}
	}()
	s.server = server
	s.listener = listener
	return nil
}

// Stop closes the listener and connections of the profile server and waits
// for it to finish.  It has no effect when the server is not running.
func (s *profileServer) Stop() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.server == nil {
		return nil
	}
	err := s.server.Close()
	s.wg.Wait()
	s.server = nil
	s.listener = nil
	if err != nil {
		vrfdLog.Errorf("Profile server stopped with error: %v", err)
		return err
	}
	vrfdLog.Info("Profile server stopped")
	return nil
}

// Addr returns the address the profile server is listening on.  It is empty
// when the server is not running.
func (s *profileServer) Addr() string {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
