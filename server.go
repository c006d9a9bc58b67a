// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"crypto/elliptic"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/decred/dcrd/certgen"
	"github.com/decred/dcrd/crypto/blake256"
	"github.com/launchkit/vrfd/allowlist"
	"github.com/launchkit/vrfd/internal/batchdb"
	"github.com/launchkit/vrfd/internal/chainclock"
	"github.com/launchkit/vrfd/internal/progresslog"
	"github.com/launchkit/vrfd/internal/rpcserver"
	"github.com/launchkit/vrfd/ledger"
	"github.com/launchkit/vrfd/oracle"
	"github.com/launchkit/vrfd/payment"
	"github.com/launchkit/vrfd/rpc/jsonrpc/types"
	"github.com/launchkit/vrfd/stakeperiod"
	"github.com/launchkit/vrfd/vesting"
	"github.com/launchkit/vrfd/vrfqueue"
)

const (
	// paymentAccountLabel and vestingAccountLabel are hashed to derive the
	// ledger accounts owned by the payment splitter and the vesting pool.
	paymentAccountLabel = "vrfd/payment"
	vestingAccountLabel = "vrfd/vesting"
)

// simpleAddr implements the net.Addr interface with two struct fields.
type simpleAddr struct {
	net, addr string
}

// String returns the address.
//
// This is part of the net.Addr interface.
func (a simpleAddr) String() string {
	return a.addr
}

// Network returns the network.
//
// This is part of the net.Addr interface.
func (a simpleAddr) Network() string {
	return a.net
}

// Ensure simpleAddr implements the net.Addr interface.
var _ net.Addr = simpleAddr{}

// accountAddress derives the ledger address of an account owned by the daemon
// from the provided label.
func accountAddress(label string) ledger.Address {
	var addr ledger.Address
	hash := blake256.Sum256([]byte(label))
	copy(addr[:], hash[:ledger.AddressSize])
	return addr
}

// server houses the random number queue along with the sequencer, the oracle
// and the validators that operate on the ledger, and serves them over RPC.
type server struct {
	store          *batchdb.Store
	queue          *vrfqueue.Generator
	oracle         *oracle.Coordinator
	clock          *chainclock.Clock
	ledger         *ledger.Ledger
	payments       *payment.Splitter
	vesting        *vesting.Vesting
	staking        *stakeperiod.Control
	allowlist      *allowlist.Allowlist
	rpcServer      *rpcserver.Server
	progressLogger *progresslog.Logger
}

// handleQueueNotification handles notifications from the random number queue.
// It forwards served numbers and appended batches to the progress logger and
// to websocket clients.
//
// The generator lock is held while this is invoked.
func (s *server) handleQueueNotification(n *vrfqueue.Notification) {
	switch n.Type {
	case vrfqueue.NTRandomNumber:
		rn, ok := n.Data.(*vrfqueue.RandomNumber)
		if !ok {
			srvrLog.Warnf("Random number notification is not a random number")
			break
		}
		s.progressLogger.LogServed(rn)
		if s.rpcServer != nil {
			s.rpcServer.NotifyRandomNumber(rn)
		}

	case vrfqueue.NTRefillRequested:
		rr, ok := n.Data.(*vrfqueue.RefillRequest)
		if !ok {
			srvrLog.Warnf("Refill notification is not a refill request")
			break
		}
		srvrLog.Debugf("Requested %d words after batch %d (request %v)",
			rr.NumWords, rr.TriggerBatch, rr.RequestID)

	case vrfqueue.NTBatchAppended:
		ba, ok := n.Data.(*vrfqueue.BatchAppended)
		if !ok {
			srvrLog.Warnf("Batch notification is not an appended batch")
			break
		}
		if ba.Solicited {
			s.oracle.MarkFulfilled(ba.RequestID)
		}
		s.progressLogger.LogAppended(ba)
		if s.rpcServer != nil {
			s.rpcServer.NotifyBatchAppended(ba)
		}
	}
}

// handleNewBlock handles new blocks from the sequencer.  It asks the oracle for
// words when the buffer is empty and nothing is outstanding, such as after the
// oracle rejected a request, so the queue does not stay in fallback mode.
func (s *server) handleNewBlock(state vrfqueue.ChainState) {
	if s.queue.Prime() {
		srvrLog.Infof("Requested random words for the empty buffer at "+
			"height %d", state.Height)
	}
}

// daemonState returns the state of the random number queue, the sequencer
// and the oracle as served by the profile server.
func (s *server) daemonState() *daemonState {
	stats := s.queue.Stats()
	best := s.clock.BestState()
	return &daemonState{
		Queue: types.GetQueueInfoResult{
			BatchSize:       stats.BatchSize,
			NumBatches:      stats.NumBatches,
			Cursor:          stats.Cursor.String(),
			Buffered:        stats.Buffered,
			RequestCount:    stats.RequestCount,
			Outstanding:     stats.Outstanding,
			PendingRequests: stats.PendingRequests,
			Served:          stats.Served,
			FallbackServed:  stats.FallbackServed,
		},
		BestBlock: types.GetBestBlockResult{
			Hash:   best.Hash.String(),
			Height: best.Height,
			Time:   best.Timestamp.Unix(),
		},
		Oracle: oracleState{
			Manual:    cfg.OracleManual,
			Pending:   len(s.oracle.Pending()),
			Delivered: s.oracle.Delivered(),
		},
	}
}

// Run starts the server and blocks until the provided context is cancelled.
// This entails accepting RPC connections, producing sequencer blocks and
// delivering oracle batches.
func (s *server) Run(ctx context.Context) {
	srvrLog.Trace("Starting server")

	// Start the RPC server first so notifications produced by the other
	// subsystems are delivered to websocket clients.
	var wg sync.WaitGroup
	if s.rpcServer != nil {
		wg.Add(1)
		go func() {
			s.rpcServer.Run(ctx)
			wg.Done()
		}()

		// Shutdown the server when a stop was requested over RPC.
		go func() {
			select {
			case <-ctx.Done():
			case <-s.rpcServer.RequestedProcessShutdown():
				shutdownRequestChannel <- struct{}{}
			}
		}()
	}

	wg.Add(2)
	go func() {
		s.clock.Run(ctx)
		wg.Done()
	}()
	go func() {
		s.oracle.Run(ctx)
		wg.Done()
	}()

	// Request the first batch when the buffer does not hold enough words.
	if s.queue.Prime() {
		srvrLog.Infof("Requested the initial batch of random words")
	}

	// Wait until the server is signalled to shutdown and all subsystems
	// have stopped.
	<-ctx.Done()
	srvrLog.Warn("Server shutting down")
	wg.Wait()

	stats := s.queue.Stats()
	srvrLog.Infof("Served %d random numbers (%d from the fallback source)",
		stats.Served, stats.FallbackServed)
	srvrLog.Trace("Server stopped")
}

// parseListeners determines whether each listen address is IPv4 and IPv6 and
// returns a slice of appropriate net.Addrs to listen on with TCP. It also
// properly detects addresses which apply to "all interfaces" and adds the
// address as both IPv4 and IPv6.
func parseListeners(addrs []string) ([]net.Addr, error) {
	netAddrs := make([]net.Addr, 0, len(addrs)*2)
	for _, addr := range addrs {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			// Shouldn't happen due to already being normalized.
			return nil, err
		}

		// Empty host or host of * on plan9 is both IPv4 and IPv6.
		if host == "" || (host == "*" && runtime.GOOS == "plan9") {
			netAddrs = append(netAddrs, simpleAddr{net: "tcp4", addr: addr})
			netAddrs = append(netAddrs, simpleAddr{net: "tcp6", addr: addr})
			continue
		}

		// Strip IPv6 zone id if present since net.ParseIP does not
		// handle it.
		zoneIndex := strings.LastIndex(host, "%")
		if zoneIndex > 0 {
			host = host[:zoneIndex]
		}

		// Parse the IP.
		ip := net.ParseIP(host)
		if ip == nil {
			return nil, fmt.Errorf("'%s' is not a valid IP address", host)
		}

		// To4 returns nil when the IP is not an IPv4 address, so use
		// this determine the address type.
		if ip.To4() == nil {
			netAddrs = append(netAddrs, simpleAddr{net: "tcp6", addr: addr})
		} else {
			netAddrs = append(netAddrs, simpleAddr{net: "tcp4", addr: addr})
		}
	}
	return netAddrs, nil
}

// genCertPair generates a key/cert pair to the paths provided.
func genCertPair(certFile, keyFile string, altDNSNames []string, tlsCurve elliptic.Curve) error {
	rpcsLog.Infof("Generating TLS certificates...")

	org := "vrfd autogenerated cert"
	validUntil := time.Now().Add(10 * 365 * 24 * time.Hour)
	cert, key, err := certgen.NewTLSCertPair(tlsCurve, org,
		validUntil, altDNSNames)
	if err != nil {
		return err
	}

	// Write cert and key files.
	if err = os.WriteFile(certFile, cert, 0644); err != nil {
		return err
	}
	if err = os.WriteFile(keyFile, key, 0600); err != nil {
		os.Remove(certFile)
		return err
	}

	rpcsLog.Infof("Done generating TLS certificates")
	return nil
}

// setupRPCListeners returns a slice of listeners that are configured for use
// with the RPC server depending on the configuration settings for listen
// addresses and TLS.
func setupRPCListeners() ([]net.Listener, error) {
	// Setup TLS if not disabled.
	listenFunc := net.Listen
	if !cfg.DisableTLS {
		// Generate the TLS cert and key file if both don't already exist.
		keyFileExists := fileExists(cfg.RPCKey)
		certFileExists := fileExists(cfg.RPCCert)
		if len(cfg.AltDNSNames) != 0 && (keyFileExists || certFileExists) {
			rpcsLog.Warn("Additional DNS names specified when TLS " +
				"certificates already exist will NOT be included:")
			rpcsLog.Warnf("- In order to create TLS certs that include the "+
				"additional DNS names, delete %q and %q and restart the server",
				cfg.RPCKey, cfg.RPCCert)
		}
		if !keyFileExists && !certFileExists {
			err := genCertPair(cfg.RPCCert, cfg.RPCKey, cfg.AltDNSNames,
				cfg.tlsCurve)
			if err != nil {
				return nil, err
			}
		}
		keypair, err := tls.LoadX509KeyPair(cfg.RPCCert, cfg.RPCKey)
		if err != nil {
			return nil, err
		}

		tlsConfig := tls.Config{
			Certificates: []tls.Certificate{keypair},
			MinVersion:   tls.VersionTLS12,
		}

		// Change the standard net.Listen function to the tls one.
		listenFunc = func(net string, laddr string) (net.Listener, error) {
			return tls.Listen(net, laddr, &tlsConfig)
		}
	}

	netAddrs, err := parseListeners(cfg.RPCListeners)
	if err != nil {
		return nil, err
	}

	listeners := make([]net.Listener, 0, len(netAddrs))
	for _, addr := range netAddrs {
		listener, err := listenFunc(addr.Network(), addr.String())
		if err != nil {
			rpcsLog.Warnf("Can't listen on %s: %v", addr, err)
			continue
		}
		listeners = append(listeners, listener)
	}

	return listeners, nil
}

// newServer returns a new vrfd server that serves random numbers buffered in
// the provided batch store.  Use Run to begin serving.
func newServer(store *batchdb.Store) (*server, error) {
	s := server{
		store:          store,
		ledger:         ledger.New(),
		progressLogger: progresslog.New("Served", srvrLog),
	}

	s.clock = chainclock.New(&chainclock.Config{
		Interval: cfg.BlockInterval,
		Notify:   s.handleNewBlock,
	})
	s.oracle = oracle.New(cfg.oracleConfig())

	queue, err := vrfqueue.New(&vrfqueue.Config{
		BatchSize:     cfg.BatchSize,
		Store:         store,
		Oracle:        s.oracle,
		BestState:     s.clock.BestState,
		Notifications: s.handleQueueNotification,
	})
	if err != nil {
		return nil, err
	}
	s.queue = queue
	s.oracle.SetFulfiller(queue)

	s.payments, err = payment.New(&payment.Config{
		Ledger:      s.ledger,
		Account:     accountAddress(paymentAccountLabel),
		FeeReceiver: cfg.feeReceiver,
		Token:       cfg.paymentToken,
	})
	if err != nil {
		return nil, err
	}
	s.vesting = vesting.New(&vesting.Config{
		Ledger:  s.ledger,
		Token:   cfg.vestingToken,
		Account: accountAddress(vestingAccountLabel),
		Now:     s.clock.Timestamp,
	})
	s.staking = stakeperiod.New(&stakeperiod.Config{
		Now:    s.clock.Timestamp,
		Height: s.clock.Height,
	})
	if cfg.stakePeriod != nil {
		if err := s.staking.Initialize(*cfg.stakePeriod); err != nil {
			return nil, err
		}
	}
	s.allowlist = allowlist.New(cfg.allowlistRoot)

	if !cfg.DisableRPC {
		rpcListeners, err := setupRPCListeners()
		if err != nil {
			return nil, err
		}
		if len(rpcListeners) == 0 {
			return nil, errors.New("RPCS: No valid listen address")
		}

		s.rpcServer, err = rpcserver.New(&rpcserver.Config{
			Listeners:            rpcListeners,
			Generator:            s.queue,
			Chain:                s.clock,
			Ledger:               s.ledger,
			Payments:             s.payments,
			Vesting:              s.vesting,
			Staking:              s.staking,
			Allowlist:            s.allowlist,
			RPCUser:              cfg.RPCUser,
			RPCPass:              cfg.RPCPass,
			RPCLimitUser:         cfg.RPCLimitUser,
			RPCLimitPass:         cfg.RPCLimitPass,
			RPCMaxClients:        cfg.RPCMaxClients,
			RPCMaxConcurrentReqs: cfg.RPCMaxConcurrentReqs,
			RPCMaxWebsockets:     cfg.RPCMaxWebsockets,
			LogManager:           logManager{},
		})
		if err != nil {
			return nil, err
		}
	}

	return &s, nil
}
