// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"net"
	"reflect"
	"testing"
	"time"

	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/launchkit/vrfd/internal/batchdb"
	"github.com/launchkit/vrfd/ledger"
	"github.com/launchkit/vrfd/oracle"
	"github.com/launchkit/vrfd/stakeperiod"
)

// TestParseListeners ensures listen addresses are expanded into the expected
// IPv4 and IPv6 TCP networks.
func TestParseListeners(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		addrs   []string
		want    []net.Addr
		wantErr bool
	}{{
		name:  "all interfaces",
		addrs: []string{":9609"},
		want: []net.Addr{
			simpleAddr{net: "tcp4", addr: ":9609"},
			simpleAddr{net: "tcp6", addr: ":9609"},
		},
	}, {
		name:  "loopbacks",
		addrs: []string{"127.0.0.1:9609", "[::1]:9609"},
		want: []net.Addr{
			simpleAddr{net: "tcp4", addr: "127.0.0.1:9609"},
			simpleAddr{net: "tcp6", addr: "[::1]:9609"},
		},
	}, {
		name:  "ipv6 zone",
		addrs: []string{"[fe80::1%eth0]:9609"},
		want: []net.Addr{
			simpleAddr{net: "tcp6", addr: "[fe80::1%eth0]:9609"},
		},
	}, {
		name:    "hostname",
		addrs:   []string{"localhost:9609"},
		wantErr: true,
	}, {
		name:    "missing port",
		addrs:   []string{"127.0.0.1"},
		wantErr: true,
	}}

	for _, test := range tests {
		got, err := parseListeners(test.addrs)
		if (err != nil) != test.wantErr {
			t.Errorf("%s: unexpected error state: %v", test.name, err)
			continue
		}
		if test.wantErr {
			continue
		}
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("%s: got %v, want %v", test.name, got, test.want)
		}
	}
}

// TestAccountAddress ensures derived account addresses are deterministic,
// distinct and never the native asset.
func TestAccountAddress(t *testing.T) {
	t.Parallel()

	payments := accountAddress(paymentAccountLabel)
	vestingPool := accountAddress(vestingAccountLabel)
	if payments != accountAddress(paymentAccountLabel) {
		t.Fatal("account address is not deterministic")
	}
	if payments == vestingPool {
		t.Fatal("payment and vesting accounts collide")
	}
	if payments.IsZero() || vestingPool.IsZero() {
		t.Fatal("account address is the native asset")
	}
}

// newTestServer returns a server with the RPC server disabled whose oracle
// delivers batches immediately.
func newTestServer(t *testing.T, modifiers ...func(*config)) *server {
	t.Helper()

	feeReceiver, err := ledger.DecodeAddress(testFeeReceiver)
	if err != nil {
		t.Fatal(err)
	}
	cfg = &config{
		DisableRPC:    true,
		BatchSize:     4,
		BlockInterval: time.Hour,
		feeReceiver:   feeReceiver,
		stakePeriod: &stakeperiod.Period{
			Start:    10,
			End:      20,
			BonusEnd: 30,
		},
	}
	for _, modify := range modifiers {
		modify(cfg)
	}

	store, err := batchdb.Load(t.TempDir(), cfg.BatchSize)
	if err != nil {
		t.Fatalf("unable to load batch database: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	s, err := newServer(store)
	if err != nil {
		t.Fatalf("unable to create server: %v", err)
	}
	return s
}

// TestServerWiring ensures the server wires the configured validators and
// that queue notifications reach the progress logger without an RPC server.
func TestServerWiring(t *testing.T) {
	s := newTestServer(t)

	if s.rpcServer != nil {
		t.Fatal("RPC server created while disabled")
	}
	period, ok := s.staking.Period()
	if !ok || period.End != 20 {
		t.Fatalf("staking period not initialized: %+v", period)
	}
	if err := s.staking.Check(stakeperiod.BeforeStakeStart); err != nil {
		t.Fatalf("unexpected staking phase: %v", err)
	}

	// Serving from an empty buffer falls back without asking the oracle
	// for a batch.
	rn, err := s.queue.Draw(10)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if rn.Value >= 10 {
		t.Fatalf("value %d out of range", rn.Value)
	}
	if len(s.oracle.Pending()) != 0 {
		t.Fatal("fallback number issued an oracle request")
	}

	// Priming the empty queue asks the oracle for the first batch.
	if !s.queue.Prime() {
		t.Fatal("Prime did not issue a request")
	}
	pending := s.oracle.Pending()
	if len(pending) != 1 {
		t.Fatalf("unexpected number of pending oracle requests: %d",
			len(pending))
	}

	// Deliver the batch through the oracle.
	if err := s.oracle.Fulfill(pending[0]); err != nil {
		t.Fatalf("Fulfill: %v", err)
	}
	stats := s.queue.Stats()
	if stats.NumBatches != 1 || stats.FallbackServed != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if n := len(s.oracle.Pending()); n != 0 {
		t.Fatalf("delivered request still pending (%d pending)", n)
	}
	if delivered := s.oracle.Delivered(); delivered != 1 {
		t.Fatalf("unexpected delivered count -- got %d, want 1", delivered)
	}

	// Unknown request IDs are accepted as unsolicited batches.
	words := oracle.GenerateWords(cfg.BatchSize)
	index, err := s.queue.FulfillRandomWords(chainhash.Hash{0x01}, words)
	if err != nil || index != 1 {
		t.Fatalf("unexpected unsolicited fulfillment result: %d, %v", index,
			err)
	}
}

// TestManualFulfillment ensures requests made in manual oracle mode stop being
// tracked as pending once their words are appended directly to the queue.
func TestManualFulfillment(t *testing.T) {
	s := newTestServer(t, func(c *config) {
		c.OracleManual = true
	})

	if !s.queue.Prime() {
		t.Fatal("Prime did not issue a request")
	}
	for batch := uint64(0); batch < 3; batch++ {
		pending := s.oracle.Pending()
		if len(pending) != 1 {
			t.Fatalf("batch %d: unexpected number of pending requests: %d",
				batch, len(pending))
		}

		words := oracle.GenerateWords(cfg.BatchSize)
		index, err := s.queue.FulfillRandomWords(pending[0], words)
		if err != nil || index != batch {
			t.Fatalf("batch %d: unexpected fulfillment result: %d, %v",
				batch, index, err)
		}
		if n := len(s.oracle.Pending()); n != 0 {
			t.Fatalf("batch %d: fulfilled request still pending (%d "+
				"pending)", batch, n)
		}

		// Consuming the batch crosses the refill threshold which requests
		// the next one.
		for i := uint32(0); i < cfg.BatchSize; i++ {
			if _, err := s.queue.Draw(100); err != nil {
				t.Fatalf("batch %d: Draw: %v", batch, err)
			}
		}
	}
	if delivered := s.oracle.Delivered(); delivered != 3 {
		t.Fatalf("unexpected delivered count -- got %d, want 3", delivered)
	}

	// Unsolicited batches do not affect the tracked requests.
	words := oracle.GenerateWords(cfg.BatchSize)
	if _, err := s.queue.FulfillRandomWords(chainhash.Hash{0x02}, words); err != nil {
		t.Fatalf("unexpected unsolicited fulfillment error: %v", err)
	}
	if delivered := s.oracle.Delivered(); delivered != 3 {
		t.Fatalf("unsolicited batch counted as delivered: %d", delivered)
	}
}

// TestNewBlockPrimes ensures new sequencer blocks request words for an empty
// buffer only when no request is outstanding.
func TestNewBlockPrimes(t *testing.T) {
	s := newTestServer(t, func(c *config) {
		c.OracleManual = true
	})

	if _, err := s.queue.Draw(10); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if n := len(s.oracle.Pending()); n != 0 {
		t.Fatalf("unexpected pending requests before a new block: %d", n)
	}

	s.clock.Advance()
	pending := s.oracle.Pending()
	if len(pending) != 1 {
		t.Fatalf("new block did not request words (%d pending)",
			len(pending))
	}
	s.clock.Advance()
	if n := len(s.oracle.Pending()); n != 1 {
		t.Fatalf("outstanding request repeated (%d pending)", n)
	}

	words := oracle.GenerateWords(cfg.BatchSize)
	if _, err := s.queue.FulfillRandomWords(pending[0], words); err != nil {
		t.Fatalf("unexpected fulfillment error: %v", err)
	}
	s.clock.Advance()
	if n := len(s.oracle.Pending()); n != 0 {
		t.Fatalf("words requested with a full buffer (%d pending)", n)
	}
	if count := s.queue.RequestCount(); count != 1 {
		t.Fatalf("unexpected request count -- got %d, want 1", count)
	}
}

// TestServerRun ensures running the server primes the queue, delivers the
// first batch and stops once the context is canceled.
func TestServerRun(t *testing.T) {
	s := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	deadline := time.After(5 * time.Second)
	for s.queue.Stats().NumBatches == 0 {
		select {
		case <-deadline:
			cancel()
			t.Fatal("timeout waiting for the initial batch")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for the server to stop")
	}

	if s.oracle.Delivered() != 1 {
		t.Fatalf("unexpected number of delivered batches: %d",
			s.oracle.Delivered())
	}
}
