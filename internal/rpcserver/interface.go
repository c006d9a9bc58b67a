// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpcserver

import (
	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/math/uint256"
	"github.com/launchkit/vrfd/vrfqueue"
)

// Generator represents the random number queue for use with the RPC server.
//
// The interface contract requires that all of these methods are safe for
// concurrent access.
type Generator interface {
	// Draw serves a random number in the range [0, bound) along with the
	// details of where it came from.
	Draw(bound uint64) (vrfqueue.RandomNumber, error)

	// FulfillRandomWords appends a batch of oracle words delivered for the
	// provided request and returns the index of the new batch.
	FulfillRandomWords(requestID chainhash.Hash, words []uint256.Uint256) (uint64, error)

	// Batch returns a copy of the words of the batch at the provided index.
	Batch(index uint64) ([]uint256.Uint256, error)

	// Stats returns a snapshot of the queue state.
	Stats() vrfqueue.Stats
}

// Chain represents the simulated sequencer for use with the RPC server.
//
// The interface contract requires that all of these methods are safe for
// concurrent access.
type Chain interface {
	// BestState returns the latest block of the sequencer.
	BestState() vrfqueue.ChainState
}

// LogManager represents a log manager for use with the RPC server.
//
// The interface contract does NOT require that these methods are safe for
// concurrent access.
type LogManager interface {
	// SupportedSubsystems returns a sorted slice of the supported subsystems for
	// logging purposes.
	SupportedSubsystems() []string

	// ParseAndSetDebugLevels attempts to parse the specified debug level and set
	// the levels accordingly.  An appropriate error must be returned if anything
	// is invalid.
	ParseAndSetDebugLevels(debugLevel string) error
}
