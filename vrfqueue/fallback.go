// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package vrfqueue

import (
	"time"

	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/crypto/blake256"
	"github.com/decred/dcrd/math/uint256"
)

// ChainState describes the sequencer context the fallback source derives
// numbers from.
type ChainState struct {
	Hash      chainhash.Hash
	Height    int64
	Timestamp time.Time
}

// FallbackSource derives bounded numbers from the current sequencer context
// when no buffered oracle words remain.
//
// The output is predictable to anyone who observes the sequencer context and
// the number of prior fallback draws, so it MUST NOT be relied upon where an
// adversary benefits from predicting it.
//
// FallbackSource is not safe for concurrent access.
type FallbackSource struct {
	bestState func() ChainState
	nonce     uint64
}

// NewFallbackSource returns a fallback source that queries the provided
// function for the sequencer context on every draw.  When bestState is nil,
// only the wall clock is mixed in.
func NewFallbackSource(bestState func() ChainState) *FallbackSource {
	if bestState == nil {
		bestState = func() ChainState {
			return ChainState{Timestamp: time.Now()}
		}
	}
	return &FallbackSource{bestState: bestState}
}

// Sample returns a number in [0, bound).  Every call advances an internal
// nonce so repeated draws within the same sequencer context differ.  The
// bound MUST be nonzero.
func (f *FallbackSource) Sample(bound uint64) uint64 {
	state := f.bestState()

	h := blake256.NewHasher256()
	h.WriteBytes(state.Hash[:])
	h.WriteUint64LE(uint64(state.Height))
	h.WriteUint64LE(uint64(state.Timestamp.UnixNano()))
	h.WriteUint64LE(f.nonce)
	f.nonce++
	digest := h.Sum256()

	var word uint256.Uint256
	word.SetBytes(&digest)
	return Extract(&word, bound)
}

// Nonce returns the number of draws made so far.
func (f *FallbackSource) Nonce() uint64 {
	return f.nonce
}
