// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package allowlist gates operations on membership in a set of addresses that
// is committed to by the root of a Merkle tree.  Only the root is stored.
// Callers prove membership with the siblings on the path from their leaf to
// the root.
//
// Leaves are the Keccak-256 hashes of the 20-byte addresses and parents hash
// their children in sorted order, matching the trees commonly built for
// EVM allowlists.
package allowlist

import (
	"sync"

	"github.com/launchkit/vrfd/ledger"
)

// Allowlist stores the current root and checks membership proofs against it.
//
// Allowlist is safe for concurrent access.
type Allowlist struct {
	mtx  sync.RWMutex
	root Hash
}

// New returns an allowlist with the provided root.  The zero root admits
// nobody.
func New(root Hash) *Allowlist {
	return &Allowlist{root: root}
}

// Root returns the current root.
func (a *Allowlist) Root() Hash {
	a.mtx.RLock()
	defer a.mtx.RUnlock()
	return a.root
}

// UpdateRoot replaces the current root.
func (a *Allowlist) UpdateRoot(root Hash) {
	a.mtx.Lock()
	a.root = root
	a.mtx.Unlock()
	log.Infof("Allowlist root updated to %v", root)
}

// Check ensures the proof shows the address is a member of the set committed
// to by the current root.
func (a *Allowlist) Check(addr ledger.Address, proof []Hash) error {
	root := a.Root()
	if root == (Hash{}) || !VerifyProof(root, LeafHash(addr), proof) {
		return ruleError(ErrNotAllowlisted, "whitelist is required")
	}
	return nil
}
