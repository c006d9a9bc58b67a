// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package allowlist

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/launchkit/vrfd/ledger"
	"golang.org/x/crypto/sha3"
)

// HashSize is the number of bytes of a Keccak-256 hash.
const HashSize = 32

// Hash is a Keccak-256 digest.
type Hash [HashSize]byte

// String returns the hash as a 0x prefixed hex string in byte order.
func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// DecodeHash decodes a hex encoded hash with an optional 0x prefix.
func DecodeHash(s string) (Hash, error) {
	var h Hash
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(trimmed) != HashSize*2 {
		str := fmt.Sprintf("hash %q is not %d hex characters", s,
			HashSize*2)
		return h, ruleError(ErrInvalidHash, str)
	}
	if _, err := hex.Decode(h[:], []byte(trimmed)); err != nil {
		str := fmt.Sprintf("hash %q is not hex: %v", s, err)
		return h, ruleError(ErrInvalidHash, str)
	}
	return h, nil
}

// Keccak256 returns the legacy Keccak-256 digest of the concatenated data.
func Keccak256(data ...[]byte) Hash {
	hasher := sha3.NewLegacyKeccak256()
	for _, b := range data {
		hasher.Write(b)
	}
	var h Hash
	hasher.Sum(h[:0])
	return h
}

// LeafHash returns the leaf of the address in an allowlist tree.
func LeafHash(addr ledger.Address) Hash {
	return Keccak256(addr[:])
}

// hashPair returns the parent of two nodes.  The children are ordered before
// hashing so proofs do not need to carry the side of each sibling.
func hashPair(a, b *Hash) Hash {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return Keccak256(a[:], b[:])
}

// Tree is a Merkle tree over the leaf hashes of a set of addresses.  A node
// without a sibling is promoted to the next level unchanged.
type Tree struct {
	layers [][]Hash
}

// NewTree builds the tree for the provided addresses in the given order.
func NewTree(addrs []ledger.Address) *Tree {
	leaves := make([]Hash, len(addrs))
	for i := range addrs {
		leaves[i] = LeafHash(addrs[i])
	}

	layers := [][]Hash{leaves}
	for layer := leaves; len(layer) > 1; {
		next := make([]Hash, 0, (len(layer)+1)/2)
		for i := 0; i < len(layer); i += 2 {
			if i+1 == len(layer) {
				next = append(next, layer[i])
				continue
			}
			next = append(next, hashPair(&layer[i], &layer[i+1]))
		}
		layers = append(layers, next)
		layer = next
	}
	return &Tree{layers: layers}
}

// Root returns the root of the tree.  The root of an empty tree is the zero
// hash.
func (t *Tree) Root() Hash {
	top := t.layers[len(t.layers)-1]
	if len(top) == 0 {
		return Hash{}
	}
	return top[0]
}

// Proof returns the siblings on the path from the leaf of the address to the
// root.  It returns false when the address is not in the tree.
func (t *Tree) Proof(addr ledger.Address) ([]Hash, bool) {
	leaf := LeafHash(addr)
	index := -1
	for i := range t.layers[0] {
		if t.layers[0][i] == leaf {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, false
	}

	proof := make([]Hash, 0, len(t.layers)-1)
	for _, layer := range t.layers[:len(t.layers)-1] {
		sibling := index ^ 1
		if sibling < len(layer) {
			proof = append(proof, layer[sibling])
		}
		index /= 2
	}
	return proof, true
}

// VerifyProof returns whether the proof leads from the leaf to the root.
func VerifyProof(root, leaf Hash, proof []Hash) bool {
	node := leaf
	for i := range proof {
		node = hashPair(&node, &proof[i])
	}
	return node == root
}
