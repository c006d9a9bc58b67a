// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package vrfqueue

import (
	"github.com/decred/dcrd/math/uint256"
)

// Extract reduces the provided 256-bit word to the range [0, bound) by taking
// it modulo bound.  The bound MUST be nonzero.
//
// The reduction carries a modulo bias of at most bound/2^256, which is
// negligible for any 64-bit bound.
func Extract(word *uint256.Uint256, bound uint64) uint64 {
	var divisor uint256.Uint256
	divisor.SetUint64(bound)

	// word mod bound = word - (word / bound) * bound
	quotient := *word
	quotient.Div(&divisor).Mul(&divisor)
	remainder := *word
	remainder.Sub(&quotient)
	return remainder.Uint64()
}
