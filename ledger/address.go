// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/decred/dcrd/math/uint256"
)

// AddressSize is the number of bytes of an address.
const AddressSize = 20

// Address identifies an account or an asset.
type Address [AddressSize]byte

// NativeAsset identifies the native coin of the ledger.  Every other asset is
// identified by the address of its token.
var NativeAsset Address

// String returns the address as a 0x prefixed hex string.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// IsZero returns whether the address is the zero address.
func (a Address) IsZero() bool {
	return a == Address{}
}

// DecodeAddress decodes a hex encoded address with an optional 0x prefix.
func DecodeAddress(s string) (Address, error) {
	var addr Address
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(trimmed) != AddressSize*2 {
		str := fmt.Sprintf("address %q is not %d hex characters", s,
			AddressSize*2)
		return addr, ledgerError(ErrInvalidAddress, str)
	}
	if _, err := hex.Decode(addr[:], []byte(trimmed)); err != nil {
		str := fmt.Sprintf("address %q is not hex: %v", s, err)
		return addr, ledgerError(ErrInvalidAddress, str)
	}
	return addr, nil
}

// ParseAmount parses a non-negative base 10 integer that fits in 256 bits.
func ParseAmount(s string) (uint256.Uint256, error) {
	var amount uint256.Uint256
	n, ok := new(big.Int).SetString(s, 10)
	if !ok || n.Sign() < 0 || n.BitLen() > 256 {
		str := fmt.Sprintf("amount %q is not an unsigned 256-bit integer", s)
		return amount, ledgerError(ErrInvalidAmount, str)
	}
	amount.SetBig(n)
	return amount, nil
}

// FormatAmount returns the amount as a base 10 integer.
func FormatAmount(amount *uint256.Uint256) string {
	b := amount.Bytes()
	return new(big.Int).SetBytes(b[:]).String()
}
