// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"errors"
	"strings"
	"testing"

	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/math/uint256"
)

// testAddress returns an address derived from the provided label.
func testAddress(label string) Address {
	var addr Address
	copy(addr[:], chainhash.HashB([]byte(label)))
	return addr
}

// amount returns the passed value as a uint256.
func amount(v uint64) *uint256.Uint256 {
	return new(uint256.Uint256).SetUint64(v)
}

// TestDecodeAddress ensures addresses decode from and encode to their hex
// representation.
func TestDecodeAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
		err  error
	}{{
		name: "0x prefixed",
		in:   "0x00112233445566778899aabbccddeeff00112233",
		want: "0x00112233445566778899aabbccddeeff00112233",
	}, {
		name: "no prefix upper case",
		in:   "00112233445566778899AABBCCDDEEFF00112233",
		want: "0x00112233445566778899aabbccddeeff00112233",
	}, {
		name: "too short",
		in:   "0x0011",
		err:  ErrInvalidAddress,
	}, {
		name: "not hex",
		in:   "0x" + strings.Repeat("zz", AddressSize),
		err:  ErrInvalidAddress,
	}}

	for _, test := range tests {
		addr, err := DecodeAddress(test.in)
		if !errors.Is(err, test.err) {
			t.Errorf("%s: mismatched err -- got %v, want %v", test.name, err,
				test.err)
			continue
		}
		if err != nil {
			continue
		}
		if got := addr.String(); got != test.want {
			t.Errorf("%s: got %s, want %s", test.name, got, test.want)
		}
	}

	if !NativeAsset.IsZero() || testAddress("a").IsZero() {
		t.Fatal("unexpected zero address detection")
	}
}

// TestParseAmount ensures amounts are parsed within the 256-bit range.
func TestParseAmount(t *testing.T) {
	t.Parallel()

	const max256 = "115792089237316195423570985008687907853269984665640564039457584007913129639935"
	tests := []struct {
		in  string
		err error
	}{
		{"0", nil},
		{"7000000000000000000000", nil},
		{max256, nil},
		{max256[:len(max256)-1] + "6", ErrInvalidAmount},
		{"-1", ErrInvalidAmount},
		{"1.5", ErrInvalidAmount},
		{"", ErrInvalidAmount},
	}
	for _, test := range tests {
		amt, err := ParseAmount(test.in)
		if !errors.Is(err, test.err) {
			t.Errorf("%q: mismatched err -- got %v, want %v", test.in, err,
				test.err)
			continue
		}
		if err != nil {
			continue
		}
		if got := FormatAmount(&amt); got != test.in {
			t.Errorf("%q: round trip produced %q", test.in, got)
		}
	}
}

// TestTransfer ensures transfers move balances and fail atomically.
func TestTransfer(t *testing.T) {
	t.Parallel()

	token := testAddress("token")
	alice, bob, carol := testAddress("alice"), testAddress("bob"),
		testAddress("carol")

	l := New()
	if err := l.Mint(token, alice, amount(100)); err != nil {
		t.Fatalf("unexpected mint error: %v", err)
	}
	if err := l.Transfer(token, alice, bob, amount(40)); err != nil {
		t.Fatalf("unexpected transfer error: %v", err)
	}
	err := l.Transfer(token, bob, carol, amount(41))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("mismatched err -- got %v, want %v", err,
			ErrInsufficientBalance)
	}

	// A failing step rolls back the earlier steps of the same update.
	err = l.Update(func(tx *Tx) error {
		if err := tx.Transfer(token, alice, carol, amount(60)); err != nil {
			return err
		}
		return tx.Transfer(token, bob, carol, amount(50))
	})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("mismatched err -- got %v, want %v", err,
			ErrInsufficientBalance)
	}

	want := map[Address]uint64{alice: 60, bob: 40, carol: 0}
	for addr, wantBalance := range want {
		balance := l.Balance(token, addr)
		if !balance.Eq(amount(wantBalance)) {
			t.Errorf("%v: got balance %s, want %d", addr,
				FormatAmount(&balance), wantBalance)
		}
	}
	if balance := l.Balance(NativeAsset, alice); !balance.IsZero() {
		t.Errorf("assets are not separated")
	}

	// Transfers to self leave the balance unchanged.
	if err := l.Transfer(token, alice, alice, amount(60)); err != nil {
		t.Fatalf("unexpected transfer error: %v", err)
	}
	if balance := l.Balance(token, alice); !balance.Eq(amount(60)) {
		t.Fatalf("self transfer changed balance to %s",
			FormatAmount(&balance))
	}
}

// TestMintOverflow ensures credits that overflow are rejected.
func TestMintOverflow(t *testing.T) {
	t.Parallel()

	addr := testAddress("whale")
	max := new(uint256.Uint256).SetUint64(0).SubUint64(1)
	l := New()
	if err := l.Mint(NativeAsset, addr, max); err != nil {
		t.Fatalf("unexpected mint error: %v", err)
	}
	err := l.Mint(NativeAsset, addr, amount(1))
	if !errors.Is(err, ErrBalanceOverflow) {
		t.Fatalf("mismatched err -- got %v, want %v", err,
			ErrBalanceOverflow)
	}
	if balance := l.Balance(NativeAsset, addr); !balance.Eq(max) {
		t.Fatal("failed mint changed the balance")
	}
}
