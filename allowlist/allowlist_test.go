// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package allowlist

import (
	"errors"
	"testing"
)

// TestAllowlistCheck ensures membership checks follow the current root.
func TestAllowlistCheck(t *testing.T) {
	t.Parallel()

	addrs := testAddrs(33)
	members, newcomer := addrs[:32], addrs[32]

	// Nobody is admitted before a root is set.
	al := New(Hash{})
	if err := al.Check(members[0], nil); !errors.Is(err, ErrNotAllowlisted) {
		t.Fatalf("zero root: got %v, want %v", err, ErrNotAllowlisted)
	}

	tree := NewTree(members)
	al.UpdateRoot(tree.Root())
	proof, _ := tree.Proof(members[7])
	if err := al.Check(members[7], proof); err != nil {
		t.Fatalf("member rejected: %v", err)
	}
	err := al.Check(newcomer, proof)
	if !errors.Is(err, ErrNotAllowlisted) {
		t.Fatalf("outsider: got %v, want %v", err, ErrNotAllowlisted)
	}
	if err.Error() != "whitelist is required" {
		t.Fatalf("unexpected message %q", err)
	}

	// Rebuild with the newcomer and ensure old proofs stop working while new
	// ones do.
	tree = NewTree(addrs)
	al.UpdateRoot(tree.Root())
	if al.Root() != tree.Root() {
		t.Fatal("root not updated")
	}
	if err := al.Check(members[7], proof); !errors.Is(err, ErrNotAllowlisted) {
		t.Fatalf("stale proof: got %v, want %v", err, ErrNotAllowlisted)
	}
	proof, _ = tree.Proof(newcomer)
	if err := al.Check(newcomer, proof); err != nil {
		t.Fatalf("newcomer rejected: %v", err)
	}
}

// TestErrorKindStringer tests the stringized output for the ErrorKind type.
func TestErrorKindStringer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   ErrorKind
		want string
	}{
		{ErrNotAllowlisted, "ErrNotAllowlisted"},
		{ErrInvalidHash, "ErrInvalidHash"},
	}
	for i, test := range tests {
		if got := test.in.Error(); got != test.want {
			t.Errorf("#%d: got: %s want: %s", i, got, test.want)
		}
	}
}
