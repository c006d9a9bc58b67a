// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledger provides an in-memory multi-asset balance ledger.  Balance
// changes are applied through transactions so a failing operation never
// leaves a partial update behind.
package ledger

import (
	"fmt"
	"sync"

	"github.com/decred/dcrd/math/uint256"
)

// balanceKey identifies the balance of one asset held by one owner.
type balanceKey struct {
	asset Address
	owner Address
}

// Ledger tracks balances of any number of assets.
//
// Ledger is safe for concurrent access.
type Ledger struct {
	mtx      sync.RWMutex
	balances map[balanceKey]uint256.Uint256
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{balances: make(map[balanceKey]uint256.Uint256)}
}

// Balance returns the amount of the asset held by the owner.
func (l *Ledger) Balance(asset, owner Address) uint256.Uint256 {
	l.mtx.RLock()
	balance := l.balances[balanceKey{asset, owner}]
	l.mtx.RUnlock()
	return balance
}

// Tx is a set of balance changes that are applied together or not at all.
type Tx struct {
	ledger  *Ledger
	pending map[balanceKey]uint256.Uint256
}

// Update runs the provided function with a transaction and applies the
// changes it made when it returns nil.  The ledger is locked for the duration
// of the function.
func (l *Ledger) Update(fn func(tx *Tx) error) error {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	tx := &Tx{ledger: l, pending: make(map[balanceKey]uint256.Uint256)}
	if err := fn(tx); err != nil {
		return err
	}
	for key, balance := range tx.pending {
		if balance.IsZero() {
			delete(l.balances, key)
			continue
		}
		l.balances[key] = balance
	}
	return nil
}

// Balance returns the amount of the asset held by the owner including the
// changes made by the transaction so far.
func (tx *Tx) Balance(asset, owner Address) uint256.Uint256 {
	key := balanceKey{asset, owner}
	if balance, ok := tx.pending[key]; ok {
		return balance
	}
	return tx.ledger.balances[key]
}

// credit adds the amount to the balance of the owner.
func (tx *Tx) credit(asset, owner Address, amount *uint256.Uint256) error {
	balance := tx.Balance(asset, owner)
	sum := balance
	sum.Add(amount)
	if sum.Lt(&balance) {
		str := fmt.Sprintf("crediting %s of asset %v to %v overflows",
			FormatAmount(amount), asset, owner)
		return ledgerError(ErrBalanceOverflow, str)
	}
	tx.pending[balanceKey{asset, owner}] = sum
	return nil
}

// Mint creates the amount of the asset and credits it to the owner.
func (tx *Tx) Mint(asset, to Address, amount *uint256.Uint256) error {
	return tx.credit(asset, to, amount)
}

// Transfer moves the amount of the asset from one owner to another.
func (tx *Tx) Transfer(asset, from, to Address, amount *uint256.Uint256) error {
	balance := tx.Balance(asset, from)
	if balance.Lt(amount) {
		str := fmt.Sprintf("%v holds %s of asset %v which is less than %s",
			from, FormatAmount(&balance), asset, FormatAmount(amount))
		return ledgerError(ErrInsufficientBalance, str)
	}
	balance.Sub(amount)
	tx.pending[balanceKey{asset, from}] = balance
	return tx.credit(asset, to, amount)
}

// Mint creates the amount of the asset and credits it to the owner.
func (l *Ledger) Mint(asset, to Address, amount *uint256.Uint256) error {
	return l.Update(func(tx *Tx) error {
		return tx.Mint(asset, to, amount)
	})
}

// Transfer moves the amount of the asset from one owner to another.
func (l *Ledger) Transfer(asset, from, to Address, amount *uint256.Uint256) error {
	return l.Update(func(tx *Tx) error {
		return tx.Transfer(asset, from, to, amount)
	})
}
