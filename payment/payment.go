// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package payment implements a fee-forwarding payment splitter.  Payments are
// made either in the native coin, with the payer attaching a value that must
// cover the amount due, or in a configured token.  The amount due is always
// forwarded to the fee receiver in full.
package payment

import (
	"fmt"
	"sync"

	"github.com/decred/dcrd/math/uint256"
	"github.com/launchkit/vrfd/ledger"
)

// Config is a descriptor which specifies the splitter configuration.
type Config struct {
	// Ledger holds the balances payments are made from.
	Ledger *ledger.Ledger

	// Account is the address of the splitter itself.  Native value
	// attached in excess of the amount due stays with this account.
	Account ledger.Address

	// FeeReceiver receives every payment.  It must not be the zero
	// address.
	FeeReceiver ledger.Address

	// Token is the asset payments are made in.  The zero address selects
	// the native coin.
	Token ledger.Address
}

// Receipt describes a completed payment.
type Receipt struct {
	Payer       ledger.Address
	FeeReceiver ledger.Address
	Asset       ledger.Address
	Amount      uint256.Uint256

	// Retained is the attached native value in excess of the amount that
	// was kept by the splitter account.
	Retained uint256.Uint256
}

// Splitter forwards payments to a fee receiver.
//
// Splitter is safe for concurrent access.
type Splitter struct {
	ledger  *ledger.Ledger
	account ledger.Address

	mtx         sync.Mutex
	feeReceiver ledger.Address
	token       ledger.Address
}

// checkFeeReceiver ensures the fee receiver is a usable address.
func checkFeeReceiver(addr ledger.Address) error {
	if addr.IsZero() {
		return ruleError(ErrInvalidFeeReceiver, "feeReceiver must be a "+
			"valid address")
	}
	return nil
}

// New returns a splitter using the provided configuration details.
func New(cfg *Config) (*Splitter, error) {
	if err := checkFeeReceiver(cfg.FeeReceiver); err != nil {
		return nil, err
	}
	return &Splitter{
		ledger:      cfg.Ledger,
		account:     cfg.Account,
		feeReceiver: cfg.FeeReceiver,
		token:       cfg.Token,
	}, nil
}

// FeeReceiver returns the address payments are forwarded to.
func (s *Splitter) FeeReceiver() ledger.Address {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.feeReceiver
}

// SetFeeReceiver changes the address payments are forwarded to.  The zero
// address is rejected and leaves the current receiver in place.
func (s *Splitter) SetFeeReceiver(addr ledger.Address) error {
	if err := checkFeeReceiver(addr); err != nil {
		return err
	}

	s.mtx.Lock()
	s.feeReceiver = addr
	s.mtx.Unlock()
	log.Infof("Fee receiver set to %v", addr)
	return nil
}

// IsToken returns whether payments are made in a token rather than the native
// coin.
func (s *Splitter) IsToken() bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return !s.token.IsZero()
}

// Token returns the asset payments are made in.
func (s *Splitter) Token() ledger.Address {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.token
}

// SetToken switches payments to the provided token.  The zero address
// switches back to the native coin.
func (s *Splitter) SetToken(token ledger.Address) {
	s.mtx.Lock()
	s.token = token
	s.mtx.Unlock()
	log.Infof("Payment asset set to %v", token)
}

// Pay forwards the amount from the payer to the fee receiver.
//
// For native payments value is the amount the payer attaches.  It is debited
// in full, must be at least the amount, and any excess is retained by the
// splitter account.  For token payments value is ignored and exactly the
// amount is transferred.
func (s *Splitter) Pay(payer ledger.Address, amount, value *uint256.Uint256) (*Receipt, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	receipt := &Receipt{
		Payer:       payer,
		FeeReceiver: s.feeReceiver,
		Asset:       s.token,
		Amount:      *amount,
	}
	err := s.ledger.Update(func(tx *ledger.Tx) error {
		if !s.token.IsZero() {
			return tx.Transfer(s.token, payer, s.feeReceiver, amount)
		}

		if value.Lt(amount) {
			str := fmt.Sprintf("insufficient amount: attached %s is less "+
				"than %s", ledger.FormatAmount(value),
				ledger.FormatAmount(amount))
			return ruleError(ErrInsufficientAmount, str)
		}
		err := tx.Transfer(ledger.NativeAsset, payer, s.account, value)
		if err != nil {
			return err
		}
		receipt.Retained = *value
		receipt.Retained.Sub(amount)
		return tx.Transfer(ledger.NativeAsset, s.account, s.feeReceiver,
			amount)
	})
	if err != nil {
		return nil, err
	}

	log.Debugf("Forwarded %s of asset %v from %v to %v",
		ledger.FormatAmount(amount), receipt.Asset, payer, receipt.FeeReceiver)
	return receipt, nil
}
