// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package vesting implements linear token vesting with a cliff.
//
// A schedule releases its total amount linearly, with one second granularity,
// from its start time until the end of its duration.  Nothing can be claimed
// before the cliff has passed, after which everything vested since the start
// becomes claimable at once.
package vesting

import (
	"fmt"
	"sync"
	"time"

	"github.com/decred/dcrd/math/uint256"
	"github.com/launchkit/vrfd/ledger"
)

// Schedule describes the vesting of tokens for one beneficiary.
type Schedule struct {
	Total    uint256.Uint256
	Start    time.Time
	Duration time.Duration
	Cliff    time.Duration
	Claimed  uint256.Uint256
}

// Vested returns the amount vested at the provided time regardless of what
// was already claimed.
func (s *Schedule) Vested(at time.Time) uint256.Uint256 {
	if s.Duration < time.Second || at.Before(s.Start) {
		return uint256.Uint256{}
	}
	elapsed := uint64(at.Sub(s.Start) / time.Second)
	duration := uint64(s.Duration / time.Second)
	if elapsed >= duration {
		return s.Total
	}

	// total * elapsed / duration computed as
	// (total / duration) * elapsed + (total % duration) * elapsed / duration
	// so the intermediate products cannot overflow.
	var d, e uint256.Uint256
	d.SetUint64(duration)
	e.SetUint64(elapsed)
	quotient := s.Total
	quotient.Div(&d)
	product := quotient
	product.Mul(&d)
	remainder := s.Total
	remainder.Sub(&product)
	remainder.Mul(&e).Div(&d)
	vested := quotient
	vested.Mul(&e).Add(&remainder)
	return vested
}

// Claimable returns the amount that may be claimed at the provided time.  It
// is zero before the cliff.
func (s *Schedule) Claimable(at time.Time) uint256.Uint256 {
	if at.Before(s.Start.Add(s.Cliff)) {
		return uint256.Uint256{}
	}
	claimable := s.Vested(at)
	if claimable.Lt(&s.Claimed) {
		return uint256.Uint256{}
	}
	claimable.Sub(&s.Claimed)
	return claimable
}

// Config is a descriptor which specifies the vesting configuration.
type Config struct {
	// Ledger holds the vested tokens.
	Ledger *ledger.Ledger

	// Token is the asset being vested.
	Token ledger.Address

	// Account is the address holding the tokens until they are claimed.
	Account ledger.Address

	// Now returns the current time as seen by the sequencer.
	Now func() time.Time
}

// Vesting manages the vesting schedules of all beneficiaries.
//
// Vesting is safe for concurrent access.
type Vesting struct {
	cfg Config

	mtx       sync.Mutex
	schedules map[ledger.Address]*Schedule
}

// New returns a vesting manager using the provided configuration details.
func New(cfg *Config) *Vesting {
	v := &Vesting{
		cfg:       *cfg,
		schedules: make(map[ledger.Address]*Schedule),
	}
	if v.cfg.Now == nil {
		v.cfg.Now = time.Now
	}
	return v
}

// Token returns the asset being vested.
func (v *Vesting) Token() ledger.Address {
	return v.cfg.Token
}

// AddVesting creates or replaces the schedule of the beneficiary.  The start
// must be in the future, the duration at least one second and the cliff
// strictly between zero and the duration.
func (v *Vesting) AddVesting(beneficiary ledger.Address, total *uint256.Uint256, start time.Time, duration, cliff time.Duration) error {
	now := v.cfg.Now()
	if !start.After(now) {
		str := fmt.Sprintf("invalid start time: %v is not after %v", start,
			now)
		return ruleError(ErrInvalidStartTime, str)
	}
	if duration < time.Second {
		str := fmt.Sprintf("invalid duration: %v", duration)
		return ruleError(ErrInvalidDuration, str)
	}
	if cliff <= 0 || cliff >= duration {
		str := fmt.Sprintf("invalid cliff duration: %v is not within "+
			"(0, %v)", cliff, duration)
		return ruleError(ErrInvalidCliffDuration, str)
	}

	v.mtx.Lock()
	v.schedules[beneficiary] = &Schedule{
		Total:    *total,
		Start:    start,
		Duration: duration,
		Cliff:    cliff,
	}
	v.mtx.Unlock()

	log.Infof("Added vesting of %s for %v starting %v over %v (cliff %v)",
		ledger.FormatAmount(total), beneficiary, start, duration, cliff)
	return nil
}

// Schedule returns a copy of the schedule of the beneficiary and whether one
// exists.
func (v *Vesting) Schedule(beneficiary ledger.Address) (Schedule, bool) {
	v.mtx.Lock()
	defer v.mtx.Unlock()

	schedule, ok := v.schedules[beneficiary]
	if !ok {
		return Schedule{}, false
	}
	return *schedule, true
}

// Claim transfers everything vested and not yet claimed to the beneficiary
// and returns the transferred amount.
func (v *Vesting) Claim(beneficiary ledger.Address) (uint256.Uint256, error) {
	v.mtx.Lock()
	defer v.mtx.Unlock()

	now := v.cfg.Now()
	schedule, ok := v.schedules[beneficiary]
	if !ok {
		schedule = &Schedule{}
	}
	if now.Before(schedule.Start.Add(schedule.Cliff)) {
		str := fmt.Sprintf("cliff period has not passed: claimable from %v",
			schedule.Start.Add(schedule.Cliff))
		return uint256.Uint256{}, ruleError(ErrCliffNotPassed, str)
	}
	claimable := schedule.Claimable(now)
	if claimable.IsZero() {
		return uint256.Uint256{}, ruleError(ErrNoClaimableTokens,
			"no claimable tokens")
	}

	err := v.cfg.Ledger.Transfer(v.cfg.Token, v.cfg.Account, beneficiary,
		&claimable)
	if err != nil {
		return uint256.Uint256{}, err
	}
	schedule.Claimed.Add(&claimable)

	log.Debugf("%v claimed %s", beneficiary, ledger.FormatAmount(&claimable))
	return claimable, nil
}
