// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package stakeperiod implements a phase gate for staking.  A period is made
// of a start, an end and a bonus end that delimit the staking window and the
// lock down that follows it.  The boundaries are expressed either as unix
// timestamps or as block heights.
package stakeperiod

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Period describes the staking window.  The boundaries are unix timestamps in
// seconds when IsTimestamp is set and block heights otherwise.
type Period struct {
	IsTimestamp bool
	Start       int64
	End         int64
	BonusEnd    int64
}

// Phase identifies one of the conditions a caller can gate on.
type Phase int

// These constants define the phases that can be checked.
const (
	BeforeStakeStart Phase = iota
	AfterStakeStart
	BeforeStakeEnd
	AfterStakeEnd
	BeforeBonusEnd
	AfterBonusEnd
)

// phaseStrings is a map of phases back to their names.
var phaseStrings = map[Phase]string{
	BeforeStakeStart: "beforestakestart",
	AfterStakeStart:  "afterstakestart",
	BeforeStakeEnd:   "beforestakeend",
	AfterStakeEnd:    "afterstakeend",
	BeforeBonusEnd:   "beforebonusend",
	AfterBonusEnd:    "afterbonusend",
}

// String returns the phase in human-readable form.
func (p Phase) String() string {
	if s, ok := phaseStrings[p]; ok {
		return s
	}
	return fmt.Sprintf("Unknown Phase (%d)", int(p))
}

// ParsePhase returns the phase with the provided case-insensitive name.
func ParsePhase(name string) (Phase, error) {
	lower := strings.ToLower(name)
	for phase, s := range phaseStrings {
		if s == lower {
			return phase, nil
		}
	}
	str := fmt.Sprintf("unknown phase %q", name)
	return 0, ruleError(ErrUnknownPhase, str)
}

// Config is a descriptor which specifies the gate configuration.
type Config struct {
	// Now returns the timestamp of the latest block.
	Now func() time.Time

	// Height returns the height of the latest block.
	Height func() int64
}

// Control gates operations on the staking period.
//
// Control is safe for concurrent access.
type Control struct {
	cfg Config

	mtx         sync.Mutex
	period      Period
	initialized bool
}

// New returns an uninitialized control using the provided configuration
// details.
func New(cfg *Config) *Control {
	return &Control{cfg: *cfg}
}

// current returns the position the boundaries are compared against.
func (c *Control) current(isTimestamp bool) int64 {
	if isTimestamp {
		return c.cfg.Now().Unix()
	}
	return c.cfg.Height()
}

// checkOrder ensures the end follows the start and the bonus end follows the
// end.
func checkOrder(p *Period) error {
	if p.End <= p.Start {
		str := fmt.Sprintf("new end must be larger than new start: end %d, "+
			"start %d", p.End, p.Start)
		return ruleError(ErrInvalidEnd, str)
	}
	if p.BonusEnd <= p.End {
		str := fmt.Sprintf("new bonusEnd must be larger than new end: "+
			"bonus end %d, end %d", p.BonusEnd, p.End)
		return ruleError(ErrInvalidBonusEnd, str)
	}
	return nil
}

// Initialize sets the staking period.  It may only be called once.
func (c *Control) Initialize(p Period) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.initialized {
		return ruleError(ErrAlreadyInitialized, "staking period has been "+
			"initialized")
	}
	if err := checkOrder(&p); err != nil {
		return err
	}
	c.period = p
	c.initialized = true
	log.Infof("Staking period initialized: %+v", p)
	return nil
}

// Period returns the staking period and whether it was initialized.
func (c *Control) Period() (Period, bool) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.period, c.initialized
}

// check ensures the condition identified by the phase holds.
//
// This function MUST be called with the control lock held.
func (c *Control) check(phase Phase) error {
	if !c.initialized {
		return ruleError(ErrNotInitialized, "staking period has not been "+
			"initialized")
	}

	p := &c.period
	cur := c.current(p.IsTimestamp)
	switch phase {
	case BeforeStakeStart:
		if cur >= p.Start {
			return ruleError(ErrStakingStarted, "staking period has started")
		}
	case AfterStakeStart:
		if cur < p.Start {
			return ruleError(ErrStakingNotStarted, "staking period has not "+
				"started")
		}
	case BeforeStakeEnd:
		if cur >= p.End {
			return ruleError(ErrStakingEnded, "staking period has ended")
		}
	case AfterStakeEnd:
		if cur < p.End {
			return ruleError(ErrStakingNotEnded, "staking period has not "+
				"ended")
		}
	case BeforeBonusEnd:
		if cur >= p.BonusEnd {
			return ruleError(ErrLockDownEnded, "lock down period has ended")
		}
	case AfterBonusEnd:
		if cur < p.BonusEnd {
			return ruleError(ErrLockDownNotEnded, "lock down period has not "+
				"ended")
		}
	default:
		str := fmt.Sprintf("unknown phase %d", int(phase))
		return ruleError(ErrUnknownPhase, str)
	}
	return nil
}

// Check ensures the condition identified by the phase holds.
func (c *Control) Check(phase Phase) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.check(phase)
}

// Update replaces the staking period before it has started.  The new start
// must not precede the current position in the new period's units.
func (c *Control) Update(p Period) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if err := c.check(BeforeStakeStart); err != nil {
		return err
	}
	if cur := c.current(p.IsTimestamp); p.Start < cur {
		str := fmt.Sprintf("new start must be larger than or equal to "+
			"current block: start %d, current %d", p.Start, cur)
		return ruleError(ErrInvalidStart, str)
	}
	if err := checkOrder(&p); err != nil {
		return err
	}
	c.period = p
	log.Infof("Staking period updated: %+v", p)
	return nil
}
