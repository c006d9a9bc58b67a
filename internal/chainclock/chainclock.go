// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainclock provides a simulated sequencer that produces blocks at a
// fixed interval.  Its best state supplies the block height and timestamp the
// validators gate on as well as the context fallback numbers are derived from.
package chainclock

import (
	"context"
	"encoding/binary"
	"sync"
	"time"

	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/launchkit/vrfd/vrfqueue"
)

// DefaultInterval is the block interval used when none is configured.
const DefaultInterval = 3 * time.Second

// Config is a descriptor which specifies the clock configuration.
type Config struct {
	// Interval is the time between blocks produced by Run.
	Interval time.Duration

	// Now returns the current time.  It defaults to time.Now.
	Now func() time.Time

	// Notify is invoked with every new best state.  It is called without
	// the clock lock held.
	//
	// This field can be nil.
	Notify func(state vrfqueue.ChainState)
}

// Clock is a simulated sequencer.
//
// Clock is safe for concurrent access.
type Clock struct {
	interval time.Duration
	now      func() time.Time
	notify   func(state vrfqueue.ChainState)

	mtx  sync.RWMutex
	best vrfqueue.ChainState
}

// New returns a clock whose genesis block is stamped with the current time.
func New(cfg *Config) *Clock {
	c := &Clock{
		interval: cfg.Interval,
		now:      cfg.Now,
		notify:   cfg.Notify,
	}
	if c.interval <= 0 {
		c.interval = DefaultInterval
	}
	if c.now == nil {
		c.now = time.Now
	}

	genesisTime := c.now().Truncate(time.Second)
	c.best = vrfqueue.ChainState{
		Hash:      blockHash(&chainhash.Hash{}, 0, genesisTime),
		Height:    0,
		Timestamp: genesisTime,
	}
	return c
}

// blockHash returns the hash of a block at the given height and time that
// extends the block with the provided hash.
func blockHash(prevHash *chainhash.Hash, height int64, timestamp time.Time) chainhash.Hash {
	var buf [chainhash.HashSize + 16]byte
	copy(buf[:], prevHash[:])
	binary.LittleEndian.PutUint64(buf[chainhash.HashSize:], uint64(height))
	binary.LittleEndian.PutUint64(buf[chainhash.HashSize+8:],
		uint64(timestamp.Unix()))
	return chainhash.HashH(buf[:])
}

// BestState returns the latest block.
func (c *Clock) BestState() vrfqueue.ChainState {
	c.mtx.RLock()
	best := c.best
	c.mtx.RUnlock()
	return best
}

// Height returns the height of the latest block.
func (c *Clock) Height() int64 {
	return c.BestState().Height
}

// Timestamp returns the timestamp of the latest block.
func (c *Clock) Timestamp() time.Time {
	return c.BestState().Timestamp
}

// Advance produces a new block on top of the latest one and returns it.
// Block timestamps never go backwards.
func (c *Clock) Advance() vrfqueue.ChainState {
	c.mtx.Lock()
	timestamp := c.now().Truncate(time.Second)
	if timestamp.Before(c.best.Timestamp) {
		timestamp = c.best.Timestamp
	}
	height := c.best.Height + 1
	c.best = vrfqueue.ChainState{
		Hash:      blockHash(&c.best.Hash, height, timestamp),
		Height:    height,
		Timestamp: timestamp,
	}
	best := c.best
	c.mtx.Unlock()

	log.Debugf("New block %v (height %d, time %v)", best.Hash, best.Height,
		best.Timestamp)
	if c.notify != nil {
		c.notify(best)
	}
	return best
}

// Run produces blocks at the configured interval until the provided context
// is canceled.
//
// This must be run as a goroutine.
func (c *Clock) Run(ctx context.Context) {
	log.Tracef("Starting chain clock with %v block interval", c.interval)
	defer log.Tracef("Chain clock stopped")

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Advance()
		}
	}
}
