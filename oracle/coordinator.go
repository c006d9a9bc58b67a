// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package oracle implements a simulated VRF coordinator.  It accepts requests
// for random words, hands out request IDs immediately and delivers the words
// later through a fulfillment callback, mimicking the asynchronous behavior of
// an on-chain randomness oracle.
package oracle

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/crypto/rand"
	"github.com/decred/dcrd/math/uint256"
)

const (
	// MaxNumWords is the maximum number of words a single request may ask
	// for.
	MaxNumWords = 500

	// DefaultQueueSize is the number of undelivered requests accepted when
	// no queue size is configured.
	DefaultQueueSize = 32
)

// Fulfiller defines the interface the coordinator delivers random words to.
type Fulfiller interface {
	FulfillRandomWords(requestID chainhash.Hash, words []uint256.Uint256) (uint64, error)
}

// Config is a descriptor which specifies the coordinator configuration.
type Config struct {
	// Fulfiller receives the random words for every delivered request.
	// It may be set after creation via SetFulfiller but must be set before
	// Run is invoked.
	Fulfiller Fulfiller

	// MinDelay and MaxDelay bound the simulated time between accepting a
	// request and delivering its words.  The actual delay is chosen
	// uniformly at random between the two.
	MinDelay time.Duration
	MaxDelay time.Duration

	// QueueSize is the maximum number of requests awaiting delivery.  It
	// defaults to DefaultQueueSize.
	QueueSize int

	// Manual disables automatic delivery.  Requests are still assigned IDs
	// and tracked as pending, but the words must be supplied externally.
	Manual bool
}

// request houses a single request for random words.
type request struct {
	id       chainhash.Hash
	numWords uint32
}

// Coordinator simulates a VRF coordinator.
//
// Coordinator is safe for concurrent access.
type Coordinator struct {
	cfg      Config
	key      [32]byte
	requests chan request

	mtx       sync.Mutex
	fulfiller Fulfiller
	seq       uint64
	pending   map[chainhash.Hash]uint32
	delivered uint64
}

// New returns a coordinator using the provided configuration details.
func New(cfg *Config) *Coordinator {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	c := &Coordinator{
		cfg:       *cfg,
		requests:  make(chan request, queueSize),
		fulfiller: cfg.Fulfiller,
		pending:   make(map[chainhash.Hash]uint32),
	}
	rand.Read(c.key[:])
	return c
}

// SetFulfiller sets the target of delivered words.  It is used to break the
// construction cycle between a coordinator and the generator it serves.
func (c *Coordinator) SetFulfiller(f Fulfiller) {
	c.mtx.Lock()
	c.fulfiller = f
	c.mtx.Unlock()
}

// nextRequestID returns a new unique request ID.
//
// This function MUST be called with the coordinator lock held.
func (c *Coordinator) nextRequestID() chainhash.Hash {
	c.seq++
	var buf [40]byte
	binary.BigEndian.PutUint64(buf[:8], c.seq)
	copy(buf[8:], c.key[:])
	return chainhash.HashH(buf[:])
}

// RequestRandomWords accepts a request for the provided number of words and
// returns its ID.  It never blocks.  The words are delivered by Run after a
// delay unless the coordinator is in manual mode.
//
// This is part of the vrfqueue.Oracle interface.
func (c *Coordinator) RequestRandomWords(numWords uint32) (chainhash.Hash, error) {
	if numWords == 0 || numWords > MaxNumWords {
		str := fmt.Sprintf("request for %d words is outside of the range "+
			"[1, %d]", numWords, MaxNumWords)
		return chainhash.Hash{}, makeError(ErrInvalidNumWords, str)
	}

	c.mtx.Lock()
	defer c.mtx.Unlock()

	id := c.nextRequestID()
	if !c.cfg.Manual {
		select {
		case c.requests <- request{id: id, numWords: numWords}:
		default:
			str := fmt.Sprintf("%d requests are already awaiting delivery",
				cap(c.requests))
			return chainhash.Hash{}, makeError(ErrQueueFull, str)
		}
	}
	c.pending[id] = numWords
	log.Debugf("Accepted request %v for %d words", id, numWords)
	return id, nil
}

// GenerateWords returns the provided number of words read from the
// package's cryptographically secure random source.
func GenerateWords(numWords uint32) []uint256.Uint256 {
	words := make([]uint256.Uint256, numWords)
	var buf [32]byte
	for i := range words {
		rand.Read(buf[:])
		words[i].SetBytes(&buf)
	}
	return words
}

// Fulfill generates words for the pending request with the provided ID and
// delivers them immediately.  It is used in manual mode and by Run.
func (c *Coordinator) Fulfill(id chainhash.Hash) error {
	c.mtx.Lock()
	numWords, ok := c.pending[id]
	fulfiller := c.fulfiller
	c.mtx.Unlock()
	if !ok {
		str := fmt.Sprintf("request %v is not pending", id)
		return makeError(ErrUnknownRequest, str)
	}
	if fulfiller == nil {
		return fmt.Errorf("no fulfiller to deliver request %v to", id)
	}

	index, err := fulfiller.FulfillRandomWords(id, GenerateWords(numWords))
	if err != nil {
		return err
	}

	c.removePending(id)
	log.Debugf("Delivered %d words for request %v as batch %d", numWords,
		id, index)
	return nil
}

// removePending stops tracking the request with the provided ID and counts it
// as delivered.  It returns false when the request was not pending.
func (c *Coordinator) removePending(id chainhash.Hash) bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if _, ok := c.pending[id]; !ok {
		return false
	}
	delete(c.pending, id)
	c.delivered++
	return true
}

// MarkFulfilled stops tracking the request with the provided ID once its
// words reached the fulfiller by other means than Fulfill, such as a
// fulfillment submitted over RPC in manual mode.  Unknown IDs are ignored.
//
// This function is safe for concurrent access.
func (c *Coordinator) MarkFulfilled(id chainhash.Hash) {
	if c.removePending(id) {
		log.Debugf("Request %v fulfilled externally", id)
	}
}

// Pending returns the IDs of the requests that have not been delivered.
func (c *Coordinator) Pending() []chainhash.Hash {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	ids := make([]chainhash.Hash, 0, len(c.pending))
	for id := range c.pending {
		ids = append(ids, id)
	}
	return ids
}

// Delivered returns the number of requests delivered so far.
func (c *Coordinator) Delivered() uint64 {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.delivered
}

// delay returns a random delay within the configured bounds.
func (c *Coordinator) delay() time.Duration {
	if c.cfg.MaxDelay <= c.cfg.MinDelay {
		return c.cfg.MinDelay
	}
	return c.cfg.MinDelay + rand.Duration(c.cfg.MaxDelay-c.cfg.MinDelay)
}

// Run delivers accepted requests in the order they were made until the
// provided context is canceled.  Delivery failures are logged and the request
// stays pending.
//
// This must be run as a goroutine.
func (c *Coordinator) Run(ctx context.Context) {
	log.Tracef("Starting coordinator")
	defer log.Tracef("Coordinator stopped")

	for {
		var req request
		select {
		case <-ctx.Done():
			return
		case req = <-c.requests:
		}

		timer := time.NewTimer(c.delay())
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		err := c.Fulfill(req.id)
		switch {
		case errors.Is(err, ErrUnknownRequest):
			log.Debugf("Request %v was fulfilled before delivery", req.id)
		case err != nil:
			log.Errorf("Unable to deliver request %v: %v", req.id, err)
		}
	}
}
