// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package vrfqueue

import (
	"fmt"
	"sync"

	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/math/uint256"
	"github.com/jrick/bitset"
)

// MaxBatchSize is the maximum number of words a single batch may hold.
const MaxBatchSize = 100

// Oracle defines the interface the generator uses to ask for more random
// words.  A returned error means the request was not accepted and nothing
// will be fulfilled for it.
type Oracle interface {
	RequestRandomWords(numWords uint32) (chainhash.Hash, error)
}

// Config is a descriptor which specifies the generator configuration.
type Config struct {
	// BatchSize is the number of words requested from the oracle at once
	// and the exact number of words every fulfillment must carry.  It must
	// be in the range [1, MaxBatchSize].
	BatchSize uint32

	// Store holds the appended batches and the consumption cursor.  The
	// generator resumes from the cursor the store reports.
	//
	// This field can be nil in which case batches are kept in memory.
	Store BatchStore

	// Oracle receives refill requests.
	//
	// This field can be nil in which case refill requests are tracked
	// with a zero request ID but never delivered anywhere.
	Oracle Oracle

	// BestState provides the sequencer context for fallback numbers.
	//
	// This field can be nil in which case only the wall clock is used.
	BestState func() ChainState

	// Notifications defines a callback to which notifications will be sent
	// when various events take place.  See the documentation for
	// Notification and NotificationType for details on the types and
	// contents of notifications.
	//
	// This field can be nil if the caller is not interested in receiving
	// notifications.
	Notifications NotificationCallback
}

// Stats is a snapshot of the generator state.
type Stats struct {
	BatchSize       uint32
	NumBatches      uint64
	Cursor          Cursor
	Buffered        uint64
	RequestCount    uint64
	Outstanding     bool
	PendingRequests int
	Served          uint64
	FallbackServed  uint64
}

// Generator buffers batches of oracle words and serves bounded random numbers
// from them one word at a time.  Consuming past the midpoint of a batch asks
// the oracle for the next batch, at most once per batch.  When the buffer is
// exhausted numbers are derived from the fallback source instead.
//
// Generator is safe for concurrent access.
type Generator struct {
	mtx             sync.Mutex
	store           BatchStore
	oracle          Oracle
	fallback        *FallbackSource
	notifications   NotificationCallback
	batchSize       uint32
	refillThreshold uint32

	// active caches the batch the cursor points into so consumption only
	// reads the store once per batch.
	cursor      Cursor
	active      []uint256.Uint256
	activeIndex uint64

	// requested has a bit set for every batch whose consumption already
	// issued a refill request.
	requested    bitset.Bytes
	outstanding  bool
	pending      map[chainhash.Hash]uint64
	requestCount uint64

	served         uint64
	fallbackServed uint64
}

// New returns a generator instance using the provided configuration details.
func New(config *Config) (*Generator, error) {
	if config.BatchSize == 0 {
		return nil, queueError(ErrZeroBatchSize, "batch size must be "+
			"greater than zero")
	}
	if config.BatchSize > MaxBatchSize {
		str := fmt.Sprintf("batch size %d exceeds the limit of %d",
			config.BatchSize, MaxBatchSize)
		return nil, queueError(ErrQueueLengthExceedsLimit, str)
	}

	store := config.Store
	if store == nil {
		var err error
		store, err = NewMemBatchStore(config.BatchSize)
		if err != nil {
			return nil, err
		}
	}
	if store.BatchSize() != config.BatchSize {
		str := fmt.Sprintf("batch store holds batches of %d words instead "+
			"of the configured %d", store.BatchSize(), config.BatchSize)
		return nil, queueError(ErrBatchSizeMismatch, str)
	}

	cursor, err := store.FetchCursor()
	if err != nil {
		return nil, err
	}
	numBatches := store.NumBatches()
	if cursor.Batch > numBatches || cursor.Offset >= config.BatchSize ||
		(cursor.Batch == numBatches && cursor.Offset != 0) {

		log.Warnf("Stored cursor %v is out of range for %d batches -- "+
			"resuming at the end of the buffer", cursor, numBatches)
		cursor = Cursor{Batch: numBatches}
	}

	g := &Generator{
		store:           store,
		oracle:          config.Oracle,
		fallback:        NewFallbackSource(config.BestState),
		notifications:   config.Notifications,
		batchSize:       config.BatchSize,
		refillThreshold: config.BatchSize / 2,
		cursor:          cursor,
		pending:         make(map[chainhash.Hash]uint64),
	}
	log.Infof("Random word queue: batch size %d, %d stored batches, cursor %v",
		g.batchSize, numBatches, cursor)
	return g, nil
}

// bufferedWords returns the number of unconsumed words.
//
// This function MUST be called with the generator lock held.
func (g *Generator) bufferedWords() uint64 {
	numBatches := g.store.NumBatches()
	if g.cursor.Batch >= numBatches {
		return 0
	}
	remaining := (numBatches - g.cursor.Batch) * uint64(g.batchSize)
	return remaining - uint64(g.cursor.Offset)
}

// isRequested returns whether a refill was already requested on behalf of the
// provided batch.
//
// This function MUST be called with the generator lock held.
func (g *Generator) isRequested(batch uint64) bool {
	if batch >= uint64(len(g.requested))*8 {
		return false
	}
	return g.requested.Get(int(batch))
}

// markRequested records that a refill was requested on behalf of the provided
// batch.
//
// This function MUST be called with the generator lock held.
func (g *Generator) markRequested(batch uint64) {
	for uint64(len(g.requested))*8 <= batch {
		g.requested = append(g.requested, 0)
	}
	g.requested.Set(int(batch))
}

// requestRefill asks the oracle for a new batch.  It returns false when the
// oracle did not accept the request.
//
// This function MUST be called with the generator lock held.
func (g *Generator) requestRefill(trigger uint64) bool {
	var id chainhash.Hash
	if g.oracle != nil {
		var err error
		id, err = g.oracle.RequestRandomWords(g.batchSize)
		if err != nil {
			log.Warnf("Oracle rejected refill request for batch %d: %v",
				trigger, err)
			return false
		}
	}

	g.outstanding = true
	g.pending[id] = trigger
	g.requestCount++
	log.Debugf("Requested %d random words (request %v, batch %d)",
		g.batchSize, id, trigger)

	g.sendNotification(NTRefillRequested, &RefillRequest{
		RequestID:    id,
		NumWords:     g.batchSize,
		TriggerBatch: trigger,
	})
	return true
}

// consume returns the word at the cursor and advances the cursor.  It
// returns false when the buffer is exhausted.
//
// This function MUST be called with the generator lock held.
func (g *Generator) consume() (uint256.Uint256, Cursor, bool) {
	at := g.cursor
	if at.Batch >= g.store.NumBatches() {
		return uint256.Uint256{}, at, false
	}

	if g.active == nil || g.activeIndex != at.Batch {
		words, err := g.store.Batch(at.Batch)
		if err != nil {
			log.Errorf("Unable to load batch %d: %v", at.Batch, err)
			return uint256.Uint256{}, at, false
		}
		g.active, g.activeIndex = words, at.Batch
	}
	word := g.active[at.Offset]

	g.cursor.Offset++
	if g.cursor.Offset == g.batchSize {
		g.cursor = Cursor{Batch: at.Batch + 1}
		g.active = nil
	}
	if err := g.store.PutCursor(g.cursor); err != nil {
		log.Warnf("Unable to store cursor %v: %v", g.cursor, err)
	}
	return word, at, true
}

// Draw returns a random number in [0, bound) along with details about how it
// was produced.
//
// A buffered oracle word is consumed when one is available.  Once more than
// half of a batch has been consumed, a single refill request is issued on
// behalf of that batch.  An exhausted buffer yields a fallback number without
// issuing any request.
//
// This function is safe for concurrent access.
func (g *Generator) Draw(bound uint64) (RandomNumber, error) {
	if bound == 0 {
		return RandomNumber{}, queueError(ErrInvalidBound, "bound must be "+
			"greater than zero")
	}

	g.mtx.Lock()
	defer g.mtx.Unlock()

	result := RandomNumber{Bound: bound}
	word, at, ok := g.consume()
	if ok {
		result.Value = Extract(&word, bound)
		result.Source = SourceOracle
		result.Cursor = at

		consumed := at.Offset + 1
		if consumed > g.refillThreshold && !g.isRequested(at.Batch) {
			if g.requestRefill(at.Batch) {
				g.markRequested(at.Batch)
			}
		}
	} else {
		result.Value = g.fallback.Sample(bound)
		result.Source = SourceFallback
		g.fallbackServed++
		log.Debugf("Buffer exhausted -- served fallback number")
	}
	g.served++

	g.sendNotification(NTRandomNumber, &result)
	return result, nil
}

// GetRandomNumber returns a random number in [0, bound).  See Draw for
// details.
//
// This function is safe for concurrent access.
func (g *Generator) GetRandomNumber(bound uint64) (uint64, error) {
	result, err := g.Draw(bound)
	if err != nil {
		return 0, err
	}
	return result.Value, nil
}

// FulfillRandomWords appends the provided words as a new batch and clears the
// outstanding request marker.  The number of words must equal the batch size.
// Fulfillments carrying a request ID the generator never issued are still
// accepted.
//
// This function is safe for concurrent access.
func (g *Generator) FulfillRandomWords(requestID chainhash.Hash, words []uint256.Uint256) (uint64, error) {
	if err := CheckBatchSize(words, g.batchSize); err != nil {
		return 0, err
	}

	g.mtx.Lock()
	defer g.mtx.Unlock()

	index, err := g.store.Append(words)
	if err != nil {
		return 0, err
	}
	_, solicited := g.pending[requestID]
	delete(g.pending, requestID)
	g.outstanding = false

	if solicited {
		log.Debugf("Appended batch %d for request %v", index, requestID)
	} else {
		log.Infof("Appended batch %d for unknown request %v", index,
			requestID)
	}

	g.sendNotification(NTBatchAppended, &BatchAppended{
		RequestID: requestID,
		Index:     index,
		Solicited: solicited,
	})
	return index, nil
}

// Prime issues a refill request when nothing is buffered and no request is
// outstanding.  It returns whether a request was issued.
//
// This function is safe for concurrent access.
func (g *Generator) Prime() bool {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	if g.outstanding || g.bufferedWords() != 0 {
		return false
	}
	return g.requestRefill(g.store.NumBatches())
}

// Batch returns a copy of the stored batch with the given index.
//
// This function is safe for concurrent access.
func (g *Generator) Batch(index uint64) ([]uint256.Uint256, error) {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	return g.store.Batch(index)
}

// Cursor returns the position of the next unconsumed word.
//
// This function is safe for concurrent access.
func (g *Generator) Cursor() Cursor {
	g.mtx.Lock()
	cursor := g.cursor
	g.mtx.Unlock()
	return cursor
}

// RequestCount returns the number of refill requests the oracle accepted.
//
// This function is safe for concurrent access.
func (g *Generator) RequestCount() uint64 {
	g.mtx.Lock()
	count := g.requestCount
	g.mtx.Unlock()
	return count
}

// Outstanding returns whether a refill request was issued and no batch has
// been appended since.
//
// This function is safe for concurrent access.
func (g *Generator) Outstanding() bool {
	g.mtx.Lock()
	outstanding := g.outstanding
	g.mtx.Unlock()
	return outstanding
}

// PendingRequests returns the request IDs that have not been fulfilled mapped
// to the batch that triggered them.
//
// This function is safe for concurrent access.
func (g *Generator) PendingRequests() map[chainhash.Hash]uint64 {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	pending := make(map[chainhash.Hash]uint64, len(g.pending))
	for id, batch := range g.pending {
		pending[id] = batch
	}
	return pending
}

// RequestedBatches returns a bit set with a bit set for every batch whose
// consumption issued a refill request.
//
// This function is safe for concurrent access.
func (g *Generator) RequestedBatches() bitset.Bytes {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	set := make(bitset.Bytes, len(g.requested))
	copy(set, g.requested)
	return set
}

// Stats returns a snapshot of the generator state.
//
// This function is safe for concurrent access.
func (g *Generator) Stats() Stats {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	return Stats{
		BatchSize:       g.batchSize,
		NumBatches:      g.store.NumBatches(),
		Cursor:          g.cursor,
		Buffered:        g.bufferedWords(),
		RequestCount:    g.requestCount,
		Outstanding:     g.outstanding,
		PendingRequests: len(g.pending),
		Served:          g.served,
		FallbackServed:  g.fallbackServed,
	}
}
