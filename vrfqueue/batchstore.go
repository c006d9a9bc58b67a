// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package vrfqueue

import (
	"fmt"

	"github.com/decred/dcrd/math/uint256"
)

// Cursor identifies the next unconsumed word.  A cursor whose Batch equals
// the number of stored batches denotes an exhausted buffer.
type Cursor struct {
	Batch  uint64
	Offset uint32
}

// String returns the cursor in human-readable form.
func (c Cursor) String() string {
	return fmt.Sprintf("%d:%d", c.Batch, c.Offset)
}

// BatchStore defines an append-only store of equally sized batches of random
// words along with the consumption cursor.  Batches are identified by
// consecutive indices starting at zero.
//
// Implementations are not required to be safe for concurrent access.  The
// Generator serializes all calls it makes.
type BatchStore interface {
	// BatchSize returns the number of words in every batch.
	BatchSize() uint32

	// NumBatches returns the number of batches appended so far.
	NumBatches() uint64

	// Append stores a copy of the provided words as a new batch and
	// returns its index.  The number of words MUST equal BatchSize.
	Append(words []uint256.Uint256) (uint64, error)

	// Batch returns a copy of the batch with the given index.
	Batch(index uint64) ([]uint256.Uint256, error)

	// PutCursor records the consumption cursor.
	PutCursor(cursor Cursor) error

	// FetchCursor returns the most recently recorded consumption cursor or
	// the zero cursor when none was recorded.
	FetchCursor() (Cursor, error)
}

// MemBatchStore is a BatchStore that keeps every batch in memory.
type MemBatchStore struct {
	batchSize uint32
	batches   [][]uint256.Uint256
	cursor    Cursor
}

// Ensure MemBatchStore implements the BatchStore interface.
var _ BatchStore = (*MemBatchStore)(nil)

// NewMemBatchStore returns an empty in-memory batch store for batches of the
// provided size.
func NewMemBatchStore(batchSize uint32) (*MemBatchStore, error) {
	if batchSize == 0 {
		return nil, queueError(ErrZeroBatchSize, "batch size must be "+
			"greater than zero")
	}
	return &MemBatchStore{batchSize: batchSize}, nil
}

// BatchSize returns the number of words in every batch.
//
// This is part of the BatchStore interface.
func (s *MemBatchStore) BatchSize() uint32 {
	return s.batchSize
}

// NumBatches returns the number of batches appended so far.
//
// This is part of the BatchStore interface.
func (s *MemBatchStore) NumBatches() uint64 {
	return uint64(len(s.batches))
}

// Append stores a copy of the provided words as a new batch.
//
// This is part of the BatchStore interface.
func (s *MemBatchStore) Append(words []uint256.Uint256) (uint64, error) {
	if err := CheckBatchSize(words, s.batchSize); err != nil {
		return 0, err
	}
	batch := make([]uint256.Uint256, len(words))
	copy(batch, words)
	s.batches = append(s.batches, batch)
	return uint64(len(s.batches) - 1), nil
}

// Batch returns a copy of the batch with the given index.
//
// This is part of the BatchStore interface.
func (s *MemBatchStore) Batch(index uint64) ([]uint256.Uint256, error) {
	if index >= uint64(len(s.batches)) {
		return nil, BatchNotFoundError(index)
	}
	batch := make([]uint256.Uint256, s.batchSize)
	copy(batch, s.batches[index])
	return batch, nil
}

// PutCursor records the consumption cursor.
//
// This is part of the BatchStore interface.
func (s *MemBatchStore) PutCursor(cursor Cursor) error {
	s.cursor = cursor
	return nil
}

// FetchCursor returns the recorded consumption cursor.
//
// This is part of the BatchStore interface.
func (s *MemBatchStore) FetchCursor() (Cursor, error) {
	return s.cursor, nil
}

// CheckBatchSize returns an error with kind ErrBatchSizeMismatch when the
// number of provided words differs from the batch size.
func CheckBatchSize(words []uint256.Uint256, batchSize uint32) error {
	if uint64(len(words)) != uint64(batchSize) {
		str := fmt.Sprintf("batch has %d words instead of the required %d",
			len(words), batchSize)
		return queueError(ErrBatchSizeMismatch, str)
	}
	return nil
}

// BatchNotFoundError returns an error with kind ErrBatchNotFound for the
// provided batch index.
func BatchNotFoundError(index uint64) error {
	str := fmt.Sprintf("batch %d does not exist", index)
	return queueError(ErrBatchNotFound, str)
}
