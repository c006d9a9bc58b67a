// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package batchdb

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/crypto/blake256"
	"github.com/decred/dcrd/math/uint256"
	"github.com/launchkit/vrfd/vrfqueue"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

// testWords returns numWords distinct words derived from the provided seed.
func testWords(seed uint64, numWords uint32) []uint256.Uint256 {
	words := make([]uint256.Uint256, numWords)
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], seed)
	for i := range words {
		binary.LittleEndian.PutUint64(buf[8:], uint64(i))
		digest := blake256.Sum256(buf[:])
		words[i].SetBytes(&digest)
	}
	return words
}

// newMemDB returns a leveldb database backed by memory that is closed when
// the test finishes.
func newMemDB(t *testing.T) *leveldb.DB {
	t.Helper()

	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		t.Fatalf("unable to open memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// assertBatch ensures the stored batch at the given index matches the
// provided words.
func assertBatch(t *testing.T, s *Store, index uint64, want []uint256.Uint256) {
	t.Helper()

	got, err := s.Batch(index)
	if err != nil {
		t.Fatalf("batch %d: unexpected error: %v", index, err)
	}
	if len(got) != len(want) {
		t.Fatalf("batch %d: got %d words, want %d", index, len(got),
			len(want))
	}
	for i := range want {
		if !got[i].Eq(&want[i]) {
			t.Fatalf("batch %d: mismatched word %d", index, i)
		}
	}
}

// TestStoreRoundTrip ensures batches appended to the store are returned
// unchanged both from the cache and from the database.
func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	const batchSize = 5
	db := newMemDB(t)
	s, err := New(db, batchSize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	const numBatches = batchCacheSize + 4
	batches := make([][]uint256.Uint256, numBatches)
	for i := range batches {
		batches[i] = testWords(uint64(i), batchSize)
		index, err := s.Append(batches[i])
		if err != nil {
			t.Fatalf("batch %d: unexpected append error: %v", i, err)
		}
		if index != uint64(i) {
			t.Fatalf("batch %d: unexpected index %d", i, index)
		}
	}
	if s.NumBatches() != numBatches {
		t.Fatalf("unexpected number of batches %d", s.NumBatches())
	}

	// The oldest batches were evicted from the cache and are decoded from
	// the database.
	for i := range batches {
		assertBatch(t, s, uint64(i), batches[i])
	}

	if _, err := s.Batch(numBatches); !errors.Is(err,
		vrfqueue.ErrBatchNotFound) {

		t.Fatalf("mismatched err -- got %v, want %v", err,
			vrfqueue.ErrBatchNotFound)
	}
	_, err = s.Append(testWords(99, batchSize+1))
	if !errors.Is(err, vrfqueue.ErrBatchSizeMismatch) {
		t.Fatalf("mismatched err -- got %v, want %v", err,
			vrfqueue.ErrBatchSizeMismatch)
	}
	if s.NumBatches() != numBatches {
		t.Fatalf("malformed batch changed the batch count to %d",
			s.NumBatches())
	}
}

// TestStoreReopen ensures batches and the cursor survive closing and
// reopening the database and that the batch size is enforced.
func TestStoreReopen(t *testing.T) {
	t.Parallel()

	const batchSize = 3
	dataDir := t.TempDir()
	s, err := Load(dataDir, batchSize)
	if err != nil {
		t.Fatalf("unexpected error loading database: %v", err)
	}
	batches := [][]uint256.Uint256{testWords(1, batchSize),
		testWords(2, batchSize)}
	for _, words := range batches {
		if _, err := s.Append(words); err != nil {
			t.Fatalf("unexpected append error: %v", err)
		}
	}
	cursor := vrfqueue.Cursor{Batch: 1, Offset: 2}
	if err := s.PutCursor(cursor); err != nil {
		t.Fatalf("unexpected error storing cursor: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("unexpected error closing database: %v", err)
	}

	_, err = Load(dataDir, batchSize+1)
	if !errors.Is(err, vrfqueue.ErrBatchSizeMismatch) {
		t.Fatalf("mismatched err -- got %v, want %v", err,
			vrfqueue.ErrBatchSizeMismatch)
	}

	s, err = Load(dataDir, batchSize)
	if err != nil {
		t.Fatalf("unexpected error reloading database: %v", err)
	}
	defer s.Close()
	if s.NumBatches() != uint64(len(batches)) {
		t.Fatalf("unexpected number of batches %d", s.NumBatches())
	}
	for i, words := range batches {
		assertBatch(t, s, uint64(i), words)
	}
	gotCursor, err := s.FetchCursor()
	if err != nil {
		t.Fatalf("unexpected error fetching cursor: %v", err)
	}
	if gotCursor != cursor {
		t.Fatalf("unexpected cursor -- got %v, want %v", gotCursor, cursor)
	}

	// A generator over the reopened store resumes at the stored cursor.
	g, err := vrfqueue.New(&vrfqueue.Config{BatchSize: batchSize, Store: s})
	if err != nil {
		t.Fatalf("unexpected error creating generator: %v", err)
	}
	result, err := g.Draw(1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := vrfqueue.Extract(&batches[1][2], 1000)
	if result.Source != vrfqueue.SourceOracle || result.Value != want {
		t.Fatalf("unexpected draw %d from %v, want %d from oracle",
			result.Value, result.Source, want)
	}
	if _, err := g.FulfillRandomWords(chainhash.Hash{},
		testWords(3, batchSize)); err != nil {

		t.Fatalf("unexpected fulfill error: %v", err)
	}
	if s.NumBatches() != 3 {
		t.Fatalf("unexpected number of batches %d", s.NumBatches())
	}
}

// TestStoreCorruption ensures malformed records are reported as corruption.
func TestStoreCorruption(t *testing.T) {
	t.Parallel()

	const batchSize = 2
	db := newMemDB(t)
	s, err := New(db, batchSize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Append(testWords(0, batchSize)); err != nil {
		t.Fatalf("unexpected append error: %v", err)
	}

	// Truncate the stored batch and the cursor behind the store's back and
	// reopen so the cache is empty.
	if err := db.Put(batchKey(0), []byte{0x01, 0x02}, nil); err != nil {
		t.Fatalf("unexpected put error: %v", err)
	}
	if err := db.Put(cursorKey, []byte{0x01}, nil); err != nil {
		t.Fatalf("unexpected put error: %v", err)
	}
	s, err = New(db, batchSize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Batch(0); !errors.Is(err, ErrCorruption) {
		t.Fatalf("mismatched err -- got %v, want %v", err, ErrCorruption)
	}
	if _, err := s.FetchCursor(); !errors.Is(err, ErrCorruption) {
		t.Fatalf("mismatched err -- got %v, want %v", err, ErrCorruption)
	}

	if err := db.Put(metaKey, []byte{0x00}, nil); err != nil {
		t.Fatalf("unexpected put error: %v", err)
	}
	if _, err := New(db, batchSize); !errors.Is(err, ErrCorruption) {
		t.Fatalf("mismatched err -- got %v, want %v", err, ErrCorruption)
	}
}

// TestStoreClosed ensures use after close is reported as such.
func TestStoreClosed(t *testing.T) {
	t.Parallel()

	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		t.Fatalf("unable to open memory database: %v", err)
	}
	s, err := New(db, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
	_, err = s.Append(testWords(0, 1))
	if !errors.Is(err, ErrNotOpen) {
		t.Fatalf("mismatched err -- got %v, want %v", err, ErrNotOpen)
	}
	var dbErr Error
	if !errors.As(err, &dbErr) || !errors.Is(dbErr.RawErr, leveldb.ErrClosed) {
		t.Fatalf("raw error not preserved: %v", err)
	}
}

// TestNewZeroBatchSize ensures a zero batch size is rejected.
func TestNewZeroBatchSize(t *testing.T) {
	t.Parallel()

	_, err := New(newMemDB(t), 0)
	if !errors.Is(err, vrfqueue.ErrZeroBatchSize) {
		t.Fatalf("mismatched err -- got %v, want %v", err,
			vrfqueue.ErrZeroBatchSize)
	}
}
