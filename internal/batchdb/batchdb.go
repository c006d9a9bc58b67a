// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package batchdb provides a LevelDB backed store for batches of random words
// and the consumption cursor of a vrfqueue.Generator.
package batchdb

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/decred/dcrd/container/lru"
	"github.com/decred/dcrd/math/uint256"
	"github.com/launchkit/vrfd/vrfqueue"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

const (
	// dbName is the name of the database directory within the data
	// directory.
	dbName = "batches_ldb"

	// currentVersion is the version of the on-disk layout.
	currentVersion = 1

	// wordSize is the number of bytes of a serialized word.
	wordSize = 32

	// batchCacheSize is the number of decoded batches kept in memory.
	batchCacheSize = 16

	// metaSize and cursorSize are the serialized sizes of the database
	// metadata and the cursor.
	metaSize   = 16
	cursorSize = 12
)

var (
	// byteOrder is the preferred byte order used for serializing numeric
	// fields for storage in the database.
	byteOrder = binary.BigEndian

	// batchKeyPrefix is the key prefix of every stored batch.  It is
	// followed by the batch index so batches iterate in append order.
	batchKeyPrefix = []byte("b")

	// metaKey holds the layout version, batch size and number of batches.
	metaKey = []byte("meta")

	// cursorKey holds the consumption cursor.
	cursorKey = []byte("cursor")
)

// batchKey returns the database key of the batch with the provided index.
func batchKey(index uint64) []byte {
	key := make([]byte, len(batchKeyPrefix)+8)
	copy(key, batchKeyPrefix)
	byteOrder.PutUint64(key[len(batchKeyPrefix):], index)
	return key
}

// Store implements vrfqueue.BatchStore on top of a leveldb database.  Every
// append writes the batch and the updated batch count atomically.
//
// Store is not safe for concurrent writes.  The vrfqueue.Generator that owns
// it serializes access.
type Store struct {
	db         *leveldb.DB
	batchSize  uint32
	numBatches uint64
	cache      *lru.Map[uint64, []uint256.Uint256]
}

// Ensure Store implements the vrfqueue.BatchStore interface.
var _ vrfqueue.BatchStore = (*Store)(nil)

// fileExists reports whether the named file or directory exists.
func fileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}

// Load opens (or creates when needed) the batch database within the provided
// data directory and returns a store for batches of the provided size.
func Load(dataDir string, batchSize uint32) (*Store, error) {
	dbPath := filepath.Join(dataDir, dbName)
	dbExists := fileExists(dbPath)
	if !dbExists {
		// The error can be ignored here since the call to leveldb.OpenFile
		// will fail if the directory couldn't be created.
		_ = os.MkdirAll(dataDir, 0700)
	}

	log.Infof("Loading batch database from '%s'", dbPath)
	opts := opt.Options{
		ErrorIfExist: !dbExists,
		Strict:       opt.DefaultStrict,
		Compression:  opt.NoCompression,
		Filter:       filter.NewBloomFilter(10),
	}
	db, err := leveldb.OpenFile(dbPath, &opts)
	if err != nil {
		return nil, convertLdbErr(err, "failed to open batch database")
	}

	store, err := New(db, batchSize)
	if err != nil {
		db.Close()
		return nil, err
	}
	log.Infof("Batch database loaded with %d batches", store.numBatches)
	return store, nil
}

// New returns a store that uses the provided leveldb database for its
// underlying storage.  A database that was never used as a batch store is
// initialized for batches of the provided size.  Opening a database created
// with a different batch size fails with vrfqueue.ErrBatchSizeMismatch.
func New(db *leveldb.DB, batchSize uint32) (*Store, error) {
	if batchSize == 0 {
		return nil, vrfqueue.Error{
			Err:         vrfqueue.ErrZeroBatchSize,
			Description: "batch size must be greater than zero",
		}
	}

	s := &Store{
		db:        db,
		batchSize: batchSize,
		cache:     lru.NewMap[uint64, []uint256.Uint256](batchCacheSize),
	}

	serialized, err := s.get(metaKey)
	if err != nil {
		return nil, err
	}
	if serialized == nil {
		if err := s.putMeta(nil, 0); err != nil {
			return nil, err
		}
		return s, nil
	}

	if len(serialized) != metaSize {
		str := fmt.Sprintf("malformed metadata of %d bytes", len(serialized))
		return nil, makeError(ErrCorruption, str)
	}
	version := byteOrder.Uint32(serialized[0:4])
	if version > currentVersion {
		str := fmt.Sprintf("database version %d is newer than the latest "+
			"supported version %d", version, currentVersion)
		return nil, makeError(ErrVersion, str)
	}
	storedSize := byteOrder.Uint32(serialized[4:8])
	if storedSize != batchSize {
		str := fmt.Sprintf("database holds batches of %d words instead of "+
			"the requested %d", storedSize, batchSize)
		return nil, vrfqueue.Error{
			Err:         vrfqueue.ErrBatchSizeMismatch,
			Description: str,
		}
	}
	s.numBatches = byteOrder.Uint64(serialized[8:16])
	return s, nil
}

// get returns the value for the given key or nil when it does not exist.
func (s *Store) get(key []byte) ([]byte, error) {
	serialized, err := s.db.Get(key, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, nil
		}
		str := fmt.Sprintf("failed to get key %x", key)
		return nil, convertLdbErr(err, str)
	}
	return serialized, nil
}

// putMeta stores the metadata for the provided number of batches.  It is
// added to the provided leveldb batch when it is not nil and written directly
// otherwise.
func (s *Store) putMeta(batch *leveldb.Batch, numBatches uint64) error {
	var serialized [metaSize]byte
	byteOrder.PutUint32(serialized[0:4], currentVersion)
	byteOrder.PutUint32(serialized[4:8], s.batchSize)
	byteOrder.PutUint64(serialized[8:16], numBatches)
	if batch != nil {
		batch.Put(metaKey, serialized[:])
		return nil
	}
	if err := s.db.Put(metaKey, serialized[:], nil); err != nil {
		return convertLdbErr(err, "failed to store metadata")
	}
	return nil
}

// serializeWords returns the concatenated big-endian encoding of the words.
func serializeWords(words []uint256.Uint256) []byte {
	serialized := make([]byte, len(words)*wordSize)
	for i := range words {
		b := words[i].Bytes()
		copy(serialized[i*wordSize:], b[:])
	}
	return serialized
}

// deserializeWords decodes the provided serialized batch.
func deserializeWords(serialized []byte, batchSize uint32) ([]uint256.Uint256, error) {
	if uint64(len(serialized)) != uint64(batchSize)*wordSize {
		str := fmt.Sprintf("malformed batch of %d bytes (expected %d)",
			len(serialized), uint64(batchSize)*wordSize)
		return nil, makeError(ErrCorruption, str)
	}
	words := make([]uint256.Uint256, batchSize)
	var b [wordSize]byte
	for i := range words {
		copy(b[:], serialized[i*wordSize:])
		words[i].SetBytes(&b)
	}
	return words, nil
}

// BatchSize returns the number of words in every batch.
//
// This is part of the vrfqueue.BatchStore interface.
func (s *Store) BatchSize() uint32 {
	return s.batchSize
}

// NumBatches returns the number of batches appended so far.
//
// This is part of the vrfqueue.BatchStore interface.
func (s *Store) NumBatches() uint64 {
	return s.numBatches
}

// Append stores the provided words as a new batch and returns its index.
//
// This is part of the vrfqueue.BatchStore interface.
func (s *Store) Append(words []uint256.Uint256) (uint64, error) {
	if err := vrfqueue.CheckBatchSize(words, s.batchSize); err != nil {
		return 0, err
	}

	index := s.numBatches
	var batch leveldb.Batch
	batch.Put(batchKey(index), serializeWords(words))
	if err := s.putMeta(&batch, index+1); err != nil {
		return 0, err
	}
	if err := s.db.Write(&batch, nil); err != nil {
		str := fmt.Sprintf("failed to store batch %d", index)
		return 0, convertLdbErr(err, str)
	}
	s.numBatches++

	cached := make([]uint256.Uint256, len(words))
	copy(cached, words)
	s.cache.Put(index, cached)
	log.Tracef("Stored batch %d", index)
	return index, nil
}

// Batch returns a copy of the batch with the given index.
//
// This is part of the vrfqueue.BatchStore interface.
func (s *Store) Batch(index uint64) ([]uint256.Uint256, error) {
	if index >= s.numBatches {
		return nil, vrfqueue.BatchNotFoundError(index)
	}

	words, ok := s.cache.Get(index)
	if !ok {
		serialized, err := s.get(batchKey(index))
		if err != nil {
			return nil, err
		}
		if serialized == nil {
			str := fmt.Sprintf("batch %d is missing", index)
			return nil, makeError(ErrCorruption, str)
		}
		words, err = deserializeWords(serialized, s.batchSize)
		if err != nil {
			return nil, err
		}
		s.cache.Put(index, words)
	}

	batch := make([]uint256.Uint256, len(words))
	copy(batch, words)
	return batch, nil
}

// PutCursor records the consumption cursor.
//
// This is part of the vrfqueue.BatchStore interface.
func (s *Store) PutCursor(cursor vrfqueue.Cursor) error {
	var serialized [cursorSize]byte
	byteOrder.PutUint64(serialized[0:8], cursor.Batch)
	byteOrder.PutUint32(serialized[8:12], cursor.Offset)
	if err := s.db.Put(cursorKey, serialized[:], nil); err != nil {
		return convertLdbErr(err, "failed to store cursor")
	}
	return nil
}

// FetchCursor returns the recorded consumption cursor.
//
// This is part of the vrfqueue.BatchStore interface.
func (s *Store) FetchCursor() (vrfqueue.Cursor, error) {
	serialized, err := s.get(cursorKey)
	if err != nil {
		return vrfqueue.Cursor{}, err
	}
	if serialized == nil {
		return vrfqueue.Cursor{}, nil
	}
	if len(serialized) != cursorSize {
		str := fmt.Sprintf("malformed cursor of %d bytes", len(serialized))
		return vrfqueue.Cursor{}, makeError(ErrCorruption, str)
	}
	return vrfqueue.Cursor{
		Batch:  byteOrder.Uint64(serialized[0:8]),
		Offset: byteOrder.Uint32(serialized[8:12]),
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return convertLdbErr(err, "failed to close batch database")
	}
	return nil
}
