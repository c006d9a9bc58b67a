// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package batchdb

import (
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	ldberrors "github.com/syndtr/goleveldb/leveldb/errors"
)

// ErrorKind identifies a kind of error.  It has full support for errors.Is and
// errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific Error.
const (
	// ErrDatabase indicates a general failure of the underlying database.
	ErrDatabase = ErrorKind("ErrDatabase")

	// ErrCorruption indicates a checksum failure or malformed data in the
	// underlying database.
	ErrCorruption = ErrorKind("ErrCorruption")

	// ErrNotOpen indicates the database was used after it was closed.
	ErrNotOpen = ErrorKind("ErrNotOpen")

	// ErrVersion indicates the database was created by a newer version of
	// the software.
	ErrVersion = ErrorKind("ErrVersion")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// Error identifies an error related to the batch database.  It has full
// support for errors.Is and errors.As, so the caller can ascertain the specific
// reason for the error by checking the underlying error.
//
// RawErr holds the original leveldb error, if any.
type Error struct {
	Err         error
	RawErr      error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// makeError creates an Error given a set of arguments.
func makeError(kind ErrorKind, desc string) Error {
	return Error{Err: kind, Description: desc}
}

// convertLdbErr converts the passed leveldb error into a database error with
// an equivalent error kind and the passed description.  It also sets the
// passed error as the underlying error and adds its error string to the
// description.
func convertLdbErr(ldbErr error, desc string) Error {
	kind := ErrDatabase
	switch {
	case ldberrors.IsCorrupted(ldbErr):
		kind = ErrCorruption
	case errors.Is(ldbErr, leveldb.ErrClosed):
		kind = ErrNotOpen
	}

	err := makeError(kind, fmt.Sprintf("%s: %v", desc, ldbErr))
	err.RawErr = ldbErr
	return err
}
