// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package vrfqueue

// ErrorKind identifies a kind of error.  It has full support for errors.Is and
// errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific Error.
const (
	// ErrZeroBatchSize indicates a generator or batch store was configured
	// with a batch size of zero.
	ErrZeroBatchSize = ErrorKind("ErrZeroBatchSize")

	// ErrQueueLengthExceedsLimit indicates a generator was configured with
	// a batch size that exceeds MaxBatchSize.
	ErrQueueLengthExceedsLimit = ErrorKind("ErrQueueLengthExceedsLimit")

	// ErrBatchSizeMismatch indicates a batch of words does not have the
	// configured batch size, or a batch store was opened with a batch size
	// that differs from the one it was created with.
	ErrBatchSizeMismatch = ErrorKind("ErrBatchSizeMismatch")

	// ErrBatchNotFound indicates a batch with the requested index has not
	// been appended.
	ErrBatchNotFound = ErrorKind("ErrBatchNotFound")

	// ErrInvalidBound indicates a random number was requested with a bound
	// of zero.
	ErrInvalidBound = ErrorKind("ErrInvalidBound")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// Error identifies an error related to the random word queue.  It has full
// support for errors.Is and errors.As, so the caller can ascertain the
// specific reason for the error by checking the underlying error.
type Error struct {
	Description string
	Err         error
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// queueError creates an Error given a set of arguments.
func queueError(kind ErrorKind, desc string) Error {
	return Error{Err: kind, Description: desc}
}
