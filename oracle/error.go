// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package oracle

// ErrorKind identifies a kind of error.  It has full support for errors.Is and
// errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific Error.
const (
	// ErrQueueFull indicates the coordinator has too many undelivered
	// requests to accept another one.
	ErrQueueFull = ErrorKind("ErrQueueFull")

	// ErrInvalidNumWords indicates a request asked for zero words or more
	// than MaxNumWords.
	ErrInvalidNumWords = ErrorKind("ErrInvalidNumWords")

	// ErrUnknownRequest indicates a request ID that is not pending.
	ErrUnknownRequest = ErrorKind("ErrUnknownRequest")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// Error identifies an error related to the coordinator.  It has full support
// for errors.Is and errors.As, so the caller can ascertain the specific reason
// for the error by checking the underlying error.
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

// makeError creates an Error given a set of arguments.
func makeError(kind ErrorKind, desc string) Error {
	return Error{Err: kind, Description: desc}
}
