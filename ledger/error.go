// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

// ErrorKind identifies a kind of error.  It has full support for errors.Is and
// errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific Error.
const (
	// ErrInsufficientBalance indicates a transfer of more than the sender
	// holds.
	ErrInsufficientBalance = ErrorKind("ErrInsufficientBalance")

	// ErrBalanceOverflow indicates a credit would overflow a balance.
	ErrBalanceOverflow = ErrorKind("ErrBalanceOverflow")

	// ErrInvalidAddress indicates an address could not be decoded.
	ErrInvalidAddress = ErrorKind("ErrInvalidAddress")

	// ErrInvalidAmount indicates an amount could not be decoded or does not
	// fit in 256 bits.
	ErrInvalidAmount = ErrorKind("ErrInvalidAmount")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// Error identifies an error related to the ledger.  It has full support for
// errors.Is and errors.As, so the caller can ascertain the specific reason for
// the error by checking the underlying error.
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

// ledgerError creates an Error given a set of arguments.
func ledgerError(kind ErrorKind, desc string) Error {
	return Error{Err: kind, Description: desc}
}
