// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package vesting

// ErrorKind identifies a kind of error.  It has full support for errors.Is and
// errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific RuleError.
const (
	// ErrInvalidStartTime indicates a schedule that does not start in the
	// future.
	ErrInvalidStartTime = ErrorKind("ErrInvalidStartTime")

	// ErrInvalidDuration indicates a schedule with a duration shorter than
	// one second.
	ErrInvalidDuration = ErrorKind("ErrInvalidDuration")

	// ErrInvalidCliffDuration indicates a schedule whose cliff is not
	// strictly between zero and the duration.
	ErrInvalidCliffDuration = ErrorKind("ErrInvalidCliffDuration")

	// ErrCliffNotPassed indicates a claim before the cliff has passed.
	ErrCliffNotPassed = ErrorKind("ErrCliffNotPassed")

	// ErrNoClaimableTokens indicates a claim when nothing has vested since
	// the previous claim.
	ErrNoClaimableTokens = ErrorKind("ErrNoClaimableTokens")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// RuleError identifies a vesting rule violation.  It has full support for
// errors.Is and errors.As, so the caller can ascertain the specific reason for
// the error by checking the underlying error.
type RuleError struct {
	Description string
	Err         error
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e RuleError) Unwrap() error {
	return e.Err
}

// ruleError creates a RuleError given a set of arguments.
func ruleError(kind ErrorKind, desc string) RuleError {
	return RuleError{Err: kind, Description: desc}
}
