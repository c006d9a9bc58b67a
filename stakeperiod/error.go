// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package stakeperiod

// ErrorKind identifies a kind of error.  It has full support for errors.Is and
// errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific RuleError.
const (
	// ErrNotInitialized indicates the staking period was used before it
	// was initialized.
	ErrNotInitialized = ErrorKind("ErrNotInitialized")

	// ErrAlreadyInitialized indicates a second initialization.
	ErrAlreadyInitialized = ErrorKind("ErrAlreadyInitialized")

	// ErrStakingStarted indicates an operation that requires the staking
	// period to not have started yet.
	ErrStakingStarted = ErrorKind("ErrStakingStarted")

	// ErrStakingNotStarted indicates an operation that requires the
	// staking period to have started.
	ErrStakingNotStarted = ErrorKind("ErrStakingNotStarted")

	// ErrStakingEnded indicates an operation that requires the staking
	// period to not have ended yet.
	ErrStakingEnded = ErrorKind("ErrStakingEnded")

	// ErrStakingNotEnded indicates an operation that requires the staking
	// period to have ended.
	ErrStakingNotEnded = ErrorKind("ErrStakingNotEnded")

	// ErrLockDownEnded indicates an operation that requires the lock down
	// period to not have ended yet.
	ErrLockDownEnded = ErrorKind("ErrLockDownEnded")

	// ErrLockDownNotEnded indicates an operation that requires the lock
	// down period to have ended.
	ErrLockDownNotEnded = ErrorKind("ErrLockDownNotEnded")

	// ErrInvalidStart indicates a new start before the current position.
	ErrInvalidStart = ErrorKind("ErrInvalidStart")

	// ErrInvalidEnd indicates an end that is not after the start.
	ErrInvalidEnd = ErrorKind("ErrInvalidEnd")

	// ErrInvalidBonusEnd indicates a bonus end that is not after the end.
	ErrInvalidBonusEnd = ErrorKind("ErrInvalidBonusEnd")

	// ErrUnknownPhase indicates a phase name that could not be parsed.
	ErrUnknownPhase = ErrorKind("ErrUnknownPhase")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// RuleError identifies a staking period rule violation.  It has full support for
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
