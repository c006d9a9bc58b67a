// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package vrfqueue

import (
	"errors"
	"io"
	"testing"
)

// TestErrorKindStringer tests the stringized output for the ErrorKind type.
func TestErrorKindStringer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   ErrorKind
		want string
	}{
		{ErrZeroBatchSize, "ErrZeroBatchSize"},
		{ErrQueueLengthExceedsLimit, "ErrQueueLengthExceedsLimit"},
		{ErrBatchSizeMismatch, "ErrBatchSizeMismatch"},
		{ErrBatchNotFound, "ErrBatchNotFound"},
		{ErrInvalidBound, "ErrInvalidBound"},
	}

	for i, test := range tests {
		result := test.in.Error()
		if result != test.want {
			t.Errorf("#%d: got: %s want: %s", i, result, test.want)
			continue
		}
	}
}

// TestError tests the error output for the Error type.
func TestError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   Error
		want string
	}{{
		Error{Description: "some error"},
		"some error",
	}, {
		Error{Description: "human-readable error"},
		"human-readable error",
	}}

	for i, test := range tests {
		result := test.in.Error()
		if result != test.want {
			t.Errorf("#%d: got: %s want: %s", i, result, test.want)
			continue
		}
	}
}

// TestErrorKindIsAs ensures both ErrorKind and Error can be identified as being
// a specific error kind via errors.Is and unwrapped via errors.As.
func TestErrorKindIsAs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
		wantAs    ErrorKind
	}{{
		name:      "ErrBatchNotFound == ErrBatchNotFound",
		err:       ErrBatchNotFound,
		target:    ErrBatchNotFound,
		wantMatch: true,
		wantAs:    ErrBatchNotFound,
	}, {
		name:      "Error.ErrBatchNotFound == ErrBatchNotFound",
		err:       queueError(ErrBatchNotFound, ""),
		target:    ErrBatchNotFound,
		wantMatch: true,
		wantAs:    ErrBatchNotFound,
	}, {
		name:      "Error.ErrBatchNotFound == Error.ErrBatchNotFound",
		err:       queueError(ErrBatchNotFound, ""),
		target:    queueError(ErrBatchNotFound, ""),
		wantMatch: true,
		wantAs:    ErrBatchNotFound,
	}, {
		name:      "ErrInvalidBound != ErrBatchNotFound",
		err:       ErrInvalidBound,
		target:    ErrBatchNotFound,
		wantMatch: false,
		wantAs:    ErrInvalidBound,
	}, {
		name:      "Error.ErrInvalidBound != Error.ErrBatchNotFound",
		err:       queueError(ErrInvalidBound, ""),
		target:    queueError(ErrBatchNotFound, ""),
		wantMatch: false,
		wantAs:    ErrInvalidBound,
	}, {
		name:      "Error.ErrZeroBatchSize != io.EOF",
		err:       queueError(ErrZeroBatchSize, ""),
		target:    io.EOF,
		wantMatch: false,
		wantAs:    ErrZeroBatchSize,
	}}

	for _, test := range tests {
		// Ensure the error matches or not depending on the expected result.
		result := errors.Is(test.err, test.target)
		if result != test.wantMatch {
			t.Errorf("%s: incorrect error identification -- got %v, want %v",
				test.name, result, test.wantMatch)
			continue
		}

		// Ensure the underlying error kind can be unwrapped and is the
		// expected kind.
		var kind ErrorKind
		if !errors.As(test.err, &kind) {
			t.Errorf("%s: unable to unwrap to error kind", test.name)
			continue
		}
		if kind != test.wantAs {
			t.Errorf("%s: unexpected unwrapped error kind -- got %v, want %v",
				test.name, kind, test.wantAs)
			continue
		}
	}
}
