// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package vrfqueue buffers batches of verifiable random words delivered by an
asynchronous oracle and serves bounded random numbers from them synchronously.

An oracle only answers a request for random words after an unbounded delay and
through a separate fulfillment call.  Callers, on the other hand, need a
bounded random number immediately.  The Generator bridges the two by keeping
an append-only buffer of equally sized batches, consuming the buffered words
strictly in the order the batches were appended, and asking the oracle for the
next batch as soon as more than half of the batch currently being consumed is
used up.

# Refill requests

Each batch issues at most one refill request.  The request is handed to the
configured Oracle and never waited on.  A fulfillment with the configured
number of words appends a new batch and clears the outstanding request marker
regardless of the order in which requests were issued.

# Fallback mode

When every buffered word has been consumed the generator does not fail or
block.  It derives numbers from the latest sequencer context instead (see
FallbackSource) until a new batch is appended, at which point consumption
resumes with that batch.  Fallback numbers are predictable to whoever controls
the sequencer and should be treated as a degraded mode.

# Storage

Batches and the consumption cursor live in a BatchStore.  MemBatchStore keeps
them in memory while other implementations may persist them so a restarted
generator resumes from where it left off.

# Errors

Errors returned by this package are of type vrfqueue.Error and wrap an
ErrorKind.  This allows the caller to programmatically determine the specific
reason for a failure with errors.Is and errors.As.  Buffer exhaustion is never
reported as an error.
*/
package vrfqueue
