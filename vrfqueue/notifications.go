// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package vrfqueue

import (
	"fmt"

	"github.com/decred/dcrd/chaincfg/chainhash"
)

// NotificationType represents the type of a notification message.
type NotificationType int

// Constants for the type of a notification message.
const (
	// NTRandomNumber indicates a bounded random number was produced.  The
	// notification data is a *RandomNumber.
	NTRandomNumber NotificationType = iota

	// NTRefillRequested indicates a request for a new batch of words was
	// handed to the oracle.  The notification data is a *RefillRequest.
	NTRefillRequested

	// NTBatchAppended indicates a fulfillment appended a new batch.  The
	// notification data is a *BatchAppended.
	NTBatchAppended
)

// notificationTypeStrings is a map of notification types back to their
// constant names for pretty printing.
var notificationTypeStrings = map[NotificationType]string{
	NTRandomNumber:    "NTRandomNumber",
	NTRefillRequested: "NTRefillRequested",
	NTBatchAppended:   "NTBatchAppended",
}

// String returns the NotificationType in human-readable form.
func (n NotificationType) String() string {
	if s, ok := notificationTypeStrings[n]; ok {
		return s
	}
	return fmt.Sprintf("Unknown Notification Type (%d)", int(n))
}

// Source identifies where the entropy behind a random number came from.
type Source uint8

const (
	// SourceOracle indicates the number was extracted from a buffered
	// oracle word.
	SourceOracle Source = iota

	// SourceFallback indicates the buffer was exhausted and the number was
	// derived from sequencer context instead.
	SourceFallback
)

// String returns the source in human-readable form.
func (s Source) String() string {
	switch s {
	case SourceOracle:
		return "oracle"
	case SourceFallback:
		return "fallback"
	}
	return fmt.Sprintf("unknown(%d)", uint8(s))
}

// RandomNumber is the notification data sent with NTRandomNumber.
type RandomNumber struct {
	Value  uint64
	Bound  uint64
	Source Source

	// Cursor is the position of the consumed word.  It is only meaningful
	// when Source is SourceOracle.
	Cursor Cursor
}

// RefillRequest is the notification data sent with NTRefillRequested.
type RefillRequest struct {
	RequestID chainhash.Hash
	NumWords  uint32

	// TriggerBatch is the index of the batch whose consumption crossed the
	// refill threshold.  Requests issued by Prime are not tied to a batch
	// and report the index the fulfillment is expected to occupy.
	TriggerBatch uint64
}

// BatchAppended is the notification data sent with NTBatchAppended.
type BatchAppended struct {
	RequestID chainhash.Hash
	Index     uint64

	// Solicited is false when the request ID did not match any pending
	// request issued by the generator.
	Solicited bool
}

// Notification defines notification that is sent to the caller via the
// callback function provided during the call to New and consists of a
// notification type as well as associated data that depends on the type as
// follows:
//   - NTRandomNumber:    *RandomNumber
//   - NTRefillRequested: *RefillRequest
//   - NTBatchAppended:   *BatchAppended
type Notification struct {
	Type NotificationType
	Data interface{}
}

// NotificationCallback is used for a caller to provide a callback for
// notifications about various generator events.
//
// The callback is invoked with the generator lock held so it MUST NOT call
// back into the generator.
type NotificationCallback func(*Notification)

// sendNotification sends a notification with the passed type and data if the
// caller requested notifications by providing a callback function in the call
// to New.
//
// This function MUST be called with the generator lock held.
func (g *Generator) sendNotification(typ NotificationType, data interface{}) {
	if g.notifications == nil {
		return
	}

	n := Notification{Type: typ, Data: data}
	g.notifications(&n)
}
