// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// NOTE: This file is intended to house the RPC websocket notifications that are
// supported by the vrfd server.

package types

import "github.com/decred/dcrd/dcrjson/v4"

const (
	// RandomNumberNtfnMethod is the method used for notifications from the
	// server that a random number has been served.
	RandomNumberNtfnMethod Method = "randomnumber"

	// BatchAppendedNtfnMethod is the method used for notifications from the
	// server that an oracle batch has been appended to the queue.
	BatchAppendedNtfnMethod Method = "batchappended"
)

// RandomNumberNtfn defines the randomnumber JSON-RPC notification.
type RandomNumberNtfn struct {
	Value  uint64 `json:"value"`
	Bound  uint64 `json:"bound"`
	Source string `json:"source"`
}

// NewRandomNumberNtfn returns a new instance which can be used to issue a
// randomnumber JSON-RPC notification.
func NewRandomNumberNtfn(value, bound uint64, source string) *RandomNumberNtfn {
	return &RandomNumberNtfn{
		Value:  value,
		Bound:  bound,
		Source: source,
	}
}

// BatchAppendedNtfn defines the batchappended JSON-RPC notification.
type BatchAppendedNtfn struct {
	RequestID string `json:"requestid"`
	Index     uint64 `json:"index"`
}

// NewBatchAppendedNtfn returns a new instance which can be used to issue a
// batchappended JSON-RPC notification.
func NewBatchAppendedNtfn(requestID string, index uint64) *BatchAppendedNtfn {
	return &BatchAppendedNtfn{
		RequestID: requestID,
		Index:     index,
	}
}

func init() {
	// The commands in this file are only usable by websockets and are
	// notifications.
	flags := dcrjson.UFWebsocketOnly | dcrjson.UFNotification

	dcrjson.MustRegister(RandomNumberNtfnMethod, (*RandomNumberNtfn)(nil), flags)
	dcrjson.MustRegister(BatchAppendedNtfnMethod, (*BatchAppendedNtfn)(nil), flags)
}
