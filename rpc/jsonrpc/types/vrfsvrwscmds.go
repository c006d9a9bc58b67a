// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// NOTE: This file is intended to house the RPC commands that are supported by
// the vrfd server, but are only available via websockets.

package types

import "github.com/decred/dcrd/dcrjson/v4"

// AuthenticateCmd defines the authenticate JSON-RPC command.
type AuthenticateCmd struct {
	Username   string
	Passphrase string
}

// NewAuthenticateCmd returns a new instance which can be used to issue an
// authenticate JSON-RPC command.
func NewAuthenticateCmd(username, passphrase string) *AuthenticateCmd {
	return &AuthenticateCmd{
		Username:   username,
		Passphrase: passphrase,
	}
}

// NotifyRandomNumbersCmd defines the notifyrandomnumbers JSON-RPC command.
type NotifyRandomNumbersCmd struct{}

// NewNotifyRandomNumbersCmd returns a new instance which can be used to issue
// a notifyrandomnumbers JSON-RPC command.
func NewNotifyRandomNumbersCmd() *NotifyRandomNumbersCmd {
	return &NotifyRandomNumbersCmd{}
}

// StopNotifyRandomNumbersCmd defines the stopnotifyrandomnumbers JSON-RPC
// command.
type StopNotifyRandomNumbersCmd struct{}

// NewStopNotifyRandomNumbersCmd returns a new instance which can be used to
// issue a stopnotifyrandomnumbers JSON-RPC command.
func NewStopNotifyRandomNumbersCmd() *StopNotifyRandomNumbersCmd {
	return &StopNotifyRandomNumbersCmd{}
}

func init() {
	// The commands in this file are only usable by websockets.
	flags := dcrjson.UFWebsocketOnly

	dcrjson.MustRegister(Method("authenticate"), (*AuthenticateCmd)(nil), flags)
	dcrjson.MustRegister(Method("notifyrandomnumbers"),
		(*NotifyRandomNumbersCmd)(nil), flags)
	dcrjson.MustRegister(Method("stopnotifyrandomnumbers"),
		(*StopNotifyRandomNumbersCmd)(nil), flags)
}
