// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package rpcserver implements the vrfd JSON-RPC server.

Requests are accepted as HTTP POSTs to / and over websockets at /ws.  Both
require HTTP basic authentication, or the authenticate command as the first
websocket message, with either the admin or the limited credentials.  Limited
users may only call the read-only methods and getrandomnumber.

Websocket clients may additionally register for randomnumber and batchappended
notifications with notifyrandomnumbers.
*/
package rpcserver
