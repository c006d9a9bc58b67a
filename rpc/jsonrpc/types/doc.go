// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package types implements concrete types for marshalling to and from the vrfd
JSON-RPC commands, return values, and notifications.

When communicating via the JSON-RPC protocol, all requests and responses must be
marshalled to and from the wire in the appropriate format.  This package
provides data structures and primitives that are registered with dcrjson to ease
this process.

# Marshalling and Unmarshalling

The types in this package map to the required parts of the protocol as discussed
in the dcrjson documentation

  - Request Objects (type Request)
  - Commands (type <Foo>Cmd)
  - Notifications (type <Foo>Ntfn)
  - Response Objects (type Response)
  - Result (type <Foo>Result)

Unmarshalling a received Request object is a two step process:
 1. Unmarshal the raw bytes into a dcrjson.Request struct instance via
    json.Unmarshal
 2. Use dcrjson.ParseParams on the Method and Params fields of the unmarshalled
    Request to create a concrete command or notification instance with all
    struct fields set accordingly.

# Conventions

Addresses are 20-byte hex strings with an optional 0x prefix.  Token amounts
are decimal strings since they may exceed 64 bits.  Oracle words and Merkle
hashes are 32-byte hex strings.  The asset name "native" selects the native
coin wherever an asset is expected.

# Command Creation

This package provides two approaches for creating a new command.  This first,
and preferred, method is to use one of the New<Foo>Cmd functions.  This allows
static compile-time checking to help ensure the parameters stay in sync with
the struct definitions.

The second approach is the dcrjson.NewCmd function which takes a method
(command) name and variable arguments.  Since this package registers all of its
types with dcrjson, the function will recognize them and includes full checking
to ensure the parameters are accurate according to provided method.  It is
quite useful for user-supplied commands such as those of vrfctl.
*/
package types
