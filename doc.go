// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
vrfd is a random number service for launchpad contracts written in Go.

It buffers batches of verifiable random words delivered by an oracle, serves
bounded random numbers from them in FIFO order and falls back to numbers
derived from the latest sequencer block whenever the buffer runs dry.  A refill
is requested from the oracle once half of a batch has been consumed.  vrfd also
hosts the validators that launchpad contracts compose with the random number
queue: fee forwarding, linear token vesting, a staking phase gate and a Merkle
allowlist, all operating on an in-memory ledger.

The default options are sane for most users.  This means vrfd will work 'out of
the box' for most users once a fee receiver has been configured.  However,
there are also a wide variety of flags that can be used to control it.

The following section provides a usage overview which enumerates the flags.  An
interesting point to note is that the long form of all of these options
(except -C) can be specified in a configuration file that is automatically
parsed when vrfd starts up.  By default, the configuration file is located at
~/.vrfd/vrfd.conf on POSIX-style operating systems and %LOCALAPPDATA%\vrfd\vrfd.conf
on Windows.  The -C (--configfile) flag, as shown below, can be used to override
this location.

Usage:

	vrfd [OPTIONS]

Application Options:

	-A, --appdata=               Path to application home directory
	-V, --version                Display version information and exit
	-C, --configfile=            Path to configuration file
	-b, --datadir=               Directory to store data
	    --logdir=                Directory to log output
	    --nofilelogging          Disable file logging
	    --maxlogrolls=           Number of rotated log files to keep (8)
	-d, --debuglevel=            Logging level for all subsystems {trace,
	                             debug, info, warn, error, critical} -- You may
	                             also specify
	                             <subsystem>=<level>,<subsystem2>=<level>,... to
	                             set the log level for individual subsystems --
	                             Use show to list available subsystems (info)
	    --profile=               Enable HTTP profiling on given [addr:]port --
	                             NOTE port must be between 1024 and 65535
	    --cpuprofile=            Write CPU profile to the specified file
	    --norpc                  Disable built-in RPC server
	    --rpclisten=             Add an interface/port to listen for RPC
	                             connections (default port: 9609)
	-u, --rpcuser=               Username for RPC connections
	-P, --rpcpass=               Password for RPC connections
	    --rpclimituser=          Username for limited RPC connections
	    --rpclimitpass=          Password for limited RPC connections
	    --rpccert=               File containing the certificate file
	    --rpckey=                File containing the certificate key
	    --tlscurve=              Curve to use when generating TLS keypairs
	                             {P-256, P-384, P-521} (P-256)
	    --altdnsnames=           Specify additional DNS names to use when
	                             generating the RPC server certificate
	    --notls                  Disable TLS for the RPC server
	    --rpcmaxclients=         Max number of RPC clients for standard
	                             connections (10)
	    --rpcmaxwebsockets=      Max number of RPC websocket connections (25)
	    --rpcmaxconcurrentreqs=  Max number of concurrent RPC requests that may
	                             be processed concurrently (20)
	    --batchsize=             Number of oracle words requested per batch
	                             (1 to 100) (10)
	    --oraclemindelay=        Minimum simulated delay before the oracle
	                             delivers a batch (2s)
	    --oraclemaxdelay=        Maximum simulated delay before the oracle
	                             delivers a batch (6s)
	    --oraclemanual           Do not deliver batches automatically
	    --blockinterval=         Time between blocks of the simulated
	                             sequencer (3s)
	    --feereceiver=           Address that receives every payment
	    --paymenttoken=          Asset payments are made in: native or a token
	                             address (native)
	    --vestingtoken=          Asset being vested: native or a token address
	                             (native)
	    --allowlistroot=         Merkle root of the initial allowlist
	    --staketimestamp         Interpret the staking period boundaries as
	                             unix timestamps instead of block heights
	    --stakestart=            Start of the staking period
	    --stakeend=              End of the staking period
	    --stakebonusend=         End of the lock down that follows the staking
	                             period

Help Options:

	-h, --help           Show this help message
*/
package main
