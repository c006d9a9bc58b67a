// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
)

// shutdownRequestChannel is used to initiate shutdown from one of the
// subsystems using the same code paths as when an interrupt signal is received.
var shutdownRequestChannel = make(chan struct{})

// interruptSignals defines the default signals to catch in order to do a proper
// shutdown.  This may be modified during init depending on the platform.
var interruptSignals = []os.Signal{os.Interrupt}

// errShutdownRequested is the cancellation cause of the context returned by
// shutdownListener when a subsystem requested the shutdown.
var errShutdownRequested = errors.New("shutdown requested")

// signalError is the cancellation cause of the context returned by
// shutdownListener when an OS signal was received.
type signalError struct {
	sig os.Signal
}

// Error implements the error interface.
func (e signalError) Error() string {
	return fmt.Sprintf("received signal (%s)", e.sig)
}

// shutdownListener listens for OS Signals such as SIGINT (Ctrl+C) and shutdown
// requests from shutdownRequestChannel.  It returns a context that is canceled
// when either signal is received.  The cause of the cancellation is available
// via context.Cause.
func shutdownListener() context.Context {
	ctx, cancel := context.WithCancelCause(context.Background())
	go func() {
		interruptChannel := make(chan os.Signal, 1)
		signal.Notify(interruptChannel, interruptSignals...)

		// Listen for initial shutdown signal and cancel the returned context.
		var cause error
		select {
		case sig := <-interruptChannel:
			cause = signalError{sig: sig}
		case <-shutdownRequestChannel:
			cause = errShutdownRequested
		}
		vrfdLog.Infof("%s.  Shutting down...", capitalize(cause.Error()))
		cancel(cause)

		// Listen for repeated signals and display a message so the user
		// knows the shutdown is in progress and the process is not
		// hung.
		for {
			select {
			case sig := <-interruptChannel:
				vrfdLog.Infof("Received signal (%s).  Already "+
					"shutting down...", sig)

			case <-shutdownRequestChannel:
				vrfdLog.Info("Shutdown requested.  Already " +
					"shutting down...")
			}
		}
	}()

	return ctx
}

// capitalize returns the provided message with an upper case first letter.
func capitalize(msg string) string {
	if msg == "" || msg[0] < 'a' || msg[0] > 'z' {
		return msg
	}
	return string(msg[0]-'a'+'A') + msg[1:]
}

// shutdownRequested returns true when the context returned by shutdownListener
// was canceled.  This simplifies early shutdown slightly since the caller can
// just use an if statement instead of a select.
func shutdownRequested(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
	}

	return false
}
