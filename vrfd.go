// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"

	"github.com/launchkit/vrfd/internal/batchdb"
	"github.com/launchkit/vrfd/internal/limits"
	"github.com/launchkit/vrfd/internal/version"
)

var cfg *config

// vrfdMain is the real main function for vrfd.  It is necessary to work around
// the fact that deferred functions do not run when os.Exit() is called.
func vrfdMain() error {
	// Load configuration and parse command line.  This function also
	// initializes logging and configures it accordingly.
	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	tcfg, _, err := loadConfig(appName)
	if err != nil {
		usageMessage := fmt.Sprintf("Use %s -h to show usage", appName)
		fmt.Fprintln(os.Stderr, err)
		var e errSuppressUsage
		if !errors.As(err, &e) {
			fmt.Fprintln(os.Stderr, usageMessage)
		}
		return err
	}
	cfg = tcfg
	defer func() {
		if logRotator != nil {
			logRotator.Close()
		}
	}()

	// Get a context that will be canceled when a shutdown signal has been
	// triggered either from an OS signal such as SIGINT (Ctrl+C) or from
	// another subsystem such as the RPC server.
	ctx := shutdownListener()
	defer vrfdLog.Info("Shutdown complete")

	// Show version and home dir at startup.
	vrfdLog.Infof("Version %s (Go version %s %s/%s)", version.Full(),
		runtime.Version(), runtime.GOOS, runtime.GOARCH)
	vrfdLog.Infof("Home dir: %s", cfg.HomeDir)
	if cfg.NoFileLogging {
		vrfdLog.Info("File logging disabled")
	}

	// Impose a soft memory limit that leaves plenty of headroom for the
	// batch cache and websocket buffers.
	const softMemLimit = 512 * (1 << 20)
	limits.SetMemoryLimit(softMemLimit)
	vrfdLog.Debugf("Soft memory limit: %d MiB", softMemLimit>>20)

	// Write cpu profile if requested.
	if cfg.CPUProfile != "" {
		f, err := os.Create(cfg.CPUProfile)
		if err != nil {
			vrfdLog.Errorf("Unable to create cpu profile: %v", err.Error())
			return err
		}
		pprof.StartCPUProfile(f)
		defer f.Close()
		defer pprof.StopCPUProfile()
	}

	// Return now if a shutdown signal was triggered.
	if shutdownRequested(ctx) {
		return nil
	}

	// Load the batch database.
	store, err := batchdb.Load(cfg.DataDir, cfg.BatchSize)
	if err != nil {
		vrfdLog.Errorf("%v", err)
		return err
	}
	defer func() {
		// Ensure the database is sync'd and closed on shutdown.
		vrfdLog.Infof("Gracefully shutting down the batch database...")
		if err := store.Close(); err != nil {
			vrfdLog.Errorf("%v", err)
		}
	}()

	// Return now if a shutdown signal was triggered.
	if shutdownRequested(ctx) {
		return nil
	}

	// Create server.
	svr, err := newServer(store)
	if err != nil {
		vrfdLog.Errorf("Unable to start server: %v", err)
		return err
	}

	// Enable the http profile server if requested.  It serves the state of
	// the server, so it is started once the server exists.
	var profiler profileServer
	defer profiler.Stop()
	if cfg.Profile != "" {
		if err := profiler.Start(cfg.Profile, svr.daemonState); err != nil {
			vrfdLog.Warnf("unable to start profile server: %v", err)
			return err
		}
	}

	if shutdownRequested(ctx) {
		return nil
	}

	// Run the server.  This will block until the context is cancelled which
	// happens when the interrupt signal is received from an OS signal or
	// shutdown is requested through one of the subsystems such as the RPC
	// server.
	svr.Run(ctx)
	srvrLog.Infof("Server shutdown complete (%v)", context.Cause(ctx))
	return nil
}

func main() {
	// Up some limits.
	if err := limits.SetLimits(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set limits: %v\n", err)
		os.Exit(1)
	}

	// Work around defer not working after os.Exit()
	if err := vrfdMain(); err != nil {
		os.Exit(1)
	}
}
