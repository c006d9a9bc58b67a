// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// entrypoint is the container entry point for vrfd and vrfctl.  It places the
// application data of both under the directory named by VRFD_DATA and forwards
// SIGTERM to the launched process so the daemon can shut down gracefully.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
)

// defaultApp is the application assumed when either no arguments are
// specified or the first argument starts with a -.
const defaultApp = "vrfd"

// environment houses the container settings that influence the arguments
// passed to the launched application.
type environment struct {
	dataDir       string
	fileLogging   bool
	vrfctlHasConf bool
}

// loadEnvironment reads the container settings from the process environment.
func loadEnvironment() *environment {
	dataDir := os.Getenv("VRFD_DATA")
	fileLogging := false
	switch os.Getenv("VRFD_FILE_LOGGING") {
	case "true", "t", "1":
		fileLogging = true
	}
	confFile := filepath.Join(dataDir, ".vrfctl", "vrfctl.conf")
	_, err := os.Stat(confFile)
	return &environment{
		dataDir:       dataDir,
		fileLogging:   fileLogging,
		vrfctlHasConf: err == nil,
	}
}

// containerArgs returns the application to launch along with its arguments
// adjusted for running in a container.
func containerArgs(env *environment, args []string) (string, []string) {
	app := defaultApp
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		app, args = args[0], args[1:]
	}

	vrfdAppData := filepath.Join(env.dataDir, ".vrfd")
	switch app {
	case "vrfd":
		newArgs := make([]string, 0, len(args)+3)
		newArgs = append(newArgs, args...)
		if !env.fileLogging {
			newArgs = append(newArgs, "--nofilelogging")
		}
		newArgs = append(newArgs, "--appdata="+vrfdAppData)
		newArgs = append(newArgs, "--rpclisten=")
		return app, newArgs

	case "vrfctl":
		// Prepend the arguments so the caller may override them.
		newArgs := make([]string, 0, len(args)+2)
		newArgs = append(newArgs, "--rpccert="+
			filepath.Join(vrfdAppData, "rpc.cert"))
		if env.vrfctlHasConf {
			newArgs = append(newArgs, "--configfile="+
				filepath.Join(env.dataDir, ".vrfctl", "vrfctl.conf"))
		}
		newArgs = append(newArgs, args...)
		return app, newArgs
	}

	return app, args
}

func main() {
	exeName := filepath.Base(os.Args[0])
	if len(os.Args) < 2 || os.Args[1] == "" || os.Args[1][0] == '-' {
		fmt.Printf("%s: assuming arguments for %s\n", exeName, defaultApp)
	}
	app, args := containerArgs(loadEnvironment(), os.Args[1:])

	// Run the command while redirecting stdin, stdout, and stderr to the
	// parent process and forwarding SIGTERM to the child.
	cmd := exec.Command(app, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	go func() {
		interruptChannel := make(chan os.Signal, 1)
		signal.Notify(interruptChannel, syscall.SIGTERM)
		for sig := range interruptChannel {
			if cmd.Process != nil {
				cmd.Process.Signal(sig)
			}
		}
	}()
	if err := cmd.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if cmd.ProcessState != nil {
			os.Exit(cmd.ProcessState.ExitCode())
		}
		os.Exit(1)
	}
}
