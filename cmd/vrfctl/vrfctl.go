// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/decred/dcrd/dcrjson/v4"
	"github.com/launchkit/vrfd/rpc/jsonrpc/types"
)

const (
	showHelpMessage = "Specify -h to show available options"
	listCmdMessage  = "Specify -l to list available commands"
)

// commandUsage displays the usage for a specific command.
func commandUsage(method string) {
	usage, err := dcrjson.MethodUsageText(types.Method(method))
	if err != nil {
		// This should never happen since the method was already checked
		// before calling this function, but be safe.
		fmt.Fprintln(os.Stderr, "Failed to obtain command usage:", err)
		return
	}

	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintf(os.Stderr, "  %s\n", usage)
}

// usage displays the general usage when the help flag is not displayed
// and an invalid command was specified.  The commandUsage function is used
// instead when a valid command was specified.
func usage(errorMessage string) {
	appName := "vrfctl"
	if len(os.Args) > 0 {
		appName = os.Args[0]
	}
	fmt.Fprintln(os.Stderr, errorMessage)
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintf(os.Stderr, "  %s [OPTIONS] <command> <args...>\n\n",
		appName)
	fmt.Fprintln(os.Stderr, showHelpMessage)
	fmt.Fprintln(os.Stderr, listCmdMessage)
}

// httpCommands returns the sorted methods that may be issued over an HTTP POST
// request.  Websocket-only commands and notifications are excluded.
func httpCommands() []string {
	var methods []string
	for _, method := range dcrjson.RegisteredMethods(types.Method("")) {
		flags, err := dcrjson.MethodUsageFlags(types.Method(method))
		if err != nil {
			continue
		}
		if flags&(dcrjson.UFWebsocketOnly|dcrjson.UFNotification) != 0 {
			continue
		}
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return methods
}

// listCommands writes the usage of every command available over HTTP to w.
func listCommands(w io.Writer) {
	fmt.Fprintln(w, "Commands:")
	for _, method := range httpCommands() {
		usage, err := dcrjson.MethodUsageText(types.Method(method))
		if err != nil {
			fmt.Fprintf(w, "  %s (usage unavailable: %v)\n", method, err)
			continue
		}
		fmt.Fprintf(w, "  %s\n", usage)
	}
}

// readArgs replaces every parameter equal to "-" with the next unread line from
// r.  Surrounding whitespace is trimmed from the read lines.
func readArgs(args []string, r io.Reader) ([]string, error) {
	var scanner *bufio.Scanner
	params := make([]string, 0, len(args))
	for _, arg := range args {
		if arg != "-" {
			params = append(params, arg)
			continue
		}

		if scanner == nil {
			scanner = bufio.NewScanner(r)
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("failed to read data from stdin: %w",
					err)
			}
			return nil, errors.New("not enough lines provided on stdin")
		}
		params = append(params, strings.TrimSpace(scanner.Text()))
	}
	return params, nil
}

// newCommand creates and marshals the JSON-RPC request for the provided
// method and string parameters.
func newCommand(method string, params []string) ([]byte, error) {
	args := make([]interface{}, 0, len(params))
	for _, p := range params {
		args = append(args, p)
	}
	cmd, err := dcrjson.NewCmd(types.Method(method), args...)
	if err != nil {
		return nil, err
	}
	return dcrjson.MarshalCmd("1.0", 1, cmd)
}

// formatResult returns the display form of a JSON-RPC result.  Strings are
// printed without quotes and objects and arrays are indented.
func formatResult(result []byte) (string, error) {
	if len(result) == 0 || string(result) == "null" {
		return "", nil
	}

	switch result[0] {
	case '{', '[':
		var dst bytes.Buffer
		if err := json.Indent(&dst, result, "", "  "); err != nil {
			return "", fmt.Errorf("failed to format result: %w", err)
		}
		return dst.String(), nil

	case '"':
		var str string
		if err := json.Unmarshal(result, &str); err != nil {
			return "", fmt.Errorf("failed to unmarshal result: %w", err)
		}
		return str, nil
	}

	return string(result), nil
}

func main() {
	cfg, args, err := loadConfig()
	if err != nil {
		if errors.Is(err, errListCommandsNeeded) {
			listCommands(os.Stdout)
			os.Exit(0)
		}
		os.Exit(1)
	}
	if len(args) < 1 {
		usage("No command specified")
		os.Exit(1)
	}

	// Ensure the specified method identifies a valid registered command and
	// is one of the usable types.
	method := args[0]
	usageFlags, err := dcrjson.MethodUsageFlags(types.Method(method))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unrecognized command '%s'\n", method)
		fmt.Fprintln(os.Stderr, listCmdMessage)
		os.Exit(1)
	}
	if usageFlags&(dcrjson.UFWebsocketOnly|dcrjson.UFNotification) != 0 {
		fmt.Fprintf(os.Stderr, "The '%s' command can only be used via "+
			"websockets\n", method)
		fmt.Fprintln(os.Stderr, listCmdMessage)
		os.Exit(1)
	}

	params, err := readArgs(args[1:], os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Attempt to create the appropriate command using the arguments provided
	// by the user.
	marshalledJSON, err := newCommand(method, params)
	if err != nil {
		// Show the error along with its error code when it's a
		// dcrjson.Error as it realistically will always be since the
		// NewCmd function is only supposed to return errors of that type.
		var jerr dcrjson.Error
		if errors.As(err, &jerr) {
			fmt.Fprintf(os.Stderr, "%s command: %v (code: %v)\n",
				method, err, jerr.Err)
			commandUsage(method)
			os.Exit(1)
		}

		// The error is not a dcrjson.Error and this really should not
		// happen.  Nevertheless, fallback to just showing the error if it
		// should happen due to a bug in the package.
		fmt.Fprintf(os.Stderr, "%s command: %v\n", method, err)
		commandUsage(method)
		os.Exit(1)
	}

	// Prompt for the password when none was configured.
	if cfg.RPCPassword == "" {
		cfg.RPCPassword, err = promptPassword()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	// Send the JSON-RPC request to the server using the user-specified
	// connection configuration.
	result, err := sendPostRequest(marshalledJSON, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	output, err := formatResult(result)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if output != "" {
		fmt.Println(output)
	}
}
