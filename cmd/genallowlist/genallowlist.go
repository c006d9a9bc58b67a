// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	flags "github.com/jessevdk/go-flags"
	"github.com/launchkit/vrfd/allowlist"
	"github.com/launchkit/vrfd/ledger"
)

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

type config struct {
	Proof string `short:"p" description:"only print the proof of the given address"`
	Root  bool   `short:"r" description:"only print the root"`
}

// output is the JSON form of a generated allowlist.  Proofs are keyed by the
// address they belong to and are accepted as is by the checkallowlist RPC.
type output struct {
	Root   string              `json:"root"`
	Proofs map[string][]string `json:"proofs"`
}

// readAddresses parses one address per line.  Blank lines and lines starting
// with # are skipped and duplicate addresses are rejected.
func readAddresses(r io.Reader) ([]ledger.Address, error) {
	var addrs []ledger.Address
	seen := make(map[ledger.Address]struct{})
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		addr, err := ledger.DecodeAddress(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if _, ok := seen[addr]; ok {
			return nil, fmt.Errorf("line %d: duplicate address %v", line,
				addr)
		}
		seen[addr] = struct{}{}
		addrs = append(addrs, addr)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return addrs, nil
}

func hashStrings(hashes []allowlist.Hash) []string {
	strs := make([]string, 0, len(hashes))
	for i := range hashes {
		strs = append(strs, hashes[i].String())
	}
	return strs
}

// generate builds the allowlist tree of the addresses along with the proof of
// every member.
func generate(addrs []ledger.Address) *output {
	tree := allowlist.NewTree(addrs)
	out := &output{
		Root:   tree.Root().String(),
		Proofs: make(map[string][]string, len(addrs)),
	}
	for _, addr := range addrs {
		proof, _ := tree.Proof(addr)
		out.Proofs[addr.String()] = hashStrings(proof)
	}
	return out
}

func main() {
	var cfg config
	parser := flags.NewParser(&cfg, flags.Default)
	parser.Usage = "[OPTIONS] [addressfile]"
	args, err := parser.Parse()
	if err != nil {
		var e *flags.Error
		if errors.As(err, &e) && e.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
	if len(args) > 1 {
		parser.WriteHelp(os.Stderr)
		os.Exit(2)
	}

	in := io.Reader(os.Stdin)
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			fatalf("%v\n", err)
		}
		defer f.Close()
		in = f
	}
	addrs, err := readAddresses(in)
	if err != nil {
		fatalf("read addresses: %v\n", err)
	}
	if len(addrs) == 0 {
		fatalf("no addresses provided\n")
	}

	out := generate(addrs)
	var result any = out
	switch {
	case cfg.Root:
		fmt.Println(out.Root)
		return

	case cfg.Proof != "":
		addr, err := ledger.DecodeAddress(cfg.Proof)
		if err != nil {
			fatalf("%v\n", err)
		}
		proof, ok := out.Proofs[addr.String()]
		if !ok {
			fatalf("address %v is not in the allowlist\n", addr)
		}
		result = proof
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fatalf("%v\n", err)
	}
}
