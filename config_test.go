// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/launchkit/vrfd/ledger"
	"github.com/launchkit/vrfd/stakeperiod"
)

const testFeeReceiver = "0x00000000000000000000000000000000000000fe"

// loadTestConfig invokes loadConfig with the provided command line arguments
// in a fresh application home directory so there are no external influences
// from default config files.  File logging is always disabled.
func loadTestConfig(t *testing.T, args ...string) (*config, error) {
	t.Helper()

	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = append([]string{"vrfd", "--appdata=" + t.TempDir(),
		"--nofilelogging"}, args...)
	cfg, _, err := loadConfig("vrfd")
	return cfg, err
}

// TestLoadConfig ensures the defaults are applied when only the required
// options are provided.
func TestLoadConfig(t *testing.T) {
	cfg, err := loadTestConfig(t, "--feereceiver="+testFeeReceiver)
	if err != nil {
		t.Fatalf("Failed to load vrfd config: %v", err)
	}

	if cfg.BatchSize != defaultBatchSize {
		t.Errorf("unexpected batch size: got %d, want %d", cfg.BatchSize,
			defaultBatchSize)
	}
	if !cfg.DisableRPC {
		t.Error("RPC server is not disabled without credentials")
	}
	if len(cfg.RPCListeners) != 0 {
		t.Errorf("unexpected RPC listeners: %v", cfg.RPCListeners)
	}
	if cfg.paymentToken != ledger.NativeAsset {
		t.Errorf("unexpected payment token %v", cfg.paymentToken)
	}
	if cfg.stakePeriod != nil {
		t.Errorf("unexpected staking period %+v", cfg.stakePeriod)
	}
	if got := filepath.Dir(cfg.DataDir); got != cfg.HomeDir {
		t.Errorf("data dir %q is not within the home dir %q", cfg.DataDir,
			cfg.HomeDir)
	}

	// A default config file is created in the home directory.
	if !fileExists(filepath.Join(cfg.HomeDir, defaultConfigFilename)) {
		t.Error("default config file was not created")
	}
}

// TestLoadConfigRPCListeners ensures the RPC server listens on the loopback
// addresses by default once credentials are configured and that the default
// port is added to listen addresses that lack one.
func TestLoadConfigRPCListeners(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{{
		name: "defaults",
		want: []string{"127.0.0.1:9609", "[::1]:9609"},
	}, {
		name: "missing port and duplicates",
		args: []string{"--rpclisten=10.0.0.1", "--rpclisten=10.0.0.1:9609",
			"--rpclisten=:8000"},
		want: []string{"10.0.0.1:9609", ":8000"},
	}}

	for _, test := range tests {
		args := append([]string{"--feereceiver=" + testFeeReceiver,
			"--rpcuser=user", "--rpcpass=pass"}, test.args...)
		cfg, err := loadTestConfig(t, args...)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", test.name, err)
			continue
		}
		if cfg.DisableRPC {
			t.Errorf("%s: RPC server disabled", test.name)
			continue
		}
		if !reflect.DeepEqual(cfg.RPCListeners, test.want) {
			t.Errorf("%s: unexpected listeners: got %v, want %v", test.name,
				cfg.RPCListeners, test.want)
		}
	}
}

// TestLoadConfigParsedOptions ensures the ledger and validator options are
// parsed into their native forms.
func TestLoadConfigParsedOptions(t *testing.T) {
	const token = "0x0000000000000000000000000000000000000070"
	const root = "0x1111111111111111111111111111111111111111111111111111111111111111"
	cfg, err := loadTestConfig(t, "--feereceiver="+testFeeReceiver,
		"--paymenttoken="+token, "--vestingtoken=NATIVE",
		"--allowlistroot="+root, "--staketimestamp", "--stakestart=100",
		"--stakeend=200", "--stakebonusend=300", "--batchsize=100")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantToken, _ := ledger.DecodeAddress(token)
	if cfg.paymentToken != wantToken {
		t.Errorf("unexpected payment token: got %v, want %v",
			cfg.paymentToken, wantToken)
	}
	if cfg.vestingToken != ledger.NativeAsset {
		t.Errorf("unexpected vesting token: got %v", cfg.vestingToken)
	}
	if got := cfg.allowlistRoot.String(); got != root {
		t.Errorf("unexpected allowlist root: got %s, want %s", got, root)
	}
	wantPeriod := &stakeperiod.Period{
		IsTimestamp: true,
		Start:       100,
		End:         200,
		BonusEnd:    300,
	}
	if !reflect.DeepEqual(cfg.stakePeriod, wantPeriod) {
		t.Errorf("unexpected staking period: got %s want %s",
			spew.Sdump(cfg.stakePeriod), spew.Sdump(wantPeriod))
	}
	feeReceiver, _ := ledger.DecodeAddress(testFeeReceiver)
	if cfg.feeReceiver != feeReceiver {
		t.Errorf("unexpected fee receiver: got %v", cfg.feeReceiver)
	}
}

// TestLoadConfigErrors ensures invalid configurations are rejected.
func TestLoadConfigErrors(t *testing.T) {
	fee := "--feereceiver=" + testFeeReceiver
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{{
		name:    "missing fee receiver",
		args:    nil,
		wantErr: "feereceiver option must be specified",
	}, {
		name:    "invalid fee receiver",
		args:    []string{"--feereceiver=0x1234"},
		wantErr: "invalid feereceiver",
	}, {
		name:    "zero batch size",
		args:    []string{fee, "--batchsize=0"},
		wantErr: "batchsize option",
	}, {
		name:    "batch size over limit",
		args:    []string{fee, "--batchsize=101"},
		wantErr: "batchsize option",
	}, {
		name:    "inverted oracle delays",
		args:    []string{fee, "--oraclemindelay=5s", "--oraclemaxdelay=1s"},
		wantErr: "oracle delays",
	}, {
		name:    "zero block interval",
		args:    []string{fee, "--blockinterval=0s"},
		wantErr: "blockinterval option",
	}, {
		name: "same rpc username",
		args: []string{fee, "--rpcuser=user", "--rpcpass=pass",
			"--rpclimituser=user", "--rpclimitpass=other"},
		wantErr: "same username",
	}, {
		name: "same rpc password",
		args: []string{fee, "--rpcuser=user", "--rpcpass=pass",
			"--rpclimituser=limit", "--rpclimitpass=pass"},
		wantErr: "same password",
	}, {
		name: "notls on public interface",
		args: []string{fee, "--rpcuser=user", "--rpcpass=pass", "--notls",
			"--rpclisten=0.0.0.0"},
		wantErr: "--notls option may not be used",
	}, {
		name:    "unknown tls curve",
		args:    []string{fee, "--tlscurve=P-224"},
		wantErr: "unsupported curve",
	}, {
		name:    "invalid payment token",
		args:    []string{fee, "--paymenttoken=bogus"},
		wantErr: "invalid paymenttoken",
	}, {
		name:    "invalid allowlist root",
		args:    []string{fee, "--allowlistroot=0x12"},
		wantErr: "invalid allowlistroot",
	}, {
		name:    "invalid debug level",
		args:    []string{fee, "--debuglevel=bogus"},
		wantErr: "debug level [bogus] is invalid",
	}, {
		name:    "invalid profile port",
		args:    []string{fee, "--profile=80"},
		wantErr: "invalid profile address",
	}}

	for _, test := range tests {
		_, err := loadTestConfig(t, test.args...)
		if err == nil {
			t.Errorf("%s: did not receive expected error", test.name)
			continue
		}
		if !strings.Contains(err.Error(), test.wantErr) {
			t.Errorf("%s: unexpected error: got %q, want it to contain %q",
				test.name, err, test.wantErr)
		}
	}

	// Reset the log levels changed by the cases above.
	setLogLevels(defaultLogLevel)
}

// TestDefaultAltDNSNames ensures there are no additional DNS names by default.
func TestDefaultAltDNSNames(t *testing.T) {
	cfg, err := loadTestConfig(t, "--feereceiver="+testFeeReceiver)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.AltDNSNames) != 0 {
		t.Errorf("Invalid default value for altdnsnames: %s", cfg.AltDNSNames)
	}
}

// TestAltDNSNamesWithEnv ensures additional DNS names are read from the
// environment.
func TestAltDNSNamesWithEnv(t *testing.T) {
	t.Setenv("VRFD_ALT_DNSNAMES", "hostname1,hostname2")
	cfg, err := loadTestConfig(t, "--feereceiver="+testFeeReceiver)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hostnames := strings.Join(cfg.AltDNSNames, ",")
	if hostnames != "hostname1,hostname2" {
		t.Errorf("altDNSNames should be %s but was %s", "hostname1,hostname2",
			hostnames)
	}
}

// TestAltDNSNamesWithArg ensures quoted and comma separated additional DNS
// names on the command line are split into individual names.
func TestAltDNSNamesWithArg(t *testing.T) {
	cfg, err := loadTestConfig(t, "--feereceiver="+testFeeReceiver,
		"--altdnsnames=\"hostname1,hostname2\"")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hostnames := strings.Join(cfg.AltDNSNames, ",")
	if hostnames != "hostname1,hostname2" {
		t.Errorf("altDNSNames should be %s but was %s", "hostname1,hostname2",
			hostnames)
	}
}

// TestCleanAndExpandPath ensures environment variables and the home directory
// are expanded.
func TestCleanAndExpandPath(t *testing.T) {
	t.Setenv("VRFD_TEST_DIR", "/tmp/vrfd")

	tests := []struct {
		path string
		want string
	}{
		{path: "", want: ""},
		{path: "$VRFD_TEST_DIR/data", want: "/tmp/vrfd/data"},
		{path: "/tmp//vrfd/../vrfd/logs", want: "/tmp/vrfd/logs"},
	}
	for _, test := range tests {
		if got := cleanAndExpandPath(test.path); got != filepath.FromSlash(test.want) {
			t.Errorf("cleanAndExpandPath(%q): got %q, want %q", test.path,
				got, test.want)
		}
	}

	// A leading ~ is replaced by an absolute path.
	if got := cleanAndExpandPath("~/vrfd"); strings.HasPrefix(got, "~") {
		t.Errorf("home directory not expanded: %q", got)
	}
}

// TestProfileAddr ensures bare ports are bound to localhost and profile
// addresses outside of the allowed port range are rejected.
func TestProfileAddr(t *testing.T) {
	tests := []struct {
		addr    string
		want    string
		wantErr bool
	}{
		{addr: "6061", want: "127.0.0.1:6061"},
		{addr: "[::1]:6061", want: "[::1]:6061"},
		{addr: "1023", want: "127.0.0.1:1023", wantErr: true},
		{addr: "127.0.0.1:65536", want: "127.0.0.1:65536", wantErr: true},
		{addr: "localhost", want: "localhost", wantErr: true},
	}
	for _, test := range tests {
		got := portToLocalHostAddr(test.addr)
		if got != test.want {
			t.Errorf("portToLocalHostAddr(%q): got %q, want %q", test.addr,
				got, test.want)
			continue
		}
		err := validateProfileAddr(got)
		if (err != nil) != test.wantErr {
			t.Errorf("validateProfileAddr(%q): unexpected error state: %v",
				got, err)
		}
	}
}
