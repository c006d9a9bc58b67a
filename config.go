// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"crypto/elliptic"
	"errors"
	"fmt"
	"net"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/decred/dcrd/dcrutil/v4"
	flags "github.com/jessevdk/go-flags"
	"github.com/launchkit/vrfd/allowlist"
	"github.com/launchkit/vrfd/internal/chainclock"
	"github.com/launchkit/vrfd/internal/version"
	"github.com/launchkit/vrfd/ledger"
	"github.com/launchkit/vrfd/oracle"
	"github.com/launchkit/vrfd/sampleconfig"
	"github.com/launchkit/vrfd/stakeperiod"
	"github.com/launchkit/vrfd/vrfqueue"
)

const (
	defaultConfigFilename       = "vrfd.conf"
	defaultDataDirname          = "data"
	defaultLogLevel             = "info"
	defaultLogDirname           = "logs"
	defaultLogFilename          = "vrfd.log"
	defaultMaxLogRolls          = 8
	defaultRPCPort              = "9609"
	defaultMaxRPCClients        = 10
	defaultMaxRPCWebsockets     = 25
	defaultMaxRPCConcurrentReqs = 20
	defaultTLSCurve             = "P-256"
	defaultBatchSize            = 10
	defaultOracleMinDelay       = 2 * time.Second
	defaultOracleMaxDelay       = 6 * time.Second
	defaultAssetName            = "native"
)

var (
	defaultHomeDir    = dcrutil.AppDataDir("vrfd", false)
	defaultConfigFile = filepath.Join(defaultHomeDir, defaultConfigFilename)
	defaultDataDir    = filepath.Join(defaultHomeDir, defaultDataDirname)
	defaultLogDir     = filepath.Join(defaultHomeDir, defaultLogDirname)
	defaultRPCKeyFile = filepath.Join(defaultHomeDir, "rpc.key")
	defaultRPCCert    = filepath.Join(defaultHomeDir, "rpc.cert")
)

// config defines the configuration options for vrfd.
//
// See loadConfig for details on the configuration load process.
type config struct {
	// General application behavior.
	HomeDir       string `short:"A" long:"appdata" description:"Path to application home directory" env:"VRFD_APPDATA"`
	ShowVersion   bool   `short:"V" long:"version" description:"Display version information and exit"`
	ConfigFile    string `short:"C" long:"configfile" description:"Path to configuration file"`
	DataDir       string `short:"b" long:"datadir" description:"Directory to store data"`
	LogDir        string `long:"logdir" description:"Directory to log output"`
	NoFileLogging bool   `long:"nofilelogging" description:"Disable file logging"`
	MaxLogRolls   int    `long:"maxlogrolls" description:"Number of rotated log files to keep"`
	DebugLevel    string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`
	Profile       string `long:"profile" description:"Enable HTTP profiling and queue state at /debug/vrfd on given [addr:]port -- NOTE port must be between 1024 and 65535"`
	CPUProfile    string `long:"cpuprofile" description:"Write CPU profile to the specified file"`

	// RPC server options and policy.
	DisableRPC           bool     `long:"norpc" description:"Disable built-in RPC server -- NOTE: The RPC server is disabled by default if no rpcuser/rpcpass or rpclimituser/rpclimitpass is specified"`
	RPCListeners         []string `long:"rpclisten" description:"Add an interface/port to listen for RPC connections (default port: 9609)"`
	RPCUser              string   `short:"u" long:"rpcuser" description:"Username for RPC connections"`
	RPCPass              string   `short:"P" long:"rpcpass" default-mask:"-" description:"Password for RPC connections"`
	RPCLimitUser         string   `long:"rpclimituser" description:"Username for limited RPC connections"`
	RPCLimitPass         string   `long:"rpclimitpass" default-mask:"-" description:"Password for limited RPC connections"`
	RPCCert              string   `long:"rpccert" description:"File containing the certificate file"`
	RPCKey               string   `long:"rpckey" description:"File containing the certificate key"`
	TLSCurve             string   `long:"tlscurve" description:"Curve to use when generating TLS keypairs {P-256, P-384, P-521}"`
	AltDNSNames          []string `long:"altdnsnames" description:"Specify additional DNS names to use when generating the RPC server certificate" env:"VRFD_ALT_DNSNAMES" env-delim:","`
	DisableTLS           bool     `long:"notls" description:"Disable TLS for the RPC server -- NOTE: This is only allowed if the RPC server is bound to localhost"`
	RPCMaxClients        int      `long:"rpcmaxclients" description:"Max number of RPC clients for standard connections"`
	RPCMaxWebsockets     int      `long:"rpcmaxwebsockets" description:"Max number of RPC websocket connections"`
	RPCMaxConcurrentReqs int      `long:"rpcmaxconcurrentreqs" description:"Max number of concurrent RPC requests that may be processed concurrently"`

	// Random number queue options.
	BatchSize      uint32        `long:"batchsize" description:"Number of oracle words requested per batch (1 to 100)"`
	OracleMinDelay time.Duration `long:"oraclemindelay" description:"Minimum simulated delay before the oracle delivers a batch"`
	OracleMaxDelay time.Duration `long:"oraclemaxdelay" description:"Maximum simulated delay before the oracle delivers a batch"`
	OracleManual   bool          `long:"oraclemanual" description:"Do not deliver batches automatically -- words must be supplied with the fulfillrandomwords RPC"`
	BlockInterval  time.Duration `long:"blockinterval" description:"Time between blocks of the simulated sequencer"`

	// Ledger and validator options.
	FeeReceiver    string `long:"feereceiver" description:"Address that receives every payment"`
	PaymentToken   string `long:"paymenttoken" description:"Asset payments are made in: native or a token address"`
	VestingToken   string `long:"vestingtoken" description:"Asset being vested: native or a token address"`
	AllowlistRoot  string `long:"allowlistroot" description:"Merkle root of the initial allowlist"`
	StakeTimestamp bool   `long:"staketimestamp" description:"Interpret the staking period boundaries as unix timestamps instead of block heights"`
	StakeStart     int64  `long:"stakestart" description:"Start of the staking period"`
	StakeEnd       int64  `long:"stakeend" description:"End of the staking period -- the period is left uninitialized when unset"`
	StakeBonusEnd  int64  `long:"stakebonusend" description:"End of the lock down that follows the staking period"`

	// The following fields are parsed from the options above.
	tlsCurve      elliptic.Curve
	feeReceiver   ledger.Address
	paymentToken  ledger.Address
	vestingToken  ledger.Address
	allowlistRoot allowlist.Hash
	stakePeriod   *stakeperiod.Period
}

// errSuppressUsage signifies that an error that happened during the initial
// configuration phase should suppress the usage output since it was not caused
// by the user.
type errSuppressUsage string

// Error implements the error interface.
func (e errSuppressUsage) Error() string {
	return string(e)
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Nothing to do when no path is given.
	if path == "" {
		return path
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows cmd.exe-style
	// %VARIABLE%, but the variables can still be expanded via POSIX-style
	// $VARIABLE.
	path = os.ExpandEnv(path)

	if !strings.HasPrefix(path, "~") {
		return filepath.Clean(path)
	}

	// Expand initial ~ to the current user's home directory, or ~otheruser to
	// otheruser's home directory.  On Windows, both forward and backward
	// slashes can be used.
	path = path[1:]

	var pathSeparators string
	if runtime.GOOS == "windows" {
		pathSeparators = string(os.PathSeparator) + "/"
	} else {
		pathSeparators = string(os.PathSeparator)
	}

	userName := ""
	if i := strings.IndexAny(path, pathSeparators); i != -1 {
		userName = path[:i]
		path = path[i:]
	}

	homeDir := ""
	var u *user.User
	var err error
	if userName == "" {
		u, err = user.Current()
	} else {
		u, err = user.Lookup(userName)
	}
	if err == nil {
		homeDir = u.HomeDir
	}
	// Fallback to CWD if user lookup fails or user has no home directory.
	if homeDir == "" {
		homeDir = "."
	}

	return filepath.Join(homeDir, path)
}

// normalizeAddress returns addr with the passed default port appended if
// there is not already a port specified.
func normalizeAddress(addr, defaultPort string) string {
	_, _, err := net.SplitHostPort(addr)
	if err != nil && defaultPort != "" {
		return net.JoinHostPort(addr, defaultPort)
	}
	return addr
}

// normalizeAddresses returns a new slice with all the passed peer addresses
// normalized with the given default port, and all duplicates removed.
func normalizeAddresses(addrs []string, defaultPort string) []string {
	result := make([]string, 0, len(addrs))
	seen := make(map[string]struct{}, len(addrs))
	for _, addr := range addrs {
		addr = normalizeAddress(addr, defaultPort)
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		result = append(result, addr)
	}
	return result
}

// isLoopback returns whether the host of the provided listen address is
// localhost or a loopback IP address.
func isLoopback(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// tlsCurve returns the elliptic curve with the provided name.
func tlsCurve(curveID string) (elliptic.Curve, error) {
	switch curveID {
	case "P-256":
		return elliptic.P256(), nil
	case "P-384":
		return elliptic.P384(), nil
	case "P-521":
		return elliptic.P521(), nil
	}
	return nil, fmt.Errorf("unsupported curve %q", curveID)
}

// parseAsset decodes an asset option that is either the native coin or the
// address of a token.
func parseAsset(s string) (ledger.Address, error) {
	if s == "" || strings.EqualFold(s, defaultAssetName) {
		return ledger.NativeAsset, nil
	}
	return ledger.DecodeAddress(s)
}

// splitAltDNSNames expands comma separated entries and strips any quoting the
// shell left in place.
func splitAltDNSNames(names []string) []string {
	result := make([]string, 0, len(names))
	for _, entry := range names {
		for _, name := range strings.Split(entry, ",") {
			name = strings.Trim(strings.TrimSpace(name), `"'`)
			if name != "" {
				result = append(result, name)
			}
		}
	}
	return result
}

// fileExists reports whether the named file or directory exists.
func fileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}

// createDefaultConfigFile writes the sample configuration to the provided
// path when it does not already exist.
func createDefaultConfigFile(destPath string) error {
	// Create the destination directory if it does not exist.
	err := os.MkdirAll(filepath.Dir(destPath), 0700)
	if err != nil {
		return err
	}

	dest, err := os.OpenFile(destPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer dest.Close()

	_, err = dest.WriteString(sampleconfig.Vrfd())
	return err
}

// newConfigParser returns a new command line flags parser.
func newConfigParser(cfg *config, options flags.Options) *flags.Parser {
	return flags.NewParser(cfg, options)
}

// loadConfig initializes and parses the config using a config file and command
// line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
//
// The above results in vrfd functioning properly without any config settings
// while still allowing the user to override settings with config files and
// command line options.  Command line options always take precedence.
func loadConfig(appName string) (*config, []string, error) {
	// Default config.
	cfg := config{
		HomeDir:              defaultHomeDir,
		ConfigFile:           defaultConfigFile,
		DataDir:              defaultDataDir,
		LogDir:               defaultLogDir,
		MaxLogRolls:          defaultMaxLogRolls,
		DebugLevel:           defaultLogLevel,
		RPCKey:               defaultRPCKeyFile,
		RPCCert:              defaultRPCCert,
		TLSCurve:             defaultTLSCurve,
		RPCMaxClients:        defaultMaxRPCClients,
		RPCMaxWebsockets:     defaultMaxRPCWebsockets,
		RPCMaxConcurrentReqs: defaultMaxRPCConcurrentReqs,
		BatchSize:            defaultBatchSize,
		OracleMinDelay:       defaultOracleMinDelay,
		OracleMaxDelay:       defaultOracleMaxDelay,
		BlockInterval:        chainclock.DefaultInterval,
		PaymentToken:         defaultAssetName,
		VestingToken:         defaultAssetName,
	}

	// Pre-parse the command line options to see if an alternative config
	// file or the version flag was specified.  Any errors aside from the
	// help message error can be ignored here since they will be caught by
	// the final parse below.
	preCfg := cfg
	preParser := newConfigParser(&preCfg, flags.HelpFlag)
	_, err := preParser.Parse()
	if err != nil {
		var e *flags.Error
		if errors.As(err, &e) && e.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, err)
			os.Exit(0)
		}
	}

	// Show the version and exit if the version flag was specified.
	if preCfg.ShowVersion {
		fmt.Printf("%s version %s (Go version %s %s/%s)\n", appName,
			version.Full(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
		os.Exit(0)
	}

	// Update the home directory for vrfd if specified.  Since the home
	// directory is updated, other variables need to be updated to reflect
	// the new changes.
	if preCfg.HomeDir != "" {
		cfg.HomeDir = cleanAndExpandPath(preCfg.HomeDir)

		if preCfg.ConfigFile == defaultConfigFile {
			defaultConfigFile = filepath.Join(cfg.HomeDir,
				defaultConfigFilename)
			preCfg.ConfigFile = defaultConfigFile
			cfg.ConfigFile = defaultConfigFile
		} else {
			cfg.ConfigFile = preCfg.ConfigFile
		}
		if preCfg.DataDir == defaultDataDir {
			cfg.DataDir = filepath.Join(cfg.HomeDir, defaultDataDirname)
		} else {
			cfg.DataDir = preCfg.DataDir
		}
		if preCfg.RPCKey == defaultRPCKeyFile {
			cfg.RPCKey = filepath.Join(cfg.HomeDir, "rpc.key")
		} else {
			cfg.RPCKey = preCfg.RPCKey
		}
		if preCfg.RPCCert == defaultRPCCert {
			cfg.RPCCert = filepath.Join(cfg.HomeDir, "rpc.cert")
		} else {
			cfg.RPCCert = preCfg.RPCCert
		}
		if preCfg.LogDir == defaultLogDir {
			cfg.LogDir = filepath.Join(cfg.HomeDir, defaultLogDirname)
		} else {
			cfg.LogDir = preCfg.LogDir
		}
	}

	// Create a default config file when one does not exist and the user did
	// not specify an override.
	if preCfg.ConfigFile == defaultConfigFile && !fileExists(preCfg.ConfigFile) {
		err := createDefaultConfigFile(preCfg.ConfigFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating a default config file: "+
				"%v\n", err)
		}
	}

	// Load additional config from file.
	var configFileError error
	parser := newConfigParser(&cfg, flags.Default)
	err = flags.NewIniParser(parser).ParseFile(preCfg.ConfigFile)
	if err != nil {
		var e *os.PathError
		if !errors.As(err, &e) {
			err = fmt.Errorf("error parsing config file: %w", err)
			return nil, nil, err
		}
		configFileError = err
	}

	// Parse command line options again to ensure they take precedence.
	remainingArgs, err := parser.Parse()
	if err != nil {
		return nil, nil, err
	}

	// Create the home directory if it doesn't already exist.
	funcName := "loadConfig"
	err = os.MkdirAll(cfg.HomeDir, 0700)
	if err != nil {
		// Show a nicer error message if it's because a symlink is linked to
		// a directory that does not exist (probably because it's not
		// mounted).
		var e *os.PathError
		if errors.As(err, &e) && os.IsExist(err) {
			if link, lerr := os.Readlink(e.Path); lerr == nil {
				str := "is symlink %s -> %s mounted?"
				err = fmt.Errorf(str, e.Path, link)
			}
		}

		str := "%s: failed to create home directory: %v"
		err := fmt.Errorf(str, funcName, err)
		return nil, nil, errSuppressUsage(err.Error())
	}

	// Expand the paths and initialize the log rotator now that the final
	// directories are known.
	cfg.DataDir = cleanAndExpandPath(cfg.DataDir)
	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)
	cfg.RPCKey = cleanAndExpandPath(cfg.RPCKey)
	cfg.RPCCert = cleanAndExpandPath(cfg.RPCCert)
	cfg.CPUProfile = cleanAndExpandPath(cfg.CPUProfile)
	if !cfg.NoFileLogging {
		logFile := filepath.Join(cfg.LogDir, defaultLogFilename)
		if err := initLogRotator(logFile, cfg.MaxLogRolls); err != nil {
			return nil, nil, errSuppressUsage(err.Error())
		}
	}

	// Special show command to list supported subsystems and exit.
	if cfg.DebugLevel == "show" {
		fmt.Println("Supported subsystems", supportedSubsystems())
		os.Exit(0)
	}

	// Parse, validate, and set debug log level(s).
	if err := parseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		err := fmt.Errorf("%s: %w", funcName, err)
		return nil, nil, err
	}

	// Validate the profile listen address when set.
	if cfg.Profile != "" {
		cfg.Profile = portToLocalHostAddr(cfg.Profile)
		if err := validateProfileAddr(cfg.Profile); err != nil {
			err := fmt.Errorf("%s: invalid profile address: %w", funcName,
				err)
			return nil, nil, err
		}
	}

	// The RPC server is disabled if no username or password is provided.
	if (cfg.RPCUser == "" || cfg.RPCPass == "") &&
		(cfg.RPCLimitUser == "" || cfg.RPCLimitPass == "") {
		cfg.DisableRPC = true
	}
	if cfg.DisableRPC {
		vrfdLog.Infof("RPC service is disabled")
	}

	// Check to make sure limited and admin users don't have the same
	// username or password.
	if cfg.RPCUser != "" && cfg.RPCUser == cfg.RPCLimitUser {
		str := "%s: --rpcuser and --rpclimituser must not specify the " +
			"same username"
		return nil, nil, fmt.Errorf(str, funcName)
	}
	if cfg.RPCPass != "" && cfg.RPCPass == cfg.RPCLimitPass {
		str := "%s: --rpcpass and --rpclimitpass must not specify the " +
			"same password"
		return nil, nil, fmt.Errorf(str, funcName)
	}

	// Default RPC to listen on localhost only and add the default port to
	// all addresses that lack one.
	if !cfg.DisableRPC && len(cfg.RPCListeners) == 0 {
		cfg.RPCListeners = []string{"127.0.0.1", "::1"}
	}
	cfg.RPCListeners = normalizeAddresses(cfg.RPCListeners, defaultRPCPort)

	// Only allow TLS to be disabled if the RPC is bound to localhost
	// addresses.
	if !cfg.DisableRPC && cfg.DisableTLS {
		for _, addr := range cfg.RPCListeners {
			if !isLoopback(addr) {
				str := "%s: the --notls option may not be used when " +
					"binding RPC to non localhost addresses: %s"
				return nil, nil, fmt.Errorf(str, funcName, addr)
			}
		}
	}

	if cfg.RPCMaxConcurrentReqs < 0 {
		str := "%s: the rpcmaxconcurrentreqs option may not be less than " +
			"0 -- parsed [%d]"
		return nil, nil, fmt.Errorf(str, funcName, cfg.RPCMaxConcurrentReqs)
	}

	cfg.tlsCurve, err = tlsCurve(cfg.TLSCurve)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", funcName, err)
	}
	cfg.AltDNSNames = splitAltDNSNames(cfg.AltDNSNames)

	// Validate the queue options.
	if cfg.BatchSize == 0 || cfg.BatchSize > vrfqueue.MaxBatchSize {
		str := "%s: the batchsize option must be in the range [1, %d] -- " +
			"parsed [%d]"
		return nil, nil, fmt.Errorf(str, funcName, vrfqueue.MaxBatchSize,
			cfg.BatchSize)
	}
	if cfg.OracleMinDelay < 0 || cfg.OracleMaxDelay < cfg.OracleMinDelay {
		str := "%s: the oracle delays must satisfy 0 <= oraclemindelay " +
			"<= oraclemaxdelay -- parsed [%v, %v]"
		return nil, nil, fmt.Errorf(str, funcName, cfg.OracleMinDelay,
			cfg.OracleMaxDelay)
	}
	if cfg.BlockInterval <= 0 {
		str := "%s: the blockinterval option must be positive -- parsed [%v]"
		return nil, nil, fmt.Errorf(str, funcName, cfg.BlockInterval)
	}

	// Parse the ledger and validator options.
	if cfg.FeeReceiver == "" {
		str := "%s: the feereceiver option must be specified"
		return nil, nil, fmt.Errorf(str, funcName)
	}
	cfg.feeReceiver, err = ledger.DecodeAddress(cfg.FeeReceiver)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: invalid feereceiver: %w", funcName,
			err)
	}
	cfg.paymentToken, err = parseAsset(cfg.PaymentToken)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: invalid paymenttoken: %w",
			funcName, err)
	}
	cfg.vestingToken, err = parseAsset(cfg.VestingToken)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: invalid vestingtoken: %w",
			funcName, err)
	}
	if cfg.AllowlistRoot != "" {
		cfg.allowlistRoot, err = allowlist.DecodeHash(cfg.AllowlistRoot)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: invalid allowlistroot: %w",
				funcName, err)
		}
	}
	if cfg.StakeEnd != 0 {
		cfg.stakePeriod = &stakeperiod.Period{
			IsTimestamp: cfg.StakeTimestamp,
			Start:       cfg.StakeStart,
			End:         cfg.StakeEnd,
			BonusEnd:    cfg.StakeBonusEnd,
		}
	}

	// Warn about missing config file only after all other configuration is
	// done.  This prevents the warning on help messages and invalid
	// options.  Note this should go directly before the return.
	if configFileError != nil {
		vrfdLog.Warnf("%v", configFileError)
	}

	return &cfg, remainingArgs, nil
}

// oracleConfig returns the oracle coordinator configuration described by the
// options.
func (cfg *config) oracleConfig() *oracle.Config {
	return &oracle.Config{
		MinDelay: cfg.OracleMinDelay,
		MaxDelay: cfg.OracleMaxDelay,
		Manual:   cfg.OracleManual,
	}
}
