// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpcserver

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"hash"
	"io"
	stdlog "log"
	"net"
	"net/http"
	"net/url"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/crypto/rand"
	"github.com/decred/dcrd/dcrjson/v4"
	"github.com/decred/dcrd/math/uint256"
	"github.com/gorilla/websocket"
	"github.com/launchkit/vrfd/allowlist"
	"github.com/launchkit/vrfd/internal/version"
	"github.com/launchkit/vrfd/ledger"
	"github.com/launchkit/vrfd/payment"
	"github.com/launchkit/vrfd/rpc/jsonrpc/types"
	"github.com/launchkit/vrfd/stakeperiod"
	"github.com/launchkit/vrfd/vesting"
	"github.com/launchkit/vrfd/vrfqueue"
)

// API version constants
const (
	jsonrpcSemverMajor = 1
	jsonrpcSemverMinor = 0
	jsonrpcSemverPatch = 0
)

const (
	// rpcAuthTimeoutSeconds is the number of seconds a connection to the
	// RPC server is allowed to stay open without authenticating before it
	// is closed.
	rpcAuthTimeoutSeconds = 10

	// rpcReadLimitAuthenticated is the maximum number of bytes allowed for a
	// JSON-RPC message read from a client.
	rpcReadLimitAuthenticated = 1 << 20 // 1 MiB

	// wordSize is the number of bytes of a serialized oracle word.
	wordSize = 32

	// nativeAssetName is the asset name that selects the native coin.
	nativeAssetName = "native"
)

var (
	// jsonrpcSemverString is the RPC server's semantic API version formatted as
	// a string.
	jsonrpcSemverString = fmt.Sprintf("%d.%d.%d", jsonrpcSemverMajor,
		jsonrpcSemverMinor, jsonrpcSemverPatch)

	// JSON 2.0 batched request prefix
	batchedRequestPrefix = []byte("[")
)

type commandHandler func(context.Context, *Server, interface{}) (interface{}, error)

// rpcHandlers maps RPC command strings to appropriate handler functions.
var rpcHandlers = map[types.Method]commandHandler{
	"addvesting":          handleAddVesting,
	"checkallowlist":      handleCheckAllowlist,
	"checkstakingphase":   handleCheckStakingPhase,
	"claimvesting":        handleClaimVesting,
	"debuglevel":          handleDebugLevel,
	"fulfillrandomwords":  handleFulfillRandomWords,
	"getbalance":          handleGetBalance,
	"getbatch":            handleGetBatch,
	"getbestblock":        handleGetBestBlock,
	"getqueueinfo":        handleGetQueueInfo,
	"getrandomnumber":     handleGetRandomNumber,
	"getstakingperiod":    handleGetStakingPeriod,
	"getvesting":          handleGetVesting,
	"initstakingperiod":   handleInitStakingPeriod,
	"mint":                handleMint,
	"pay":                 handlePay,
	"setfeereceiver":      handleSetFeeReceiver,
	"setpaymenttoken":     handleSetPaymentToken,
	"stop":                handleStop,
	"updateallowlist":     handleUpdateAllowlist,
	"updatestakingperiod": handleUpdateStakingPeriod,
	"version":             handleVersion,
}

// Commands that are available to a limited user
var rpcLimited = map[string]struct{}{
	// Websockets commands
	"notifyrandomnumbers":     {},
	"stopnotifyrandomnumbers": {},

	// Websockets AND HTTP/S commands
	"checkallowlist":    {},
	"checkstakingphase": {},
	"getbalance":        {},
	"getbatch":          {},
	"getbestblock":      {},
	"getqueueinfo":      {},
	"getrandomnumber":   {},
	"getstakingperiod":  {},
	"getvesting":        {},
	"version":           {},
}

// rpcInternalError is a convenience function to convert an internal error to
// an RPC error with the appropriate code set.  It also logs the error to the
// RPC server subsystem since internal errors really should not occur.  The
// context parameter is only used in the log message and may be empty if it's
// not needed.
func rpcInternalError(errStr, context string) *dcrjson.RPCError {
	logStr := errStr
	if context != "" {
		logStr = context + ": " + errStr
	}
	log.Error(logStr)
	return dcrjson.NewRPCError(dcrjson.ErrRPCInternal.Code, errStr)
}

// rpcInvalidError is a convenience function to convert an invalid parameter
// error to an RPC error with the appropriate code set.
func rpcInvalidError(fmtStr string, args ...interface{}) *dcrjson.RPCError {
	return dcrjson.NewRPCError(dcrjson.ErrRPCInvalidParameter,
		fmt.Sprintf(fmtStr, args...))
}

// rpcRuleError is a convenience function to convert a rule error to an RPC
// error with the appropriate code set.
func rpcRuleError(fmtStr string, args ...interface{}) *dcrjson.RPCError {
	return dcrjson.NewRPCError(dcrjson.ErrRPCMisc,
		fmt.Sprintf(fmtStr, args...))
}

// rpcAddressKeyError is a convenience function to convert an address error to
// an RPC error with the appropriate code set.
func rpcAddressKeyError(fmtStr string, args ...interface{}) *dcrjson.RPCError {
	return dcrjson.NewRPCError(dcrjson.ErrRPCInvalidAddressOrKey,
		fmt.Sprintf(fmtStr, args...))
}

// rpcDecodeHexError is a convenience function for returning a nicely formatted
// RPC error which indicates the provided hex string failed to decode.
func rpcDecodeHexError(gotHex string) *dcrjson.RPCError {
	return dcrjson.NewRPCError(dcrjson.ErrRPCDecodeHexString,
		fmt.Sprintf("Argument must be hexadecimal string (not %q)",
			gotHex))
}

// rpcBatchNotFoundError is a convenience function for returning a nicely
// formatted RPC error which indicates the requested batch does not exist.
func rpcBatchNotFoundError(index uint64) *dcrjson.RPCError {
	return dcrjson.NewRPCError(dcrjson.ErrRPCOutOfRange,
		fmt.Sprintf("No batch at index %d", index))
}

// rpcMiscError is a convenience function for returning a nicely formatted RPC
// error which indicates there is an unquantifiable error.  Use this sparingly;
// misc return codes are a cop out.
func rpcMiscError(message string) *dcrjson.RPCError {
	return dcrjson.NewRPCError(dcrjson.ErrRPCMisc, message)
}

// convertRuleError converts the error returned by one of the validators or the
// queue into an RPC error.  Errors that are not the result of a rule violation
// are treated as internal errors.
func convertRuleError(err error, context string) *dcrjson.RPCError {
	var (
		qErr vrfqueue.Error
		lErr ledger.Error
		pErr payment.RuleError
		vErr vesting.RuleError
		sErr stakeperiod.RuleError
		aErr allowlist.RuleError
	)
	switch {
	case errors.Is(err, vrfqueue.ErrInvalidBound),
		errors.Is(err, vrfqueue.ErrBatchSizeMismatch):
		return rpcInvalidError("%v", err)

	case errors.As(err, &qErr):
		return rpcMiscError(qErr.Description)

	case errors.As(err, &lErr):
		return rpcRuleError("%s", lErr.Description)

	case errors.As(err, &pErr):
		return rpcRuleError("%s", pErr.Description)

	case errors.As(err, &vErr):
		return rpcRuleError("%s", vErr.Description)

	case errors.As(err, &sErr):
		return rpcRuleError("%s", sErr.Description)

	case errors.As(err, &aErr):
		return rpcRuleError("%s", aErr.Description)
	}
	return rpcInternalError(err.Error(), context)
}

// decodeAddress decodes the provided address string into an address and
// returns an appropriate RPC error when it is invalid.
func decodeAddress(s string) (ledger.Address, error) {
	addr, err := ledger.DecodeAddress(s)
	if err != nil {
		return ledger.Address{}, rpcAddressKeyError("Invalid address %q: %v",
			s, err)
	}
	return addr, nil
}

// decodeAsset decodes the provided asset string.  The name "native" selects
// the native coin.
func decodeAsset(s string) (ledger.Address, error) {
	if strings.EqualFold(s, nativeAssetName) {
		return ledger.NativeAsset, nil
	}
	return decodeAddress(s)
}

// assetString returns the string form of the provided asset.
func assetString(asset ledger.Address) string {
	if asset == ledger.NativeAsset {
		return nativeAssetName
	}
	return asset.String()
}

// parseAmount parses the provided decimal amount and returns an appropriate RPC
// error when it is invalid.
func parseAmount(s string) (uint256.Uint256, error) {
	amount, err := ledger.ParseAmount(s)
	if err != nil {
		return amount, rpcInvalidError("Invalid amount %q: %v", s, err)
	}
	return amount, nil
}

// decodeWord decodes a hex encoded big-endian word of up to 32 bytes with an
// optional 0x prefix.
func decodeWord(s string) (uint256.Uint256, error) {
	var word uint256.Uint256
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(digits)%2 != 0 {
		digits = "0" + digits
	}
	b, err := hex.DecodeString(digits)
	if err != nil || len(b) > wordSize {
		return word, rpcDecodeHexError(s)
	}
	var buf [wordSize]byte
	copy(buf[wordSize-len(b):], b)
	word.SetBytes(&buf)
	return word, nil
}

// encodeWord returns the word as a 64 character hex string.
func encodeWord(word *uint256.Uint256) string {
	b := word.Bytes()
	return hex.EncodeToString(b[:])
}

// handleDebugLevel handles debuglevel commands.
func handleDebugLevel(_ context.Context, s *Server, cmd interface{}) (interface{}, error) {
	c := cmd.(*types.DebugLevelCmd)

	// Special show command to list supported subsystems.
	if c.LevelSpec == "show" {
		return fmt.Sprintf("Supported subsystems %v",
			s.cfg.LogManager.SupportedSubsystems()), nil
	}

	err := s.cfg.LogManager.ParseAndSetDebugLevels(c.LevelSpec)
	if err != nil {
		return nil, rpcInvalidError("Invalid debug level %v: %v",
			c.LevelSpec, err)
	}

	return "Done.", nil
}

// handleGetRandomNumber implements the getrandomnumber command.
func handleGetRandomNumber(_ context.Context, s *Server, cmd interface{}) (interface{}, error) {
	c := cmd.(*types.GetRandomNumberCmd)

	rn, err := s.cfg.Generator.Draw(c.Bound)
	if err != nil {
		return nil, convertRuleError(err, "Unable to draw random number")
	}

	result := &types.GetRandomNumberResult{
		Value:  rn.Value,
		Bound:  rn.Bound,
		Source: rn.Source.String(),
	}
	if rn.Source == vrfqueue.SourceOracle {
		result.Cursor = rn.Cursor.String()
	}
	return result, nil
}

// handleFulfillRandomWords implements the fulfillrandomwords command.
func handleFulfillRandomWords(_ context.Context, s *Server, cmd interface{}) (interface{}, error) {
	c := cmd.(*types.FulfillRandomWordsCmd)

	requestID, err := chainhash.NewHashFromStr(c.RequestID)
	if err != nil {
		return nil, rpcDecodeHexError(c.RequestID)
	}
	words := make([]uint256.Uint256, 0, len(c.Words))
	for _, w := range c.Words {
		word, err := decodeWord(w)
		if err != nil {
			return nil, err
		}
		words = append(words, word)
	}

	index, err := s.cfg.Generator.FulfillRandomWords(*requestID, words)
	if err != nil {
		return nil, convertRuleError(err, "Unable to append batch")
	}
	return &types.FulfillRandomWordsResult{Index: index}, nil
}

// handleGetBatch implements the getbatch command.
func handleGetBatch(_ context.Context, s *Server, cmd interface{}) (interface{}, error) {
	c := cmd.(*types.GetBatchCmd)

	words, err := s.cfg.Generator.Batch(c.Index)
	if err != nil {
		if errors.Is(err, vrfqueue.ErrBatchNotFound) {
			return nil, rpcBatchNotFoundError(c.Index)
		}
		return nil, rpcInternalError(err.Error(), "Unable to load batch")
	}

	result := make([]string, 0, len(words))
	for i := range words {
		result = append(result, encodeWord(&words[i]))
	}
	return result, nil
}

// handleGetQueueInfo implements the getqueueinfo command.
func handleGetQueueInfo(_ context.Context, s *Server, _ interface{}) (interface{}, error) {
	stats := s.cfg.Generator.Stats()
	return &types.GetQueueInfoResult{
		BatchSize:       stats.BatchSize,
		NumBatches:      stats.NumBatches,
		Cursor:          stats.Cursor.String(),
		Buffered:        stats.Buffered,
		RequestCount:    stats.RequestCount,
		Outstanding:     stats.Outstanding,
		PendingRequests: stats.PendingRequests,
		Served:          stats.Served,
		FallbackServed:  stats.FallbackServed,
	}, nil
}

// handleGetBestBlock implements the getbestblock command.
func handleGetBestBlock(_ context.Context, s *Server, _ interface{}) (interface{}, error) {
	best := s.cfg.Chain.BestState()
	return &types.GetBestBlockResult{
		Hash:   best.Hash.String(),
		Height: best.Height,
		Time:   best.Timestamp.Unix(),
	}, nil
}

// handlePay implements the pay command.
func handlePay(_ context.Context, s *Server, cmd interface{}) (interface{}, error) {
	c := cmd.(*types.PayCmd)

	payer, err := decodeAddress(c.Payer)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(c.Amount)
	if err != nil {
		return nil, err
	}
	var value uint256.Uint256
	if c.Value != nil {
		value, err = parseAmount(*c.Value)
		if err != nil {
			return nil, err
		}
	}

	receipt, err := s.cfg.Payments.Pay(payer, &amount, &value)
	if err != nil {
		return nil, convertRuleError(err, "Unable to pay")
	}
	return &types.PayResult{
		Payer:       receipt.Payer.String(),
		FeeReceiver: receipt.FeeReceiver.String(),
		Asset:       assetString(receipt.Asset),
		Amount:      ledger.FormatAmount(&receipt.Amount),
		Retained:    ledger.FormatAmount(&receipt.Retained),
	}, nil
}

// handleSetFeeReceiver implements the setfeereceiver command.
func handleSetFeeReceiver(_ context.Context, s *Server, cmd interface{}) (interface{}, error) {
	c := cmd.(*types.SetFeeReceiverCmd)

	addr, err := decodeAddress(c.Address)
	if err != nil {
		return nil, err
	}
	if err := s.cfg.Payments.SetFeeReceiver(addr); err != nil {
		return nil, convertRuleError(err, "Unable to set fee receiver")
	}
	return nil, nil
}

// handleSetPaymentToken implements the setpaymenttoken command.
func handleSetPaymentToken(_ context.Context, s *Server, cmd interface{}) (interface{}, error) {
	c := cmd.(*types.SetPaymentTokenCmd)

	token, err := decodeAsset(c.Token)
	if err != nil {
		return nil, err
	}
	s.cfg.Payments.SetToken(token)
	return nil, nil
}

// handleAddVesting implements the addvesting command.
func handleAddVesting(_ context.Context, s *Server, cmd interface{}) (interface{}, error) {
	c := cmd.(*types.AddVestingCmd)

	beneficiary, err := decodeAddress(c.Beneficiary)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(c.Amount)
	if err != nil {
		return nil, err
	}
	if c.Duration < 0 || c.Cliff < 0 {
		return nil, rpcInvalidError("Durations must not be negative")
	}

	start := time.Unix(c.Start, 0)
	duration := time.Duration(c.Duration) * time.Second
	cliff := time.Duration(c.Cliff) * time.Second
	err = s.cfg.Vesting.AddVesting(beneficiary, &amount, start, duration, cliff)
	if err != nil {
		return nil, convertRuleError(err, "Unable to add vesting")
	}
	return nil, nil
}

// handleClaimVesting implements the claimvesting command.
func handleClaimVesting(_ context.Context, s *Server, cmd interface{}) (interface{}, error) {
	c := cmd.(*types.ClaimVestingCmd)

	beneficiary, err := decodeAddress(c.Beneficiary)
	if err != nil {
		return nil, err
	}
	claimed, err := s.cfg.Vesting.Claim(beneficiary)
	if err != nil {
		return nil, convertRuleError(err, "Unable to claim vesting")
	}
	return ledger.FormatAmount(&claimed), nil
}

// handleGetVesting implements the getvesting command.
func handleGetVesting(_ context.Context, s *Server, cmd interface{}) (interface{}, error) {
	c := cmd.(*types.GetVestingCmd)

	beneficiary, err := decodeAddress(c.Beneficiary)
	if err != nil {
		return nil, err
	}
	schedule, ok := s.cfg.Vesting.Schedule(beneficiary)
	if !ok {
		return nil, rpcRuleError("No vesting schedule for %v", beneficiary)
	}

	claimable := schedule.Claimable(s.cfg.Chain.BestState().Timestamp)
	return &types.GetVestingResult{
		Beneficiary: beneficiary.String(),
		Total:       ledger.FormatAmount(&schedule.Total),
		Start:       schedule.Start.Unix(),
		Duration:    int64(schedule.Duration / time.Second),
		Cliff:       int64(schedule.Cliff / time.Second),
		Claimed:     ledger.FormatAmount(&schedule.Claimed),
		Claimable:   ledger.FormatAmount(&claimable),
	}, nil
}

// handleGetStakingPeriod implements the getstakingperiod command.
func handleGetStakingPeriod(_ context.Context, s *Server, _ interface{}) (interface{}, error) {
	period, ok := s.cfg.Staking.Period()
	return &types.GetStakingPeriodResult{
		Initialized: ok,
		IsTimestamp: period.IsTimestamp,
		Start:       period.Start,
		End:         period.End,
		BonusEnd:    period.BonusEnd,
	}, nil
}

// handleInitStakingPeriod implements the initstakingperiod command.
func handleInitStakingPeriod(_ context.Context, s *Server, cmd interface{}) (interface{}, error) {
	c := cmd.(*types.InitStakingPeriodCmd)

	err := s.cfg.Staking.Initialize(stakeperiod.Period{
		IsTimestamp: c.IsTimestamp,
		Start:       c.Start,
		End:         c.End,
		BonusEnd:    c.BonusEnd,
	})
	if err != nil {
		return nil, convertRuleError(err, "Unable to initialize staking period")
	}
	return nil, nil
}

// handleUpdateStakingPeriod implements the updatestakingperiod command.
func handleUpdateStakingPeriod(_ context.Context, s *Server, cmd interface{}) (interface{}, error) {
	c := cmd.(*types.UpdateStakingPeriodCmd)

	err := s.cfg.Staking.Update(stakeperiod.Period{
		IsTimestamp: c.IsTimestamp,
		Start:       c.Start,
		End:         c.End,
		BonusEnd:    c.BonusEnd,
	})
	if err != nil {
		return nil, convertRuleError(err, "Unable to update staking period")
	}
	return nil, nil
}

// handleCheckStakingPhase implements the checkstakingphase command.  It
// returns whether the gate for the phase is currently open.
func handleCheckStakingPhase(_ context.Context, s *Server, cmd interface{}) (interface{}, error) {
	c := cmd.(*types.CheckStakingPhaseCmd)

	phase, err := stakeperiod.ParsePhase(c.Phase)
	if err != nil {
		return nil, rpcInvalidError("%v", err)
	}
	err = s.cfg.Staking.Check(phase)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, stakeperiod.ErrNotInitialized):
		return nil, convertRuleError(err, "")
	}
	var rErr stakeperiod.RuleError
	if errors.As(err, &rErr) {
		return false, nil
	}
	return nil, rpcInternalError(err.Error(), "Unable to check phase")
}

// handleUpdateAllowlist implements the updateallowlist command.
func handleUpdateAllowlist(_ context.Context, s *Server, cmd interface{}) (interface{}, error) {
	c := cmd.(*types.UpdateAllowlistCmd)

	root, err := allowlist.DecodeHash(c.Root)
	if err != nil {
		return nil, rpcDecodeHexError(c.Root)
	}
	s.cfg.Allowlist.UpdateRoot(root)
	return nil, nil
}

// handleCheckAllowlist implements the checkallowlist command.
func handleCheckAllowlist(_ context.Context, s *Server, cmd interface{}) (interface{}, error) {
	c := cmd.(*types.CheckAllowlistCmd)

	addr, err := decodeAddress(c.Address)
	if err != nil {
		return nil, err
	}
	proof := make([]allowlist.Hash, 0, len(c.Proof))
	for _, p := range c.Proof {
		h, err := allowlist.DecodeHash(p)
		if err != nil {
			return nil, rpcDecodeHexError(p)
		}
		proof = append(proof, h)
	}

	err = s.cfg.Allowlist.Check(addr, proof)
	if errors.Is(err, allowlist.ErrNotAllowlisted) {
		return false, nil
	}
	if err != nil {
		return nil, rpcInternalError(err.Error(), "Unable to check allowlist")
	}
	return true, nil
}

// handleGetBalance implements the getbalance command.
func handleGetBalance(_ context.Context, s *Server, cmd interface{}) (interface{}, error) {
	c := cmd.(*types.GetBalanceCmd)

	asset, err := decodeAsset(c.Asset)
	if err != nil {
		return nil, err
	}
	owner, err := decodeAddress(c.Address)
	if err != nil {
		return nil, err
	}
	balance := s.cfg.Ledger.Balance(asset, owner)
	return ledger.FormatAmount(&balance), nil
}

// handleMint implements the mint command.
func handleMint(_ context.Context, s *Server, cmd interface{}) (interface{}, error) {
	c := cmd.(*types.MintCmd)

	asset, err := decodeAsset(c.Asset)
	if err != nil {
		return nil, err
	}
	to, err := decodeAddress(c.Address)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(c.Amount)
	if err != nil {
		return nil, err
	}
	if err := s.cfg.Ledger.Mint(asset, to, &amount); err != nil {
		return nil, convertRuleError(err, "Unable to mint")
	}
	return nil, nil
}

// handleStop implements the stop command.
func handleStop(_ context.Context, s *Server, _ interface{}) (interface{}, error) {
	select {
	case s.requestProcessShutdown <- struct{}{}:
	default:
	}
	return "vrfd stopping.", nil
}

// handleVersion implements the version command.
func handleVersion(_ context.Context, _ *Server, _ interface{}) (interface{}, error) {
	runtimeVer := strings.ReplaceAll(runtime.Version(), ".", "-")
	buildMeta := version.NormalizeString(runtimeVer)
	build := version.NormalizeString(version.BuildMetadata)
	if build != "" {
		buildMeta = fmt.Sprintf("%s.%s", build, buildMeta)
	}
	result := map[string]types.VersionResult{
		"vrfdjsonrpcapi": {
			VersionString: jsonrpcSemverString,
			Major:         jsonrpcSemverMajor,
			Minor:         jsonrpcSemverMinor,
			Patch:         jsonrpcSemverPatch,
		},
		"vrfd": {
			VersionString: version.String(),
			Major:         uint32(version.Major),
			Minor:         uint32(version.Minor),
			Patch:         uint32(version.Patch),
			Prerelease:    version.NormalizeString(version.PreRelease),
			BuildMetadata: buildMeta,
		},
	}
	return result, nil
}

// Server provides a concurrent safe RPC server to the random number queue and
// the validators that share its ledger.
type Server struct {
	numClients atomic.Int32

	cfg                    Config
	hmac                   hash.Hash
	hmacMu                 sync.Mutex
	authsha                [sha256.Size]byte
	limitauthsha           [sha256.Size]byte
	ntfnMgr                *wsNotificationManager
	statusLines            map[int]string
	statusLock             sync.RWMutex
	wg                     sync.WaitGroup
	requestProcessShutdown chan struct{}
}

// httpStatusLine returns a response Status-Line (RFC 2616 Section 6.1) for the
// given request and response status code.  This function was lifted and
// adapted from the standard library HTTP server code since it's not exported.
func (s *Server) httpStatusLine(req *http.Request, code int) string {
	// Fast path:
	key := code
	proto11 := req.ProtoAtLeast(1, 1)
	if !proto11 {
		key = -key
	}
	s.statusLock.RLock()
	line, ok := s.statusLines[key]
	s.statusLock.RUnlock()
	if ok {
		return line
	}

	// Slow path:
	proto := "HTTP/1.0"
	if proto11 {
		proto = "HTTP/1.1"
	}
	codeStr := strconv.Itoa(code)
	text := http.StatusText(code)
	if text != "" {
		line = proto + " " + codeStr + " " + text + "\r\n"
		s.statusLock.Lock()
		s.statusLines[key] = line
		s.statusLock.Unlock()
	} else {
		text = "status code " + codeStr
		line = proto + " " + codeStr + " " + text + "\r\n"
	}

	return line
}

// writeHTTPResponseHeaders writes the necessary response headers prior to
// writing an HTTP body given a request to use for protocol negotiation,
// headers to write, a status code, and a writer.
func (s *Server) writeHTTPResponseHeaders(req *http.Request, headers http.Header, code int, w io.Writer) error {
	_, err := io.WriteString(w, s.httpStatusLine(req, code))
	if err != nil {
		return err
	}

	err = headers.Write(w)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, "\r\n")
	return err
}

// shutdown terminates the processes of the rpc server.
func (s *Server) shutdown() error {
	log.Warnf("RPC server shutting down")
	for _, listener := range s.cfg.Listeners {
		err := listener.Close()
		if err != nil {
			log.Errorf("Problem shutting down rpc: %v", err)
			return err
		}
	}
	s.wg.Wait()
	log.Infof("RPC server shutdown complete")
	return nil
}

// RequestedProcessShutdown returns a channel that is sent to when an
// authorized RPC client requests the process to shutdown.  If the request can
// not be read immediately, it is dropped.
func (s *Server) RequestedProcessShutdown() <-chan struct{} {
	return s.requestProcessShutdown
}

// NotifyRandomNumber notifies websocket clients that have registered for
// random number updates that a number was served.
func (s *Server) NotifyRandomNumber(rn *vrfqueue.RandomNumber) {
	s.ntfnMgr.NotifyRandomNumber(rn)
}

// NotifyBatchAppended notifies websocket clients that have registered for
// random number updates that an oracle batch was appended.
func (s *Server) NotifyBatchAppended(ba *vrfqueue.BatchAppended) {
	s.ntfnMgr.NotifyBatchAppended(ba)
}

// limitConnections responds with a 503 service unavailable and returns true if
// adding another client would exceed the maximum allow RPC clients.
//
// This function is safe for concurrent access.
func (s *Server) limitConnections(w http.ResponseWriter, remoteAddr string) bool {
	if int(s.numClients.Load()+1) > s.cfg.RPCMaxClients {
		log.Infof("Max RPC clients exceeded [%d] - "+
			"disconnecting client %s", s.cfg.RPCMaxClients,
			remoteAddr)
		http.Error(w, "503 Too busy.  Try again later.",
			http.StatusServiceUnavailable)
		return true
	}
	return false
}

// incrementClients adds one to the number of connected RPC clients.  Note this
// only applies to standard clients.  Websocket clients have their own limits
// and are tracked separately.
//
// This function is safe for concurrent access.
func (s *Server) incrementClients() {
	s.numClients.Add(1)
}

// decrementClients subtracts one from the number of connected RPC clients.
// Note this only applies to standard clients.  Websocket clients have their
// own limits and are tracked separately.
//
// This function is safe for concurrent access.
func (s *Server) decrementClients() {
	s.numClients.Add(-1)
}

// authMAC calculates the MAC (currently HMAC-SHA256) of an Authorization
// header, keyed with a random key created during server creation.  The MAC is
// appended to dst, and the appended slice is returned.
func (s *Server) authMAC(dst, auth []byte) []byte {
	s.hmacMu.Lock()
	s.hmac.Reset()
	s.hmac.Write(auth)
	dst = s.hmac.Sum(dst)
	s.hmacMu.Unlock()
	return dst
}

// checkAuthMAC checks the HTTP Basic authentication string by comparing
// it with the already generated hash.
//
// The first bool return value signifies auth success (true if successful) and
// the second bool return value specifies whether the user can change the state
// of the server (true) or whether the user is limited (false).
func (s *Server) checkAuthMAC(auth, remoteAddr string) (bool, bool) {
	mac := make([]byte, 0, sha256.Size)
	mac = s.authMAC(mac, []byte(auth))

	cmp := subtle.ConstantTimeCompare(mac, s.authsha[:])
	limitcmp := subtle.ConstantTimeCompare(mac, s.limitauthsha[:])
	if cmp|limitcmp == 0 {
		// Request's auth doesn't match either user
		log.Warnf("RPC authentication failure from %s", remoteAddr)
		return false, false
	}
	return true, cmp == 1
}

// checkAuthUserPass checks the correctness of username and password by
// generating the corresponding HTTP Basic authentication string then
// compare the string with the already generated hash.
func (s *Server) checkAuthUserPass(user, pass, remoteAddr string) (bool, bool) {
	login := user + ":" + pass
	auth := "Basic " + base64.StdEncoding.EncodeToString([]byte(login))
	return s.checkAuthMAC(auth, remoteAddr)
}

// checkAuth checks the HTTP Basic authentication supplied by an RPC client in
// the HTTP request r.  If the supplied authentication does not match the
// username and password expected, a non-nil error is returned.
//
// This check is time-constant.
//
// The first bool return value signifies auth success (true if successful) and
// the second bool return value specifies whether the user can change the state
// of the server (true) or whether the user is limited (false). The second is
// always false if the first is.
func (s *Server) checkAuth(r *http.Request, require bool) (bool, bool, error) {
	// If admin-level RPC user and pass options are not set, this always
	// succeeds.
	if s.authsha == ([32]byte{}) {
		return true, true, nil
	}

	authhdr := r.Header["Authorization"]
	if len(authhdr) == 0 {
		if require {
			log.Warnf("RPC authentication failure from %s",
				r.RemoteAddr)
			return false, false, errors.New("auth failure")
		}

		return false, false, nil
	}

	authed, isAdmin := s.checkAuthMAC(authhdr[0], r.RemoteAddr)
	if !authed {
		return false, false, errors.New("auth failure")
	}
	return authed, isAdmin, nil
}

// parsedRPCCmd represents a JSON-RPC request object that has been parsed into
// a known concrete command along with any error that might have happened while
// parsing it.
type parsedRPCCmd struct {
	jsonrpc string
	id      interface{}
	method  types.Method
	params  interface{}
	err     *dcrjson.RPCError
}

// standardCmdResult checks that a parsed command is a standard JSON-RPC command
// and runs the appropriate handler to reply to the command.  Any commands which
// are not recognized will return an error suitable for use in replies.
func (s *Server) standardCmdResult(ctx context.Context, cmd *parsedRPCCmd) (interface{}, error) {
	handler, ok := rpcHandlers[cmd.method]
	if !ok {
		return nil, dcrjson.ErrRPCMethodNotFound
	}

	return handler(ctx, s, cmd.params)
}

// parseCmd parses a JSON-RPC request object into known concrete command.  The
// err field of the returned parsedRPCCmd struct will contain an RPC error that
// is suitable for use in replies if the command is invalid in some way such as
// an unregistered command or invalid parameters.
func parseCmd(request *dcrjson.Request) *parsedRPCCmd {
	method := types.Method(request.Method)
	parsedCmd := parsedRPCCmd{
		jsonrpc: request.Jsonrpc,
		id:      request.ID,
		method:  method,
	}

	params, err := dcrjson.ParseParams(method, request.Params)
	if err != nil {
		if errors.Is(err, dcrjson.ErrUnregisteredMethod) {
			parsedCmd.err = dcrjson.ErrRPCMethodNotFound
			return &parsedCmd
		}

		// Otherwise, some type of invalid parameters is the cause, so
		// produce the equivalent RPC error.
		parsedCmd.err = rpcInvalidError("Failed to parse request: %v", err)
		return &parsedCmd
	}

	parsedCmd.params = params
	return &parsedCmd
}

// createMarshalledReply returns a new marshalled JSON-RPC response given the
// passed parameters.  It will automatically convert errors that are not of the
// type *dcrjson.RPCError to the appropriate type as needed.
func createMarshalledReply(rpcVersion string, id interface{}, result interface{}, replyErr error) ([]byte, error) {
	var jsonErr *dcrjson.RPCError
	if replyErr != nil && !errors.As(replyErr, &jsonErr) {
		jsonErr = rpcInternalError(replyErr.Error(), "")
	}

	return dcrjson.MarshalResponse(rpcVersion, id, result, jsonErr)
}

// processRequest determines the incoming request type (single or batched),
// parses it and returns a marshalled response.
func (s *Server) processRequest(ctx context.Context, request *dcrjson.Request, isAdmin bool) []byte {
	var result interface{}
	var jsonErr error

	if !isAdmin {
		if _, ok := rpcLimited[request.Method]; !ok {
			jsonErr = rpcInvalidError("limited user not " +
				"authorized for this method")
		}
	}

	if jsonErr == nil {
		if request.Method == "" {
			jsonErr = &dcrjson.RPCError{
				Code:    dcrjson.ErrRPCInvalidRequest.Code,
				Message: "Invalid request: malformed",
			}
			msg, err := createMarshalledReply(request.Jsonrpc, request.ID, result, jsonErr)
			if err != nil {
				log.Errorf("Failed to marshal reply: %v", err)
				return nil
			}
			return msg
		}

		// Valid requests with no ID (notifications) must not have a response
		// per the JSON-RPC spec.
		if request.ID == nil {
			return nil
		}

		// Attempt to parse the JSON-RPC request into a known
		// concrete command.
		parsedCmd := parseCmd(request)
		if parsedCmd.err != nil {
			jsonErr = parsedCmd.err
		} else {
			result, jsonErr = s.standardCmdResult(ctx, parsedCmd)
		}
	}

	// Marshal the response.
	msg, err := createMarshalledReply(request.Jsonrpc, request.ID, result, jsonErr)
	if err != nil {
		log.Errorf("Failed to marshal reply: %v", err)
		return nil
	}
	return msg
}

// processBatch processes every entry of a batched request and returns the
// marshalled batch of replies.  A request that is not a valid batch is replied
// to with a single error response.
func (s *Server) processBatch(ctx context.Context, body []byte, isAdmin bool) []byte {
	var batchedRequests []json.RawMessage
	if err := json.Unmarshal(body, &batchedRequests); err != nil {
		jsonErr := &dcrjson.RPCError{
			Code:    dcrjson.ErrRPCParse.Code,
			Message: fmt.Sprintf("Failed to parse request: %v", err),
		}
		resp, err := dcrjson.MarshalResponse("2.0", nil, nil, jsonErr)
		if err != nil {
			log.Errorf("Failed to create reply: %v", err)
		}
		return resp
	}

	// Respond with an empty batch error if the batch size is zero.
	if len(batchedRequests) == 0 {
		jsonErr := &dcrjson.RPCError{
			Code:    dcrjson.ErrRPCInvalidRequest.Code,
			Message: "Invalid request: empty batch",
		}
		resp, err := dcrjson.MarshalResponse("2.0", nil, nil, jsonErr)
		if err != nil {
			log.Errorf("Failed to marshal reply: %v", err)
		}
		return resp
	}

	results := make([][]byte, 0, len(batchedRequests))
	for _, entry := range batchedRequests {
		var req dcrjson.Request
		if err := json.Unmarshal(entry, &req); err != nil {
			jsonErr := &dcrjson.RPCError{
				Code:    dcrjson.ErrRPCInvalidRequest.Code,
				Message: fmt.Sprintf("Invalid request: %v", err),
			}
			resp, err := dcrjson.MarshalResponse("2.0", nil, nil, jsonErr)
			if err != nil {
				log.Errorf("Failed to create reply: %v", err)
				continue
			}
			results = append(results, resp)
			continue
		}

		if resp := s.processRequest(ctx, &req, isAdmin); resp != nil {
			results = append(results, resp)
		}
	}
	if len(results) == 0 {
		return nil
	}
	return joinBatch(results)
}

// joinBatch forms the JSON array of the provided batched replies.
func joinBatch(results [][]byte) []byte {
	var buffer bytes.Buffer
	buffer.WriteByte('[')
	for idx, reply := range results {
		if idx > 0 {
			buffer.WriteByte(',')
		}
		buffer.Write(reply)
	}
	buffer.WriteByte(']')
	return buffer.Bytes()
}

// jsonRPCRead handles reading and responding to RPC messages.
func (s *Server) jsonRPCRead(sCtx context.Context, w http.ResponseWriter, r *http.Request, isAdmin bool) {
	select {
	case <-sCtx.Done():
		return
	default:
	}

	// Read and close the JSON-RPC request body from the caller.
	bodyReader := io.LimitReader(r.Body, rpcReadLimitAuthenticated)
	body, err := io.ReadAll(bodyReader)
	r.Body.Close()
	if err != nil {
		errMsg := fmt.Sprintf("error reading JSON message: %v", err)
		errCode := http.StatusBadRequest
		http.Error(w, strconv.Itoa(errCode)+" "+errMsg,
			errCode)
		return
	}

	// Unfortunately, the http server doesn't provide the ability to change
	// the read deadline for the new connection.  Not having a read deadline
	// on the initial connection would mean clients can connect and idle
	// forever.  Thus, hijack the connection from the HTTP server, clear the
	// read deadline, and handle writing the response manually.
	hj, ok := w.(http.Hijacker)
	if !ok {
		errMsg := "webserver doesn't support hijacking"
		log.Warnf(errMsg)
		errCode := http.StatusInternalServerError
		http.Error(w, strconv.Itoa(errCode)+" "+errMsg,
			errCode)
		return
	}

	conn, buf, err := hj.Hijack()
	if err != nil {
		log.Warnf("Failed to hijack HTTP connection: %v", err)
		errCode := http.StatusInternalServerError
		http.Error(w, strconv.Itoa(errCode)+" "+
			err.Error(), errCode)
		return
	}

	defer conn.Close()
	defer buf.Flush()
	conn.SetReadDeadline(timeZeroVal)

	// Setup a close notifier.  Since the connection is hijacked,
	// the CloseNotifier on the ResponseWriter is not available.
	ctx, cancel := context.WithCancel(sCtx)
	defer cancel()
	go func() {
		_, err := conn.Read(make([]byte, 1))
		if err != nil {
			cancel()
		}
	}()

	var msg []byte
	if bytes.HasPrefix(body, batchedRequestPrefix) {
		msg = s.processBatch(ctx, body, isAdmin)
	} else {
		var req dcrjson.Request
		if err := json.Unmarshal(body, &req); err != nil {
			jsonErr := &dcrjson.RPCError{
				Code:    dcrjson.ErrRPCParse.Code,
				Message: fmt.Sprintf("Failed to parse request: %v", err),
			}
			msg, err = dcrjson.MarshalResponse("1.0", nil, nil, jsonErr)
			if err != nil {
				log.Errorf("Failed to create reply: %v", err)
			}
		} else {
			msg = s.processRequest(ctx, &req, isAdmin)
		}
	}

	// Write the response.
	err = s.writeHTTPResponseHeaders(r, w.Header(), http.StatusOK, buf)
	if err != nil {
		log.Error(err)
		return
	}
	if _, err := buf.Write(msg); err != nil {
		log.Errorf("Failed to write marshalled reply: %v", err)
	}

	// Terminate with newline for line oriented clients.
	if err := buf.WriteByte('\n'); err != nil {
		log.Errorf("Failed to append terminating newline to reply: %v", err)
	}
}

// jsonAuthFail sends a message back to the client if the http auth is rejected.
func jsonAuthFail(w http.ResponseWriter) {
	w.Header().Add("WWW-Authenticate", `Basic realm="vrfd RPC"`)
	http.Error(w, "401 Unauthorized.", http.StatusUnauthorized)
}

// logForwarder provides logic to forward log messages writing to an io.Writer
// to the rpcserver logger.
type logForwarder struct{}

// Write implements the io.Writer interface and forwards the message to the
// active rpcserver logger.
func (logForwarder) Write(p []byte) (int, error) {
	log.Error(strings.TrimRight(string(p), "\r\n"))
	return len(p), nil
}

// equalASCIIFold returns true if s is equal to t with ASCII case folding as
// defined in RFC 4790.  This function was lifted from the gorilla websocket
// code since it's not exported.
func equalASCIIFold(s, t string) bool {
	for s != "" && t != "" {
		sr, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		tr, size := utf8.DecodeRuneInString(t)
		t = t[size:]
		if sr == tr {
			continue
		}
		if 'A' <= sr && sr <= 'Z' {
			sr = sr + 'a' - 'A'
		}
		if 'A' <= tr && tr <= 'Z' {
			tr = tr + 'a' - 'A'
		}
		if sr != tr {
			return false
		}
	}
	return s == t
}

// checkOrigin rejects websocket upgrades from browsers on other hosts.
func checkOrigin(r *http.Request) bool {
	// Allow requests with no origin header set.
	origin := r.Header["Origin"]
	if len(origin) == 0 {
		return true
	}

	// Reject requests with origin headers that are not valid URLs.
	originURL, err := url.Parse(origin[0])
	if err != nil {
		return false
	}

	// Allow local resources on browsers that set the origin header for
	// them.
	if originURL.Scheme == "file" || originURL.Path == "null" {
		return true
	}

	// Strip the port from both the origin and request hosts.
	originHost := originURL.Host
	requestHost := r.Host
	if host, _, err := net.SplitHostPort(originHost); err == nil {
		originHost = host
	}
	if host, _, err := net.SplitHostPort(requestHost); err == nil {
		requestHost = host
	}

	// Reject mismatched hosts.
	return equalASCIIFold(originHost, requestHost)
}

// handler returns the handler serving the endpoints of the rpc server.
func (s *Server) handler() http.Handler {
	rpcServeMux := http.NewServeMux()
	rpcServeMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Connection", "close")
		w.Header().Set("Content-Type", "application/json")
		r.Close = true

		// Limit the number of connections to max allowed.
		if s.limitConnections(w, r.RemoteAddr) {
			return
		}

		// Keep track of the number of connected clients.
		s.incrementClients()
		defer s.decrementClients()
		_, isAdmin, err := s.checkAuth(r, true)
		if err != nil {
			jsonAuthFail(w)
			return
		}

		// Read and respond to the request.
		s.jsonRPCRead(r.Context(), w, r, isAdmin)
	})

	// Websocket endpoint.
	rpcServeMux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		authenticated, isAdmin, err := s.checkAuth(r, false)
		if err != nil {
			jsonAuthFail(w)
			return
		}

		// Attempt to upgrade the connection to a websocket connection using the
		// default size for read/write buffers and impose a read limit that
		// depends on whether or not the connection is authenticated yet.
		upgrader := websocket.Upgrader{CheckOrigin: checkOrigin}
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			var herr websocket.HandshakeError
			if !errors.As(err, &herr) {
				log.Errorf("Unexpected websocket error: %v", err)
			}
			return
		}
		ws.SetPingHandler(func(payload string) error {
			log.Debugf("ping received: len %d", len(payload))
			var netErr net.Error
			err := ws.WriteControl(websocket.PongMessage, []byte(payload),
				time.Now().Add(websocketPongTimeout))
			if err != nil && !errors.Is(err, websocket.ErrCloseSent) &&
				!(errors.As(err, &netErr) && netErr.Timeout()) {

				log.Errorf("Failed to send pong: %v", err)
				return err
			}
			return nil
		})
		if !authenticated {
			ws.SetReadLimit(websocketReadLimitUnauthenticated)
		} else {
			ws.SetReadLimit(websocketReadLimitAuthenticated)
		}
		s.WebsocketHandler(r.Context(), ws, r.RemoteAddr, authenticated,
			isAdmin)
	})
	return rpcServeMux
}

// route sets up the endpoints of the rpc server.
func (s *Server) route(ctx context.Context) *http.Server {
	return &http.Server{
		Handler: s.handler(),

		// Use the provided context as the parent context for all requests to
		// ensure handlers are able to react to both client disconnects as well
		// as shutdown via the provided context.
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},

		// Timeout connections which don't complete the initial
		// handshake within the allowed timeframe.
		ReadTimeout: time.Second * rpcAuthTimeoutSeconds,

		// Reroute http server error logging through the rpcserver
		// logger.
		ErrorLog: stdlog.New(logForwarder{}, "", 0),
	}
}

// Run starts the rpc server and its listeners. It blocks until the
// provided context is cancelled.
func (s *Server) Run(ctx context.Context) {
	log.Trace("Starting RPC server")
	server := s.route(ctx)
	for _, listener := range s.cfg.Listeners {
		s.wg.Add(1)
		go func(listener net.Listener) {
			log.Infof("RPC server listening on %s", listener.Addr())
			server.Serve(listener)
			log.Tracef("RPC listener done for %s", listener.Addr())
			s.wg.Done()
		}(listener)
	}

	s.ntfnMgr.Run(ctx)
	err := s.shutdown()
	if err != nil {
		log.Error(err)
		return
	}
}

// Config is a descriptor containing the RPC server configuration.
type Config struct {
	// Listeners defines a slice of listeners for which the RPC server will
	// take ownership of and accept connections.  Since the RPC server takes
	// ownership of these listeners, they will be closed when the RPC server
	// is stopped.
	Listeners []net.Listener

	// Generator defines the random number queue served by the RPC server.
	Generator Generator

	// Chain defines the sequencer whose latest block is reported.
	Chain Chain

	// These fields allow the RPC server to interface with the ledger and the
	// validators that operate on it.
	Ledger    *ledger.Ledger
	Payments  *payment.Splitter
	Vesting   *vesting.Vesting
	Staking   *stakeperiod.Control
	Allowlist *allowlist.Allowlist

	// These fields define the username and password for RPC connections and
	// limited RPC connections.
	RPCUser      string
	RPCPass      string
	RPCLimitUser string
	RPCLimitPass string

	// RPCMaxClients defines the max number of RPC clients for standard
	// connections.
	RPCMaxClients int

	// RPCMaxConcurrentReqs defines the max number of RPC requests that may be
	// processed concurrently.
	RPCMaxConcurrentReqs int

	// RPCMaxWebsockets defines the max number of RPC websocket connections.
	RPCMaxWebsockets int

	// LogManager defines the log manager for the RPC server to use.
	LogManager LogManager
}

// New returns a new instance of the Server struct.
func New(config *Config) (*Server, error) {
	rpc := Server{
		cfg:                    *config,
		statusLines:            make(map[int]string),
		requestProcessShutdown: make(chan struct{}),
	}
	var key [32]byte
	rand.Read(key[:])
	rpc.hmac = hmac.New(sha256.New, key[:])
	if config.RPCUser != "" && config.RPCPass != "" {
		login := config.RPCUser + ":" + config.RPCPass
		auth := "Basic " +
			base64.StdEncoding.EncodeToString([]byte(login))
		rpc.authMAC(rpc.authsha[:0], []byte(auth))
	}
	if config.RPCLimitUser != "" && config.RPCLimitPass != "" {
		login := config.RPCLimitUser + ":" + config.RPCLimitPass
		auth := "Basic " +
			base64.StdEncoding.EncodeToString([]byte(login))
		rpc.authMAC(rpc.limitauthsha[:0], []byte(auth))
	}
	rpc.ntfnMgr = newWsNotificationManager(&rpc)

	return &rpc, nil
}
