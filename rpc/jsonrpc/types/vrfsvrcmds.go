// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// NOTE: This file is intended to house the RPC commands that are supported by
// the vrfd server.

package types

import (
	"github.com/decred/dcrd/dcrjson/v4"
)

// DebugLevelCmd defines the debuglevel JSON-RPC command.
type DebugLevelCmd struct {
	LevelSpec string
}

// NewDebugLevelCmd returns a new DebugLevelCmd which can be used to issue a
// debuglevel JSON-RPC command.
func NewDebugLevelCmd(levelSpec string) *DebugLevelCmd {
	return &DebugLevelCmd{
		LevelSpec: levelSpec,
	}
}

// GetRandomNumberCmd defines the getrandomnumber JSON-RPC command.
type GetRandomNumberCmd struct {
	Bound uint64
}

// NewGetRandomNumberCmd returns a new instance which can be used to issue a
// getrandomnumber JSON-RPC command.
func NewGetRandomNumberCmd(bound uint64) *GetRandomNumberCmd {
	return &GetRandomNumberCmd{
		Bound: bound,
	}
}

// FulfillRandomWordsCmd defines the fulfillrandomwords JSON-RPC command.  The
// words are hex encoded big-endian 256-bit integers.
type FulfillRandomWordsCmd struct {
	RequestID string
	Words     []string
}

// NewFulfillRandomWordsCmd returns a new instance which can be used to issue a
// fulfillrandomwords JSON-RPC command.
func NewFulfillRandomWordsCmd(requestID string, words []string) *FulfillRandomWordsCmd {
	return &FulfillRandomWordsCmd{
		RequestID: requestID,
		Words:     words,
	}
}

// GetBatchCmd defines the getbatch JSON-RPC command.
type GetBatchCmd struct {
	Index uint64
}

// NewGetBatchCmd returns a new instance which can be used to issue a getbatch
// JSON-RPC command.
func NewGetBatchCmd(index uint64) *GetBatchCmd {
	return &GetBatchCmd{
		Index: index,
	}
}

// GetQueueInfoCmd defines the getqueueinfo JSON-RPC command.
type GetQueueInfoCmd struct{}

// NewGetQueueInfoCmd returns a new instance which can be used to issue a
// getqueueinfo JSON-RPC command.
func NewGetQueueInfoCmd() *GetQueueInfoCmd {
	return &GetQueueInfoCmd{}
}

// GetBestBlockCmd defines the getbestblock JSON-RPC command.
type GetBestBlockCmd struct{}

// NewGetBestBlockCmd returns a new instance which can be used to issue a
// getbestblock JSON-RPC command.
func NewGetBestBlockCmd() *GetBestBlockCmd {
	return &GetBestBlockCmd{}
}

// PayCmd defines the pay JSON-RPC command.  Amounts are decimal strings in
// the smallest unit of the asset.  Value is the native coin attached to the
// payment and is ignored when payments are made in a token.
type PayCmd struct {
	Payer  string
	Amount string
	Value  *string `jsonrpcdefault:"\"0\""`
}

// NewPayCmd returns a new instance which can be used to issue a pay JSON-RPC
// command.
func NewPayCmd(payer, amount string, value *string) *PayCmd {
	return &PayCmd{
		Payer:  payer,
		Amount: amount,
		Value:  value,
	}
}

// SetFeeReceiverCmd defines the setfeereceiver JSON-RPC command.
type SetFeeReceiverCmd struct {
	Address string
}

// NewSetFeeReceiverCmd returns a new instance which can be used to issue a
// setfeereceiver JSON-RPC command.
func NewSetFeeReceiverCmd(address string) *SetFeeReceiverCmd {
	return &SetFeeReceiverCmd{
		Address: address,
	}
}

// SetPaymentTokenCmd defines the setpaymenttoken JSON-RPC command.  The token
// "native" selects the native coin.
type SetPaymentTokenCmd struct {
	Token string
}

// NewSetPaymentTokenCmd returns a new instance which can be used to issue a
// setpaymenttoken JSON-RPC command.
func NewSetPaymentTokenCmd(token string) *SetPaymentTokenCmd {
	return &SetPaymentTokenCmd{
		Token: token,
	}
}

// AddVestingCmd defines the addvesting JSON-RPC command.  Start is a unix
// timestamp while Duration and Cliff are in seconds.
type AddVestingCmd struct {
	Beneficiary string
	Amount      string
	Start       int64
	Duration    int64
	Cliff       int64
}

// NewAddVestingCmd returns a new instance which can be used to issue an
// addvesting JSON-RPC command.
func NewAddVestingCmd(beneficiary, amount string, start, duration, cliff int64) *AddVestingCmd {
	return &AddVestingCmd{
		Beneficiary: beneficiary,
		Amount:      amount,
		Start:       start,
		Duration:    duration,
		Cliff:       cliff,
	}
}

// ClaimVestingCmd defines the claimvesting JSON-RPC command.
type ClaimVestingCmd struct {
	Beneficiary string
}

// NewClaimVestingCmd returns a new instance which can be used to issue a
// claimvesting JSON-RPC command.
func NewClaimVestingCmd(beneficiary string) *ClaimVestingCmd {
	return &ClaimVestingCmd{
		Beneficiary: beneficiary,
	}
}

// GetVestingCmd defines the getvesting JSON-RPC command.
type GetVestingCmd struct {
	Beneficiary string
}

// NewGetVestingCmd returns a new instance which can be used to issue a
// getvesting JSON-RPC command.
func NewGetVestingCmd(beneficiary string) *GetVestingCmd {
	return &GetVestingCmd{
		Beneficiary: beneficiary,
	}
}

// GetStakingPeriodCmd defines the getstakingperiod JSON-RPC command.
type GetStakingPeriodCmd struct{}

// NewGetStakingPeriodCmd returns a new instance which can be used to issue a
// getstakingperiod JSON-RPC command.
func NewGetStakingPeriodCmd() *GetStakingPeriodCmd {
	return &GetStakingPeriodCmd{}
}

// InitStakingPeriodCmd defines the initstakingperiod JSON-RPC command.
type InitStakingPeriodCmd struct {
	IsTimestamp bool
	Start       int64
	End         int64
	BonusEnd    int64
}

// NewInitStakingPeriodCmd returns a new instance which can be used to issue an
// initstakingperiod JSON-RPC command.
func NewInitStakingPeriodCmd(isTimestamp bool, start, end, bonusEnd int64) *InitStakingPeriodCmd {
	return &InitStakingPeriodCmd{
		IsTimestamp: isTimestamp,
		Start:       start,
		End:         end,
		BonusEnd:    bonusEnd,
	}
}

// UpdateStakingPeriodCmd defines the updatestakingperiod JSON-RPC command.
type UpdateStakingPeriodCmd struct {
	IsTimestamp bool
	Start       int64
	End         int64
	BonusEnd    int64
}

// NewUpdateStakingPeriodCmd returns a new instance which can be used to issue
// an updatestakingperiod JSON-RPC command.
func NewUpdateStakingPeriodCmd(isTimestamp bool, start, end, bonusEnd int64) *UpdateStakingPeriodCmd {
	return &UpdateStakingPeriodCmd{
		IsTimestamp: isTimestamp,
		Start:       start,
		End:         end,
		BonusEnd:    bonusEnd,
	}
}

// CheckStakingPhaseCmd defines the checkstakingphase JSON-RPC command.
type CheckStakingPhaseCmd struct {
	Phase string `jsonrpcusage:"\"beforestakestart|afterstakestart|beforestakeend|afterstakeend|beforebonusend|afterbonusend\""`
}

// NewCheckStakingPhaseCmd returns a new instance which can be used to issue a
// checkstakingphase JSON-RPC command.
func NewCheckStakingPhaseCmd(phase string) *CheckStakingPhaseCmd {
	return &CheckStakingPhaseCmd{
		Phase: phase,
	}
}

// UpdateAllowlistCmd defines the updateallowlist JSON-RPC command.
type UpdateAllowlistCmd struct {
	Root string
}

// NewUpdateAllowlistCmd returns a new instance which can be used to issue an
// updateallowlist JSON-RPC command.
func NewUpdateAllowlistCmd(root string) *UpdateAllowlistCmd {
	return &UpdateAllowlistCmd{
		Root: root,
	}
}

// CheckAllowlistCmd defines the checkallowlist JSON-RPC command.
type CheckAllowlistCmd struct {
	Address string
	Proof   []string
}

// NewCheckAllowlistCmd returns a new instance which can be used to issue a
// checkallowlist JSON-RPC command.
func NewCheckAllowlistCmd(address string, proof []string) *CheckAllowlistCmd {
	return &CheckAllowlistCmd{
		Address: address,
		Proof:   proof,
	}
}

// GetBalanceCmd defines the getbalance JSON-RPC command.  The asset "native"
// selects the native coin.
type GetBalanceCmd struct {
	Asset   string
	Address string
}

// NewGetBalanceCmd returns a new instance which can be used to issue a
// getbalance JSON-RPC command.
func NewGetBalanceCmd(asset, address string) *GetBalanceCmd {
	return &GetBalanceCmd{
		Asset:   asset,
		Address: address,
	}
}

// MintCmd defines the mint JSON-RPC command.
type MintCmd struct {
	Asset   string
	Address string
	Amount  string
}

// NewMintCmd returns a new instance which can be used to issue a mint JSON-RPC
// command.
func NewMintCmd(asset, address, amount string) *MintCmd {
	return &MintCmd{
		Asset:   asset,
		Address: address,
		Amount:  amount,
	}
}

// StopCmd defines the stop JSON-RPC command.
type StopCmd struct{}

// NewStopCmd returns a new instance which can be used to issue a stop JSON-RPC
// command.
func NewStopCmd() *StopCmd {
	return &StopCmd{}
}

// VersionCmd defines the version JSON-RPC command.
type VersionCmd struct{}

// NewVersionCmd returns a new instance which can be used to issue a JSON-RPC
// version command.
func NewVersionCmd() *VersionCmd { return new(VersionCmd) }

func init() {
	// No special flags for commands in this file.
	flags := dcrjson.UsageFlag(0)

	dcrjson.MustRegister(Method("addvesting"), (*AddVestingCmd)(nil), flags)
	dcrjson.MustRegister(Method("checkallowlist"), (*CheckAllowlistCmd)(nil), flags)
	dcrjson.MustRegister(Method("checkstakingphase"), (*CheckStakingPhaseCmd)(nil), flags)
	dcrjson.MustRegister(Method("claimvesting"), (*ClaimVestingCmd)(nil), flags)
	dcrjson.MustRegister(Method("debuglevel"), (*DebugLevelCmd)(nil), flags)
	dcrjson.MustRegister(Method("fulfillrandomwords"), (*FulfillRandomWordsCmd)(nil), flags)
	dcrjson.MustRegister(Method("getbalance"), (*GetBalanceCmd)(nil), flags)
	dcrjson.MustRegister(Method("getbatch"), (*GetBatchCmd)(nil), flags)
	dcrjson.MustRegister(Method("getbestblock"), (*GetBestBlockCmd)(nil), flags)
	dcrjson.MustRegister(Method("getqueueinfo"), (*GetQueueInfoCmd)(nil), flags)
	dcrjson.MustRegister(Method("getrandomnumber"), (*GetRandomNumberCmd)(nil), flags)
	dcrjson.MustRegister(Method("getstakingperiod"), (*GetStakingPeriodCmd)(nil), flags)
	dcrjson.MustRegister(Method("getvesting"), (*GetVestingCmd)(nil), flags)
	dcrjson.MustRegister(Method("initstakingperiod"), (*InitStakingPeriodCmd)(nil), flags)
	dcrjson.MustRegister(Method("mint"), (*MintCmd)(nil), flags)
	dcrjson.MustRegister(Method("pay"), (*PayCmd)(nil), flags)
	dcrjson.MustRegister(Method("setfeereceiver"), (*SetFeeReceiverCmd)(nil), flags)
	dcrjson.MustRegister(Method("setpaymenttoken"), (*SetPaymentTokenCmd)(nil), flags)
	dcrjson.MustRegister(Method("stop"), (*StopCmd)(nil), flags)
	dcrjson.MustRegister(Method("updateallowlist"), (*UpdateAllowlistCmd)(nil), flags)
	dcrjson.MustRegister(Method("updatestakingperiod"), (*UpdateStakingPeriodCmd)(nil), flags)
	dcrjson.MustRegister(Method("version"), (*VersionCmd)(nil), flags)
}
