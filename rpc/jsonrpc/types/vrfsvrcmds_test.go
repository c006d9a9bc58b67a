// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"testing"

	"github.com/decred/dcrd/dcrjson/v4"
)

// TestVrfSvrCmds tests all of the vrfd server commands marshal and unmarshal
// into valid results include handling of optional fields being omitted in the
// marshalled command, while optional fields with defaults have the default
// assigned on unmarshalled commands.
func TestVrfSvrCmds(t *testing.T) {
	t.Parallel()

	const addr = "0x00000000000000000000000000000000000000aa"
	const word = "00000000000000000000000000000000000000000000000000000000000000ff"
	testID := int(1)
	tests := []struct {
		name         string
		newCmd       func() (interface{}, error)
		staticCmd    func() interface{}
		marshalled   string
		unmarshalled interface{}
	}{
		{
			name: "debuglevel",
			newCmd: func() (interface{}, error) {
				return dcrjson.NewCmd(Method("debuglevel"), "trace")
			},
			staticCmd: func() interface{} {
				return NewDebugLevelCmd("trace")
			},
			marshalled:   `{"jsonrpc":"1.0","method":"debuglevel","params":["trace"],"id":1}`,
			unmarshalled: &DebugLevelCmd{LevelSpec: "trace"},
		},
		{
			name: "getrandomnumber",
			newCmd: func() (interface{}, error) {
				return dcrjson.NewCmd(Method("getrandomnumber"), 10)
			},
			staticCmd: func() interface{} {
				return NewGetRandomNumberCmd(10)
			},
			marshalled:   `{"jsonrpc":"1.0","method":"getrandomnumber","params":[10],"id":1}`,
			unmarshalled: &GetRandomNumberCmd{Bound: 10},
		},
		{
			name: "fulfillrandomwords",
			newCmd: func() (interface{}, error) {
				return dcrjson.NewCmd(Method("fulfillrandomwords"), "abc",
					[]string{word})
			},
			staticCmd: func() interface{} {
				return NewFulfillRandomWordsCmd("abc", []string{word})
			},
			marshalled: `{"jsonrpc":"1.0","method":"fulfillrandomwords","params":["abc",["` +
				word + `"]],"id":1}`,
			unmarshalled: &FulfillRandomWordsCmd{
				RequestID: "abc",
				Words:     []string{word},
			},
		},
		{
			name: "getbatch",
			newCmd: func() (interface{}, error) {
				return dcrjson.NewCmd(Method("getbatch"), 3)
			},
			staticCmd: func() interface{} {
				return NewGetBatchCmd(3)
			},
			marshalled:   `{"jsonrpc":"1.0","method":"getbatch","params":[3],"id":1}`,
			unmarshalled: &GetBatchCmd{Index: 3},
		},
		{
			name: "getqueueinfo",
			newCmd: func() (interface{}, error) {
				return dcrjson.NewCmd(Method("getqueueinfo"))
			},
			staticCmd: func() interface{} {
				return NewGetQueueInfoCmd()
			},
			marshalled:   `{"jsonrpc":"1.0","method":"getqueueinfo","params":[],"id":1}`,
			unmarshalled: &GetQueueInfoCmd{},
		},
		{
			name: "getbestblock",
			newCmd: func() (interface{}, error) {
				return dcrjson.NewCmd(Method("getbestblock"))
			},
			staticCmd: func() interface{} {
				return NewGetBestBlockCmd()
			},
			marshalled:   `{"jsonrpc":"1.0","method":"getbestblock","params":[],"id":1}`,
			unmarshalled: &GetBestBlockCmd{},
		},
		{
			name: "pay",
			newCmd: func() (interface{}, error) {
				return dcrjson.NewCmd(Method("pay"), addr, "100")
			},
			staticCmd: func() interface{} {
				return NewPayCmd(addr, "100", nil)
			},
			marshalled: `{"jsonrpc":"1.0","method":"pay","params":["` + addr +
				`","100"],"id":1}`,
			unmarshalled: &PayCmd{
				Payer:  addr,
				Amount: "100",
				Value:  dcrjson.String("0"),
			},
		},
		{
			name: "pay optional",
			newCmd: func() (interface{}, error) {
				return dcrjson.NewCmd(Method("pay"), addr, "100", "150")
			},
			staticCmd: func() interface{} {
				return NewPayCmd(addr, "100", dcrjson.String("150"))
			},
			marshalled: `{"jsonrpc":"1.0","method":"pay","params":["` + addr +
				`","100","150"],"id":1}`,
			unmarshalled: &PayCmd{
				Payer:  addr,
				Amount: "100",
				Value:  dcrjson.String("150"),
			},
		},
		{
			name: "setfeereceiver",
			newCmd: func() (interface{}, error) {
				return dcrjson.NewCmd(Method("setfeereceiver"), addr)
			},
			staticCmd: func() interface{} {
				return NewSetFeeReceiverCmd(addr)
			},
			marshalled:   `{"jsonrpc":"1.0","method":"setfeereceiver","params":["` + addr + `"],"id":1}`,
			unmarshalled: &SetFeeReceiverCmd{Address: addr},
		},
		{
			name: "setpaymenttoken",
			newCmd: func() (interface{}, error) {
				return dcrjson.NewCmd(Method("setpaymenttoken"), "native")
			},
			staticCmd: func() interface{} {
				return NewSetPaymentTokenCmd("native")
			},
			marshalled:   `{"jsonrpc":"1.0","method":"setpaymenttoken","params":["native"],"id":1}`,
			unmarshalled: &SetPaymentTokenCmd{Token: "native"},
		},
		{
			name: "addvesting",
			newCmd: func() (interface{}, error) {
				return dcrjson.NewCmd(Method("addvesting"), addr, "7000",
					1700000000, 604800, 259200)
			},
			staticCmd: func() interface{} {
				return NewAddVestingCmd(addr, "7000", 1700000000, 604800,
					259200)
			},
			marshalled: `{"jsonrpc":"1.0","method":"addvesting","params":["` + addr +
				`","7000",1700000000,604800,259200],"id":1}`,
			unmarshalled: &AddVestingCmd{
				Beneficiary: addr,
				Amount:      "7000",
				Start:       1700000000,
				Duration:    604800,
				Cliff:       259200,
			},
		},
		{
			name: "claimvesting",
			newCmd: func() (interface{}, error) {
				return dcrjson.NewCmd(Method("claimvesting"), addr)
			},
			staticCmd: func() interface{} {
				return NewClaimVestingCmd(addr)
			},
			marshalled:   `{"jsonrpc":"1.0","method":"claimvesting","params":["` + addr + `"],"id":1}`,
			unmarshalled: &ClaimVestingCmd{Beneficiary: addr},
		},
		{
			name: "getvesting",
			newCmd: func() (interface{}, error) {
				return dcrjson.NewCmd(Method("getvesting"), addr)
			},
			staticCmd: func() interface{} {
				return NewGetVestingCmd(addr)
			},
			marshalled:   `{"jsonrpc":"1.0","method":"getvesting","params":["` + addr + `"],"id":1}`,
			unmarshalled: &GetVestingCmd{Beneficiary: addr},
		},
		{
			name: "getstakingperiod",
			newCmd: func() (interface{}, error) {
				return dcrjson.NewCmd(Method("getstakingperiod"))
			},
			staticCmd: func() interface{} {
				return NewGetStakingPeriodCmd()
			},
			marshalled:   `{"jsonrpc":"1.0","method":"getstakingperiod","params":[],"id":1}`,
			unmarshalled: &GetStakingPeriodCmd{},
		},
		{
			name: "initstakingperiod",
			newCmd: func() (interface{}, error) {
				return dcrjson.NewCmd(Method("initstakingperiod"), false, 10,
					20, 30)
			},
			staticCmd: func() interface{} {
				return NewInitStakingPeriodCmd(false, 10, 20, 30)
			},
			marshalled:   `{"jsonrpc":"1.0","method":"initstakingperiod","params":[false,10,20,30],"id":1}`,
			unmarshalled: &InitStakingPeriodCmd{Start: 10, End: 20, BonusEnd: 30},
		},
		{
			name: "updatestakingperiod",
			newCmd: func() (interface{}, error) {
				return dcrjson.NewCmd(Method("updatestakingperiod"), true,
					1700000000, 1700003600, 1700007200)
			},
			staticCmd: func() interface{} {
				return NewUpdateStakingPeriodCmd(true, 1700000000, 1700003600,
					1700007200)
			},
			marshalled: `{"jsonrpc":"1.0","method":"updatestakingperiod","params":` +
				`[true,1700000000,1700003600,1700007200],"id":1}`,
			unmarshalled: &UpdateStakingPeriodCmd{
				IsTimestamp: true,
				Start:       1700000000,
				End:         1700003600,
				BonusEnd:    1700007200,
			},
		},
		{
			name: "checkstakingphase",
			newCmd: func() (interface{}, error) {
				return dcrjson.NewCmd(Method("checkstakingphase"),
					"afterstakestart")
			},
			staticCmd: func() interface{} {
				return NewCheckStakingPhaseCmd("afterstakestart")
			},
			marshalled:   `{"jsonrpc":"1.0","method":"checkstakingphase","params":["afterstakestart"],"id":1}`,
			unmarshalled: &CheckStakingPhaseCmd{Phase: "afterstakestart"},
		},
		{
			name: "updateallowlist",
			newCmd: func() (interface{}, error) {
				return dcrjson.NewCmd(Method("updateallowlist"), word)
			},
			staticCmd: func() interface{} {
				return NewUpdateAllowlistCmd(word)
			},
			marshalled:   `{"jsonrpc":"1.0","method":"updateallowlist","params":["` + word + `"],"id":1}`,
			unmarshalled: &UpdateAllowlistCmd{Root: word},
		},
		{
			name: "checkallowlist",
			newCmd: func() (interface{}, error) {
				return dcrjson.NewCmd(Method("checkallowlist"), addr,
					[]string{word, word})
			},
			staticCmd: func() interface{} {
				return NewCheckAllowlistCmd(addr, []string{word, word})
			},
			marshalled: `{"jsonrpc":"1.0","method":"checkallowlist","params":["` + addr +
				`",["` + word + `","` + word + `"]],"id":1}`,
			unmarshalled: &CheckAllowlistCmd{
				Address: addr,
				Proof:   []string{word, word},
			},
		},
		{
			name: "getbalance",
			newCmd: func() (interface{}, error) {
				return dcrjson.NewCmd(Method("getbalance"), "native", addr)
			},
			staticCmd: func() interface{} {
				return NewGetBalanceCmd("native", addr)
			},
			marshalled:   `{"jsonrpc":"1.0","method":"getbalance","params":["native","` + addr + `"],"id":1}`,
			unmarshalled: &GetBalanceCmd{Asset: "native", Address: addr},
		},
		{
			name: "mint",
			newCmd: func() (interface{}, error) {
				return dcrjson.NewCmd(Method("mint"), "native", addr, "5")
			},
			staticCmd: func() interface{} {
				return NewMintCmd("native", addr, "5")
			},
			marshalled:   `{"jsonrpc":"1.0","method":"mint","params":["native","` + addr + `","5"],"id":1}`,
			unmarshalled: &MintCmd{Asset: "native", Address: addr, Amount: "5"},
		},
		{
			name: "stop",
			newCmd: func() (interface{}, error) {
				return dcrjson.NewCmd(Method("stop"))
			},
			staticCmd: func() interface{} {
				return NewStopCmd()
			},
			marshalled:   `{"jsonrpc":"1.0","method":"stop","params":[],"id":1}`,
			unmarshalled: &StopCmd{},
		},
		{
			name: "version",
			newCmd: func() (interface{}, error) {
				return dcrjson.NewCmd(Method("version"))
			},
			staticCmd: func() interface{} {
				return NewVersionCmd()
			},
			marshalled:   `{"jsonrpc":"1.0","method":"version","params":[],"id":1}`,
			unmarshalled: &VersionCmd{},
		},
		{
			name: "authenticate",
			newCmd: func() (interface{}, error) {
				return dcrjson.NewCmd(Method("authenticate"), "user", "pass")
			},
			staticCmd: func() interface{} {
				return NewAuthenticateCmd("user", "pass")
			},
			marshalled:   `{"jsonrpc":"1.0","method":"authenticate","params":["user","pass"],"id":1}`,
			unmarshalled: &AuthenticateCmd{Username: "user", Passphrase: "pass"},
		},
		{
			name: "notifyrandomnumbers",
			newCmd: func() (interface{}, error) {
				return dcrjson.NewCmd(Method("notifyrandomnumbers"))
			},
			staticCmd: func() interface{} {
				return NewNotifyRandomNumbersCmd()
			},
			marshalled:   `{"jsonrpc":"1.0","method":"notifyrandomnumbers","params":[],"id":1}`,
			unmarshalled: &NotifyRandomNumbersCmd{},
		},
		{
			name: "stopnotifyrandomnumbers",
			newCmd: func() (interface{}, error) {
				return dcrjson.NewCmd(Method("stopnotifyrandomnumbers"))
			},
			staticCmd: func() interface{} {
				return NewStopNotifyRandomNumbersCmd()
			},
			marshalled:   `{"jsonrpc":"1.0","method":"stopnotifyrandomnumbers","params":[],"id":1}`,
			unmarshalled: &StopNotifyRandomNumbersCmd{},
		},
	}

	t.Logf("Running %d tests", len(tests))
	for i, test := range tests {
		// Marshal the command as created by the new static command
		// creation function.
		marshalled, err := dcrjson.MarshalCmd("1.0", testID, test.staticCmd())
		if err != nil {
			t.Errorf("MarshalCmd #%d (%s) unexpected error: %v", i,
				test.name, err)
			continue
		}

		if !bytes.Equal(marshalled, []byte(test.marshalled)) {
			t.Errorf("Test #%d (%s) unexpected marshalled data - "+
				"got %s, want %s", i, test.name, marshalled,
				test.marshalled)
			continue
		}

		// Ensure the command is created without error via the generic
		// new command creation function.
		cmd, err := test.newCmd()
		if err != nil {
			t.Errorf("Test #%d (%s) unexpected dcrjson.NewCmd error: %v",
				i, test.name, err)
			continue
		}

		// Marshal the command as created by the generic new command
		// creation function.
		marshalled, err = dcrjson.MarshalCmd("1.0", testID, cmd)
		if err != nil {
			t.Errorf("MarshalCmd #%d (%s) unexpected error: %v", i,
				test.name, err)
			continue
		}

		if !bytes.Equal(marshalled, []byte(test.marshalled)) {
			t.Errorf("Test #%d (%s) unexpected marshalled data - "+
				"got %s, want %s", i, test.name, marshalled,
				test.marshalled)
			continue
		}

		var request dcrjson.Request
		if err := json.Unmarshal(marshalled, &request); err != nil {
			t.Errorf("Test #%d (%s) unexpected error while "+
				"unmarshalling JSON-RPC request: %v", i,
				test.name, err)
			continue
		}

		cmd, err = dcrjson.ParseParams(Method(request.Method), request.Params)
		if err != nil {
			t.Errorf("ParseParams #%d (%s) unexpected error: %v", i,
				test.name, err)
			continue
		}

		if !reflect.DeepEqual(cmd, test.unmarshalled) {
			t.Errorf("Test #%d (%s) unexpected unmarshalled command "+
				"- got %s, want %s", i, test.name,
				fmt.Sprintf("(%T) %+[1]v", cmd),
				fmt.Sprintf("(%T) %+[1]v\n", test.unmarshalled))
			continue
		}
	}
}

// TestVrfSvrNtfns tests all of the vrfd server websocket-specific
// notifications marshal and unmarshal into valid results.
func TestVrfSvrNtfns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		newNtfn      func() (interface{}, error)
		staticNtfn   func() interface{}
		marshalled   string
		unmarshalled interface{}
	}{
		{
			name: "randomnumber",
			newNtfn: func() (interface{}, error) {
				return dcrjson.NewCmd(RandomNumberNtfnMethod, 7, 10,
					"oracle")
			},
			staticNtfn: func() interface{} {
				return NewRandomNumberNtfn(7, 10, "oracle")
			},
			marshalled:   `{"jsonrpc":"1.0","method":"randomnumber","params":[7,10,"oracle"],"id":null}`,
			unmarshalled: &RandomNumberNtfn{Value: 7, Bound: 10, Source: "oracle"},
		},
		{
			name: "batchappended",
			newNtfn: func() (interface{}, error) {
				return dcrjson.NewCmd(BatchAppendedNtfnMethod, "abc", 2)
			},
			staticNtfn: func() interface{} {
				return NewBatchAppendedNtfn("abc", 2)
			},
			marshalled:   `{"jsonrpc":"1.0","method":"batchappended","params":["abc",2],"id":null}`,
			unmarshalled: &BatchAppendedNtfn{RequestID: "abc", Index: 2},
		},
	}

	t.Logf("Running %d tests", len(tests))
	for i, test := range tests {
		// Marshal the notification as created by the new static
		// creation function.  The ID is nil for notifications.
		marshalled, err := dcrjson.MarshalCmd("1.0", nil, test.staticNtfn())
		if err != nil {
			t.Errorf("MarshalCmd #%d (%s) unexpected error: %v", i,
				test.name, err)
			continue
		}

		if !bytes.Equal(marshalled, []byte(test.marshalled)) {
			t.Errorf("Test #%d (%s) unexpected marshalled data - "+
				"got %s, want %s", i, test.name, marshalled,
				test.marshalled)
			continue
		}

		// Ensure the notification is created without error via the
		// generic new notification creation function.
		cmd, err := test.newNtfn()
		if err != nil {
			t.Errorf("Test #%d (%s) unexpected dcrjson.NewCmd error: %v ",
				i, test.name, err)
			continue
		}

		// Marshal the notification as created by the generic new
		// notification creation function.    The ID is nil for
		// notifications.
		marshalled, err = dcrjson.MarshalCmd("1.0", nil, cmd)
		if err != nil {
			t.Errorf("MarshalCmd #%d (%s) unexpected error: %v", i,
				test.name, err)
			continue
		}

		if !bytes.Equal(marshalled, []byte(test.marshalled)) {
			t.Errorf("Test #%d (%s) unexpected marshalled data - "+
				"got %s, want %s", i, test.name, marshalled,
				test.marshalled)
			continue
		}

		var request dcrjson.Request
		if err := json.Unmarshal(marshalled, &request); err != nil {
			t.Errorf("Test #%d (%s) unexpected error while "+
				"unmarshalling JSON-RPC request: %v", i,
				test.name, err)
			continue
		}

		cmd, err = dcrjson.ParseParams(Method(request.Method), request.Params)
		if err != nil {
			t.Errorf("ParseParams #%d (%s) unexpected error: %v", i,
				test.name, err)
			continue
		}

		if !reflect.DeepEqual(cmd, test.unmarshalled) {
			t.Errorf("Test #%d (%s) unexpected unmarshalled command "+
				"- got %s, want %s", i, test.name,
				fmt.Sprintf("(%T) %+[1]v", cmd),
				fmt.Sprintf("(%T) %+[1]v\n", test.unmarshalled))
			continue
		}
	}
}
