// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package types

// GetRandomNumberResult models the data returned from the getrandomnumber
// command.
type GetRandomNumberResult struct {
	Value  uint64 `json:"value"`
	Bound  uint64 `json:"bound"`
	Source string `json:"source"`
	Cursor string `json:"cursor,omitempty"`
}

// FulfillRandomWordsResult models the data returned from the
// fulfillrandomwords command.
type FulfillRandomWordsResult struct {
	Index uint64 `json:"index"`
}

// GetQueueInfoResult models the data returned from the getqueueinfo command.
type GetQueueInfoResult struct {
	BatchSize       uint32 `json:"batchsize"`
	NumBatches      uint64 `json:"numbatches"`
	Cursor          string `json:"cursor"`
	Buffered        uint64 `json:"buffered"`
	RequestCount    uint64 `json:"requestcount"`
	Outstanding     bool   `json:"outstanding"`
	PendingRequests int    `json:"pendingrequests"`
	Served          uint64 `json:"served"`
	FallbackServed  uint64 `json:"fallbackserved"`
}

// GetBestBlockResult models the data from the getbestblock command.
type GetBestBlockResult struct {
	Hash   string `json:"hash"`
	Height int64  `json:"height"`
	Time   int64  `json:"time"`
}

// PayResult models the data returned from the pay command.
type PayResult struct {
	Payer       string `json:"payer"`
	FeeReceiver string `json:"feereceiver"`
	Asset       string `json:"asset"`
	Amount      string `json:"amount"`
	Retained    string `json:"retained"`
}

// GetVestingResult models the data returned from the getvesting command.
type GetVestingResult struct {
	Beneficiary string `json:"beneficiary"`
	Total       string `json:"total"`
	Start       int64  `json:"start"`
	Duration    int64  `json:"duration"`
	Cliff       int64  `json:"cliff"`
	Claimed     string `json:"claimed"`
	Claimable   string `json:"claimable"`
}

// GetStakingPeriodResult models the data returned from the getstakingperiod
// command.
type GetStakingPeriodResult struct {
	Initialized bool  `json:"initialized"`
	IsTimestamp bool  `json:"istimestamp"`
	Start       int64 `json:"start"`
	End         int64 `json:"end"`
	BonusEnd    int64 `json:"bonusend"`
}

// VersionResult models objects included in the version response.  In the
// actual result, these objects are keyed by the program or API name.
type VersionResult struct {
	VersionString string `json:"versionstring"`
	Major         uint32 `json:"major"`
	Minor         uint32 `json:"minor"`
	Patch         uint32 `json:"patch"`
	Prerelease    string `json:"prerelease"`
	BuildMetadata string `json:"buildmetadata"`
}
