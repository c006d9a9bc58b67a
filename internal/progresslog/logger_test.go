// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package progresslog

import (
	"io"
	"reflect"
	"testing"
	"time"

	"github.com/decred/slog"
	"github.com/launchkit/vrfd/vrfqueue"
)

var (
	backendLog = slog.NewBackend(io.Discard)
	testLog    = backendLog.Logger("TEST")
)

// TestLogProgress ensures the logging functionality works as expected via a
// test logger.
func TestLogProgress(t *testing.T) {
	oracleNum := &vrfqueue.RandomNumber{
		Value:  3,
		Bound:  10,
		Source: vrfqueue.SourceOracle,
		Cursor: vrfqueue.Cursor{Batch: 2, Offset: 5},
	}
	fallbackNum := &vrfqueue.RandomNumber{
		Value:  1,
		Bound:  10,
		Source: vrfqueue.SourceFallback,
	}
	batch := &vrfqueue.BatchAppended{Index: 3, Solicited: true}

	tests := []struct {
		name             string
		reset            bool
		served           *vrfqueue.RandomNumber
		appended         *vrfqueue.BatchAppended
		inputLastLogTime time.Time
		wantOracle       uint64
		wantFallback     uint64
		wantAppended     uint64
		wantLastWord     vrfqueue.Cursor
	}{{
		name:             "round 1, oracle number, last log time < 10 secs ago",
		served:           oracleNum,
		inputLastLogTime: time.Now(),
		wantOracle:       1,
		wantLastWord:     oracleNum.Cursor,
	}, {
		name:             "round 1, fallback number, last log time < 10 secs ago",
		served:           fallbackNum,
		inputLastLogTime: time.Now(),
		wantOracle:       1,
		wantFallback:     1,
		wantLastWord:     oracleNum.Cursor,
	}, {
		name:             "round 1, batch after fallback forces log",
		appended:         batch,
		inputLastLogTime: time.Now(),
		wantLastWord:     oracleNum.Cursor,
	}, {
		name:             "round 2, batch without fallback, last log time < 10 secs ago",
		reset:            true,
		appended:         batch,
		inputLastLogTime: time.Now(),
		wantAppended:     1,
	}, {
		name:             "round 2, oracle number, last log time < 10 secs ago",
		served:           oracleNum,
		inputLastLogTime: time.Now(),
		wantOracle:       1,
		wantAppended:     1,
		wantLastWord:     oracleNum.Cursor,
	}, {
		name:             "round 2, fallback number, last log time > 10 secs ago",
		served:           fallbackNum,
		inputLastLogTime: time.Now().Add(-11 * time.Second),
		wantLastWord:     oracleNum.Cursor,
	}}

	progressLogger := New("Served", testLog)
	for _, test := range tests {
		if test.reset {
			progressLogger = New("Served", testLog)
		}
		progressLogger.SetLastLogTime(test.inputLastLogTime)
		if test.served != nil {
			progressLogger.LogServed(test.served)
		}
		if test.appended != nil {
			progressLogger.LogAppended(test.appended)
		}
		want := &Logger{
			subsystemLogger: progressLogger.subsystemLogger,
			progressAction:  progressLogger.progressAction,
			lastLogTime:     progressLogger.lastLogTime,
			servedOracle:    test.wantOracle,
			servedFallback:  test.wantFallback,
			appended:        test.wantAppended,
			lastWord:        test.wantLastWord,
		}
		if !reflect.DeepEqual(progressLogger, want) {
			t.Errorf("%s:\nwant: %+v\ngot: %+v\n", test.name, want,
				progressLogger)
		}
	}
}

// TestPickNoun ensures the singular form is only used for a count of one.
func TestPickNoun(t *testing.T) {
	tests := []struct {
		n    uint64
		want string
	}{
		{n: 0, want: "batches"},
		{n: 1, want: "batch"},
		{n: 2, want: "batches"},
	}
	for _, test := range tests {
		if got := pickNoun(test.n, "batch", "batches"); got != test.want {
			t.Errorf("pickNoun(%d): got %q, want %q", test.n, got, test.want)
		}
	}
}
