// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package progresslog

import (
	"sync"
	"time"

	"github.com/decred/slog"
	"github.com/launchkit/vrfd/vrfqueue"
)

// logInterval is the minimum time between two progress messages.
const logInterval = time.Second * 10

// pickNoun returns the singular or plural form of a noun depending on the
// provided count.
func pickNoun(n uint64, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}

// Logger provides periodic logging of the random numbers served by the queue.
type Logger struct {
	sync.Mutex
	subsystemLogger slog.Logger
	progressAction  string

	// lastLogTime tracks the last time a log statement was shown.
	lastLogTime time.Time

	// These fields accumulate information about served numbers and appended
	// batches between log statements.
	servedOracle   uint64
	servedFallback uint64
	appended       uint64
	lastWord       vrfqueue.Cursor
}

// New returns a new progress logger.
func New(progressAction string, logger slog.Logger) *Logger {
	return &Logger{
		lastLogTime:     time.Now(),
		progressAction:  progressAction,
		subsystemLogger: logger,
	}
}

// logProgress shows the accumulated totals when the log interval passed or
// the log is forced and resets them.
//
// This function MUST be called with the logger lock held.
func (l *Logger) logProgress(forceLog bool) {
	now := time.Now()
	duration := now.Sub(l.lastLogTime)
	if !forceLog && duration < logInterval {
		return
	}

	served := l.servedOracle + l.servedFallback
	l.subsystemLogger.Infof("%s %d %s in the last %0.2fs (%d from the "+
		"oracle, %d %s, %d %s appended, last word %v)", l.progressAction,
		served, pickNoun(served, "number", "numbers"), duration.Seconds(),
		l.servedOracle, l.servedFallback,
		pickNoun(l.servedFallback, "fallback", "fallbacks"),
		l.appended, pickNoun(l.appended, "batch", "batches"), l.lastWord)

	l.servedOracle = 0
	l.servedFallback = 0
	l.appended = 0
	l.lastLogTime = now
}

// LogServed accumulates the provided served number and periodically (every 10
// seconds) logs an information message with the totals to show progress to the
// user.
//
// The progress message is templated as follows:
//  {progressAction} {numServed} {numbers|number} in the last {timePeriod}
//  ({numOracle} from the oracle, {numFallback} {fallbacks|fallback},
//  {numAppended} {batches|batch} appended, last word {lastWordCursor})
func (l *Logger) LogServed(rn *vrfqueue.RandomNumber) {
	l.Lock()
	defer l.Unlock()

	switch rn.Source {
	case vrfqueue.SourceOracle:
		l.servedOracle++
		l.lastWord = rn.Cursor
	default:
		l.servedFallback++
	}
	l.logProgress(false)
}

// LogAppended accumulates the provided appended batch.  Appending a batch
// while fallback numbers were being served forces a log message since it ends
// the degraded operation.
func (l *Logger) LogAppended(ba *vrfqueue.BatchAppended) {
	l.Lock()
	defer l.Unlock()

	l.appended++
	l.logProgress(l.servedFallback > 0)
}

// SetLastLogTime updates the last time data was logged to the provided time.
func (l *Logger) SetLastLogTime(time time.Time) {
	l.Lock()
	l.lastLogTime = time
	l.Unlock()
}
