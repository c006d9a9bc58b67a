// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package progresslog provides periodic logging for the random number queue.

Tests are included to ensure proper functionality.

## Feature Overview

- Maintains cumulative totals about served numbers between each logging interval
  - Total number of numbers served from oracle words
  - Total number of fallback numbers
  - Total number of appended oracle batches
- Logs all cumulative data every 10 seconds
- Immediately logs any outstanding data when a batch ends a fallback streak
*/
package progresslog
