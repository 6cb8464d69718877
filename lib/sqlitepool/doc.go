// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool opens SQLite connection pools for the client's
// local stores.
//
// It wraps zombiezen.com/go/sqlite's sqlitex.Pool and applies one set
// of pragmas to every connection:
//
//   - journal_mode=WAL so a tailing writer never blocks readers
//   - synchronous=NORMAL; the message history is a cache of the
//     server's, so losing the last transaction on power failure is
//     acceptable
//   - busy_timeout=5000 to absorb short write contention between a
//     running tail and an interactive search
//
// Callers Take a connection, use it from one goroutine, and Put it
// back. [Pool.With] does both around a function.
package sqlitepool
