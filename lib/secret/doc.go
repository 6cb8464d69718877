// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret keeps access tokens and private keys out of the Go
// heap.
//
// A [Buffer] is backed by an anonymous mmap region that is locked into
// RAM (never swapped) and excluded from core dumps. Close zeroes,
// unlocks, and unmaps it; any later access panics.
//
// The Gitter token lives in a Buffer from the moment it is read, whether
// from the terminal at login, from a token file via [ReadFromPath], or
// from a decrypted session, until the process exits. It becomes a heap
// string only briefly, when an Authorization header is built.
package secret
