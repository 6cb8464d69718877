// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bm25 ranks short chat messages against a free-text query
// with the Okapi BM25 algorithm.
//
// Each document is a message with weighted fields (its text, the
// sender's name). A field's weight repeats its tokens in the composite
// document, which is enough per-field weighting for the few thousand
// messages a room search considers. Tokens are lowercased runs of
// Unicode letters and digits, so queries work for any script.
//
// The index is immutable after [New] and safe for concurrent reads.
package bm25
