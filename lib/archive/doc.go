// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package archive records received chat messages to an append-only
// file and reads them back.
//
// An archive starts with a five-byte header: the magic "GTAR" and a
// version byte. Each entry that follows is framed as
//
//	[1B compression tag][uvarint raw length][uvarint stored length]
//	[32B BLAKE3 keyed digest][stored bytes]
//
// The raw bytes are the CBOR encoding of an [Entry]. The digest covers
// the raw bytes, so a reader detects both corrupt compressed bytes and
// a frame whose payload was altered. Entries that do not compress
// smaller are stored uncompressed regardless of the writer's
// configured compression.
package archive
