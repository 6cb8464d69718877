// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec is the CBOR configuration shared by everything the
// client writes to disk in binary form, chiefly the entries of a feed
// archive (lib/archive).
//
// JSON stays the format of the Gitter API and of --json output. CBOR is
// used only for local files, where a compact, deterministic encoding
// lets an archive entry's digest be computed over bytes that are stable
// for the same logical value. The encoder uses Core Deterministic
// Encoding (RFC 8949 §4.2): sorted map keys, smallest integer encoding,
// no indefinite-length items.
//
// Types written only to archives use `cbor` struct tags.
package codec
