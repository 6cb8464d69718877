// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed encrypts Gitter session tokens at rest with age.
//
// A token sealed with [Seal] is stored base64-encoded in the session
// file's sealed_token field. [Open] reverses it with the holder's
// x25519 identity. Identities and opened plaintext are held in
// [secret.Buffer] values, never in ordinary heap strings.
//
// Identity files may be in the format written by age-keygen: one
// AGE-SECRET-KEY-1 line per identity, with # comments allowed.
package sealed
