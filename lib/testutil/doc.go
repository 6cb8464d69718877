// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil holds channel helpers for tests of streaming code.
//
// [RequireReceive], [RequireClosed], and [Drain] wrap the select with a
// wall-clock fallback that keeps a broken read loop from hanging the
// test binary. They are the only place tests wait on real time; code
// under test takes a [clock.Clock] instead.
//
// Helpers call t.Fatalf on failure and never return an error.
//
// [clock.Clock]: github.com/bureau-foundation/gitter/lib/clock
package testutil
