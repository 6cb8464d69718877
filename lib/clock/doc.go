// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock is the injectable time source used by the feed idle
// watchdog and the archive writer.
//
// Production code takes a [Clock] and is handed [Real]. Tests hand it a
// [FakeClock] from [Fake], whose time only moves when the test calls
// Advance:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	subscription := feed.Subscribe(ctx, opener, feed.Options[T]{Clock: fake, IdleTimeout: time.Minute})
//	fake.WaitForTimers(1)     // the watchdog has armed
//	fake.Advance(time.Minute) // and now fires, synchronously
package clock
