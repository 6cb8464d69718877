// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"time"
)

// Timeout bounds every wait in this package. It only fires when the
// code under test is broken.
const Timeout = 5 * time.Second

// TB is the subset of testing.TB the helpers use.
type TB interface {
	Helper()
	Fatalf(format string, args ...any)
}

// RequireReceive reads one value from ch, failing the test if ch closes
// first or nothing arrives within [Timeout]. what describes the wait
// and may be a format string followed by arguments.
//
//	message := testutil.RequireReceive(t, subscription.Messages(), "first message")
func RequireReceive[T any](t TB, ch <-chan T, what string, args ...any) T {
	t.Helper()
	select {
	case value, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed while waiting for %s", describe(what, args))
		}
		return value
	case <-time.After(Timeout):
		t.Fatalf("timed out after %v waiting for %s", Timeout, describe(what, args))
	}
	panic("unreachable")
}

// RequireClosed waits for ch to close or deliver, failing the test
// after [Timeout].
//
//	testutil.RequireClosed(t, done, "Close to return")
func RequireClosed(t TB, ch <-chan struct{}, what string, args ...any) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(Timeout):
		t.Fatalf("timed out after %v waiting for %s", Timeout, describe(what, args))
	}
}

// Drain collects values from ch until it closes. The whole drain must
// finish within [Timeout].
func Drain[T any](t TB, ch <-chan T, what string, args ...any) []T {
	t.Helper()
	var values []T
	deadline := time.After(Timeout)
	for {
		select {
		case value, ok := <-ch:
			if !ok {
				return values
			}
			values = append(values, value)
		case <-deadline:
			t.Fatalf("timed out after %v draining %s (%d received)", Timeout, describe(what, args), len(values))
		}
	}
}

func describe(what string, args []any) string {
	if len(args) == 0 {
		return what
	}
	return fmt.Sprintf(what, args...)
}
