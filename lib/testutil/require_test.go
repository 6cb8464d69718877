// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"slices"
	"strings"
	"testing"
)

// recorder captures Fatalf calls. Fatalf panics so the helper stops the
// way runtime.Goexit would stop a real test.
type recorder struct {
	message string
}

type fatal struct{}

func (r *recorder) Helper() {}

func (r *recorder) Fatalf(format string, args ...any) {
	r.message = fmt.Sprintf(format, args...)
	panic(fatal{})
}

func capture(r *recorder, fn func()) (failed bool) {
	defer func() {
		if recovered := recover(); recovered != nil {
			if _, ok := recovered.(fatal); !ok {
				panic(recovered)
			}
			failed = true
		}
	}()
	fn()
	return false
}

func TestRequireReceive(t *testing.T) {
	ch := make(chan int, 1)
	ch <- 7
	if got := RequireReceive(t, ch, "value"); got != 7 {
		t.Errorf("RequireReceive = %d, want 7", got)
	}

	closed := make(chan int)
	close(closed)
	var r recorder
	if !capture(&r, func() { RequireReceive(&r, closed, "value %d", 2) }) {
		t.Fatal("RequireReceive on a closed channel did not fail")
	}
	if !strings.Contains(r.message, "closed while waiting for value 2") {
		t.Errorf("failure message = %q", r.message)
	}
}

func TestRequireClosed(t *testing.T) {
	done := make(chan struct{})
	close(done)
	RequireClosed(t, done, "done")
}

func TestDrain(t *testing.T) {
	ch := make(chan string, 3)
	ch <- "a"
	ch <- "b"
	close(ch)
	if got := Drain(t, ch, "letters"); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Drain = %v, want [a b]", got)
	}
}
