// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	info := Info()
	if !strings.HasPrefix(info, Version+" (") {
		t.Errorf("Info() = %q, want prefix %q", info, Version+" (")
	}
	if !strings.Contains(info, BuildTime) {
		t.Errorf("Info() = %q, missing build time", info)
	}
}

func TestFull(t *testing.T) {
	full := Full()
	for _, want := range []string{Info(), runtime.Version(), runtime.GOOS + "/" + runtime.GOARCH} {
		if !strings.Contains(full, want) {
			t.Errorf("Full() = %q, missing %q", full, want)
		}
	}
}

func TestUserAgent(t *testing.T) {
	if got, want := UserAgent(), "gitter-go/"+Short(); got != want {
		t.Errorf("UserAgent() = %q, want %q", got, want)
	}
	if Commit() == "" {
		t.Error("Commit() is empty")
	}
}
