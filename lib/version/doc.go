// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build version information for the gitter
// binary and the User-Agent sent by the client library.
//
// [GitCommit], [GitDirty], [BuildTime], and [Version] are injected at
// build time via -ldflags -X. When GitCommit is not injected, the VCS
// revision recorded by the Go toolchain is used instead:
//
//	go build -ldflags "-X github.com/bureau-foundation/gitter/lib/version.Version=1.2.0" ./cmd/gitter
package version
