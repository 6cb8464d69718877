// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Gitter is a command-line client for Gitter chat.
//
// Run "gitter --help" for the command list. Configuration is read from
// the file named by --config or $GITTER_CONFIG; the session written by
// "gitter login" lives at the configured session_file.
package main
