// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command framework for the gitter CLI.
//
// The central type is [Command]: a named node with optional
// [Command.Subcommands], a params struct whose tagged fields become
// flags (see [BindFlags]), and a Run function that receives a context,
// the positional arguments, and a logger scoped to the command.
// Unknown commands and flags get a "did you mean" suggestion based on
// edit distance.
//
// [GlobalFlags] carries the flags every networked command accepts and
// turns them into an [Environment]: the resolved configuration, the
// saved [Session], and an authenticated gitter client.
package cli
