// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"strings"
	"testing"

	"github.com/bureau-foundation/gitter/cmd/gitter/cli"
)

// TestCommandTree walks the production command tree and checks that
// every command is documented and that every one with params builds a
// flag set without panicking.
func TestCommandTree(t *testing.T) {
	root := rootCommand()
	names := map[string]bool{}
	walkCommands(root, nil, func(command *cli.Command, path []string) {
		joined := strings.Join(path, " ")
		if names[joined] {
			t.Errorf("%s: duplicate command", joined)
		}
		names[joined] = true

		if len(path) > 1 && command.Summary == "" {
			t.Errorf("%s: missing Summary", joined)
		}
		if command.Run == nil && len(command.Subcommands) == 0 {
			t.Errorf("%s: neither Run nor Subcommands", joined)
		}
		if command.Params != nil {
			cli.FlagsFromParams(command.Name, command.Params())
		}
	})

	for _, name := range []string{
		"gitter login", "gitter logout", "gitter whoami", "gitter orgs", "gitter repos",
		"gitter rooms", "gitter join", "gitter unread", "gitter mark-read",
		"gitter messages", "gitter message", "gitter send", "gitter edit", "gitter search",
		"gitter tail", "gitter watch", "gitter replay", "gitter version",
	} {
		if !names[name] {
			t.Errorf("command %q not found in tree", name)
		}
	}
}

// walkCommands visits every command with its accumulated path.
func walkCommands(command *cli.Command, path []string, visit func(*cli.Command, []string)) {
	current := make([]string, len(path)+1)
	copy(current, path)
	current[len(path)] = command.Name
	visit(command, current)
	for _, sub := range command.Subcommands {
		walkCommands(sub, current, visit)
	}
}
