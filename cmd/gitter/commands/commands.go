// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the gitter command tree. The binary in
// cmd/gitter only wires signals and exit codes around [Root].
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/gitter/cmd/gitter/cli"
	"github.com/bureau-foundation/gitter/lib/version"
)

// Root returns the complete command tree writing to streams.
func Root(streams cli.IO) *cli.Command {
	return &cli.Command{
		Name: "gitter",
		Description: `gitter: a command-line client for Gitter chat.

List and join rooms, read and send messages, and follow a room's live
message stream as text, JSON lines, an on-disk archive, or an
interactive view.`,
		HelpOutput: streams.Err,
		Subcommands: []*cli.Command{
			loginCommand(streams),
			logoutCommand(streams),
			whoamiCommand(streams),
			orgsCommand(streams),
			reposCommand(streams),
			roomsCommand(streams),
			joinCommand(streams),
			unreadCommand(streams),
			markReadCommand(streams),
			messagesCommand(streams),
			messageCommand(streams),
			sendCommand(streams),
			editCommand(streams),
			searchCommand(streams),
			tailCommand(streams),
			watchCommand(streams),
			replayCommand(streams),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, _ []string, _ *slog.Logger) error {
					fmt.Fprintf(streams.Out, "gitter %s\n", version.Full())
					return nil
				},
			},
		},
	}
}

// withEnvironment loads the configuration and credentials selected by
// flags, runs fn, and releases the credentials.
func withEnvironment(flags *cli.GlobalFlags, logger *slog.Logger, fn func(env *cli.Environment) error) error {
	env, err := flags.Load(logger)
	if err != nil {
		return err
	}
	defer env.Close()
	logger.Debug("resolved environment",
		"credentials", env.String(),
		"api_url", env.Config.APIURL,
	)
	return fn(env)
}

// requireArgs checks the positional argument count.
func requireArgs(args []string, minimum, maximum int, usage string) error {
	if len(args) < minimum {
		return cli.Validation("usage: %s", usage)
	}
	if maximum >= 0 && len(args) > maximum {
		return cli.Validation("unexpected argument %q\n\nusage: %s", args[maximum], usage)
	}
	return nil
}
