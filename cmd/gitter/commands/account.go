// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/bureau-foundation/gitter/cmd/gitter/cli"
)

type accountParams struct {
	cli.GlobalFlags
	cli.JSONOutput
}

func orgsCommand(streams cli.IO) *cli.Command {
	var params accountParams

	return &cli.Command{
		Name:    "orgs",
		Summary: "List your GitHub organizations",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := requireArgs(args, 0, 0, "gitter orgs [flags]"); err != nil {
				return err
			}
			return withEnvironment(&params.GlobalFlags, logger, func(env *cli.Environment) error {
				client, err := env.AuthenticatedClient()
				if err != nil {
					return err
				}
				userID, err := env.UserID(ctx, client)
				if err != nil {
					return err
				}
				organizations, err := client.Organizations(ctx, userID)
				if err != nil {
					return cli.Classify(err)
				}
				if done, err := params.EmitJSON(streams.Out, organizations); done {
					return err
				}

				table := tabwriter.NewWriter(streams.Out, 2, 0, 3, ' ', 0)
				fmt.Fprintln(table, "NAME\tROOM")
				for _, organization := range organizations {
					room := "-"
					if organization.Room != nil {
						room = organization.Room.DisplayName()
					}
					fmt.Fprintf(table, "%s\t%s\n", organization.Name, room)
				}
				return table.Flush()
			})
		},
	}
}

func reposCommand(streams cli.IO) *cli.Command {
	var params accountParams

	return &cli.Command{
		Name:    "repos",
		Summary: "List GitHub repositories you can access",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := requireArgs(args, 0, 0, "gitter repos [flags]"); err != nil {
				return err
			}
			return withEnvironment(&params.GlobalFlags, logger, func(env *cli.Environment) error {
				client, err := env.AuthenticatedClient()
				if err != nil {
					return err
				}
				userID, err := env.UserID(ctx, client)
				if err != nil {
					return err
				}
				repositories, err := client.Repositories(ctx, userID)
				if err != nil {
					return cli.Classify(err)
				}
				if done, err := params.EmitJSON(streams.Out, repositories); done {
					return err
				}

				table := tabwriter.NewWriter(streams.Out, 2, 0, 3, ' ', 0)
				fmt.Fprintln(table, "URI\tPRIVATE\tROOM")
				for _, repository := range repositories {
					room := "no"
					if repository.Exists {
						room = "yes"
					}
					fmt.Fprintf(table, "%s\t%t\t%s\n", repository.URI, repository.Private, room)
				}
				return table.Flush()
			})
		},
	}
}
