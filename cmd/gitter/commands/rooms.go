// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"text/tabwriter"

	"github.com/bureau-foundation/gitter/cmd/gitter/cli"
	"github.com/bureau-foundation/gitter/gitter"
	"github.com/bureau-foundation/gitter/lib/fuzzy"
)

// roomIDPattern matches Gitter's 24-digit hex object IDs.
var roomIDPattern = regexp.MustCompile(`^[0-9a-f]{24}$`)

// suggestionLimit bounds "did you mean" lists.
const suggestionLimit = 3

// resolveRoom turns a room ID or the URI of a joined room ("org/repo")
// into a room. IDs are used as given without a lookup.
func resolveRoom(ctx context.Context, client *gitter.Client, target string) (gitter.Room, error) {
	target = strings.TrimPrefix(strings.TrimSpace(target), "/")
	if target == "" {
		return gitter.Room{}, cli.Validation("room is required")
	}
	if roomIDPattern.MatchString(target) {
		return gitter.Room{ID: target}, nil
	}

	rooms, err := client.Rooms(ctx)
	if err != nil {
		return gitter.Room{}, cli.Classify(err)
	}
	names := make([]string, len(rooms))
	for index, room := range rooms {
		if strings.EqualFold(room.URI, target) || strings.EqualFold(room.Name, target) ||
			strings.EqualFold(room.DisplayName(), target) {
			return room, nil
		}
		names[index] = room.DisplayName()
	}
	return gitter.Room{}, notFoundWithSuggestions(fmt.Sprintf("no joined room %q", target), target, names)
}

func notFoundWithSuggestions(message, target string, candidates []string) error {
	suggestions := fuzzy.Best(target, candidates, suggestionLimit)
	if len(suggestions) == 0 {
		return cli.NotFound("%s", message)
	}
	return cli.NotFound("%s (did you mean %s?)", message, strings.Join(quoteAll(suggestions), ", "))
}

func quoteAll(values []string) []string {
	quoted := make([]string, len(values))
	for index, value := range values {
		quoted[index] = fmt.Sprintf("%q", value)
	}
	return quoted
}

type roomsParams struct {
	cli.GlobalFlags
	cli.JSONOutput
	Match string `json:"-" flag:"match,m" desc:"show only rooms fuzzy-matching this pattern, best first"`
}

func roomsCommand(streams cli.IO) *cli.Command {
	var params roomsParams

	return &cli.Command{
		Name:    "rooms",
		Summary: "List joined rooms",
		Examples: []cli.Example{
			{Description: "Find rooms about go", Command: "gitter rooms --match golang"},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := requireArgs(args, 0, 0, "gitter rooms [flags]"); err != nil {
				return err
			}
			return withEnvironment(&params.GlobalFlags, logger, func(env *cli.Environment) error {
				client, err := env.AuthenticatedClient()
				if err != nil {
					return err
				}
				rooms, err := client.Rooms(ctx)
				if err != nil {
					return cli.Classify(err)
				}
				if params.Match != "" {
					rooms = matchRooms(params.Match, rooms)
				}
				if done, err := params.EmitJSON(streams.Out, rooms); done {
					return err
				}

				table := tabwriter.NewWriter(streams.Out, 2, 0, 3, ' ', 0)
				fmt.Fprintln(table, "ID\tROOM\tUNREAD\tMENTIONS")
				for _, room := range rooms {
					fmt.Fprintf(table, "%s\t%s\t%d\t%d\n", room.ID, room.DisplayName(), room.UnreadItems, room.Mentions)
				}
				return table.Flush()
			})
		},
	}
}

// matchRooms returns the rooms whose display name matches pattern,
// best match first.
func matchRooms(pattern string, rooms []gitter.Room) []gitter.Room {
	names := make([]string, len(rooms))
	for index, room := range rooms {
		names[index] = room.DisplayName()
	}
	matches := fuzzy.Rank(pattern, names)
	matched := make([]gitter.Room, len(matches))
	for index, match := range matches {
		matched[index] = rooms[match.Index]
	}
	return matched
}

type joinParams struct {
	cli.GlobalFlags
	cli.JSONOutput
}

func joinCommand(streams cli.IO) *cli.Command {
	var params joinParams

	return &cli.Command{
		Name:    "join",
		Summary: "Join a room by URI",
		Usage:   "gitter join [flags] <org/repo>",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := requireArgs(args, 1, 1, "gitter join [flags] <org/repo>"); err != nil {
				return err
			}
			uri := strings.TrimPrefix(args[0], "/")
			return withEnvironment(&params.GlobalFlags, logger, func(env *cli.Environment) error {
				client, err := env.AuthenticatedClient()
				if err != nil {
					return err
				}
				room, err := client.JoinRoom(ctx, uri)
				if err != nil {
					if gitter.IsNotFound(err) {
						return notFoundWithSuggestions(fmt.Sprintf("no room %q", uri), uri, joinCandidates(ctx, env, client, logger))
					}
					return cli.Classify(err)
				}
				logger.Info("joined room", "room_id", room.ID, "uri", room.URI)

				if done, err := params.EmitJSON(streams.Out, room); done {
					return err
				}
				fmt.Fprintf(streams.Out, "Joined %s (%s)\n", room.DisplayName(), room.ID)
				return nil
			})
		},
	}
}

// joinCandidates lists room URIs the user could plausibly have meant:
// their repositories with rooms and their organizations. Lookup
// failures only reduce the suggestions.
func joinCandidates(ctx context.Context, env *cli.Environment, client *gitter.Client, logger *slog.Logger) []string {
	userID, err := env.UserID(ctx, client)
	if err != nil {
		logger.Debug("no suggestions", "error", err)
		return nil
	}

	var candidates []string
	if repositories, err := client.Repositories(ctx, userID); err == nil {
		for _, repository := range repositories {
			candidates = append(candidates, repository.URI)
		}
	} else {
		logger.Debug("listing repositories for suggestions", "error", err)
	}
	if organizations, err := client.Organizations(ctx, userID); err == nil {
		for _, organization := range organizations {
			candidates = append(candidates, organization.Name)
		}
	} else {
		logger.Debug("listing organizations for suggestions", "error", err)
	}
	return candidates
}

type unreadParams struct {
	cli.GlobalFlags
	cli.JSONOutput
}

func unreadCommand(streams cli.IO) *cli.Command {
	var params unreadParams

	return &cli.Command{
		Name:    "unread",
		Summary: "Show unread message IDs in a room",
		Usage:   "gitter unread [flags] <room>",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := requireArgs(args, 1, 1, "gitter unread [flags] <room>"); err != nil {
				return err
			}
			return withEnvironment(&params.GlobalFlags, logger, func(env *cli.Environment) error {
				client, err := env.AuthenticatedClient()
				if err != nil {
					return err
				}
				room, err := resolveRoom(ctx, client, args[0])
				if err != nil {
					return err
				}
				userID, err := env.UserID(ctx, client)
				if err != nil {
					return err
				}
				unread, err := client.UnreadItems(ctx, userID, room.ID)
				if err != nil {
					return cli.Classify(err)
				}
				if done, err := params.EmitJSON(streams.Out, unread); done {
					return err
				}

				fmt.Fprintf(streams.Out, "%d unread, %d mentions\n", len(unread.Chat), len(unread.Mention))
				for _, id := range unread.Chat {
					fmt.Fprintln(streams.Out, id)
				}
				return nil
			})
		},
	}
}

type markReadParams struct {
	cli.GlobalFlags
}

func markReadCommand(streams cli.IO) *cli.Command {
	var params markReadParams

	return &cli.Command{
		Name:    "mark-read",
		Summary: "Mark messages in a room as read",
		Description: `Mark messages in a room as read. With no message IDs, every unread
message in the room is marked.`,
		Usage:  "gitter mark-read [flags] <room> [message-id...]",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := requireArgs(args, 1, -1, "gitter mark-read [flags] <room> [message-id...]"); err != nil {
				return err
			}
			return withEnvironment(&params.GlobalFlags, logger, func(env *cli.Environment) error {
				client, err := env.AuthenticatedClient()
				if err != nil {
					return err
				}
				room, err := resolveRoom(ctx, client, args[0])
				if err != nil {
					return err
				}
				userID, err := env.UserID(ctx, client)
				if err != nil {
					return err
				}

				ids := args[1:]
				if len(ids) == 0 {
					unread, err := client.UnreadItems(ctx, userID, room.ID)
					if err != nil {
						return cli.Classify(err)
					}
					ids = unread.Chat
				}
				if err := client.MarkRead(ctx, userID, room.ID, ids); err != nil {
					return cli.Classify(err)
				}
				fmt.Fprintf(streams.Out, "Marked %d messages read\n", len(ids))
				return nil
			})
		},
	}
}
