// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/bureau-foundation/gitter/cmd/gitter/cli"
	"github.com/bureau-foundation/gitter/gitter"
	"github.com/bureau-foundation/gitter/lib/msgstore"
)

// cacheMessages stores messages when a cache is configured. Failures
// are logged; the cache never fails a command that reads from Gitter.
func cacheMessages(ctx context.Context, store *msgstore.Store, roomID string, messages []gitter.Message, logger *slog.Logger) {
	if store == nil || len(messages) == 0 {
		return
	}
	if err := store.Put(ctx, roomID, messages...); err != nil {
		logger.Warn("caching messages failed", "room_id", roomID, "error", err)
	}
}

type messagesParams struct {
	cli.GlobalFlags
	cli.JSONOutput
	StoreFlag
	Limit    int    `json:"limit" flag:"limit,n" desc:"number of messages" default:"50"`
	BeforeID string `json:"before_id" flag:"before" desc:"only messages sent before this message ID"`
	AfterID  string `json:"after_id" flag:"after" desc:"only messages sent after this message ID"`
	Skip     int    `json:"skip" flag:"skip" desc:"skip this many of the newest messages"`
}

func messagesCommand(streams cli.IO) *cli.Command {
	var params messagesParams

	return &cli.Command{
		Name:    "messages",
		Summary: "Show a room's recent messages",
		Usage:   "gitter messages [flags] <room>",
		Examples: []cli.Example{
			{Description: "Last ten messages", Command: "gitter messages -n 10 gitterHQ/gitter"},
			{Description: "Page backwards", Command: "gitter messages --before 5f0c3e1a9c2b4d0001a1b2c3 gitterHQ/gitter"},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := requireArgs(args, 1, 1, "gitter messages [flags] <room>"); err != nil {
				return err
			}
			if params.Limit < 0 || params.Skip < 0 {
				return cli.Validation("--limit and --skip must not be negative")
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
				messages, err := client.RoomMessages(ctx, room.ID, gitter.MessagesOptions{
					Limit:    params.Limit,
					BeforeID: params.BeforeID,
					AfterID:  params.AfterID,
					Skip:     params.Skip,
				})
				if err != nil {
					return cli.Classify(err)
				}

				store, err := params.StoreFlag.open(env.Config, logger)
				if err != nil {
					return err
				}
				if store != nil {
					defer store.Close()
					cacheMessages(ctx, store, room.ID, messages, logger)
				}

				if done, err := params.EmitJSON(streams.Out, messages); done {
					return err
				}
				return newMessagePrinter(streams.Out, env.Config, false).printAll(messages)
			})
		},
	}
}

type messageParams struct {
	cli.GlobalFlags
	cli.JSONOutput
}

func messageCommand(streams cli.IO) *cli.Command {
	var params messageParams

	return &cli.Command{
		Name:    "message",
		Summary: "Show one message",
		Usage:   "gitter message [flags] <room> <message-id>",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := requireArgs(args, 2, 2, "gitter message [flags] <room> <message-id>"); err != nil {
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
				message, err := client.RoomMessage(ctx, room.ID, args[1])
				if err != nil {
					return cli.Classify(err)
				}
				if done, err := params.EmitJSON(streams.Out, message); done {
					return err
				}
				return newMessagePrinter(streams.Out, env.Config, false).print(*message)
			})
		},
	}
}

// messageText joins the text arguments, or reads all of stdin when the
// only argument is "-".
func messageText(args []string, in io.Reader) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(in)
		if err != nil {
			return "", cli.Internal("reading message from stdin: %v", err)
		}
		args = []string{strings.TrimRight(string(data), "\n")}
	}
	text := strings.Join(args, " ")
	if strings.TrimSpace(text) == "" {
		return "", cli.Validation("message text is empty")
	}
	return text, nil
}

type sendParams struct {
	cli.GlobalFlags
	cli.JSONOutput
}

func sendCommand(streams cli.IO) *cli.Command {
	var params sendParams

	return &cli.Command{
		Name:    "send",
		Summary: "Send a message to a room",
		Description: `Send a message to a room. The text is the remaining arguments joined
by spaces, or standard input when the only argument is "-". Markdown is
rendered by Gitter.`,
		Usage: "gitter send [flags] <room> <text...>",
		Examples: []cli.Example{
			{Description: "Say hello", Command: "gitter send gitterHQ/gitter 'hello **world**'"},
			{Description: "Send a file as a message", Command: "gitter send gitterHQ/gitter - < notes.md"},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := requireArgs(args, 2, -1, "gitter send [flags] <room> <text...>"); err != nil {
				return err
			}
			text, err := messageText(args[1:], streams.In)
			if err != nil {
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
				message, err := client.SendMessage(ctx, room.ID, text)
				if err != nil {
					return cli.Classify(err)
				}
				logger.Debug("sent message", "room_id", room.ID, "message_id", message.ID)

				if done, err := params.EmitJSON(streams.Out, message); done {
					return err
				}
				fmt.Fprintln(streams.Out, message.ID)
				return nil
			})
		},
	}
}

type editParams struct {
	cli.GlobalFlags
	cli.JSONOutput
}

func editCommand(streams cli.IO) *cli.Command {
	var params editParams

	return &cli.Command{
		Name:    "edit",
		Summary: "Replace the text of a message you sent",
		Usage:   "gitter edit [flags] <room> <message-id> <text...>",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := requireArgs(args, 3, -1, "gitter edit [flags] <room> <message-id> <text...>"); err != nil {
				return err
			}
			text, err := messageText(args[2:], streams.In)
			if err != nil {
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
				message, err := client.UpdateMessage(ctx, room.ID, args[1], text)
				if err != nil {
					return cli.Classify(err)
				}
				if done, err := params.EmitJSON(streams.Out, message); done {
					return err
				}
				fmt.Fprintln(streams.Out, message.ID)
				return nil
			})
		},
	}
}

type searchParams struct {
	cli.GlobalFlags
	cli.JSONOutput
	StoreFlag
	Limit int  `json:"limit" flag:"limit,n" desc:"maximum results" default:"20"`
	Rank  bool `json:"rank" flag:"rank" desc:"order by relevance instead of recency"`
}

func searchCommand(streams cli.IO) *cli.Command {
	var params searchParams

	return &cli.Command{
		Name:    "search",
		Summary: "Search cached messages in a room",
		Description: `Search the local message cache for messages containing the query,
newest first. With --rank, messages containing any query word are
ordered by relevance, weighing the text above the sender's username.
Only messages previously seen by messages, tail, or watch are searched.
A room given by URI is resolved against Gitter.`,
		Usage:  "gitter search [flags] <room> <query...>",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := requireArgs(args, 2, -1, "gitter search [flags] <room> <query...>"); err != nil {
				return err
			}
			query := strings.Join(args[1:], " ")
			return withEnvironment(&params.GlobalFlags, logger, func(env *cli.Environment) error {
				store, err := params.StoreFlag.open(env.Config, logger)
				if err != nil {
					return err
				}
				if store == nil {
					return cli.Validation("no message cache configured; set store.path in the config or pass --store")
				}
				defer store.Close()

				roomID := strings.TrimSpace(args[0])
				if !roomIDPattern.MatchString(roomID) {
					client, err := env.AuthenticatedClient()
					if err != nil {
						return err
					}
					room, err := resolveRoom(ctx, client, roomID)
					if err != nil {
						return err
					}
					roomID = room.ID
				}

				search := store.Search
				if params.Rank {
					search = store.Rank
				}
				messages, err := search(ctx, roomID, query, params.Limit)
				if err != nil {
					return cli.Validation("%v", err)
				}
				if done, err := params.EmitJSON(streams.Out, messages); done {
					return err
				}
				if len(messages) == 0 {
					fmt.Fprintln(streams.Err, "no matches")
					return nil
				}
				return newMessagePrinter(streams.Out, env.Config, false).printAll(messages)
			})
		},
	}
}
