// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"log/slog"
	"sync"

	"github.com/bureau-foundation/gitter/cmd/gitter/cli"
	"github.com/bureau-foundation/gitter/gitter"
	"github.com/bureau-foundation/gitter/lib/chatui"
	"github.com/bureau-foundation/gitter/lib/msgstore"
)

type watchParams struct {
	cli.GlobalFlags
	StoreFlag
	FeedFlags
	History int `json:"-" flag:"history" desc:"recent messages to show on open" default:"30"`
}

func watchCommand(streams cli.IO) *cli.Command {
	var params watchParams

	return &cli.Command{
		Name:    "watch",
		Summary: "Open an interactive view of a room",
		Description: `Open a full-screen view of a room: recent history, live messages, and
an input line that sends on Enter. PgUp and PgDn scroll, End jumps to
the newest message, Esc or Ctrl-C quits.`,
		Usage:  "gitter watch [flags] <room>",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := requireArgs(args, 1, 1, "gitter watch [flags] <room>"); err != nil {
				return err
			}
			if !cli.IsTerminal(streams.Out) || !cli.IsTerminal(streams.In) {
				return cli.Validation("watch needs an interactive terminal; use \"gitter tail\" instead")
			}
			if params.History < 0 {
				return cli.Validation("--history must not be negative")
			}
			return withEnvironment(&params.GlobalFlags, logger, func(env *cli.Environment) error {
				return runWatch(ctx, env, &params, args[0], streams)
			})
		},
	}
}

func runWatch(ctx context.Context, env *cli.Environment, params *watchParams, target string, streams cli.IO) error {
	client, err := env.AuthenticatedClient()
	if err != nil {
		return err
	}
	room, err := resolveRoom(ctx, client, target)
	if err != nil {
		return err
	}
	// Log lines would corrupt the full-screen view.
	logger := slog.New(slog.DiscardHandler)

	options, err := params.FeedFlags.options(env.Config, logger)
	if err != nil {
		return err
	}

	store, err := params.StoreFlag.open(env.Config, logger)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	var history []gitter.Message
	if params.History > 0 {
		history, err = client.RoomMessages(ctx, room.ID, gitter.MessagesOptions{Limit: params.History})
		if err != nil {
			return cli.Classify(err)
		}
		cacheMessages(ctx, store, room.ID, history, logger)
	}

	subscription, err := client.RealtimeMessages(ctx, room.ID, options)
	if err != nil {
		return cli.Validation("%v", err)
	}

	var source chatui.Feed = subscription
	if store != nil {
		source = newCachingFeed(ctx, subscription, store, room.ID, logger)
	}

	title := room.DisplayName()
	if title == "" {
		title = room.ID
	}
	printer := newMessagePrinter(streams.Out, env.Config, false)
	err = chatui.Run(ctx, chatui.Config{
		RoomID:  room.ID,
		Title:   title,
		Feed:    source,
		Sender:  client,
		History: history,
		Render:  printer.options,
	})
	if err != nil {
		return cli.Classify(err)
	}
	return nil
}

// cachingFeed passes a feed's messages through while storing each one.
type cachingFeed struct {
	chatui.Feed
	messages  chan gitter.Message
	stop      chan struct{}
	closeOnce sync.Once
}

func newCachingFeed(ctx context.Context, source chatui.Feed, store *msgstore.Store, roomID string, logger *slog.Logger) *cachingFeed {
	caching := &cachingFeed{
		Feed:     source,
		messages: make(chan gitter.Message),
		stop:     make(chan struct{}),
	}
	go func() {
		defer close(caching.messages)
		for message := range source.Messages() {
			cacheMessages(ctx, store, roomID, []gitter.Message{message}, logger)
			select {
			case caching.messages <- message:
			case <-caching.stop:
				return
			}
		}
	}()
	return caching
}

func (c *cachingFeed) Messages() <-chan gitter.Message { return c.messages }

func (c *cachingFeed) Close() error {
	c.closeOnce.Do(func() { close(c.stop) })
	return c.Feed.Close()
}
