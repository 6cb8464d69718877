// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bureau-foundation/gitter/cmd/gitter/cli"
	"github.com/bureau-foundation/gitter/gitter"
	"github.com/bureau-foundation/gitter/lib/archive"
	"github.com/bureau-foundation/gitter/lib/config"
	"github.com/bureau-foundation/gitter/lib/feed"
)

// FeedFlags tune the real-time subscription. Unset values fall back to
// the config file.
type FeedFlags struct {
	FatalDecode bool          `json:"-" flag:"fatal-decode" desc:"stop on the first undecodable record instead of skipping it"`
	IdleTimeout time.Duration `json:"-" flag:"idle-timeout" desc:"end the stream when no data arrives for this long (0 uses feed.idle_timeout)"`
}

// options builds the subscription options from flags and cfg.
func (f FeedFlags) options(cfg *config.Config, logger *slog.Logger) (feed.Options[gitter.Message], error) {
	policy := cfg.Feed.Policy()
	if f.FatalDecode {
		policy = feed.DecodeFatal
	}
	idle := f.IdleTimeout
	if idle == 0 {
		configured, err := cfg.Feed.Timeout()
		if err != nil {
			return feed.Options[gitter.Message]{}, cli.Validation("%v", err)
		}
		idle = configured
	}
	if idle < 0 {
		return feed.Options[gitter.Message]{}, cli.Validation("--idle-timeout must not be negative")
	}
	return feed.Options[gitter.Message]{
		Policy:        policy,
		MaxRecordSize: cfg.Feed.MaxRecordSize,
		IdleTimeout:   idle,
		Buffer:        16,
		Logger:        logger,
	}, nil
}

type tailParams struct {
	cli.GlobalFlags
	cli.JSONOutput
	StoreFlag
	FeedFlags
	Archive     string `json:"-" flag:"archive" desc:"append every received message to this archive file"`
	Compression string `json:"-" flag:"compression" desc:"archive compression: none, lz4, or zstd (default archive.compression)"`
	History     int    `json:"-" flag:"history" desc:"print this many recent messages before streaming"`
}

func tailCommand(streams cli.IO) *cli.Command {
	var params tailParams

	return &cli.Command{
		Name:    "tail",
		Summary: "Stream a room's messages as they arrive",
		Description: `Stream a room's messages as they arrive until interrupted or the
server ends the stream.

Output is rendered markdown on a terminal, one line per message
otherwise, or JSON lines with --json. Records that fail to decode are
logged and skipped unless --fatal-decode is given. Interrupting with
Ctrl-C is a clean exit.`,
		Usage: "gitter tail [flags] <room>",
		Examples: []cli.Example{
			{Description: "Follow a room", Command: "gitter tail gitterHQ/gitter"},
			{Description: "Archive a room while printing JSON", Command: "gitter tail --json --archive room.gtar gitterHQ/gitter"},
			{Description: "Show context first", Command: "gitter tail --history 20 gitterHQ/gitter"},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := requireArgs(args, 1, 1, "gitter tail [flags] <room>"); err != nil {
				return err
			}
			if params.History < 0 {
				return cli.Validation("--history must not be negative")
			}
			return withEnvironment(&params.GlobalFlags, logger, func(env *cli.Environment) error {
				return runTail(ctx, env, &params, args[0], streams, logger)
			})
		},
	}
}

func runTail(ctx context.Context, env *cli.Environment, params *tailParams, target string, streams cli.IO, logger *slog.Logger) error {
	client, err := env.AuthenticatedClient()
	if err != nil {
		return err
	}
	room, err := resolveRoom(ctx, client, target)
	if err != nil {
		return err
	}
	logger = logger.With("room_id", room.ID)

	options, err := params.FeedFlags.options(env.Config, logger)
	if err != nil {
		return err
	}

	var writer *archive.Writer
	if params.Archive != "" {
		compressionName := params.Compression
		if compressionName == "" {
			compressionName = env.Config.Archive.Compression
		}
		compression, err := archive.ParseCompression(compressionName)
		if err != nil {
			return cli.Validation("%v", err)
		}
		writer, err = archive.OpenFile(params.Archive, archive.WriterOptions{Compression: compression})
		if err != nil {
			return cli.Validation("%v", err)
		}
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("closing archive", "path", params.Archive, "error", err)
			}
		}()
	}

	store, err := params.StoreFlag.open(env.Config, logger)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	printer := newMessagePrinter(streams.Out, env.Config, params.OutputJSON)

	if params.History > 0 {
		history, err := client.RoomMessages(ctx, room.ID, gitter.MessagesOptions{Limit: params.History})
		if err != nil {
			return cli.Classify(err)
		}
		cacheMessages(ctx, store, room.ID, history, logger)
		if err := printer.printAll(history); err != nil {
			return err
		}
	}

	subscription, err := client.RealtimeMessages(ctx, room.ID, options)
	if err != nil {
		return cli.Validation("%v", err)
	}
	defer subscription.Close()

	deliver := func(message gitter.Message) error {
		if writer != nil {
			if err := archiveMessage(writer, room.ID, message); err != nil {
				return cli.Internal("writing archive %s: %v", params.Archive, err)
			}
		}
		cacheMessages(ctx, store, room.ID, []gitter.Message{message}, logger)
		return printer.print(message)
	}

	err = consume(subscription, deliver, logger)

	stats := subscription.Stats()
	logger.Debug("stream ended",
		"records", stats.Records,
		"keep_alives", stats.KeepAlives,
		"messages", stats.Messages,
		"decode_errors", stats.DecodeErrors,
		"discarded_bytes", stats.DiscardedBytes,
	)
	if writer != nil {
		logger.Debug("archive written", "path", params.Archive, "entries", writer.Entries())
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, feed.ErrIdle):
		return cli.Transient("stream idle for longer than %s", options.IdleTimeout)
	default:
		var decodeErr *feed.DecodeError
		if errors.As(err, &decodeErr) {
			return cli.Validation("%v", err)
		}
		return cli.Classify(err)
	}
}

// stream is the part of a subscription consume reads.
type stream interface {
	Messages() <-chan gitter.Message
	DecodeErrors() <-chan *feed.DecodeError
	Wait() error
}

// consume hands each message to deliver until the stream ends and
// returns the stream's terminal error. Decode reports are logged. A
// deliver error stops consumption; the caller closes the stream.
func consume(source stream, deliver func(gitter.Message) error, logger *slog.Logger) error {
	messages := source.Messages()
	decodeErrors := source.DecodeErrors()
	for messages != nil {
		select {
		case message, ok := <-messages:
			if !ok {
				messages = nil
				continue
			}
			if err := deliver(message); err != nil {
				return err
			}
		case decodeErr, ok := <-decodeErrors:
			if !ok {
				decodeErrors = nil
				continue
			}
			logger.Warn("skipped undecodable record",
				"offset", decodeErr.Offset,
				"error", decodeErr.Err,
			)
		}
	}
	return source.Wait()
}

// archiveMessage appends message to writer as its JSON encoding.
func archiveMessage(writer *archive.Writer, roomID string, message gitter.Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("encoding message %s: %w", message.ID, err)
	}
	return writer.Append(roomID, data)
}
