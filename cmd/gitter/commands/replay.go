// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/bureau-foundation/gitter/cmd/gitter/cli"
	"github.com/bureau-foundation/gitter/gitter"
	"github.com/bureau-foundation/gitter/lib/archive"
)

type replayParams struct {
	cli.GlobalFlags
	cli.JSONOutput
	Room string `json:"-" flag:"room" desc:"only entries for this room ID"`
}

// replayEntry is the JSON line written for each entry with --json.
type replayEntry struct {
	RoomID     string          `json:"room_id"`
	ReceivedAt time.Time       `json:"received_at"`
	Message    json.RawMessage `json:"message"`
}

func replayCommand(streams cli.IO) *cli.Command {
	var params replayParams

	return &cli.Command{
		Name:    "replay",
		Summary: "Print the messages in an archive file",
		Description: `Print the messages recorded by "gitter tail --archive", in the same
formats as tail. Every entry is checked against its digest; reading
stops with an error at the first corrupt or truncated entry, after
printing the entries before it.`,
		Usage:  "gitter replay [flags] <file>",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := requireArgs(args, 1, 1, "gitter replay [flags] <file>"); err != nil {
				return err
			}
			return withEnvironment(&params.GlobalFlags, logger, func(env *cli.Environment) error {
				file, err := os.Open(args[0])
				if err != nil {
					return cli.NotFound("%v", err)
				}
				defer file.Close()

				reader, err := archive.NewReader(file)
				if err != nil {
					return cli.Validation("%s: %v", args[0], err)
				}

				printer := newMessagePrinter(streams.Out, env.Config, false)
				count := 0
				for {
					if err := ctx.Err(); err != nil {
						return nil
					}
					entry, err := reader.Next()
					if errors.Is(err, io.EOF) {
						break
					}
					if err != nil {
						return cli.Validation("%s: after %d entries: %v", args[0], count, err)
					}
					count++
					if params.Room != "" && entry.RoomID != params.Room {
						continue
					}

					if params.OutputJSON {
						line := replayEntry{RoomID: entry.RoomID, ReceivedAt: entry.ReceivedAt, Message: entry.Message}
						if err := cli.WriteJSONLine(streams.Out, line); err != nil {
							return err
						}
						continue
					}
					var message gitter.Message
					if err := json.Unmarshal(entry.Message, &message); err != nil {
						logger.Warn("undecodable archived message", "entry", count, "error", err)
						continue
					}
					if err := printer.print(message); err != nil {
						return err
					}
				}
				logger.Debug("replay finished", "path", args[0], "entries", count)
				return nil
			})
		},
	}
}
