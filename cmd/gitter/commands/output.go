// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/bureau-foundation/gitter/cmd/gitter/cli"
	"github.com/bureau-foundation/gitter/gitter"
	"github.com/bureau-foundation/gitter/lib/config"
	"github.com/bureau-foundation/gitter/lib/msgstore"
	"github.com/bureau-foundation/gitter/lib/render"
)

// StoreFlag selects the local message cache.
type StoreFlag struct {
	Store string `json:"-" flag:"store" desc:"message cache database (default store.path from the config)"`
}

// open returns the configured store, or nil when none is configured.
func (s StoreFlag) open(cfg *config.Config, logger *slog.Logger) (*msgstore.Store, error) {
	path := s.Store
	if path == "" {
		path = cfg.Store.Path
	}
	if path == "" {
		return nil, nil
	}
	store, err := msgstore.Open(msgstore.Config{Path: path, Logger: logger})
	if err != nil {
		return nil, cli.Internal("opening message cache: %v", err)
	}
	return store, nil
}

// messagePrinter writes messages in the form chosen for the output:
// JSON lines, rendered markdown on a terminal, or one plain line each.
type messagePrinter struct {
	out      io.Writer
	json     bool
	rendered bool
	options  render.Options
}

func newMessagePrinter(out io.Writer, cfg *config.Config, jsonLines bool) *messagePrinter {
	width := cfg.Render.Width
	if width == 0 {
		width = cli.TerminalWidth(out, render.DefaultWidth)
	}

	var color bool
	switch cfg.Render.Style {
	case "color":
		color = true
	case "plain":
		color = false
	default:
		color = render.ColorFor(out)
	}

	return &messagePrinter{
		out:      out,
		json:     jsonLines,
		rendered: color || cli.IsTerminal(out),
		options:  render.Options{Width: width, Color: color},
	}
}

func (p *messagePrinter) print(message gitter.Message) error {
	switch {
	case p.json:
		return cli.WriteJSONLine(p.out, message)
	case p.rendered:
		_, err := fmt.Fprintln(p.out, render.Message(message, p.options))
		return err
	default:
		_, err := fmt.Fprintln(p.out, render.PlainLine(message))
		return err
	}
}

func (p *messagePrinter) printAll(messages []gitter.Message) error {
	for _, message := range messages {
		if err := p.print(message); err != nil {
			return err
		}
	}
	return nil
}
