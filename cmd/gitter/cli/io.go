// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"os"

	"golang.org/x/term"
)

// IO is the set of streams a command reads and writes. Commands never
// touch os.Stdout directly so tests can capture their output.
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StandardIO returns the process's standard streams.
func StandardIO() IO {
	return IO{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w any) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// TerminalWidth returns the width of w, or fallback when w is not a
// terminal.
func TerminalWidth(w io.Writer, fallback int) int {
	file, ok := w.(*os.File)
	if !ok {
		return fallback
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}
