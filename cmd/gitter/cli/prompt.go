// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/bureau-foundation/gitter/lib/secret"
)

// ReadSecret reads one line from streams.In. When the input is a
// terminal, prompt is written to streams.Err and echo is disabled. The
// caller must close the returned buffer.
func ReadSecret(streams IO, prompt string) (*secret.Buffer, error) {
	file, ok := streams.In.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return secret.ReadLine(streams.In)
	}

	fmt.Fprint(streams.Err, prompt)
	data, err := term.ReadPassword(int(file.Fd()))
	fmt.Fprintln(streams.Err)
	if err != nil {
		return nil, fmt.Errorf("reading from terminal: %w", err)
	}
	if len(data) == 0 {
		return nil, Validation("no token entered")
	}
	return secret.NewFromBytes(data)
}
