// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
)

// ReadFromPath reads a token from a file, or from stdin if path is "-".
// Surrounding whitespace is trimmed. The caller must close the returned
// buffer.
func ReadFromPath(path string) (*Buffer, error) {
	if path == "-" {
		return ReadLine(os.Stdin)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return fromTrimmed(data)
}

// ReadLine reads the first line of reader as a secret.
func ReadLine(reader io.Reader) (*Buffer, error) {
	scanner := bufio.NewScanner(reader)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("secret: reading input: %w", err)
		}
		return nil, fmt.Errorf("secret: input is empty")
	}
	return fromTrimmed(scanner.Bytes())
}

// fromTrimmed moves the trimmed content of data into a Buffer and zeroes
// all of data.
func fromTrimmed(data []byte) (*Buffer, error) {
	defer Zero(data)

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("secret: value is empty")
	}
	return NewFromBytes(trimmed)
}
