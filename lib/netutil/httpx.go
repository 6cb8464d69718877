// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil holds the HTTP body helpers shared by the REST client
// and the streaming feed.
//
// ReadResponse, DecodeResponse, and ErrorBody bound every body read so a
// misbehaving server cannot make the client allocate without limit. They
// are for finite JSON responses. The real-time stream is unbounded and is
// read incrementally by lib/feed instead.
//
// IsExpectedCloseError classifies the errors a blocked Read returns once
// its connection has been torn down on purpose.
package netutil

import (
	"encoding/json"
	"fmt"
	"io"
)

// MaxResponseSize bounds REST response bodies: 32 MB. A page of chat
// messages is a few hundred kilobytes at most.
const MaxResponseSize int64 = 32 << 20

// MaxErrorBodySize bounds how much of a failed response is kept for an
// error message.
const MaxErrorBodySize int64 = 4 << 10

// ReadResponse reads a response body up to MaxResponseSize bytes.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}

// DecodeResponse reads a response body (up to MaxResponseSize bytes) and
// JSON-decodes it into v.
func DecodeResponse(body io.Reader, v any) error {
	data, err := ReadResponse(body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	return json.Unmarshal(data, v)
}

// ErrorBody returns up to MaxErrorBodySize bytes of an error response for
// use in diagnostics. Read errors are ignored; a partial body is still
// useful.
func ErrorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, MaxErrorBodySize))
	return string(data)
}
