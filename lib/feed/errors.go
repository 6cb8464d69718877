// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package feed

import (
	"errors"
	"fmt"
)

// ErrRecordTooLong is returned by RecordReader when more than the
// configured maximum number of bytes arrive without a newline. Framing
// is lost at that point, so it ends the stream.
var ErrRecordTooLong = errors.New("feed: record exceeds maximum size")

// ErrNotObject is returned by JSONDecoder for a record that does not
// start with a JSON object, such as null or a bare number.
var ErrNotObject = errors.New("feed: record is not a JSON object")

// ErrIdle is wrapped by the TransportError reported when no bytes,
// keep-alives included, arrived within Options.IdleTimeout.
var ErrIdle = errors.New("feed: stream idle")

// TransportError is a failure of the underlying connection. It always
// ends the subscription.
type TransportError struct {
	// Op is the stage that failed: "open", "read", or "idle".
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("feed: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError is a record that could not be decoded. It concerns that
// record only.
type DecodeError struct {
	// Offset is the 1-based position of the record in the stream,
	// counting keep-alives.
	Offset int64

	// Record is a copy of the undecodable bytes.
	Record []byte

	Err error
}

// maxQuotedRecord bounds how much of a bad record appears in Error.
const maxQuotedRecord = 64

func (e *DecodeError) Error() string {
	record := e.Record
	suffix := ""
	if len(record) > maxQuotedRecord {
		record = record[:maxQuotedRecord]
		suffix = "..."
	}
	return fmt.Sprintf("feed: record %d: %v (record %q%s)", e.Offset, e.Err, record, suffix)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsTransportError reports whether err is or wraps a *TransportError.
func IsTransportError(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}
