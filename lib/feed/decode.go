// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Decoder converts one record into a value. The record slice is only
// valid for the duration of the call.
type Decoder[T any] func(record []byte) (T, error)

// JSONDecoder returns a Decoder that unmarshals each record, which
// must be a JSON object, into a value of type T. Any other JSON value,
// null included, fails with ErrNotObject.
func JSONDecoder[T any]() Decoder[T] {
	return func(record []byte) (T, error) {
		var value T
		trimmed := bytes.TrimLeft(record, " \t\r\n")
		if len(trimmed) == 0 || trimmed[0] != '{' {
			return value, ErrNotObject
		}
		err := json.Unmarshal(record, &value)
		return value, err
	}
}

// DecodePolicy selects what a subscription does with a record that
// fails to decode.
type DecodePolicy int

const (
	// DecodeSkip drops the record, reports it on DecodeErrors, and
	// keeps reading.
	DecodeSkip DecodePolicy = iota

	// DecodeFatal ends the subscription with the *DecodeError.
	DecodeFatal
)

func (p DecodePolicy) String() string {
	switch p {
	case DecodeSkip:
		return "skip"
	case DecodeFatal:
		return "fatal"
	default:
		return fmt.Sprintf("DecodePolicy(%d)", int(p))
	}
}

// ParseDecodePolicy parses "skip" or "fatal". The empty string is skip.
func ParseDecodePolicy(value string) (DecodePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "skip":
		return DecodeSkip, nil
	case "fatal":
		return DecodeFatal, nil
	default:
		return DecodeSkip, fmt.Errorf("feed: unknown decode policy %q (want skip or fatal)", value)
	}
}
