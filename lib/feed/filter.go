// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package feed

import "bytes"

// IsKeepAlive reports whether record is a heartbeat: empty or made up
// only of whitespace.
func IsKeepAlive(record []byte) bool {
	return len(bytes.TrimSpace(record)) == 0
}
