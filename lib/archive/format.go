// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"errors"
	"time"

	"github.com/zeebo/blake3"
)

// Version is the archive format version this package writes.
const Version = 1

// MaxEntrySize bounds the raw and stored length of a single entry.
// Larger lengths in a frame header are treated as corruption.
const MaxEntrySize = 16 << 20

const (
	headerSize = len(magic) + 1
	digestSize = 32
)

var magic = [4]byte{'G', 'T', 'A', 'R'}

var (
	// ErrNotArchive is returned when a file does not start with the
	// archive magic.
	ErrNotArchive = errors.New("archive: not an archive file")

	// ErrUnsupportedVersion is returned for an archive written by a
	// newer format version.
	ErrUnsupportedVersion = errors.New("archive: unsupported version")

	// ErrCorrupt is returned when an entry frame is truncated, fails
	// its digest check, or cannot be decoded.
	ErrCorrupt = errors.New("archive: corrupt entry")
)

// Entry is one archived message.
type Entry struct {
	RoomID     string    `cbor:"room_id"`
	ReceivedAt time.Time `cbor:"received_at"`

	// Message is the JSON encoding of the decoded message. It is
	// re-encoded after decoding, so it is not byte-identical to the
	// stream record.
	Message []byte `cbor:"message"`
}

// entryDomainKey is "gitter.archive.entry" zero-padded to the 32
// bytes BLAKE3 keyed mode requires.
var entryDomainKey = [32]byte{
	'g', 'i', 't', 't', 'e', 'r', '.', 'a', 'r', 'c', 'h', 'i', 'v', 'e', '.', 'e',
	'n', 't', 'r', 'y', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

func digest(data []byte) [digestSize]byte {
	hasher, err := blake3.NewKeyed(entryDomainKey[:])
	if err != nil {
		// Only a wrong key length fails, and the key is fixed-size.
		panic("archive: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var sum [digestSize]byte
	copy(sum[:], hasher.Sum(nil))
	return sum
}

func header() []byte {
	return append(magic[:], Version)
}

func checkHeader(data []byte) error {
	if len(data) < headerSize || [4]byte(data[:4]) != magic {
		return ErrNotArchive
	}
	if data[4] != Version {
		return ErrUnsupportedVersion
	}
	return nil
}
