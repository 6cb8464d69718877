// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/bureau-foundation/gitter/lib/codec"
)

// Reader reads entries from an archive in the order they were written.
type Reader struct {
	source *bufio.Reader
	index  int
}

// NewReader validates the archive header at the start of source.
func NewReader(source io.Reader) (*Reader, error) {
	buffered := bufio.NewReader(source)
	head := make([]byte, headerSize)
	if _, err := io.ReadFull(buffered, head); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrNotArchive
		}
		return nil, fmt.Errorf("archive: reading header: %w", err)
	}
	if err := checkHeader(head); err != nil {
		return nil, err
	}
	return &Reader{source: buffered}, nil
}

// Next returns the next entry. It returns io.EOF after the last
// complete entry and an error wrapping [ErrCorrupt] for a damaged or
// truncated frame.
func (r *Reader) Next() (Entry, error) {
	tag, err := r.source.ReadByte()
	if errors.Is(err, io.EOF) {
		return Entry{}, io.EOF
	}
	if err != nil {
		return Entry{}, fmt.Errorf("archive: %w", err)
	}

	rawSize, err := r.readLength()
	if err != nil {
		return Entry{}, err
	}
	storedSize, err := r.readLength()
	if err != nil {
		return Entry{}, err
	}

	var expected [digestSize]byte
	if _, err := io.ReadFull(r.source, expected[:]); err != nil {
		return Entry{}, r.corrupt("reading digest: %v", err)
	}
	stored := make([]byte, storedSize)
	if _, err := io.ReadFull(r.source, stored); err != nil {
		return Entry{}, r.corrupt("reading %d stored bytes: %v", storedSize, err)
	}

	raw, err := decompress(stored, Compression(tag), rawSize)
	if err != nil {
		return Entry{}, r.corrupt("%v", err)
	}
	if digest(raw) != expected {
		return Entry{}, r.corrupt("digest mismatch")
	}

	var entry Entry
	if err := codec.Unmarshal(raw, &entry); err != nil {
		return Entry{}, r.corrupt("decoding: %v", err)
	}
	r.index++
	return entry, nil
}

func (r *Reader) readLength() (int, error) {
	length, err := binary.ReadUvarint(r.source)
	if err != nil {
		return 0, r.corrupt("reading length: %v", err)
	}
	if length > MaxEntrySize {
		return 0, r.corrupt("length %d exceeds limit %d", length, MaxEntrySize)
	}
	return int(length), nil
}

func (r *Reader) corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: entry %d: %s", ErrCorrupt, r.index, fmt.Sprintf(format, args...))
}

// ReadAll reads every entry from source.
func ReadAll(source io.Reader) ([]Entry, error) {
	reader, err := NewReader(source)
	if err != nil {
		return nil, err
	}
	var entries []Entry
	for {
		entry, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return entries, err
		}
		entries = append(entries, entry)
	}
}
