// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/bureau-foundation/gitter/lib/clock"
	"github.com/bureau-foundation/gitter/lib/codec"
)

// WriterOptions configures a [Writer].
type WriterOptions struct {
	// Compression is applied to each entry. Entries that do not
	// shrink are stored uncompressed.
	Compression Compression

	// Clock stamps ReceivedAt. Nil uses the real clock.
	Clock clock.Clock
}

// Writer appends entries to an archive. It is safe for concurrent use.
type Writer struct {
	mu          sync.Mutex
	destination io.Writer
	closer      io.Closer
	compression Compression
	clock       clock.Clock
	entries     int
}

// NewWriter writes an archive header to destination and returns a
// Writer that appends entries after it.
func NewWriter(destination io.Writer, options WriterOptions) (*Writer, error) {
	if _, err := destination.Write(header()); err != nil {
		return nil, fmt.Errorf("archive: writing header: %w", err)
	}
	return newWriter(destination, nil, options), nil
}

// OpenFile opens path for appending, creating it with a fresh header
// when it does not exist or is empty. An existing non-empty file must
// carry a valid header.
func OpenFile(path string, options WriterOptions) (*Writer, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("archive: %w", err)
	}

	if info.Size() == 0 {
		if _, err := file.Write(header()); err != nil {
			file.Close()
			return nil, fmt.Errorf("archive: writing header: %w", err)
		}
	} else {
		existing := make([]byte, headerSize)
		if _, err := file.ReadAt(existing, 0); err != nil && !errors.Is(err, io.EOF) {
			file.Close()
			return nil, fmt.Errorf("archive: reading header: %w", err)
		}
		if err := checkHeader(existing); err != nil {
			file.Close()
			return nil, fmt.Errorf("%w: %s", err, path)
		}
	}

	return newWriter(file, file, options), nil
}

func newWriter(destination io.Writer, closer io.Closer, options WriterOptions) *Writer {
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	return &Writer{
		destination: destination,
		closer:      closer,
		compression: options.Compression,
		clock:       options.Clock,
	}
}

// Append archives message as received in roomID now.
func (w *Writer) Append(roomID string, message []byte) error {
	return w.Write(Entry{
		RoomID:     roomID,
		ReceivedAt: w.clock.Now().UTC(),
		Message:    message,
	})
}

// Write archives a fully specified entry.
func (w *Writer) Write(entry Entry) error {
	raw, err := codec.Marshal(entry)
	if err != nil {
		return fmt.Errorf("archive: encoding entry: %w", err)
	}
	if len(raw) > MaxEntrySize {
		return fmt.Errorf("archive: entry is %d bytes, limit is %d", len(raw), MaxEntrySize)
	}

	stored, tag, err := compress(raw, w.compression)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}

	sum := digest(raw)
	frame := make([]byte, 0, 1+2*binary.MaxVarintLen64+digestSize+len(stored))
	frame = append(frame, byte(tag))
	frame = binary.AppendUvarint(frame, uint64(len(raw)))
	frame = binary.AppendUvarint(frame, uint64(len(stored)))
	frame = append(frame, sum[:]...)
	frame = append(frame, stored...)

	// One Write per frame keeps O_APPEND writers from interleaving.
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.destination.Write(frame); err != nil {
		return fmt.Errorf("archive: writing entry: %w", err)
	}
	w.entries++
	return nil
}

// Entries returns the number of entries written through w.
func (w *Writer) Entries() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.entries
}

// Close closes the underlying file when the Writer was created with
// [OpenFile]. Writers from [NewWriter] leave their destination open.
func (w *Writer) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}
