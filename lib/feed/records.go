// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package feed

import (
	"bytes"
	"io"
)

// DefaultMaxRecordSize is the record size limit used when none is
// configured: 1 MiB. A single chat message is a few kilobytes.
const DefaultMaxRecordSize = 1 << 20

// minReadSize is the free space guaranteed before each Read.
const minReadSize = 4 << 10

// maxEmptyReads is how many consecutive (0, nil) reads are tolerated
// before the source is declared stuck.
const maxEmptyReads = 100

// RecordReader splits a byte stream into newline-terminated records.
// Reads may end anywhere, including in the middle of a record or of a
// "\r\n" pair. A record is returned only once its terminating newline
// has arrived.
//
// RecordReader is not safe for concurrent use.
type RecordReader struct {
	source        io.Reader
	maxRecordSize int

	buffer []byte
	// start is where unconsumed bytes begin in buffer.
	start int
	// scanned counts bytes after start already known to hold no newline.
	scanned int

	// readErr is the error that came back from source, held until the
	// bytes read alongside it have been consumed.
	readErr error
	// err is terminal; once set every Next returns it.
	err error

	discarded int64
}

// NewRecordReader returns a RecordReader over source. A maxRecordSize of
// zero or less selects DefaultMaxRecordSize.
func NewRecordReader(source io.Reader, maxRecordSize int) *RecordReader {
	if maxRecordSize <= 0 {
		maxRecordSize = DefaultMaxRecordSize
	}
	return &RecordReader{
		source:        source,
		maxRecordSize: maxRecordSize,
	}
}

// Next returns the next record without its "\n" terminator or a
// preceding "\r". The returned slice aliases internal storage and is
// valid only until the next call.
//
// At the end of the stream Next returns io.EOF. A trailing fragment with
// no newline is dropped and counted by Discarded. Any other error from
// the source is returned unchanged, and ErrRecordTooLong is returned if
// a record outgrows the limit. Once Next has returned an error it
// returns the same error forever.
func (r *RecordReader) Next() ([]byte, error) {
	emptyReads := 0
	for {
		if r.err != nil {
			return nil, r.err
		}

		pending := r.buffer[r.start:]
		if index := bytes.IndexByte(pending[r.scanned:], '\n'); index >= 0 {
			end := r.scanned + index
			record := pending[:end]
			r.start += end + 1
			r.scanned = 0
			if len(record) > 0 && record[len(record)-1] == '\r' {
				record = record[:len(record)-1]
			}
			return record, nil
		}
		r.scanned = len(pending)

		if r.readErr != nil {
			r.discarded += int64(len(pending))
			r.release()
			r.err = r.readErr
			return nil, r.err
		}

		if len(pending) > r.maxRecordSize {
			r.discarded += int64(len(pending))
			r.release()
			r.err = ErrRecordTooLong
			return nil, r.err
		}

		r.makeRoom()
		n, err := r.source.Read(r.buffer[len(r.buffer):cap(r.buffer)])
		r.buffer = r.buffer[:len(r.buffer)+n]
		if err != nil {
			r.readErr = err
			continue
		}
		if n == 0 {
			emptyReads++
			if emptyReads >= maxEmptyReads {
				r.readErr = io.ErrNoProgress
			}
			continue
		}
		emptyReads = 0
	}
}

// Discarded returns the number of bytes dropped because no newline
// followed them before the stream ended.
func (r *RecordReader) Discarded() int64 {
	return r.discarded
}

// makeRoom shifts unconsumed bytes to the front of the buffer and grows
// it so at least minReadSize bytes are free.
func (r *RecordReader) makeRoom() {
	if r.start > 0 {
		remaining := copy(r.buffer, r.buffer[r.start:])
		r.buffer = r.buffer[:remaining]
		r.start = 0
	}
	if cap(r.buffer)-len(r.buffer) >= minReadSize {
		return
	}
	grown := make([]byte, len(r.buffer), 2*cap(r.buffer)+minReadSize)
	copy(grown, r.buffer)
	r.buffer = grown
}

func (r *RecordReader) release() {
	r.buffer = nil
	r.start = 0
	r.scanned = 0
}
