// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package feed

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

// chunkReader returns one chunk per Read call, then io.EOF.
type chunkReader struct {
	chunks [][]byte
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	if n < len(r.chunks[0]) {
		r.chunks[0] = r.chunks[0][n:]
	} else {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

func chunksOf(chunks ...string) *chunkReader {
	reader := &chunkReader{}
	for _, chunk := range chunks {
		reader.chunks = append(reader.chunks, []byte(chunk))
	}
	return reader
}

// splitEvery cuts payload into pieces of size bytes (the last may be
// shorter).
func splitEvery(payload string, size int) *chunkReader {
	reader := &chunkReader{}
	for len(payload) > 0 {
		n := min(size, len(payload))
		reader.chunks = append(reader.chunks, []byte(payload[:n]))
		payload = payload[n:]
	}
	return reader
}

// readAll drains a RecordReader, copying each record.
func readAll(t *testing.T, reader *RecordReader) ([]string, error) {
	t.Helper()
	var records []string
	for {
		record, err := reader.Next()
		if err != nil {
			return records, err
		}
		records = append(records, string(record))
	}
}

func TestRecordReaderFragmentation(t *testing.T) {
	payload := "{\"id\":1,\"text\":\"hi\"}\n\n  \n{\"id\":2,\"text\":\"a longer message body\"}\r\n{\"id\":3}\n"
	want := []string{`{"id":1,"text":"hi"}`, "", "  ", `{"id":2,"text":"a longer message body"}`, `{"id":3}`}

	for size := 1; size <= len(payload); size++ {
		records, err := readAll(t, NewRecordReader(splitEvery(payload, size), 0))
		if !errors.Is(err, io.EOF) {
			t.Fatalf("chunk size %d: terminal error = %v, want io.EOF", size, err)
		}
		if strings.Join(records, "|") != strings.Join(want, "|") {
			t.Fatalf("chunk size %d: records = %q, want %q", size, records, want)
		}
	}

	t.Run("one byte reader", func(t *testing.T) {
		records, err := readAll(t, NewRecordReader(iotest.OneByteReader(strings.NewReader(payload)), 0))
		if !errors.Is(err, io.EOF) {
			t.Fatalf("terminal error = %v, want io.EOF", err)
		}
		if len(records) != len(want) {
			t.Fatalf("got %d records, want %d", len(records), len(want))
		}
	})
}

func TestRecordReaderRecordAcrossThreeReads(t *testing.T) {
	reader := NewRecordReader(chunksOf(`{"id":`, `7,"text":`, "\"split\"}\n"), 0)

	record, err := reader.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if string(record) != `{"id":7,"text":"split"}` {
		t.Fatalf("record = %q", record)
	}
	if _, err := reader.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("second Next error = %v, want io.EOF", err)
	}
}

func TestRecordReaderTrailingFragment(t *testing.T) {
	reader := NewRecordReader(chunksOf("{\"id\":1}\n{\"id\":"), 0)

	records, err := readAll(t, reader)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("terminal error = %v, want io.EOF", err)
	}
	if len(records) != 1 || records[0] != `{"id":1}` {
		t.Fatalf("records = %q, want only the terminated record", records)
	}
	if reader.Discarded() != int64(len(`{"id":`)) {
		t.Errorf("Discarded = %d, want %d", reader.Discarded(), len(`{"id":`))
	}
}

func TestRecordReaderDataWithError(t *testing.T) {
	// DataErrReader returns the final bytes together with io.EOF.
	source := iotest.DataErrReader(strings.NewReader("{\"id\":1}\n{\"id\":2}\n"))
	records, err := readAll(t, NewRecordReader(source, 0))
	if !errors.Is(err, io.EOF) {
		t.Fatalf("terminal error = %v, want io.EOF", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2 (bytes read alongside EOF must be kept)", len(records))
	}
}

func TestRecordReaderStickyError(t *testing.T) {
	failure := errors.New("connection reset")
	source := io.MultiReader(strings.NewReader("{\"id\":1}\npartial"), iotest.ErrReader(failure))
	reader := NewRecordReader(source, 0)

	if record, err := reader.Next(); err != nil || string(record) != `{"id":1}` {
		t.Fatalf("first Next = %q, %v", record, err)
	}
	for attempt := 0; attempt < 3; attempt++ {
		record, err := reader.Next()
		if !errors.Is(err, failure) {
			t.Fatalf("attempt %d: error = %v, want %v", attempt, err, failure)
		}
		if record != nil {
			t.Fatalf("attempt %d: got record %q after terminal error", attempt, record)
		}
	}
}

func TestRecordReaderTooLong(t *testing.T) {
	t.Run("no newline", func(t *testing.T) {
		source := strings.NewReader(strings.Repeat("x", 100))
		_, err := NewRecordReader(source, 16).Next()
		if !errors.Is(err, ErrRecordTooLong) {
			t.Fatalf("error = %v, want ErrRecordTooLong", err)
		}
	})

	t.Run("record at the limit", func(t *testing.T) {
		payload := strings.Repeat("y", 16) + "\n"
		record, err := NewRecordReader(strings.NewReader(payload), 16).Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if len(record) != 16 {
			t.Fatalf("record length = %d, want 16", len(record))
		}
	})

	t.Run("large valid records grow the buffer", func(t *testing.T) {
		large := strings.Repeat("z", 3*minReadSize)
		payload := large + "\n" + large + "\n"
		records, err := readAll(t, NewRecordReader(splitEvery(payload, 1000), 0))
		if !errors.Is(err, io.EOF) {
			t.Fatalf("terminal error = %v", err)
		}
		if len(records) != 2 || records[0] != large || records[1] != large {
			t.Fatalf("large records were not reassembled intact")
		}
	})
}

// emptyReader returns (0, nil) forever.
type emptyReader struct{}

func (emptyReader) Read([]byte) (int, error) { return 0, nil }

func TestRecordReaderNoProgress(t *testing.T) {
	_, err := NewRecordReader(emptyReader{}, 0).Next()
	if !errors.Is(err, io.ErrNoProgress) {
		t.Fatalf("error = %v, want io.ErrNoProgress", err)
	}
}

func TestIsKeepAlive(t *testing.T) {
	tests := []struct {
		record string
		want   bool
	}{
		{"", true},
		{" ", true},
		{"\t \r", true},
		{"\u00a0\n", true},
		{"{}", false},
		{" {\"id\":1} ", false},
		{"x", false},
	}
	for _, test := range tests {
		if got := IsKeepAlive([]byte(test.record)); got != test.want {
			t.Errorf("IsKeepAlive(%q) = %v, want %v", test.record, got, test.want)
		}
	}
}

func TestDecodeError(t *testing.T) {
	cause := errors.New("invalid character")
	decodeErr := &DecodeError{Offset: 3, Record: bytes.Repeat([]byte("a"), 100), Err: cause}

	if !errors.Is(decodeErr, cause) {
		t.Error("DecodeError does not unwrap to its cause")
	}
	message := decodeErr.Error()
	if !strings.Contains(message, "record 3") {
		t.Errorf("Error() = %q, want the record offset", message)
	}
	if !strings.HasSuffix(message, `...)`) {
		t.Errorf("Error() = %q, want a truncated record", message)
	}
}

func TestParseDecodePolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    DecodePolicy
		wantErr bool
	}{
		{"", DecodeSkip, false},
		{"skip", DecodeSkip, false},
		{"FATAL", DecodeFatal, false},
		{"explode", DecodeSkip, true},
	}
	for _, test := range tests {
		got, err := ParseDecodePolicy(test.input)
		if (err != nil) != test.wantErr {
			t.Errorf("ParseDecodePolicy(%q) error = %v, wantErr %v", test.input, err, test.wantErr)
			continue
		}
		if got != test.want {
			t.Errorf("ParseDecodePolicy(%q) = %v, want %v", test.input, got, test.want)
		}
	}
	if DecodeFatal.String() != "fatal" || DecodeSkip.String() != "skip" {
		t.Errorf("String() = %q/%q", DecodeSkip, DecodeFatal)
	}
}
