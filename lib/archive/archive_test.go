// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/gitter/lib/clock"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func repetitiveMessage() []byte {
	return []byte(`{"id":"m1","text":"` + strings.Repeat("hello gitter ", 200) + `"}`)
}

func TestWriteRead(t *testing.T) {
	for _, compression := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(compression.String(), func(t *testing.T) {
			fake := clock.Fake(epoch)
			var buffer bytes.Buffer
			writer, err := NewWriter(&buffer, WriterOptions{Compression: compression, Clock: fake})
			if err != nil {
				t.Fatalf("NewWriter: %v", err)
			}

			large := repetitiveMessage()
			if err := writer.Append("room-1", large); err != nil {
				t.Fatalf("Append: %v", err)
			}
			fake.Advance(time.Second)
			if err := writer.Append("room-2", []byte(`{"id":"m2"}`)); err != nil {
				t.Fatalf("Append: %v", err)
			}
			if writer.Entries() != 2 {
				t.Errorf("Entries = %d, want 2", writer.Entries())
			}

			// The first frame's tag byte follows the header.
			if tag := Compression(buffer.Bytes()[headerSize]); tag != compression {
				t.Errorf("first entry stored with %s, want %s", tag, compression)
			}

			entries, err := ReadAll(bytes.NewReader(buffer.Bytes()))
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
			if len(entries) != 2 {
				t.Fatalf("got %d entries, want 2", len(entries))
			}
			if entries[0].RoomID != "room-1" || !bytes.Equal(entries[0].Message, large) {
				t.Errorf("entry 0 = %q, message mismatch", entries[0].RoomID)
			}
			if !entries[0].ReceivedAt.Equal(epoch) {
				t.Errorf("entry 0 ReceivedAt = %v, want %v", entries[0].ReceivedAt, epoch)
			}
			if entries[1].RoomID != "room-2" || string(entries[1].Message) != `{"id":"m2"}` {
				t.Errorf("entry 1 = %+v", entries[1])
			}
			if !entries[1].ReceivedAt.Equal(epoch.Add(time.Second)) {
				t.Errorf("entry 1 ReceivedAt = %v", entries[1].ReceivedAt)
			}
		})
	}
}

func TestIncompressibleStoredRaw(t *testing.T) {
	var buffer bytes.Buffer
	writer, err := NewWriter(&buffer, WriterOptions{Compression: CompressionZstd, Clock: clock.Fake(epoch)})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := writer.Append("r", []byte(`{}`)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if tag := Compression(buffer.Bytes()[headerSize]); tag != CompressionNone {
		t.Errorf("tiny entry stored with %s, want none", tag)
	}
	entries, err := ReadAll(&buffer)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(entries) != 1 || string(entries[0].Message) != `{}` {
		t.Errorf("entries = %+v", entries)
	}
}

func writeArchive(t *testing.T, compression Compression, messages ...string) []byte {
	t.Helper()
	var buffer bytes.Buffer
	writer, err := NewWriter(&buffer, WriterOptions{Compression: compression, Clock: clock.Fake(epoch)})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	for _, message := range messages {
		if err := writer.Append("room", []byte(message)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	return buffer.Bytes()
}

func TestCorruption(t *testing.T) {
	t.Run("flipped payload byte", func(t *testing.T) {
		data := writeArchive(t, CompressionNone, `{"id":"m1"}`)
		data[len(data)-2] ^= 0xff
		_, err := ReadAll(bytes.NewReader(data))
		if !errors.Is(err, ErrCorrupt) {
			t.Fatalf("error = %v, want ErrCorrupt", err)
		}
	})

	t.Run("flipped compressed byte", func(t *testing.T) {
		data := writeArchive(t, CompressionZstd, string(repetitiveMessage()))
		data[len(data)-3] ^= 0x55
		_, err := ReadAll(bytes.NewReader(data))
		if !errors.Is(err, ErrCorrupt) {
			t.Fatalf("error = %v, want ErrCorrupt", err)
		}
	})

	t.Run("truncated frame", func(t *testing.T) {
		data := writeArchive(t, CompressionNone, `{"id":"m1"}`, `{"id":"m2"}`)
		entries, err := ReadAll(bytes.NewReader(data[:len(data)-4]))
		if !errors.Is(err, ErrCorrupt) {
			t.Fatalf("error = %v, want ErrCorrupt", err)
		}
		if len(entries) != 1 {
			t.Errorf("got %d entries before the damage, want 1", len(entries))
		}
	})

	t.Run("oversized length", func(t *testing.T) {
		data := append(header(), byte(CompressionNone), 0xff, 0xff, 0xff, 0xff, 0x0f)
		_, err := ReadAll(bytes.NewReader(data))
		if !errors.Is(err, ErrCorrupt) {
			t.Fatalf("error = %v, want ErrCorrupt", err)
		}
	})
}

func TestHeader(t *testing.T) {
	if _, err := NewReader(strings.NewReader("")); !errors.Is(err, ErrNotArchive) {
		t.Errorf("empty input error = %v, want ErrNotArchive", err)
	}
	if _, err := NewReader(strings.NewReader("JSON{}")); !errors.Is(err, ErrNotArchive) {
		t.Errorf("wrong magic error = %v, want ErrNotArchive", err)
	}
	if _, err := NewReader(bytes.NewReader([]byte{'G', 'T', 'A', 'R', 9})); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("future version error = %v, want ErrUnsupportedVersion", err)
	}

	reader, err := NewReader(bytes.NewReader(header()))
	if err != nil {
		t.Fatalf("NewReader(header only): %v", err)
	}
	if _, err := reader.Next(); err != io.EOF {
		t.Errorf("Next on empty archive = %v, want io.EOF", err)
	}
}

func TestOpenFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "room.gtar")

	for index, message := range []string{`{"id":"a"}`, `{"id":"b"}`} {
		writer, err := OpenFile(path, WriterOptions{Compression: CompressionLZ4, Clock: clock.Fake(epoch)})
		if err != nil {
			t.Fatalf("OpenFile #%d: %v", index, err)
		}
		if err := writer.Append("room", []byte(message)); err != nil {
			t.Fatalf("Append: %v", err)
		}
		if err := writer.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer file.Close()
	entries, err := ReadAll(file)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(entries) != 2 || string(entries[0].Message) != `{"id":"a"}` || string(entries[1].Message) != `{"id":"b"}` {
		t.Errorf("entries = %+v", entries)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestOpenFileRejectsForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("plain text"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenFile(path, WriterOptions{}); !errors.Is(err, ErrNotArchive) {
		t.Fatalf("error = %v, want ErrNotArchive", err)
	}
}

func TestParseCompression(t *testing.T) {
	tests := []struct {
		name string
		want Compression
	}{
		{"", CompressionZstd},
		{"zstd", CompressionZstd},
		{"lz4", CompressionLZ4},
		{"none", CompressionNone},
	}
	for _, test := range tests {
		got, err := ParseCompression(test.name)
		if err != nil {
			t.Errorf("ParseCompression(%q): %v", test.name, err)
			continue
		}
		if got != test.want {
			t.Errorf("ParseCompression(%q) = %s, want %s", test.name, got, test.want)
		}
	}
	if _, err := ParseCompression("gzip"); err == nil {
		t.Error("ParseCompression(gzip) succeeded")
	}
}
