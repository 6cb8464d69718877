// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/gitter/gitter"
)

var sent = time.Date(2026, 4, 1, 10, 30, 0, 0, time.UTC)

func sample(text string) gitter.Message {
	return gitter.Message{
		ID:       "m1",
		Text:     text,
		Sent:     sent,
		FromUser: gitter.User{Username: "alice"},
	}
}

var plain = Options{Width: 40, Location: time.UTC}

func TestPlainLine(t *testing.T) {
	message := sample("hello\n  world")
	if got, want := PlainLine(message), "2026-04-01T10:30:00Z @alice: hello world"; got != want {
		t.Errorf("PlainLine = %q, want %q", got, want)
	}

	edited := sent.Add(time.Minute)
	message.EditedAt = &edited
	if got := PlainLine(message); !strings.HasSuffix(got, " (edited)") {
		t.Errorf("PlainLine of an edited message = %q", got)
	}
}

func TestHeader(t *testing.T) {
	if got, want := Header(sample("x"), plain), "10:30  @alice"; got != want {
		t.Errorf("Header = %q, want %q", got, want)
	}
	if got := Header(sample("x"), Options{Location: time.FixedZone("plus2", 2*3600)}); !strings.HasPrefix(got, "12:30") {
		t.Errorf("Header in +02:00 = %q", got)
	}
}

func TestMessage(t *testing.T) {
	got := Message(sample("hi **there**"), plain)
	if want := "10:30  @alice\nhi there\n"; got != want {
		t.Errorf("Message = %q, want %q", got, want)
	}
	if got := Message(sample("   "), plain); got != "10:30  @alice\n" {
		t.Errorf("Message with an empty body = %q", got)
	}
}

func TestMarkdownPlain(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"emphasis", "**bold** and _it_ and ~~gone~~", "bold and it and gone"},
		{"soft break", "one\ntwo", "one two"},
		{"bullets", "- one\n- two", "• one\n• two"},
		{"ordered", "1. a\n2. b", "1. a\n2. b"},
		{"quote", "> quoted", "│ quoted"},
		{"link", "[docs](https://example.com/docs)", "docs <https://example.com/docs>"},
		{"heading", "# Title", "Title"},
		{"code span", "run `make`", "run make"},
		{"fenced", "```go\nfmt.Println(1)\n```", "  fmt.Println(1)"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Markdown(test.source, plain)
			if got != test.want {
				t.Errorf("Markdown(%q) = %q, want %q", test.source, got, test.want)
			}
		})
	}
}

func TestMarkdownWraps(t *testing.T) {
	source := strings.Repeat("word ", 40)
	got := Markdown(source, Options{Width: 20})
	lines := strings.Split(got, "\n")
	if len(lines) < 2 {
		t.Fatalf("expected wrapped output, got %q", got)
	}
	for _, line := range lines {
		if width := ansi.StringWidth(line); width > 20 {
			t.Errorf("line %q is %d columns wide", line, width)
		}
	}
}

func TestMarkdownColor(t *testing.T) {
	source := "**bold**\n\n```go\nfunc main() {}\n```"
	if got := Markdown(source, Options{Color: true}); !strings.Contains(got, "\x1b[") {
		t.Errorf("colored output has no escape sequences: %q", got)
	}
	if got := Markdown(source, Options{Color: false}); strings.Contains(got, "\x1b") {
		t.Errorf("plain output has escape sequences: %q", got)
	}
	if got := Markdown("", Options{}); got != "" {
		t.Errorf("Markdown(\"\") = %q", got)
	}
}
