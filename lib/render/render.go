// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package render formats chat messages for terminal output.
//
// Message bodies are Gitter-flavored markdown. [Message] parses them
// with goldmark and renders paragraphs wrapped to a width, with inline
// styles, highlighted code blocks, lists, and block quotes. [PlainLine]
// is the single-line form for logs and pipes.
package render

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/bureau-foundation/gitter/gitter"
)

// DefaultWidth is used when Options.Width is not positive.
const DefaultWidth = 80

// Options controls terminal rendering.
type Options struct {
	// Width is the wrap column.
	Width int

	// Color enables ANSI styling and syntax highlighting. When false
	// the output contains no escape sequences.
	Color bool

	// Location is used to display send times. Nil means time.Local.
	Location *time.Location
}

// ColorFor reports whether styled output suits w: true when w is a
// terminal and NO_COLOR is unset.
func ColorFor(w io.Writer) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return termenv.NewOutput(file).Profile != termenv.Ascii
}

// Message renders message as a header line followed by its body.
func Message(message gitter.Message, options Options) string {
	var builder strings.Builder
	builder.WriteString(Header(message, options))
	builder.WriteString("\n")

	body := Markdown(message.Text, options)
	if body != "" {
		builder.WriteString(body)
		builder.WriteString("\n")
	}
	return builder.String()
}

// Header renders the "15:04  @username" line for message.
func Header(message gitter.Message, options Options) string {
	palette := newPalette(options.Color)
	location := options.Location
	if location == nil {
		location = time.Local
	}

	header := palette.faint.Render(message.Sent.In(location).Format("15:04")) + "  " +
		palette.username.Render("@"+message.FromUser.Username)
	if message.Edited() {
		header += " " + palette.faint.Render("(edited)")
	}
	return header
}

// Markdown renders markdown source for the terminal.
func Markdown(source string, options Options) string {
	if strings.TrimSpace(source) == "" {
		return ""
	}
	width := options.Width
	if width <= 0 {
		width = DefaultWidth
	}

	input := []byte(source)
	document := parser().Parser().Parse(text.NewReader(input))

	renderer := &markdownRenderer{
		source:  input,
		width:   width,
		color:   options.Color,
		palette: newPalette(options.Color),
	}
	ast.Walk(document, renderer.walk)
	return strings.TrimRight(renderer.output.String(), "\n")
}

// PlainLine renders message on one line with no styling:
// "2006-01-02T15:04:05Z @username: text".
func PlainLine(message gitter.Message) string {
	body := strings.Join(strings.Fields(message.Text), " ")
	line := message.Sent.UTC().Format(time.RFC3339) + " @" + message.FromUser.Username + ": " + body
	if message.Edited() {
		line += " (edited)"
	}
	return line
}

type palette struct {
	renderer *lipgloss.Renderer
	username lipgloss.Style
	faint    lipgloss.Style
	code     lipgloss.Style
	heading  lipgloss.Style
	mention  lipgloss.Style
}

func newPalette(color bool) palette {
	// The profile is forced rather than detected so that output
	// depends only on Options.Color.
	profile := termenv.Ascii
	if color {
		profile = termenv.ANSI256
	}
	renderer := lipgloss.NewRenderer(os.Stdout, termenv.WithProfile(profile))
	renderer.SetColorProfile(profile)

	return palette{
		renderer: renderer,
		username: renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		faint:    renderer.NewStyle().Foreground(lipgloss.Color("245")),
		code:     renderer.NewStyle().Foreground(lipgloss.Color("214")),
		heading:  renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("111")),
		mention:  renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("170")),
	}
}
