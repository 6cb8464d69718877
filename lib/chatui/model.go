// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chatui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/gitter/gitter"
	"github.com/bureau-foundation/gitter/lib/feed"
	"github.com/bureau-foundation/gitter/lib/render"
)

// Feed is the live message source. *feed.Subscription[gitter.Message]
// implements it.
type Feed interface {
	Messages() <-chan gitter.Message
	DecodeErrors() <-chan *feed.DecodeError
	Done() <-chan struct{}
	Err() error
	Stats() feed.Stats
	Close() error
}

// Sender posts a message to a room. *gitter.Client implements it.
type Sender interface {
	SendMessage(ctx context.Context, roomID, text string) (*gitter.Message, error)
}

// Config holds the parameters for [NewModel].
type Config struct {
	RoomID string

	// Title is shown in the status bar. Defaults to RoomID.
	Title string

	Feed   Feed
	Sender Sender

	// History is shown before any live messages, oldest first.
	History []gitter.Message

	// Render controls message formatting. Width is replaced by the
	// terminal width.
	Render render.Options

	// SendTimeout bounds each SendMessage call. Defaults to 30s.
	SendTimeout time.Duration

	Keys KeyMap
}

type (
	messageMsg     struct{ message gitter.Message }
	decodeErrorMsg struct{ err *feed.DecodeError }
	feedClosedMsg  struct{ err error }
	sentMsg        struct{ message gitter.Message }
	sendFailedMsg  struct{ err error }
)

// Model is the bubbletea model of the room view.
type Model struct {
	config Config
	keys   KeyMap

	viewport viewport.Model
	input    textinput.Model

	messages []gitter.Message
	index    map[string]int

	// notice is the most recent status line text, such as a decode
	// report or a send failure.
	notice  string
	closed  bool
	feedErr error
	sending int

	width  int
	height int
	ready  bool

	faint     lipgloss.Style
	statusOK  lipgloss.Style
	statusBad lipgloss.Style
}

// NewModel returns a room view over config.Feed.
func NewModel(config Config) Model {
	// Room names come from the server; strip escapes so one cannot
	// repaint the terminal.
	config.Title = ansi.Strip(config.Title)
	if config.Title == "" {
		config.Title = config.RoomID
	}
	if config.SendTimeout <= 0 {
		config.SendTimeout = 30 * time.Second
	}
	keys := config.Keys
	if len(keys.Quit.Keys()) == 0 {
		keys = DefaultKeyMap
	}

	input := textinput.New()
	input.Placeholder = "Message " + config.Title
	input.Prompt = "> "
	input.Focus()

	model := Model{
		config:    config,
		keys:      keys,
		viewport:  viewport.New(render.DefaultWidth, 10),
		input:     input,
		index:     make(map[string]int),
		faint:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		statusOK:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		statusBad: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	}
	for _, message := range config.History {
		model.upsert(message)
	}
	return model
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		listenMessages(model.config.Feed),
		listenDecodeErrors(model.config.Feed),
	)
}

// listenMessages delivers the next message, or feedClosedMsg once the
// subscription has finished.
func listenMessages(source Feed) tea.Cmd {
	return func() tea.Msg {
		message, ok := <-source.Messages()
		if !ok {
			<-source.Done()
			return feedClosedMsg{err: source.Err()}
		}
		return messageMsg{message: message}
	}
}

func listenDecodeErrors(source Feed) tea.Cmd {
	return func() tea.Msg {
		decodeErr, ok := <-source.DecodeErrors()
		if !ok {
			return nil
		}
		return decodeErrorMsg{err: decodeErr}
	}
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(message, model.keys.Quit):
			return model, tea.Quit
		case key.Matches(message, model.keys.Send):
			return model, model.send()
		case key.Matches(message, model.keys.PageUp):
			model.viewport.LineUp(max(model.viewport.Height/2, 1))
			return model, nil
		case key.Matches(message, model.keys.PageDown):
			model.viewport.LineDown(max(model.viewport.Height/2, 1))
			return model, nil
		case key.Matches(message, model.keys.Bottom):
			model.viewport.GotoBottom()
			return model, nil
		}
		var cmd tea.Cmd
		model.input, cmd = model.input.Update(message)
		return model, cmd

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		model.layout()
		return model, nil

	case messageMsg:
		model.upsert(message.message)
		return model, listenMessages(model.config.Feed)

	case decodeErrorMsg:
		model.notice = fmt.Sprintf("skipped undecodable record %d", message.err.Offset)
		return model, listenDecodeErrors(model.config.Feed)

	case feedClosedMsg:
		model.closed = true
		model.feedErr = message.err
		if message.err != nil {
			model.notice = message.err.Error()
		}
		return model, nil

	case sentMsg:
		model.sending--
		model.upsert(message.message)
		return model, nil

	case sendFailedMsg:
		model.sending--
		model.notice = "send failed: " + message.err.Error()
		return model, nil
	}

	var cmd tea.Cmd
	model.input, cmd = model.input.Update(message)
	return model, cmd
}

func (model *Model) send() tea.Cmd {
	text := strings.TrimSpace(model.input.Value())
	if text == "" || model.config.Sender == nil {
		return nil
	}
	model.input.Reset()
	model.sending++

	sender := model.config.Sender
	roomID := model.config.RoomID
	timeout := model.config.SendTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		sent, err := sender.SendMessage(ctx, roomID, text)
		if err != nil {
			return sendFailedMsg{err: err}
		}
		return sentMsg{message: *sent}
	}
}

// upsert appends message, or replaces an earlier copy with the same ID
// when the new one is at least as recent.
func (model *Model) upsert(message gitter.Message) {
	if position, ok := model.index[message.ID]; ok && message.ID != "" {
		if message.Version >= model.messages[position].Version {
			model.messages[position] = message
		}
	} else {
		model.index[message.ID] = len(model.messages)
		model.messages = append(model.messages, message)
	}
	model.refresh()
}

func (model *Model) layout() {
	// One line each for the status bar and the composer.
	model.viewport.Width = model.width
	model.viewport.Height = max(model.height-2, 1)
	model.input.Width = max(model.width-len(model.input.Prompt)-1, 1)
	model.refresh()
}

func (model *Model) refresh() {
	atBottom := model.viewport.AtBottom()
	options := model.config.Render
	if model.width > 0 {
		options.Width = model.width
	}

	var builder strings.Builder
	for index, message := range model.messages {
		if index > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(render.Message(message, options))
	}
	model.viewport.SetContent(builder.String())
	if atBottom {
		model.viewport.GotoBottom()
	}
}

// Messages returns the transcript in display order.
func (model Model) Messages() []gitter.Message {
	return model.messages
}

// Closed reports whether the feed has finished, and with what error.
func (model Model) Closed() (bool, error) {
	return model.closed, model.feedErr
}

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return "connecting…"
	}
	return model.viewport.View() + "\n" + model.statusLine() + "\n" + model.input.View()
}

func (model Model) statusLine() string {
	state := model.statusOK.Render("● live")
	if model.closed {
		state = model.statusBad.Render("○ disconnected")
	}
	stats := model.config.Feed.Stats()
	parts := []string{
		state,
		model.config.Title,
		fmt.Sprintf("%d messages", stats.Messages),
	}
	if stats.DecodeErrors > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", stats.DecodeErrors))
	}
	if model.sending > 0 {
		parts = append(parts, "sending…")
	}
	if model.notice != "" {
		parts = append(parts, model.faint.Render(model.notice))
	}
	return strings.Join(parts, "  ")
}
