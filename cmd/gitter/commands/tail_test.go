// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/bureau-foundation/gitter/gitter"
	"github.com/bureau-foundation/gitter/lib/config"
	"github.com/bureau-foundation/gitter/lib/feed"
	"github.com/bureau-foundation/gitter/lib/msgstore"
)

// scriptedStream is a finished stream with queued messages and reports.
type scriptedStream struct {
	messages     chan gitter.Message
	decodeErrors chan *feed.DecodeError
	done         chan struct{}
	err          error
}

func newScriptedStream(err error, messages ...gitter.Message) *scriptedStream {
	stream := &scriptedStream{
		messages:     make(chan gitter.Message, len(messages)),
		decodeErrors: make(chan *feed.DecodeError, 1),
		done:         make(chan struct{}),
		err:          err,
	}
	for _, message := range messages {
		stream.messages <- message
	}
	stream.decodeErrors <- &feed.DecodeError{Offset: 2, Err: errors.New("bad")}
	close(stream.messages)
	close(stream.decodeErrors)
	close(stream.done)
	return stream
}

func (s *scriptedStream) Messages() <-chan gitter.Message { return s.messages }
func (s *scriptedStream) DecodeErrors() <-chan *feed.DecodeError { return s.decodeErrors }
func (s *scriptedStream) Done() <-chan struct{} { return s.done }
func (s *scriptedStream) Err() error { return s.err }
func (s *scriptedStream) Wait() error {
	<-s.done
	return s.err
}
func (s *scriptedStream) Stats() feed.Stats { return feed.Stats{} }
func (s *scriptedStream) Close() error { return nil }

func discardLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func TestConsume(t *testing.T) {
	transport := &feed.TransportError{Op: "read", Err: errors.New("reset")}
	stream := newScriptedStream(transport, gitter.Message{ID: "a"}, gitter.Message{ID: "b"})

	var delivered []string
	err := consume(stream, func(message gitter.Message) error {
		delivered = append(delivered, message.ID)
		return nil
	}, discardLogger())
	if !errors.Is(err, transport) {
		t.Errorf("consume err = %v, want the stream's error", err)
	}
	if len(delivered) != 2 || delivered[0] != "a" || delivered[1] != "b" {
		t.Errorf("delivered = %v", delivered)
	}
}

func TestConsume_DeliverErrorStops(t *testing.T) {
	stream := newScriptedStream(nil, gitter.Message{ID: "a"}, gitter.Message{ID: "b"})
	failure := errors.New("disk full")

	calls := 0
	err := consume(stream, func(gitter.Message) error {
		calls++
		return failure
	}, discardLogger())
	if !errors.Is(err, failure) || calls != 1 {
		t.Errorf("consume = %v after %d calls, want the deliver error after 1", err, calls)
	}
}

func TestFeedFlags_Options(t *testing.T) {
	cfg := config.Default()
	cfg.Feed.IdleTimeout = "45s"

	options, err := FeedFlags{}.options(cfg, discardLogger())
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if options.Policy != feed.DecodeSkip || options.IdleTimeout != 45*time.Second {
		t.Errorf("config defaults: policy %v, idle %v", options.Policy, options.IdleTimeout)
	}

	options, err = FeedFlags{FatalDecode: true, IdleTimeout: time.Minute}.options(cfg, discardLogger())
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if options.Policy != feed.DecodeFatal || options.IdleTimeout != time.Minute {
		t.Errorf("flags: policy %v, idle %v", options.Policy, options.IdleTimeout)
	}

	if _, err := (FeedFlags{IdleTimeout: -time.Second}).options(cfg, discardLogger()); err == nil {
		t.Error("negative idle timeout should be rejected")
	}
}

func TestCachingFeed(t *testing.T) {
	store, err := msgstore.Open(msgstore.Config{Path: filepath.Join(t.TempDir(), "cache.db")})
	if err != nil {
		t.Fatalf("msgstore.Open: %v", err)
	}
	defer store.Close()

	sent := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	source := newScriptedStream(nil,
		gitter.Message{ID: "a", Text: "one", Sent: sent},
		gitter.Message{ID: "b", Text: "two", Sent: sent.Add(time.Second)},
	)
	ctx := context.Background()
	caching := newCachingFeed(ctx, source, store, gitterRoom, discardLogger())

	var passed []string
	for message := range caching.Messages() {
		passed = append(passed, message.ID)
	}
	if len(passed) != 2 {
		t.Fatalf("passed %v, want both messages", passed)
	}

	count, err := store.Count(ctx, gitterRoom)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 2 {
		t.Errorf("cached %d messages, want 2", count)
	}

	if err := caching.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := caching.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
