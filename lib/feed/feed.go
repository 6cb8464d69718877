// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package feed

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/gitter/lib/clock"
	"github.com/bureau-foundation/gitter/lib/netutil"
)

// Opener establishes the connection for one subscription. The returned
// body belongs to the subscription, which closes it exactly once.
// Opener is called on the subscription's goroutine and must honour ctx.
type Opener func(ctx context.Context) (io.ReadCloser, error)

// Options configures a subscription. The zero value decodes JSON into T
// with the skip policy and no idle timeout.
type Options[T any] struct {
	// Decoder converts records to values. Defaults to JSONDecoder[T].
	Decoder Decoder[T]

	// Policy selects skip-or-fail handling of undecodable records.
	Policy DecodePolicy

	// MaxRecordSize bounds a single record. Defaults to
	// DefaultMaxRecordSize.
	MaxRecordSize int

	// IdleTimeout ends the subscription with ErrIdle when no bytes
	// arrive for this long while the loop is reading. Time blocked
	// delivering to a slow consumer does not count. Zero disables the
	// watchdog.
	IdleTimeout time.Duration

	// Buffer is the capacity of the Messages channel. Zero makes every
	// delivery a hand-off to the consumer.
	Buffer int

	// DecodeErrorBuffer is the capacity of the DecodeErrors channel.
	// Defaults to 16. Reports that do not fit are dropped and logged.
	DecodeErrorBuffer int

	// Clock drives the idle watchdog. Defaults to clock.Real().
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

const defaultDecodeErrorBuffer = 16

// Stats counts what a subscription has seen so far.
type Stats struct {
	Records      int64
	KeepAlives   int64
	Messages     int64
	DecodeErrors int64
	// DroppedReports counts decode errors that did not fit in the
	// DecodeErrors channel.
	DroppedReports int64
	// DiscardedBytes counts trailing bytes dropped at end of stream.
	DiscardedBytes int64
}

// Subscription is one running pipeline. Values arrive on Messages in
// the order their records arrived; the channel is closed when the
// pipeline ends, after which Err reports why.
type Subscription[T any] struct {
	messages     chan T
	decodeErrors chan *DecodeError
	done         chan struct{}
	cancel       context.CancelFunc
	logger       *slog.Logger

	// err is written once before done is closed.
	err error

	records        atomic.Int64
	keepAlives     atomic.Int64
	delivered      atomic.Int64
	decodeFailures atomic.Int64
	droppedReports atomic.Int64
	discardedBytes atomic.Int64
}

// Subscribe starts a pipeline over the connection produced by opener
// and returns immediately. Nothing is opened or read before Subscribe
// is called, and each call opens its own connection.
//
// The pipeline runs until ctx is cancelled, Close is called, the stream
// ends, or a fatal error occurs.
func Subscribe[T any](ctx context.Context, opener Opener, options Options[T]) *Subscription[T] {
	if options.Decoder == nil {
		options.Decoder = JSONDecoder[T]()
	}
	if options.DecodeErrorBuffer <= 0 {
		options.DecodeErrorBuffer = defaultDecodeErrorBuffer
	}
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(ctx)
	subscription := &Subscription[T]{
		messages:     make(chan T, max(options.Buffer, 0)),
		decodeErrors: make(chan *DecodeError, options.DecodeErrorBuffer),
		done:         make(chan struct{}),
		cancel:       cancel,
		logger:       options.Logger,
	}

	go func() {
		err := subscription.run(ctx, opener, options)
		subscription.err = err
		cancel()
		close(subscription.messages)
		close(subscription.decodeErrors)
		close(subscription.done)
	}()

	return subscription
}

// Messages returns the channel of decoded values.
func (s *Subscription[T]) Messages() <-chan T { return s.messages }

// DecodeErrors returns the channel on which skipped records are
// reported under DecodeSkip. It is closed with Messages.
func (s *Subscription[T]) DecodeErrors() <-chan *DecodeError { return s.decodeErrors }

// Done is closed once the pipeline has ended and its connection has
// been closed.
func (s *Subscription[T]) Done() <-chan struct{} { return s.done }

// Err reports why the pipeline ended. It is nil while the pipeline is
// running, after cancellation, and after a clean end of stream.
func (s *Subscription[T]) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// Wait blocks until the pipeline ends and returns Err.
func (s *Subscription[T]) Wait() error {
	<-s.done
	return s.err
}

// Close cancels the subscription and waits for its connection to be
// closed. It is safe to call more than once and from any goroutine.
func (s *Subscription[T]) Close() error {
	s.cancel()
	<-s.done
	return nil
}

// Stats returns a snapshot of the subscription's counters.
func (s *Subscription[T]) Stats() Stats {
	return Stats{
		Records:        s.records.Load(),
		KeepAlives:     s.keepAlives.Load(),
		Messages:       s.delivered.Load(),
		DecodeErrors:   s.decodeFailures.Load(),
		DroppedReports: s.droppedReports.Load(),
		DiscardedBytes: s.discardedBytes.Load(),
	}
}

// run is the read loop. Its return value becomes Err.
func (s *Subscription[T]) run(ctx context.Context, opener Opener, options Options[T]) error {
	body, err := opener(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		s.logger.Warn("feed open failed", "error", err)
		return &TransportError{Op: "open", Err: err}
	}
	if body == nil {
		return &TransportError{Op: "open", Err: errors.New("opener returned no body")}
	}

	connection := &connection{body: body}
	defer connection.close()
	stopCancelWatch := context.AfterFunc(ctx, connection.close)
	defer stopCancelWatch()

	var source io.Reader = body
	var idle *watchdog
	if options.IdleTimeout > 0 {
		idle = startWatchdog(options.Clock, options.IdleTimeout, connection.close)
		defer idle.stop()
		source = &activityReader{source: body, watchdog: idle}
	}

	s.logger.Debug("feed opened")
	reader := NewRecordReader(source, options.MaxRecordSize)

	for {
		record, err := reader.Next()
		if err != nil {
			s.discardedBytes.Store(reader.Discarded())
			return s.classify(ctx, idle, err, reader.Discarded())
		}

		offset := s.records.Add(1)
		if IsKeepAlive(record) {
			s.keepAlives.Add(1)
			continue
		}

		value, err := options.Decoder(record)
		if err != nil {
			s.decodeFailures.Add(1)
			decodeErr := &DecodeError{Offset: offset, Record: bytes.Clone(record), Err: err}
			if options.Policy == DecodeFatal {
				s.logger.Warn("feed record undecodable, ending stream", "offset", offset, "error", err)
				return decodeErr
			}
			s.logger.Debug("feed record undecodable, skipped", "offset", offset, "error", err)
			s.report(decodeErr)
			continue
		}

		// Time spent waiting on the consumer is not server silence.
		if idle != nil {
			idle.pause()
		}
		select {
		case s.messages <- value:
			s.delivered.Add(1)
		case <-ctx.Done():
			return nil
		}
		if idle != nil {
			idle.kick()
		}
	}
}

// classify maps the error that ended the read loop to the value of Err.
func (s *Subscription[T]) classify(ctx context.Context, idle *watchdog, err error, discarded int64) error {
	if idle != nil && idle.fired() {
		s.logger.Warn("feed idle, closing stream")
		return &TransportError{Op: "idle", Err: ErrIdle}
	}
	if ctx.Err() != nil {
		s.logger.Debug("feed cancelled")
		return nil
	}
	if errors.Is(err, io.EOF) {
		if discarded > 0 {
			s.logger.Debug("feed ended with unterminated record", "discarded_bytes", discarded)
		}
		s.logger.Debug("feed ended")
		return nil
	}
	if netutil.IsExpectedCloseError(err) {
		s.logger.Info("feed connection closed by peer", "error", err)
	} else {
		s.logger.Warn("feed read failed", "error", err)
	}
	return &TransportError{Op: "read", Err: err}
}

// report offers decodeErr to the DecodeErrors channel without blocking
// the read loop.
func (s *Subscription[T]) report(decodeErr *DecodeError) {
	select {
	case s.decodeErrors <- decodeErr:
	default:
		s.droppedReports.Add(1)
		s.logger.Warn("feed decode report dropped, consumer not draining", "offset", decodeErr.Offset)
	}
}

// connection closes its body at most once, from whichever goroutine
// gets there first.
type connection struct {
	body io.Closer
	once sync.Once
}

func (c *connection) close() {
	c.once.Do(func() { c.body.Close() })
}

// activityReader feeds the idle watchdog on every read that returns
// bytes.
type activityReader struct {
	source   io.Reader
	watchdog *watchdog
}

func (r *activityReader) Read(p []byte) (int, error) {
	n, err := r.source.Read(p)
	if n > 0 {
		r.watchdog.kick()
	}
	return n, err
}
