// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package feed turns a long-lived HTTP response body carrying
// newline-delimited JSON into a channel of decoded values.
//
// The pipeline has four stages, all run by one goroutine per
// subscription:
//
//   - [RecordReader] reassembles newline-terminated records from reads
//     that may split them at any byte.
//   - [IsKeepAlive] drops the blank records servers send as heartbeats.
//   - A [Decoder] turns each remaining record into a value. A record
//     that fails to decode yields a [*DecodeError] scoped to that record.
//   - [Subscribe] owns the connection: it opens it through an [Opener],
//     runs the read loop, forwards values in arrival order, and closes
//     the connection exactly once however the loop ends.
//
// Ending a subscription, either with [Subscription.Close] or by
// cancelling the context passed to Subscribe, closes the connection from
// the cancelling goroutine. A Read blocked on the network returns at
// once, so teardown never waits for the server to send another byte.
//
// Termination is reported through [Subscription.Err]:
//
//   - nil after cancellation or a clean end of stream
//   - [*TransportError] when the connection could not be opened, a read
//     failed, a record overran the size limit, or the idle watchdog fired
//   - [*DecodeError] when a record failed to decode under [DecodeFatal]
//
// Under the default [DecodeSkip] policy undecodable records are skipped
// and reported on [Subscription.DecodeErrors] without ending the stream.
//
// A subscription is a conduit, not a queue. There is no reconnect, no
// resume, and the only buffering is the channel capacity in [Options].
package feed
