// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package gitter is a client for the Gitter chat service's REST API and
// its real-time message stream.
//
// A [Client] is built from an immutable [ClientConfig] holding the API
// and stream base URLs and, optionally, an access token. There is no
// process-wide current token: [Client.WithToken] returns a new Client and
// leaves the receiver untouched, so authenticated and anonymous clients
// can coexist.
//
// REST operations mirror the service's resources:
//
//   - users: [Client.CurrentUser], [Client.Organizations], [Client.Repositories]
//   - rooms: [Client.Rooms], [Client.JoinRoom]
//   - unread items: [Client.UnreadItems], [Client.MarkRead]
//   - messages: [Client.RoomMessages], [Client.RoomMessage],
//     [Client.SendMessage], [Client.UpdateMessage]
//
// [Client.RealtimeMessages] subscribes to a room's message stream. Each
// call opens its own streaming connection and returns a
// [feed.Subscription] that delivers [Message] values in arrival order
// until it is closed or the connection ends. See lib/feed for the
// framing, keep-alive, and error semantics.
//
// Non-2xx responses surface as [*APIError]. Failures of the streaming
// connection surface as [*feed.TransportError] from the subscription's
// Err, wrapping an [*APIError] when the server refused the stream.
package gitter
