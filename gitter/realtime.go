// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gitter

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/bureau-foundation/gitter/lib/feed"
	"github.com/bureau-foundation/gitter/lib/netutil"
)

// RealtimeMessages subscribes to roomID's message stream. The returned
// subscription opens its own streaming connection and delivers messages
// until it is closed, ctx is cancelled, or the stream ends.
//
// options may be the zero value. Its Logger defaults to the client's
// logger annotated with the room ID.
func (c *Client) RealtimeMessages(ctx context.Context, roomID string, options feed.Options[Message]) (*feed.Subscription[Message], error) {
	if err := requireID("room ID", roomID); err != nil {
		return nil, err
	}
	if options.Logger == nil {
		options.Logger = c.logger.With("room_id", roomID)
	}
	return feed.Subscribe(ctx, c.streamOpener(messagesPath(roomID)), options), nil
}

// streamOpener returns a feed.Opener for a streaming GET of path.
func (c *Client) streamOpener(path string) feed.Opener {
	return func(ctx context.Context) (io.ReadCloser, error) {
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.streamURL+path, nil)
		if err != nil {
			return nil, fmt.Errorf("gitter: failed to create stream request: %w", err)
		}
		c.setHeaders(request)

		response, err := c.streamHTTPClient.Do(request)
		if err != nil {
			return nil, fmt.Errorf("gitter: stream request to %s failed: %w", path, err)
		}
		if response.StatusCode < 200 || response.StatusCode >= 300 {
			defer response.Body.Close()
			return nil, newAPIError(response.StatusCode, []byte(netutil.ErrorBody(response.Body)))
		}

		c.logger.Debug("stream connected", "path", path)
		return response.Body, nil
	}
}
