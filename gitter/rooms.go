// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gitter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Rooms returns the rooms the user has joined.
func (c *Client) Rooms(ctx context.Context) ([]Room, error) {
	var rooms []Room
	if err := c.getJSON(ctx, "/rooms", nil, &rooms); err != nil {
		return nil, fmt.Errorf("gitter: rooms failed: %w", err)
	}
	return rooms, nil
}

// JoinRoom joins the room with the given URI (for example
// "gitterhq/sandbox") and returns it.
func (c *Client) JoinRoom(ctx context.Context, uri string) (*Room, error) {
	uri = strings.Trim(strings.TrimSpace(uri), "/")
	if err := requireID("room URI", uri); err != nil {
		return nil, err
	}

	var room Room
	if err := c.sendForm(ctx, http.MethodPost, "/rooms", url.Values{"uri": {uri}}, &room); err != nil {
		return nil, fmt.Errorf("gitter: join room %q failed: %w", uri, err)
	}

	c.logger.Info("joined room",
		"room_id", room.ID,
		"uri", uri,
	)
	return &room, nil
}

// UnreadItems returns the unread message IDs of roomID for userID.
func (c *Client) UnreadItems(ctx context.Context, userID, roomID string) (*UnreadItems, error) {
	path, err := unreadItemsPath(userID, roomID)
	if err != nil {
		return nil, err
	}
	var items UnreadItems
	if err := c.getJSON(ctx, path, nil, &items); err != nil {
		return nil, fmt.Errorf("gitter: unread items failed: %w", err)
	}
	return &items, nil
}

// MarkRead marks messageIDs in roomID as read for userID.
func (c *Client) MarkRead(ctx context.Context, userID, roomID string, messageIDs []string) error {
	path, err := unreadItemsPath(userID, roomID)
	if err != nil {
		return err
	}
	if len(messageIDs) == 0 {
		return nil
	}

	request := struct {
		Chat []string `json:"chat"`
	}{Chat: messageIDs}
	if err := c.sendJSON(ctx, http.MethodPost, path, request, nil); err != nil {
		return fmt.Errorf("gitter: mark read failed: %w", err)
	}

	c.logger.Debug("marked messages read",
		"room_id", roomID,
		"count", len(messageIDs),
	)
	return nil
}

func unreadItemsPath(userID, roomID string) (string, error) {
	if err := requireID("user ID", userID); err != nil {
		return "", err
	}
	if err := requireID("room ID", roomID); err != nil {
		return "", err
	}
	return "/user/" + escape(userID) + "/rooms/" + escape(roomID) + "/unreadItems", nil
}
