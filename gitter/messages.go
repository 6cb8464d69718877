// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gitter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// RoomMessages returns a page of roomID's history, oldest first.
func (c *Client) RoomMessages(ctx context.Context, roomID string, options MessagesOptions) ([]Message, error) {
	if err := requireID("room ID", roomID); err != nil {
		return nil, err
	}
	if options.Limit < 0 || options.Skip < 0 {
		return nil, fmt.Errorf("gitter: limit and skip must not be negative")
	}

	limit := options.Limit
	if limit == 0 {
		limit = DefaultMessagesLimit
	}
	query := url.Values{"limit": {strconv.Itoa(limit)}}
	if options.BeforeID != "" {
		query.Set("beforeId", options.BeforeID)
	}
	if options.AfterID != "" {
		query.Set("afterId", options.AfterID)
	}
	if options.Skip > 0 {
		query.Set("skip", strconv.Itoa(options.Skip))
	}

	var messages []Message
	if err := c.getJSON(ctx, messagesPath(roomID), query, &messages); err != nil {
		return nil, fmt.Errorf("gitter: room messages failed: %w", err)
	}
	return messages, nil
}

// RoomMessage returns a single message.
func (c *Client) RoomMessage(ctx context.Context, roomID, messageID string) (*Message, error) {
	if err := requireID("room ID", roomID); err != nil {
		return nil, err
	}
	if err := requireID("message ID", messageID); err != nil {
		return nil, err
	}

	var message Message
	if err := c.getJSON(ctx, messagesPath(roomID)+"/"+escape(messageID), nil, &message); err != nil {
		return nil, fmt.Errorf("gitter: room message failed: %w", err)
	}
	return &message, nil
}

// SendMessage posts text to roomID and returns the created message.
func (c *Client) SendMessage(ctx context.Context, roomID, text string) (*Message, error) {
	if err := requireID("room ID", roomID); err != nil {
		return nil, err
	}
	if err := requireID("message text", text); err != nil {
		return nil, err
	}

	var message Message
	if err := c.sendForm(ctx, http.MethodPost, messagesPath(roomID), url.Values{"text": {text}}, &message); err != nil {
		return nil, fmt.Errorf("gitter: send message failed: %w", err)
	}

	c.logger.Info("sent message",
		"room_id", roomID,
		"message_id", message.ID,
	)
	return &message, nil
}

// UpdateMessage replaces the text of messageID and returns the edited
// message.
func (c *Client) UpdateMessage(ctx context.Context, roomID, messageID, text string) (*Message, error) {
	if err := requireID("room ID", roomID); err != nil {
		return nil, err
	}
	if err := requireID("message ID", messageID); err != nil {
		return nil, err
	}

	var message Message
	path := messagesPath(roomID) + "/" + escape(messageID)
	if err := c.sendForm(ctx, http.MethodPut, path, url.Values{"text": {text}}, &message); err != nil {
		return nil, fmt.Errorf("gitter: update message failed: %w", err)
	}

	c.logger.Info("updated message",
		"room_id", roomID,
		"message_id", messageID,
	)
	return &message, nil
}

func messagesPath(roomID string) string {
	return "/rooms/" + escape(roomID) + "/chatMessages"
}
