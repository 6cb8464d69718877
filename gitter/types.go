// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gitter

import "time"

// User is a Gitter account.
type User struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	DisplayName     string `json:"displayName"`
	URL             string `json:"url,omitempty"`
	AvatarURLSmall  string `json:"avatarUrlSmall,omitempty"`
	AvatarURLMedium string `json:"avatarUrlMedium,omitempty"`
	Version         int    `json:"v,omitempty"`
}

// Organization is a GitHub organization the user belongs to.
type Organization struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
	// Room is the organization's room, if one exists.
	Room *Room `json:"room,omitempty"`
}

// Repository is a GitHub repository the user can access.
type Repository struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URI         string `json:"uri"`
	Description string `json:"description,omitempty"`
	Private     bool   `json:"private"`
	// Exists is true when the repository already has a room.
	Exists    bool   `json:"exists"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Room      *Room  `json:"room,omitempty"`
}

// Room is a chat room, either a channel or a one-to-one conversation.
type Room struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Topic          string     `json:"topic,omitempty"`
	URI            string     `json:"uri,omitempty"`
	OneToOne       bool       `json:"oneToOne"`
	User           *User      `json:"user,omitempty"`
	UserCount      int        `json:"userCount"`
	UnreadItems    int        `json:"unreadItems"`
	Mentions       int        `json:"mentions"`
	LastAccessTime *time.Time `json:"lastAccessTime,omitempty"`
	Favourite      int        `json:"favourite,omitempty"`
	Lurk           bool       `json:"lurk"`
	URL            string     `json:"url,omitempty"`
	GitHubType     string     `json:"githubType,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
	Version        int        `json:"v,omitempty"`
}

// DisplayName returns the name shown for the room: the URI for channels,
// the other participant's username for one-to-one rooms.
func (r Room) DisplayName() string {
	if r.OneToOne && r.User != nil && r.User.Username != "" {
		return "@" + r.User.Username
	}
	if r.URI != "" {
		return r.URI
	}
	return r.Name
}

// Message is a chat message.
type Message struct {
	ID       string     `json:"id"`
	Text     string     `json:"text"`
	HTML     string     `json:"html,omitempty"`
	Sent     time.Time  `json:"sent"`
	EditedAt *time.Time `json:"editedAt,omitempty"`
	FromUser User       `json:"fromUser"`
	Unread   bool       `json:"unread"`
	ReadBy   int        `json:"readBy"`
	URLs     []Link     `json:"urls,omitempty"`
	Mentions []Mention  `json:"mentions,omitempty"`
	Issues   []Issue    `json:"issues,omitempty"`
	Version  int        `json:"v,omitempty"`
}

// Edited reports whether the message has been changed since it was sent.
func (m Message) Edited() bool {
	return m.EditedAt != nil && !m.EditedAt.IsZero()
}

// Link is a URL found in a message.
type Link struct {
	URL string `json:"url"`
}

// Mention is an @-mention found in a message.
type Mention struct {
	ScreenName string `json:"screenName"`
	UserID     string `json:"userId,omitempty"`
}

// Issue is a #issue reference found in a message.
type Issue struct {
	Number string `json:"number"`
}

// UnreadItems lists the unread message IDs of a room.
type UnreadItems struct {
	Chat    []string `json:"chat"`
	Mention []string `json:"mention"`
}

// MessagesOptions selects a page of room history. It is zero-valued for
// the latest DefaultMessagesLimit messages.
type MessagesOptions struct {
	// Limit defaults to DefaultMessagesLimit.
	Limit int
	// BeforeID returns messages sent before this message.
	BeforeID string
	// AfterID returns messages sent after this message.
	AfterID string
	// Skip skips this many messages from the newest end.
	Skip int
}

// DefaultMessagesLimit is the page size used when MessagesOptions.Limit
// is zero.
const DefaultMessagesLimit = 50
