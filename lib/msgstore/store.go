// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package msgstore keeps a local SQLite history of chat messages so
// they can be listed and searched without a round trip to the server.
//
// Messages are keyed by room and message ID. Storing a message that is
// already present replaces it only when the incoming copy has an equal
// or higher version, so a late-arriving history page never overwrites
// an edit seen on the stream.
package msgstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/gitter/gitter"
	"github.com/bureau-foundation/gitter/lib/bm25"
	"github.com/bureau-foundation/gitter/lib/sqlitepool"
)

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	room_id  TEXT    NOT NULL,
	id       TEXT    NOT NULL,
	sent     INTEGER NOT NULL,
	username TEXT    NOT NULL,
	text     TEXT    NOT NULL,
	version  INTEGER NOT NULL,
	body     TEXT    NOT NULL,
	PRIMARY KEY (room_id, id)
);
CREATE INDEX IF NOT EXISTS messages_room_sent ON messages (room_id, sent);
`

// Config holds the parameters for [Open].
type Config struct {
	// Path is the database file.
	Path string

	// Logger receives store diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Store is a message history database. It is safe for concurrent use.
type Store struct {
	pool   *sqlitepool.Pool
	logger *slog.Logger
}

// Open opens or creates the history database at cfg.Path.
func Open(cfg Config) (*Store, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:   cfg.Path,
		Logger: logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, schema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("msgstore: %w", err)
	}
	return &Store{pool: pool, logger: logger}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.pool.Close()
}

// Put stores messages for roomID in a single transaction.
func (s *Store) Put(ctx context.Context, roomID string, messages ...gitter.Message) error {
	if roomID == "" {
		return fmt.Errorf("msgstore: room ID is required")
	}
	if len(messages) == 0 {
		return nil
	}

	return s.pool.With(ctx, func(conn *sqlite.Conn) (err error) {
		endTransaction, err := sqlitex.ImmediateTransaction(conn)
		if err != nil {
			return fmt.Errorf("msgstore: begin: %w", err)
		}
		defer endTransaction(&err)

		for _, message := range messages {
			if message.ID == "" {
				return fmt.Errorf("msgstore: message without ID in room %s", roomID)
			}
			body, err := json.Marshal(message)
			if err != nil {
				return fmt.Errorf("msgstore: encoding message %s: %w", message.ID, err)
			}
			err = sqlitex.Execute(conn, `
				INSERT INTO messages (room_id, id, sent, username, text, version, body)
				VALUES (?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT (room_id, id) DO UPDATE SET
					sent = excluded.sent,
					username = excluded.username,
					text = excluded.text,
					version = excluded.version,
					body = excluded.body
				WHERE excluded.version >= messages.version`,
				&sqlitex.ExecOptions{Args: []any{
					roomID,
					message.ID,
					message.Sent.UnixNano(),
					message.FromUser.Username,
					message.Text,
					message.Version,
					string(body),
				}})
			if err != nil {
				return fmt.Errorf("msgstore: storing message %s: %w", message.ID, err)
			}
		}
		s.logger.Debug("stored messages", "room_id", roomID, "count", len(messages))
		return nil
	})
}

// Recent returns up to limit of the newest messages in roomID, oldest
// first.
func (s *Store) Recent(ctx context.Context, roomID string, limit int) ([]gitter.Message, error) {
	if limit <= 0 {
		return nil, nil
	}
	return s.query(ctx, `
		SELECT body FROM (
			SELECT body, sent, id FROM messages
			WHERE room_id = ?
			ORDER BY sent DESC, id DESC
			LIMIT ?
		) ORDER BY sent ASC, id ASC`,
		roomID, limit)
}

// Search returns up to limit messages in roomID whose text contains
// query, newest first. Matching is case-insensitive for ASCII.
func (s *Store) Search(ctx context.Context, roomID, query string, limit int) ([]gitter.Message, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("msgstore: search query is empty")
	}
	if limit <= 0 {
		return nil, nil
	}
	return s.query(ctx, `
		SELECT body FROM messages
		WHERE room_id = ? AND text LIKE ? ESCAPE '\'
		ORDER BY sent DESC, id DESC
		LIMIT ?`,
		roomID, "%"+escapeLike(query)+"%", limit)
}

// rankCandidates caps how many matching messages [Store.Rank] scores.
const rankCandidates = 2000

// Rank returns up to limit messages in roomID ordered by BM25
// relevance to query. Candidates are the newest messages containing
// any query term in their text or sender's username. Text counts twice
// as much as the username, and equal scores favor newer messages.
func (s *Store) Rank(ctx context.Context, roomID, query string, limit int) ([]gitter.Message, error) {
	terms := bm25.Tokenize(query)
	if len(terms) == 0 {
		return nil, fmt.Errorf("msgstore: ranked query %q has no searchable terms", query)
	}
	if limit <= 0 {
		return nil, nil
	}

	conditions := make([]string, 0, len(terms))
	args := []any{roomID}
	for _, term := range terms {
		pattern := "%" + escapeLike(term) + "%"
		conditions = append(conditions, `text LIKE ? ESCAPE '\' OR username LIKE ? ESCAPE '\'`)
		args = append(args, pattern, pattern)
	}
	args = append(args, rankCandidates)

	candidates, err := s.query(ctx, `
		SELECT body FROM messages
		WHERE room_id = ? AND (`+strings.Join(conditions, " OR ")+`)
		ORDER BY sent DESC, id DESC
		LIMIT ?`,
		args...)
	if err != nil {
		return nil, err
	}

	documents := make([]bm25.Document, len(candidates))
	for index, message := range candidates {
		documents[index] = bm25.Document{ID: message.ID, Fields: []bm25.Field{
			{Text: message.Text, Weight: 2},
			{Text: message.FromUser.Username, Weight: 1},
		}}
	}
	results := bm25.New(documents).Search(query, limit)

	ranked := make([]gitter.Message, len(results))
	for index, result := range results {
		ranked[index] = candidates[result.Position]
	}
	s.logger.Debug("ranked messages", "room_id", roomID, "candidates", len(candidates), "results", len(ranked))
	return ranked, nil
}

// Count returns the number of stored messages in roomID.
func (s *Store) Count(ctx context.Context, roomID string) (int, error) {
	var count int
	err := s.pool.With(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `SELECT count(*) FROM messages WHERE room_id = ?`,
			&sqlitex.ExecOptions{
				Args: []any{roomID},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					count = stmt.ColumnInt(0)
					return nil
				},
			})
	})
	if err != nil {
		return 0, fmt.Errorf("msgstore: counting room %s: %w", roomID, err)
	}
	return count, nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]gitter.Message, error) {
	var messages []gitter.Message
	err := s.pool.With(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
			Args: args,
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var message gitter.Message
				if err := json.Unmarshal([]byte(stmt.ColumnText(0)), &message); err != nil {
					return fmt.Errorf("decoding stored message: %w", err)
				}
				messages = append(messages, message)
				return nil
			},
		})
	})
	if err != nil {
		return nil, fmt.Errorf("msgstore: %w", err)
	}
	return messages, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}
