// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/gitter/lib/sealed"
	"github.com/bureau-foundation/gitter/lib/secret"
)

const (
	// SessionEnvironmentVariable overrides the configured session file.
	SessionEnvironmentVariable = "GITTER_SESSION_FILE"

	// TokenEnvironmentVariable supplies a token that takes precedence
	// over the stored session.
	TokenEnvironmentVariable = "GITTER_TOKEN"
)

// ErrNoSession is returned by LoadSession when the file does not exist.
var ErrNoSession = errors.New("not logged in")

// Session is the state written by "gitter login". Exactly one of Token
// and SealedToken is set: SealedToken holds the token encrypted to one
// or more age recipients, opened at use with the user's identity file.
type Session struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	APIURL      string `json:"api_url"`
	StreamURL   string `json:"stream_url"`
	Token       string `json:"token,omitempty"`
	SealedToken string `json:"sealed_token,omitempty"`
}

// Sealed reports whether the token is stored encrypted.
func (s *Session) Sealed() bool { return s.SealedToken != "" }

// OpenToken returns the session token in a secret buffer. A sealed
// token is decrypted with the age identity file at identityPath. The
// caller must close the returned buffer.
func (s *Session) OpenToken(identityPath string) (*secret.Buffer, error) {
	if !s.Sealed() {
		return secret.NewFromString(s.Token)
	}
	if identityPath == "" {
		return nil, Validation("session token is sealed; pass --identity or set identity_file in the config")
	}
	identity, err := secret.ReadFromPath(identityPath)
	if err != nil {
		return nil, fmt.Errorf("reading identity %s: %w", identityPath, err)
	}
	defer identity.Close()

	token, err := sealed.Open(s.SealedToken, identity)
	if err != nil {
		return nil, Forbidden("cannot open sealed session token with %s: %v", identityPath, err)
	}
	return token, nil
}

// SessionFilePath picks the session file: the flag value, then
// GITTER_SESSION_FILE, then the configured path.
func SessionFilePath(flagValue, configured string) string {
	if flagValue != "" {
		return flagValue
	}
	if envPath := os.Getenv(SessionEnvironmentVariable); envPath != "" {
		return envPath
	}
	return configured
}

// LoadSession reads the session at path. A missing file yields an
// error wrapping ErrNoSession.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: no session at %s; run \"gitter login\" first", ErrNoSession, path)
		}
		return nil, fmt.Errorf("reading session file %s: %w", path, err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("parsing session file %s: %w", path, err)
	}
	if session.UserID == "" {
		return nil, fmt.Errorf("session file %s has no user_id", path)
	}
	if session.Token == "" && session.SealedToken == "" {
		return nil, fmt.Errorf("session file %s has no token", path)
	}
	if session.Token != "" && session.SealedToken != "" {
		return nil, fmt.Errorf("session file %s has both token and sealed_token", path)
	}
	return &session, nil
}

// SaveSession writes session to path with mode 0600, creating the
// parent directory with mode 0700. The file is replaced atomically.
func SaveSession(session *Session, path string) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	data = append(data, '\n')

	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0700); err != nil {
		return fmt.Errorf("creating session directory %s: %w", directory, err)
	}

	temporary, err := os.CreateTemp(directory, ".session-*.json")
	if err != nil {
		return fmt.Errorf("creating session file in %s: %w", directory, err)
	}
	defer os.Remove(temporary.Name())

	if err := temporary.Chmod(0600); err != nil {
		temporary.Close()
		return fmt.Errorf("setting session file mode: %w", err)
	}
	if _, err := temporary.Write(data); err != nil {
		temporary.Close()
		return fmt.Errorf("writing session file: %w", err)
	}
	if err := temporary.Close(); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	if err := os.Rename(temporary.Name(), path); err != nil {
		return fmt.Errorf("replacing session file %s: %w", path, err)
	}
	return nil
}

// RemoveSession deletes the session at path. It reports whether a file
// was removed.
func RemoveSession(path string) (bool, error) {
	err := os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("removing session file %s: %w", path, err)
	}
	return true, nil
}
