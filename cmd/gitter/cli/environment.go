// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/bureau-foundation/gitter/gitter"
	"github.com/bureau-foundation/gitter/lib/config"
	"github.com/bureau-foundation/gitter/lib/secret"
)

// RequestTimeout bounds REST requests. Streaming requests use a
// separate client without a timeout.
const RequestTimeout = 30 * time.Second

// GlobalFlags are accepted by every command that talks to Gitter.
// Embed it in a command's params struct.
type GlobalFlags struct {
	ConfigFile   string `json:"-" flag:"config" desc:"config file (default $GITTER_CONFIG)"`
	SessionFile  string `json:"-" flag:"session-file" desc:"session file (default $GITTER_SESSION_FILE or the configured path)"`
	IdentityFile string `json:"-" flag:"identity" desc:"age identity file for a sealed session token"`
	TokenFile    string `json:"-" flag:"token" desc:"read an API token from this file (- for stdin), overriding the session"`
	Verbose      bool   `json:"-" flag:"verbose,v" desc:"log debug detail to stderr"`
}

// LogLevel implements Verbosity.
func (g *GlobalFlags) LogLevel() slog.Level {
	if g.Verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// Environment is the resolved configuration and credentials for one
// command invocation. Close releases the token.
type Environment struct {
	Config      *config.Config
	SessionPath string
	// Session is nil when no session file exists.
	Session *Session
	Logger  *slog.Logger

	identityPath string
	tokenFile    string
	token        *secret.Buffer
	tokenLoaded  bool

	tokenFromSession bool
}

// Load resolves the config file and reads the session, if any.
func (g *GlobalFlags) Load(logger *slog.Logger) (*Environment, error) {
	cfg, err := config.Resolve(g.ConfigFile)
	if err != nil {
		return nil, Validation("%v", err)
	}

	env := &Environment{
		Config:       cfg,
		SessionPath:  SessionFilePath(g.SessionFile, cfg.SessionFile),
		Logger:       logger,
		identityPath: g.IdentityFile,
		tokenFile:    g.TokenFile,
	}
	if env.identityPath == "" {
		env.identityPath = cfg.IdentityFile
	}

	session, err := LoadSession(env.SessionPath)
	switch {
	case err == nil:
		env.Session = session
	case errors.Is(err, ErrNoSession):
		logger.Debug("no session", "path", env.SessionPath)
	default:
		return nil, err
	}
	return env, nil
}

// Token returns the API token in effect, or nil when there is none. The
// sources, in order: --token, GITTER_TOKEN, then the session. A session
// recorded for a different API URL than the configured one is not
// used. The buffer belongs to the Environment.
func (e *Environment) Token() (*secret.Buffer, error) {
	if e.tokenLoaded {
		return e.token, nil
	}
	token, err := e.loadToken()
	if err != nil {
		return nil, err
	}
	e.token = token
	e.tokenLoaded = true
	return token, nil
}

func (e *Environment) loadToken() (*secret.Buffer, error) {
	if e.tokenFile != "" {
		token, err := secret.ReadFromPath(e.tokenFile)
		if err != nil {
			return nil, Validation("reading --token %s: %v", e.tokenFile, err)
		}
		return token, nil
	}
	if value := os.Getenv(TokenEnvironmentVariable); value != "" {
		return secret.NewFromString(value)
	}
	if e.Session == nil {
		return nil, nil
	}
	if e.Session.APIURL != "" && e.Session.APIURL != e.Config.APIURL {
		e.Logger.Warn("ignoring session for a different API URL",
			"session_api_url", e.Session.APIURL,
			"api_url", e.Config.APIURL,
		)
		return nil, nil
	}
	e.tokenFromSession = true
	return e.Session.OpenToken(e.identityPath)
}

// Client returns a client for the configured deployment, authenticated
// when a token is available.
func (e *Environment) Client() (*gitter.Client, error) {
	token, err := e.Token()
	if err != nil {
		return nil, err
	}
	return e.newClient(token)
}

// AuthenticatedClient is Client but fails when no token is available.
func (e *Environment) AuthenticatedClient() (*gitter.Client, error) {
	token, err := e.Token()
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, Forbidden("not logged in; run \"gitter login\" or set %s", TokenEnvironmentVariable)
	}
	return e.newClient(token)
}

// ClientWithToken returns a client using token instead of the resolved
// credentials. The caller keeps ownership of token.
func (e *Environment) ClientWithToken(token *secret.Buffer) (*gitter.Client, error) {
	return e.newClient(token)
}

// UserID returns the caller's user ID: from the session when its token
// is in use, otherwise by asking the server.
func (e *Environment) UserID(ctx context.Context, client *gitter.Client) (string, error) {
	if e.Session != nil && e.tokenFromSession {
		return e.Session.UserID, nil
	}
	user, err := client.CurrentUser(ctx)
	if err != nil {
		return "", Classify(err)
	}
	return user.ID, nil
}

func (e *Environment) newClient(token *secret.Buffer) (*gitter.Client, error) {
	client, err := gitter.NewClient(gitter.ClientConfig{
		APIURL:           e.Config.APIURL,
		StreamURL:        e.Config.StreamURL,
		Token:            token,
		HTTPClient:       &http.Client{Timeout: RequestTimeout},
		StreamHTTPClient: &http.Client{},
		Logger:           e.Logger,
	})
	if err != nil {
		return nil, Validation("%v", err)
	}
	return client, nil
}

// Close releases the token buffer.
func (e *Environment) Close() error {
	if e.token == nil {
		return nil
	}
	err := e.token.Close()
	e.token = nil
	return err
}

// String describes where credentials come from, for debug logging.
func (e *Environment) String() string {
	switch {
	case e.tokenFile != "":
		return fmt.Sprintf("token from %s", e.tokenFile)
	case os.Getenv(TokenEnvironmentVariable) != "":
		return "token from " + TokenEnvironmentVariable
	case e.Session != nil && e.Session.Sealed():
		return "sealed session " + e.SessionPath
	case e.Session != nil:
		return "session " + e.SessionPath
	default:
		return "anonymous"
	}
}
