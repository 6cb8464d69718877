// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/bureau-foundation/gitter/cmd/gitter/cli"
	"github.com/bureau-foundation/gitter/gitter"
	"github.com/bureau-foundation/gitter/lib/sealed"
	"github.com/bureau-foundation/gitter/lib/secret"
)

type loginParams struct {
	cli.GlobalFlags
	cli.JSONOutput
	Recipients []string `json:"-" flag:"recipient" desc:"seal the saved token to this age recipient (repeatable)"`
}

func loginCommand(streams cli.IO) *cli.Command {
	var params loginParams

	return &cli.Command{
		Name:    "login",
		Summary: "Verify a token and save the session",
		Description: `Verify a Gitter API token and save it to the session file.

The token is read from --token, $GITTER_TOKEN, or prompted for. With
--recipient the saved token is encrypted to the given age recipients
and later commands need --identity (or identity_file in the config)
to use it.`,
		Usage: "gitter login [flags]",
		Examples: []cli.Example{
			{Description: "Log in interactively", Command: "gitter login"},
			{Description: "Log in with a sealed token", Command: "gitter login --token ~/.gitter-token --recipient age1..."},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := requireArgs(args, 0, 0, "gitter login [flags]"); err != nil {
				return err
			}
			for _, recipient := range params.Recipients {
				if err := sealed.ParsePublicKey(recipient); err != nil {
					return cli.Validation("--recipient %q: %v", recipient, err)
				}
			}
			return withEnvironment(&params.GlobalFlags, logger, func(env *cli.Environment) error {
				token, release, err := loginToken(env, &params.GlobalFlags, streams)
				if err != nil {
					return err
				}
				defer release()

				client, err := env.ClientWithToken(token)
				if err != nil {
					return err
				}
				user, err := client.CurrentUser(ctx)
				if err != nil {
					if gitter.IsUnauthorized(err) {
						return cli.Forbidden("token rejected by %s", env.Config.APIURL)
					}
					return cli.Classify(err)
				}

				session := &cli.Session{
					UserID:    user.ID,
					Username:  user.Username,
					APIURL:    env.Config.APIURL,
					StreamURL: env.Config.StreamURL,
				}
				if len(params.Recipients) > 0 {
					session.SealedToken, err = sealed.Seal(token.Bytes(), params.Recipients)
					if err != nil {
						return cli.Internal("sealing token: %v", err)
					}
				} else {
					session.Token = token.String()
				}
				if err := cli.SaveSession(session, env.SessionPath); err != nil {
					return err
				}
				logger.Info("session saved",
					"path", env.SessionPath,
					"user_id", user.ID,
					"sealed", session.Sealed(),
				)

				if done, err := params.EmitJSON(streams.Out, user); done {
					return err
				}
				fmt.Fprintf(streams.Out, "Logged in as @%s\n", user.Username)
				return nil
			})
		},
	}
}

// loginToken returns the token to verify: an explicit --token or
// $GITTER_TOKEN, otherwise one read from the user. The stored session
// is never reused. release closes a prompted token.
func loginToken(env *cli.Environment, flags *cli.GlobalFlags, streams cli.IO) (*secret.Buffer, func(), error) {
	if flags.TokenFile != "" || os.Getenv(cli.TokenEnvironmentVariable) != "" {
		token, err := env.Token()
		if err != nil {
			return nil, nil, err
		}
		return token, func() {}, nil
	}
	token, err := cli.ReadSecret(streams, "Gitter token: ")
	if err != nil {
		return nil, nil, cli.Validation("reading token: %v", err)
	}
	return token, func() { token.Close() }, nil
}

type logoutParams struct {
	cli.GlobalFlags
}

func logoutCommand(streams cli.IO) *cli.Command {
	var params logoutParams

	return &cli.Command{
		Name:    "logout",
		Summary: "Remove the saved session",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := requireArgs(args, 0, 0, "gitter logout [flags]"); err != nil {
				return err
			}
			return withEnvironment(&params.GlobalFlags, logger, func(env *cli.Environment) error {
				removed, err := cli.RemoveSession(env.SessionPath)
				if err != nil {
					return err
				}
				if !removed {
					fmt.Fprintf(streams.Out, "No session at %s\n", env.SessionPath)
					return nil
				}
				fmt.Fprintf(streams.Out, "Removed %s\n", env.SessionPath)
				return nil
			})
		},
	}
}

type whoamiParams struct {
	cli.GlobalFlags
	cli.JSONOutput
}

func whoamiCommand(streams cli.IO) *cli.Command {
	var params whoamiParams

	return &cli.Command{
		Name:    "whoami",
		Summary: "Show the account the token belongs to",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := requireArgs(args, 0, 0, "gitter whoami [flags]"); err != nil {
				return err
			}
			return withEnvironment(&params.GlobalFlags, logger, func(env *cli.Environment) error {
				client, err := env.AuthenticatedClient()
				if err != nil {
					return err
				}
				user, err := client.CurrentUser(ctx)
				if err != nil {
					return cli.Classify(err)
				}
				if done, err := params.EmitJSON(streams.Out, user); done {
					return err
				}
				fmt.Fprintf(streams.Out, "@%s (%s)\n", user.Username, user.ID)
				if user.DisplayName != "" && user.DisplayName != user.Username {
					fmt.Fprintf(streams.Out, "  %s\n", user.DisplayName)
				}
				return nil
			})
		},
	}
}
