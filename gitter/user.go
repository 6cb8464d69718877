// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gitter

import (
	"context"
	"fmt"
)

// CurrentUser returns the account the client's token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var users []User
	if err := c.getJSON(ctx, "/user", nil, &users); err != nil {
		return nil, fmt.Errorf("gitter: current user failed: %w", err)
	}
	if len(users) == 0 {
		return nil, ErrNoCurrentUser
	}

	c.logger.Debug("resolved current user",
		"user_id", users[0].ID,
		"username", users[0].Username,
	)
	return &users[0], nil
}

// Organizations returns the GitHub organizations userID belongs to.
func (c *Client) Organizations(ctx context.Context, userID string) ([]Organization, error) {
	if err := requireID("user ID", userID); err != nil {
		return nil, err
	}
	var organizations []Organization
	if err := c.getJSON(ctx, "/user/"+escape(userID)+"/orgs", nil, &organizations); err != nil {
		return nil, fmt.Errorf("gitter: organizations failed: %w", err)
	}
	return organizations, nil
}

// Repositories returns the GitHub repositories userID can access.
func (c *Client) Repositories(ctx context.Context, userID string) ([]Repository, error) {
	if err := requireID("user ID", userID); err != nil {
		return nil, err
	}
	var repositories []Repository
	if err := c.getJSON(ctx, "/user/"+escape(userID)+"/repos", nil, &repositories); err != nil {
		return nil, fmt.Errorf("gitter: repositories failed: %w", err)
	}
	return repositories, nil
}
