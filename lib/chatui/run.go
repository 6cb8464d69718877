// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chatui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the room view until the user quits or ctx is cancelled,
// then closes the feed. It returns the feed's terminal error, if any.
func Run(ctx context.Context, config Config) error {
	if config.Feed == nil {
		return fmt.Errorf("chatui: Feed is required")
	}
	defer config.Feed.Close()

	program := tea.NewProgram(NewModel(config), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := program.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("chatui: %w", err)
	}

	if model, ok := final.(Model); ok {
		if _, feedErr := model.Closed(); feedErr != nil {
			return feedErr
		}
	}
	return nil
}
