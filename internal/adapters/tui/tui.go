// Package tui is the terminal chat front-end for a single conversation.
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/PabloGalante/shopassist/internal/domain"
)

// Run opens the chat screen for the session and blocks until the user quits
// or ctx is cancelled.
func Run(ctx context.Context, conv Conversation, id domain.SessionID) error {
	tl, events, cancel, err := conv.Watch(ctx, id)
	if err != nil {
		return fmt.Errorf("watching session: %w", err)
	}
	defer cancel()

	program := tea.NewProgram(
		NewModel(ctx, conv, tl, events),
		tea.WithAltScreen(),
	)

	done := make(chan struct{})
	defer close(done)

	// Handle context cancellation
	go func() {
		select {
		case <-ctx.Done():
			program.Quit()
		case <-done:
		}
	}()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
