package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/keypad/pkg/ports"
	"github.com/aretw0/keypad/pkg/runner"
)

// ListSessions prints one session ID per line.
func ListSessions(ctx context.Context, engine ports.SessionEngine, out io.Writer) error {
	ids, err := engine.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(ids) == 0 {
		printSystemMessage(out, "No sessions found.")
		return nil
	}
	for _, id := range ids {
		fmt.Fprintln(out, id)
	}
	return nil
}

// InspectSession prints the stored display of a session.
func InspectSession(ctx context.Context, engine ports.SessionEngine, sessionID string, jsonOut bool, out io.Writer) error {
	state, err := engine.Load(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	return printFrame(out, runner.NewFrame(sessionID, state), jsonOut)
}

// RemoveSession deletes a stored session.
func RemoveSession(ctx context.Context, engine ports.SessionEngine, sessionID string, out io.Writer) error {
	if err := engine.Reset(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to remove session %s: %w", sessionID, err)
	}
	printSystemMessage(out, "Session '%s' removed.", sessionID)
	return nil
}
