package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/keypad"
	"github.com/aretw0/keypad/pkg/domain"
	"github.com/aretw0/keypad/pkg/runner"
)

// WatchSession prints the display of sessionID every time it changes in the store,
// or of every session when sessionID is empty. It returns when ctx is done.
func WatchSession(ctx context.Context, eng *keypad.Engine, sessionID string, jsonOut bool, out io.Writer) error {
	changes, err := eng.Watch(ctx)
	if err != nil {
		return fmt.Errorf("cannot watch sessions (use the file backend): %w", err)
	}

	if sessionID != "" {
		printSystemMessage(out, "Watching session '%s'.", sessionID)
		if state, err := eng.Load(ctx, sessionID); err == nil {
			if err := printWatched(out, runner.NewFrame(sessionID, state), jsonOut); err != nil {
				return err
			}
		}
	} else {
		printSystemMessage(out, "Watching all sessions.")
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case id, ok := <-changes:
			if !ok {
				return nil
			}
			if sessionID != "" && id != sessionID {
				continue
			}

			state, err := eng.Load(ctx, id)
			if errors.Is(err, domain.ErrSessionNotFound) {
				printSystemMessage(out, "Session '%s' removed.", id)
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to reload session %s: %w", id, err)
			}
			if err := printWatched(out, runner.NewFrame(id, state), jsonOut); err != nil {
				return err
			}
		}
	}
}

func printWatched(out io.Writer, frame runner.Frame, jsonOut bool) error {
	if !jsonOut {
		fmt.Fprintf(out, "[%s]\n", frame.SessionID)
	}
	return printFrame(out, frame, jsonOut)
}
