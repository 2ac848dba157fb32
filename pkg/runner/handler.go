package runner

import (
	"context"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Output presents the current display to the user.
	Output(ctx context.Context, frame Frame) error

	// Input reads one line of keys from the user.
	// It returns io.EOF when the input stream is exhausted.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message to the user (help, input errors).
	// This is distinct from the calculator display.
	SystemOutput(ctx context.Context, msg string) error
}
