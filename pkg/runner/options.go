package runner

import (
	"log/slog"

	"github.com/aretw0/keypad/pkg/domain"
	"github.com/aretw0/keypad/pkg/ports"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithEngine configures the engine that applies key presses.
// If the engine also implements ports.SessionEngine and a session ID is set,
// every line is persisted through it.
func WithEngine(engine ports.StatelessEngine) Option {
	return func(r *Runner) {
		r.engine = engine
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithSessionID binds the runner to a stored session.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.SessionID = id
	}
}

// WithInitialState configures the starting state of an ephemeral run.
// It is ignored when the runner is bound to a session.
func WithInitialState(state domain.State) Option {
	return func(r *Runner) {
		r.initialState = &state
	}
}

// WithHelp replaces the text printed for the "help" command.
func WithHelp(text string) Option {
	return func(r *Runner) {
		r.Help = text
	}
}

// WithSignals makes Ctrl+C end the run gracefully instead of killing the process.
func WithSignals(enabled bool) Option {
	return func(r *Runner) {
		r.handleSignals = enabled
	}
}
