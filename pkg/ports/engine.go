package ports

import (
	"context"

	"github.com/aretw0/keypad/pkg/domain"
)

// StatelessEngine defines the interface for keypad cores that do not maintain internal state.
// This is the primary interface used by adapters (e.g., HTTP, MCP) that manage state externally or per-request.
type StatelessEngine interface {
	// Dispatch applies an action to a state, returning the next state.
	Dispatch(ctx context.Context, state domain.State, action domain.Action) (domain.State, error)
}

// SessionEngine extends StatelessEngine with persisted sessions.
type SessionEngine interface {
	StatelessEngine

	// Start loads a session, creating an empty one if it does not exist.
	Start(ctx context.Context, sessionID string) (domain.State, error)

	// Apply dispatches actions against a stored session and persists the result.
	Apply(ctx context.Context, sessionID string, actions ...domain.Action) (domain.State, error)

	// Load returns a stored session without creating it.
	Load(ctx context.Context, sessionID string) (domain.State, error)

	// Reset removes a stored session.
	Reset(ctx context.Context, sessionID string) error

	// List returns the IDs of stored sessions.
	List(ctx context.Context) ([]string, error)
}
