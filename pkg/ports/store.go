package ports

import (
	"context"

	"github.com/aretw0/keypad/pkg/domain"
)

// StateStore defines the interface for persisting calculator sessions.
// This allows a display to survive restarts and to be shared across replicas.
type StateStore interface {
	// Save persists the state for a given session ID.
	Save(ctx context.Context, sessionID string, state domain.State) error

	// Load retrieves the state for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (domain.State, error)

	// Delete removes the state for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}

// Watchable defines an interface for stores that can notify about backend changes.
type Watchable interface {
	// Watch returns a channel that receives the ID of every session changed in the backend.
	Watch(ctx context.Context) (<-chan string, error)
}
