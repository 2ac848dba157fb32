package middleware

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/keypad/pkg/domain"
	"github.com/aretw0/keypad/pkg/ports"
)

type loggingMiddleware struct {
	next   ports.StateStore
	logger *slog.Logger
}

// NewLoggingMiddleware creates a middleware that logs store calls at debug level
// and failures at warn level. Not-found loads are not failures.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next ports.StateStore) ports.StateStore {
		return &loggingMiddleware{next: next, logger: logger}
	}
}

func (m *loggingMiddleware) Save(ctx context.Context, sessionID string, state domain.State) error {
	err := m.next.Save(ctx, sessionID, state)
	m.log(ctx, "save", sessionID, err)
	return err
}

func (m *loggingMiddleware) Load(ctx context.Context, sessionID string) (domain.State, error) {
	state, err := m.next.Load(ctx, sessionID)
	m.log(ctx, "load", sessionID, err)
	return state, err
}

func (m *loggingMiddleware) Delete(ctx context.Context, sessionID string) error {
	err := m.next.Delete(ctx, sessionID)
	m.log(ctx, "delete", sessionID, err)
	return err
}

func (m *loggingMiddleware) List(ctx context.Context) ([]string, error) {
	ids, err := m.next.List(ctx)
	m.log(ctx, "list", "", err)
	return ids, err
}

func (m *loggingMiddleware) log(ctx context.Context, op, sessionID string, err error) {
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		m.logger.WarnContext(ctx, "Store operation failed", "op", op, "session_id", sessionID, "err", err)
		return
	}
	m.logger.DebugContext(ctx, "Store operation", "op", op, "session_id", sessionID)
}
