package runtime

import "context"

type sessionKey struct{}

// ContextWithSession tags ctx with the session being driven so hooks can report it.
func ContextWithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

// SessionFromContext returns the session ID attached by ContextWithSession, or "".
func SessionFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}
