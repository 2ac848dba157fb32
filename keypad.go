package keypad

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/keypad/internal/logging"
	"github.com/aretw0/keypad/internal/runtime"
	"github.com/aretw0/keypad/pkg/adapters/memory"
	"github.com/aretw0/keypad/pkg/domain"
	"github.com/aretw0/keypad/pkg/ports"
	"github.com/aretw0/keypad/pkg/session"
)

// Engine is the high-level entry point for the keypad library.
// It wraps the internal runtime and the session manager behind a single API.
type Engine struct {
	runtime  *runtime.Engine
	sessions *session.Manager
	store    ports.StateStore
	locker   ports.DistributedLocker
	lockTTL  time.Duration
	hooks    domain.LifecycleHooks
	strict   bool
	logger   *slog.Logger
}

var _ ports.SessionEngine = (*Engine)(nil)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithStore sets the session store. Defaults to an in-memory store.
func WithStore(store ports.StateStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLocker enables distributed session locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed session locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.lockTTL = ttl
	}
}

// WithStrictActions rejects malformed actions with domain.ErrInvalidAction.
func WithStrictActions(strict bool) Option {
	return func(e *Engine) {
		e.strict = strict
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes a new keypad Engine.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.store == nil {
		eng.store = memory.NewStore()
	}

	eng.runtime = runtime.NewEngine(
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
		runtime.WithStrictActions(eng.strict),
	)

	sessionOpts := []session.Option{session.WithLogger(eng.logger)}
	if eng.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(eng.locker))
	}
	if eng.lockTTL > 0 {
		sessionOpts = append(sessionOpts, session.WithLockTTL(eng.lockTTL))
	}
	eng.sessions = session.NewManager(eng.store, sessionOpts...)

	return eng, nil
}

// Dispatch applies a single action to state without touching any store.
func (e *Engine) Dispatch(ctx context.Context, state domain.State, action domain.Action) (domain.State, error) {
	return e.runtime.Dispatch(ctx, state, action)
}

// DispatchAll applies actions in order without touching any store.
func (e *Engine) DispatchAll(ctx context.Context, state domain.State, actions ...domain.Action) (domain.State, error) {
	return e.runtime.DispatchAll(ctx, state, actions...)
}

// Start loads a session, creating an empty one if it does not exist.
func (e *Engine) Start(ctx context.Context, sessionID string) (domain.State, error) {
	return e.sessions.LoadOrStart(ctx, sessionID)
}

// Apply dispatches actions against a stored session and persists the result.
// The session is created on first use.
func (e *Engine) Apply(ctx context.Context, sessionID string, actions ...domain.Action) (domain.State, error) {
	return e.ApplyObserved(ctx, sessionID, nil, actions...)
}

// ApplyObserved is Apply with observe called once the result is saved,
// before the session is released to other callers.
func (e *Engine) ApplyObserved(ctx context.Context, sessionID string, observe session.ChangeFunc, actions ...domain.Action) (domain.State, error) {
	ctx = runtime.ContextWithSession(ctx, sessionID)
	state, err := e.sessions.UpdateObserved(ctx, sessionID, func(current domain.State) (domain.State, error) {
		return e.runtime.DispatchAll(ctx, current, actions...)
	}, observe)
	if err != nil {
		return domain.State{}, fmt.Errorf("apply to session %s: %w", sessionID, err)
	}
	return state, nil
}

// Load returns a stored session without creating it.
func (e *Engine) Load(ctx context.Context, sessionID string) (domain.State, error) {
	return e.sessions.Load(ctx, sessionID)
}

// Reset removes a stored session. The next Start or Apply begins from a cleared display.
func (e *Engine) Reset(ctx context.Context, sessionID string) error {
	return e.sessions.Delete(ctx, sessionID)
}

// ResetObserved is Reset with observe called with the removed state, under
// the session lock. observe is skipped when the session did not exist.
func (e *Engine) ResetObserved(ctx context.Context, sessionID string, observe session.ChangeFunc) error {
	return e.sessions.DeleteObserved(ctx, sessionID, observe)
}

// List returns the IDs of stored sessions.
func (e *Engine) List(ctx context.Context) ([]string, error) {
	return e.sessions.List(ctx)
}

// Watch returns a channel that signals when a stored session changes.
// Returns error if the store does not support watching.
func (e *Engine) Watch(ctx context.Context) (<-chan string, error) {
	if w, ok := e.store.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current store does not support watching")
}

// Store returns the underlying session store.
func (e *Engine) Store() ports.StateStore {
	return e.store
}

// Sessions returns the session manager used by the engine.
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}
