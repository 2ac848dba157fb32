package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/keypad/internal/logging"
	"github.com/aretw0/keypad/pkg/domain"
	"github.com/aretw0/keypad/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed session lock may be held.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.StateStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.StateStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, sessionID string) (domain.State, error) {
	var state domain.State
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, sessionID)
		return err
	})
	return state, err
}

// LoadOrStart tries to load a session. If not found, it persists and returns the empty state.
func (m *Manager) LoadOrStart(ctx context.Context, sessionID string) (domain.State, error) {
	var state domain.State
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		state, _, err = m.loadOrEmpty(ctx, sessionID)
		return err
	})
	return state, err
}

// ChangeFunc observes a committed session change. old is nil when the
// session did not exist before the change.
type ChangeFunc func(old *domain.State, next domain.State)

// Update loads (or starts) a session, applies fn and saves the result atomically
// with respect to other callers of the same session.
func (m *Manager) Update(ctx context.Context, sessionID string, fn func(domain.State) (domain.State, error)) (domain.State, error) {
	return m.UpdateObserved(ctx, sessionID, fn, nil)
}

// UpdateObserved is Update with observe called after the save, while the
// session lock is still held. Observers therefore see changes of one session
// in commit order and always against the state they replaced.
func (m *Manager) UpdateObserved(ctx context.Context, sessionID string, fn func(domain.State) (domain.State, error), observe ChangeFunc) (domain.State, error) {
	var next domain.State
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		current, existed, err := m.loadOrEmpty(ctx, sessionID)
		if err != nil {
			return err
		}

		next, err = fn(current)
		if err != nil {
			return err
		}
		if err := m.store.Save(ctx, sessionID, next); err != nil {
			return err
		}

		if observe != nil {
			var old *domain.State
			if existed {
				old = &current
			}
			observe(old, next)
		}
		return nil
	})
	return next, err
}

// loadOrEmpty must be called with the session lock held.
// existed reports whether the session was already stored.
func (m *Manager) loadOrEmpty(ctx context.Context, sessionID string) (state domain.State, existed bool, err error) {
	state, err = m.store.Load(ctx, sessionID)
	if err == nil {
		return state, true, nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return domain.State{}, false, fmt.Errorf("failed to check session existence: %w", err)
	}

	// Persist immediately to reserve the ID
	if err := m.store.Save(ctx, sessionID, domain.State{}); err != nil {
		return domain.State{}, false, fmt.Errorf("failed to initialize session: %w", err)
	}
	m.logger.Debug("Session started", "session_id", sessionID)
	return domain.State{}, false, nil
}

// Save persists the session state.
func (m *Manager) Save(ctx context.Context, sessionID string, state domain.State) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Save(ctx, sessionID, state)
	})
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.DeleteObserved(ctx, sessionID, nil)
}

// DeleteObserved is Delete with observe called, under the session lock, with
// the removed state and the cleared state. observe is skipped when nothing
// was stored.
func (m *Manager) DeleteObserved(ctx context.Context, sessionID string, observe ChangeFunc) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var old *domain.State
		if observe != nil {
			if state, err := m.store.Load(ctx, sessionID); err == nil {
				old = &state
			}
		}
		if err := m.store.Delete(ctx, sessionID); err != nil {
			return err
		}
		if old != nil {
			observe(old, domain.State{})
		}
		return nil
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying state store.
func (m *Manager) Store() ports.StateStore {
	return m.store
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
