package middleware

import (
	"context"

	"github.com/aretw0/keypad/pkg/ports"
)

// Middleware allows wrapping a StateStore to add behavior.
type Middleware func(ports.StateStore) ports.StateStore

// Chain wraps store with mws. The first middleware is the outermost.
// If store implements ports.Watchable, the result does too.
func Chain(store ports.StateStore, mws ...Middleware) ports.StateStore {
	wrapped := store
	for i := len(mws) - 1; i >= 0; i-- {
		wrapped = mws[i](wrapped)
	}
	if w, ok := store.(ports.Watchable); ok {
		if _, already := wrapped.(ports.Watchable); !already {
			return &watchableStore{StateStore: wrapped, watcher: w}
		}
	}
	return wrapped
}

type watchableStore struct {
	ports.StateStore
	watcher ports.Watchable
}

var _ ports.Watchable = (*watchableStore)(nil)

func (s *watchableStore) Watch(ctx context.Context) (<-chan string, error) {
	return s.watcher.Watch(ctx)
}
