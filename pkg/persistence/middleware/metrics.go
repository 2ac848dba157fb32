package middleware

import (
	"context"
	"time"

	"github.com/aretw0/keypad/pkg/domain"
	"github.com/aretw0/keypad/pkg/ports"
)

// StoreObserver receives the timing and result of each store call.
type StoreObserver interface {
	ObserveStore(operation string, started time.Time, err error)
}

type metricsMiddleware struct {
	next     ports.StateStore
	observer StoreObserver
}

// NewMetricsMiddleware creates a middleware that reports every store call to observer.
func NewMetricsMiddleware(observer StoreObserver) Middleware {
	return func(next ports.StateStore) ports.StateStore {
		return &metricsMiddleware{next: next, observer: observer}
	}
}

func (m *metricsMiddleware) Save(ctx context.Context, sessionID string, state domain.State) (err error) {
	defer m.observe("save", time.Now(), &err)
	return m.next.Save(ctx, sessionID, state)
}

func (m *metricsMiddleware) Load(ctx context.Context, sessionID string) (state domain.State, err error) {
	defer m.observe("load", time.Now(), &err)
	return m.next.Load(ctx, sessionID)
}

func (m *metricsMiddleware) Delete(ctx context.Context, sessionID string) (err error) {
	defer m.observe("delete", time.Now(), &err)
	return m.next.Delete(ctx, sessionID)
}

func (m *metricsMiddleware) List(ctx context.Context) (ids []string, err error) {
	defer m.observe("list", time.Now(), &err)
	return m.next.List(ctx)
}

func (m *metricsMiddleware) observe(op string, started time.Time, err *error) {
	m.observer.ObserveStore(op, started, *err)
}
