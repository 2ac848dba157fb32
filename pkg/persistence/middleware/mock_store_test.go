package middleware_test

import (
	"context"
	"errors"
	"sort"

	"github.com/aretw0/keypad/pkg/domain"
)

var errBroken = errors.New("store is broken")

// MockStore is a simple map-based store for testing middleware.
type MockStore struct {
	data   map[string]domain.State
	broken bool
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]domain.State),
	}
}

func (s *MockStore) Save(ctx context.Context, sessionID string, state domain.State) error {
	if s.broken {
		return errBroken
	}
	s.data[sessionID] = state
	return nil
}

func (s *MockStore) Load(ctx context.Context, sessionID string) (domain.State, error) {
	state, ok := s.data[sessionID]
	if !ok {
		return domain.State{}, domain.ErrSessionNotFound
	}
	return state, nil
}

func (s *MockStore) Delete(ctx context.Context, sessionID string) error {
	delete(s.data, sessionID)
	return nil
}

func (s *MockStore) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// WatchableMockStore adds a Watch method for Chain tests.
type WatchableMockStore struct {
	*MockStore
	events chan string
}

func (s *WatchableMockStore) Watch(ctx context.Context) (<-chan string, error) {
	return s.events, nil
}
