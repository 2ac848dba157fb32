package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/keypad/pkg/adapters/memory"
	"github.com/aretw0/keypad/pkg/domain"
	"github.com/aretw0/keypad/pkg/ports"
	"github.com/aretw0/keypad/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_LoadOrStart(t *testing.T) {
	store := memory.NewStore()
	mgr := session.NewManager(store)
	ctx := context.Background()

	state, err := mgr.LoadOrStart(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, state.IsEmpty())

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, ids, "new session should be persisted immediately")

	require.NoError(t, store.Save(ctx, "fresh", domain.State{CurrentOperand: domain.Operand("8")}))
	state, err = mgr.LoadOrStart(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, "8", state.Current())
}

func TestManager_Load_NotFound(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	_, err := mgr.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_Update_Serializes(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()

	// Each update appends a "1"; lost updates would leave fewer digits.
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := mgr.Update(ctx, "shared", func(s domain.State) (domain.State, error) {
				s.CurrentOperand = domain.Operand(s.Current() + "1")
				return s, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	state, err := mgr.Load(ctx, "shared")
	require.NoError(t, err)
	assert.Len(t, state.Current(), 50)
}

func TestManager_Update_ErrorDoesNotSave(t *testing.T) {
	store := memory.NewStore()
	mgr := session.NewManager(store)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s", domain.State{CurrentOperand: domain.Operand("1")}))

	boom := errors.New("boom")
	_, err := mgr.Update(ctx, "s", func(s domain.State) (domain.State, error) {
		return domain.State{}, boom
	})
	assert.ErrorIs(t, err, boom)

	state, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "1", state.Current())
}

type recordingLocker struct {
	mu       sync.Mutex
	ttls     []time.Duration
	released int
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	l.ttls = append(l.ttls, ttl)
	l.mu.Unlock()
	return func(ctx context.Context) error {
		l.mu.Lock()
		l.released++
		l.mu.Unlock()
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &recordingLocker{}
	mgr := session.NewManager(memory.NewStore(),
		session.WithLocker(locker),
		session.WithLockTTL(5*time.Second),
	)

	_, err := mgr.LoadOrStart(context.Background(), "dist")
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{5 * time.Second}, locker.ttls)
	assert.Equal(t, 1, locker.released)
}

func TestManager_UpdateObserved_ChainsChanges(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()

	type change struct {
		old  *string
		next string
	}
	var (
		mu      sync.Mutex
		changes []change
	)
	observe := func(old *domain.State, next domain.State) {
		mu.Lock()
		defer mu.Unlock()
		c := change{next: next.Current()}
		if old != nil {
			c.old = domain.Operand(old.Current())
		}
		changes = append(changes, c)
	}

	_, err := mgr.UpdateObserved(ctx, "obs", func(s domain.State) (domain.State, error) {
		return domain.State{CurrentOperand: domain.Operand("1")}, nil
	}, observe)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := mgr.UpdateObserved(ctx, "obs", func(s domain.State) (domain.State, error) {
				return domain.State{CurrentOperand: domain.Operand(s.Current() + "2")}, nil
			}, observe)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Len(t, changes, 21)
	assert.Nil(t, changes[0].old, "first change creates the session")
	for i := 1; i < len(changes); i++ {
		require.NotNil(t, changes[i].old)
		assert.Equal(t, changes[i-1].next, *changes[i].old, "change %d must start where the previous one ended", i)
	}

	state, err := mgr.Load(ctx, "obs")
	require.NoError(t, err)
	assert.Equal(t, changes[len(changes)-1].next, state.Current())
}

func TestManager_DeleteObserved(t *testing.T) {
	store := memory.NewStore()
	mgr := session.NewManager(store)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "gone", domain.State{CurrentOperand: domain.Operand("5")}))

	var removed *domain.State
	require.NoError(t, mgr.DeleteObserved(ctx, "gone", func(old *domain.State, next domain.State) {
		removed = old
		assert.True(t, next.IsEmpty())
	}))
	require.NotNil(t, removed)
	assert.Equal(t, "5", removed.Current())

	_, err := store.Load(ctx, "gone")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
