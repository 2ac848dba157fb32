package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/keypad/pkg/adapters/redis"
	"github.com/aretw0/keypad/pkg/domain"
	"github.com/aretw0/keypad/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)

	store := redis.NewFromClient(client)
	ports.RunStateStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	sessionID := "session-ttl"

	err := store.Save(ctx, sessionID, domain.State{CurrentOperand: domain.Operand("5")})
	require.NoError(t, err)

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, sessions, sessionID)

	// Fast forward time in miniredis (for key expiration)
	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, sessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()
	sessionID := "my-session"

	err := store.Save(ctx, sessionID, domain.State{CurrentOperand: domain.Operand("1")})
	require.NoError(t, err)

	assert.True(t, mr.Exists("custom:app:s:my-session"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	raw, err := mr.Get("custom:app:s:my-session")
	require.NoError(t, err)
	assert.JSONEq(t, `{"current_operand":"1"}`, raw)

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{sessionID}, list)
}

func TestRedisStore_Delete_RemovesIndex(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "gone", domain.State{}))
	require.NoError(t, store.Delete(ctx, "gone"))

	assert.False(t, mr.Exists(redis.DefaultPrefix+"s:gone"))
	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.NotContains(t, list, "gone")
}

func TestRedisStore_ReservedLookingIDs(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	locker := redis.NewLocker(client, redis.DefaultPrefix)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "plain", domain.State{CurrentOperand: domain.Operand("1")}))
	require.NoError(t, store.Save(ctx, "index", domain.State{CurrentOperand: domain.Operand("2")}))
	require.NoError(t, store.Save(ctx, "plain", domain.State{CurrentOperand: domain.Operand("3")}))

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"plain", "index"}, list)

	unlock, err := locker.Lock(ctx, "x", time.Second)
	require.NoError(t, err)
	defer unlock(ctx)

	require.NoError(t, store.Save(ctx, "lock:x", domain.State{CurrentOperand: domain.Operand("4")}))
	require.NoError(t, store.Delete(ctx, "lock:x"))

	lockCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(lockCtx, "x", time.Second)
	assert.Error(t, err, "lock for x must survive saving and deleting session lock:x")

	state, err := store.Load(ctx, "index")
	require.NoError(t, err)
	assert.Equal(t, "2", state.Current())
}
