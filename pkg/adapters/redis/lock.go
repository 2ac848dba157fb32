package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/keypad/pkg/ports"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

var (
	// ErrLockAcquire is returned when the lock cannot be acquired.
	ErrLockAcquire = errors.New("failed to acquire distributed lock")

	errLockHeld = errors.New("lock held by another owner")
)

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = backend.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Locker implements ports.DistributedLocker using Redis.
type Locker struct {
	client *backend.Client
	prefix string

	// InitialInterval and MaxInterval bound the retry backoff while the lock is contended.
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// NewLocker creates a new Redis locker.
func NewLocker(client *backend.Client, prefix string) *Locker {
	return &Locker{
		client:          client,
		prefix:          prefix,
		InitialInterval: 20 * time.Millisecond,
		MaxInterval:     250 * time.Millisecond,
	}
}

// Lock acquires a distributed lock for the given key using Redis SET NX PX.
// It retries with exponential backoff until the lock is free or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey := l.prefix + "lock:" + key
	token := uuid.NewString()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = l.InitialInterval
	policy.MaxInterval = l.MaxInterval
	policy.MaxElapsedTime = 0 // bounded by ctx

	acquire := func() error {
		ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil {
			return backoff.Permanent(fmt.Errorf("redis error acquiring lock: %w", err))
		}
		if !ok {
			return errLockHeld
		}
		return nil
	}

	if err := backoff.Retry(acquire, backoff.WithContext(policy, ctx)); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrLockAcquire, ctxErr)
		}
		return nil, fmt.Errorf("%w: %w", ErrLockAcquire, err)
	}

	return func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.client, []string{lockKey}, token).Err()
	}, nil
}
