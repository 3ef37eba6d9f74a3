package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/assetverse/asset-management/internal/core/domain"
)

const (
	defaultLockWait = 3 * time.Second
	retryInterval   = 25 * time.Millisecond
	lockPrefix      = "lock:"
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lease can never release a newer holder's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker implements ports.Locker with SET NX PX leases.
type Locker struct {
	client *redis.Client
	wait   time.Duration
	log    zerolog.Logger
}

// NewLocker returns a Locker that waits up to wait for a busy lease.
func NewLocker(client *redis.Client, wait time.Duration, log zerolog.Logger) *Locker {
	if wait <= 0 {
		wait = defaultLockWait
	}
	return &Locker{client: client, wait: wait, log: log}
}

// Acquire polls SET NX until the lease is taken, ctx ends, or the wait budget
// runs out (domain.ErrLockBusy).
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	key = lockPrefix + key
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			return l.releaser(key, token), nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", domain.ErrLockBusy, key)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *Locker) releaser(key, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
			defer cancel()
			err := releaseScript.Run(ctx, l.client, []string{key}, token).Err()
			if err != nil && !errors.Is(err, redis.Nil) {
				l.log.Warn().Err(err).Str("key", key).Msg("lock release failed, lease will expire")
			}
		})
	}
}
