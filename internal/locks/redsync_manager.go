package locks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v8"
	"hubspot-proxy/internal/common/errors"
	"hubspot-proxy/internal/redis"
)

// RefreshLockExpiry bounds how long a crashed holder can block token refresh
const RefreshLockExpiry = 30 * time.Second

// RedsyncManager hands out Redlock mutexes backed by go-redsync
type RedsyncManager struct {
	redsync *redsync.Redsync
	tries   int
}

// RedsyncLock is a lock held through redsync
type RedsyncLock struct {
	mutex    *redsync.Mutex
	key      string
	mu       sync.Mutex
	released bool
}

// NewRedsyncManager creates a lock manager on top of an existing Redis client
func NewRedsyncManager(redisClient *redis.Client) (*RedsyncManager, error) {
	if redisClient == nil {
		return nil, errors.ConfigError("redis client is required")
	}

	pool := goredis.NewPool(redisClient.GetGoRedisClient())

	return &RedsyncManager{
		redsync: redsync.New(pool),
		tries:   64,
	}, nil
}

// AcquireLock takes the lock named key, prefixed with "lock:" in Redis
func (rm *RedsyncManager) AcquireLock(ctx context.Context, key string, expiration time.Duration) (Lock, error) {
	mutex := rm.redsync.NewMutex(fmt.Sprintf("lock:%s", key),
		redsync.WithExpiry(expiration),
		redsync.WithTries(rm.tries),
	)

	if err := mutex.LockContext(ctx); err != nil {
		return nil, errors.InternalError("failed to acquire distributed lock", err).WithContext("key", key)
	}

	return &RedsyncLock{mutex: mutex, key: key}, nil
}

// RefreshLockKey names the lock guarding the refresh of one token
func RefreshLockKey(tokenKey string) string {
	return fmt.Sprintf("oauth2-refresh:%s", tokenKey)
}

func (rl *RedsyncLock) Key() string {
	return rl.key
}

func (rl *RedsyncLock) Release(ctx context.Context) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.released {
		return nil
	}
	rl.released = true

	if _, err := rl.mutex.UnlockContext(ctx); err != nil {
		return errors.InternalError("failed to release distributed lock", err).WithContext("key", rl.key)
	}
	return nil
}
