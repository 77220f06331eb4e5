// Package locks serializes work across proxy instances that share a Redis
// server. The token refresher uses it so only one instance at a time spends
// the stored refresh token.
package locks

import (
	"context"
	"time"
)

// Lock is a held distributed lock
type Lock interface {
	// Key returns the unique identifier for this lock
	Key() string

	// Release gives the lock up. Releasing twice is a no-op.
	Release(ctx context.Context) error
}

// Locker acquires distributed locks
type Locker interface {
	// AcquireLock blocks until the lock is held, ctx is done, or
	// acquisition attempts are exhausted
	AcquireLock(ctx context.Context, key string, expiration time.Duration) (Lock, error)
}
