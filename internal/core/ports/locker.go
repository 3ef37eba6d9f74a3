package ports

import (
	"context"
	"time"
)

// Locker provides a short-lived mutual-exclusion lease shared by every
// instance of the service.
type Locker interface {
	// Acquire blocks until the lease on key is held, ctx ends, or the lock
	// stays busy past the locker's wait budget (domain.ErrLockBusy). The
	// returned release is safe to call more than once.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}
