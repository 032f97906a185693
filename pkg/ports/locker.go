package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker defines the interface for distributed concurrency control.
// It lets the session Manager serialize turns of one conversation across replicas.
type DistributedLocker interface {
	// Lock blocks until the lock for key (a conversation ID) is acquired or ctx is done.
	// The lock expires after ttl even if never released.
	// Returns an UnlockFunc that MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
