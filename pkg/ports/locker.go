package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock taken by DistributedLocker.Lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes work on one run ID across processes sharing a RunStore,
// so two replicas never resume the same snapshot at once.
type DistributedLocker interface {
	// Lock takes the lock for runID, waiting until it is free or ctx is done.
	// ttl bounds how long a crashed holder keeps the run locked.
	// The returned UnlockFunc must be called once the run has been saved.
	Lock(ctx context.Context, runID string, ttl time.Duration) (UnlockFunc, error)
}
