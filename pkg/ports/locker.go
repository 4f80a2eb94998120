package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock taken by DistributedLocker.Lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes identical trace requests across several
// server replicas sharing one report store, so a run key is traced once.
type DistributedLocker interface {
	// Lock blocks until key is held, ctx is done or the attempt times out.
	// The lock expires after ttl if the holder never calls the UnlockFunc.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
