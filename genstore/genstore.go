// Package genstore tracks a monotonically increasing generation per cache
// key. Cache population is only allowed under the generation observed before
// the database read, so an invalidation that lands in between can never be
// overwritten by stale data.
package genstore

import (
	"context"
	"time"
)

// GenStore abstracts where generations live. Use Local (default) for
// in-process generations, or Redis for multi-replica deployments where
// invalidations must be visible across processes.
type GenStore interface {
	// Snapshot returns the current generation; missing => 0.
	Snapshot(ctx context.Context, storageKey string) (uint64, error)
	// Bump atomically increments and returns the new generation.
	Bump(ctx context.Context, storageKey string) (uint64, error)
	// Cleanup prunes old metadata if applicable (no-op for Redis).
	Cleanup(retention time.Duration)
	// Close releases resources (no-op ok).
	Close(context.Context) error
}
