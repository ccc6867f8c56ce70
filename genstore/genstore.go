// Package genstore keeps per-id mutation generations. Every Mutate takes a new
// generation before resolving its value and only writes if no newer one was
// taken meanwhile, so a slow mutation can't overwrite a faster, later one.
package genstore

import (
	"context"
	"time"
)

// GenStore abstracts where generations live.
// Use LocalGenStore (default) for in-process gens, or RedisGenStore when
// several processes mutate the same shared provider.
type GenStore interface {
	// Snapshot returns the current generation; missing => 0.
	Snapshot(ctx context.Context, id string) (uint64, error)
	// Bump atomically increments and returns the new generation.
	Bump(ctx context.Context, id string) (uint64, error)
	// Cleanup prunes old metadata if applicable (no-op for Redis).
	Cleanup(retention time.Duration)
	// Close releases resources (no-op ok).
	Close(context.Context) error
}
