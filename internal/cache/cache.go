// Package cache provides the keyed storage used to hold issued credentials
// between calls.
package cache

import (
	"context"
)

// Store holds values of type T by key. Implementations must be safe for
// concurrent use.
type Store[T any] interface {
	// Get returns the stored value and whether it was present.
	Get(ctx context.Context, key string) (T, bool, error)

	// Set stores or replaces the value for key.
	Set(ctx context.Context, key string, value T) error

	// Invalidate removes the value for key. Removing an absent key is not an
	// error.
	Invalidate(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}

// Stats is a point-in-time view of store lookups.
type Stats struct {
	Hits   uint64
	Misses uint64
}
