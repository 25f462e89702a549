// Package cache stores rendered diagrams so repeated renders of an unchanged
// network skip Graphviz.
//
// Three backends implement [Cache]: [FileCache] keeps entries under a
// directory (the CLI uses ~/.cache/critpath), [RedisCache] shares them
// between API instances and [NullCache] stores nothing, used when caching
// is disabled.
//
// Keys are content addressed. [DiagramKey] hashes the DOT source together
// with the output format, so any edit or recalculation that changes the
// drawing produces a new key and stale entries are never served.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional per-entry expiry.
type Cache interface {
	// Get returns the stored value and true, or nil and false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
	// Close releases resources held by the cache.
	Close() error
}

// DefaultTTL is how long rendered diagrams are kept.
const DefaultTTL = 7 * 24 * time.Hour
