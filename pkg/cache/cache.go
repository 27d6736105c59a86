// Package cache stores computed feature values and stats results.
//
// Feature extraction over large populations repeats the same work across
// runs: the same files, the same features, the same options. The cache
// keys results by the morphology fingerprint (a digest of the raw point
// table) so an edited file never hits a stale entry.
//
// # Backends
//
//   - [MemoryCache]: in-process map, used by the HTTP server
//   - [FileCache]: one JSON file per entry, used by the CLI
//   - [RedisCache]: shared cache for several server replicas
//   - [NullCache]: never stores anything
//
// # Keys
//
// Keys are built by a [Keyer]. [NewDefaultKeyer] hashes every key part so
// keys have a fixed length; [NewScopedKeyer] prefixes another keyer, e.g.
// to keep results of different configurations apart.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with optional expiry.
type Cache interface {
	// Get returns the stored value and true, or false on a miss. Expired
	// entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Clear drops every entry of c if the backend supports it.
func Clear(ctx context.Context, c Cache) error {
	if cl, ok := c.(Clearer); ok {
		return cl.Clear(ctx)
	}
	return nil
}
