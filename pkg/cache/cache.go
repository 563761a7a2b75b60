// Package cache stores build and render results keyed by their inputs.
//
// Tree builds are pure functions of the pair input, the strategy and the id
// function, so their exported records can be reused across CLI runs and API
// requests. Three backends implement [Cache]:
//
//   - [FileCache]: JSON entries under a directory, used by the CLI
//   - [RedisCache]: shared cache for the HTTP API
//   - [NullCache]: caching disabled
//
// Keys are built with [BuildKey] and [RenderKey]; both hash their inputs so
// keys have a fixed length regardless of input size.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key. A miss is reported as ok == false with a
	// nil error; errors are reserved for backend failures.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop all of their entries.
type Clearer interface {
	// Clear removes every entry and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}

// Default TTLs. Results never go stale because builds are deterministic;
// the TTLs only bound disk and memory use.
const (
	TTLBuild  = 7 * 24 * time.Hour
	TTLRender = 24 * time.Hour
)

// BuildKey returns the cache key for a tree build: the strategy, the id
// function name and the canonical pair input.
func BuildKey(strategy, ids string, input []byte) string {
	return hashKey("build", strategy, ids, Hash(input))
}

// RenderKey returns the cache key for a rendered diagram of the tree whose
// exported records hash to treeHash.
func RenderKey(treeHash, format string, detailed bool) string {
	return hashKey("render", treeHash, format, detailed)
}
