// Package cache stores derived artifacts between runs.
//
// The engine sorts large histories into Bek order once per commit stream.
// That permutation depends only on the stream, so it is cached under a
// fingerprint of the stream and reused by later runs and by other server
// instances.
//
// # Backends
//
//   - [FileCache]: one file per entry under a directory, for the CLI
//   - [RedisCache]: shared cache for multi-instance servers
//   - [NullCache]: never stores anything
//
// # Orders
//
// [OrderStore] adapts any [Cache] to the engine's order store, compressing
// payloads with zstd and reporting hits and misses to the observability
// cache hooks:
//
//	c, _ := cache.NewFileCache(dir)
//	store := cache.NewOrderStore(c, cache.DefaultTTL)
//	key := cache.NewDefaultKeyer().OrderKey(cache.Fingerprint(commits, 0))
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long cached orders live unless configured otherwise.
const DefaultTTL = 30 * 24 * time.Hour

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// OrderKey returns the key of the Bek order of the commit stream with
	// the given fingerprint.
	OrderKey(fingerprint string) string
}

// orderVersion changes whenever the sort's output for a given stream
// changes, so stale orders are never loaded.
const orderVersion = "v1"

// DefaultKeyer builds unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// OrderKey returns "order:<version>:<fingerprint>".
func (DefaultKeyer) OrderKey(fingerprint string) string {
	return "order:" + orderVersion + ":" + fingerprint
}

// NullCache is a no-op cache that never stores anything.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (NullCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (NullCache) Delete(context.Context, string) error { return nil }

func (NullCache) Close() error { return nil }

var (
	_ Cache = NullCache{}
	_ Keyer = DefaultKeyer{}
)
