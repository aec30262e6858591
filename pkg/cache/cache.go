// Package cache stores rendered bundling results between runs.
//
// A render is deterministic, so its output is a pure function of the edge
// document and the options. The pipeline hashes both into a key (see
// [Keyer]) and keeps the encoded artifacts under it. Three backends exist:
//
//   - [NullCache] never stores anything (--no-cache).
//   - [FileCache] keeps entries as JSON files under the user cache dir.
//   - [RedisCache] shares entries between server replicas.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry TTL.
//
// Get reports a miss as (nil, false, nil); an error means the backend
// itself failed. A ttl of zero stores the entry without expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// TTLs for cached entries.
const (
	TTLResult   = 7 * 24 * time.Hour
	TTLDocument = 24 * time.Hour
)
