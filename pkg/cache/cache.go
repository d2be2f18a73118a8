// Package cache stores encoded trees between runs.
//
// Entries are opaque byte slices, in practice CBOR stores produced by
// [github.com/matzehuels/ziptree/pkg/store], addressed by keys from a
// [Keyer]. Four backends implement [Cache]:
//
//   - [FileCache]: one file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for servers
//   - [MongoCache]: a MongoDB collection with a TTL index, for servers
//   - [NullCache]: stores nothing, for --no-cache and tests
//
// Network backends wrap transient failures with [Retryable] and retry them
// through [RetryWithBackoff].
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a key-value store with expiring entries.
type Cache interface {
	// Get returns the entry for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero or less never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend's resources.
	Close() error
}

// Default entry lifetimes.
const (
	TTLTree    = 24 * time.Hour
	TTLCluster = 6 * time.Hour
)

// Keyer derives cache keys.
type Keyer interface {
	// TreeKey addresses the encoded tree of a workload. version is the
	// store format version, so a format change never reads stale entries.
	TreeKey(workloadHash string, version int) string
	// ClusterKey addresses a cluster partition of a stored tree.
	ClusterKey(workloadHash string, limit uint64) string
}

// DefaultKeyer produces keys of the form "<kind>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key scheme.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// TreeKey implements [Keyer].
func (DefaultKeyer) TreeKey(workloadHash string, version int) string {
	return hashKey("tree", workloadHash, fmt.Sprint(version))
}

// ClusterKey implements [Keyer].
func (DefaultKeyer) ClusterKey(workloadHash string, limit uint64) string {
	return hashKey("clusters", workloadHash, fmt.Sprint(limit))
}
