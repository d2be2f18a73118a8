// Package observability provides hooks for metrics, tracing and logging.
//
// Libraries emit events through the registered hooks; main registers the
// implementations. Nothing in the index or traversal code depends on a
// metrics backend, and the default hooks do nothing.
//
// # Usage
//
// Register hooks at startup:
//
//	func main() {
//	    observability.SetBuildHooks(observability.NewLogHooks(logger))
//	    // ... run application
//	}
//
// Libraries call hooks around their work:
//
//	observability.Build().OnBuildStart(ctx, name, len(seeds))
//	tree, err := ziptree.Build(seeds, dec)
//	observability.Build().OnBuildComplete(ctx, name, tree.Len(), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// BuildHooks receives events from tree construction.
type BuildHooks interface {
	OnBuildStart(ctx context.Context, workload string, seeds int)
	OnBuildComplete(ctx context.Context, workload string, items int, duration time.Duration, err error)
}

// TraversalHooks receives events from bounded lookbacks.
type TraversalHooks interface {
	OnLookback(ctx context.Context, seed int, limit uint64, hits int, duration time.Duration, err error)
}

// CacheHooks receives events from cache operations. keyType is the kind of
// entry, such as "tree" or "clusters".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// ServerHooks receives events from the HTTP server. route is the matched
// route pattern, not the raw path.
type ServerHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, status int, duration time.Duration)
}

// NoopBuildHooks discards build events.
type NoopBuildHooks struct{}

func (NoopBuildHooks) OnBuildStart(context.Context, string, int) {}
func (NoopBuildHooks) OnBuildComplete(context.Context, string, int, time.Duration, error) {}

// NoopTraversalHooks discards traversal events.
type NoopTraversalHooks struct{}

func (NoopTraversalHooks) OnLookback(context.Context, int, uint64, int, time.Duration, error) {}

// NoopCacheHooks discards cache events.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string) {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string) {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopServerHooks discards server events.
type NoopServerHooks struct{}

func (NoopServerHooks) OnRequest(context.Context, string, string) {}
func (NoopServerHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

var (
	buildHooks     BuildHooks     = NoopBuildHooks{}
	traversalHooks TraversalHooks = NoopTraversalHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	serverHooks    ServerHooks    = NoopServerHooks{}
	hooksMu        sync.RWMutex
)

// SetBuildHooks registers build hooks. A nil h is ignored.
func SetBuildHooks(h BuildHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		buildHooks = h
	}
}

// SetTraversalHooks registers traversal hooks. A nil h is ignored.
func SetTraversalHooks(h TraversalHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		traversalHooks = h
	}
}

// SetCacheHooks registers cache hooks. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetServerHooks registers server hooks. A nil h is ignored.
func SetServerHooks(h ServerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		serverHooks = h
	}
}

// Build returns the registered build hooks.
func Build() BuildHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return buildHooks
}

// Traversal returns the registered traversal hooks.
func Traversal() TraversalHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return traversalHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Server returns the registered server hooks.
func Server() ServerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return serverHooks
}

// Reset restores the no-op hooks. Tests use it to isolate registrations.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	buildHooks = NoopBuildHooks{}
	traversalHooks = NoopTraversalHooks{}
	cacheHooks = NoopCacheHooks{}
	serverHooks = NoopServerHooks{}
}
