package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level, and failures at
// error level. It implements all hook interfaces, so one value can be
// registered everywhere:
//
//	h := observability.NewLogHooks(logger)
//	observability.SetBuildHooks(h)
//	observability.SetTraversalHooks(h)
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger.WithPrefix("obs")}
}

// Register installs h for every hook category.
func (h *LogHooks) Register() {
	SetBuildHooks(h)
	SetTraversalHooks(h)
	SetCacheHooks(h)
	SetServerHooks(h)
}

func (h *LogHooks) OnBuildStart(_ context.Context, workload string, seeds int) {
	h.logger.Debug("build start", "workload", workload, "seeds", seeds)
}

func (h *LogHooks) OnBuildComplete(_ context.Context, workload string, items int, d time.Duration, err error) {
	if err != nil {
		h.logger.Error("build failed", "workload", workload, "err", err)
		return
	}
	h.logger.Debug("build done", "workload", workload, "items", items, "took", d)
}

func (h *LogHooks) OnLookback(_ context.Context, seed int, limit uint64, hits int, d time.Duration, err error) {
	if err != nil {
		h.logger.Error("lookback failed", "seed", seed, "limit", limit, "err", err)
		return
	}
	h.logger.Debug("lookback", "seed", seed, "limit", limit, "hits", hits, "took", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, route string) {}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Info("request", "method", method, "route", route, "status", status, "took", d)
}

var (
	_ BuildHooks     = (*LogHooks)(nil)
	_ TraversalHooks = (*LogHooks)(nil)
	_ CacheHooks     = (*LogHooks)(nil)
	_ ServerHooks    = (*LogHooks)(nil)
)
