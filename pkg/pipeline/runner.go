package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/matzehuels/ziptree/pkg/cache"
	zterrors "github.com/matzehuels/ziptree/pkg/errors"
	"github.com/matzehuels/ziptree/pkg/observability"
	"github.com/matzehuels/ziptree/pkg/snarl"
	"github.com/matzehuels/ziptree/pkg/store"
	"github.com/matzehuels/ziptree/pkg/ziptree"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Refresh skips cache reads. Results are still written back.
	Refresh bool

	// TTL overrides cache.TTLTree for stored trees.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Build compiles m and encodes its seeds, reusing a cached store when one
// exists for the same workload content.
func (r *Runner) Build(ctx context.Context, m snarl.Model) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hash, err := WorkloadHash(m)
	if err != nil {
		return nil, zterrors.Wrap(zterrors.ErrCodeInvalidWorkload, err, "hash workload")
	}
	res := &Result{Name: m.Name, WorkloadHash: hash}

	compileStart := time.Now()
	d, seeds, err := snarl.Load(m)
	if err != nil {
		return nil, zterrors.Wrap(zterrors.ErrCodeInvalidWorkload, err, "compile %s", displayName(m))
	}
	res.Decomposition, res.Seeds = d, seeds
	res.Stats.CompileTime = time.Since(compileStart)

	key := r.Keyer.TreeKey(hash, store.Version)
	if !r.Refresh && r.restore(ctx, key, res) {
		return res, nil
	}
	observability.Cache().OnCacheMiss(ctx, "tree")

	hooks := observability.Build()
	hooks.OnBuildStart(ctx, hash, len(seeds))
	buildStart := time.Now()
	t, err := ziptree.Build(seeds, d, ziptree.WithTracer(r.Logger.Debugf))
	res.Stats.BuildTime = time.Since(buildStart)
	if err != nil {
		hooks.OnBuildComplete(ctx, hash, 0, res.Stats.BuildTime, err)
		return nil, zterrors.Wrap(zterrors.ErrCodeInvalidWorkload, err, "build %s", displayName(m))
	}
	hooks.OnBuildComplete(ctx, hash, t.Len(), res.Stats.BuildTime, nil)

	res.Meta = store.NewMeta(hash)
	res.Meta.Seeds = len(seeds)
	data, err := store.Marshal(t, res.Meta)
	if err != nil {
		return nil, zterrors.Wrap(zterrors.ErrCodeInternal, err, "encode store")
	}
	res.Tree, res.Store = t, data
	res.Stats.Stats = t.Stats()

	if err := r.Cache.Set(ctx, key, data, r.ttl()); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "tree", len(data))
	}

	r.Logger.Info("built seed tree",
		"workload", displayName(m),
		"seeds", len(seeds),
		"items", t.Len(),
		"duration", res.Stats.BuildTime)
	return res, nil
}

// restore fills res from a cached store. Entries that fail to decode are
// dropped and rebuilt.
func (r *Runner) restore(ctx context.Context, key string, res *Result) bool {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "error", err)
		return false
	}
	if !hit {
		return false
	}
	t, meta, err := store.Unmarshal(data, res.Seeds)
	if err != nil {
		r.Logger.Warn("discarding cached tree", "key", key, "error", err)
		_ = r.Cache.Delete(ctx, key)
		return false
	}
	observability.Cache().OnCacheHit(ctx, "tree")
	res.Tree, res.Meta, res.Store = t, meta, data
	res.Stats.Stats = t.Stats()
	res.CacheHit = true
	r.Logger.Debug("restored seed tree from cache", "workload", res.WorkloadHash[:12], "items", t.Len())
	return true
}

// BuildAll builds every model with at most workers running at once.
// Results are returned in input order. The first failure cancels the
// builds still waiting and is returned.
func (r *Runner) BuildAll(ctx context.Context, models []snarl.Model, workers int) ([]*Result, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	results := make([]*Result, len(models))
	p := pool.New().
		WithContext(ctx).
		WithMaxGoroutines(workers).
		WithCancelOnError().
		WithFirstError()
	for i, m := range models {
		p.Go(func(ctx context.Context) error {
			res, err := r.Build(ctx, m)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Lookback returns every seed that the bounded reverse traversal from seed
// reaches within limit.
func (r *Runner) Lookback(ctx context.Context, res *Result, seed int, limit ziptree.Distance) ([]ziptree.Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pos, ok := res.Tree.Position(seed)
	if !ok {
		return nil, zterrors.New(zterrors.ErrCodeSeedNotFound, "seed %d not in tree (%d seeds)", seed, res.Tree.SeedCount())
	}
	start := time.Now()
	hits, err := res.Tree.Lookback(pos, limit)
	observability.Traversal().OnLookback(ctx, seed, uint64(limit), len(hits), time.Since(start), err)
	if errors.Is(err, ziptree.ErrCorrupt) {
		return nil, zterrors.Wrap(zterrors.ErrCodeCorruptStore, err, "lookback from seed %d", seed)
	}
	if err != nil {
		return nil, zterrors.Wrap(zterrors.ErrCodeInternal, err, "lookback from seed %d", seed)
	}
	return hits, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) ttl() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return cache.TTLTree
}

func displayName(m snarl.Model) string {
	if m.Name != "" {
		return m.Name
	}
	return "workload"
}
