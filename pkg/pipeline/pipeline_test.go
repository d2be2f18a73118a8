package pipeline_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/ziptree/pkg/cache"
	zterrors "github.com/matzehuels/ziptree/pkg/errors"
	"github.com/matzehuels/ziptree/pkg/pipeline"
	"github.com/matzehuels/ziptree/pkg/snarl"
	"github.com/matzehuels/ziptree/pkg/store"
	"github.com/matzehuels/ziptree/pkg/ziptree"
)

// memCache is an in-memory cache.Cache that counts writes.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func newRunner(c cache.Cache) *pipeline.Runner {
	return pipeline.NewRunner(c, nil, log.New(io.Discard))
}

func linearModel(name string) snarl.Model {
	return snarl.Model{
		Name: name,
		Nodes: []snarl.NodeDef{
			{ID: 1, Length: 4},
			{ID: 2, Length: 1},
			{ID: 3, Length: 6},
		},
		Chains: []snarl.ChainDef{{Name: "r", Root: true, Children: []string{"n1", "n2", "n3"}}},
		Seeds:  []snarl.SeedDef{{Node: 1}, {Node: 2}, {Node: 3}},
	}
}

func TestBuild(t *testing.T) {
	res, err := newRunner(nil).Build(context.Background(), linearModel("linear"))
	require.NoError(t, err)

	assert.Equal(t, "linear", res.Name)
	assert.Equal(t, "[ s0 4 s1 1 s2 ]", res.Tree.String())
	assert.False(t, res.CacheHit)
	assert.Equal(t, 3, res.Stats.Seeds)
	assert.Equal(t, res.WorkloadHash, res.Meta.Workload)
	assert.NotEmpty(t, res.Store)

	meta, err := store.ReadMeta(res.Store)
	require.NoError(t, err)
	assert.Equal(t, res.Meta.ID, meta.ID)
}

func TestBuildUsesCache(t *testing.T) {
	c := newMemCache()
	r := newRunner(c)
	ctx := context.Background()

	first, err := r.Build(ctx, linearModel("a"))
	require.NoError(t, err)
	require.Equal(t, 1, c.sets)

	// A renamed copy has the same content hash.
	second, err := r.Build(ctx, linearModel("b"))
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, 1, c.sets)
	assert.Equal(t, first.Meta.ID, second.Meta.ID)
	assert.Equal(t, first.Tree.Items(), second.Tree.Items())
	assert.Equal(t, "b", second.Name)
}

func TestBuildRefreshSkipsCache(t *testing.T) {
	c := newMemCache()
	r := newRunner(c)
	_, err := r.Build(context.Background(), linearModel(""))
	require.NoError(t, err)

	r.Refresh = true
	res, err := r.Build(context.Background(), linearModel(""))
	require.NoError(t, err)
	assert.False(t, res.CacheHit)
	assert.Equal(t, 2, c.sets)
}

func TestBuildDiscardsCorruptEntry(t *testing.T) {
	m := linearModel("")
	hash, err := pipeline.WorkloadHash(m)
	require.NoError(t, err)

	c := newMemCache()
	key := cache.NewDefaultKeyer().TreeKey(hash, store.Version)
	c.data[key] = []byte("not cbor")

	res, err := newRunner(c).Build(context.Background(), m)
	require.NoError(t, err)
	assert.False(t, res.CacheHit)
	assert.Equal(t, res.Store, c.data[key])
}

func TestBuildFileCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	r := newRunner(fc)

	_, err = r.Build(context.Background(), linearModel(""))
	require.NoError(t, err)
	res, err := r.Build(context.Background(), linearModel(""))
	require.NoError(t, err)
	assert.True(t, res.CacheHit)
}

func TestBuildInvalidWorkload(t *testing.T) {
	m := linearModel("broken")
	m.Chains[0].Children = append(m.Chains[0].Children, "n9")

	_, err := newRunner(nil).Build(context.Background(), m)
	require.Error(t, err)
	assert.True(t, zterrors.Is(err, zterrors.ErrCodeInvalidWorkload))
	assert.ErrorIs(t, err, snarl.ErrUnknownChild)
}

func TestBuildCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newRunner(nil).Build(ctx, linearModel(""))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildAll(t *testing.T) {
	models := make([]snarl.Model, 6)
	for i := range models {
		m := linearModel("")
		m.Nodes[0].Length = uint64(i + 1)
		models[i] = m
	}

	results, err := newRunner(newMemCache()).BuildAll(context.Background(), models, 2)
	require.NoError(t, err)
	require.Len(t, results, len(models))
	for i, res := range results {
		hits, err := res.Tree.Lookback(mustPosition(t, res.Tree, 1), 100)
		require.NoError(t, err)
		assert.Equal(t, []ziptree.Hit{{Seed: 0, Distance: ziptree.Distance(i + 1)}}, hits)
	}
}

func TestBuildAllFirstError(t *testing.T) {
	bad := linearModel("bad")
	bad.Seeds = append(bad.Seeds, snarl.SeedDef{Node: 7})
	models := []snarl.Model{linearModel("ok"), bad, linearModel("ok2")}

	results, err := newRunner(nil).BuildAll(context.Background(), models, 0)
	require.Error(t, err)
	assert.Nil(t, results)
	assert.ErrorIs(t, err, snarl.ErrUnknownNode)
}

func TestLookback(t *testing.T) {
	r := newRunner(nil)
	ctx := context.Background()
	res, err := r.Build(ctx, linearModel(""))
	require.NoError(t, err)

	hits, err := r.Lookback(ctx, res, 2, 100)
	require.NoError(t, err)
	assert.Equal(t, []ziptree.Hit{{Seed: 1, Distance: 1}, {Seed: 0, Distance: 5}}, hits)

	hits, err = r.Lookback(ctx, res, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, []ziptree.Hit{{Seed: 1, Distance: 1}}, hits)

	_, err = r.Lookback(ctx, res, 3, 100)
	assert.True(t, zterrors.Is(err, zterrors.ErrCodeSeedNotFound))
}

func TestWorkloadHashIgnoresName(t *testing.T) {
	a, err := pipeline.WorkloadHash(linearModel("a"))
	require.NoError(t, err)
	b, err := pipeline.WorkloadHash(linearModel("b"))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	m := linearModel("a")
	m.Seeds[0].Offset = 1
	c, err := pipeline.WorkloadHash(m)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func mustPosition(t *testing.T, tree *ziptree.Tree, seed int) int {
	t.Helper()
	pos, ok := tree.Position(seed)
	require.True(t, ok)
	return pos
}

func TestClusters(t *testing.T) {
	c := newMemCache()
	r := newRunner(c)
	ctx := context.Background()
	res, err := r.Build(ctx, linearModel(""))
	require.NoError(t, err)

	clusters, err := r.Clusters(ctx, res, 1)
	require.NoError(t, err)
	require.Len(t, clusters, 2)
	assert.Equal(t, []uint32{0}, clusters[0].ToArray())
	assert.Equal(t, []uint32{1, 2}, clusters[1].ToArray())
	sets := c.sets

	// The second call is served from the cache.
	again, err := r.Clusters(ctx, res, 1)
	require.NoError(t, err)
	assert.Equal(t, sets, c.sets)
	require.Len(t, again, 2)
	assert.True(t, clusters[1].Equals(again[1]))

	all, err := r.Clusters(ctx, res, 100)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, uint64(3), all[0].GetCardinality())
}
