// Package cluster groups seeds that lie within a distance limit of each
// other along the graph.
//
// A cluster is the transitive closure of bounded lookbacks: two seeds share
// a cluster when one reaches the other within the limit, directly or
// through other seeds. Clusters are returned as roaring bitmaps of seed
// indices so callers can intersect them with other seed sets cheaply.
// Scoring clusters or choosing between them is left to the caller.
package cluster

import (
	"fmt"
	"slices"

	"github.com/RoaringBitmap/roaring"

	"github.com/matzehuels/ziptree/pkg/ziptree"
)

// Reachable returns the seeds a lookback from item position pos yields
// within limit. The start seed is not included.
func Reachable(t *ziptree.Tree, pos int, limit ziptree.Distance) (*roaring.Bitmap, error) {
	bm := roaring.New()
	it := t.Reverse(pos, limit)
	for seed := range it.All() {
		bm.Add(uint32(seed))
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("lookback from %d: %w", pos, err)
	}
	return bm, nil
}

// Partition splits the seeds of t into clusters. Every seed belongs to
// exactly one cluster; singletons are included. Clusters are ordered by
// their smallest seed index.
func Partition(t *ziptree.Tree, limit ziptree.Distance) ([]*roaring.Bitmap, error) {
	uf := newUnionFind(t.SeedCount())
	for pos, seed := range t.All() {
		it := t.Reverse(pos, limit)
		for hit := range it.All() {
			uf.union(seed, hit)
		}
		if err := it.Err(); err != nil {
			return nil, fmt.Errorf("lookback from seed %d: %w", seed, err)
		}
	}

	byRoot := make(map[int]*roaring.Bitmap)
	for seed := range t.Seeds() {
		root := uf.find(seed)
		bm, ok := byRoot[root]
		if !ok {
			bm = roaring.New()
			byRoot[root] = bm
		}
		bm.Add(uint32(seed))
	}

	out := make([]*roaring.Bitmap, 0, len(byRoot))
	for _, bm := range byRoot {
		out = append(out, bm)
	}
	slices.SortFunc(out, func(a, b *roaring.Bitmap) int {
		return int(a.Minimum()) - int(b.Minimum())
	})
	return out, nil
}

// Of returns the index of the cluster holding seed, or -1.
func Of(clusters []*roaring.Bitmap, seed int) int {
	for i, bm := range clusters {
		if bm.Contains(uint32(seed)) {
			return i
		}
	}
	return -1
}

type unionFind struct {
	parent []int
	rank   []uint8
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]uint8, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		u.parent[ra] = rb
	case u.rank[ra] > u.rank[rb]:
		u.parent[rb] = ra
	default:
		u.parent[rb] = ra
		u.rank[ra]++
	}
}
