package pipeline

import (
	"context"
	"fmt"

	"github.com/RoaringBitmap/roaring"
	"github.com/fxamacker/cbor/v2"

	"github.com/matzehuels/ziptree/pkg/cache"
	"github.com/matzehuels/ziptree/pkg/cluster"
	zterrors "github.com/matzehuels/ziptree/pkg/errors"
	"github.com/matzehuels/ziptree/pkg/observability"
	"github.com/matzehuels/ziptree/pkg/ziptree"
)

// Clusters partitions the seeds of res within limit. Partitions are cached
// per workload and limit as CBOR arrays of serialized bitmaps.
func (r *Runner) Clusters(ctx context.Context, res *Result, limit ziptree.Distance) ([]*roaring.Bitmap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := r.Keyer.ClusterKey(res.WorkloadHash, uint64(limit))
	if !r.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if clusters, err := decodeClusters(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "clusters")
				return clusters, nil
			}
			r.Logger.Warn("discarding cached clusters", "key", key)
		}
	}
	observability.Cache().OnCacheMiss(ctx, "clusters")

	clusters, err := cluster.Partition(res.Tree, limit)
	if err != nil {
		return nil, zterrors.Wrap(zterrors.ErrCodeCorruptStore, err, "partition")
	}
	if data, err := encodeClusters(clusters); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLCluster); err == nil {
			observability.Cache().OnCacheSet(ctx, "clusters", len(data))
		}
	}
	return clusters, nil
}

func encodeClusters(clusters []*roaring.Bitmap) ([]byte, error) {
	raw := make([][]byte, len(clusters))
	for i, bm := range clusters {
		b, err := bm.ToBytes()
		if err != nil {
			return nil, err
		}
		raw[i] = b
	}
	return cbor.Marshal(raw)
}

func decodeClusters(data []byte) ([]*roaring.Bitmap, error) {
	var raw [][]byte
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	clusters := make([]*roaring.Bitmap, len(raw))
	for i, b := range raw {
		bm := roaring.New()
		if err := bm.UnmarshalBinary(b); err != nil {
			return nil, fmt.Errorf("cluster %d: %w", i, err)
		}
		clusters[i] = bm
	}
	return clusters, nil
}
