// Package pipeline runs the workload → decomposition → seed tree pipeline.
//
// The CLI and the HTTP server both index workloads through a [Runner], so
// caching, logging and observability hooks behave the same at every entry
// point.
//
// # Stages
//
//  1. Compile: resolve the workload's snarl decomposition and its seeds
//  2. Build: order the seeds and encode them into a [ziptree.Tree]
//  3. Store: persist the flat store through the cache
//
// A cached store is rebuilt with [store.Unmarshal], which re-validates the
// item sequence against the freshly resolved seeds.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Build(ctx, model)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	hits, err := runner.Lookback(ctx, res, 3, pipeline.DefaultLimit)
package pipeline

import (
	"encoding/json"
	"time"

	"github.com/matzehuels/ziptree/pkg/cache"
	"github.com/matzehuels/ziptree/pkg/snarl"
	"github.com/matzehuels/ziptree/pkg/store"
	"github.com/matzehuels/ziptree/pkg/ziptree"
)

const (
	// DefaultLimit is the lookback distance used when none is given.
	DefaultLimit = 150

	// DefaultWorkers bounds the number of workloads built concurrently by
	// [Runner.BuildAll].
	DefaultWorkers = 4
)

// Result is an indexed workload.
type Result struct {
	// Name is the workload name from the model.
	Name string

	// WorkloadHash identifies the model content. Names do not contribute.
	WorkloadHash string

	// Decomposition is the compiled snarl decomposition.
	Decomposition *snarl.Decomposition

	// Seeds are the resolved seeds, indexed like the model's seed list.
	Seeds []ziptree.Seed

	// Tree is the encoded seed tree.
	Tree *ziptree.Tree

	// Meta and Store are the persisted form of Tree.
	Meta  store.Meta
	Store []byte

	Stats Stats

	// CacheHit reports whether Tree was restored from the cache.
	CacheHit bool
}

// Stats contains build statistics.
type Stats struct {
	ziptree.Stats
	CompileTime time.Duration
	BuildTime   time.Duration
}

// WorkloadHash hashes the model content with its name cleared, so renamed
// copies of a workload share cache entries.
func WorkloadHash(m snarl.Model) (string, error) {
	m.Name = ""
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}
