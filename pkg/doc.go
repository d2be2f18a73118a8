// Package pkg provides the libraries behind ziptree, a seed index over a
// snarl decomposition of a sequence graph.
//
// # Overview
//
// Read mappers place short exact matches (seeds) on a graph and then need
// to find, for each seed, the earlier seeds that lie within a distance
// bound. ziptree answers that by sorting the seeds along the snarl
// decomposition and encoding them into one flat bracketed sequence, the
// zip code tree, which is walked backwards to collect distances.
//
// The packages split into three areas:
//
//  1. Core: [ziptree] (ordering, encoding, backward traversal) and [snarl]
//     (decomposition model and zip code addresses)
//  2. Data: [io] (workload files), [store] (encoded trees), [cache]
//     (tree cache backends) and [cluster] (seed partitions)
//  3. Orchestration: [pipeline], [observability], [errors] and [render]
//
// # Architecture
//
//	workload file (TOML/JSON)
//	         ↓
//	    [io] package (decode the model)
//	         ↓
//	    [snarl] package (compile the decomposition, address the seeds)
//	         ↓
//	    [ziptree] package (sort and encode)
//	         ↓
//	    [store] + [cache] packages (persist and reuse)
//	         ↓
//	    lookbacks, clusters, DOT/SVG
//
// # Quick Start
//
//	m, _ := ztio.ImportFile("examples/bubble.toml")
//	d, _ := snarl.Compile(m)
//	seeds, _ := d.Seeds(m.Seeds)
//	tree, _ := ziptree.Build(seeds, d)
//
//	pos, _ := tree.Position(2)
//	hits, _ := tree.Lookback(pos, 150)
//
// The [pipeline] package wraps these steps with caching and logging.
package pkg
