// Package ziptree provides a flat, distance-annotated tree over seed
// positions in a snarl decomposition of a sequence graph.
//
// # Overview
//
// A snarl decomposition nests the graph into chains (linear runs of nodes
// and bubbles) and snarls, or bubbles (scopes with several branches). Each
// seed carries an [Address] describing its ancestor scopes from the
// component root down to its node. This package sorts seeds by those
// addresses and encodes them into a single slice of typed [Item] values
// with explicit distances between neighbouring scopes. The slice has no
// parent or child pointers: bracket items delimit the scopes and the
// distance items carry everything a traversal needs.
//
// # Encoding
//
// A chain is written as "[" children "]" with one distance between
// consecutive children, measured in the chain's traversal direction. The
// first child of a root chain has no leading distance. A bubble inside a
// chain is written as "(" chains count ")". Every child chain is preceded
// by its distances to all earlier siblings, nearest first, followed by the
// distance to the bubble start. The bubble end is preceded by one distance
// per child chain to the bubble end, then the bubble length, then a
// sibling count equal to the number of child chains minus one.
//
// For a chain of three nodes of lengths 4, 1 and 6 with one seed at the
// start of each node, [Tree.String] prints:
//
//	[ s0 4 s1 1 s2 ]
//
// Branches of a simple bubble cannot reach one another, so their mutual
// distances are [Unreachable]. Distances between branches of a complex
// bubble come from an [Oracle].
//
// # Building
//
// [Build] sorts the seeds (see [Sort]) and encodes them in one forward
// pass, keeping only a per-depth scratch list of open siblings. The result
// is validated with [Validate] before it is returned; inconsistent
// addresses fail with [ErrInvariant] rather than producing a corrupt store.
//
//	tree, err := ziptree.Build(seeds, decomposition)
//	if err != nil {
//	    return err
//	}
//	for pos, seed := range tree.All() {
//	    hits, err := tree.Lookback(pos, 150)
//	    ...
//	}
//
// # Traversal
//
// [Tree.Seeds] and [Tree.All] iterate seeds in encoded order.
// [Tree.Reverse] walks backward from one seed and yields every seed whose
// path distance stays within a limit. The walk is a pushdown automaton
// with a single stack of running distances: it never recurses, never
// revisits the tree, and can be abandoned at any point.
//
// Sums saturate at [Unreachable], so no accumulated distance ever wraps
// around. A store that does not match the automaton's grammar ends the
// walk with an error matching [ErrCorrupt].
//
// # Concurrency
//
// A [Tree] is immutable and may be traversed from many goroutines at once.
// A single [ReverseIterator] must not be shared between goroutines.
// Independent trees may be built concurrently.
package ziptree
