// Package snarl compiles a declarative snarl decomposition into seed
// addresses for [ziptree].
//
// A [Model] lists nodes, chains and bubbles by reference, the way a
// workload file does. [Compile] resolves it into a [Decomposition] that
// hands out a [ZipCode] per node and answers distances between branches
// of complex bubbles, so it serves directly as a [ziptree.Oracle]:
//
//	dec, seeds, err := snarl.Load(model)
//	if err != nil {
//	    return err
//	}
//	tree, err := ziptree.Build(seeds, dec)
//
// Chain children receive prefix-sum offsets in listing order. A node that
// no chain lists becomes a component of its own. A chain inside a bubble
// with a single node child is trivial: the node's address ends at the
// chain.
package snarl
