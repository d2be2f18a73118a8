// Package nodelink renders encoded seed trees as node-link diagrams.
//
// # Overview
//
// A [ziptree.Tree] is a flat item sequence, which is hard to read once
// snarls nest. This package rebuilds the nesting as Graphviz clusters:
//
//   - every chain is a solid cluster holding its seeds and snarls in order
//   - every snarl is a dashed cluster with point nodes for its two bounds
//   - edges carry the stored distances; dashed edges are distances between
//     sibling chains and the snarl length
//
// # Usage
//
//	dot := nodelink.ToDOT(tree, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering, so no Graphviz installation is required.
package nodelink
