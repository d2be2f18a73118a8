// Package render holds the visual renderers for seed trees.
//
// The [nodelink] subpackage draws the bracket nesting of a tree as a
// Graphviz diagram. Text renderings live with the types themselves:
// [ziptree.Tree.String] prints the bracket notation.
package render
