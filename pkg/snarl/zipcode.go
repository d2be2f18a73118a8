package snarl

import (
	"strings"

	"github.com/matzehuels/ziptree/pkg/ziptree"
)

// ZipCode is the hierarchical address of a node: its ancestor scopes from
// the component root (index 0) down to the node itself. It implements
// [ziptree.Address].
type ZipCode []*scope

var _ ziptree.Address = ZipCode(nil)

// Depth returns the index of the leaf level.
func (z ZipCode) Depth() int { return len(z) - 1 }

// Equal reports whether z and other pass through the same scope at depth.
func (z ZipCode) Equal(other ziptree.Address, depth int) bool {
	o, ok := other.(ZipCode)
	if !ok || depth >= len(z) || depth >= len(o) {
		return false
	}
	return z[depth] == o[depth]
}

func (z ZipCode) Kind(depth int) ziptree.Kind { return z[depth].kind }
func (z ZipCode) IsReversed(depth int) bool { return z[depth].reversed }
func (z ZipCode) OffsetInChain(depth int) ziptree.Distance { return z[depth].offset }
func (z ZipCode) Length(depth int) ziptree.Distance { return z[depth].length }
func (z ZipCode) Rank(depth int) int { return z[depth].rank }

// DistanceToStart returns the distance from a chain inside a bubble to the
// bubble's start bound.
func (z ZipCode) DistanceToStart(depth int) ziptree.Distance { return z[depth].toStart }

// DistanceToEnd returns the distance from a chain inside a bubble to the
// bubble's end bound.
func (z ZipCode) DistanceToEnd(depth int) ziptree.Distance { return z[depth].toEnd }

// Component returns the identifier of the root scope.
func (z ZipCode) Component() string {
	if len(z) == 0 {
		return ""
	}
	return z[0].id
}

// Scopes returns the scope identifiers from root to leaf.
func (z ZipCode) Scopes() []string {
	ids := make([]string, len(z))
	for i, s := range z {
		ids[i] = s.id
	}
	return ids
}

// String renders the address as "root/child/.../leaf".
func (z ZipCode) String() string {
	return strings.Join(z.Scopes(), "/")
}
