package ziptree

import "fmt"

// Kind classifies one level of a seed's hierarchical address.
type Kind uint8

// Scope kinds. The set is closed: every switch over a Kind in this package
// names all six cases.
const (
	// KindNode is a node inside a chain.
	KindNode Kind = iota
	// KindRootNode is a node that forms its own connected component.
	KindRootNode
	// KindChain is a chain inside a bubble. A chain at the leaf level of an
	// address is a trivial chain made of a single node.
	KindChain
	// KindRootChain is the top-level chain of a connected component.
	KindRootChain
	// KindSimpleBubble is a bubble whose branches only meet at its bounds.
	KindSimpleBubble
	// KindComplexBubble is a bubble with irregular internal connectivity.
	KindComplexBubble
)

var kindNames = [...]string{
	KindNode:          "node",
	KindRootNode:      "root_node",
	KindChain:         "chain",
	KindRootChain:     "root_chain",
	KindSimpleBubble:  "simple_bubble",
	KindComplexBubble: "complex_bubble",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Position is a location in the sequence graph: a node, the strand read, and
// a 0-based offset counted along that strand.
type Position struct {
	Node    uint64
	Offset  uint64
	Reverse bool
}

func (p Position) String() string {
	strand := "+"
	if p.Reverse {
		strand = "-"
	}
	return fmt.Sprintf("%d%s%d", p.Node, strand, p.Offset)
}

// Address is a seed's hierarchical address (its zip code). Level 0 is the
// root of the seed's connected component and level Depth() is the leaf.
//
// Implementations are queried many times per seed during sorting and
// construction and should answer from precomputed data.
type Address interface {
	// Depth returns the index of the leaf level.
	Depth() int
	// Equal reports whether both addresses name the same scope at depth.
	Equal(other Address, depth int) bool
	// Kind returns the kind of the scope at depth.
	Kind(depth int) Kind
	// IsReversed reports whether the scope at depth is reversed relative
	// to its parent.
	IsReversed(depth int) bool
	// OffsetInChain is the prefix sum of a chain child within its parent
	// chain, in the parent's own orientation.
	OffsetInChain(depth int) Distance
	// Length is the length of the scope at depth. For a bubble this is
	// the distance between its bounds.
	Length(depth int) Distance
	// DistanceToStart and DistanceToEnd give the distance from a chain
	// inside a bubble to the bubble's start and end bounds.
	DistanceToStart(depth int) Distance
	DistanceToEnd(depth int) Distance
	// Rank is the rank of a chain within its parent bubble.
	Rank(depth int) int
	// Component identifies the connected component.
	Component() string
}

// Oracle answers distance queries the addresses cannot answer alone.
type Oracle interface {
	// DistanceInBubble returns the distance between the children with
	// ranks rankA and rankB of the complex bubble at depth of a.
	DistanceInBubble(a Address, depth, rankA, rankB int) Distance
}

// Seed is an anchor position together with its hierarchical address.
type Seed struct {
	Pos  Position
	Addr Address
}

// nodeOffset is the 0-based offset of the seed on its leaf's forward strand.
func (s Seed) nodeOffset() Distance {
	off := Distance(s.Pos.Offset)
	if s.Pos.Reverse {
		return Minus(Minus(s.Addr.Length(s.Addr.Depth()), off), 1)
	}
	return off
}

// orientations returns, for every level of a, whether that level is
// traversed reversed relative to the component's root.
func orientations(a Address) []bool {
	out := make([]bool, a.Depth()+1)
	rev := false
	for d := range out {
		if a.IsReversed(d) {
			rev = !rev
		}
		out[d] = rev
	}
	return out
}

// leafOffset is the 1-based position of s on its leaf, counted in the
// direction the leaf is traversed.
func leafOffset(s Seed, reversed bool) Distance {
	leaf := s.Addr.Length(s.Addr.Depth())
	if reversed != s.Pos.Reverse {
		return Minus(leaf, Distance(s.Pos.Offset))
	}
	return Sum(Distance(s.Pos.Offset), 1)
}

// chainOffset is the offset of the chain child at depth d, measured in the
// traversal direction of its parent chain.
func chainOffset(a Address, d int, parentReversed bool) Distance {
	off := a.OffsetInChain(d)
	if parentReversed {
		return Minus(a.Length(d-1), Sum(off, a.Length(d)))
	}
	return off
}
