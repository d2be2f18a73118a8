package ziptree

import (
	"cmp"
	"slices"
)

// Sort returns the seed indices in tree order.
//
// Seeds sharing an ancestor scope sort contiguously. Inside the innermost
// shared scope they follow the traversal direction of that scope: chain
// offsets for children of a chain, branch rank for children of a simple
// bubble, and distance to the bubble bounds for children of a complex
// bubble. Seeds on the same leaf are ordered by their offset on it, and
// seeds of different components by component identity. The sort is
// stable, so equal seeds keep their input order.
func Sort(seeds []Seed) []int {
	order, _ := sortSeeds(seeds)
	return order
}

func sortSeeds(seeds []Seed) ([]int, [][]bool) {
	orient := make([][]bool, len(seeds))
	order := make([]int, len(seeds))
	for i, s := range seeds {
		order[i] = i
		orient[i] = orientations(s.Addr)
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return compareSeeds(seeds, orient, a, b)
	})
	return order, orient
}

func compareSeeds(seeds []Seed, orient [][]bool, a, b int) int {
	sa, sb := seeds[a], seeds[b]
	maxA, maxB := sa.Addr.Depth(), sb.Addr.Depth()

	d := 0
	for d < maxA && d < maxB && sa.Addr.Equal(sb.Addr, d) {
		d++
	}

	if sa.Addr.Equal(sb.Addr, d) {
		// Same leaf.
		oa, ob := sa.nodeOffset(), sb.nodeOffset()
		if orient[a][d] {
			return cmp.Compare(ob, oa)
		}
		return cmp.Compare(oa, ob)
	}
	if d == 0 {
		return cmp.Compare(sa.Addr.Component(), sb.Addr.Component())
	}

	parentReversed := orient[a][d-1]
	switch sa.Addr.Kind(d - 1) {
	case KindChain, KindRootChain:
		oa := chainOffset(sa.Addr, d, parentReversed)
		ob := chainOffset(sb.Addr, d, parentReversed)
		if c := cmp.Compare(oa, ob); c != 0 {
			return c
		}
		// A nested scope starting at the same offset as a node comes first.
		nodeA, nodeB := sa.Addr.Kind(d) == KindNode, sb.Addr.Kind(d) == KindNode
		switch {
		case !nodeA && nodeB:
			return -1
		case nodeA && !nodeB:
			return 1
		}
		return 0
	case KindSimpleBubble:
		// By branch rank, flipped when reversal swaps start and end, so each
		// branch's seeds stay contiguous.
		ra, rb := sa.Addr.Rank(d), sb.Addr.Rank(d)
		if parentReversed {
			return cmp.Compare(rb, ra)
		}
		return cmp.Compare(ra, rb)
	case KindComplexBubble:
		startA, endA := sa.Addr.DistanceToStart(d), sa.Addr.DistanceToEnd(d)
		startB, endB := sb.Addr.DistanceToStart(d), sb.Addr.DistanceToEnd(d)
		if parentReversed {
			startA, endA = endA, startA
			startB, endB = endB, startB
		}
		if c := cmp.Compare(startA, startB); c != 0 {
			return c
		}
		if c := cmp.Compare(endB, endA); c != 0 {
			return c
		}
		return cmp.Compare(sa.Addr.Rank(d), sb.Addr.Rank(d))
	case KindNode, KindRootNode:
		// Leaves have no children; Build reports the broken address.
		return 0
	}
	return 0
}
