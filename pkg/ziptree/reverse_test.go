package ziptree_test

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/ziptree/pkg/snarl"
	"github.com/matzehuels/ziptree/pkg/ziptree"
)

func TestLookbackChain(t *testing.T) {
	tree, _ := build(t, linearModel())

	assert.Equal(t, map[int]ziptree.Distance{1: 1, 0: 5}, lookback(t, tree, 2, 20))
	assert.Equal(t, map[int]ziptree.Distance{1: 1}, lookback(t, tree, 2, 4))
	assert.Equal(t, map[int]ziptree.Distance{0: 4}, lookback(t, tree, 1, 20))
	assert.Empty(t, lookback(t, tree, 0, 20))
}

func TestLookbackOrder(t *testing.T) {
	tree, _ := build(t, linearModel())
	pos, _ := tree.Position(2)

	hits, err := tree.Lookback(pos, 20)
	require.NoError(t, err)
	assert.Equal(t, []ziptree.Hit{{Seed: 1, Distance: 1}, {Seed: 0, Distance: 5}}, hits)
}

func TestLookbackLimitIsInclusive(t *testing.T) {
	tree, _ := build(t, linearModel())

	assert.Equal(t, map[int]ziptree.Distance{1: 1, 0: 5}, lookback(t, tree, 2, 5))
	assert.Empty(t, lookback(t, tree, 2, 0))
}

func TestLookbackSimpleBubble(t *testing.T) {
	tree, _ := build(t, bubbleModel(snarl.BubbleSimple))

	// From after the bubble every branch is reachable through its end.
	assert.Equal(t, map[int]ziptree.Distance{2: 1, 1: 1, 0: 5}, lookback(t, tree, 3, 100))
	// The second branch cannot see the first one.
	assert.Equal(t, map[int]ziptree.Distance{0: 6}, lookback(t, tree, 2, 100))
	assert.Equal(t, map[int]ziptree.Distance{0: 3}, lookback(t, tree, 1, 100))
}

func TestLookbackComplexBubble(t *testing.T) {
	tree, _ := build(t, bubbleModel(snarl.BubbleComplex))

	assert.Equal(t, map[int]ziptree.Distance{1: 11, 0: 6}, lookback(t, tree, 2, 100))
	assert.Equal(t, map[int]ziptree.Distance{0: 6}, lookback(t, tree, 2, 10))
}

func TestLookbackSkipsChainsOverLimit(t *testing.T) {
	tree, _ := build(t, bubbleModel(snarl.BubbleSimple))

	// The rest of each branch exceeds the limit but the walk goes on with
	// the next branch.
	assert.Equal(t, map[int]ziptree.Distance{2: 1, 1: 1}, lookback(t, tree, 3, 1))
}

// parseNotation reads a tree in the bracket notation of [ziptree.Tree.String].
func parseNotation(t *testing.T, notation string) []ziptree.Item {
	t.Helper()
	var items []ziptree.Item
	for _, tok := range strings.Fields(notation) {
		switch {
		case tok == "[":
			items = append(items, ziptree.Item{Kind: ziptree.ItemChainStart})
		case tok == "]":
			items = append(items, ziptree.Item{Kind: ziptree.ItemChainEnd})
		case tok == "(":
			items = append(items, ziptree.Item{Kind: ziptree.ItemSnarlStart})
		case tok == ")":
			items = append(items, ziptree.Item{Kind: ziptree.ItemSnarlEnd})
		case tok == "inf":
			items = append(items, ziptree.Item{Kind: ziptree.ItemEdge, Value: ziptree.Unreachable})
		case strings.HasPrefix(tok, "s"):
			n, err := strconv.ParseUint(tok[1:], 10, 64)
			require.NoError(t, err, tok)
			items = append(items, ziptree.Item{Kind: ziptree.ItemSeed, Value: ziptree.Distance(n)})
		case strings.HasPrefix(tok, "{"):
			n, err := strconv.ParseUint(strings.Trim(tok, "{}"), 10, 64)
			require.NoError(t, err, tok)
			items = append(items, ziptree.Item{Kind: ziptree.ItemSiblingCount, Value: ziptree.Distance(n)})
		default:
			n, err := strconv.ParseUint(tok, 10, 64)
			require.NoError(t, err, tok)
			items = append(items, ziptree.Item{Kind: ziptree.ItemEdge, Value: ziptree.Distance(n)})
		}
	}
	return items
}

func TestLookbackSkipsNestedSnarl(t *testing.T) {
	// A root chain holding a bubble whose second branch holds another
	// bubble. Skipping that branch has to step over the inner bubble.
	const notation = "[ s0 2 ( 0 [ 3 s5 1 ] inf 1 [ 1 s1 0 " +
		"( 0 [ 4 s2 1 ] 5 2 [ 3 s3 2 ] 1 3 6 {1} ) " +
		"2 s4 0 ] 2 0 9 {1} ) 1 s6 ]"
	tree, err := ziptree.FromItems(parseNotation(t, notation), make([]ziptree.Seed, 7))
	require.NoError(t, err)
	require.Equal(t, notation, tree.String())

	tests := []struct {
		limit ziptree.Distance
		want  map[int]ziptree.Distance
	}{
		{0, map[int]ziptree.Distance{}},
		{2, map[int]ziptree.Distance{5: 2}},
		{3, map[int]ziptree.Distance{4: 3, 5: 2}},
		{8, map[int]ziptree.Distance{4: 3, 3: 8, 5: 2}},
		{11, map[int]ziptree.Distance{4: 3, 3: 8, 2: 9, 1: 11, 5: 2}},
		{12, map[int]ziptree.Distance{4: 3, 3: 8, 2: 9, 1: 11, 5: 2, 0: 12}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, lookback(t, tree, 6, tt.limit), "limit %d", tt.limit)
	}

	pos, _ := tree.Position(6)
	hits, err := tree.Lookback(pos, 12)
	require.NoError(t, err)
	var order []int
	for _, h := range hits {
		order = append(order, h.Seed)
	}
	assert.Equal(t, []int{4, 3, 2, 1, 5, 0}, order)
}

func TestLookbackStopsAtComponent(t *testing.T) {
	m := snarl.Model{
		Nodes:  nodes(2, 3),
		Chains: []snarl.ChainDef{{Name: "a", Root: true, Children: []string{"n1"}}},
		Seeds:  []snarl.SeedDef{{Node: 2}, {Node: 1, Offset: 1}},
	}
	tree, _ := build(t, m)

	assert.Empty(t, lookback(t, tree, 0, ziptree.Unreachable-1))
}

func TestLookbackNotSeed(t *testing.T) {
	tree, _ := build(t, linearModel())

	for _, pos := range []int{-1, 0, 2, tree.Len()} {
		_, err := tree.Lookback(pos, 10)
		assert.ErrorIs(t, err, ziptree.ErrNotSeed, "position %d", pos)
	}
}

func TestReverseIterator(t *testing.T) {
	tree, _ := build(t, linearModel())
	pos, _ := tree.Position(2)

	it := tree.Reverse(pos, 20)
	require.True(t, it.Next())
	assert.Equal(t, 1, it.Seed())
	assert.Equal(t, ziptree.Distance(1), it.Distance())
	require.True(t, it.Next())
	assert.Equal(t, 0, it.Seed())
	assert.False(t, it.Next())
	assert.False(t, it.Next())
	assert.NoError(t, it.Err())
}

func TestReverseIteratorEarlyStop(t *testing.T) {
	tree, _ := build(t, bubbleModel(snarl.BubbleSimple))
	pos, _ := tree.Position(3)

	var seen []int
	for seed := range tree.Reverse(pos, 100).All() {
		seen = append(seen, seed)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []int{2, 1}, seen)
}

// encodedOrder maps seed index to its rank in encoded order.
func encodedOrder(tree *ziptree.Tree) map[int]int {
	rank := make(map[int]int)
	for seed := range tree.Seeds() {
		rank[seed] = len(rank)
	}
	return rank
}

func TestLookbackProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	limits := []ziptree.Distance{0, 3, 10, 40, ziptree.Unreachable - 1}

	for range 100 {
		m := randomModel(r, 1+r.IntN(3), true)
		tree, seeds := build(t, m)
		rank := encodedOrder(tree)

		for _, seed := range tree.All() {
			component := seeds[seed].Addr.Component()
			var wider map[int]ziptree.Distance
			for i := len(limits) - 1; i >= 0; i-- {
				got := lookback(t, tree, seed, limits[i])
				for hit, dist := range got {
					assert.Less(t, rank[hit], rank[seed], "hits precede the start seed")
					assert.Equal(t, component, seeds[hit].Addr.Component())
					assert.LessOrEqual(t, dist, limits[i])
					if wider != nil {
						// A smaller limit only removes hits.
						assert.Contains(t, wider, hit)
						assert.Equal(t, wider[hit], dist)
					}
				}
				wider = got
			}
		}
	}
}

func TestLookbackChainDistances(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 6))
	for range 100 {
		m := randomModel(r, 1+r.IntN(3), false)
		tree, seeds := build(t, m)

		// Without bubbles every earlier seed of the component is reachable
		// and the distance is the sum of the edges in between.
		offset := make(map[int]ziptree.Distance)
		var run ziptree.Distance
		for i := range tree.Len() {
			switch it := tree.Item(i); it.Kind {
			case ziptree.ItemChainStart:
				run = 0
			case ziptree.ItemEdge:
				run += it.Value
			case ziptree.ItemSeed:
				offset[it.Seed()] = run
			}
		}

		rank := encodedOrder(tree)
		for seed := range tree.Seeds() {
			want := make(map[int]ziptree.Distance)
			for other := range seeds {
				if rank[other] < rank[seed] && seeds[other].Addr.Component() == seeds[seed].Addr.Component() {
					want[other] = offset[seed] - offset[other]
				}
			}
			assert.Equal(t, want, lookback(t, tree, seed, ziptree.Unreachable-1))
		}
	}
}
