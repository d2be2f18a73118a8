package ziptree_test

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matzehuels/ziptree/pkg/snarl"
	"github.com/matzehuels/ziptree/pkg/ziptree"
)

// build compiles m, resolves its seeds and builds the tree.
func build(t *testing.T, m snarl.Model) (*ziptree.Tree, []ziptree.Seed) {
	t.Helper()
	dec, seeds, err := snarl.Load(m)
	require.NoError(t, err)
	tree, err := ziptree.Build(seeds, dec)
	require.NoError(t, err)
	return tree, seeds
}

// lookback runs a reverse traversal from seed and returns distance by seed.
func lookback(t *testing.T, tree *ziptree.Tree, seed int, limit ziptree.Distance) map[int]ziptree.Distance {
	t.Helper()
	pos, ok := tree.Position(seed)
	require.True(t, ok, "seed %d not in tree", seed)
	hits, err := tree.Lookback(pos, limit)
	require.NoError(t, err)
	got := make(map[int]ziptree.Distance, len(hits))
	for _, h := range hits {
		_, dup := got[h.Seed]
		require.False(t, dup, "seed %d yielded twice", h.Seed)
		got[h.Seed] = h.Distance
	}
	return got
}

func nodes(lengths ...uint64) []snarl.NodeDef {
	defs := make([]snarl.NodeDef, len(lengths))
	for i, l := range lengths {
		defs[i] = snarl.NodeDef{ID: uint64(i + 1), Length: l}
	}
	return defs
}

// linearModel is one root chain of three nodes with lengths 4, 1 and 6 and
// one seed at the start of each node.
func linearModel() snarl.Model {
	return snarl.Model{
		Nodes:  nodes(4, 1, 6),
		Chains: []snarl.ChainDef{{Name: "r", Root: true, Children: []string{"n1", "n2", "n3"}}},
		Seeds:  []snarl.SeedDef{{Node: 1}, {Node: 2}, {Node: 3}},
	}
}

// bubbleModel is n1(3) b1 n4(5) where b1 is a bubble of length 2 with the
// trivial chains c1 = n2(1) and c2 = n3(4).
func bubbleModel(kind string) snarl.Model {
	return snarl.Model{
		Nodes: nodes(3, 1, 4, 5),
		Chains: []snarl.ChainDef{
			{Name: "r", Root: true, Children: []string{"n1", "b1", "n4"}},
			{Name: "c1", Children: []string{"n2"}},
			{Name: "c2", Children: []string{"n3"}},
		},
		Bubbles: []snarl.BubbleDef{{
			Name: "b1", Kind: kind, Length: 2, Chains: []string{"c1", "c2"},
			Distances: []snarl.RankDistance{{A: 0, B: 1, Distance: 7}},
		}},
		Seeds: []snarl.SeedDef{{Node: 1}, {Node: 2}, {Node: 3, Offset: 3}, {Node: 4}},
	}
}

// randomModel generates a nested decomposition with up to three levels of
// bubbles and a few seeds per node.
func randomModel(r *rand.Rand, components int, bubbles bool) snarl.Model {
	g := &generator{r: r, bubbles: bubbles}
	for i := range components {
		name := fmt.Sprintf("root%d", i)
		g.m.Chains = append(g.m.Chains, snarl.ChainDef{
			Name:     name,
			Root:     true,
			Reversed: r.IntN(4) == 0,
			Children: g.children(0),
		})
	}
	return g.m
}

type generator struct {
	r       *rand.Rand
	m       snarl.Model
	next    uint64
	names   int
	bubbles bool
}

func (g *generator) node() string {
	g.next++
	id := g.next
	g.m.Nodes = append(g.m.Nodes, snarl.NodeDef{
		ID:       id,
		Length:   uint64(1 + g.r.IntN(8)),
		Reversed: g.r.IntN(5) == 0,
	})
	for range g.r.IntN(3) {
		n := g.m.Nodes[len(g.m.Nodes)-1]
		g.m.Seeds = append(g.m.Seeds, snarl.SeedDef{
			Node:    id,
			Offset:  uint64(g.r.IntN(int(n.Length))),
			Reverse: g.r.IntN(3) == 0,
		})
	}
	return snarl.NodeRef(id)
}

func (g *generator) children(depth int) []string {
	var out []string
	for range 1 + g.r.IntN(4) {
		if g.bubbles && depth < 3 && g.r.IntN(3) == 0 {
			out = append(out, g.bubble(depth))
			continue
		}
		out = append(out, g.node())
	}
	return out
}

func (g *generator) bubble(depth int) string {
	g.names++
	b := snarl.BubbleDef{
		Name:     fmt.Sprintf("b%d", g.names),
		Kind:     snarl.BubbleSimple,
		Length:   uint64(1 + g.r.IntN(5)),
		Reversed: g.r.IntN(6) == 0,
	}
	if g.r.IntN(2) == 0 {
		b.Kind = snarl.BubbleComplex
	}
	width := 1 + g.r.IntN(3)
	for range width {
		g.names++
		c := snarl.ChainDef{
			Name:     fmt.Sprintf("c%d", g.names),
			Reversed: g.r.IntN(6) == 0,
			ToStart:  snarl.Dist(g.r.IntN(3)),
			ToEnd:    snarl.Dist(g.r.IntN(3)),
			Children: g.children(depth + 1),
		}
		g.m.Chains = append(g.m.Chains, c)
		b.Chains = append(b.Chains, c.Name)
	}
	for a := range width {
		for c := a + 1; c < width; c++ {
			if g.r.IntN(3) > 0 {
				b.Distances = append(b.Distances, snarl.RankDistance{A: a, B: c, Distance: snarl.Dist(g.r.IntN(10))})
			}
		}
	}
	g.m.Bubbles = append(g.m.Bubbles, b)
	return b.Name
}
