package snarl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/ziptree/pkg/snarl"
	"github.com/matzehuels/ziptree/pkg/ziptree"
)

func model() snarl.Model {
	return snarl.Model{
		Nodes: []snarl.NodeDef{
			{ID: 1, Length: 3},
			{ID: 2, Length: 1},
			{ID: 3, Length: 4, Reversed: true},
			{ID: 4, Length: 5},
			{ID: 5, Length: 2},
			{ID: 6, Length: 7},
		},
		Chains: []snarl.ChainDef{
			{Name: "chr1", Root: true, Children: []string{"n1", "b1", "n4"}},
			{Name: "left", Children: []string{"n2"}, ToEnd: 1},
			{Name: "right", Reversed: true, Children: []string{"n3", "n5"}, ToStart: snarl.Inf},
		},
		Bubbles: []snarl.BubbleDef{{
			Name: "b1", Kind: snarl.BubbleComplex, Length: 6, Chains: []string{"left", "right"},
			Distances: []snarl.RankDistance{{A: 1, B: 0, Distance: 9}},
		}},
	}
}

func TestCompileAddresses(t *testing.T) {
	dec, err := snarl.Compile(model())
	require.NoError(t, err)
	assert.Equal(t, []string{"chr1", "n6"}, dec.Components())

	z, err := dec.Address(4)
	require.NoError(t, err)
	assert.Equal(t, "chr1/n4", z.String())
	assert.Equal(t, 1, z.Depth())
	assert.Equal(t, ziptree.KindRootChain, z.Kind(0))
	assert.Equal(t, ziptree.KindNode, z.Kind(1))
	assert.Equal(t, ziptree.Distance(9), z.OffsetInChain(1))
	assert.Equal(t, ziptree.Distance(14), z.Length(0))

	// Trivial chain: the address ends at the chain.
	z, err = dec.Address(2)
	require.NoError(t, err)
	assert.Equal(t, "chr1/b1/left", z.String())
	assert.Equal(t, ziptree.KindComplexBubble, z.Kind(1))
	assert.Equal(t, ziptree.KindChain, z.Kind(2))
	assert.Equal(t, ziptree.Distance(1), z.Length(2))
	assert.Equal(t, ziptree.Distance(1), z.DistanceToEnd(2))
	assert.Equal(t, 0, z.Rank(2))

	z, err = dec.Address(5)
	require.NoError(t, err)
	assert.Equal(t, "chr1/b1/right/n5", z.String())
	assert.True(t, z.IsReversed(2))
	assert.Equal(t, ziptree.Distance(4), z.OffsetInChain(3))
	assert.Equal(t, ziptree.Distance(6), z.Length(2))
	assert.Equal(t, ziptree.Unreachable, z.DistanceToStart(2))
	assert.Equal(t, 1, z.Rank(2))

	z, err = dec.Address(6)
	require.NoError(t, err)
	assert.Equal(t, "n6", z.String())
	assert.Equal(t, ziptree.KindRootNode, z.Kind(0))
	assert.Equal(t, "n6", z.Component())
}

func TestTrivialChainOrientation(t *testing.T) {
	m := model()
	m.Nodes[1].Reversed = true
	dec, err := snarl.Compile(m)
	require.NoError(t, err)

	z, err := dec.Address(2)
	require.NoError(t, err)
	assert.True(t, z.IsReversed(2))

	m.Chains[1].Reversed = true
	dec, err = snarl.Compile(m)
	require.NoError(t, err)
	z, err = dec.Address(2)
	require.NoError(t, err)
	assert.False(t, z.IsReversed(2))
}

func TestAddressEqual(t *testing.T) {
	dec, err := snarl.Compile(model())
	require.NoError(t, err)
	a, _ := dec.Address(3)
	b, _ := dec.Address(5)
	c, _ := dec.Address(2)

	assert.True(t, a.Equal(b, 2))
	assert.False(t, a.Equal(b, 3))
	assert.True(t, a.Equal(c, 1))
	assert.False(t, a.Equal(c, 2))
	assert.False(t, a.Equal(c, 5))
}

func TestDistanceInBubble(t *testing.T) {
	dec, err := snarl.Compile(model())
	require.NoError(t, err)
	z, _ := dec.Address(2)

	assert.Equal(t, ziptree.Distance(9), dec.DistanceInBubble(z, 1, 0, 1))
	assert.Equal(t, ziptree.Distance(9), dec.DistanceInBubble(z, 1, 1, 0))
	assert.Equal(t, ziptree.Distance(0), dec.DistanceInBubble(z, 1, 1, 1))
	assert.Equal(t, ziptree.Unreachable, dec.DistanceInBubble(z, 0, 0, 1))
	assert.Equal(t, ziptree.Unreachable, dec.DistanceInBubble(z, 7, 0, 1))
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*snarl.Model)
		want   error
	}{
		{"duplicate node", func(m *snarl.Model) { m.Nodes = append(m.Nodes, snarl.NodeDef{ID: 1, Length: 1}) }, snarl.ErrDuplicateID},
		{"chain named like a bubble", func(m *snarl.Model) { m.Chains[1].Name = "b1" }, snarl.ErrDuplicateID},
		{"unknown child", func(m *snarl.Model) { m.Chains[0].Children[2] = "n99" }, snarl.ErrUnknownChild},
		{"empty chain", func(m *snarl.Model) { m.Chains[1].Children = nil }, snarl.ErrUnknownChild},
		{"shared node", func(m *snarl.Model) { m.Chains[1].Children = []string{"n1"} }, snarl.ErrSharedChild},
		{"root chain in bubble", func(m *snarl.Model) { m.Chains[1].Root = true }, snarl.ErrSharedChild},
		{"bad kind", func(m *snarl.Model) { m.Bubbles[0].Kind = "weird" }, snarl.ErrBadBubble},
		{"bubble without chains", func(m *snarl.Model) { m.Bubbles[0].Chains = nil }, snarl.ErrBadBubble},
		{"distance rank out of range", func(m *snarl.Model) { m.Bubbles[0].Distances[0].B = 2 }, snarl.ErrBadBubble},
		{"detached bubble", func(m *snarl.Model) { m.Chains[0].Children = []string{"n1", "n4"} }, snarl.ErrDetached},
		{"detached chain", func(m *snarl.Model) {
			m.Chains = append(m.Chains, snarl.ChainDef{Name: "lost", Children: []string{"n6"}})
		}, snarl.ErrDetached},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := model()
			tt.mutate(&m)
			_, err := snarl.Compile(m)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSeeds(t *testing.T) {
	dec, err := snarl.Compile(model())
	require.NoError(t, err)

	seeds, err := dec.Seeds([]snarl.SeedDef{{Node: 3, Offset: 2, Reverse: true}})
	require.NoError(t, err)
	require.Len(t, seeds, 1)
	assert.Equal(t, ziptree.Position{Node: 3, Offset: 2, Reverse: true}, seeds[0].Pos)
	assert.Equal(t, "3-2", seeds[0].Pos.String())

	_, err = dec.Seeds([]snarl.SeedDef{{Node: 3, Offset: 4}})
	assert.ErrorIs(t, err, snarl.ErrOffset)

	_, err = dec.Seeds([]snarl.SeedDef{{Node: 42}})
	assert.ErrorIs(t, err, snarl.ErrUnknownNode)
}

func TestNodeRef(t *testing.T) {
	assert.Equal(t, "n17", snarl.NodeRef(17))
	id, ok := snarl.ParseNodeRef("n17")
	assert.True(t, ok)
	assert.Equal(t, uint64(17), id)

	_, ok = snarl.ParseNodeRef("b1")
	assert.False(t, ok)
	_, ok = snarl.ParseNodeRef("nx")
	assert.False(t, ok)
}
