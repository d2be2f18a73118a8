package ziptree

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// Tree is an immutable flat tree over a seed collection.
//
// A Tree is safe for concurrent use by any number of forward and reverse
// traversals. The seed collection passed to [Build] or [FromItems] must
// not be modified while the tree is in use.
type Tree struct {
	items []Item
	seeds []Seed
	pos   []int // seed index -> item position, -1 if absent
}

func newTree(items []Item, seeds []Seed) *Tree {
	pos := make([]int, len(seeds))
	for i := range pos {
		pos[i] = -1
	}
	for i, it := range items {
		if it.Kind == ItemSeed {
			pos[it.Seed()] = i
		}
	}
	return &Tree{items: items, seeds: seeds, pos: pos}
}

// FromItems attaches a previously encoded item sequence to its seed
// collection. The items are validated first, so a tree returned without
// error is as trustworthy as one produced by [Build].
func FromItems(items []Item, seeds []Seed) (*Tree, error) {
	if err := Validate(items); err != nil {
		return nil, err
	}
	for i, it := range items {
		if it.Kind == ItemSeed && it.Seed() >= len(seeds) {
			return nil, fmt.Errorf("%w: item %d references seed %d of %d", ErrSeedOutOfRange, i, it.Seed(), len(seeds))
		}
	}
	return newTree(slices.Clone(items), seeds), nil
}

// Len returns the number of items in the store.
func (t *Tree) Len() int { return len(t.items) }

// Item returns the item at position i.
func (t *Tree) Item(i int) Item { return t.items[i] }

// Items returns a copy of the item sequence.
func (t *Tree) Items() []Item { return slices.Clone(t.items) }

// SeedCount returns the size of the seed collection.
func (t *Tree) SeedCount() int { return len(t.seeds) }

// Seed returns seed i of the collection.
func (t *Tree) Seed(i int) Seed { return t.seeds[i] }

// Position returns the item position of seed i.
func (t *Tree) Position(seed int) (int, bool) {
	if seed < 0 || seed >= len(t.pos) || t.pos[seed] < 0 {
		return 0, false
	}
	return t.pos[seed], true
}

// Seeds yields seed indices in encoded order.
func (t *Tree) Seeds() iter.Seq[int] {
	return func(yield func(int) bool) {
		for _, it := range t.items {
			if it.Kind == ItemSeed && !yield(it.Seed()) {
				return
			}
		}
	}
}

// All yields each seed's item position together with its seed index, in
// encoded order. The position is a valid start for [Tree.Reverse].
func (t *Tree) All() iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		for i, it := range t.items {
			if it.Kind == ItemSeed && !yield(i, it.Seed()) {
				return
			}
		}
	}
}

// Hit is one seed reached by a reverse traversal.
type Hit struct {
	Seed     int
	Distance Distance
}

// Lookback collects every seed a reverse traversal from pos reaches within
// limit.
func (t *Tree) Lookback(pos int, limit Distance) ([]Hit, error) {
	it := t.Reverse(pos, limit)
	var hits []Hit
	for seed, dist := range it.All() {
		hits = append(hits, Hit{Seed: seed, Distance: dist})
	}
	return hits, it.Err()
}

// String renders the store in bracket notation, for example
// "[ s0 4 s1 1 s2 ]".
func (t *Tree) String() string {
	var b strings.Builder
	for i, it := range t.items {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(it.String())
	}
	return b.String()
}

// Stats summarizes the shape of a tree.
type Stats struct {
	Items       int
	Seeds       int
	Chains      int
	Snarls      int
	Edges       int
	Unreachable int
	MaxNesting  int
}

// Stats counts items per kind and the deepest bracket nesting.
func (t *Tree) Stats() Stats {
	s := Stats{Items: len(t.items)}
	depth := 0
	for _, it := range t.items {
		switch it.Kind {
		case ItemSeed:
			s.Seeds++
		case ItemChainStart:
			s.Chains++
			depth++
		case ItemSnarlStart:
			s.Snarls++
			depth++
		case ItemChainEnd, ItemSnarlEnd:
			depth--
		case ItemEdge:
			s.Edges++
			if it.Value == Unreachable {
				s.Unreachable++
			}
		case ItemSiblingCount:
		}
		s.MaxNesting = max(s.MaxNesting, depth)
	}
	return s
}
