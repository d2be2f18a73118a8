package ziptree

import "fmt"

// Option configures [Build].
type Option func(*buildConfig)

type buildConfig struct {
	trace func(format string, args ...any)
}

// WithTracer routes the encoder's per-scope decisions to fn.
func WithTracer(fn func(format string, args ...any)) Option {
	return func(c *buildConfig) {
		if fn != nil {
			c.trace = fn
		}
	}
}

// sibling is one entry of the per-depth scratch list.
//
// For a chain the list holds a single slot: the last child and the offset
// it ended at. For a bubble it holds the start bound followed by one entry
// per child chain opened so far, identified by the seed that opened it.
type sibling struct {
	kind   ItemKind
	offset Distance
	seed   int
}

type encoder struct {
	seeds    []Seed
	oracle   Oracle
	orient   [][]bool
	items    []Item
	siblings [][]sibling
	trace    func(format string, args ...any)
}

// Build sorts seeds and encodes them into a flat tree in one pass.
//
// oracle answers distances between branches of complex bubbles; a nil
// oracle treats them as unreachable. An empty seed slice yields an empty
// tree. Construction fails with an error wrapping [ErrInvariant] when the
// addresses are inconsistent, and the resulting store is always validated
// before it is returned.
func Build(seeds []Seed, oracle Oracle, opts ...Option) (*Tree, error) {
	cfg := buildConfig{trace: func(string, ...any) {}}
	for _, opt := range opts {
		opt(&cfg)
	}

	order, orient := sortSeeds(seeds)
	e := &encoder{
		seeds:  seeds,
		oracle: oracle,
		orient: orient,
		items:  make([]Item, 0, 4*len(seeds)),
		trace:  cfg.trace,
	}

	prev := -1
	for _, cur := range order {
		if err := e.add(prev, cur); err != nil {
			return nil, err
		}
		prev = cur
	}
	if prev >= 0 {
		for d := seeds[prev].Addr.Depth(); d >= 0; d-- {
			if err := e.close(prev, d); err != nil {
				return nil, err
			}
		}
	}

	if err := Validate(e.items); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvariant, err)
	}
	return newTree(e.items, seeds), nil
}

// add closes the scopes the previous seed leaves and opens the ones the
// current seed enters.
func (e *encoder) add(prev, cur int) error {
	a := e.seeds[cur].Addr
	leaf := a.Depth()
	for len(e.siblings) <= leaf {
		e.siblings = append(e.siblings, nil)
	}

	diff := 0
	if prev >= 0 {
		p := e.seeds[prev].Addr
		shared := min(leaf, p.Depth())
		same := true
		for diff = 0; diff <= shared; diff++ {
			if !a.Equal(p, diff) {
				same = false
				break
			}
		}
		if same {
			diff = shared
		} else {
			for d := p.Depth(); d >= diff; d-- {
				if err := e.close(prev, d); err != nil {
					return err
				}
			}
		}
	}

	for d := diff; d <= leaf; d++ {
		if err := e.open(cur, d); err != nil {
			return err
		}
	}
	return nil
}

// close ends the scope at depth d of seed s, if one is open there.
func (e *encoder) close(s, d int) error {
	sibs := e.siblings[d]
	if len(sibs) == 0 {
		return nil
	}
	a := e.seeds[s].Addr

	switch k := a.Kind(d); k {
	case KindNode:
		// Nodes record themselves in their parent chain's slot.
	case KindChain:
		end, err := e.delta(s, d, a.Length(d), sibs[len(sibs)-1].offset)
		if err != nil {
			return err
		}
		e.emit(edgeItem(end), bracketItem(ItemChainEnd))
	case KindRootChain, KindRootNode:
		e.emit(bracketItem(ItemChainEnd))
	case KindSimpleBubble, KindComplexBubble:
		if len(sibs) < 2 {
			return e.fail(s, d, fmt.Errorf("%w: bubble closed without a child chain", ErrInvariant))
		}
		reversed := e.orient[s][d]
		for j := len(sibs) - 1; j >= 0; j-- {
			if sibs[j].kind == ItemSnarlStart {
				e.emit(edgeItem(a.Length(d)))
				continue
			}
			child := e.seeds[sibs[j].seed].Addr
			if reversed {
				e.emit(edgeItem(child.DistanceToStart(d + 1)))
			} else {
				e.emit(edgeItem(child.DistanceToEnd(d + 1)))
			}
		}
		e.emit(countItem(len(sibs)-2), bracketItem(ItemSnarlEnd))
	default:
		return e.fail(s, d, fmt.Errorf("%w: %s", ErrUnknownKind, k))
	}

	e.trace("close %s at depth %d after seed %d", a.Kind(d), d, s)
	e.siblings[d] = sibs[:0]
	return nil
}

// open enters the scope at depth d of seed s, or extends it when it is
// already open.
func (e *encoder) open(s, d int) error {
	seed := e.seeds[s]
	a := seed.Addr
	leaf := a.Depth()
	orient := e.orient[s]

	switch k := a.Kind(d); k {
	case KindNode, KindRootNode, KindSimpleBubble, KindComplexBubble:
		if k == KindRootNode && len(e.siblings[d]) == 0 {
			e.emit(bracketItem(ItemChainStart))
			e.siblings[d] = append(e.siblings[d], sibling{kind: ItemChainStart})
			e.trace("open %s at depth %d for seed %d", k, d, s)
		}

		var off Distance
		slot := d
		if k != KindRootNode {
			if d == 0 {
				return e.fail(s, d, fmt.Errorf("%w: %s at the root level", ErrInvariant, k))
			}
			if err := e.checkPlacement(s, d, true); err != nil {
				return err
			}
			off = chainOffset(a, d, orient[d-1])
			slot = d - 1
		}
		if d == leaf {
			if err := e.checkPlacement(s, d, false); err != nil {
				return err
			}
			off = Sum(off, leafOffset(seed, orient[d]))
		}

		if len(e.siblings[slot]) != 1 {
			return e.fail(s, d, fmt.Errorf("%w: parent chain holds %d slots", ErrInvariant, len(e.siblings[slot])))
		}
		last := e.siblings[slot][0]
		firstOfRoot := last.kind == ItemChainStart &&
			(d == 0 || (d == 1 && a.Kind(0) == KindRootChain))
		if !firstOfRoot {
			gap, err := e.delta(s, d, off, last.offset)
			if err != nil {
				return err
			}
			e.emit(edgeItem(gap))
		}

		next := sibling{kind: ItemSeed, offset: off}
		if k == KindSimpleBubble || k == KindComplexBubble {
			e.emit(bracketItem(ItemSnarlStart))
			e.siblings[d] = append(e.siblings[d][:0], sibling{kind: ItemSnarlStart})
			next = sibling{kind: ItemSnarlEnd, offset: Sum(off, a.Length(d))}
			e.trace("open %s at depth %d for seed %d", k, d, s)
		} else {
			e.emit(seedItem(s))
		}
		e.siblings[slot][0] = next

	case KindChain, KindRootChain:
		if len(e.siblings[d]) == 0 {
			if k == KindChain {
				if err := e.enterBubbleChild(s, d); err != nil {
					return err
				}
			}
			e.emit(bracketItem(ItemChainStart))
			e.siblings[d] = append(e.siblings[d], sibling{kind: ItemChainStart})
			if k == KindChain {
				e.siblings[d-1] = append(e.siblings[d-1], sibling{kind: ItemChainStart, seed: s})
			}
			e.trace("open %s at depth %d for seed %d", k, d, s)
		}

		if d == leaf {
			// A trivial chain: the chain is the leaf itself.
			if err := e.checkPlacement(s, d, false); err != nil {
				return err
			}
			off := leafOffset(seed, orient[d])
			last := e.siblings[d][len(e.siblings[d])-1]
			if !(k == KindRootChain && last.kind == ItemChainStart) {
				gap, err := e.delta(s, d, off, last.offset)
				if err != nil {
					return err
				}
				e.emit(edgeItem(gap))
			}
			e.emit(seedItem(s))
			e.siblings[d] = append(e.siblings[d][:0], sibling{kind: ItemSeed, offset: off})
		}

	default:
		return e.fail(s, d, fmt.Errorf("%w: %s", ErrUnknownKind, k))
	}
	return nil
}

// enterBubbleChild emits the distances from every sibling already recorded
// in the parent bubble to the chain at depth d of seed s. The nearest
// previous sibling comes first and the bubble's start bound last.
func (e *encoder) enterBubbleChild(s, d int) error {
	a := e.seeds[s].Addr
	if d == 0 {
		return e.fail(s, d, fmt.Errorf("%w: chain without a parent bubble", ErrInvariant))
	}
	parent := e.siblings[d-1]
	if len(parent) == 0 {
		return e.fail(s, d, fmt.Errorf("%w: parent bubble is not open", ErrInvariant))
	}
	bubble := a.Kind(d - 1)
	reversed := e.orient[s][d-1]

	for j := len(parent) - 1; j >= 0; j-- {
		if parent[j].kind == ItemSnarlStart {
			if reversed {
				e.emit(edgeItem(a.DistanceToEnd(d)))
			} else {
				e.emit(edgeItem(a.DistanceToStart(d)))
			}
			continue
		}

		var dist Distance
		switch bubble {
		case KindSimpleBubble:
			// Branches of a simple bubble only meet at its bounds.
			dist = Unreachable
		case KindComplexBubble:
			dist = Unreachable
			if e.oracle != nil {
				prev := e.seeds[parent[j].seed].Addr
				dist = e.oracle.DistanceInBubble(a, d-1, prev.Rank(d), a.Rank(d))
			}
		case KindNode, KindRootNode, KindChain, KindRootChain:
			return e.fail(s, d, fmt.Errorf("%w: chain inside a %s", ErrInvariant, bubble))
		default:
			return e.fail(s, d, fmt.Errorf("%w: %s", ErrUnknownKind, bubble))
		}
		e.emit(edgeItem(dist))
	}
	return nil
}

// checkPlacement fails when the scope at depth d of seed s does not fit
// inside its parent chain (inChain), or when d is the leaf and the seed's
// offset lies outside it. Offsets derived from such addresses would
// otherwise clamp to zero.
func (e *encoder) checkPlacement(s, d int, inChain bool) error {
	seed := e.seeds[s]
	a := seed.Addr
	n := a.Length(d)
	if inChain {
		parent, off := a.Length(d-1), a.OffsetInChain(d)
		if parent != Unreachable && n != Unreachable && off != Unreachable && off+n > parent {
			return e.fail(s, d, fmt.Errorf("%w: child at %d with length %d overruns chain of length %d",
				ErrInvariant, off, n, parent))
		}
	}
	if d == a.Depth() && n != Unreachable && Distance(seed.Pos.Offset) >= n {
		return e.fail(s, d, fmt.Errorf("%w: offset %d outside leaf of length %d", ErrInvariant, seed.Pos.Offset, n))
	}
	return nil
}

// delta is the distance from an earlier offset to a later one in the same
// scope. Unreachable operands stay unreachable.
func (e *encoder) delta(s, d int, cur, prev Distance) (Distance, error) {
	if cur == Unreachable || prev == Unreachable {
		return Unreachable, nil
	}
	if cur < prev {
		return 0, e.fail(s, d, fmt.Errorf("%w: offset %d precedes %d", ErrInvariant, cur, prev))
	}
	return cur - prev, nil
}

func (e *encoder) emit(items ...Item) {
	e.items = append(e.items, items...)
}

func (e *encoder) fail(s, d int, err error) error {
	return &BuildError{Seed: s, Depth: d, Err: err}
}
