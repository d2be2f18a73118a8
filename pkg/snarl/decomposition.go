package snarl

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/ziptree/pkg/ziptree"
)

// Sentinel errors returned by [Compile] and [Decomposition] lookups.
var (
	// ErrDuplicateID is returned when two definitions share a name or id.
	ErrDuplicateID = errors.New("snarl: duplicate id")

	// ErrUnknownChild is returned when a chain or bubble references a
	// definition that does not exist.
	ErrUnknownChild = errors.New("snarl: unknown child")

	// ErrSharedChild is returned when a node, chain or bubble is listed as
	// the child of more than one parent.
	ErrSharedChild = errors.New("snarl: child has several parents")

	// ErrDetached is returned for chains or bubbles that are not reachable
	// from any root chain.
	ErrDetached = errors.New("snarl: definition not reachable from a root chain")

	// ErrBadBubble is returned for bubbles with an unknown kind, no child
	// chains, or distances naming ranks they do not have.
	ErrBadBubble = errors.New("snarl: invalid bubble")

	// ErrUnknownNode is returned when a seed or lookup names a node that
	// is not part of the decomposition.
	ErrUnknownNode = errors.New("snarl: unknown node")

	// ErrOffset is returned when a seed offset lies outside its node.
	ErrOffset = errors.New("snarl: offset outside node")
)

// scope is one snarl tree node of the decomposition.
type scope struct {
	id        string
	kind      ziptree.Kind
	parent    *scope
	reversed  bool
	offset    ziptree.Distance
	length    ziptree.Distance
	rank      int
	toStart   ziptree.Distance
	toEnd     ziptree.Distance
	distances map[[2]int]ziptree.Distance
}

// Decomposition is a compiled, read-only snarl decomposition. It hands out
// [ZipCode] addresses for nodes and answers distances between branches of
// complex bubbles, so it serves as the [ziptree.Oracle] for trees built
// over its seeds.
type Decomposition struct {
	addresses  map[uint64]ZipCode
	lengths    map[uint64]uint64
	components []string
}

// Compile resolves the references of m into a decomposition.
//
// Chain children are laid out in order and receive prefix-sum offsets; a
// chain's length is the sum of its children. Bubble children are ranked in
// listing order. A node that no chain lists becomes a component of its own,
// and a chain inside a bubble holding exactly one node becomes a trivial
// chain whose address ends at the chain.
func Compile(m Model) (*Decomposition, error) {
	c := compiler{
		nodes:   make(map[string]NodeDef),
		chains:  make(map[string]ChainDef),
		bubbles: make(map[string]BubbleDef),
		parent:  make(map[string]string),
		dec: &Decomposition{
			addresses: make(map[uint64]ZipCode),
			lengths:   make(map[uint64]uint64),
		},
	}
	if err := c.index(m); err != nil {
		return nil, err
	}
	if err := c.link(m); err != nil {
		return nil, err
	}

	for _, ch := range m.Chains {
		if !ch.Root {
			continue
		}
		root := &scope{id: ch.Name, kind: ziptree.KindRootChain, reversed: ch.Reversed}
		if err := c.chain(root, ch); err != nil {
			return nil, err
		}
		c.dec.components = append(c.dec.components, ch.Name)
	}
	for _, n := range m.Nodes {
		ref := NodeRef(n.ID)
		if _, listed := c.parent[ref]; listed {
			continue
		}
		root := &scope{id: ref, kind: ziptree.KindRootNode, reversed: n.Reversed, length: ziptree.Distance(n.Length)}
		c.leaf(n.ID, root)
		c.dec.components = append(c.dec.components, ref)
	}

	for _, ch := range m.Chains {
		if !ch.Root && !c.seen[ch.Name] {
			return nil, fmt.Errorf("%w: chain %q", ErrDetached, ch.Name)
		}
	}
	for _, b := range m.Bubbles {
		if !c.seen[b.Name] {
			return nil, fmt.Errorf("%w: bubble %q", ErrDetached, b.Name)
		}
	}
	return c.dec, nil
}

type compiler struct {
	nodes   map[string]NodeDef
	chains  map[string]ChainDef
	bubbles map[string]BubbleDef
	parent  map[string]string
	seen    map[string]bool
	dec     *Decomposition
}

func (c *compiler) index(m Model) error {
	taken := make(map[string]bool)
	claim := func(id string) error {
		if taken[id] {
			return fmt.Errorf("%w: %q", ErrDuplicateID, id)
		}
		taken[id] = true
		return nil
	}
	for _, n := range m.Nodes {
		ref := NodeRef(n.ID)
		if err := claim(ref); err != nil {
			return err
		}
		c.nodes[ref] = n
		c.dec.lengths[n.ID] = n.Length
	}
	for _, ch := range m.Chains {
		if ch.Name == "" {
			return fmt.Errorf("%w: chain without a name", ErrUnknownChild)
		}
		if err := claim(ch.Name); err != nil {
			return err
		}
		c.chains[ch.Name] = ch
	}
	for _, b := range m.Bubbles {
		if b.Name == "" {
			return fmt.Errorf("%w: bubble without a name", ErrBadBubble)
		}
		if err := claim(b.Name); err != nil {
			return err
		}
		c.bubbles[b.Name] = b
	}
	return nil
}

// link records the parent of every referenced definition and checks that
// references resolve.
func (c *compiler) link(m Model) error {
	c.seen = make(map[string]bool)
	adopt := func(child, parent string) error {
		if prev, ok := c.parent[child]; ok {
			return fmt.Errorf("%w: %q listed by %q and %q", ErrSharedChild, child, prev, parent)
		}
		c.parent[child] = parent
		return nil
	}
	for _, ch := range m.Chains {
		if len(ch.Children) == 0 {
			return fmt.Errorf("%w: chain %q has no children", ErrUnknownChild, ch.Name)
		}
		for _, ref := range ch.Children {
			_, isNode := c.nodes[ref]
			_, isBubble := c.bubbles[ref]
			if !isNode && !isBubble {
				return fmt.Errorf("%w: %q in chain %q", ErrUnknownChild, ref, ch.Name)
			}
			if err := adopt(ref, ch.Name); err != nil {
				return err
			}
		}
	}
	for _, b := range m.Bubbles {
		if b.Kind != BubbleSimple && b.Kind != BubbleComplex {
			return fmt.Errorf("%w: %q has kind %q", ErrBadBubble, b.Name, b.Kind)
		}
		if len(b.Chains) == 0 {
			return fmt.Errorf("%w: %q has no chains", ErrBadBubble, b.Name)
		}
		for _, name := range b.Chains {
			ch, ok := c.chains[name]
			if !ok {
				return fmt.Errorf("%w: chain %q in bubble %q", ErrUnknownChild, name, b.Name)
			}
			if ch.Root {
				return fmt.Errorf("%w: root chain %q inside bubble %q", ErrSharedChild, name, b.Name)
			}
			if err := adopt(name, b.Name); err != nil {
				return err
			}
		}
		for _, d := range b.Distances {
			if d.A < 0 || d.B < 0 || d.A >= len(b.Chains) || d.B >= len(b.Chains) {
				return fmt.Errorf("%w: %q has no ranks %d and %d", ErrBadBubble, b.Name, d.A, d.B)
			}
		}
	}
	return nil
}

// chain lays out the children of ch below s, which is the chain's scope.
func (c *compiler) chain(s *scope, ch ChainDef) error {
	if c.seen[ch.Name] {
		return fmt.Errorf("%w: chain %q nests inside itself", ErrSharedChild, ch.Name)
	}
	c.seen[ch.Name] = true

	var prefix ziptree.Distance
	for _, ref := range ch.Children {
		if n, ok := c.nodes[ref]; ok {
			child := &scope{
				id:       ref,
				kind:     ziptree.KindNode,
				parent:   s,
				reversed: n.Reversed,
				offset:   prefix,
				length:   ziptree.Distance(n.Length),
			}
			c.leaf(n.ID, child)
			prefix = ziptree.Sum(prefix, child.length)
			continue
		}

		b := c.bubbles[ref]
		if c.seen[b.Name] {
			return fmt.Errorf("%w: bubble %q nests inside itself", ErrSharedChild, b.Name)
		}
		c.seen[b.Name] = true
		bubble := &scope{
			id:       b.Name,
			kind:     ziptree.KindSimpleBubble,
			parent:   s,
			reversed: b.Reversed,
			offset:   prefix,
			length:   ziptree.Distance(b.Length),
		}
		if b.Kind == BubbleComplex {
			bubble.kind = ziptree.KindComplexBubble
			bubble.distances = make(map[[2]int]ziptree.Distance, len(b.Distances))
			for _, d := range b.Distances {
				bubble.distances[rankPair(d.A, d.B)] = ziptree.Distance(d.Distance)
			}
		}
		for rank, name := range b.Chains {
			if err := c.child(bubble, rank, c.chains[name]); err != nil {
				return err
			}
		}
		prefix = ziptree.Sum(prefix, bubble.length)
	}
	s.length = prefix
	return nil
}

// child lays out a chain inside bubble b.
func (c *compiler) child(b *scope, rank int, ch ChainDef) error {
	s := &scope{
		id:       ch.Name,
		kind:     ziptree.KindChain,
		parent:   b,
		reversed: ch.Reversed,
		rank:     rank,
		toStart:  ziptree.Distance(ch.ToStart),
		toEnd:    ziptree.Distance(ch.ToEnd),
	}
	if len(ch.Children) == 1 {
		if n, ok := c.nodes[ch.Children[0]]; ok {
			// Trivial chain: the node is the chain.
			c.seen[ch.Name] = true
			s.length = ziptree.Distance(n.Length)
			s.reversed = ch.Reversed != n.Reversed
			c.leaf(n.ID, s)
			return nil
		}
	}
	return c.chain(s, ch)
}

// leaf records the address ending at s for node id.
func (c *compiler) leaf(id uint64, s *scope) {
	var path ZipCode
	for p := s; p != nil; p = p.parent {
		path = append(path, p)
	}
	slices.Reverse(path)
	c.dec.addresses[id] = path
}

func rankPair(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// Address returns the hierarchical address of node id.
func (d *Decomposition) Address(id uint64) (ZipCode, error) {
	z, ok := d.addresses[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	return z, nil
}

// NodeLength returns the length of node id.
func (d *Decomposition) NodeLength(id uint64) (uint64, bool) {
	n, ok := d.lengths[id]
	return n, ok
}

// Components returns the component identifiers in definition order: root
// chains first, then nodes that form components of their own.
func (d *Decomposition) Components() []string {
	return slices.Clone(d.components)
}

// Seeds resolves seed definitions into seeds for [ziptree.Build].
func (d *Decomposition) Seeds(defs []SeedDef) ([]ziptree.Seed, error) {
	seeds := make([]ziptree.Seed, 0, len(defs))
	for i, def := range defs {
		z, err := d.Address(def.Node)
		if err != nil {
			return nil, fmt.Errorf("seed %d: %w", i, err)
		}
		if def.Offset >= d.lengths[def.Node] {
			return nil, fmt.Errorf("seed %d: %w: offset %d on node %d of length %d",
				i, ErrOffset, def.Offset, def.Node, d.lengths[def.Node])
		}
		seeds = append(seeds, ziptree.Seed{
			Pos:  ziptree.Position{Node: def.Node, Offset: def.Offset, Reverse: def.Reverse},
			Addr: z,
		})
	}
	return seeds, nil
}

// DistanceInBubble implements [ziptree.Oracle]. Pairs the model does not
// list are unreachable; a chain is at distance 0 from itself.
func (d *Decomposition) DistanceInBubble(a ziptree.Address, depth, rankA, rankB int) ziptree.Distance {
	z, ok := a.(ZipCode)
	if !ok || depth < 0 || depth >= len(z) {
		return ziptree.Unreachable
	}
	if rankA == rankB {
		return 0
	}
	if dist, ok := z[depth].distances[rankPair(rankA, rankB)]; ok {
		return dist
	}
	return ziptree.Unreachable
}

// Load compiles m and resolves its seeds.
func Load(m Model) (*Decomposition, []ziptree.Seed, error) {
	d, err := Compile(m)
	if err != nil {
		return nil, nil, err
	}
	seeds, err := d.Seeds(m.Seeds)
	if err != nil {
		return nil, nil, err
	}
	return d, seeds, nil
}

// ParseNodeRef parses a chain child reference produced by [NodeRef].
func ParseNodeRef(ref string) (uint64, bool) {
	rest, ok := strings.CutPrefix(ref, "n")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(rest, 10, 64)
	return id, err == nil
}
