package ziptree

import (
	"errors"
	"fmt"
	"iter"
)

// ErrNotSeed is returned when a reverse traversal starts at a position that
// does not hold a seed.
var ErrNotSeed = errors.New("ziptree: start position is not a seed")

type walkState uint8

const (
	stateStart walkState = iota
	stateScanChain
	stateStackSnarl
	stateScanSnarl
	stateSkipChain
	stateDone
)

var walkStateNames = [...]string{
	stateStart:      "start",
	stateScanChain:  "scan_chain",
	stateStackSnarl: "stack_snarl",
	stateScanSnarl:  "scan_snarl",
	stateSkipChain:  "skip_chain",
	stateDone:       "done",
}

func (s walkState) String() string { return walkStateNames[s] }

// ReverseIterator walks a tree backward from one seed and yields every seed
// reachable within a distance limit, nearest scopes first.
//
// The walk is a pushdown automaton over one stack of running distances:
// the top is the distance to the chain being scanned, the entries below
// are saved distances for sibling chains of bubbles entered from their
// end. Chains whose distance exceeds the limit are skipped, and the walk
// stops once no saved distance is left to fall back to.
//
// Use it like a scanner:
//
//	it := tree.Reverse(pos, 150)
//	for it.Next() {
//	    fmt.Println(it.Seed(), it.Distance())
//	}
//	if err := it.Err(); err != nil { ... }
//
// A ReverseIterator must not be advanced from several goroutines at once.
type ReverseIterator struct {
	t     *Tree
	pos   int
	limit Distance
	state walkState
	stack []Distance

	// Bubble staging.
	base      Distance
	staged    int
	expected  int // -1 until a sibling count was read
	needCount bool
	fromStart bool // staging started at a chain start, not a bubble end

	skip int // bubble nesting while skipping a chain

	seed int
	dist Distance
	err  error
}

// Reverse returns a traversal that starts at item position pos, which
// must hold a seed (see [Tree.All] and [Tree.Position]). The start seed
// itself is not yielded.
func (t *Tree) Reverse(pos int, limit Distance) *ReverseIterator {
	return &ReverseIterator{t: t, pos: pos, limit: limit}
}

// Seed returns the seed index of the current hit.
func (it *ReverseIterator) Seed() int { return it.seed }

// Distance returns the accumulated distance of the current hit.
func (it *ReverseIterator) Distance() Distance { return it.dist }

// Err returns the error that ended the traversal, if any. Running out of
// items or of distance budget is not an error.
func (it *ReverseIterator) Err() error { return it.err }

// All yields the remaining hits as (seed, distance) pairs. Check
// [ReverseIterator.Err] once the loop ends.
func (it *ReverseIterator) All() iter.Seq2[int, Distance] {
	return func(yield func(int, Distance) bool) {
		for it.Next() {
			if !yield(it.seed, it.dist) {
				return
			}
		}
	}
}

// Next advances to the next reachable seed. It returns false when the
// traversal is exhausted or failed.
func (it *ReverseIterator) Next() bool {
	if it.state == stateStart {
		if it.pos < 0 || it.pos >= len(it.t.items) || it.t.items[it.pos].Kind != ItemSeed {
			it.err = fmt.Errorf("%w: position %d", ErrNotSeed, it.pos)
			it.state = stateDone
			return false
		}
		it.stack = append(it.stack[:0], 0)
		it.state = stateScanChain
		it.pos--
	}

	for it.state != stateDone {
		if it.pos < 0 {
			it.state = stateDone
			break
		}
		pos, item := it.pos, it.t.items[it.pos]
		it.pos--

		switch it.state {
		case stateScanChain:
			if it.scanChain(pos, item) {
				return true
			}
		case stateStackSnarl:
			it.stackSnarl(pos, item)
		case stateScanSnarl:
			it.scanSnarl(pos, item)
		case stateSkipChain:
			it.skipChain(pos, item)
		case stateStart, stateDone:
		}
	}
	return false
}

// scanChain reads the chain whose distance is on top of the stack and
// reports whether item produced a hit.
func (it *ReverseIterator) scanChain(pos int, item Item) bool {
	switch item.Kind {
	case ItemSeed:
		it.seed, it.dist = item.Seed(), it.top()
		return true
	case ItemEdge:
		d := Sum(it.top(), item.Value)
		it.stack[len(it.stack)-1] = d
		if !within(d, it.limit) {
			it.overLimit()
		}
	case ItemSnarlEnd:
		// Entering a bubble from its end: stage one distance per child
		// chain plus one for jumping straight to its start.
		it.stage(it.pop(), false)
	case ItemChainStart:
		if len(it.stack) > 1 {
			// End of a child chain of a staged bubble.
			it.pop()
			it.state = stateScanSnarl
			return false
		}
		// Leaving the chain the walk started in through its start: stage
		// its siblings in the enclosing bubble, if there is one.
		it.stage(it.pop(), true)
	case ItemSnarlStart, ItemChainEnd, ItemSiblingCount:
		it.corrupt(pos, item)
	default:
		it.corrupt(pos, item)
	}
	return false
}

func (it *ReverseIterator) stage(base Distance, fromStart bool) {
	it.base = base
	it.staged = 0
	it.expected = -1
	it.needCount = !fromStart
	it.fromStart = fromStart
	it.state = stateStackSnarl
}

// stackSnarl reads the distances stored in front of a bubble end or a
// chain start and pushes one running distance per entry. Entries are read
// in the order their chains will be met, so the last pushed is scanned
// first.
func (it *ReverseIterator) stackSnarl(pos int, item Item) {
	switch item.Kind {
	case ItemSiblingCount:
		if !it.needCount {
			it.corrupt(pos, item)
			return
		}
		it.expected = int(item.Value) + 2
		it.needCount = false
	case ItemEdge:
		if it.needCount {
			it.corrupt(pos, item)
			return
		}
		it.stack = append(it.stack, Sum(it.base, item.Value))
		it.staged++
	case ItemChainEnd:
		if it.staged == 0 {
			if it.fromStart {
				// The start of a root chain: the previous component begins.
				it.state = stateDone
				return
			}
			it.corrupt(pos, item)
			return
		}
		if it.expected >= 0 && it.staged != it.expected {
			it.corrupt(pos, item)
			return
		}
		it.enterChain()
	case ItemSnarlStart:
		if !it.fromStart || it.staged == 0 {
			it.corrupt(pos, item)
			return
		}
		// The walk started in the bubble's first chain; only the jump to
		// the bubble start remains.
		it.enterChain()
	case ItemSeed, ItemSnarlEnd, ItemChainStart:
		it.corrupt(pos, item)
	default:
		it.corrupt(pos, item)
	}
}

// scanSnarl moves between the child chains of a staged bubble.
func (it *ReverseIterator) scanSnarl(pos int, item Item) {
	switch item.Kind {
	case ItemEdge:
		// Sibling distances were already staged.
	case ItemChainEnd, ItemSnarlStart:
		it.enterChain()
	case ItemSeed, ItemSnarlEnd, ItemChainStart, ItemSiblingCount:
		it.corrupt(pos, item)
	default:
		it.corrupt(pos, item)
	}
}

// skipChain fast-forwards to the start of the chain being skipped.
func (it *ReverseIterator) skipChain(pos int, item Item) {
	switch item.Kind {
	case ItemSnarlEnd:
		it.skip++
	case ItemSnarlStart:
		it.skip--
		if it.skip < 0 {
			it.corrupt(pos, item)
		}
	case ItemChainStart:
		if it.skip == 0 {
			it.pop()
			it.state = stateScanSnarl
		}
	case ItemSeed, ItemEdge, ItemChainEnd, ItemSiblingCount:
	default:
		it.corrupt(pos, item)
	}
}

// enterChain continues scanning with the distance on top of the stack.
func (it *ReverseIterator) enterChain() {
	it.state = stateScanChain
	if !within(it.top(), it.limit) {
		it.overLimit()
	}
}

// overLimit handles a chain whose running distance exceeds the limit.
func (it *ReverseIterator) overLimit() {
	if len(it.stack) <= 1 {
		it.state = stateDone
		return
	}
	it.skip = 0
	it.state = stateSkipChain
}

func (it *ReverseIterator) top() Distance { return it.stack[len(it.stack)-1] }

func (it *ReverseIterator) pop() Distance {
	d := it.top()
	it.stack = it.stack[:len(it.stack)-1]
	return d
}

func (it *ReverseIterator) corrupt(pos int, item Item) {
	it.err = &CorruptError{Pos: pos, State: it.state.String(), Item: item}
	it.state = stateDone
}
