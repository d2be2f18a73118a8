package ziptree

import "fmt"

// scope is an open bracket during validation.
type scope struct {
	kind     ItemKind // ItemChainStart or ItemSnarlStart
	root     bool
	edges    int // consecutive distance items since the last child
	children int
	counted  bool
}

// Validate checks that items form a well-formed flat tree: brackets nest,
// chains carry exactly one distance between consecutive children (none
// before the first child of a root chain), every chain opened inside a
// bubble is preceded by one distance per earlier sibling plus the start
// bound, and every bubble closes with one distance per child chain plus
// the start bound, then a sibling count equal to its chains minus one.
func Validate(items []Item) error {
	var stack []*scope
	for i, it := range items {
		var top *scope
		if len(stack) > 0 {
			top = stack[len(stack)-1]
		}
		malformed := func(why string) error {
			return fmt.Errorf("%w: %s at %d: %s", ErrMalformed, it.Kind, i, why)
		}

		switch it.Kind {
		case ItemEdge:
			if top == nil {
				return malformed("distance outside any scope")
			}
			top.edges++
			if top.kind == ItemChainStart && top.edges > 1 {
				return malformed("two distances in a row inside a chain")
			}

		case ItemSeed, ItemSnarlStart:
			if top == nil || top.kind != ItemChainStart {
				return malformed("chain child outside a chain")
			}
			first := top.root && top.children == 0
			if (first && top.edges != 0) || (!first && top.edges != 1) {
				return malformed(fmt.Sprintf("expected one distance before child, found %d", top.edges))
			}
			top.children++
			top.edges = 0
			if it.Kind == ItemSnarlStart {
				stack = append(stack, &scope{kind: ItemSnarlStart})
			}

		case ItemChainStart:
			switch {
			case top == nil:
				stack = append(stack, &scope{kind: ItemChainStart, root: true})
			case top.kind == ItemSnarlStart:
				if top.counted {
					return malformed("chain after sibling count")
				}
				if top.edges != top.children+1 {
					return malformed(fmt.Sprintf("expected %d distances before chain, found %d", top.children+1, top.edges))
				}
				top.children++
				top.edges = 0
				stack = append(stack, &scope{kind: ItemChainStart})
			default:
				return malformed("chain opened directly inside a chain")
			}

		case ItemChainEnd:
			if top == nil || top.kind != ItemChainStart {
				return fmt.Errorf("%w: chain end at %d without matching start", ErrUnbalanced, i)
			}
			if top.children == 0 {
				return malformed("empty chain")
			}
			if (top.root && top.edges != 0) || (!top.root && top.edges != 1) {
				return malformed("wrong number of distances before chain end")
			}
			stack = stack[:len(stack)-1]

		case ItemSiblingCount:
			if top == nil || top.kind != ItemSnarlStart || top.counted {
				return malformed("sibling count outside a bubble")
			}
			if top.children == 0 || it.Value != Distance(top.children-1) {
				return malformed(fmt.Sprintf("count %d for %d chains", it.Value, top.children))
			}
			if top.edges != top.children+1 {
				return malformed(fmt.Sprintf("expected %d closing distances, found %d", top.children+1, top.edges))
			}
			top.counted = true
			top.edges = 0

		case ItemSnarlEnd:
			if top == nil || top.kind != ItemSnarlStart {
				return fmt.Errorf("%w: bubble end at %d without matching start", ErrUnbalanced, i)
			}
			if !top.counted || i == 0 || items[i-1].Kind != ItemSiblingCount {
				return malformed("bubble end not preceded by its sibling count")
			}
			stack = stack[:len(stack)-1]

		default:
			return malformed("unknown item kind")
		}
	}
	if len(stack) > 0 {
		return fmt.Errorf("%w: %d scopes left open", ErrUnbalanced, len(stack))
	}
	return nil
}
