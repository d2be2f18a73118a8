package ziptree

import "fmt"

// ItemKind tags the variants of [Item].
type ItemKind uint8

// Item kinds. The numeric values are part of the persisted store format.
const (
	ItemSeed ItemKind = iota
	ItemSnarlStart
	ItemSnarlEnd
	ItemChainStart
	ItemChainEnd
	ItemEdge
	ItemSiblingCount
)

var itemKindNames = [...]string{
	ItemSeed:         "seed",
	ItemSnarlStart:   "snarl_start",
	ItemSnarlEnd:     "snarl_end",
	ItemChainStart:   "chain_start",
	ItemChainEnd:     "chain_end",
	ItemEdge:         "edge",
	ItemSiblingCount: "sibling_count",
}

// String returns the snake_case name of the kind.
func (k ItemKind) String() string {
	if int(k) < len(itemKindNames) {
		return itemKindNames[k]
	}
	return fmt.Sprintf("item_kind(%d)", uint8(k))
}

// Valid reports whether k is one of the defined kinds.
func (k ItemKind) Valid() bool { return k <= ItemSiblingCount }

// Item is one entry of the flat tree store.
//
// Value holds the seed index for [ItemSeed], the distance for [ItemEdge]
// and the count for [ItemSiblingCount]. Bracket items carry no payload and
// leave Value zero.
type Item struct {
	Kind  ItemKind
	Value Distance
}

// Seed returns the seed index of an [ItemSeed] item.
func (it Item) Seed() int { return int(it.Value) }

// String renders the item in the bracket notation used by [Tree.String].
func (it Item) String() string {
	switch it.Kind {
	case ItemSeed:
		return fmt.Sprintf("s%d", it.Value)
	case ItemSnarlStart:
		return "("
	case ItemSnarlEnd:
		return ")"
	case ItemChainStart:
		return "["
	case ItemChainEnd:
		return "]"
	case ItemEdge:
		return it.Value.String()
	case ItemSiblingCount:
		return fmt.Sprintf("{%d}", it.Value)
	}
	return "?" + it.Kind.String()
}

func seedItem(i int) Item { return Item{Kind: ItemSeed, Value: Distance(i)} }
func edgeItem(d Distance) Item { return Item{Kind: ItemEdge, Value: d} }
func countItem(n int) Item { return Item{Kind: ItemSiblingCount, Value: Distance(n)} }
func bracketItem(k ItemKind) Item { return Item{Kind: k} }
