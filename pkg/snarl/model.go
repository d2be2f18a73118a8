package snarl

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/matzehuels/ziptree/pkg/ziptree"
)

// Model describes a snarl decomposition and a seed set. It is the document
// stored in workload files.
type Model struct {
	Name    string      `toml:"name,omitempty" json:"name,omitempty"`
	Nodes   []NodeDef   `toml:"node" json:"nodes"`
	Chains  []ChainDef  `toml:"chain" json:"chains"`
	Bubbles []BubbleDef `toml:"bubble,omitempty" json:"bubbles,omitempty"`
	Seeds   []SeedDef   `toml:"seed,omitempty" json:"seeds,omitempty"`
}

// NodeDef is a node of the sequence graph.
type NodeDef struct {
	ID       uint64 `toml:"id" json:"id"`
	Length   uint64 `toml:"length" json:"length"`
	Reversed bool   `toml:"reversed,omitempty" json:"reversed,omitempty"`
}

// ChainDef is a chain. Children are node references ("n<id>", see
// [NodeRef]) and bubble names, in chain order. A root chain is the top
// level of a component; every other chain belongs to exactly one bubble.
type ChainDef struct {
	Name     string   `toml:"name" json:"name"`
	Root     bool     `toml:"root,omitempty" json:"root,omitempty"`
	Reversed bool     `toml:"reversed,omitempty" json:"reversed,omitempty"`
	Children []string `toml:"children" json:"children"`
	ToStart  Dist     `toml:"to_start,omitempty" json:"to_start,omitempty"`
	ToEnd    Dist     `toml:"to_end,omitempty" json:"to_end,omitempty"`
}

// BubbleDef is a bubble inside a chain. Its child chains are ranked in
// listing order starting at 0.
type BubbleDef struct {
	Name      string         `toml:"name" json:"name"`
	Kind      string         `toml:"kind" json:"kind"`
	Length    uint64         `toml:"length" json:"length"`
	Reversed  bool           `toml:"reversed,omitempty" json:"reversed,omitempty"`
	Chains    []string       `toml:"chains" json:"chains"`
	Distances []RankDistance `toml:"distance,omitempty" json:"distances,omitempty"`
}

// RankDistance is the distance between two child chains of a complex
// bubble, identified by rank.
type RankDistance struct {
	A        int  `toml:"a" json:"a"`
	B        int  `toml:"b" json:"b"`
	Distance Dist `toml:"distance" json:"distance"`
}

// SeedDef places a seed on a node.
type SeedDef struct {
	Node    uint64 `toml:"node" json:"node"`
	Offset  uint64 `toml:"offset" json:"offset"`
	Reverse bool   `toml:"reverse,omitempty" json:"reverse,omitempty"`
}

// Bubble kinds accepted in [BubbleDef.Kind].
const (
	BubbleSimple  = "simple"
	BubbleComplex = "complex"
)

// NodeRef returns the chain child reference for node id.
func NodeRef(id uint64) string { return "n" + strconv.FormatUint(id, 10) }

// Dist is a distance as written in workload files: a non-negative integer,
// or the string "inf" for an unreachable pair.
type Dist ziptree.Distance

// Inf is the unreachable [Dist].
const Inf = Dist(ziptree.Unreachable)

// UnmarshalTOML implements toml.Unmarshaler.
func (d *Dist) UnmarshalTOML(v any) error {
	switch x := v.(type) {
	case int64:
		if x < 0 {
			return fmt.Errorf("negative distance %d", x)
		}
		*d = Dist(x)
		return nil
	case string:
		return d.parse(x)
	}
	return fmt.Errorf("distance must be an integer or \"inf\", got %T", v)
}

// MarshalTOML implements toml.Marshaler.
func (d Dist) MarshalTOML() ([]byte, error) {
	if d == Inf {
		return []byte(`"inf"`), nil
	}
	return []byte(strconv.FormatUint(uint64(d), 10)), nil
}

// UnmarshalJSON accepts a number or "inf".
func (d *Dist) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return d.parse(s)
	}
	var n uint64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("distance must be a non-negative integer or \"inf\": %w", err)
	}
	*d = Dist(n)
	return nil
}

// MarshalJSON writes a number, or "inf" for [Inf].
func (d Dist) MarshalJSON() ([]byte, error) {
	return d.MarshalTOML()
}

func (d *Dist) parse(s string) error {
	if s == "inf" {
		*d = Inf
		return nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid distance %q", s)
	}
	*d = Dist(n)
	return nil
}
