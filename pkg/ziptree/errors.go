package ziptree

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by construction, validation and traversal.
var (
	// ErrInvariant is returned when construction detects an inconsistency
	// in its input, such as seeds that were not in sorted order or an
	// address reporting a negative offset delta.
	ErrInvariant = errors.New("ziptree: construction invariant violated")

	// ErrUnbalanced is returned when bracket items do not nest properly.
	ErrUnbalanced = errors.New("ziptree: unbalanced brackets")

	// ErrMalformed is returned when items are balanced but violate the
	// distance grammar of a scope.
	ErrMalformed = errors.New("ziptree: malformed item sequence")

	// ErrCorrupt is returned by a reverse traversal that meets an item its
	// current state does not accept.
	ErrCorrupt = errors.New("ziptree: corrupt tree")

	// ErrUnknownKind is returned when an address reports a scope kind
	// outside the closed set.
	ErrUnknownKind = errors.New("ziptree: unknown scope kind")

	// ErrSeedOutOfRange is returned when an item references a seed index
	// outside the seed collection.
	ErrSeedOutOfRange = errors.New("ziptree: seed index out of range")
)

// BuildError locates a construction failure.
type BuildError struct {
	Seed  int // index into the seed collection
	Depth int
	Err   error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build seed %d at depth %d: %v", e.Seed, e.Depth, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// CorruptError describes an item a reverse traversal could not accept.
// It matches [ErrCorrupt] with errors.Is.
type CorruptError struct {
	Pos   int
	State string
	Item  Item
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("%v: unexpected %s at %d in state %s", ErrCorrupt, e.Item.Kind, e.Pos, e.State)
}

func (e *CorruptError) Is(target error) bool { return target == ErrCorrupt }
