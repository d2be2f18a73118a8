// Package store persists encoded trees.
//
// The on-disk form is a CBOR map with small integer keys:
//
//	1: format version
//	2: tree id (16-byte UUID)
//	3: creation time (Unix nanoseconds)
//	4: seed count
//	5: items as [kind, value] pairs
//	6: workload hash
//
// Seeds are not stored. A tree is restored against the seed collection it
// was built from, which callers recover from the workload; the seed count
// and the workload hash guard against pairing a store with the wrong one.
package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/matzehuels/ziptree/pkg/ziptree"
)

// Version is the current envelope format version.
const Version = 1

var (
	// ErrVersion is returned for envelopes written by an unknown format
	// version.
	ErrVersion = errors.New("store: unsupported version")

	// ErrSeedCount is returned when the seed collection passed to
	// [Unmarshal] does not match the stored seed count.
	ErrSeedCount = errors.New("store: seed count mismatch")

	// ErrItemKind is returned for stored items with an unknown kind.
	ErrItemKind = errors.New("store: unknown item kind")
)

// Meta describes a stored tree.
type Meta struct {
	ID       uuid.UUID
	Created  time.Time
	Workload string // hash of the workload the tree was built from
	Seeds    int
}

// NewMeta returns metadata with a fresh id and the current time.
func NewMeta(workload string) Meta {
	return Meta{ID: uuid.New(), Created: time.Now().UTC(), Workload: workload}
}

type envelope struct {
	Version  uint16      `cbor:"1,keyasint"`
	ID       []byte      `cbor:"2,keyasint"`
	Created  int64       `cbor:"3,keyasint"`
	Seeds    uint64      `cbor:"4,keyasint"`
	Items    [][2]uint64 `cbor:"5,keyasint"`
	Workload string      `cbor:"6,keyasint,omitempty"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	if encMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
	if decMode, err = (cbor.DecOptions{MaxArrayElements: 1 << 27}).DecMode(); err != nil {
		panic(err)
	}
}

// Marshal encodes t with meta. A zero meta ID or creation time is filled
// in; the seed count always comes from t.
func Marshal(t *ziptree.Tree, meta Meta) ([]byte, error) {
	if meta.ID == uuid.Nil {
		meta.ID = uuid.New()
	}
	if meta.Created.IsZero() {
		meta.Created = time.Now().UTC()
	}

	items := make([][2]uint64, t.Len())
	for i := range items {
		it := t.Item(i)
		items[i] = [2]uint64{uint64(it.Kind), uint64(it.Value)}
	}
	env := envelope{
		Version:  Version,
		ID:       meta.ID[:],
		Created:  meta.Created.UnixNano(),
		Seeds:    uint64(t.SeedCount()),
		Items:    items,
		Workload: meta.Workload,
	}
	data, err := encMode.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("store: encode: %w", err)
	}
	return data, nil
}

// Unmarshal decodes data and re-attaches the items to seeds. The items are
// validated again, so a damaged store fails here rather than during a
// traversal.
func Unmarshal(data []byte, seeds []ziptree.Seed) (*ziptree.Tree, Meta, error) {
	meta, items, err := decode(data)
	if err != nil {
		return nil, Meta{}, err
	}
	if meta.Seeds != len(seeds) {
		return nil, Meta{}, fmt.Errorf("%w: stored %d, given %d", ErrSeedCount, meta.Seeds, len(seeds))
	}
	t, err := ziptree.FromItems(items, seeds)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("store: %w", err)
	}
	return t, meta, nil
}

// ReadMeta decodes only the metadata of data.
func ReadMeta(data []byte) (Meta, error) {
	meta, _, err := decode(data)
	return meta, err
}

func decode(data []byte) (Meta, []ziptree.Item, error) {
	var env envelope
	if err := decMode.Unmarshal(data, &env); err != nil {
		return Meta{}, nil, fmt.Errorf("store: decode: %w", err)
	}
	if env.Version != Version {
		return Meta{}, nil, fmt.Errorf("%w: %d", ErrVersion, env.Version)
	}
	id, err := uuid.FromBytes(env.ID)
	if err != nil {
		return Meta{}, nil, fmt.Errorf("store: id: %w", err)
	}

	items := make([]ziptree.Item, len(env.Items))
	for i, pair := range env.Items {
		kind := ziptree.ItemKind(pair[0])
		if pair[0] > uint64(ziptree.ItemSiblingCount) || !kind.Valid() {
			return Meta{}, nil, fmt.Errorf("%w: %d at %d", ErrItemKind, pair[0], i)
		}
		items[i] = ziptree.Item{Kind: kind, Value: ziptree.Distance(pair[1])}
	}
	meta := Meta{
		ID:       id,
		Created:  time.Unix(0, env.Created).UTC(),
		Workload: env.Workload,
		Seeds:    int(env.Seeds),
	}
	return meta, items, nil
}
