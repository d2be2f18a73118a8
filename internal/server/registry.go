package server

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/matzehuels/ziptree/pkg/pipeline"
)

// registry holds built trees in memory, evicting the oldest registration
// once more than max are held.
type registry struct {
	mu    sync.RWMutex
	max   int
	trees map[uuid.UUID]*pipeline.Result
	order []uuid.UUID
}

func newRegistry(max int) *registry {
	return &registry{max: max, trees: make(map[uuid.UUID]*pipeline.Result)}
}

// put stores res under its store id and returns the ids evicted to make
// room. Storing an id again moves it to the newest position.
func (r *registry) put(res *pipeline.Result) []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := res.Meta.ID
	if _, ok := r.trees[id]; ok {
		r.order = slices.DeleteFunc(r.order, func(o uuid.UUID) bool { return o == id })
	}
	r.trees[id] = res
	r.order = append(r.order, id)

	var evicted []uuid.UUID
	for len(r.order) > r.max {
		old := r.order[0]
		r.order = r.order[1:]
		delete(r.trees, old)
		evicted = append(evicted, old)
	}
	return evicted
}

func (r *registry) get(id uuid.UUID) (*pipeline.Result, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.trees[id]
	return res, ok
}

func (r *registry) remove(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.trees[id]; !ok {
		return false
	}
	delete(r.trees, id)
	r.order = slices.DeleteFunc(r.order, func(o uuid.UUID) bool { return o == id })
	return true
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.trees)
}
