package cache

// ScopedKeyer prefixes every key of an inner [Keyer], so several servers
// or users can share one Redis or MongoDB backend:
//
//	keyer := cache.NewScopedKeyer(nil, "team-a:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// TreeKey implements [Keyer].
func (k *ScopedKeyer) TreeKey(workloadHash string, version int) string {
	return k.prefix + k.inner.TreeKey(workloadHash, version)
}

// ClusterKey implements [Keyer].
func (k *ScopedKeyer) ClusterKey(workloadHash string, limit uint64) string {
	return k.prefix + k.inner.ClusterKey(workloadHash, limit)
}
