package cache

// ScopedKeyer prefixes every key of an inner Keyer, so several tools or
// tenants can share one Redis database without collisions.
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "edgebundle:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, which defaults to the DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) DocumentKey(source, contentHash string) string {
	return k.prefix + k.inner.DocumentKey(source, contentHash)
}

func (k *ScopedKeyer) ResultKey(edgesHash string, opts ResultKeyOpts) string {
	return k.prefix + k.inner.ResultKey(edgesHash, opts)
}
