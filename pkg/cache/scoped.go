package cache

// ScopedKeyer prefixes every key of another keyer.
//
// The server uses one scope per registry so that custom features
// registered under a built-in name never read each other's values:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "registry:custom:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer returns a keyer that prepends prefix to the keys of
// inner. A nil inner uses the default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// FeatureKey implements [Keyer].
func (k *ScopedKeyer) FeatureKey(fingerprint, feature string, opts FeatureKeyOpts) string {
	return k.prefix + k.inner.FeatureKey(fingerprint, feature, opts)
}

// StatsKey implements [Keyer].
func (k *ScopedKeyer) StatsKey(fingerprint, configHash string) string {
	return k.prefix + k.inner.StatsKey(fingerprint, configHash)
}
