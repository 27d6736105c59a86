package cache

// Keyer builds cache keys.
type Keyer interface {
	// FeatureKey identifies one feature value of one morphology.
	FeatureKey(fingerprint, feature string, opts FeatureKeyOpts) string

	// StatsKey identifies the stats extracted from one morphology under
	// one configuration.
	StatsKey(fingerprint, configHash string) string
}

// FeatureKeyOpts are the feature options that change the result.
type FeatureKeyOpts struct {
	// Registry is the namespace of the registry that computed the value.
	Registry    string         `json:"registry,omitempty"`
	Target      string         `json:"target"`
	NeuriteType string         `json:"neurite_type,omitempty"`
	SectionType string         `json:"section_type,omitempty"`
	Params      map[string]any `json:"params,omitempty"`
}

// DefaultKeyer hashes key parts into "kind:sha256" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// FeatureKey implements [Keyer].
func (DefaultKeyer) FeatureKey(fingerprint, feature string, opts FeatureKeyOpts) string {
	return hashKey("feature", fingerprint, feature, opts)
}

// StatsKey implements [Keyer].
func (DefaultKeyer) StatsKey(fingerprint, configHash string) string {
	return hashKey("stats", fingerprint, configHash)
}
