package stats

import (
	"slices"

	"github.com/matzehuels/arbor/pkg/config"
	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/features"
	"github.com/matzehuels/arbor/pkg/morph"
)

// Config selects the features and summary modes to extract.
//
//	neurite:
//	  section_lengths: [max, total]
//	morphology:
//	  soma_radius: [mean]
//	neurite_type: [AXON, BASAL_DENDRITE, ALL]
type Config struct {
	Neurite     map[string][]Mode `json:"neurite,omitempty" toml:"neurite" yaml:"neurite"`
	Morphology  map[string][]Mode `json:"morphology,omitempty" toml:"morphology" yaml:"morphology"`
	NeuriteType []string          `json:"neurite_type,omitempty" toml:"neurite_type" yaml:"neurite_type"`
}

// NeuriteTypeNames lists the accepted neurite_type entries in report
// order.
var NeuriteTypeNames = []string{"AXON", "BASAL_DENDRITE", "APICAL_DENDRITE", "ALL"}

var neuriteTypeMap = map[string]morph.NeuriteType{
	"AXON":            morph.TypeAxon,
	"BASAL_DENDRITE":  morph.TypeBasalDendrite,
	"APICAL_DENDRITE": morph.TypeApicalDendrite,
	"ALL":             morph.TypeAll,
}

// DefaultConfig extracts section lengths, volumes and branch orders per
// neurite type and the mean soma radius.
func DefaultConfig() Config {
	return Config{
		Neurite: map[string][]Mode{
			"section_lengths":       {ModeMax, ModeTotal},
			"section_volumes":       {ModeTotal},
			"section_branch_orders": {ModeMax},
		},
		Morphology: map[string][]Mode{
			"soma_radius": {ModeMean},
		},
		NeuriteType: []string{"AXON", "APICAL_DENDRITE", "BASAL_DENDRITE", "ALL"},
	}
}

// FullConfig extracts every registered feature with every summary mode
// except raw, for every neurite type.
func FullConfig() Config {
	modes := []Mode{ModeMin, ModeMax, ModeMedian, ModeMean, ModeStd}
	cfg := Config{
		Neurite:     map[string][]Mode{},
		Morphology:  map[string][]Mode{},
		NeuriteType: slices.Clone(NeuriteTypeNames),
	}
	for _, f := range features.Default.List() {
		switch f.Scope {
		case features.ScopeNeurite:
			cfg.Neurite[f.Name] = modes
		case features.ScopeMorphology:
			cfg.Morphology[f.Name] = modes
		}
	}
	return cfg
}

// LoadConfig reads a TOML or YAML stats configuration and validates it.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks feature names, modes and neurite types. A config with
// neurite features must name at least one neurite type.
func (c Config) Validate() error {
	if len(c.Neurite) == 0 && len(c.Morphology) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "no features configured")
	}
	if len(c.Neurite) > 0 && len(c.NeuriteType) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "neurite_type missing from config, but neurite set")
	}
	for _, name := range c.NeuriteType {
		if _, ok := neuriteTypeMap[name]; !ok {
			return errors.New(errors.ErrCodeInvalidConfig, "unknown neurite_type %q (want one of %v)", name, NeuriteTypeNames)
		}
	}
	for name, modes := range c.Neurite {
		if _, ok := features.Default.Lookup(features.ScopeNeurite, name); !ok {
			return errors.New(errors.ErrCodeInvalidConfig, "unknown neurite feature %q", name)
		}
		if err := validateModes(name, modes); err != nil {
			return err
		}
	}
	for name, modes := range c.Morphology {
		_, isMorph := features.Default.Lookup(features.ScopeMorphology, name)
		_, isNeurite := features.Default.Lookup(features.ScopeNeurite, name)
		if !isMorph && !isNeurite {
			return errors.New(errors.ErrCodeInvalidConfig, "unknown morphology feature %q", name)
		}
		if err := validateModes(name, modes); err != nil {
			return err
		}
	}
	return nil
}

func validateModes(feature string, modes []Mode) error {
	if len(modes) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "feature %q has no modes", feature)
	}
	for _, m := range modes {
		if !m.Valid() {
			return errors.New(errors.ErrCodeInvalidConfig, "feature %q: unknown mode %q", feature, m)
		}
	}
	return nil
}

// neuriteTypes returns the configured neurite types in config order.
func (c Config) neuriteTypes() []namedType {
	out := make([]namedType, 0, len(c.NeuriteType))
	for _, name := range c.NeuriteType {
		out = append(out, namedType{name: name, typ: neuriteTypeMap[name]})
	}
	return out
}

type namedType struct {
	name string
	typ  morph.NeuriteType
}

func sortedKeys(m map[string][]Mode) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
