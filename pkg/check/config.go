package check

import (
	"github.com/matzehuels/arbor/pkg/config"
	"github.com/matzehuels/arbor/pkg/errors"
)

// Config selects the checks a [Runner] performs.
//
//	checks:
//	  structural_checks: [has_sequential_ids, has_soma_points]
//	  morphology_checks: [has_axon, has_no_jumps]
//	options:
//	  has_no_jumps: [20.0, y]
//	  has_nonzero_soma_radius: 0.5
type Config struct {
	Checks  Checks         `json:"checks" toml:"checks" yaml:"checks"`
	Options map[string]any `json:"options,omitempty" toml:"options" yaml:"options"`
}

// Checks lists check names per group, in execution order.
type Checks struct {
	Structural []string `json:"structural_checks,omitempty" toml:"structural_checks" yaml:"structural_checks"`
	Morphology []string `json:"morphology_checks,omitempty" toml:"morphology_checks" yaml:"morphology_checks"`
}

// DefaultConfig runs the usual sanity checks with default parameters.
func DefaultConfig() Config {
	return Config{
		Checks: Checks{
			Structural: []string{
				"has_sequential_ids",
				"has_soma_points",
				"no_missing_parents",
				"has_all_finite_radius_neurites",
			},
			Morphology: []string{
				"has_basal_dendrite",
				"has_axon",
				"has_all_nonzero_segment_lengths",
				"has_all_nonzero_section_lengths",
				"has_all_nonzero_neurite_radii",
				"has_nonzero_soma_radius",
			},
		},
	}
}

// LoadConfig reads a TOML or YAML check configuration.
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

// Validate reports unknown check names, options for checks that are not
// configured, and option values that do not fit the check parameters.
func (c Config) Validate() error {
	seen := map[string]*Check{}
	for _, g := range []struct {
		group Group
		names []string
	}{{GroupStructural, c.Checks.Structural}, {GroupMorphology, c.Checks.Morphology}} {
		for _, name := range g.names {
			chk, ok := Lookup(g.group, name)
			if !ok {
				return errors.New(errors.ErrCodeInvalidConfig, "unknown %s check %q", g.group, name)
			}
			seen[name] = chk
		}
	}
	if len(seen) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "no checks configured")
	}
	for name, raw := range c.Options {
		chk, ok := seen[name]
		if !ok {
			return errors.New(errors.ErrCodeInvalidConfig, "options given for unconfigured check %q", name)
		}
		if _, err := chk.Args(raw); err != nil {
			return err
		}
	}
	return nil
}
