// Package check validates raw point tables and morphologies.
//
// Checks come in two groups. Structural checks look at the raw point table
// as read from a file, before any tree is built. Morphology checks look at
// the built [morph.Morphology]. Every check returns a [Result]; a failing
// result lists the offending ids in Info.
//
// Checks take optional parameters with defaults (thresholds, tolerances).
// [Runner] drives a configured list of checks over many files and
// produces a [Summary].
package check

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/morph"
)

// Result is the outcome of one check.
type Result struct {
	Status bool     `json:"status"`
	Info   []string `json:"info,omitempty"`
}

// Pass is a passing result.
var Pass = Result{Status: true}

// failing returns a result that passes when info is empty.
func failing(info []string) Result {
	return Result{Status: len(info) == 0, Info: info}
}

// Group names a family of checks.
type Group string

const (
	GroupStructural Group = "structural_checks"
	GroupMorphology Group = "morphology_checks"
)

// Param is a named check parameter with its default.
type Param struct {
	Name    string
	Default any
}

// Args holds the resolved parameters of a check call.
type Args map[string]any

// Float returns the parameter as a float64.
func (a Args) Float(name string) float64 {
	v, _ := toFloat(a[name])
	return v
}

// Int returns the parameter as an int.
func (a Args) Int(name string) int {
	return int(a.Float(name))
}

// String returns the parameter as a string.
func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// StructuralFunc checks a raw point table.
type StructuralFunc func(points []morph.Point, a Args) (Result, error)

// MorphologyFunc checks a built morphology.
type MorphologyFunc func(m *morph.Morphology, a Args) (Result, error)

// Check is a registered check.
type Check struct {
	Name   string
	Group  Group
	Params []Param
	Doc    string

	structural StructuralFunc
	morphology MorphologyFunc
}

// Title is the display name used in summaries: "has_axon" becomes
// "Has axon".
func (c *Check) Title() string {
	s := strings.ReplaceAll(c.Name, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Args resolves raw option values against the check parameters. raw may
// be nil (all defaults), a single value (first parameter), a list
// (positional) or a map (by name).
func (c *Check) Args(raw any) (Args, error) {
	a := make(Args, len(c.Params))
	for _, p := range c.Params {
		a[p.Name] = p.Default
	}
	set := func(i int, v any) error {
		if i >= len(c.Params) {
			return errors.New(errors.ErrCodeInvalidConfig, "%s takes %d parameters", c.Name, len(c.Params))
		}
		p := c.Params[i]
		if err := checkKind(p, v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", c.Name)
		}
		a[p.Name] = v
		return nil
	}

	switch v := raw.(type) {
	case nil:
	case []any:
		for i, x := range v {
			if err := set(i, x); err != nil {
				return nil, err
			}
		}
	case map[string]any:
		for name, x := range v {
			i := slices.IndexFunc(c.Params, func(p Param) bool { return p.Name == name })
			if i < 0 {
				return nil, errors.New(errors.ErrCodeInvalidConfig, "%s has no parameter %q", c.Name, name)
			}
			if err := set(i, x); err != nil {
				return nil, err
			}
		}
	default:
		if err := set(0, v); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func checkKind(p Param, v any) error {
	if _, isString := p.Default.(string); isString {
		if _, ok := v.(string); !ok {
			return fmt.Errorf("parameter %s: want a string, got %T", p.Name, v)
		}
		return nil
	}
	if _, ok := toFloat(v); !ok {
		return fmt.Errorf("parameter %s: want a number, got %T", p.Name, v)
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	default:
		return 0, false
	}
}

// RunStructural runs a structural check on points with raw options.
func (c *Check) RunStructural(points []morph.Point, raw any) (Result, error) {
	if c.structural == nil {
		return Result{}, errors.New(errors.ErrCodeInvalidInput, "%s is not a structural check", c.Name)
	}
	a, err := c.Args(raw)
	if err != nil {
		return Result{}, err
	}
	return c.structural(points, a)
}

// RunMorphology runs a morphology check on m with raw options.
func (c *Check) RunMorphology(m *morph.Morphology, raw any) (Result, error) {
	if c.morphology == nil {
		return Result{}, errors.New(errors.ErrCodeInvalidInput, "%s is not a morphology check", c.Name)
	}
	a, err := c.Args(raw)
	if err != nil {
		return Result{}, err
	}
	return c.morphology(m, a)
}

// =============================================================================
// Registry
// =============================================================================

var registry = map[Group]map[string]*Check{
	GroupStructural: {},
	GroupMorphology: {},
}

func structural(name, doc string, fn StructuralFunc, params ...Param) {
	registry[GroupStructural][name] = &Check{Name: name, Group: GroupStructural, Params: params, Doc: doc, structural: fn}
}

func morphology(name, doc string, fn MorphologyFunc, params ...Param) {
	registry[GroupMorphology][name] = &Check{Name: name, Group: GroupMorphology, Params: params, Doc: doc, morphology: fn}
}

// Lookup returns the check registered under group and name.
func Lookup(group Group, name string) (*Check, bool) {
	c, ok := registry[group][name]
	return c, ok
}

// List returns the checks of group sorted by name.
func List(group Group) []*Check {
	out := make([]*Check, 0, len(registry[group]))
	for _, c := range registry[group] {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *Check) int { return strings.Compare(a.Name, b.Name) })
	return out
}
