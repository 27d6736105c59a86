// Package stats extracts summary statistics of morphology features.
//
// A [Config] lists neurite features and morphology features, each with
// the summary [Mode]s to report, and the neurite types to split neurite
// features by. [Extract] computes the statistics for one morphology;
// [Runner] does it for many files in parallel, optionally caching results
// and saving the run to a [store.Store].
//
//	cfg := stats.DefaultConfig()
//	res, err := stats.Extract(ctx, features.NewGetter(nil), m, cfg)
//	// res.Neurite[0].Type == "axon", res.Neurite[0].Stats.Get("max_section_length")
package stats

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/matzehuels/arbor/pkg/features"
	"github.com/matzehuels/arbor/pkg/morph"
)

// Entry is one named statistic. Value is nil when the statistic is
// undefined, such as the mean of no values.
type Entry struct {
	Name  string          `json:"name"`
	Value *features.Value `json:"value"`
}

// Stats is an ordered list of statistics.
type Stats []Entry

// Get returns the statistic called name.
func (s Stats) Get(name string) (*features.Value, bool) {
	for _, e := range s {
		if e.Name == name {
			return e.Value, true
		}
	}
	return nil, false
}

// MarshalJSON writes the statistics as an object in order.
func (s Stats) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeField(&buf, e.Name, e.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeField(buf *bytes.Buffer, key string, v any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(b)
	return nil
}

// TypeStats holds the neurite statistics of one configured neurite type.
// Type is the snake_case type name: axon, basal_dendrite, apical_dendrite
// or all.
type TypeStats struct {
	Type  string `json:"type"`
	Stats Stats  `json:"stats"`
}

// Result holds the statistics of one morphology.
type Result struct {
	Name       string
	Neurite    []TypeStats
	Morphology Stats
}

// MarshalJSON writes {"<type>": {...}, ..., "<morphology stat>": v}, the
// neurite types first in config order.
func (r Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	sep := func() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
	}
	for _, ts := range r.Neurite {
		sep()
		if err := writeField(&buf, ts.Type, ts.Stats); err != nil {
			return nil, err
		}
	}
	for _, e := range r.Morphology {
		sep()
		if err := writeField(&buf, e.Name, e.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// record is the cache encoding of a Result.
type record struct {
	Name       string      `json:"name"`
	Neurite    []typeEntry `json:"neurite"`
	Morphology []Entry     `json:"morphology"`
}

type typeEntry struct {
	Type  string  `json:"type"`
	Stats []Entry `json:"stats"`
}

func (r *Result) toRecord() record {
	rec := record{Name: r.Name, Morphology: r.Morphology}
	for _, ts := range r.Neurite {
		rec.Neurite = append(rec.Neurite, typeEntry{Type: ts.Type, Stats: ts.Stats})
	}
	return rec
}

func (rec record) result() *Result {
	r := &Result{Name: rec.Name, Morphology: rec.Morphology}
	for _, te := range rec.Neurite {
		r.Neurite = append(r.Neurite, TypeStats{Type: te.Type, Stats: te.Stats})
	}
	return r
}

// Extract computes the statistics of cfg for m. Features are evaluated
// through g, so a caching getter reuses earlier results.
//
// Neurite features run once per configured neurite type, with the type as
// the neurite filter. Feature names are processed in sorted order and
// modes in configured order.
func Extract(ctx context.Context, g *features.Getter, m *morph.Morphology, cfg Config) (*Result, error) {
	if g == nil {
		g = features.NewGetter(nil)
	}
	res := &Result{Name: m.Name}

	for _, nt := range cfg.neuriteTypes() {
		ts := TypeStats{Type: nt.typ.String(), Stats: Stats{}}
		for _, name := range sortedKeys(cfg.Neurite) {
			v, err := g.Get(ctx, name, m, features.WithNeuriteType(nt.typ))
			if err != nil {
				return nil, err
			}
			for _, mode := range cfg.Neurite[name] {
				ts.Stats = append(ts.Stats, Entry{Name: StatName(mode, name), Value: mode.Eval(v)})
			}
		}
		res.Neurite = append(res.Neurite, ts)
	}

	res.Morphology = Stats{}
	for _, name := range sortedKeys(cfg.Morphology) {
		v, err := g.Get(ctx, name, m)
		if err != nil {
			return nil, err
		}
		for _, mode := range cfg.Morphology[name] {
			res.Morphology = append(res.Morphology, Entry{Name: StatName(mode, name), Value: mode.Eval(v)})
		}
	}
	return res, nil
}
