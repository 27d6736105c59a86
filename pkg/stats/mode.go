package stats

import (
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/arbor/pkg/features"
)

// Mode is a summary statistic over the values of a feature.
type Mode string

const (
	ModeRaw    Mode = "raw"
	ModeMin    Mode = "min"
	ModeMax    Mode = "max"
	ModeMedian Mode = "median"
	ModeMean   Mode = "mean"
	ModeStd    Mode = "std"
	ModeTotal  Mode = "total"
)

// Modes lists every mode.
var Modes = []Mode{ModeRaw, ModeMin, ModeMax, ModeMedian, ModeMean, ModeStd, ModeTotal}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool { return slices.Contains(Modes, m) }

// Eval summarizes v. Raw returns v unchanged. Total of no values is 0;
// the other modes return nil when there are no values.
func (m Mode) Eval(v features.Value) *features.Value {
	if m == ModeRaw {
		return &v
	}
	xs := v.Floats()
	if m == ModeTotal {
		var sum float64
		for _, x := range xs {
			sum += x
		}
		return scalar(sum)
	}
	if len(xs) == 0 {
		return nil
	}
	switch m {
	case ModeMin:
		return scalar(slices.Min(xs))
	case ModeMax:
		return scalar(slices.Max(xs))
	case ModeMedian:
		return scalar(median(xs))
	case ModeMean:
		return scalar(mean(xs))
	case ModeStd:
		mu := mean(xs)
		var ss float64
		for _, x := range xs {
			ss += (x - mu) * (x - mu)
		}
		return scalar(math.Sqrt(ss / float64(len(xs))))
	}
	return nil
}

func scalar(x float64) *features.Value {
	v := features.Scalar(x)
	return &v
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func median(xs []float64) float64 {
	s := slices.Clone(xs)
	slices.Sort(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// StatName names the statistic of feature under m: the plural "s" of the
// feature name is dropped and the mode is prefixed unless m is raw.
// Names ending in "us" keep their last letter.
//
//	StatName(ModeMax, "section_lengths") == "max_section_length"
//	StatName(ModeRaw, "section_lengths") == "section_length"
//	StatName(ModeMean, "soma_radius") == "mean_soma_radius"
func StatName(m Mode, feature string) string {
	name := feature
	if !strings.HasSuffix(name, "us") {
		name = strings.TrimSuffix(name, "s")
	}
	if m == ModeRaw {
		return name
	}
	return string(m) + "_" + name
}
