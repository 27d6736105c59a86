package features

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/arbor/pkg/errors"
)

// Shape is the result shape a feature is registered with.
type Shape int

const (
	ShapeScalar Shape = iota
	ShapeSequence
)

func (s Shape) String() string {
	if s == ShapeSequence {
		return "sequence"
	}
	return "scalar"
}

// Value is the result of a feature: a scalar or a flat sequence.
type Value struct {
	shape  Shape
	scalar float64
	seq    []float64
}

// Scalar returns a scalar value.
func Scalar(v float64) Value { return Value{shape: ShapeScalar, scalar: v} }

// Sequence returns a sequence value. The slice is not copied.
func Sequence(vs []float64) Value {
	if vs == nil {
		vs = []float64{}
	}
	return Value{shape: ShapeSequence, seq: vs}
}

// Zero returns the empty value of s: 0 or an empty sequence.
func Zero(s Shape) Value {
	if s == ShapeSequence {
		return Sequence(nil)
	}
	return Scalar(0)
}

// Shape returns the shape of v.
func (v Value) Shape() Shape { return v.shape }

// IsScalar reports whether v is a scalar.
func (v Value) IsScalar() bool { return v.shape == ShapeScalar }

// Float returns the scalar, or 0 for a sequence.
func (v Value) Float() float64 { return v.scalar }

// Floats returns the sequence, or a one-element slice for a scalar.
func (v Value) Floats() []float64 {
	if v.shape == ShapeScalar {
		return []float64{v.scalar}
	}
	return v.seq
}

// Len returns 1 for a scalar and the length of a sequence.
func (v Value) Len() int {
	if v.shape == ShapeScalar {
		return 1
	}
	return len(v.seq)
}

// Equal reports whether v and o have the same shape and elements.
func (v Value) Equal(o Value) bool {
	if v.shape != o.shape {
		return false
	}
	if v.shape == ShapeScalar {
		return v.scalar == o.scalar
	}
	if len(v.seq) != len(o.seq) {
		return false
	}
	for i := range v.seq {
		if v.seq[i] != o.seq[i] {
			return false
		}
	}
	return true
}

func (v Value) String() string {
	if v.shape == ShapeScalar {
		return strconv.FormatFloat(v.scalar, 'g', -1, 64)
	}
	parts := make([]string, len(v.seq))
	for i, x := range v.seq {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// MarshalJSON encodes a scalar as a number and a sequence as an array.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.shape == ShapeScalar {
		return json.Marshal(v.scalar)
	}
	return json.Marshal(v.Floats())
}

// UnmarshalJSON decodes a number or an array of numbers.
func (v *Value) UnmarshalJSON(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	if strings.HasPrefix(trimmed, "[") {
		var seq []float64
		if err := json.Unmarshal(b, &seq); err != nil {
			return err
		}
		*v = Sequence(seq)
		return nil
	}
	var x float64
	if err := json.Unmarshal(b, &x); err != nil {
		return fmt.Errorf("feature value: %w", err)
	}
	*v = Scalar(x)
	return nil
}

// Combine aggregates per-neurite values of a feature registered with
// shape: scalars are summed and sequences concatenated in order. A value
// of another shape is an error; nothing is coerced.
func Combine(shape Shape, vs []Value) (Value, error) {
	switch shape {
	case ShapeScalar:
		var sum float64
		for i, v := range vs {
			if v.shape != ShapeScalar {
				return Value{}, errors.NeuroMError("cannot combine %s at position %d into a scalar", v.shape, i)
			}
			sum += v.scalar
		}
		return Scalar(sum), nil
	case ShapeSequence:
		out := []float64{}
		for i, v := range vs {
			if v.shape != ShapeSequence {
				return Value{}, errors.NeuroMError("cannot combine %s at position %d into a sequence", v.shape, i)
			}
			out = append(out, v.seq...)
		}
		return Sequence(out), nil
	default:
		return Value{}, errors.NeuroMError("unsupported result shape %d", int(shape))
	}
}

// collect flattens per-member values into one sequence: scalars become
// elements and sequences are concatenated.
func collect(vs []Value) Value {
	out := []float64{}
	for _, v := range vs {
		out = append(out, v.Floats()...)
	}
	return Sequence(out)
}
