package morph

import (
	"fmt"
	"strings"
)

// NeuriteType classifies points, sections and neurites.
type NeuriteType int

// Neurite types. The numeric values of the concrete types match the SWC
// structure identifiers.
const (
	TypeUndefined      NeuriteType = 0
	TypeSoma           NeuriteType = 1
	TypeAxon           NeuriteType = 2
	TypeBasalDendrite  NeuriteType = 3
	TypeApicalDendrite NeuriteType = 4
	TypeCustom5        NeuriteType = 5
	TypeCustom6        NeuriteType = 6
	TypeCustom7        NeuriteType = 7
	TypeCustom8        NeuriteType = 8
	TypeCustom9        NeuriteType = 9
	TypeCustom10       NeuriteType = 10

	// TypeAll is a pseudo-type matching every other type.
	TypeAll NeuriteType = 32
)

var typeNames = map[NeuriteType]string{
	TypeUndefined:      "undefined",
	TypeSoma:           "soma",
	TypeAxon:           "axon",
	TypeBasalDendrite:  "basal_dendrite",
	TypeApicalDendrite: "apical_dendrite",
	TypeCustom5:        "custom5",
	TypeCustom6:        "custom6",
	TypeCustom7:        "custom7",
	TypeCustom8:        "custom8",
	TypeCustom9:        "custom9",
	TypeCustom10:       "custom10",
	TypeAll:            "all",
}

// String returns the snake_case name of t.
func (t NeuriteType) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("NeuriteType(%d)", int(t))
}

// Matches reports whether t and o select each other. TypeAll matches any
// type.
func (t NeuriteType) Matches(o NeuriteType) bool {
	return t == TypeAll || o == TypeAll || t == o
}

// MarshalText encodes t by name.
func (t NeuriteType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a name accepted by [ParseNeuriteType].
func (t *NeuriteType) UnmarshalText(b []byte) error {
	v, err := ParseNeuriteType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseNeuriteType parses a type name. Both the snake_case names and the
// upper-case aliases used in stats configurations (AXON, BASAL_DENDRITE,
// APICAL_DENDRITE, ALL) are accepted.
func ParseNeuriteType(s string) (NeuriteType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for t, name := range typeNames {
		if name == key {
			return t, nil
		}
	}
	switch key {
	case "basal":
		return TypeBasalDendrite, nil
	case "apical":
		return TypeApicalDendrite, nil
	}
	return TypeUndefined, fmt.Errorf("unknown neurite type %q", s)
}

// TypeFromCode maps an SWC structure identifier to a NeuriteType. Codes
// outside the known range are undefined.
func TypeFromCode(code int) NeuriteType {
	if code < int(TypeUndefined) || code > int(TypeCustom10) {
		return TypeUndefined
	}
	return NeuriteType(code)
}

// NeuriteTypes lists the concrete types a neurite can have, in the order
// used for reporting.
var NeuriteTypes = []NeuriteType{TypeAxon, TypeBasalDendrite, TypeApicalDendrite, TypeUndefined}

// Types is an ordered tuple of neurite types. It describes the subtree
// types of a heterogeneous neurite.
type Types []NeuriteType

// AxonCarryingDendrite is the composite type of a basal dendrite carrying
// an axon subtree.
var AxonCarryingDendrite = Types{TypeBasalDendrite, TypeAxon}

// Contains reports whether t is one of ts, or t is TypeAll.
func (ts Types) Contains(t NeuriteType) bool {
	for _, x := range ts {
		if x.Matches(t) {
			return true
		}
	}
	return false
}

// Equal reports whether ts and o hold the same types in the same order.
func (ts Types) Equal(o Types) bool {
	if len(ts) != len(o) {
		return false
	}
	for i := range ts {
		if ts[i] != o[i] {
			return false
		}
	}
	return true
}

// String returns "(a, b)" for composites and the plain name for a single
// type.
func (ts Types) String() string {
	if len(ts) == 1 {
		return ts[0].String()
	}
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.String()
	}
	return "(" + strings.Join(names, ", ") + ")"
}
