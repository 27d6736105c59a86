package morph

import "fmt"

// Level is the severity of a diagnostic.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
)

func (l Level) String() string {
	if l == LevelWarning {
		return "warning"
	}
	return "info"
}

// MarshalText encodes l by name.
func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// UnmarshalText decodes "info" or "warning".
func (l *Level) UnmarshalText(b []byte) error {
	switch string(b) {
	case "info":
		*l = LevelInfo
	case "warning":
		*l = LevelWarning
	default:
		return fmt.Errorf("unknown diagnostic level %q", b)
	}
	return nil
}

// Diagnostic codes emitted while building a morphology.
const (
	DiagNoSoma              = "no_soma"
	DiagSinglePointSection  = "single_point_section"
	DiagUnifurcation        = "unifurcation"
	DiagUnexpectedSubtrees  = "unexpected_subtree_types"
	DiagPopulationLoadError = "population_load_error"
)

// Diagnostic is a non-fatal finding reported by a build. ID is the point
// or section id the finding refers to, or -1.
type Diagnostic struct {
	Level   Level  `json:"level"`
	Code    string `json:"code"`
	Message string `json:"message"`
	ID      int    `json:"id"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s [%s] %s", d.Level, d.Code, d.Message)
}

// Diagnostics accumulates findings for a single build call.
type Diagnostics []Diagnostic

func (d *Diagnostics) add(level Level, code string, id int, format string, args ...any) {
	*d = append(*d, Diagnostic{
		Level:   level,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		ID:      id,
	})
}

// Warnings returns only the warning-level diagnostics.
func (d Diagnostics) Warnings() Diagnostics {
	var out Diagnostics
	for _, x := range d {
		if x.Level == LevelWarning {
			out = append(out, x)
		}
	}
	return out
}

// ByCode returns the diagnostics with the given code.
func (d Diagnostics) ByCode(code string) Diagnostics {
	var out Diagnostics
	for _, x := range d {
		if x.Code == code {
			out = append(out, x)
		}
	}
	return out
}
