package stats

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/arbor/pkg/features"
)

// WriteJSON writes {"<name>": result, ...} in result order, indented.
func WriteJSON(w io.Writer, results []*Result) error {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, r := range results {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeField(&buf, r.Name, r); err != nil {
			return fmt.Errorf("encode %s: %w", r.Name, err)
		}
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return fmt.Errorf("indent: %w", err)
	}
	out.WriteByte('\n')
	_, err := out.WriteTo(w)
	return err
}

// Header returns the CSV columns for r: "name", one "<type>:<stat>"
// column per neurite statistic, then the morphology statistics.
func Header(r *Result) []string {
	cols := []string{"name"}
	for _, ts := range r.Neurite {
		for _, e := range ts.Stats {
			cols = append(cols, ts.Type+":"+e.Name)
		}
	}
	for _, e := range r.Morphology {
		cols = append(cols, e.Name)
	}
	return cols
}

// WriteCSV writes one row per result using the header of the first
// result. Raw sequences are written as space separated numbers and
// undefined statistics as empty cells.
func WriteCSV(w io.Writer, results []*Result) error {
	cw := csv.NewWriter(w)
	if len(results) == 0 {
		cw.Flush()
		return cw.Error()
	}
	header := Header(results[0])
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{r.Name}
		for _, ts := range r.Neurite {
			for _, e := range ts.Stats {
				row = append(row, cell(e.Value))
			}
		}
		for _, e := range r.Morphology {
			row = append(row, cell(e.Value))
		}
		if len(row) != len(header) {
			return fmt.Errorf("result %s has %d columns, header has %d", r.Name, len(row), len(header))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func cell(v *features.Value) string {
	if v == nil {
		return ""
	}
	if v.IsScalar() {
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	}
	parts := make([]string, v.Len())
	for i, x := range v.Floats() {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}
