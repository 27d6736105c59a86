package io

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/morph"
)

const swcColumns = 7

// ReadSWC decodes an SWC point table from r. Rows are returned in file
// order; ids are not validated here, [morph.BuildSections] does that.
//
// ReadSWC returns an INVALID_FORMAT error naming the line when a row has
// fewer than seven columns or a column does not parse. ReadSWC does not
// close r.
func ReadSWC(r io.Reader) ([]morph.Point, error) {
	var points []morph.Point
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		p, err := parseRow(fields)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "swc line %d", line)
		}
		points = append(points, p)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read swc: %w", err)
	}
	return points, nil
}

func parseRow(fields []string) (morph.Point, error) {
	if len(fields) < swcColumns {
		return morph.Point{}, fmt.Errorf("expected %d columns, got %d", swcColumns, len(fields))
	}
	var f [swcColumns]float64
	for i := range swcColumns {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return morph.Point{}, fmt.Errorf("column %d: %w", i+1, err)
		}
		f[i] = v
	}
	id, err := integer(f[0], "id")
	if err != nil {
		return morph.Point{}, err
	}
	code, err := integer(f[1], "type")
	if err != nil {
		return morph.Point{}, err
	}
	parent, err := integer(f[6], "parent")
	if err != nil {
		return morph.Point{}, err
	}
	return morph.Point{
		ID:       id,
		Type:     morph.TypeFromCode(code),
		X:        f[2],
		Y:        f[3],
		Z:        f[4],
		Radius:   f[5],
		ParentID: parent,
	}, nil
}

// integer accepts "3" as well as "3.0", which some exporters write.
func integer(v float64, column string) (int, error) {
	if v != math.Trunc(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s %g is not an integer", column, v)
	}
	return int(v), nil
}

// ImportSWC reads the SWC file at path.
func ImportSWC(path string) ([]morph.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, openError(path, err)
	}
	defer f.Close()
	return ReadSWC(f)
}

// WriteSWC encodes points as SWC and writes them to w in the given order.
// Undefined types are written as 0.
func WriteSWC(points []morph.Point, w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# id type x y z radius parent")
	for _, p := range points {
		fmt.Fprintf(bw, "%d %d %s %s %s %s %d\n", p.ID, int(p.Type),
			formatFloat(p.X), formatFloat(p.Y), formatFloat(p.Z), formatFloat(p.Radius), p.ParentID)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write swc: %w", err)
	}
	return nil
}

// ExportSWC writes points to an SWC file at path.
func ExportSWC(points []morph.Point, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteSWC(points, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func openError(path string, err error) error {
	if os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	return fmt.Errorf("open %s: %w", path, err)
}
