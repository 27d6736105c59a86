package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/morph"
)

type table struct {
	Name   string  `json:"name,omitempty"`
	Points []point `json:"points"`
}

type point struct {
	ID     int     `json:"id"`
	Type   int     `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
	Radius float64 `json:"radius"`
	Parent int     `json:"parent"`
}

// ReadJSON decodes a JSON point table from r and returns the table name,
// which may be empty, and its points.
func ReadJSON(r io.Reader) (string, []morph.Point, error) {
	var data table
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return "", nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json")
	}
	points := make([]morph.Point, len(data.Points))
	for i, p := range data.Points {
		points[i] = morph.Point{
			ID:       p.ID,
			Type:     morph.TypeFromCode(p.Type),
			X:        p.X,
			Y:        p.Y,
			Z:        p.Z,
			Radius:   p.Radius,
			ParentID: p.Parent,
		}
	}
	return data.Name, points, nil
}

// ImportJSON reads the JSON point table at path.
func ImportJSON(path string) (string, []morph.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, openError(path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// WriteJSON encodes points as an indented JSON point table. The output
// can be read back with [ReadJSON].
func WriteJSON(name string, points []morph.Point, w io.Writer) error {
	out := table{Name: name, Points: make([]point, len(points))}
	for i, p := range points {
		out.Points[i] = point{
			ID:     p.ID,
			Type:   int(p.Type),
			X:      p.X,
			Y:      p.Y,
			Z:      p.Z,
			Radius: p.Radius,
			Parent: p.ParentID,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes points to a JSON file at path.
func ExportJSON(name string, points []morph.Point, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(name, points, f)
}
