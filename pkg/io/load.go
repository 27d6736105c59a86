package io

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/morph"
	"github.com/matzehuels/arbor/pkg/observability"
)

// Extensions lists the file extensions [LoadMorphology] can read.
var Extensions = []string{".swc", ".json"}

// ReadPoints reads the point table at path with the reader selected by
// its extension.
func ReadPoints(path string) ([]morph.Point, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".swc":
		return ImportSWC(path)
	case ".json":
		_, points, err := ImportJSON(path)
		return points, err
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported morphology format %q", filepath.Ext(path))
	}
}

// LoadMorphology reads the file at path and builds a morphology named
// after the file. SWC files are checked for bifurcating somata unless opts
// set another soma check.
func LoadMorphology(ctx context.Context, path string, opts ...morph.Option) (m *morph.Morphology, err error) {
	hooks := observability.Build()
	hooks.OnLoadStart(ctx, path)
	start := time.Now()
	defer func() {
		sections := 0
		if m != nil {
			sections = len(m.Sections())
		}
		hooks.OnLoadComplete(ctx, path, sections, time.Since(start), err)
	}()

	points, err := ReadPoints(path)
	if err != nil {
		return nil, err
	}
	return BuildMorphology(path, points, opts...)
}

// BuildMorphology builds the morphology for points read from path. The
// path names the morphology and selects format specific soma checks.
func BuildMorphology(path string, points []morph.Point, opts ...morph.Option) (*morph.Morphology, error) {
	if strings.EqualFold(filepath.Ext(path), ".swc") {
		opts = append([]morph.Option{morph.WithSomaCheck(morph.SWCSomaCheck)}, opts...)
	}
	m, err := morph.NewMorphology(Name(path), points, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Name returns the base name of path without its extension.
func Name(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Loader returns a [morph.Loader] that calls [LoadMorphology] with ctx and
// opts.
func Loader(ctx context.Context, opts ...morph.Option) morph.Loader {
	return func(path string) (*morph.Morphology, error) {
		return LoadMorphology(ctx, path, opts...)
	}
}

// LoadPopulation returns a population over paths. Members are loaded on
// first access with opts.
func LoadPopulation(ctx context.Context, paths []string, opts []morph.Option, popOpts ...morph.PopulationOption) *morph.Population {
	return morph.LoadPopulation(paths, Loader(ctx, opts...), popOpts...)
}

// MorphologyFiles returns the readable morphology files directly inside
// dir, sorted by name.
func MorphologyFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, openError(dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !isMorphology(e.Name()) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	slices.Sort(out)
	return out, nil
}

// ExpandPaths replaces each directory in paths by its morphology files and
// keeps files as given. The result keeps argument order.
func ExpandPaths(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, openError(p, err)
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		files, err := MorphologyFiles(p)
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}
	return out, nil
}

func isMorphology(name string) bool {
	return slices.Contains(Extensions, strings.ToLower(filepath.Ext(name)))
}
