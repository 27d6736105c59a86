// Package pkg provides the libraries behind arbor, a toolkit for neuron
// morphology analysis.
//
// # Overview
//
// A reconstruction is a table of sample points (SWC or a JSON point table)
// linked into a tree. The data flow through arbor:
//
//	SWC / JSON file
//	      ↓
//	  [io] (parse into point rows)
//	      ↓
//	  [morph] (soma, sections, neurites, morphology, population)
//	      ↓
//	  [features] (morphometrics on neurites, morphologies, populations)
//	      ↓
//	  [stats] / [check] / [render] (summaries, defect checks, dendrograms)
//
// # Quick Start
//
//	m, err := io.LoadMorphology(ctx, "cell.swc")
//	if err != nil {
//	    return err
//	}
//	total, _ := features.Get("total_length", m)
//	axon, _ := features.Get("section_lengths", m,
//	    features.WithNeuriteType(morph.TypeAxon))
//
// # Main Packages
//
// ## Domain
//
// [morphmath] - Vector geometry on points: segment lengths, areas, volumes,
// angles, PCA.
//
// [morph] - The morphology model. Soma classification, section splitting,
// neurite types, subtree views over mixed neurites, lazy populations.
//
// [features] - A registry of named features with neurite, morphology and
// population scope. [features.Getter] caches morphology results.
//
// [check] - Structural checks on raw points and morphology checks on built
// trees, with a parallel runner and PASS/FAIL summary.
//
// [stats] - Summary statistics of configured features per neurite type,
// written as JSON or CSV.
//
// [render] - Dendrograms as Graphviz DOT, SVG or PNG.
//
// ## Infrastructure
//
// [io] - SWC and JSON readers, path expansion, loaders.
//
// [cache] - Feature caches: null, memory, file and Redis, plus key
// construction and retry with backoff.
//
// [store] - Persistent stats runs in memory, SQLite or MongoDB.
//
// [api] - The HTTP API served by "arbor serve".
//
// [config] - TOML and YAML configuration loading.
//
// [errors] - Coded errors shared by every package.
//
// [observability] - Hooks for loads, feature evaluation and caching, with a
// Prometheus implementation.
//
// # Testing
//
//	go test ./pkg/...          # All tests
//	go test -short ./pkg/...   # Skip Graphviz rendering
//	go test -run Example       # Examples only
package pkg
