// Package io reads and writes raw point tables and loads morphologies
// from disk.
//
// # SWC
//
// SWC is a whitespace separated text format with one point per line:
//
//	# id type x y z radius parent
//	1 1 0 0 0 1.0 -1
//	2 3 1 0 0 0.5 1
//
// Blank lines and everything after a '#' are ignored. Structure
// identifiers above 10 are read as undefined. Use [ReadSWC] for any
// io.Reader and [ImportSWC] for a file path; [WriteSWC] and [ExportSWC]
// write the same format back.
//
// # JSON
//
// The JSON format carries the same columns as objects:
//
//	{
//	  "name": "cell",
//	  "points": [
//	    {"id": 1, "type": 1, "x": 0, "y": 0, "z": 0, "radius": 1, "parent": -1}
//	  ]
//	}
//
// # Loading
//
// [LoadMorphology] picks the reader from the file extension, builds the
// morphology and reports the load through the build hooks of package
// observability. [LoadPopulation] returns a lazily loaded population over
// a list of files; [ExpandPaths] turns directories into their sorted
// morphology files.
package io
