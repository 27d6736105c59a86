// Package render draws morphologies as dendrograms.
//
// A dendrogram has one node per section and one edge per parent/child
// link, rooted at the soma. Nodes are coloured by neurite type and
// labelled with the section id and, when detailed, its length.
//
// [ToDOT] produces Graphviz DOT source. [RenderSVG] and [RenderPNG] lay it
// out in process with [github.com/goccy/go-graphviz]:
//
//	dot := render.ToDOT(m, render.Options{Detailed: true})
//	svg, err := render.RenderSVG(ctx, dot)
//
// With [Options.Scale] set, edge lengths follow section lengths: a section
// spans one rank per Scale micrometers, so long sections hang lower.
package render
