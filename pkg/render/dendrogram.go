package render

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/arbor/pkg/morph"
)

// Options configures dendrogram generation.
type Options struct {
	// Detailed adds section type and length to node labels.
	Detailed bool
	// NeuriteType limits the dendrogram to neurites of one type. The zero
	// value, like morph.TypeAll, keeps every neurite.
	NeuriteType morph.NeuriteType
	// Scale is the section length in micrometers drawn as one rank. Zero
	// draws every section one rank long.
	Scale float64
}

// Colors maps neurite types to fill colours.
var Colors = map[morph.NeuriteType]string{
	morph.TypeSoma:           "#000000",
	morph.TypeAxon:           "#1f77b4",
	morph.TypeBasalDendrite:  "#d62728",
	morph.TypeApicalDendrite: "#9467bd",
	morph.TypeUndefined:      "#2ca02c",
}

const customColor = "#ff7f0e"

// Color returns the fill colour for t.
func Color(t morph.NeuriteType) string {
	if c, ok := Colors[t]; ok {
		return c
	}
	return customColor
}

// ToDOT converts m to a Graphviz DOT dendrogram.
func ToDOT(m *morph.Morphology, opts Options) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", m.Name)
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontcolor=white, fontsize=14, margin=\"0.1,0.05\"];\n")
	buf.WriteString("  edge [arrowhead=none];\n")
	buf.WriteString("  ranksep=0.3;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	fmt.Fprintf(&buf, "  soma [label=%q, shape=circle, fillcolor=%q];\n", somaLabel(m.Soma(), opts.Detailed), Color(morph.TypeSoma))

	filter := opts.NeuriteType
	if filter == morph.TypeUndefined {
		filter = morph.TypeAll
	}
	for n := range morph.IterNeurites(m, morph.NeuriteIsType(filter)) {
		root := n.Root()
		fmt.Fprintf(&buf, "  soma -> %s [minlen=%d];\n", nodeID(root), ranks(root, opts.Scale))
		for s := range root.PreOrder() {
			fmt.Fprintf(&buf, "  %s [label=%q, fillcolor=%q];\n", nodeID(s), sectionLabel(s, opts.Detailed), Color(s.Type))
			for _, c := range s.Children() {
				fmt.Fprintf(&buf, "  %s -> %s [minlen=%d];\n", nodeID(s), nodeID(c), ranks(c, opts.Scale))
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(s *morph.Section) string { return fmt.Sprintf("s%d", s.ID) }

func ranks(s *morph.Section, scale float64) int {
	if scale <= 0 {
		return 1
	}
	return max(1, int(math.Ceil(s.Length()/scale)))
}

func somaLabel(s *morph.Soma, detailed bool) string {
	if !detailed {
		return "soma"
	}
	return fmt.Sprintf("soma\nr=%s", formatLength(s.Radius()))
}

func sectionLabel(s *morph.Section, detailed bool) string {
	id := fmt.Sprint(s.ID)
	if !detailed {
		return id
	}
	return strings.Join([]string{id, s.Type.String(), "L=" + formatLength(s.Length())}, "\n")
}

func formatLength(x float64) string {
	return fmt.Sprintf("%.2f", x)
}
