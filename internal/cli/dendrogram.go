package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	mio "github.com/matzehuels/arbor/pkg/io"
	"github.com/matzehuels/arbor/pkg/morph"
	"github.com/matzehuels/arbor/pkg/render"
)

type dendrogramOpts struct {
	output      string
	format      string // svg, png or dot
	detailed    bool
	neuriteType string
	scale       float64
}

func (c *CLI) dendrogramCommand() *cobra.Command {
	opts := dendrogramOpts{format: "svg"}

	cmd := &cobra.Command{
		Use:   "dendrogram [file]",
		Short: "Draw a morphology as a dendrogram",
		Long: `Draw a morphology as a dendrogram: one node per section, coloured by
neurite type. With --scale, edge lengths follow section lengths.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDendrogram(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default <name>.<format>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg, png or dot")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label sections with type and length")
	cmd.Flags().StringVar(&opts.neuriteType, "neurite-type", "", "only draw neurites of this type")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "micrometers per rank; 0 draws uniform ranks")

	return cmd
}

func runDendrogram(ctx context.Context, path string, opts dendrogramOpts) error {
	logger := loggerFromContext(ctx)

	ropts := render.Options{Detailed: opts.detailed, Scale: opts.scale}
	if opts.neuriteType != "" {
		t, err := morph.ParseNeuriteType(opts.neuriteType)
		if err != nil {
			return err
		}
		ropts.NeuriteType = t
	}

	m, err := mio.LoadMorphology(ctx, path)
	if err != nil {
		return err
	}
	dot := render.ToDOT(m, ropts)

	var data []byte
	switch strings.ToLower(opts.format) {
	case "dot":
		data = []byte(dot)
	case "svg":
		data, err = render.RenderSVG(ctx, dot)
	case "png":
		data, err = render.RenderPNG(ctx, dot)
	default:
		return fmt.Errorf("invalid format: %s (must be 'svg', 'png' or 'dot')", opts.format)
	}
	if err != nil {
		return err
	}

	out := opts.output
	if out == "" {
		out = filepath.Join(filepath.Dir(path), m.Name+"."+strings.ToLower(opts.format))
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	logger.Debug("Rendered dendrogram", "sections", len(m.Sections()), "bytes", len(data))
	printSuccess("Dendrogram of %s", m.Name)
	printFile(out)
	return nil
}
