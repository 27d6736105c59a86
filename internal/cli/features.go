package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/arbor/pkg/features"
	mio "github.com/matzehuels/arbor/pkg/io"
	"github.com/matzehuels/arbor/pkg/morph"
)

func (c *CLI) featuresCommand() *cobra.Command {
	var (
		scope string
		tui   bool
	)

	cmd := &cobra.Command{
		Use:   "features [file]",
		Short: "List the registered features",
		Long: `List the registered features with their scope and result shape.

With --tui, browse the features interactively. When a morphology file is
given, the browser shows each feature's value for it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list := filterFeatures(features.Default.List(), scope)
			if !tui {
				writeFeatureTable(cmd.OutOrStdout(), list)
				return nil
			}
			var m *morph.Morphology
			if len(args) == 1 {
				var err error
				if m, err = mio.LoadMorphology(cmd.Context(), args[0]); err != nil {
					return err
				}
			}
			return runFeatureBrowser(cmd.Context(), list, m)
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "", "only list features of this scope: neurite, morphology, population")
	cmd.Flags().BoolVar(&tui, "tui", false, "browse features interactively")

	return cmd
}

func filterFeatures(list []*features.Feature, scope string) []*features.Feature {
	if scope == "" {
		return list
	}
	var out []*features.Feature
	for _, f := range list {
		if f.Scope.String() == scope {
			out = append(out, f)
		}
	}
	return out
}

func writeFeatureTable(w io.Writer, list []*features.Feature) {
	rows := make([][]string, len(list))
	for i, f := range list {
		rows[i] = []string{f.Name, f.Scope.String(), f.Shape.String(), truncate(f.Doc, 70)}
	}
	writeTable(w, []string{"Feature", "Scope", "Shape", "Description"}, rows, func(row, col int) lipgloss.Style {
		if col == 0 {
			return StyleHighlight
		}
		if col == 3 {
			return StyleDim
		}
		return lipgloss.NewStyle()
	})
}

func runFeatureBrowser(ctx context.Context, list []*features.Feature, m *morph.Morphology) error {
	model := NewFeatureListModel(list, m)
	_, err := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}

func (c *CLI) getCommand() *cobra.Command {
	var (
		neuriteType string
		sectionType string
		params      []string
		population  bool
	)

	cmd := &cobra.Command{
		Use:   "get <feature> <files or directories...>",
		Short: "Evaluate one feature",
		Long: `Evaluate one feature on each morphology, or on all of them as a
population with --population.

--neurite-type filters the neurites of a morphology; --section-type
evaluates a neurite feature on each neurite and keeps sections of that
type. Feature parameters are passed as --param name=value.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := featureOptions(neuriteType, sectionType, params)
			if err != nil {
				return err
			}
			return runGet(cmd.Context(), cmd.OutOrStdout(), args[0], args[1:], opts, sectionType != "", population)
		},
	}

	cmd.Flags().StringVar(&neuriteType, "neurite-type", "", "neurite type filter (axon, basal_dendrite, apical_dendrite, all)")
	cmd.Flags().StringVar(&sectionType, "section-type", "", "section type filter for neurite features")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "feature parameter name=value (repeatable)")
	cmd.Flags().BoolVar(&population, "population", false, "evaluate on all files as one population")

	return cmd
}

func featureOptions(neuriteType, sectionType string, params []string) ([]features.Option, error) {
	var opts []features.Option
	if neuriteType != "" {
		t, err := morph.ParseNeuriteType(neuriteType)
		if err != nil {
			return nil, err
		}
		opts = append(opts, features.WithNeuriteType(t))
	}
	if sectionType != "" {
		t, err := morph.ParseNeuriteType(sectionType)
		if err != nil {
			return nil, err
		}
		opts = append(opts, features.WithSectionType(t))
	}
	for _, p := range params {
		name, value, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --param %q (want name=value)", p)
		}
		opts = append(opts, features.WithParam(name, parseParamValue(value)))
	}
	return opts, nil
}

// parseParamValue reads a bool, a number or a comma separated list of
// numbers, falling back to the raw string.
func parseParamValue(s string) any {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if strings.Contains(s, ",") {
		var fs []float64
		for _, part := range strings.Split(s, ",") {
			f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return s
			}
			fs = append(fs, f)
		}
		return fs
	}
	return s
}

func runGet(ctx context.Context, w io.Writer, name string, args []string, opts []features.Option, perNeurite, population bool) error {
	paths, err := mio.ExpandPaths(args)
	if err != nil {
		return err
	}

	if population {
		pop := mio.LoadPopulation(ctx, paths, nil)
		v, err := features.Get(name, pop, opts...)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\n", pop.Name, formatValue(v))
		return nil
	}

	for _, path := range paths {
		m, err := mio.LoadMorphology(ctx, path)
		if err != nil {
			return err
		}
		var target any = m
		if perNeurite {
			target = m.Neurites()
		}
		v, err := features.Get(name, target, opts...)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Fprintf(w, "%s\t%s\n", m.Name, formatValue(v))
	}
	return nil
}

func formatValue(v features.Value) string {
	if v.IsScalar() {
		return strconv.FormatFloat(v.Float(), 'g', 6, 64)
	}
	parts := make([]string, v.Len())
	for i, x := range v.Floats() {
		parts[i] = strconv.FormatFloat(x, 'g', 6, 64)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
