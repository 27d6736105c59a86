package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	mio "github.com/matzehuels/arbor/pkg/io"
)

func (c *CLI) somaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "soma [files or directories...]",
		Short: "Print soma geometry",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSoma(cmd.Context(), cmd.OutOrStdout(), args)
		},
	}
}

func runSoma(ctx context.Context, w io.Writer, args []string) error {
	paths, err := mio.ExpandPaths(args)
	if err != nil {
		return err
	}
	var rows [][]string
	for _, path := range paths {
		m, err := mio.LoadMorphology(ctx, path)
		if err != nil {
			loggerFromContext(ctx).Error("Failed to load", "file", path, "err", err)
			continue
		}
		s := m.Soma()
		c := s.Center()
		rows = append(rows, []string{
			m.Name,
			s.Kind().String(),
			fmt.Sprintf("%.2f %.2f %.2f", c[0], c[1], c[2]),
			fmt.Sprintf("%.3f", s.Radius()),
			fmt.Sprintf("%.3f", s.Area()),
			fmt.Sprintf("%.3f", s.Volume()),
		})
	}
	writeTable(w, []string{"Morphology", "Kind", "Center", "Radius", "Area", "Volume"}, rows, nil)
	return nil
}
