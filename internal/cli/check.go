package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/arbor/pkg/check"
	mio "github.com/matzehuels/arbor/pkg/io"
)

// ErrChecksFailed signals a FAIL summary; the printed table already
// explains it.
var ErrChecksFailed = errors.New("checks failed")

func (c *CLI) checkCommand() *cobra.Command {
	var (
		config  string
		output  string
		workers int
		list    bool
	)

	cmd := &cobra.Command{
		Use:   "check [files or directories...]",
		Short: "Check morphologies for reconstruction defects",
		Long: `Check morphologies for reconstruction defects.

Structural checks run on the raw point table; morphology checks run on the
built morphology. Without --config the default set is used. The summary
marks each file PASS or FAIL and the command fails when any file fails.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				listChecks(cmd.OutOrStdout())
				return nil
			}
			if len(args) == 0 {
				return fmt.Errorf("requires at least 1 file or directory")
			}
			return c.runCheck(cmd.Context(), args, config, output, workers)
		},
	}

	cmd.Flags().StringVarP(&config, "config", "c", "", "check configuration (TOML or YAML)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the JSON summary to this file")
	cmd.Flags().IntVarP(&workers, "workers", "j", 0, "parallel workers (default GOMAXPROCS)")
	cmd.Flags().BoolVar(&list, "list", false, "list available checks")

	return cmd
}

func (c *CLI) runCheck(ctx context.Context, args []string, config, output string, workers int) error {
	logger := loggerFromContext(ctx)

	cfg := check.DefaultConfig()
	if config != "" {
		var err error
		if cfg, err = check.LoadConfig(config); err != nil {
			return err
		}
	}
	paths, err := mio.ExpandPaths(args)
	if err != nil {
		return err
	}

	runner, err := check.NewRunner(cfg, logger)
	if err != nil {
		return err
	}
	runner.Workers = workers

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Checking %d files", len(paths)))
	spinner.Start()
	summary, err := runner.Run(ctx, paths)
	if err != nil {
		spinner.StopWithError("Check run failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Checked %d files", len(paths)))

	printCheckSummary(os.Stdout, summary)

	if output != "" {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return err
		}
		printFile(output)
	}

	if summary.Status != check.StatusPass {
		return ErrChecksFailed
	}
	return nil
}

func printCheckSummary(w io.Writer, s *check.Summary) {
	for _, f := range s.Files {
		fmt.Fprintln(w, StyleTitle.Render(filepath.Base(f.Path))+" "+passFail(f.All))
		if f.Err != nil {
			fmt.Fprintln(w, "  "+StyleFailure.Render(f.Err.Error()))
		}
		if len(f.Outcomes) == 0 {
			continue
		}
		rows := make([][]string, len(f.Outcomes))
		for i, o := range f.Outcomes {
			rows[i] = []string{o.Title, passFail(o.Status), truncate(strings.Join(o.Info, " "), 60)}
		}
		writeTable(w, []string{"Check", "Status", "Details"}, rows, func(row, col int) lipgloss.Style {
			if col == 2 {
				return StyleDim
			}
			return lipgloss.NewStyle()
		})
	}
	fmt.Fprintln(w, "STATUS "+passFail(s.Status == check.StatusPass))
}

func listChecks(w io.Writer) {
	var rows [][]string
	for _, g := range []check.Group{check.GroupStructural, check.GroupMorphology} {
		for _, chk := range check.List(g) {
			var params []string
			for _, p := range chk.Params {
				params = append(params, fmt.Sprintf("%s=%v", p.Name, p.Default))
			}
			rows = append(rows, []string{chk.Name, string(g), strings.Join(params, " "), chk.Doc})
		}
	}
	writeTable(w, []string{"Check", "Group", "Options", "Description"}, rows, nil)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
