package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/arbor/pkg/features"
	mio "github.com/matzehuels/arbor/pkg/io"
	"github.com/matzehuels/arbor/pkg/morph"
	"github.com/matzehuels/arbor/pkg/stats"
)

// statsOpts holds the flags of the stats command.
type statsOpts struct {
	config   string // TOML or YAML stats configuration
	full     bool   // every feature with every summary mode
	output   string // output file; extension selects json or csv
	format   string // json or csv when writing to stdout
	workers  int
	subtrees bool   // process mixed subtrees as separate neurites
	store    string // run store spec, see openStore
	cache    cacheFlags
}

func (c *CLI) statsCommand() *cobra.Command {
	var opts statsOpts

	cmd := &cobra.Command{
		Use:   "stats [files or directories...]",
		Short: "Extract summary statistics of morphology features",
		Long: `Extract summary statistics of morphology features.

Each configured neurite feature is computed per neurite type (axon, basal
and apical dendrites, all) and summarized with the configured modes
(raw, min, max, median, mean, std, total). Directories are expanded to the
morphology files they contain.

Results are cached by morphology content and configuration, so unchanged
files are not recomputed. With --store each run is also saved to a run
store (memory, sqlite:<path> or mongodb://...).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStats(cmd.Context(), cmd.OutOrStdout(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "stats configuration (TOML or YAML)")
	cmd.Flags().BoolVar(&opts.full, "full", false, "extract every feature with every mode")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (.json or .csv); stdout when empty")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "json", "stdout format: json or csv")
	cmd.Flags().IntVarP(&opts.workers, "workers", "j", 0, "parallel workers (default GOMAXPROCS)")
	cmd.Flags().BoolVar(&opts.subtrees, "process-subtrees", false, "split mixed-type neurites into subtrees")
	cmd.Flags().StringVar(&opts.store, "store", "", "save the run: memory, sqlite:<path> or mongodb://...")
	opts.cache.register(cmd)

	return cmd
}

func (c *CLI) runStats(ctx context.Context, stdout io.Writer, args []string, opts statsOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := statsConfig(opts)
	if err != nil {
		return err
	}
	format, err := outputFormat(opts.output, opts.format)
	if err != nil {
		return err
	}
	paths, err := mio.ExpandPaths(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no morphology files in %s", strings.Join(args, ", "))
	}

	featureCache, err := opts.cache.open(ctx)
	if err != nil {
		return err
	}
	defer featureCache.Close()
	st, err := openStore(ctx, opts.store)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	runner, err := stats.NewRunner(cfg, logger)
	if err != nil {
		return err
	}
	runner.Workers = opts.workers
	runner.Cache = featureCache
	runner.Getter = features.NewGetter(featureCache)
	runner.Store = st
	if opts.subtrees {
		runner.Options = []morph.Option{morph.WithProcessSubtrees(true)}
	}

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Extracting stats from %d files", len(paths)))
	spinner.Start()
	rep, err := runner.Run(ctx, paths)
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			return ctx.Err()
		}
		spinner.StopWithError("Stats extraction failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Extracted stats for %d files", len(rep.Results)))

	var buf bytes.Buffer
	if format == "csv" {
		err = stats.WriteCSV(&buf, rep.Results)
	} else {
		err = stats.WriteJSON(&buf, rep.Results)
	}
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err = buf.WriteTo(stdout)
	} else {
		err = os.WriteFile(opts.output, buf.Bytes(), 0o644)
		if err == nil {
			printSuccess("Wrote stats for %d morphologies", len(rep.Results))
			printFile(opts.output)
		}
	}
	if err != nil {
		return err
	}

	for _, f := range rep.Failures {
		printWarning("%s: %v", f.Path, f.Err)
	}
	if len(rep.Failures) > 0 {
		printCounts(len(paths), len(rep.Results), len(rep.Failures))
		printNextStep("Find reconstruction defects", "arbor check "+strings.Join(args, " "))
	}
	if rep.RunID != "" {
		printKeyValue("run", rep.RunID)
	}
	if len(rep.Failures) > 0 && len(rep.Results) == 0 {
		return fmt.Errorf("all %d files failed", len(rep.Failures))
	}
	return nil
}

func statsConfig(opts statsOpts) (stats.Config, error) {
	switch {
	case opts.config != "" && opts.full:
		return stats.Config{}, fmt.Errorf("--config and --full are exclusive")
	case opts.config != "":
		return stats.LoadConfig(opts.config)
	case opts.full:
		return stats.FullConfig(), nil
	default:
		return stats.DefaultConfig(), nil
	}
}

// outputFormat picks json or csv from the output extension, falling back
// to the --format flag.
func outputFormat(output, flag string) (string, error) {
	if output != "" {
		switch ext := strings.ToLower(filepath.Ext(output)); ext {
		case ".json":
			return "json", nil
		case ".csv":
			return "csv", nil
		default:
			return "", fmt.Errorf("unsupported output extension %q (want .json or .csv)", ext)
		}
	}
	switch flag {
	case "json", "csv":
		return flag, nil
	default:
		return "", fmt.Errorf("invalid format: %s (must be 'json' or 'csv')", flag)
	}
}
