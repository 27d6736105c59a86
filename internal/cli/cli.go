// Package cli implements the arbor command-line interface.
//
// Commands:
//   - stats: extract summary statistics of features from morphology files
//   - check: run structural and morphology checks over files
//   - features: list registered features, or browse them in a terminal UI
//   - get: evaluate one feature on morphologies or a population
//   - dendrogram: draw a morphology as a dendrogram (SVG, PNG or DOT)
//   - soma: print soma geometry
//   - serve: run the HTTP API
//   - cache: manage the feature cache
//
// All commands support --verbose (-v) for debug logging. The logger is
// carried in the command context.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/arbor/pkg/buildinfo"
	"github.com/matzehuels/arbor/pkg/cache"
	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const appName = "arbor"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root command with every subcommand registered.
// The logger is attached to the command context before any command runs.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Arbor analyses neuron morphologies",
		Long:         `Arbor loads neuron reconstructions (SWC or JSON point tables), extracts morphometric features and statistics, checks reconstructions for common defects and serves the results over HTTP.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.statsCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.featuresCommand())
	root.AddCommand(c.getCommand())
	root.AddCommand(c.dendrogramCommand())
	root.AddCommand(c.somaCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Backends
// =============================================================================

// cacheFlags selects the feature cache backend.
type cacheFlags struct {
	noCache bool
	redis   string // host:port of a Redis server; empty uses the file cache
}

func (f *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the feature cache")
	cmd.Flags().StringVar(&f.redis, "redis", "", "cache in Redis at host:port instead of on disk")
}

// open returns the selected cache. A missing cache directory disables
// caching instead of failing the command.
func (f *cacheFlags) open(ctx context.Context) (cache.Cache, error) {
	switch {
	case f.noCache:
		return cache.NewNullCache(), nil
	case f.redis != "":
		return cache.NewRedisCache(ctx, cache.RedisConfig{Addr: f.redis})
	}
	dir, err := cacheDir()
	if err != nil {
		loggerFromContext(ctx).Warn("No cache directory, caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// openStore opens the run store named by spec:
//
//	""                    no store
//	"memory"              in-process store
//	"mongodb://..."       MongoDB
//	"sqlite:<path>", *.db SQLite file
func openStore(ctx context.Context, spec string) (store.Store, error) {
	switch {
	case spec == "":
		return nil, nil
	case spec == "memory":
		return store.NewMemoryStore(), nil
	case strings.HasPrefix(spec, "mongodb://"), strings.HasPrefix(spec, "mongodb+srv://"):
		return store.NewMongoStore(ctx, store.MongoConfig{URI: spec})
	case strings.HasPrefix(spec, "sqlite:"):
		return store.NewSQLiteStore(ctx, strings.TrimPrefix(spec, "sqlite:"))
	case strings.HasSuffix(spec, ".db"), strings.HasSuffix(spec, ".sqlite"):
		return store.NewSQLiteStore(ctx, spec)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown store %q (want memory, mongodb://..., sqlite:<path>)", spec)
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory following XDG (~/.cache/arbor/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
