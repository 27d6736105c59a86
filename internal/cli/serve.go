package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/arbor/pkg/api"
	"github.com/matzehuels/arbor/pkg/features"
	promhooks "github.com/matzehuels/arbor/pkg/observability/prometheus"
)

const shutdownTimeout = 10 * time.Second

type serveOpts struct {
	addr    string
	store   string
	metrics bool
	timeout time.Duration
	cache   cacheFlags
}

func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: "127.0.0.1:8080", metrics: true, timeout: 60 * time.Second}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API: upload morphologies, query features, render
dendrograms and browse stored stats runs. Features are cached like the
stats command; --redis shares the cache between instances.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.store, "store", "", "run store: memory, mongodb://..., sqlite:<path>")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", opts.metrics, "expose Prometheus metrics at /metrics")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", opts.timeout, "per-request timeout (0 disables)")
	opts.cache.register(cmd)

	return cmd
}

func runServe(ctx context.Context, opts serveOpts) error {
	logger := loggerFromContext(ctx)

	fc, err := opts.cache.open(ctx)
	if err != nil {
		return err
	}
	defer fc.Close()

	st, err := openStore(ctx, opts.store)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	srv := api.NewServer(features.NewGetter(fc), logger)
	srv.Store = st
	srv.Timeout = opts.timeout
	if opts.metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		promhooks.New(reg).Install()
		srv.Gatherer = reg
	}

	hs := &http.Server{
		Addr:              opts.addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		logger.Debug("Listening", "addr", opts.addr, "metrics", opts.metrics, "store", opts.store != "")
		printInfo("Serving on http://%s", opts.addr)
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := hs.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
