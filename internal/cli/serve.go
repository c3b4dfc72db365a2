package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/adforge/internal/server"
	"github.com/matzehuels/adforge/pkg/config"
	"github.com/matzehuels/adforge/pkg/export"
	"github.com/matzehuels/adforge/pkg/observability"
	"github.com/matzehuels/adforge/pkg/pipeline"
)

const shutdownTimeout = 15 * time.Second

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		cacheKind string
		storeKind string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the adforge HTTP API.

Settings are read from ADFORGE_* environment variables; flags override them.
Prometheus metrics are served on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServer()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if cacheKind != "" {
				cfg.Cache = cacheKind
			}
			if storeKind != "" {
				cfg.Store = storeKind
			}
			if c.catalog != "" {
				cfg.Catalog = c.catalog
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default $ADFORGE_ADDR or :8080)")
	cmd.Flags().StringVar(&cacheKind, "cache", "", "cache backend: null, file, redis")
	cmd.Flags().StringVar(&storeKind, "store", "", "artifact store: memory, file, gridfs")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Server) error {
	logger := loggerFromContext(ctx)

	metrics := observability.NewPrometheusHooks(prometheus.DefaultRegisterer)
	observability.SetPipelineHooks(metrics)
	observability.SetCacheHooks(metrics)
	observability.SetHTTPHooks(metrics)

	reg, presets, err := config.Defaults(cfg.Catalog)
	if err != nil {
		return err
	}
	ch, err := cfg.OpenCache(ctx)
	if err != nil {
		return err
	}
	store, closeStore, err := cfg.OpenStore(ctx)
	if err != nil {
		ch.Close()
		return err
	}
	defer func() {
		if err := closeStore(context.Background()); err != nil {
			logger.Warn("close artifact store", "error", err)
		}
	}()

	opts := []pipeline.RunnerOption{
		pipeline.WithChannels(reg),
		pipeline.WithPresets(presets),
		pipeline.WithStore(store),
		pipeline.WithRendererOptions(export.WithNativePDF(cfg.NativePDF)),
	}
	if cfg.JudgeURL != "" {
		j, err := newHTTPJudge(cfg.JudgeURL, cfg.JudgeToken, logger)
		if err != nil {
			ch.Close()
			return err
		}
		opts = append(opts, pipeline.WithJudge(cfg.JudgeURL, j))
	}
	runner := pipeline.NewRunner(ch, nil, logger, opts...)
	defer runner.Close()

	srv, err := server.New(runner, server.WithLogger(logger), server.WithMaxBodyBytes(cfg.MaxBodyBytes))
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr, "cache", cfg.Cache, "store", cfg.Store)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
