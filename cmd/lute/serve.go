package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	lute "github.com/goliatone/go-lute"
	"github.com/goliatone/go-lute/internal/archive"
	"github.com/goliatone/go-lute/internal/documents"
	"github.com/goliatone/go-lute/internal/httpapi"
	"github.com/goliatone/go-lute/internal/logging"
	"github.com/goliatone/go-lute/internal/metrics"
	"github.com/goliatone/go-lute/internal/runtimeconfig"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(flags *globalFlags) *cobra.Command {
	defaults := runtimeconfig.DefaultConfig()
	var (
		addr       string
		contentDir string
		metricsOn  bool
		archiveCfg = defaults.Archive
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render endpoints over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := flags.config()
			cfg.HTTP = runtimeconfig.HTTPConfig{Enabled: true, Address: addr}
			cfg.Features.Metrics = metricsOn
			cfg.Archive = archiveCfg
			if contentDir != "" {
				cfg.Documents.Enabled = true
				cfg.Documents.ContentDir = contentDir
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			provider, err := lute.NewLoggerProvider(cfg.Logging)
			if err != nil {
				return err
			}
			logger := logging.HTTPLogger(provider)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			engineOpts := []lute.Option{lute.WithLoggerProvider(provider)}
			routerOpts := []httpapi.Option{httpapi.WithLoggerProvider(provider)}
			var m *metrics.Metrics
			if cfg.Features.Metrics {
				registry := prometheus.NewRegistry()
				registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
				m = metrics.New(metrics.WithRegistry(registry))
				engineOpts = append(engineOpts, lute.WithMetrics(m))
				routerOpts = append(routerOpts, httpapi.WithGatherer(registry))
			}
			engine, err := lute.NewFromConfig(cfg, engineOpts...)
			if err != nil {
				return err
			}

			if cfg.Documents.Enabled {
				svcOpts := []documents.Option{documents.WithLoggerProvider(provider), documents.WithMetrics(m)}
				if cfg.Archive.Enabled {
					repo, closeDB, err := archive.Open(ctx, cfg.Archive, provider)
					if err != nil {
						return err
					}
					defer closeDB()
					svcOpts = append(svcOpts, documents.WithArchive(repo))
				}
				svc, err := documents.NewService(documents.Config{
					ContentDir: cfg.Documents.ContentDir,
					Pattern:    cfg.Documents.Pattern,
					Recursive:  cfg.Documents.Recursive,
				}, engine, svcOpts...)
				if err != nil {
					return err
				}
				routerOpts = append(routerOpts, httpapi.WithDocuments(svc))
			}

			srv := &http.Server{
				Addr:              cfg.HTTP.Address,
				Handler:           httpapi.NewRouter(engine, routerOpts...),
				ReadHeaderTimeout: 5 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				logger.Info("http.server.listening", "address", srv.Addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			logger.Info("http.server.shutdown")
			return srv.Shutdown(shutdownCtx)
		},
	}

	f := cmd.Flags()
	f.StringVar(&addr, "addr", defaults.HTTP.Address, "listen address")
	f.StringVar(&contentDir, "content-dir", "", "serve documents from this directory under /documents/")
	f.BoolVar(&metricsOn, "metrics", true, "expose Prometheus metrics on /metrics")
	f.BoolVar(&archiveCfg.Enabled, "archive", false, "archive document renders")
	f.StringVar(&archiveCfg.Dialect, "archive-dialect", defaults.Archive.Dialect, "archive dialect (sqlite, postgres)")
	f.StringVar(&archiveCfg.DSN, "archive-dsn", defaults.Archive.DSN, "archive data source name")
	f.DurationVar(&archiveCfg.CacheTTL, "archive-cache-ttl", defaults.Archive.CacheTTL, "archive read cache ttl, 0 disables")
	return cmd
}
