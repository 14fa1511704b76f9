package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-specform/internal/server"
	"github.com/goliatone/go-specform/pkg/lookup"
)

func serveCmd(load configLoader) *cobra.Command {
	var (
		addr     string
		database string
		seedPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the lookup API and the attribute form",
		Long: `Serve the category attribute lookup API backed by SQLite, together
with a server-rendered attribute form and its sync endpoint.

Examples:
  specform serve --seed catalogue.yaml
  specform serve --db file:specs.db --addr :9000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if database != "" {
				cfg.Lookup.Database = database
			}
			if seedPath != "" {
				cfg.Lookup.Seed = seedPath
			}

			logger := cfg.Logger(os.Stderr)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, err := lookup.OpenSQLite(ctx, cfg.Lookup.Database)
			if err != nil {
				return err
			}
			defer store.Close()

			if cfg.Lookup.Seed != "" {
				file, err := os.Open(cfg.Lookup.Seed)
				if err != nil {
					return err
				}
				seed, err := lookup.LoadSeed(file)
				file.Close()
				if err != nil {
					return err
				}
				if err := seed.Apply(ctx, store); err != nil {
					return err
				}
				logger.Info("catalogue seeded", "path", cfg.Lookup.Seed, "categories", len(seed.Categories))
			}

			options := []server.Option{
				server.WithLogger(logger),
				server.WithPolicy(cfg.Policy()),
				server.WithMessages(cfg.Form.Messages),
				server.WithTheme(cfg.RendererTheme()),
				server.WithLookupOptions(lookup.WithLegacyPayload(cfg.Lookup.Legacy)),
			}
			if cfg.Server.Metrics {
				registry := prometheus.NewRegistry()
				registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
				options = append(options, server.WithMetrics(registry))
			}

			handler, err := server.New(store, options...)
			if err != nil {
				return err
			}

			httpServer := &http.Server{
				Addr:        cfg.Server.Addr,
				Handler:     handler,
				ReadTimeout: cfg.Server.ReadTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", "addr", cfg.Server.Addr)
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			logger.Info("shutting down")
			return httpServer.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().StringVar(&database, "db", "", "sqlite DSN (overrides lookup.database)")
	cmd.Flags().StringVar(&seedPath, "seed", "", "YAML catalogue to load at startup")

	return cmd
}
