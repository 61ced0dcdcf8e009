package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/eventcal/internal/bootstrap"
	"github.com/at-ishikawa/eventcal/internal/config"
	"github.com/at-ishikawa/eventcal/internal/server"
	"github.com/at-ishikawa/eventcal/internal/service"
)

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "eventcal-server",
		Short:         "Event calendar HTTP API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	svc, fetcher := service.NewFromConfig(cfg, registry, service.WithLogger(logger))

	app := bootstrap.New(bootstrap.WithLogger(logger))
	app.AddShutdownHook("fetcher", func(context.Context) error {
		return fetcher.Close()
	})
	return server.Serve(ctx, app, cfg.Server, svc, registry, server.WithLogger(logger))
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}
