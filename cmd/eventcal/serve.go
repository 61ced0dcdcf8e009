package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/eventcal/internal/bootstrap"
	"github.com/at-ishikawa/eventcal/internal/server"
	"github.com/at-ishikawa/eventcal/internal/service"
)

func newServeCommand() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the event API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("loadConfig() > %w", err)
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			registry := prometheus.NewRegistry()
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			logger := slog.Default().With("command", "serve")
			svc, fetcher := service.NewFromConfig(cfg, registry, service.WithLogger(logger))

			app := bootstrap.New(bootstrap.WithLogger(logger))
			app.AddShutdownHook("fetcher", func(context.Context) error {
				return fetcher.Close()
			})
			return server.Serve(cmd.Context(), app, cfg.Server, svc, registry, server.WithLogger(logger))
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on, overriding server.port")
	return cmd
}
