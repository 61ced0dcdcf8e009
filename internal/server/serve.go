package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/at-ishikawa/eventcal/internal/bootstrap"
	"github.com/at-ishikawa/eventcal/internal/config"
)

// Serve runs the API on cfg.Port until ctx is done or the process is
// interrupted. Hooks already registered on app run after the HTTP server
// has shut down. opts configure the API handler.
func Serve(ctx context.Context, app *bootstrap.App, cfg config.ServerConfig, loader DatasetLoader, gatherer prometheus.Gatherer, opts ...Option) error {
	handler := NewHandler(loader, opts...)
	srv := NewHTTPServer(cfg.Port, cfg.CORS.AllowedOrigins, NewMux(handler, gatherer))
	app.AddShutdownHook("http server", srv.Shutdown)

	return app.Run(ctx, func(ctx context.Context) error {
		handler.logger.Info("Starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
}
