package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/at-ishikawa/eventcal/internal/config"
	"github.com/at-ishikawa/eventcal/internal/service"
	"github.com/at-ishikawa/eventcal/internal/source"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

func newService(reg prometheus.Registerer) (*service.Service, *source.HTTPFetcher, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("loadConfig() > %w", err)
	}
	svc, fetcher := service.NewFromConfig(cfg, reg)
	return svc, fetcher, nil
}
