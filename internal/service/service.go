// Package service serves the event dataset from the cache and refreshes it
// from the source when it expires.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"

	"github.com/at-ishikawa/eventcal/internal/cache"
	"github.com/at-ishikawa/eventcal/internal/config"
	"github.com/at-ishikawa/eventcal/internal/event"
	"github.com/at-ishikawa/eventcal/internal/source"
)

// CacheKey names the single cache slot and its refresh flight.
const CacheKey = "event_data"

// Origin tells where a dataset handed out by Load came from.
type Origin int

const (
	OriginCache Origin = iota
	OriginSource
	OriginStale
)

func (o Origin) String() string {
	switch o {
	case OriginCache:
		return "cache"
	case OriginSource:
		return "source"
	case OriginStale:
		return "stale"
	}
	return "unknown"
}

type Snapshot struct {
	Dataset event.Dataset
	Origin  Origin
}

// Stale reports whether the dataset was served past its expiry because the
// source could not be reached.
func (s Snapshot) Stale() bool {
	return s.Origin == OriginStale
}

type Service struct {
	fetcher source.Fetcher
	store   *cache.Store
	group   singleflight.Group
	mu      sync.Mutex
	flight  *flight
	metrics *Metrics
	logger  *slog.Logger
}

type Option func(*Service)

func WithMetrics(metrics *Metrics) Option {
	return func(s *Service) {
		s.metrics = metrics
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(fetcher source.Fetcher, store *cache.Store, opts ...Option) *Service {
	s := &Service{
		fetcher: fetcher,
		store:   store,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetDataset returns the cached dataset while it is fresh and refreshes it
// otherwise. When the refresh fails the expired dataset is returned if there
// is one; without one the error wraps source.ErrSourceUnavailable.
func (s *Service) GetDataset(ctx context.Context) (event.Dataset, error) {
	snapshot, err := s.Load(ctx)
	if err != nil {
		return event.Dataset{}, err
	}
	return snapshot.Dataset, nil
}

// Load is GetDataset that also reports where the dataset came from.
func (s *Service) Load(ctx context.Context) (Snapshot, error) {
	for {
		if entry, ok := s.store.Get(); ok && s.store.IsFresh(entry) {
			s.logger.Debug("Returning cached event data", "expiresAt", entry.ExpiresAt)
			s.metrics.observeCache("hit")
			return Snapshot{Dataset: entry.Dataset, Origin: OriginCache}, nil
		}

		f := s.joinFlight(ctx)
		ch := s.group.DoChan(CacheKey, func() (any, error) {
			defer s.endFlight(f)
			return s.refresh(f.ctx)
		})

		select {
		case <-ctx.Done():
			s.leaveFlight(f)
			return Snapshot{}, ctx.Err()
		case result := <-ch:
			s.leaveFlight(f)
			if result.Err != nil {
				// A flight abandoned by all of its callers may still hand its
				// cancellation to a caller that joined it late.
				if errors.Is(result.Err, context.Canceled) && ctx.Err() == nil {
					continue
				}
				return Snapshot{}, result.Err
			}
			return result.Val.(Snapshot), nil
		}
	}
}

// flight is the context of one refresh, cancelled once every caller
// waiting on it has given up.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

func (s *Service) joinFlight(ctx context.Context) *flight {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flight == nil {
		flightCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		s.flight = &flight{ctx: flightCtx, cancel: cancel}
	}
	s.flight.waiters++
	return s.flight
}

func (s *Service) leaveFlight(f *flight) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.waiters--
	if f.waiters > 0 {
		return
	}
	if f.ctx.Err() == nil && s.flight == f {
		s.logger.Debug("Every caller left, cancelling the event data refresh")
	}
	f.cancel()
	if s.flight == f {
		s.flight = nil
	}
}

func (s *Service) endFlight(f *flight) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flight == f {
		s.flight = nil
	}
}

func (s *Service) refresh(ctx context.Context) (Snapshot, error) {
	entry, ok := s.store.Get()
	if ok && s.store.IsFresh(entry) {
		s.metrics.observeCache("hit")
		return Snapshot{Dataset: entry.Dataset, Origin: OriginCache}, nil
	}
	s.metrics.observeCache("miss")
	s.logger.Info("Cache miss, fetching event data from source")

	started := time.Now()
	dataset, err := s.fetcher.FetchDataset(ctx)
	if err == nil {
		s.metrics.observeFetch(started, len(dataset.Events), len(dataset.Venues), true)
		if !s.store.Put(dataset) {
			s.logger.Warn("Fetched empty event data, not caching it")
		}
		return Snapshot{Dataset: dataset, Origin: OriginSource}, nil
	}
	s.metrics.observeFetch(started, 0, 0, false)

	if ok {
		s.metrics.observeCache("stale")
		s.logger.Warn("Serving stale event data after fetch failure",
			"storedAt", entry.StoredAt,
			"expiresAt", entry.ExpiresAt,
			"error", err)
		return Snapshot{Dataset: entry.Dataset, Origin: OriginStale}, nil
	}

	s.logger.Error("Failed to fetch event data and no cached data is available", "error", err)
	if !errors.Is(err, source.ErrSourceUnavailable) {
		err = &source.FetchError{Err: err}
	}
	return Snapshot{}, fmt.Errorf("fetcher.FetchDataset() > %w", err)
}

func (s *Service) ListEvents(ctx context.Context) ([]event.RawEvent, error) {
	dataset, err := s.GetDataset(ctx)
	if err != nil {
		return nil, err
	}
	return nonNil(dataset.Events), nil
}

func (s *Service) ListVenues(ctx context.Context) ([]event.RawVenue, error) {
	dataset, err := s.GetDataset(ctx)
	if err != nil {
		return nil, err
	}
	return nonNil(dataset.Venues), nil
}

func (s *Service) ListEventsByVenue(ctx context.Context, venueID int) ([]event.RawEvent, error) {
	dataset, err := s.GetDataset(ctx)
	if err != nil {
		return nil, err
	}
	return event.EventsByVenue(dataset.Events, venueID), nil
}

func (s *Service) ListEnrichedEvents(ctx context.Context) ([]event.EnrichedEvent, error) {
	dataset, err := s.GetDataset(ctx)
	if err != nil {
		return nil, err
	}
	return event.Enrich(dataset), nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// NewFromConfig wires the HTTP fetcher, the cache store and the metrics
// registered on reg. The caller closes the returned fetcher.
func NewFromConfig(cfg *config.Config, reg prometheus.Registerer, opts ...Option) (*Service, *source.HTTPFetcher) {
	metrics := NewMetrics(reg)
	store := cache.NewStore(cfg.Cache.TTL, nil)
	svc := New(nil, store, append([]Option{WithMetrics(metrics)}, opts...)...)

	fetcher := source.NewHTTPFetcher(
		cfg.Source.URL,
		cfg.Source.Timeout,
		cfg.Source.Retry.Policy(),
		source.WithAttemptObserver(metrics.ObserveAttempt),
		source.WithLogger(svc.logger),
	)
	svc.fetcher = fetcher
	return svc, fetcher
}
