// Package server exposes the event dataset over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/at-ishikawa/eventcal/internal/event"
	"github.com/at-ishikawa/eventcal/internal/service"
	"github.com/at-ishikawa/eventcal/internal/source"
)

// StaleHeader is set to "true" on responses built from expired data.
const StaleHeader = "X-Data-Stale"

const unavailableDetail = "Unable to retrieve event data. Please try again later."

//go:generate mockgen -source=handler.go -destination=../mocks/server/mock_loader.go -package=mock_server

// DatasetLoader returns the current dataset and where it came from.
type DatasetLoader interface {
	Load(ctx context.Context) (service.Snapshot, error)
}

type Handler struct {
	loader DatasetLoader
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Handler)

func WithNow(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

func NewHandler(loader DatasetLoader, opts ...Option) *Handler {
	h := &Handler{
		loader: loader,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewMux routes the API and, when gatherer is not nil, /metrics.
func NewMux(h *Handler, gatherer prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/events", h.ListEvents)
	mux.HandleFunc("GET /api/events/enriched", h.ListEnrichedEvents)
	mux.HandleFunc("GET /api/events/venue/{venueId}", h.ListEventsByVenue)
	mux.HandleFunc("GET /api/venues", h.ListVenues)
	mux.HandleFunc("GET /api/health", h.Health)
	if gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.load(w, r)
	if !ok {
		return
	}
	events := snapshot.Dataset.Events
	if events == nil {
		events = []event.RawEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *Handler) ListVenues(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.load(w, r)
	if !ok {
		return
	}
	venues := snapshot.Dataset.Venues
	if venues == nil {
		venues = []event.RawVenue{}
	}
	writeJSON(w, http.StatusOK, venues)
}

func (h *Handler) ListEventsByVenue(w http.ResponseWriter, r *http.Request) {
	venueID, err := strconv.Atoi(r.PathValue("venueId"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, fmt.Sprintf("venueId must be an integer: %q", r.PathValue("venueId")))
		return
	}
	snapshot, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, event.EventsByVenue(snapshot.Dataset.Events, venueID))
}

func (h *Handler) ListEnrichedEvents(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, event.Enrich(snapshot.Dataset))
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: h.now().UTC(),
	})
}

// load writes the error response itself and reports false when there is no
// dataset to serve.
func (h *Handler) load(w http.ResponseWriter, r *http.Request) (service.Snapshot, bool) {
	snapshot, err := h.loader.Load(r.Context())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			h.logger.Debug("Client went away while loading event data", "path", r.URL.Path)
			return service.Snapshot{}, false
		}
		if !errors.Is(err, source.ErrSourceUnavailable) {
			h.logger.Error("Unexpected error loading event data", "path", r.URL.Path, "error", err)
		}
		writeProblem(w, http.StatusServiceUnavailable, unavailableDetail)
		return service.Snapshot{}, false
	}
	if snapshot.Stale() {
		w.Header().Set(StaleHeader, "true")
	}
	return snapshot, true
}
