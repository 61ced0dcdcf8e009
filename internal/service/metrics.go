package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "eventcal"

// Metrics holds the collectors of the dataset pipeline.
type Metrics struct {
	cacheRequests *prometheus.CounterVec
	fetchAttempts *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	lastSuccessTS prometheus.Gauge
	cachedRecords *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "cache_requests_total",
			Help:      "Dataset reads by outcome (hit, miss, stale)",
		}, []string{"result"}),
		fetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "source_fetch_attempts_total",
			Help:      "HTTP attempts against the event source by result",
		}, []string{"result"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "source_fetch_duration_seconds",
			Help:      "Time spent on a full fetch including retries",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		lastSuccessTS: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "source_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful fetch",
		}),
		cachedRecords: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "cache_records",
			Help:      "Records held by the cached dataset",
		}, []string{"kind"}),
	}
	if reg != nil {
		reg.MustRegister(m.cacheRequests, m.fetchAttempts, m.fetchDuration, m.lastSuccessTS, m.cachedRecords)
	}
	return m
}

// ObserveAttempt matches source.AttemptObserver.
func (m *Metrics) ObserveAttempt(_ uint, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.fetchAttempts.WithLabelValues(result).Inc()
}

func (m *Metrics) observeCache(result string) {
	if m == nil {
		return
	}
	m.cacheRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) observeFetch(started time.Time, events, venues int, ok bool) {
	if m == nil {
		return
	}
	m.fetchDuration.Observe(time.Since(started).Seconds())
	if !ok {
		return
	}
	m.lastSuccessTS.SetToCurrentTime()
	m.cachedRecords.WithLabelValues("events").Set(float64(events))
	m.cachedRecords.WithLabelValues("venues").Set(float64(venues))
}
