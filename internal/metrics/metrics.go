// Package metrics exposes decision and delivery counters to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	registry         *prometheus.Registry
	decisions        *prometheus.CounterVec
	announceFailures prometheus.Counter
	storeErrors      *prometheus.CounterVec
	observeDuration  prometheus.Histogram
	httpRequests     *prometheus.CounterVec
}

// New registers the collectors on reg. A nil reg gets a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: reg,
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mountain_decisions_total",
			Help: "Decisions made, by corrected label and outcome.",
		}, []string{"label", "outcome"}),
		announceFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mountain_announce_failures_total",
			Help: "Announcements that could not be delivered.",
		}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mountain_store_errors_total",
			Help: "History store failures by operation.",
		}, []string{"op"}),
		observeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mountain_observe_duration_seconds",
			Help:    "Time to decide on and announce one observation.",
			Buckets: prometheus.DefBuckets,
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"route", "status"}),
	}
	reg.MustRegister(
		m.decisions,
		m.announceFailures,
		m.storeErrors,
		m.observeDuration,
		m.httpRequests,
	)
	return m
}

func (m *Metrics) Decision(label, outcome string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(label, outcome).Inc()
}

func (m *Metrics) AnnounceFailure() {
	if m == nil {
		return
	}
	m.announceFailures.Inc()
}

func (m *Metrics) StoreError(op string) {
	if m == nil {
		return
	}
	m.storeErrors.WithLabelValues(op).Inc()
}

func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.observeDuration.Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// WrapHandler counts requests to next under route.
func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		m.httpRequests.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
	})
}
