package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for the application.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	journalEntries  *prometheus.CounterVec
	ledgerPostings  *prometheus.CounterVec
	integrityDrift  *prometheus.GaugeVec
}

// NewMetrics initialises the registry and base metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "parcelops_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "parcelops_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	journalEntries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "parcelops_journal_entries_total",
		Help: "Journal entries created, by originating module.",
	}, []string{"source"})
	ledgerPostings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "parcelops_ledger_postings_total",
		Help: "Party ledger postings, by ledger owner type.",
	}, []string{"owner"})
	integrityDrift := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "parcelops_ledger_integrity_drift",
		Help: "Rows flagged by the latest ledger integrity scan, by check.",
	}, []string{"check"})
	registry.MustRegister(requests, duration, journalEntries, ledgerPostings, integrityDrift)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		journalEntries:  journalEntries,
		ledgerPostings:  ledgerPostings,
		integrityDrift:  integrityDrift,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveJournalEntry counts a created journal entry for a source module.
func (m *Metrics) ObserveJournalEntry(source string) {
	if m == nil {
		return
	}
	m.journalEntries.WithLabelValues(source).Inc()
}

// ObserveLedgerPosting counts a party ledger posting for an owner type.
func (m *Metrics) ObserveLedgerPosting(owner string) {
	if m == nil {
		return
	}
	m.ledgerPostings.WithLabelValues(owner).Inc()
}

// SetIntegrityDrift publishes the result of an integrity scan check.
func (m *Metrics) SetIntegrityDrift(check string, rows int) {
	if m == nil {
		return
	}
	m.integrityDrift.WithLabelValues(check).Set(float64(rows))
}

// Registerer exposes the registry for registering custom metrics.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
