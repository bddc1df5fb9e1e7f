package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records portal counters in Prometheus. A nil *Metrics is a no-op.
type Metrics struct {
	requests       *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	errors         *prometheus.CounterVec
	authAttempts   *prometheus.CounterVec
	guardDecisions *prometheus.CounterVec
	activeSessions prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gym_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gym_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gym_http_errors_total",
			Help: "Error responses by route, method and error code.",
		}, []string{"route", "method", "code"}),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gym_auth_attempts_total",
			Help: "Login, signup and logout attempts by result.",
		}, []string{"op", "result"}),
		guardDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gym_guard_decisions_total",
			Help: "Route guard outcomes by gate.",
		}, []string{"gate", "outcome"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gym_active_sessions",
			Help: "Browser sessions currently held in memory.",
		}),
	}

	reg.MustRegister(
		m.requests,
		m.latency,
		m.errors,
		m.authAttempts,
		m.guardDecisions,
		m.activeSessions,
	)
	return m
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}

// RecordAuthAttempt counts a login, signup or logout by outcome.
func (m *Metrics) RecordAuthAttempt(op string, ok bool) {
	if m == nil {
		return
	}
	result := "failure"
	if ok {
		result = "success"
	}
	m.authAttempts.WithLabelValues(op, result).Inc()
}

// RecordGuardDecision counts a route guard outcome.
func (m *Metrics) RecordGuardDecision(gate, outcome string) {
	if m == nil {
		return
	}
	m.guardDecisions.WithLabelValues(gate, outcome).Inc()
}

// SetActiveSessions reports the number of live browser sessions.
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

// Handler serves the gathered metrics for Prometheus scraping.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
