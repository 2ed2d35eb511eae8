// Package metrics defines the Prometheus collectors exported by the server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels shared by the auth and location counters.
const (
	ResultSuccess         = "success"
	ResultUserNotFound    = "user_not_found"
	ResultWrongPassword   = "wrong_password"
	ResultRateLimited     = "rate_limited"
	ResultInvalidInput    = "invalid_input"
	ResultConflict        = "conflict"
	ResultThrottled       = "throttled"
	ResultMalformed       = "malformed"
	ResultUnauthenticated = "unauthenticated"
	ResultError           = "error"
)

// Metrics holds all Prometheus metrics for GeoTrack
type Metrics struct {
	// Auth
	Logins  *prometheus.CounterVec
	SignUps *prometheus.CounterVec

	// Location updates
	LocationUpdates *prometheus.CounterVec
	StoreRetries    prometheus.Counter

	// Uploads
	Uploads *prometheus.CounterVec

	// HTTP
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		Logins: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geotrack_logins_total",
				Help: "Login attempts by outcome",
			},
			[]string{"result"},
		),
		SignUps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geotrack_signups_total",
				Help: "Sign-up attempts by outcome",
			},
			[]string{"result"},
		),
		LocationUpdates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geotrack_location_updates_total",
				Help: "Location update requests by outcome",
			},
			[]string{"result"},
		),
		StoreRetries: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "geotrack_location_store_retries_total",
				Help: "Location writes retried after a transient store error",
			},
		),
		Uploads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geotrack_uploads_total",
				Help: "File uploads by outcome",
			},
			[]string{"result"},
		),
		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geotrack_http_requests_total",
				Help: "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "geotrack_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// NewRegistry creates a new Prometheus registry with metrics
func NewRegistry() (*prometheus.Registry, *Metrics) {
	reg := prometheus.NewRegistry()
	return reg, NewMetrics(reg)
}

// HandlerFor returns an HTTP handler for a specific registry
func HandlerFor(reg prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// The helpers below accept a nil receiver so callers can run without metrics.

func (m *Metrics) Login(result string) {
	if m != nil {
		m.Logins.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) SignUp(result string) {
	if m != nil {
		m.SignUps.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) LocationUpdate(result string) {
	if m != nil {
		m.LocationUpdates.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) StoreRetry() {
	if m != nil {
		m.StoreRetries.Inc()
	}
}

func (m *Metrics) Upload(result string) {
	if m != nil {
		m.Uploads.WithLabelValues(result).Inc()
	}
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m != nil {
		m.Requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		m.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
	}
}
