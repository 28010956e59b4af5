package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors exported on /metrics.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	toggles  *prometheus.CounterVec
	geocodes *prometheus.CounterVec
	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. A nil registerer yields a Metrics
// whose recording methods are no-ops.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by route pattern, method and status.",
	}, []string{"route", "method", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
	toggles := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wishlist_toggles_total",
		Help: "Wishlist toggles by result.",
	}, []string{"result"})
	geocodes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geocode_lookups_total",
		Help: "Geocoding lookups by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(requests, duration, toggles, geocodes)

	m := &Metrics{
		requests: requests,
		duration: duration,
		toggles:  toggles,
		geocodes: geocodes,
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	route = normalizeLabel(route)
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// IncWishlistToggle counts a toggle; result is "added", "removed" or "error".
func (m *Metrics) IncWishlistToggle(result string) {
	if m == nil || m.toggles == nil {
		return
	}
	m.toggles.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncGeocode counts a geocoding lookup; outcome is "hit", "empty" or "error".
func (m *Metrics) IncGeocode(outcome string) {
	if m == nil || m.geocodes == nil {
		return
	}
	m.geocodes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
