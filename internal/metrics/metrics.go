// Package metrics holds the Prometheus collectors for the booking API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pkordes/motorhome-rental/internal/domain"
)

// Metrics registers its collectors on a private registry so tests can build
// as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	availability  *prometheus.CounterVec
	created       prometheus.Counter
	rejected      *prometheus.CounterVec
	notifyFailure *prometheus.CounterVec
}

// New builds the collectors under namespace, plus the Go and process collectors.
func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		availability: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_checks_total",
			Help:      "Availability checks by outcome.",
		}, []string{"result"}),
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Bookings committed.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_rejected_total",
			Help:      "Booking attempts rejected, by error code.",
		}, []string{"code"}),
		notifyFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_failures_total",
			Help:      "Emails that could not be delivered, by kind.",
		}, []string{"kind"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.availability,
		m.created,
		m.rejected,
		m.notifyFailure,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveHTTP records one finished request.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// AvailabilityChecked counts one availability answer by outcome.
func (m *Metrics) AvailabilityChecked(available bool) {
	result := "unavailable"
	if available {
		result = "available"
	}
	m.availability.WithLabelValues(result).Inc()
}

// BookingCreated counts one committed booking.
func (m *Metrics) BookingCreated() {
	m.created.Inc()
}

// BookingRejected counts a refused booking by error code.
func (m *Metrics) BookingRejected(code domain.Code) {
	m.rejected.WithLabelValues(string(code)).Inc()
}

// NotificationFailed counts an email that could not be delivered.
func (m *Metrics) NotificationFailed(kind string) {
	m.notifyFailure.WithLabelValues(kind).Inc()
}
