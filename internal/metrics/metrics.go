package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors shared by the portal and the alarm worker.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ReadingsSubmitted   *prometheus.CounterVec
	AlertsRaised        *prometheus.CounterVec
	AuthAttempts        *prometheus.CounterVec
	AppointmentChanges  *prometheus.CounterVec
	StreamMessages      *prometheus.CounterVec
	Subscribers         prometheus.Gauge
}

// New registers every collector on a fresh registry tagged with service.
func New(service string) *Metrics {
	reg := prometheus.NewRegistry()
	labels := prometheus.Labels{"service": service}

	m := &Metrics{
		registry: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "route", "status_code"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "Duration of HTTP requests in seconds",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: labels,
		}, []string{"method", "route"}),
		ReadingsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "vitals_readings_total",
			Help:        "Vitals submissions by outcome",
			ConstLabels: labels,
		}, []string{"outcome"}),
		AlertsRaised: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "vitals_alerts_total",
			Help:        "Vitals alerts by severity",
			ConstLabels: labels,
		}, []string{"severity", "physical"}),
		AuthAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "auth_attempts_total",
			Help:        "Signup and login attempts by outcome",
			ConstLabels: labels,
		}, []string{"method", "status"}),
		AppointmentChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "appointment_changes_total",
			Help:        "Appointment bookings and status changes",
			ConstLabels: labels,
		}, []string{"action"}),
		StreamMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "stream_messages_total",
			Help:        "Reading stream messages handled by the alarm worker",
			ConstLabels: labels,
		}, []string{"result"}),
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "live_subscriptions",
			Help:        "Open snapshot streams",
			ConstLabels: labels,
		}),
	}

	reg.MustRegister(
		m.HTTPRequests,
		m.HTTPRequestDuration,
		m.ReadingsSubmitted,
		m.AlertsRaised,
		m.AuthAttempts,
		m.AppointmentChanges,
		m.StreamMessages,
		m.Subscribers,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
