package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the HTTP-level Prometheus metrics of the service.
type Metrics struct {
	SubmissionsReceived    *prometheus.CounterVec
	RegistrationsForwarded *prometheus.CounterVec
	RequestDuration        *prometheus.HistogramVec
}

// New creates and registers the metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SubmissionsReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tallybridge_submissions_received_total",
			Help: "Submissions received by endpoint",
		}, []string{"endpoint"}),
		RegistrationsForwarded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tallybridge_registrations_forwarded_total",
			Help: "Secondary registrations by environment and response status class",
		}, []string{"environment", "status_class"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tallybridge_http_request_duration_seconds",
			Help:    "HTTP request duration by route pattern and status code",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// IncrementSubmissions counts a received submission.
func (m *Metrics) IncrementSubmissions(endpoint string) {
	if m != nil {
		m.SubmissionsReceived.WithLabelValues(endpoint).Inc()
	}
}

// IncrementRegistrations counts a forwarded registration.
func (m *Metrics) IncrementRegistrations(environment, statusClass string) {
	if m != nil {
		m.RegistrationsForwarded.WithLabelValues(environment, statusClass).Inc()
	}
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(method, route, status string, d time.Duration) {
	if m != nil {
		m.RequestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
	}
}
