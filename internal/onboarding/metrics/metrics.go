package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the onboarding pipeline.
type Metrics struct {
	// Remote call latency by step
	StepLatency *prometheus.HistogramVec

	// Step failures by step and error kind
	StepFailures *prometheus.CounterVec

	// Pipeline outcomes: "success", "failure", "rejected" (input error before any call)
	Outcomes *prometheus.CounterVec

	// Failed runs that left a created account behind
	OrphanedAccounts prometheus.Counter

	// Full pipeline latency
	PipelineLatency prometheus.Histogram
}

// New registers the onboarding metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		StepLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tallybridge_onboarding_step_duration_seconds",
			Help:    "Duration of onboarding remote calls by step",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"step"}),

		StepFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tallybridge_onboarding_step_failures_total",
			Help: "Onboarding step failures by step and error kind",
		}, []string{"step", "kind"}),

		Outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tallybridge_onboarding_outcomes_total",
			Help: "Onboarding pipeline outcomes",
		}, []string{"outcome"}),

		OrphanedAccounts: factory.NewCounter(prometheus.CounterOpts{
			Name: "tallybridge_onboarding_orphaned_accounts_total",
			Help: "Failed onboarding runs that left a created payments account behind",
		}),

		PipelineLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tallybridge_onboarding_pipeline_duration_seconds",
			Help:    "Duration of a full onboarding run",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40},
		}),
	}
}

// ObserveStep records the duration of one step.
func (m *Metrics) ObserveStep(step string, d time.Duration) {
	if m != nil {
		m.StepLatency.WithLabelValues(step).Observe(d.Seconds())
	}
}

// IncrementStepFailure records a failed step.
func (m *Metrics) IncrementStepFailure(step, kind string) {
	if m != nil {
		m.StepFailures.WithLabelValues(step, kind).Inc()
	}
}

// IncrementOutcome records a pipeline outcome.
func (m *Metrics) IncrementOutcome(outcome string) {
	if m != nil {
		m.Outcomes.WithLabelValues(outcome).Inc()
	}
}

// IncrementOrphaned records an account left behind by a failed run.
func (m *Metrics) IncrementOrphaned() {
	if m != nil {
		m.OrphanedAccounts.Inc()
	}
}

// ObservePipeline records the total run duration.
func (m *Metrics) ObservePipeline(d time.Duration) {
	if m != nil {
		m.PipelineLatency.Observe(d.Seconds())
	}
}
