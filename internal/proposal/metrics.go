package proposal

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Calculation results used as label values.
const (
	resultSuccess = "success"
	resultFailed  = "failed"
	resultError   = "error"
)

// Metrics holds the Prometheus collectors of a Proposal.
type Metrics struct {
	// calculations counts Calculate calls.
	// Labels: result (success, failed, error)
	calculations *prometheus.CounterVec

	// invalidations counts transitions to the invalidated phase.
	invalidations prometheus.Counter

	// duration measures engine invocations, including failed ones.
	duration prometheus.Histogram

	// issues is the number of issues of the last calculation.
	issues prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		calculations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "diskplan",
			Name:      "calculations_total",
			Help:      "Total proposal calculations by result",
		}, []string{"result"}),
		invalidations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "diskplan",
			Name:      "invalidations_total",
			Help:      "Total proposal invalidations",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "diskplan",
			Name:      "calculation_duration_seconds",
			Help:      "Duration of disk proposal engine invocations in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		issues: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "diskplan",
			Name:      "issues",
			Help:      "Number of issues of the last proposal calculation",
		}),
	}
}

func (m *Metrics) recordCalculation(result string, seconds float64) {
	if m == nil {
		return
	}
	m.calculations.WithLabelValues(result).Inc()
	m.duration.Observe(seconds)
}

func (m *Metrics) recordInvalidation() {
	if m == nil {
		return
	}
	m.invalidations.Inc()
}

func (m *Metrics) recordIssues(n int) {
	if m == nil {
		return
	}
	m.issues.Set(float64(n))
}
