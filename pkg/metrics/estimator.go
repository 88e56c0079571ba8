package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// EstimatorMetrics records delivery-date estimation outcomes.
type EstimatorMetrics struct {
	estimates      *prometheus.CounterVec
	malformedRules prometheus.Counter
	staleDrops     prometheus.Counter
}

// NewEstimatorMetrics registers the estimator metrics on the provided
// registerer. A nil registerer yields a no-op recorder.
func NewEstimatorMetrics(reg prometheus.Registerer) *EstimatorMetrics {
	if reg == nil {
		return &EstimatorMetrics{}
	}
	estimates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_estimates_total",
		Help: "Delivery date estimates by deciding rule source.",
	}, []string{"source"})
	malformed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "delivery_rules_malformed_total",
		Help: "Rule rows skipped or defaulted due to malformed data.",
	})
	stale := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "delivery_recompute_stale_drops_total",
		Help: "Recompute results discarded because a newer call was dispatched.",
	})
	reg.MustRegister(estimates, malformed, stale)
	return &EstimatorMetrics{
		estimates:      estimates,
		malformedRules: malformed,
		staleDrops:     stale,
	}
}

// IncEstimate counts one estimate decided by the named source.
func (m *EstimatorMetrics) IncEstimate(source string) {
	if m == nil || m.estimates == nil {
		return
	}
	if source == "" {
		source = "unknown"
	}
	m.estimates.WithLabelValues(source).Inc()
}

// IncMalformedRule counts one skipped/defaulted rule row.
func (m *EstimatorMetrics) IncMalformedRule() {
	if m == nil || m.malformedRules == nil {
		return
	}
	m.malformedRules.Inc()
}

// IncStaleDrop counts one discarded recompute result.
func (m *EstimatorMetrics) IncStaleDrop() {
	if m == nil || m.staleDrops == nil {
		return
	}
	m.staleDrops.Inc()
}
