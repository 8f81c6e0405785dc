package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics records pricing, routing, and hold activity.
type EngineMetrics struct {
	linesPriced      *prometheus.CounterVec
	ruleFallbacks    prometheus.Counter
	routingOutcomes  *prometheus.CounterVec
	holdTransitions  *prometheus.CounterVec
	checkoutDuration prometheus.Histogram
}

// NewEngineMetrics registers the engine metrics on the provided registerer.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	linesPriced := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_lines_priced",
		Help: "Order lines priced, by membership tier.",
	}, []string{"tier"})
	ruleFallbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pricing_rule_fallbacks",
		Help: "Times pricing ran on the built-in default rule because no active rule row existed.",
	})
	routingOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "routing_outcomes",
		Help: "Lines routed, by fulfillment outcome.",
	}, []string{"outcome"})
	holdTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "compliance_hold_transitions",
		Help: "Compliance hold transitions, by resulting state.",
	}, []string{"state"})
	checkoutDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of order finalization in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(linesPriced, ruleFallbacks, routingOutcomes, holdTransitions, checkoutDuration)
	return &EngineMetrics{
		linesPriced:      linesPriced,
		ruleFallbacks:    ruleFallbacks,
		routingOutcomes:  routingOutcomes,
		holdTransitions:  holdTransitions,
		checkoutDuration: checkoutDuration,
	}
}

// IncLinesPriced increments the priced-lines counter for a tier.
func (m *EngineMetrics) IncLinesPriced(tier string) {
	if m == nil || m.linesPriced == nil {
		return
	}
	m.linesPriced.WithLabelValues(normalizeLabel(tier)).Inc()
}

// IncRuleFallback increments the default-rule fallback counter.
func (m *EngineMetrics) IncRuleFallback() {
	if m == nil || m.ruleFallbacks == nil {
		return
	}
	m.ruleFallbacks.Inc()
}

// IncRoutingOutcome increments the routed-lines counter for an outcome.
func (m *EngineMetrics) IncRoutingOutcome(outcome string) {
	if m == nil || m.routingOutcomes == nil {
		return
	}
	m.routingOutcomes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncHoldTransition increments the hold-transition counter for a resulting state.
func (m *EngineMetrics) IncHoldTransition(state string) {
	if m == nil || m.holdTransitions == nil {
		return
	}
	m.holdTransitions.WithLabelValues(normalizeLabel(state)).Inc()
}

// ObserveCheckoutDuration records the duration of one finalization.
func (m *EngineMetrics) ObserveCheckoutDuration(duration time.Duration) {
	if m == nil || m.checkoutDuration == nil {
		return
	}
	m.checkoutDuration.Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
