// Package metrics exports authority activity as Prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector counts predicate evaluations, callback deliveries, suppressed
// log lines and completed batches. Pass it to evaluation.WithMetrics.
type Collector struct {
	evaluations *prometheus.CounterVec
	callbacks   *prometheus.CounterVec
	suppressed  prometheus.Counter
	batches     prometheus.Counter
}

// New registers the counters on reg. A nil reg uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		evaluations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "evaluation_predicate_evaluations_total",
				Help: "Total predicate evaluations by outcome",
			},
			[]string{"outcome"},
		),
		callbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "evaluation_callbacks_total",
				Help: "Total subscription callbacks by outcome",
			},
			[]string{"outcome"},
		),
		suppressed: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "evaluation_log_suppressed_total",
				Help: "Total fault messages whose further occurrences were suppressed",
			},
		),
		batches: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "evaluation_batches_total",
				Help: "Total completed change batches",
			},
		),
	}
}

// PredicateEvaluated counts every predicate run, failed or not.
func (c *Collector) PredicateEvaluated() { c.evaluations.WithLabelValues("evaluated").Inc() }

func (c *Collector) PredicateFailed()   { c.evaluations.WithLabelValues("failed").Inc() }
func (c *Collector) CallbackDelivered() { c.callbacks.WithLabelValues("delivered").Inc() }
func (c *Collector) CallbackFailed()    { c.callbacks.WithLabelValues("failed").Inc() }
func (c *Collector) LogSuppressed()     { c.suppressed.Inc() }
func (c *Collector) BatchCompleted()    { c.batches.Inc() }
