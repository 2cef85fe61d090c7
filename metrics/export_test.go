package metrics

import "github.com/prometheus/client_golang/prometheus"

func (c *Collector) EvaluationsFor(outcome string) prometheus.Counter {
	return c.evaluations.WithLabelValues(outcome)
}

func (c *Collector) CallbacksFor(outcome string) prometheus.Counter {
	return c.callbacks.WithLabelValues(outcome)
}

func (c *Collector) SuppressedCounter() prometheus.Counter { return c.suppressed }

func (c *Collector) BatchCounter() prometheus.Counter { return c.batches }
