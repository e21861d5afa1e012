package sender

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	submitSuccess     prometheus.Counter
	submitFailure     prometheus.Counter
	escalations       prometheus.Counter
	durationHistogram prometheus.Histogram
}

func NewMetrics() *Metrics {
	return &Metrics{
		submitSuccess: registerCounter(prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gateway_tx_submit_success_total",
			Help: "Total number of broadcasts that yielded a signature",
		})),
		submitFailure: registerCounter(prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gateway_tx_submit_failure_total",
			Help: "Total number of broadcast rounds that yielded no accepted signature, including validity window expiry",
		})),
		escalations: registerCounter(prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gateway_tx_fee_escalations_total",
			Help: "Total number of priority fee escalation steps",
		})),
		durationHistogram: registerHistogram(prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gateway_tx_duration_seconds",
			Help:    "End-to-end submit-and-confirm duration in seconds",
			Buckets: prometheus.LinearBuckets(0, 5, 12),
		})),
	}
}

func (m *Metrics) TrackTransaction(start time.Time) {
	m.durationHistogram.Observe(time.Since(start).Seconds())
}

// register helpers tolerate re-registration so multiple senders in one
// process (and in tests) share the same collectors.
func registerCounter(c prometheus.Counter) prometheus.Counter {
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Counter)
		}
	}
	return c
}

func registerHistogram(h prometheus.Histogram) prometheus.Histogram {
	if err := prometheus.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Histogram)
		}
	}
	return h
}
