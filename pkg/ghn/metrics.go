package ghn

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records carrier call outcomes. A nil *Metrics is a no-op.
type Metrics struct {
	requests *prometheus.CounterVec
	retries  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the GHN collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookstore",
			Subsystem: "ghn",
			Name:      "requests_total",
			Help:      "GHN API calls by operation and outcome.",
		}, []string{"op", "outcome"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookstore",
			Subsystem: "ghn",
			Name:      "retries_total",
			Help:      "GHN API attempts that failed at transport level and were retried.",
		}, []string{"op"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bookstore",
			Subsystem: "ghn",
			Name:      "request_duration_seconds",
			Help:      "Wall time of GHN calls including retries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}
	reg.MustRegister(m.requests, m.retries, m.duration)
	return m
}

func (m *Metrics) observe(op string, err error, started time.Time) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		if kind, ok := KindOf(err); ok {
			outcome = string(kind)
		} else {
			outcome = "error"
		}
	}
	m.requests.WithLabelValues(op, outcome).Inc()
	m.duration.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

func (m *Metrics) retried(op string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(op).Inc()
}
