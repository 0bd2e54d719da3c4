package ibi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "id2"

// Metrics counts verifier sessions run by a Server.
type Metrics struct {
	sessions  *prometheus.CounterVec
	throttled prometheus.Counter
	duration  prometheus.Histogram
	active    prometheus.Gauge
}

// NewMetrics registers the verifier metrics with reg. A nil reg yields
// metrics that are counted but not exported.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		sessions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "ibi",
			Name:      "sessions_total",
			Help:      "Identification sessions by outcome.",
		}, []string{"outcome"}),
		throttled: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "ibi",
			Name:      "throttled_total",
			Help:      "Connections dropped by the per-host rate limit.",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "ibi",
			Name:      "session_seconds",
			Help:      "Wall time of identification sessions.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		active: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "ibi",
			Name:      "active_sessions",
			Help:      "Sessions currently in progress.",
		}),
	}
}
