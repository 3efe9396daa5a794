package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeAccepted = "accepted"
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"
	outcomeTimeout  = "timeout"
	outcomeTooLarge = "too_large"
	outcomeGone     = "disconnected"
)

type metrics struct {
	submissions *prometheus.CounterVec
	duration    prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dubbing_relay_submissions_total",
			Help: "Submissions relayed to the dubbing service by outcome",
		}, []string{"outcome"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "dubbing_relay_submission_duration_seconds",
			Help:    "Time until the dubbing service answered a relayed submission",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
	}
}
