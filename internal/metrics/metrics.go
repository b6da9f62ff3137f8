package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	InvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apiforge_invocations_total",
			Help: "Endpoint invocations by outcome",
		},
		[]string{"outcome"}, // ok|rejected|rate_limited|upstream_error
	)

	UpstreamSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "apiforge_upstream_seconds",
			Help:    "Upstream call duration by HTTP method",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		InvocationsTotal,
		UpstreamSeconds,
	)
}
