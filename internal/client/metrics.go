package client

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// upstreamReqs counts upstream calls by operation and outcome (ok|error).
	upstreamReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registrations_upstream_requests_total",
			Help: "Total number of calls to the registrations API.",
		},
		[]string{"op", "outcome"},
	)

	// upstreamLat records upstream call duration in seconds by operation.
	upstreamLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "registrations_upstream_request_duration_seconds",
			Help:    "Duration of calls to the registrations API in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(upstreamReqs, upstreamLat)
}

func observe(op, outcome string, d time.Duration) {
	upstreamReqs.WithLabelValues(op, outcome).Inc()
	upstreamLat.WithLabelValues(op).Observe(d.Seconds())
}
