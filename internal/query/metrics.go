package query

import "github.com/prometheus/client_golang/prometheus"

var (
	// cacheLookups counts Fetch calls by result (hit|miss|shared).
	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registrations_query_cache_total",
			Help: "Query cache lookups by result.",
		},
		[]string{"result"},
	)

	cacheInvalidations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "registrations_query_invalidations_total",
			Help: "Number of Invalidate calls on the query cache.",
		},
	)
)

func init() {
	prometheus.MustRegister(cacheLookups, cacheInvalidations)
}
