package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "casework_http_requests_total",
		Help: "Total HTTP requests by method, path and status",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "casework_http_request_duration_seconds",
		Help:    "HTTP request duration by method and path",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// outcome: found / not_found / error / sentinel
	GeocodeLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "casework_geocode_lookups_total",
		Help: "Geocoder lookups by outcome",
	}, []string{"outcome"})

	// result: merged / failed
	ClientMergesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "casework_client_merges_total",
		Help: "Duplicate client merges by result",
	}, []string{"result"})
)
