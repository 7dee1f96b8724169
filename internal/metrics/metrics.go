package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upstream bot API metrics
var (
	// UpstreamRequestsTotal tracks calls to the bot API by endpoint and status
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total bot API requests by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)

	// UpstreamRequestDuration tracks bot API request latency in seconds
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Bot API request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)
)

// Session metrics
var (
	// ActiveSessions tracks the number of live entries in the session store
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dashboard_active_sessions",
			Help: "Number of live entries in the session store",
		},
	)

	// OAuthLoginsTotal tracks completed OAuth callbacks by outcome
	OAuthLoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oauth_logins_total",
			Help: "Completed OAuth callbacks by outcome (success/failure)",
		},
		[]string{"outcome"},
	)
)
