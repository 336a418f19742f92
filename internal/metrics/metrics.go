// Package metrics defines the Prometheus collectors exposed by the dashboard.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Search outcomes.
const (
	SearchApplied    = "applied"
	SearchSuperseded = "superseded"
	SearchFailed     = "failed"
)

// Gateway call outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeNetworkError = "network_error"
	OutcomeParseError   = "parse_error"
)

// Searches counts completed searches by outcome.
var Searches = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "weather_dashboard_searches_total",
	Help: "Total number of searches by outcome.",
}, []string{"outcome"})

// GatewayRequests counts calls to the weather proxy by operation and outcome.
var GatewayRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "weather_dashboard_gateway_requests_total",
	Help: "Total number of weather proxy calls by operation and outcome.",
}, []string{"op", "outcome"})

// HistoryDeleteFailures counts deletes that failed before the forced re-fetch.
var HistoryDeleteFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "weather_dashboard_history_delete_failures_total",
	Help: "Total number of history deletes rejected by the weather proxy.",
})
