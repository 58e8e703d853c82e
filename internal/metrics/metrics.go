// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkflowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hr_workflows_total",
		Help: "Batch matching workflows by terminal status.",
	}, []string{"status"})

	WorkflowsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hr_workflows_in_flight",
		Help: "Batch workflows started but not finished, as seen on the event bus.",
	})

	ResultSaveFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hr_result_save_failures_total",
		Help: "Match results that could not be persisted.",
	})

	AgentRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hr_agent_request_duration_seconds",
		Help:    "Latency of calls to the matching agent by outcome.",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900, 1800},
	}, []string{"outcome"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hr_http_requests_total",
		Help: "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "code"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hr_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
)

// GinMiddleware records request counts and latency keyed by the matched route
// template, so path parameters do not explode label cardinality.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
