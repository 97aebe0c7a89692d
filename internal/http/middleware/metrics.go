// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file exposes Prometheus instrumentation: generic HTTP traffic metrics
// plus gateway-specific counters for outbound sends. Labels stay bounded
// (route path rather than raw URL, numeric status, media kind from a closed
// enum) so cardinality cannot run away.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// httpReqs counts requests by method, route path, and status code.
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// httpLat records request duration in seconds by method and route path.
	// Status is omitted to keep histogram cardinality lower.
	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// httpInflight gauges the number of in-flight requests.
	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	// sendsTotal counts send orchestrations by outcome. Outcomes mirror the
	// service error taxonomy: ok, session_not_found, lookup_failed,
	// attachment_missing, dispatch_failed, record_lost, bad_request.
	sendsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_sends_total",
			Help: "Total outbound send attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// mediaDispatches counts individual media dispatches by kind.
	mediaDispatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_media_dispatches_total",
			Help: "Total media attachments handed to the transport, by kind.",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, sendsTotal, mediaDispatches)
}

// Metrics returns a Gin middleware that instruments requests with
// Prometheus. The "path" label uses the registered route (c.FullPath()) and
// falls back to the raw URL path when no route matched (404s).
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		httpReqs.WithLabelValues(method, path, status).Inc()
		httpLat.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// CountSend records one send orchestration outcome.
func CountSend(outcome string) {
	sendsTotal.WithLabelValues(outcome).Inc()
}

// CountMediaDispatch records one media attachment handed to the transport.
func CountMediaDispatch(kind string) {
	mediaDispatches.WithLabelValues(kind).Inc()
}
