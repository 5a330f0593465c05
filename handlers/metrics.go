package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Query outcomes recorded by queriesTotal.
const (
	outcomeOK          = "ok"
	outcomeEmptyScope  = "empty_scope"
	outcomeEmptyResult = "empty_result"
	outcomeParseError  = "parse_error"
	outcomeNotFound    = "admin_not_found"
	outcomeError       = "error"
)

var (
	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scopequery_queries_total",
		Help: "Questions answered, by outcome.",
	}, []string{"outcome"})

	queryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scopequery_query_duration_seconds",
		Help:    "Time to answer one question, translator included.",
		Buckets: prometheus.DefBuckets,
	})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scopequery_http_requests_total",
		Help: "HTTP requests, by route and status code.",
	}, []string{"method", "route", "status"})
)

// requestMetrics counts every request by its route template.
func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

func observeQuery(outcome string, start time.Time) {
	queriesTotal.WithLabelValues(outcome).Inc()
	queryDuration.Observe(time.Since(start).Seconds())
}
