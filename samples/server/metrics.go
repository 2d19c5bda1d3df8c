// Copyright (c) Microsoft. All rights reserved.

package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// routeUnmatched labels requests that hit no registered route, keeping the
// path label set bounded no matter what clients ask for.
const routeUnmatched = "unmatched"

var (
	// httpRequestsTotal counts HTTP requests by method, route, and status.
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agent_http_requests_total",
		Help: "Total number of HTTP requests, by method, path, and status code.",
	}, []string{"method", "path", "status"})

	// httpRequestDuration observes request latency by route.
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agent_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds, by path.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})

	// agentRunsTotal counts agent invocations by outcome.
	agentRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agent_runs_total",
		Help: "Total number of agent runs, by outcome (ok/error).",
	}, []string{"outcome"})

	// agentRunDuration observes end-to-end agent run latency.
	agentRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "agent_run_duration_seconds",
		Help:    "End-to-end agent run latency in seconds.",
		Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	})

	// agentTokensTotal counts model token usage by direction.
	agentTokensTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agent_tokens_total",
		Help: "Total model tokens consumed, by direction (input/output).",
	}, []string{"direction"})
)

// metricsMiddleware records request counts and latency for every route. The
// path label is the chi route pattern, not the raw URL, so its cardinality
// stays bounded by the route table.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := chi.RouteContext(r.Context()).RoutePattern()
		if path == "" {
			path = routeUnmatched
		}
		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(ww.Status())).Inc()
		httpRequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	})
}

// recordRun records the outcome and duration of one agent run.
func recordRun(start time.Time, inputTokens, outputTokens int, err error) {
	agentRunDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		agentRunsTotal.WithLabelValues("error").Inc()
		return
	}
	agentRunsTotal.WithLabelValues("ok").Inc()
	agentTokensTotal.WithLabelValues("input").Add(float64(inputTokens))
	agentTokensTotal.WithLabelValues("output").Add(float64(outputTokens))
}
