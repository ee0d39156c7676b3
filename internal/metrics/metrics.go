// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()
	factory  = promauto.With(registry)

	requestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "social_http_requests_total",
		Help: "Tracks the number of HTTP requests.",
	}, []string{"method", "route", "status"})

	requestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "social_http_request_duration_seconds",
		Help:    "Tracks the latencies for HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	storeOperations = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "social_store_operations_total",
		Help: "Document store operations by backend, operation and outcome.",
	}, []string{"backend", "operation", "outcome"})

	storeDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "social_store_operation_duration_seconds",
		Help:    "Document store operation latencies.",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend", "operation"})

	eventsPublished = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "social_events_published_total",
		Help: "Domain events handed to the broker.",
	}, []string{"subject", "outcome"})

	cacheLookups = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "social_cache_lookups_total",
		Help: "Read cache lookups by result.",
	}, []string{"result"})
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// GetRegistry returns the registry every social metric is registered with.
func GetRegistry() *prometheus.Registry {
	return registry
}

// Store operation outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func ObserveStoreOperation(backend, operation, outcome string, elapsed time.Duration) {
	storeOperations.WithLabelValues(backend, operation, outcome).Inc()
	storeDuration.WithLabelValues(backend, operation).Observe(elapsed.Seconds())
}

func IncrementEventsPublished(subject string, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	eventsPublished.WithLabelValues(subject, outcome).Inc()
}

func ObserveCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(result).Inc()
}

// Middleware records count and latency per route template.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fiberErr, ok := err.(*fiber.Error); ok {
			status = fiberErr.Code
		}
		route := c.Route().Path
		if route == "" {
			route = "unmatched"
		}
		ObserveRequest(c.Method(), route, status, time.Since(start))
		return err
	}
}

// Handler exposes the registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
