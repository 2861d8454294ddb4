// Package metrics exposes Prometheus counters and persists LLM usage.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application. Each Collector
// owns its registry.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	PlansGenerated      *prometheus.CounterVec
	AggregationFailures prometheus.Counter
	LLMTokens           *prometheus.CounterVec

	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
}

// NewCollector creates a new metrics collector with the given namespace.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		PlansGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plans_total",
			Help:      "Meal plans returned, by source",
		}, []string{"source"}),
		AggregationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shopping_aggregation_failures_total",
			Help:      "Shopping list aggregations rejected because of a malformed ingredient",
		}),
		LLMTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_total",
			Help:      "Tokens consumed by LLM calls",
		}, []string{"agent", "kind"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_cache_hits_total",
			Help:      "Total number of plan cache hits",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_cache_misses_total",
			Help:      "Total number of plan cache misses",
		}),
	}

	c.registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.PlansGenerated,
		c.AggregationFailures,
		c.LLMTokens,
		c.CacheHits,
		c.CacheMisses,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// CacheHit counts a plan cache hit.
func (c *Collector) CacheHit() { c.CacheHits.Inc() }

// CacheMiss counts a plan cache miss.
func (c *Collector) CacheMiss() { c.CacheMisses.Inc() }

// PlanServed counts a plan returned to a caller.
func (c *Collector) PlanServed(cached bool) {
	source := "generated"
	if cached {
		source = "cache"
	}
	c.PlansGenerated.WithLabelValues(source).Inc()
}

// TokensUsed adds an LLM call's token usage.
func (c *Collector) TokensUsed(agent string, prompt, completion int) {
	c.LLMTokens.WithLabelValues(agent, "prompt").Add(float64(prompt))
	c.LLMTokens.WithLabelValues(agent, "completion").Add(float64(completion))
}

// ObserveHTTP records one served request.
func (c *Collector) ObserveHTTP(method, route, status string, d time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, status).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
