// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "posts"

// Registry is private to the service so tests can build routers repeatedly
// without tripping duplicate registration on the default registerer.
var Registry = prometheus.NewRegistry()

var (
	GuardWaitSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "db_guard",
		Name:      "wait_seconds",
		Help:      "Time spent waiting for exclusive access to the database connection.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"op"})

	GuardHoldSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "db_guard",
		Name:      "hold_seconds",
		Help:      "Time the database connection was held by one operation.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"op"})

	GuardWaiters = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "db_guard",
		Name:      "waiters",
		Help:      "Operations currently blocked on the database guard.",
	})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		GuardWaitSeconds,
		GuardHoldSeconds,
		GuardWaiters,
		HTTPRequestsTotal,
		HTTPRequestSeconds,
	)
}

// Handler serves the service registry in the prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
