// Package metrics exposes prometheus collectors for query execution and
// HTTP traffic, fed from the event bus.
package metrics

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/quarrygql/quarry/internal/eventbus"
	"github.com/quarrygql/quarry/internal/events"
)

// Register creates the collectors on reg and subscribes them to the global
// event bus. The returned function detaches the subscribers again.
func Register(reg prometheus.Registerer) (unsubscribe func()) {
	factory := promauto.With(reg)

	queriesTotal := factory.NewCounterVec(prometheus.CounterOpts{
		Name: "quarry_queries_total",
		Help: "Executed queries by response envelope kind",
	}, []string{"kind"})

	queryDuration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quarry_query_duration_seconds",
		Help:    "Query execution duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	queryErrors := factory.NewCounter(prometheus.CounterOpts{
		Name: "quarry_query_errors_total",
		Help: "Errors reported in query responses",
	})

	httpRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Name: "quarry_http_requests_total",
		Help: "HTTP requests by method and status",
	}, []string{"method", "status"})

	httpDuration := factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "quarry_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	unsubQuery := eventbus.Subscribe(func(ctx context.Context, e events.QueryFinish) {
		queriesTotal.WithLabelValues(e.ResponseKind).Inc()
		queryDuration.WithLabelValues(e.ResponseKind).Observe(e.Duration.Seconds())
		queryErrors.Add(float64(e.ErrorCount))
	})
	unsubHTTP := eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
		httpRequests.WithLabelValues(e.Request.Method, strconv.Itoa(e.Status)).Inc()
		httpDuration.Observe(e.Duration.Seconds())
	})

	return func() {
		unsubQuery()
		unsubHTTP()
	}
}
