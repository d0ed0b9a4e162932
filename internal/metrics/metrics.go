// Package metrics holds the Prometheus collectors shared by the page store,
// its change logs and the HTTP layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "inkpage"

// Результаты операций над страницами
const (
	ResultApplied   = "applied"
	ResultDuplicate = "duplicate"
	ResultNotFound  = "not_found"
	ResultInvalid   = "invalid"
	ResultError     = "error"
)

var (
	// Mutations counts page mutations by operation (add, delete, fade) and result.
	Mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pagestore",
		Name:      "mutations_total",
		Help:      "Page mutations by operation and result",
	}, []string{"op", "result"})

	// MutationDuration measures time spent holding a page slot.
	MutationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "pagestore",
		Name:      "mutation_duration_seconds",
		Help:      "Time spent inside the page serializer",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})

	// FadedShapes counts shapes removed by fade passes.
	FadedShapes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pagestore",
		Name:      "faded_shapes_total",
		Help:      "Shapes dropped because their alpha fell below the cutoff",
	})

	// HistoryEvents counts events appended to change logs.
	HistoryEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "history",
		Name:      "events_total",
		Help:      "Change events appended, by type",
	}, []string{"type"})

	// LongPollWaiters is the number of suspended After calls.
	LongPollWaiters = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "history",
		Name:      "waiters",
		Help:      "Currently suspended long-poll requests",
	})

	// Reaped counts idle per-page entries removed by the janitor.
	Reaped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "janitor",
		Name:      "reaped_total",
		Help:      "Idle per-page entries removed, by kind (lock, history)",
	}, []string{"kind"})

	// HTTPRequests counts handled HTTP requests by route template, method and status code.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Handled HTTP requests",
	}, []string{"route", "method", "code"})

	// HTTPDuration measures request handling time by route template.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request handling time",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	// RateLimited counts requests rejected by the rate limiter.
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Requests rejected with 429",
	})
)
