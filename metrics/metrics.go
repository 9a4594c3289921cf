// Package metrics holds the Prometheus instruments for the blog server.
//
// Every instrument is registered on the Registerer passed to New, so tests can
// build an isolated set on prometheus.NewRegistry().
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "presslog"

type Metrics struct {
	// RequestsTotal counts HTTP requests.
	// Labels: route (gin full path), method, status
	RequestsTotal *prometheus.CounterVec

	// RequestDuration measures handler latency by route.
	RequestDuration *prometheus.HistogramVec

	// CacheLookups counts fragment and page cache lookups.
	// Labels: result (hit, miss)
	CacheLookups *prometheus.CounterVec

	// TagConflicts counts tag inserts that lost a race and were re-read.
	TagConflicts prometheus.Counter

	// MailFailures counts notifications that could not be sent.
	MailFailures prometheus.Counter

	gatherer prometheus.Gatherer
}

// New registers the instruments on reg. A nil reg uses the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	m := &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Cache lookups by result",
			},
			[]string{"result"},
		),
		TagConflicts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tag_conflicts_total",
			Help:      "Tag inserts resolved by re-reading a concurrently created tag",
		}),
		MailFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mail_failures_total",
			Help:      "Notification emails that failed to send",
		}),
	}

	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	} else {
		m.gatherer = prometheus.DefaultGatherer
	}
	return m
}

// ObserveCache records a cache lookup. It matches the cache.Observed callback.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) TagConflict() {
	if m != nil {
		m.TagConflicts.Inc()
	}
}

func (m *Metrics) MailFailure() {
	if m != nil {
		m.MailFailures.Inc()
	}
}

// Middleware records count and latency per matched route. Unmatched requests are
// grouped under the "unmatched" route to keep label cardinality bounded.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.RequestsTotal.WithLabelValues(route, c.Request.Method, status).Inc()
		m.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
