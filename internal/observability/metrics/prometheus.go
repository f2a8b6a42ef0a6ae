package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "voxa"

// Collector holds the Prometheus instruments for the service. A nil Collector is a no-op.
type Collector struct {
	accountEvents   *prometheus.CounterVec
	accountDuration *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its instruments with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		accountEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "account_events_total",
			Help:      "Account lifecycle events by event and result.",
		}, []string{"event", "result"}),
		accountDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "account_event_duration_seconds",
			Help:      "Latency of account lifecycle operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"event"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP responses by method, route pattern and status code.",
		}, []string{"method", "route", "status_code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(c.accountEvents, c.accountDuration, c.httpRequests, c.httpDuration)
	return c
}

// ObserveAccount records an account lifecycle observation.
func (c *Collector) ObserveAccount(in AccountMetric) {
	if c == nil {
		return
	}
	c.accountEvents.WithLabelValues(in.Event, in.Result).Inc()
	if in.Duration > 0 {
		c.accountDuration.WithLabelValues(in.Event).Observe(in.Duration.Seconds())
	}
}

// ObserveHTTP records one served request. route should be the mux pattern, not the raw path.
func (c *Collector) ObserveHTTP(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
