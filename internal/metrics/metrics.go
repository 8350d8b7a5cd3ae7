package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the Prometheus collectors exposed on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	autopostsCreated   *prometheus.CounterVec
	autopostsReleased  prometheus.Counter
	autopostsPublished prometheus.Counter
	pollCycles         *prometheus.CounterVec
}

// New creates a metrics bundle backed by its own registry, with the standard
// process and Go runtime collectors included.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "autopostq",
			Name:      "http_requests_total",
			Help:      "HTTP requests processed, by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "autopostq",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		autopostsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "autopostq",
			Name:      "autoposts_created_total",
			Help:      "Autoposts enqueued, by creative type.",
		}, []string{"creative_type"}),
		autopostsReleased: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "autopostq",
			Name:      "autoposts_released_total",
			Help:      "Autoposts moved from scheduled to publishing.",
		}),
		autopostsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "autopostq",
			Name:      "autoposts_published_total",
			Help:      "Autoposts published to the feed.",
		}),
		pollCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "autopostq",
			Name:      "poll_cycles_total",
			Help:      "Queue poll cycles, by result.",
		}, []string{"result"}),
	}

	registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.autopostsCreated,
		m.autopostsReleased,
		m.autopostsPublished,
		m.pollCycles,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTPRequest records one finished HTTP request.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// AutopostCreated counts a newly enqueued autopost.
func (m *Metrics) AutopostCreated(creativeType string) {
	if creativeType == "" {
		creativeType = "generic"
	}
	m.autopostsCreated.WithLabelValues(creativeType).Inc()
}

// AutopostsReleased counts autoposts released by the due sweep.
func (m *Metrics) AutopostsReleased(count int) {
	m.autopostsReleased.Add(float64(count))
}

// AutopostPublished counts a publish.
func (m *Metrics) AutopostPublished() {
	m.autopostsPublished.Inc()
}

// PollCycle counts one poller fetch, labeled success or error.
func (m *Metrics) PollCycle(err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.pollCycles.WithLabelValues(result).Inc()
}
