// Package metrics exports Prometheus metrics for post loading, command
// execution, new-post notifications, and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "blog"

// Metrics holds every blog collector.
type Metrics struct {
	registry *prometheus.Registry

	// Loading
	PostsLoaded    prometheus.Gauge
	PostsFailed    prometheus.Gauge
	LoadDuration   prometheus.Histogram
	LoadsCompleted prometheus.Counter

	// Commands
	CommandsTotal   *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec

	// Notifications
	Notifications *prometheus.CounterVec

	// HTTP
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry registers the collectors on reg.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{registry: reg}

	m.PostsLoaded = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "posts_loaded",
		Help:      "Posts returned by the most recent collection load",
	})
	m.PostsFailed = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "posts_failed",
		Help:      "Posts replaced by placeholders in the most recent load",
	})
	m.LoadDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "posts_load_duration_seconds",
		Help:      "Time to load and render the post collection",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})
	m.LoadsCompleted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "posts_loads_total",
		Help:      "Total collection loads",
	})

	m.CommandsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commands_total",
		Help:      "Commands executed by type and status",
	}, []string{"command", "status"})
	m.CommandDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "command_duration_seconds",
		Help:      "Command execution time",
		Buckets:   prometheus.DefBuckets,
	}, []string{"command"})

	m.Notifications = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "New-post notifications by outcome",
	}, []string{"outcome"})

	m.RequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status code",
	}, []string{"route", "code"})
	m.RequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	return m
}

// Registry returns the backing registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveLoad records a collection load.
func (m *Metrics) ObserveLoad(total, failed int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.PostsLoaded.Set(float64(total))
	m.PostsFailed.Set(float64(failed))
	m.LoadDuration.Observe(elapsed.Seconds())
	m.LoadsCompleted.Inc()
}

// ObserveCommand records a command execution.
func (m *Metrics) ObserveCommand(command, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(command, status).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(elapsed.Seconds())
}

// ObserveNotification records a watcher notification outcome.
func (m *Metrics) ObserveNotification(outcome string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(outcome).Inc()
}

// ObserveRequest records an HTTP request.
func (m *Metrics) ObserveRequest(route string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
