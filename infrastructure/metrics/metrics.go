// Package metrics records capability and HTTP metrics with Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "numrange"

// Recorder captures capability invocation outcomes.
type Recorder interface {
	ObserveInvocation(capability, outcome string, durationSeconds float64)
}

// HTTPRecorder captures request metrics for the API server.
type HTTPRecorder interface {
	ObserveRequest(method, route, status string, durationSeconds float64)
}

// Noop implements Recorder and HTTPRecorder without emitting anything.
type Noop struct{}

func (Noop) ObserveInvocation(string, string, float64)      {}
func (Noop) ObserveRequest(string, string, string, float64) {}

// Prom implements Recorder and HTTPRecorder backed by its own registry.
type Prom struct {
	registry    *prometheus.Registry
	invocations *prometheus.CounterVec
	invocationT *prometheus.HistogramVec
	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// NewProm creates collectors and registers them on a fresh registry along
// with the Go runtime and process collectors.
func NewProm() *Prom {
	p := &Prom{
		registry: prometheus.NewRegistry(),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "capability_invocations_total",
			Help:      "Capability invocations by capability and outcome",
		}, []string{"capability", "outcome"}),
		invocationT: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "capability_duration_seconds",
			Help:      "Capability latency by capability",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"capability"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method/route/status",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method/route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	p.registry.MustRegister(
		p.invocations,
		p.invocationT,
		p.requests,
		p.latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

// ObserveInvocation records one capability call.
func (p *Prom) ObserveInvocation(capability, outcome string, durationSeconds float64) {
	p.invocations.WithLabelValues(capability, outcome).Inc()
	p.invocationT.WithLabelValues(capability).Observe(durationSeconds)
}

// ObserveRequest records one HTTP request.
func (p *Prom) ObserveRequest(method, route, status string, durationSeconds float64) {
	p.requests.WithLabelValues(method, route, status).Inc()
	p.latency.WithLabelValues(method, route).Observe(durationSeconds)
}

// Registry returns the underlying registry.
func (p *Prom) Registry() *prometheus.Registry {
	return p.registry
}

// Handler returns an HTTP handler exposing this registry for scraping.
func (p *Prom) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

var (
	_ Recorder     = Noop{}
	_ HTTPRecorder = Noop{}
	_ Recorder     = (*Prom)(nil)
	_ HTTPRecorder = (*Prom)(nil)
)
