// Package metrics exposes Prometheus collectors for email dispatch outcomes.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mailbite"

// Dispatch counts and times dispatches by channel (plain, templated) and
// outcome kind.
type Dispatch struct {
	registry *prometheus.Registry
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewDispatch registers the dispatch collectors plus the Go and process
// collectors on a fresh registry.
func NewDispatch() *Dispatch {
	reg := prometheus.NewRegistry()

	d := &Dispatch{
		registry: reg,
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_total",
			Help:      "Email dispatches by channel and outcome kind.",
		}, []string{"channel", "kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Time from receiving a dispatch to its result.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"channel"}),
	}

	reg.MustRegister(
		d.total,
		d.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return d
}

// Observe records one finished dispatch.
func (d *Dispatch) Observe(channel, kind string, elapsed time.Duration) {
	d.total.WithLabelValues(channel, kind).Inc()
	d.duration.WithLabelValues(channel).Observe(elapsed.Seconds())
}

// RegisterGauge exposes fn as a gauge, for example the worker pool inflight count.
func (d *Dispatch) RegisterGauge(name, help string, fn func() float64) error {
	return d.registry.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, fn))
}

// Handler serves the registry in the Prometheus exposition format.
func (d *Dispatch) Handler() http.Handler {
	return promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{Registry: d.registry})
}

// Registry returns the underlying registry.
func (d *Dispatch) Registry() *prometheus.Registry {
	return d.registry
}
