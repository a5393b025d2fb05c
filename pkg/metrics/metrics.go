// Package metrics exports engine counters as Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lmrt-project/lmrt-go/pkg/engine"
	"github.com/lmrt-project/lmrt-go/pkg/wire"
)

const namespace = "lmrt"

// Recorder implements engine.Metrics on a Prometheus registry.
type Recorder struct {
	registry *prometheus.Registry

	commands      prometheus.Counter
	commandBytes  prometheus.Counter
	commitPasses  prometheus.Counter
	rejections    *prometheus.CounterVec
	activeTargets prometheus.Gauge
	tableSize     prometheus.Gauge
}

var _ engine.Metrics = (*Recorder)(nil)

// NewRecorder registers the engine collectors on reg, or on a new
// registry when reg is nil. constLabels are attached to every series,
// typically the controller name.
func NewRecorder(reg *prometheus.Registry, constLabels prometheus.Labels) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	r := &Recorder{
		registry: reg,
		commands: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "routing_commands_total",
			Help:        "Routing commands accepted by the transport.",
			ConstLabels: constLabels,
		}),
		commandBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "routing_command_bytes_total",
			Help:        "Routing entry bytes accepted by the transport.",
			ConstLabels: constLabels,
		}),
		commitPasses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "commit_passes_total",
			Help:        "Routing table commit passes started.",
			ConstLabels: constLabels,
		}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "requests_rejected_total",
			Help:        "Requests that completed with a non-OK status.",
			ConstLabels: constLabels,
		}, []string{"status"}),
		activeTargets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "active_targets",
			Help:        "Execution environments counted in the routing table.",
			ConstLabels: constLabels,
		}),
		tableSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "routing_table_bytes",
			Help:        "Encoded size of the last committed routing table.",
			ConstLabels: constLabels,
		}),
	}
	r.registry.MustRegister(
		r.commands,
		r.commandBytes,
		r.commitPasses,
		r.rejections,
		r.activeTargets,
		r.tableSize,
	)
	return r
}

// WithProcessCollectors adds the Go runtime and process collectors.
func (r *Recorder) WithProcessCollectors() *Recorder {
	r.registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// CommandSent implements engine.Metrics.
func (r *Recorder) CommandSent(bytes int) {
	r.commands.Inc()
	r.commandBytes.Add(float64(bytes))
}

// CommitPass implements engine.Metrics.
func (r *Recorder) CommitPass() { r.commitPasses.Inc() }

// RequestRejected implements engine.Metrics.
func (r *Recorder) RequestRejected(status wire.Status) {
	r.rejections.WithLabelValues(status.String()).Inc()
}

// ActiveTargets implements engine.Metrics.
func (r *Recorder) ActiveTargets(n int) { r.activeTargets.Set(float64(n)) }

// TableSize implements engine.Metrics.
func (r *Recorder) TableSize(bytes int) { r.tableSize.Set(float64(bytes)) }
