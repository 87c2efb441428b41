package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder receives fetch and chain outcomes. Implementations must be safe
// for concurrent use.
type Recorder interface {
	// ObserveFetch records one remote fetch of resource with its outcome
	// ("success", "transport", "decode", "empty_body", "other").
	ObserveFetch(resource, outcome string, d time.Duration)
	// ChainCompleted records the terminal outcome of one chain run.
	ChainCompleted(variant, outcome string)
}

// Nop discards everything.
type Nop struct{}

// ObserveFetch implements Recorder.
func (Nop) ObserveFetch(string, string, time.Duration) {}

// ChainCompleted implements Recorder.
func (Nop) ChainCompleted(string, string) {}

// Prometheus is a Recorder backed by a private registry.
type Prometheus struct {
	fetchTotal    *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	chainTotal    *prometheus.CounterVec
	handler       http.Handler
}

// NewPrometheus creates a recorder with its own registry, including the Go
// runtime and process collectors.
func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()
	p := &Prometheus{
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "postchain_fetch_total",
			Help: "Remote fetches by resource and outcome.",
		}, []string{"resource", "outcome"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "postchain_fetch_duration_seconds",
			Help:    "Latency of remote fetches.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"resource"}),
		chainTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "postchain_chain_total",
			Help: "Completed chain runs by variant and outcome.",
		}, []string{"variant", "outcome"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		p.fetchTotal,
		p.fetchDuration,
		p.chainTotal,
	)
	p.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	return p
}

// ObserveFetch implements Recorder.
func (p *Prometheus) ObserveFetch(resource, outcome string, d time.Duration) {
	p.fetchTotal.WithLabelValues(resource, outcome).Inc()
	p.fetchDuration.WithLabelValues(resource).Observe(d.Seconds())
}

// ChainCompleted implements Recorder.
func (p *Prometheus) ChainCompleted(variant, outcome string) {
	p.chainTotal.WithLabelValues(variant, outcome).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (p *Prometheus) Handler() http.Handler { return p.handler }
