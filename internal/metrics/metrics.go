package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder receives allocation statistics from the board service.
type Recorder interface {
	RecordAllocation(view string, total float64, backlog int, elapsed time.Duration)
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordAllocation(string, float64, int, time.Duration) {}

// Prom exports allocation statistics to Prometheus.
type Prom struct {
	registry    *prometheus.Registry
	allocations *prometheus.CounterVec
	hours       *prometheus.GaugeVec
	backlog     *prometheus.GaugeVec
	duration    *prometheus.HistogramVec
}

// NewProm registers the shopweek collectors on a fresh registry.
func NewProm() *Prom {
	p := &Prom{
		registry: prometheus.NewRegistry(),
		allocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopweek_allocations_total",
			Help: "Number of allocation passes run.",
		}, []string{"view"}),
		hours: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "shopweek_allocated_hours",
			Help: "Hours allocated by the latest pass.",
		}, []string{"view"}),
		backlog: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "shopweek_backlog_jobs",
			Help: "Jobs waiting in the backlog after the latest pass.",
		}, []string{"view"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shopweek_allocation_duration_seconds",
			Help:    "Time spent computing a schedule snapshot.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"view"}),
	}
	p.registry.MustRegister(p.allocations, p.hours, p.backlog, p.duration)
	return p
}

func (p *Prom) RecordAllocation(view string, total float64, backlog int, elapsed time.Duration) {
	p.allocations.WithLabelValues(view).Inc()
	p.hours.WithLabelValues(view).Set(total)
	p.backlog.WithLabelValues(view).Set(float64(backlog))
	p.duration.WithLabelValues(view).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (p *Prom) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
