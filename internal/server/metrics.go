package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// metrics holds the collectors exported on /metrics.
type metrics struct {
	registry    *prometheus.Registry
	renders     *prometheus.CounterVec
	identifiers *prometheus.HistogramVec
	duration    *prometheus.HistogramVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		renders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "idbatch_renders_total",
				Help: "Total number of render requests",
			},
			[]string{"idtype", "status"},
		),
		identifiers: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "idbatch_identifiers_per_render",
				Help:    "Number of identifiers in each successful render",
				Buckets: prometheus.ExponentialBuckets(1, 4, 10), // 1 to ~262k
			},
			[]string{"idtype"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "idbatch_render_duration_seconds",
				Help:    "Duration of render requests in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~2s
			},
			[]string{"idtype"},
		),
	}

	m.registry.MustRegister(
		m.renders,
		m.identifiers,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}
