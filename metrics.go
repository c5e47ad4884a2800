package frames

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ChristopherRabotin/frames/internal/observability"
)

type metrics struct {
	hits       prometheus.Counter
	misses     prometheus.Counter
	evictions  prometheus.Counter
	registered prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "frames_transform_cache_hits_total",
			Help: "Transform queries answered from the cache.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "frames_transform_cache_misses_total",
			Help: "Transform queries which had to be computed.",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "frames_transform_cache_evictions_total",
			Help: "Transforms evicted from the cache.",
		}),
		registered: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "frames_registered",
			Help: "Frames registered, summed over the managers sharing the registerer.",
		}),
	}
	if c, err := observability.Register(reg, m.hits, "frames_transform_cache_hits_total"); err == nil {
		m.hits = c
	}
	if c, err := observability.Register(reg, m.misses, "frames_transform_cache_misses_total"); err == nil {
		m.misses = c
	}
	if c, err := observability.Register(reg, m.evictions, "frames_transform_cache_evictions_total"); err == nil {
		m.evictions = c
	}
	if g, err := observability.Register(reg, m.registered, "frames_registered"); err == nil {
		m.registered = g
	}
	return m
}
